package chatsocket

import "time"

// EntryKind identifies who produced a conversation entry.
type EntryKind string

const (
	EntryOutgoingUser      EntryKind = "user"
	EntryIncomingAssistant EntryKind = "assistant"
	EntryIncomingError     EntryKind = "error"
)

// Entry is one turn of the conversation as observed by the client.
type Entry struct {
	Kind       EntryKind
	Text       string
	OccurredAt time.Time

	// ProductIDs lists catalog products the backend referenced, if any.
	ProductIDs []int
}

// IsUser reports whether the entry is an optimistic echo of a sent message.
func (e Entry) IsUser() bool {
	return e.Kind == EntryOutgoingUser
}

// conversationLog is an append-only sequence of entries that can only be
// reset as a whole. Callers synchronize access.
type conversationLog struct {
	entries []Entry
}

func (l *conversationLog) append(e Entry) {
	if len(e.ProductIDs) > 0 {
		e.ProductIDs = append([]int(nil), e.ProductIDs...)
	}
	l.entries = append(l.entries, e)
}

func (l *conversationLog) clear() {
	l.entries = nil
}

func (l *conversationLog) len() int {
	return len(l.entries)
}

// snapshot returns a copy that shares no memory with the log.
func (l *conversationLog) snapshot() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		if len(e.ProductIDs) > 0 {
			e.ProductIDs = append([]int(nil), e.ProductIDs...)
		}
		out[i] = e
	}
	return out
}
