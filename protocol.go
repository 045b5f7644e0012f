package chatsocket

import (
	"encoding/json"
	"strings"
	"time"
)

// FrameKind is the normalized meaning of an inbound frame's type field.
type FrameKind int

const (
	FrameUnknown FrameKind = iota
	FrameTyping
	FrameGreeting
	FrameResponse
	FrameError
)

func (k FrameKind) String() string {
	switch k {
	case FrameTyping:
		return "typing"
	case FrameGreeting:
		return "greeting"
	case FrameResponse:
		return "response"
	case FrameError:
		return "error"
	default:
		return "unknown"
	}
}

// FrameKinds maps wire type discriminators to the kind the client acts on.
// Types missing from the map are ignored.
type FrameKinds map[string]FrameKind

// DefaultFrameKinds recognizes every frame the current backend emits,
// treating welcome and info frames as greetings.
func DefaultFrameKinds() FrameKinds {
	return FrameKinds{
		"typing":   FrameTyping,
		"welcome":  FrameGreeting,
		"info":     FrameGreeting,
		"message":  FrameResponse,
		"response": FrameResponse,
		"error":    FrameError,
	}
}

// LegacyFrameKinds matches the older widget, which only understood typing,
// response and error frames.
func LegacyFrameKinds() FrameKinds {
	return FrameKinds{
		"typing":   FrameTyping,
		"response": FrameResponse,
		"error":    FrameError,
	}
}

// Lookup returns the kind for a wire type.
func (m FrameKinds) Lookup(typ string) FrameKind {
	if k, ok := m[typ]; ok {
		return k
	}
	return FrameUnknown
}

func (m FrameKinds) clone() FrameKinds {
	out := make(FrameKinds, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- Outbound (Client -> Server) ---

// OutboundFrame is a user message sent to the backend.
type OutboundFrame struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// NewOutboundFrame creates a frame for a user message. An empty sessionID
// is omitted from the wire.
func NewOutboundFrame(text, sessionID string) *OutboundFrame {
	return &OutboundFrame{
		Message:   text,
		SessionID: sessionID,
	}
}

// --- Inbound (Server -> Client) ---

// InboundFrame is a decoded frame from the backend. Text may arrive under
// any of several field names depending on backend version.
type InboundFrame struct {
	Type string `json:"type"`

	Message  string `json:"message,omitempty"`
	Response string `json:"response,omitempty"`
	Content  string `json:"content,omitempty"`

	Timestamp         string `json:"timestamp,omitempty"`
	ProductsMentioned []int  `json:"products_mentioned,omitempty"`
}

// inboundWire is the raw shape of an inbound frame. Optional fields are
// kept raw so a value of an unexpected type does not discard the frame.
type inboundWire struct {
	Type string `json:"type"`

	Message  string `json:"message"`
	Response string `json:"response"`
	Content  string `json:"content"`

	Timestamp         json.RawMessage `json:"timestamp"`
	ProductsMentioned json.RawMessage `json:"products_mentioned"`
}

// DecodeFrame parses a raw payload. Payloads that are not a JSON object
// with a string type field are reported as *DecodeError. A timestamp that
// is not a string, or product ids that are not integers, are ignored.
func DecodeFrame(data []byte) (*InboundFrame, error) {
	var wire inboundWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if wire.Type == "" {
		return nil, &DecodeError{Err: errMissingType}
	}

	return &InboundFrame{
		Type:              wire.Type,
		Message:           wire.Message,
		Response:          wire.Response,
		Content:           wire.Content,
		Timestamp:         decodeTimestamp(wire.Timestamp),
		ProductsMentioned: decodeProductIDs(wire.ProductsMentioned),
	}, nil
}

func decodeTimestamp(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// decodeProductIDs keeps the integer items of raw and skips the rest.
func decodeProductIDs(raw json.RawMessage) []int {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	var ids []int
	for _, item := range items {
		var id int
		if json.Unmarshal(item, &id) == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Text returns the first populated message-bearing field.
func (f *InboundFrame) Text() string {
	switch {
	case f.Message != "":
		return f.Message
	case f.Response != "":
		return f.Response
	default:
		return f.Content
	}
}

// Time returns the frame timestamp, or fallback when absent or unparseable.
func (f *InboundFrame) Time(fallback time.Time) time.Time {
	if f.Timestamp == "" {
		return fallback
	}
	if t, ok := parseTimestamp(f.Timestamp); ok {
		return t
	}
	return fallback
}

// The backend emits naive ISO timestamps in its own local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Entry converts the frame into a log entry of the given kind.
func (f *InboundFrame) Entry(kind EntryKind, now time.Time) Entry {
	var products []int
	if len(f.ProductsMentioned) > 0 {
		products = append(products, f.ProductsMentioned...)
	}
	return Entry{
		Kind:       kind,
		Text:       f.Text(),
		OccurredAt: f.Time(now),
		ProductIDs: products,
	}
}
