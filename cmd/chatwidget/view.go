package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/makers-tech/chatsocket"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	onlineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// view prints the parts of each snapshot that changed since the last one.
type view struct {
	out io.Writer

	started bool
	status  chatsocket.Status
	typing  bool
	printed int
}

func newView(out io.Writer) *view {
	return &view{out: out}
}

func (v *view) render(s chatsocket.Snapshot) {
	if !v.started || s.Status != v.status {
		fmt.Fprintln(v.out, statusLine(s.Status))
		v.status = s.Status
		v.started = true
	}

	if len(s.Log) < v.printed {
		fmt.Fprintln(v.out, mutedStyle.Render("(conversation cleared)"))
		v.printed = 0
	}
	for _, e := range s.Log[v.printed:] {
		fmt.Fprintln(v.out, formatEntry(e))
	}
	v.printed = len(s.Log)

	if s.Typing && !v.typing {
		fmt.Fprintln(v.out, mutedStyle.Render("assistant is typing..."))
	}
	v.typing = s.Typing
}

func statusLine(s chatsocket.Status) string {
	switch s {
	case chatsocket.StatusOpen:
		return onlineStyle.Render("* online")
	case chatsocket.StatusConnecting:
		return mutedStyle.Render("* connecting...")
	default:
		return mutedStyle.Render("* offline")
	}
}

func formatEntry(e chatsocket.Entry) string {
	var label string
	switch e.Kind {
	case chatsocket.EntryOutgoingUser:
		label = userStyle.Render("you")
	case chatsocket.EntryIncomingError:
		label = errorStyle.Render("error")
	default:
		label = assistantStyle.Render("assistant")
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render(e.OccurredAt.Format("15:04")))
	b.WriteString(" ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(e.Text)

	if len(e.ProductIDs) > 0 {
		ids := make([]string, len(e.ProductIDs))
		for i, id := range e.ProductIDs {
			ids[i] = strconv.Itoa(id)
		}
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render("[products " + strings.Join(ids, ", ") + "]"))
	}
	return b.String()
}
