package chatsocket

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewOutboundFrame_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewOutboundFrame("Hola", "sess-42"))
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if parsed["message"] != "Hola" {
		t.Errorf("message = %v, want Hola", parsed["message"])
	}
	if parsed["session_id"] != "sess-42" {
		t.Errorf("session_id = %v, want sess-42", parsed["session_id"])
	}
}

func TestNewOutboundFrame_OmitsEmptySession(t *testing.T) {
	data, err := json.Marshal(NewOutboundFrame("Hola", ""))
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if _, ok := parsed["session_id"]; ok {
		t.Error("session_id should be omitted when empty")
	}
}

func TestDecodeFrame(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"type":"message","message":"hola","timestamp":"2024-06-01T10:30:00","products_mentioned":[1,2,3]}`))
	if err != nil {
		t.Fatalf("DecodeFrame error: %v", err)
	}

	if frame.Type != "message" {
		t.Errorf("Type = %s, want message", frame.Type)
	}
	if frame.Text() != "hola" {
		t.Errorf("Text() = %s, want hola", frame.Text())
	}
	if len(frame.ProductsMentioned) != 3 {
		t.Errorf("len(ProductsMentioned) = %d, want 3", len(frame.ProductsMentioned))
	}
}

func TestDecodeFrame_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":     `hola`,
		"array":        `[1,2]`,
		"null":         `null`,
		"missing type": `{"message":"hola"}`,
		"numeric type": `{"type":5}`,
		"truncated":    `{"type":"message"`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(payload))
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("DecodeFrame(%q) error = %v, want *DecodeError", payload, err)
			}
		})
	}
}

func TestDecodeFrame_LenientOptionalFields(t *testing.T) {
	cases := []struct {
		name     string
		payload  string
		products []int
	}{
		{"numeric timestamp", `{"type":"response","response":"hola","timestamp":1697000000}`, nil},
		{"object timestamp", `{"type":"response","response":"hola","timestamp":{"s":1}}`, nil},
		{"mixed products", `{"type":"response","response":"hola","products_mentioned":[1,"dos",3.5,4]}`, []int{1, 4}},
		{"products not a list", `{"type":"response","response":"hola","products_mentioned":"1,2"}`, nil},
		{"null fields", `{"type":"response","response":"hola","timestamp":null,"products_mentioned":null}`, nil},
	}

	fallback := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := DecodeFrame([]byte(tc.payload))
			if err != nil {
				t.Fatalf("DecodeFrame error: %v", err)
			}
			if frame.Text() != "hola" {
				t.Errorf("Text() = %q, want hola", frame.Text())
			}
			if got := frame.Time(fallback); !got.Equal(fallback) {
				t.Errorf("Time() = %v, want fallback %v", got, fallback)
			}
			if len(frame.ProductsMentioned) != len(tc.products) {
				t.Fatalf("ProductsMentioned = %v, want %v", frame.ProductsMentioned, tc.products)
			}
			for i, id := range tc.products {
				if frame.ProductsMentioned[i] != id {
					t.Errorf("ProductsMentioned[%d] = %d, want %d", i, frame.ProductsMentioned[i], id)
				}
			}
		})
	}
}

func TestInboundFrame_TextFieldUnion(t *testing.T) {
	cases := []struct {
		name  string
		frame InboundFrame
		want  string
	}{
		{"message", InboundFrame{Type: "message", Message: "a"}, "a"},
		{"response", InboundFrame{Type: "response", Response: "b"}, "b"},
		{"content", InboundFrame{Type: "response", Content: "c"}, "c"},
		{"message wins", InboundFrame{Type: "response", Message: "a", Response: "b"}, "a"},
		{"empty", InboundFrame{Type: "error"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.frame.Text(); got != tc.want {
				t.Errorf("Text() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInboundFrame_Time(t *testing.T) {
	fallback := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		timestamp string
		want      time.Time
	}{
		{"absent", "", fallback},
		{"rfc3339", "2024-06-01T10:30:00Z", time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"offset", "2024-06-01T10:30:00+02:00", time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)},
		{"naive", "2024-06-01T10:30:00.123456", time.Date(2024, 6, 1, 10, 30, 0, 123456000, time.Local)},
		{"naive no fraction", "2024-06-01T10:30:00", time.Date(2024, 6, 1, 10, 30, 0, 0, time.Local)},
		{"garbage", "yesterday", fallback},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := InboundFrame{Type: "message", Timestamp: tc.timestamp}
			if got := f.Time(fallback); !got.Equal(tc.want) {
				t.Errorf("Time() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFrameKinds_Lookup(t *testing.T) {
	def := DefaultFrameKinds()
	legacy := LegacyFrameKinds()

	cases := []struct {
		typ         string
		def, legacy FrameKind
	}{
		{"typing", FrameTyping, FrameTyping},
		{"welcome", FrameGreeting, FrameUnknown},
		{"info", FrameGreeting, FrameUnknown},
		{"message", FrameResponse, FrameUnknown},
		{"response", FrameResponse, FrameResponse},
		{"error", FrameError, FrameError},
		{"products", FrameUnknown, FrameUnknown},
	}

	for _, tc := range cases {
		if got := def.Lookup(tc.typ); got != tc.def {
			t.Errorf("DefaultFrameKinds().Lookup(%s) = %s, want %s", tc.typ, got, tc.def)
		}
		if got := legacy.Lookup(tc.typ); got != tc.legacy {
			t.Errorf("LegacyFrameKinds().Lookup(%s) = %s, want %s", tc.typ, got, tc.legacy)
		}
	}
}

func TestInboundFrame_EntryCopiesProducts(t *testing.T) {
	now := time.Now()
	f := &InboundFrame{Type: "message", Message: "ver", ProductsMentioned: []int{7}}

	entry := f.Entry(EntryIncomingAssistant, now)
	f.ProductsMentioned[0] = 99

	if entry.ProductIDs[0] != 7 {
		t.Errorf("ProductIDs[0] = %d, want 7", entry.ProductIDs[0])
	}
	if !entry.OccurredAt.Equal(now) {
		t.Errorf("OccurredAt = %v, want %v", entry.OccurredAt, now)
	}
}
