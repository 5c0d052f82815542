package feed

import (
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	before := time.Now()
	msg := NewMessage(OpAdded, 7)
	if msg.Op != OpAdded || msg.ID != 7 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Timestamp.Before(before) {
		t.Fatalf("timestamp not set: %v", msg.Timestamp)
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
}

func TestMessageFromJSONRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"unknown op", `{"op":"renamed","id":1}`},
		{"missing id", `{"op":"added"}`},
		{"negative id", `{"op":"deleted","id":-4}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MessageFromJSON([]byte(tc.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMessageRoundTrip(t *testing.T) {
	msg := NewMessage(OpDeleted, 42)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := MessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Op != OpDeleted || got.ID != 42 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
