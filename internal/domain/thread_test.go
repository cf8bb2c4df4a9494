package domain

import (
	"testing"
	"time"
)

func TestAddress_String(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{"with name", Address{Name: "Shop", Email: "noreply@shop.example"}, "Shop <noreply@shop.example>"},
		{"email only", Address{Email: "noreply@shop.example"}, "noreply@shop.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.String(); got != tt.want {
				t.Errorf("Address.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThread_FirstMessage(t *testing.T) {
	oldest := Message{ID: "m1", Subject: "root", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	thread := &Thread{Messages: []Message{oldest, {ID: "m2", Subject: "reply"}}}

	got := thread.FirstMessage()
	if got == nil || got.ID != "m1" {
		t.Fatalf("FirstMessage() = %+v, want message m1", got)
	}

	empty := &Thread{}
	if empty.FirstMessage() != nil {
		t.Error("FirstMessage() on empty thread should be nil")
	}
}

func TestThread_HasLabel(t *testing.T) {
	thread := &Thread{Labels: []string{"INBOX", "lbl-processed"}}
	if !thread.HasLabel("lbl-processed") {
		t.Error("expected HasLabel(lbl-processed) = true")
	}
	if thread.HasLabel("lbl-newsletter") {
		t.Error("expected HasLabel(lbl-newsletter) = false")
	}
}
