package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/bellacucina/platform/pkg/logging"
)

func TestNewSendGridSenderRequiresKey(t *testing.T) {
	if s := NewSendGridSender(SendGridConfig{}, logging.Default()); s != nil {
		t.Error("expected nil sender without API key")
	}
}

func TestNewSendGridSenderDefaultsFromName(t *testing.T) {
	s := NewSendGridSender(SendGridConfig{APIKey: "SG.test", FromEmail: "ciao@bellacucina.example"}, nil)
	if s == nil {
		t.Fatal("expected sender")
	}
	if s.from.Name != "Bella Cucina" {
		t.Errorf("expected default from name, got %q", s.from.Name)
	}
}

func TestSendGridSenderRejectsEmptyRecipient(t *testing.T) {
	s := NewSendGridSender(SendGridConfig{APIKey: "SG.test", FromEmail: "ciao@bellacucina.example"}, nil)
	if err := s.Send(context.Background(), EmailMessage{Subject: "Booking confirmed"}); err != ErrNoRecipient {
		t.Errorf("expected ErrNoRecipient, got %v", err)
	}
}

func TestStubEmailSenderNeverFails(t *testing.T) {
	s := NewStubEmailSender(nil)
	err := s.Send(context.Background(), EmailMessage{To: "guest@example.com", Subject: "Booking confirmed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewSESSenderRequiresClient(t *testing.T) {
	if s := NewSESSender(nil, SESConfig{}, nil); s != nil {
		t.Error("expected nil sender without client")
	}
}

func TestBookingTemplates(t *testing.T) {
	subject, body := BookingReceived("Giulia", "2026-03-14", "18:30")
	if subject != "Booking request received" {
		t.Errorf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "Giulia") || !strings.Contains(body, "18:30") {
		t.Errorf("expected guest name and time in body, got %q", body)
	}

	subject, _ = BookingConfirmed("2026-03-14", "18:30")
	if subject != "Booking confirmed" {
		t.Errorf("unexpected subject %q", subject)
	}

	subject, body = BookingCancelled("2026-03-14", "18:30")
	if subject != "Booking cancelled" {
		t.Errorf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "cancelled") {
		t.Errorf("expected cancellation notice, got %q", body)
	}
}
