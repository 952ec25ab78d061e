package events

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/saksham-ndma/training-service/internal/models"
)

func TestNewEvent(t *testing.T) {
	payload := &SessionEvent{
		SessionID:    42,
		SessionCode:  "TRN-KAMRUP-1A2B3C4D",
		TrainerID:    "trainer-1",
		DistrictID:   1,
		Status:       models.SessionScheduled,
		Verification: models.VerificationUnverified,
	}

	event := NewEvent(EventSessionCreated, payload)

	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Type != EventSessionCreated {
		t.Errorf("Type = %s, want %s", event.Type, EventSessionCreated)
	}
	if event.Source != "training-service" {
		t.Errorf("Source = %s, want training-service", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Version = %s, want 1.0", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Event timestamp should not be zero")
	}

	first := NewEvent(EventSessionCreated, payload)
	second := NewEvent(EventSessionCreated, payload)
	if first.ID == second.ID {
		t.Error("event IDs must be unique")
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	if err := publisher.Publish(ctx, TopicTrainingEvents, NewEvent(EventSessionVerified, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := publisher.Publish(ctx, TopicTrainingEvents, NewEvent(EventSessionFlagged, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(published))
	}
	if published[0].Type != EventSessionVerified || published[1].Type != EventSessionFlagged {
		t.Errorf("event order wrong: %s, %s", published[0].Type, published[1].Type)
	}

	// Snapshot must not alias the internal slice
	published[0] = nil
	if publisher.GetPublishedEvents()[0] == nil {
		t.Error("GetPublishedEvents must return a copy")
	}

	publisher.ClearEvents()
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("ClearEvents should drop all recorded events")
	}
}
