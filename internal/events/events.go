package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/saksham-ndma/training-service/internal/models"
)

// TopicTrainingEvents is the broker topic all training events go to
const TopicTrainingEvents = "training.events"

// Event types emitted by the training service
const (
	EventSessionCreated    = "training.session_created"
	EventSessionCancelled  = "training.session_cancelled"
	EventEvidenceSubmitted = "training.evidence_submitted"
	EventSessionVerified   = "training.session_verified"
	EventSessionFlagged    = "training.session_flagged"
	EventDistrictsImported = "training.districts_imported"
)

const (
	eventSource  = "training-service"
	eventVersion = "1.0"
)

// Event is the envelope published to the message broker
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent creates an event envelope with generated ID and timestamp
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// SessionEvent carries session lifecycle payloads
type SessionEvent struct {
	SessionID    uint                      `json:"session_id"`
	SessionCode  string                    `json:"session_code"`
	TrainerID    string                    `json:"trainer_id"`
	DistrictID   uint                      `json:"district_id"`
	Theme        string                    `json:"theme"`
	Status       models.SessionStatus      `json:"status"`
	Verification models.VerificationStatus `json:"verification_status"`
}

// EvidenceEvent carries the outcome of an evidence evaluation
type EvidenceEvent struct {
	SessionID               uint                      `json:"session_id"`
	SessionCode             string                    `json:"session_code"`
	TrainerID               string                    `json:"trainer_id"`
	DistrictID              uint                      `json:"district_id"`
	DistanceDeviationMeters float64                   `json:"distance_deviation_meters"`
	IsWithinGeofence        bool                      `json:"is_within_geofence"`
	IsFlaggedDiscrepancy    bool                      `json:"is_flagged_discrepancy"`
	Verification            models.VerificationStatus `json:"verification_status"`
}

// DistrictImportEvent carries the result of a catalog import
type DistrictImportEvent struct {
	ImportSource string `json:"import_source"`
	Imported     int    `json:"imported"`
	Skipped      int    `json:"skipped"`
}
