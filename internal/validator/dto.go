package validator

import (
	"time"
)

// SessionCreateRequest represents the request structure for creating training sessions
type SessionCreateRequest struct {
	Theme        string    `json:"theme" validate:"required,session_theme"`
	Description  string    `json:"description" validate:"omitempty,session_description"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	VenueAddress string    `json:"venue_address" validate:"omitempty,max=500"`
	VenueLng     float64   `json:"venue_longitude" validate:"longitude_range"`
	VenueLat     float64   `json:"venue_latitude" validate:"latitude_range"`

	IngestionSource string `json:"ingestion_source" validate:"omitempty,oneof=app pwa whatsapp manual"`
}

// SessionUpdateRequest represents the request structure for updating session
// details. Ownership, status and verification fields are deliberately absent:
// those only move through their own transition operations.
type SessionUpdateRequest struct {
	Theme        *string    `json:"theme" validate:"omitempty,session_theme"`
	Description  *string    `json:"description" validate:"omitempty,session_description"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	VenueAddress *string    `json:"venue_address" validate:"omitempty,max=500"`
}

// EvidenceRequest carries one location/attendance evidence submission.
type EvidenceRequest struct {
	VerifiedLng     float64 `json:"verified_longitude" validate:"longitude_range"`
	VerifiedLat     float64 `json:"verified_latitude" validate:"latitude_range"`
	ClaimedCount    int     `json:"claimed_count" validate:"min=0,max=100000"`
	AIDetectedCount int     `json:"ai_detected_count" validate:"min=0,max=100000"`
	ConfidenceScore float64 `json:"confidence_score" validate:"min=0,max=1"`
}

// DistrictCreateRequest represents an administrative district import row.
type DistrictCreateRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=100"`
	State      string  `json:"state" validate:"required,min=1,max=100"`
	CensusCode string  `json:"census_code" validate:"required,max=20"`
	CenterLng  float64 `json:"center_lng" validate:"longitude_range"`
	CenterLat  float64 `json:"center_lat" validate:"latitude_range"`
	RiskLevel  string  `json:"risk_level" validate:"omitempty,risk_level"`
}
