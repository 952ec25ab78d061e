package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

type VerificationStatus string

const (
	VerificationUnverified    VerificationStatus = "unverified"
	VerificationPendingReview VerificationStatus = "pending_review"
	VerificationVerified      VerificationStatus = "verified"
	VerificationFlagged       VerificationStatus = "flagged"
)

// AttendanceValidation compares the trainer's claimed headcount against the
// AI-detected count from submitted evidence.
type AttendanceValidation struct {
	ClaimedCount         int     `json:"claimed_count" gorm:"default:0"`
	AIDetectedCount      int     `json:"ai_detected_count" gorm:"default:0"`
	ConfidenceScore      float64 `json:"confidence_score" gorm:"default:0"`
	IsFlaggedDiscrepancy bool    `json:"is_flagged_discrepancy" gorm:"default:false"`
}

// VerificationLogEntry is one append-only record of a verification transition.
type VerificationLogEntry struct {
	ActorID    string             `json:"actor_id"`
	FromStatus VerificationStatus `json:"from_status"`
	ToStatus   VerificationStatus `json:"to_status"`
	Reason     string             `json:"reason"`
	LoggedAt   time.Time          `json:"logged_at"`
}

// TrainingSession is a district-scoped training event. TrainerID is immutable
// after creation and VerificationStatus only changes through the verification
// state machine, never through a field update.
type TrainingSession struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	SessionCode string `json:"session_code" gorm:"uniqueIndex;size:40"`
	TrainerID   string `json:"trainer_id" gorm:"not null;index;size:255"`
	DistrictID  uint   `json:"district_id" gorm:"not null;index"`

	Theme        string    `json:"theme" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description  string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	StartDate    time.Time `json:"start_date" gorm:"not null;index"`
	EndDate      time.Time `json:"end_date" gorm:"not null"`
	VenueAddress string    `json:"venue_address" gorm:"size:500"`

	// Claimed venue location submitted at creation, WGS84 degrees
	ClaimedLng float64 `json:"claimed_lng"`
	ClaimedLat float64 `json:"claimed_lat"`

	// Independently verified location, absent until evidence is processed
	VerifiedLng *float64 `json:"verified_lng"`
	VerifiedLat *float64 `json:"verified_lat"`

	Status             SessionStatus      `json:"status" gorm:"default:scheduled;index"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"default:unverified;index"`

	AttendanceValidation AttendanceValidation `json:"attendance_validation" gorm:"embedded;embeddedPrefix:attendance_"`

	DistanceDeviationMeters float64 `json:"distance_deviation_meters" gorm:"default:0"`
	IsWithinGeofence        bool    `json:"is_within_geofence" gorm:"default:false"`

	// Append-only transition history
	VerificationLogs datatypes.JSON `json:"verification_logs" gorm:"type:jsonb"`

	IngestionSource string     `json:"ingestion_source" gorm:"default:app;size:20"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	CancelledAt     *time.Time `json:"cancelled_at"`

	// Optimistic concurrency guard for evidence writes
	Version int `json:"version" gorm:"default:1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	District District `json:"district" gorm:"foreignKey:DistrictID"`
}

func (TrainingSession) TableName() string {
	return "training_sessions"
}

// HasVerifiedLocation reports whether evidence has supplied a verified
// coordinate for this session.
func (s *TrainingSession) HasVerifiedLocation() bool {
	return s.VerifiedLng != nil && s.VerifiedLat != nil
}
