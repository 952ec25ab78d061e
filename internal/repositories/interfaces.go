package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/saksham-ndma/training-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	TrainerID          *string                    `json:"trainer_id"`
	DistrictID         *uint                      `json:"district_id"`
	DistrictIDs        []uint                     `json:"district_ids"`
	Status             *models.SessionStatus      `json:"status"`
	VerificationStatus *models.VerificationStatus `json:"verification_status"`
	DateFrom           *time.Time                 `json:"date_from"`
	DateTo             *time.Time                 `json:"date_to"`
	Limit              int                        `json:"limit"`
	Offset             int                        `json:"offset"`
	SortBy             string                     `json:"sort_by"`    // "start_date", "created_at"
	SortOrder          string                     `json:"sort_order"` // "asc", "desc"
}

type DistrictFilters struct {
	State     *string           `json:"state"`
	RiskLevel *models.RiskLevel `json:"risk_level"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
	SortBy    string            `json:"sort_by"`
	SortOrder string            `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type DistrictStats struct {
	TotalSessions     int        `json:"total_sessions"`
	VerifiedSessions  int        `json:"verified_sessions"`
	FlaggedSessions   int        `json:"flagged_sessions"`
	VolunteersTrained int        `json:"volunteers_trained"`
	LastTrainingDate  *time.Time `json:"last_training_date"`
}

type TrainerStats struct {
	TotalSessions     int `json:"total_sessions"`
	VerifiedSessions  int `json:"verified_sessions"`
	FlaggedSessions   int `json:"flagged_sessions"`
	UpcomingSessions  int `json:"upcoming_sessions"`
	CancelledSessions int `json:"cancelled_sessions"`
}

// ===== REPOSITORY INTERFACES =====

// SessionRepository persists training sessions. Verification fields are only
// written through UpdateEvidence/UpdateVerificationStatus so arbitrary field
// patches can never move the state machine.
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.TrainingSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TrainingSession, error)
	GetByIDWithDistrict(ctx context.Context, tx *gorm.DB, id uint) (*models.TrainingSession, error)
	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.TrainingSession, int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, patch map[string]interface{}) error
	// UpdateEvidence applies the evaluated evidence with an optimistic
	// version check; returns ErrVersionConflict when another writer won.
	UpdateEvidence(ctx context.Context, tx *gorm.DB, session *models.TrainingSession, expectedVersion int) error
	UpdateVerificationStatus(ctx context.Context, tx *gorm.DB, id uint, status models.VerificationStatus, logs []byte) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	GetTrainerStats(ctx context.Context, tx *gorm.DB, trainerID string) (*TrainerStats, error)
}

// DistrictRepository is the geo-hierarchy store. Name/state arguments are
// normalized by callers through models.NormalizeGeoName.
type DistrictRepository interface {
	Create(ctx context.Context, tx *gorm.DB, district *models.District) error
	CreateBatch(ctx context.Context, tx *gorm.DB, districts []*models.District) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.District, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.District, error)
	GetByNameAndState(ctx context.Context, tx *gorm.DB, name, state string) (*models.District, error)
	GetByState(ctx context.Context, tx *gorm.DB, state string) ([]*models.District, error)
	List(ctx context.Context, tx *gorm.DB, filters DistrictFilters) ([]*models.District, int64, error)
	UpdateStats(ctx context.Context, tx *gorm.DB, id uint, trainedDelta int, lastTraining time.Time) error
	GetStats(ctx context.Context, tx *gorm.DB, id uint) (*DistrictStats, error)
}

// UserRepository is the read-only identity collaborator (Casdoor-backed).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// Repository aggregates all repository interfaces.
type Repository interface {
	Session() SessionRepository
	District() DistrictRepository

	// User domain (read-only for the training service)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
