package services

import (
	"context"
	"io"

	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
	"github.com/saksham-ndma/training-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateSessionRequest = validator.SessionCreateRequest
type UpdateSessionRequest = validator.SessionUpdateRequest
type SubmitEvidenceRequest = validator.EvidenceRequest
type CreateDistrictRequest = validator.DistrictCreateRequest

type SessionResponse struct {
	*models.TrainingSession

	// Date-derived status, computed at read time
	EffectiveStatus models.SessionStatus `json:"effective_status"`

	CanEdit           bool `json:"can_edit"`
	CanDelete         bool `json:"can_delete"`
	CanSubmitEvidence bool `json:"can_submit_evidence"`
}

type SessionListResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type CancelSessionRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ReviewRequest is a manual verification review of a flagged session.
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" validate:"required,max=500"`
}

type DistrictResponse struct {
	*models.District
	Stats *repositories.DistrictStats `json:"stats,omitempty"`
}

type DistrictListResponse struct {
	Districts []*DistrictResponse `json:"districts"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

// ImportResult summarizes one district catalog import run.
type ImportResult struct {
	ImportSource string   `json:"import_source"`
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	Errors       []string `json:"errors,omitempty"`
}

// ===== SERVICE INTERFACES =====

type SessionService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateSessionRequest, principal *models.User) (*SessionResponse, error)
	GetByID(ctx context.Context, id uint, principal *models.User) (*SessionResponse, error)
	Update(ctx context.Context, id uint, req *UpdateSessionRequest, principal *models.User) (*SessionResponse, error)
	Delete(ctx context.Context, id uint, principal *models.User) error

	// Listing, scoped by the principal's role and geography
	List(ctx context.Context, filters repositories.SessionFilters, principal *models.User) (*SessionListResponse, error)
	MyTrainings(ctx context.Context, filters repositories.SessionFilters, principal *models.User) (*SessionListResponse, error)

	// Lifecycle operations
	Cancel(ctx context.Context, id uint, req *CancelSessionRequest, principal *models.User) (*SessionResponse, error)
	SubmitEvidence(ctx context.Context, id uint, req *SubmitEvidenceRequest, principal *models.User) (*SessionResponse, error)
	Review(ctx context.Context, id uint, req *ReviewRequest, principal *models.User) (*SessionResponse, error)

	// Statistics
	GetTrainerStats(ctx context.Context, trainerID string, principal *models.User) (*repositories.TrainerStats, error)
}

type DistrictService interface {
	Create(ctx context.Context, req *CreateDistrictRequest, principal *models.User) (*DistrictResponse, error)
	GetByID(ctx context.Context, id uint) (*DistrictResponse, error)
	List(ctx context.Context, filters repositories.DistrictFilters) (*DistrictListResponse, error)
	GetStats(ctx context.Context, id uint) (*repositories.DistrictStats, error)

	// ImportFromWorkbook loads districts from an Excel catalog export
	ImportFromWorkbook(ctx context.Context, r io.Reader, source string, principal *models.User) (*ImportResult, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context, limit, offset int, principal *models.User) ([]*models.User, error)
}

// ServiceManager wires and exposes all services
type ServiceManager interface {
	Initialize(ctx context.Context) error
	Session() SessionService
	District() DistrictService
	User() UserService
	Shutdown(ctx context.Context) error
}
