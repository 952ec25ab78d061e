package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/saksham-ndma/training-service/internal/access"
	"github.com/saksham-ndma/training-service/internal/events"
	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
	"github.com/saksham-ndma/training-service/internal/validator"
	"github.com/saksham-ndma/training-service/internal/verification"
)

type sessionService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	verifyConfig   verification.Config
	catalog        access.DistrictCatalog
}

func NewSessionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, verifyConfig verification.Config) SessionService {
	return &sessionService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		verifyConfig:   verifyConfig,
		catalog:        newCatalogAdapter(repo),
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *sessionService) Create(ctx context.Context, req *CreateSessionRequest, principal *models.User) (*SessionResponse, error) {
	s.logger.Info("Creating training session", "trainer_id", principal.ID, "theme", req.Theme)

	// Validate request with business rules
	if errs := s.validator.GetBusinessValidator().ValidateSessionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	// Creation precondition: trainer role with a resolvable home district
	district, decision, err := access.AuthorizeCreate(ctx, principal, s.catalog)
	if err != nil {
		return nil, NewStoreError("resolve trainer district", err)
	}
	if !decision.Allowed {
		return nil, NewPermissionError(principal.ID, 0, "session", "create", decision.Reason)
	}

	session := &models.TrainingSession{
		SessionCode:        generateSessionCode(district.Name),
		TrainerID:          principal.ID,
		DistrictID:         district.ID,
		Theme:              req.Theme,
		Description:        req.Description,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		VenueAddress:       req.VenueAddress,
		ClaimedLng:         req.VenueLng,
		ClaimedLat:         req.VenueLat,
		Status:             models.SessionScheduled,
		VerificationStatus: models.VerificationUnverified,
		IngestionSource:    req.IngestionSource,
		ScheduledAt:        time.Now(),
		Version:            1,
	}
	if session.IngestionSource == "" {
		session.IngestionSource = "app"
	}

	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, NewStoreError("create session", err)
	}

	s.publishSessionEvent(ctx, events.EventSessionCreated, session)
	s.logger.Info("Training session created", "session_id", session.ID, "session_code", session.SessionCode)

	session.District = *district
	return s.buildSessionResponse(session, principal), nil
}

func (s *sessionService) GetByID(ctx context.Context, id uint, principal *models.User) (*SessionResponse, error) {
	session, err := s.getSessionWithDistrict(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := access.Authorize(principal, access.ActionRead, session, &session.District)
	if !decision.Allowed {
		return nil, NewPermissionError(principal.ID, id, "session", "read", decision.Reason)
	}

	// Read-only roles are additionally bound to their assigned district
	if principal.ReadOnly() {
		scope, err := access.ResolveReadScope(ctx, principal, s.catalog)
		if err != nil {
			return nil, NewStoreError("resolve read scope", err)
		}
		if !scopeAllows(scope, session.DistrictID) {
			return nil, NewPermissionError(principal.ID, id, "session", "read", "outside assigned district")
		}
	}

	return s.buildSessionResponse(session, principal), nil
}

func (s *sessionService) Update(ctx context.Context, id uint, req *UpdateSessionRequest, principal *models.User) (*SessionResponse, error) {
	s.logger.Info("Updating training session", "session_id", id, "user_id", principal.ID)

	session, err := s.getSessionWithDistrict(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := access.Authorize(principal, access.ActionUpdate, session, &session.District)
	if !decision.Allowed {
		return nil, NewPermissionError(principal.ID, id, "session", "update", decision.Reason)
	}

	if errs := s.validator.GetBusinessValidator().ValidateSessionUpdate(req, session); len(errs) > 0 {
		return nil, errs
	}

	patch := buildSessionPatch(req)
	if len(patch) == 0 {
		return s.buildSessionResponse(session, principal), nil
	}

	if err := s.repo.Session().UpdateFields(ctx, nil, id, patch); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, NewStoreError("update session", err)
	}

	s.logger.Info("Training session updated", "session_id", id)

	return s.GetByID(ctx, id, principal)
}

func (s *sessionService) Delete(ctx context.Context, id uint, principal *models.User) error {
	s.logger.Info("Deleting training session", "session_id", id, "user_id", principal.ID)

	session, err := s.getSessionWithDistrict(ctx, id)
	if err != nil {
		return err
	}

	decision := access.Authorize(principal, access.ActionDelete, session, &session.District)
	if !decision.Allowed {
		return NewPermissionError(principal.ID, id, "session", "delete", decision.Reason)
	}

	if err := s.repo.Session().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return NewStoreError("delete session", err)
	}

	s.logger.Info("Training session deleted", "session_id", id)
	return nil
}

// ===== LISTING =====

func (s *sessionService) List(ctx context.Context, filters repositories.SessionFilters, principal *models.User) (*SessionListResponse, error) {
	// Apply role-based scoping
	switch principal.Role {
	case models.RoleTrainer:
		// Trainers see only their own sessions
		trainerID := principal.ID
		filters.TrainerID = &trainerID

	default:
		scope, err := access.ResolveReadScope(ctx, principal, s.catalog)
		if err != nil {
			return nil, NewStoreError("resolve read scope", err)
		}
		if scope.MatchesNothing() {
			return emptySessionList(filters), nil
		}
		if !scope.All {
			filters.DistrictIDs = scope.DistrictIDs
		}
	}

	sessions, total, err := s.repo.Session().List(ctx, nil, filters)
	if err != nil {
		return nil, NewStoreError("list sessions", err)
	}

	return s.buildSessionListResponse(sessions, total, filters, principal), nil
}

func (s *sessionService) MyTrainings(ctx context.Context, filters repositories.SessionFilters, principal *models.User) (*SessionListResponse, error) {
	trainerID := principal.ID
	filters.TrainerID = &trainerID

	sessions, total, err := s.repo.Session().List(ctx, nil, filters)
	if err != nil {
		return nil, NewStoreError("list trainer sessions", err)
	}

	return s.buildSessionListResponse(sessions, total, filters, principal), nil
}

// ===== LIFECYCLE OPERATIONS =====

func (s *sessionService) Cancel(ctx context.Context, id uint, req *CancelSessionRequest, principal *models.User) (*SessionResponse, error) {
	s.logger.Info("Cancelling training session", "session_id", id, "user_id", principal.ID)

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	session, err := s.getSessionWithDistrict(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := access.Authorize(principal, access.ActionUpdate, session, &session.District)
	if !decision.Allowed {
		return nil, NewPermissionError(principal.ID, id, "session", "cancel", decision.Reason)
	}

	if session.Status == models.SessionCancelled {
		return s.buildSessionResponse(session, principal), nil
	}
	if session.Status == models.SessionCompleted {
		return nil, validator.ValidationErrors{{
			Field:   "status",
			Message: "completed sessions cannot be cancelled",
			Value:   session.Status,
			Rule:    "business_logic",
		}}
	}

	now := time.Now()
	patch := map[string]interface{}{
		"status":       models.SessionCancelled,
		"cancelled_at": now,
	}
	if err := s.repo.Session().UpdateFields(ctx, nil, id, patch); err != nil {
		return nil, NewStoreError("cancel session", err)
	}

	session.Status = models.SessionCancelled
	session.CancelledAt = &now

	s.publishSessionEvent(ctx, events.EventSessionCancelled, session)
	s.logger.Info("Training session cancelled", "session_id", id, "reason", req.Reason)

	return s.buildSessionResponse(session, principal), nil
}

func (s *sessionService) SubmitEvidence(ctx context.Context, id uint, req *SubmitEvidenceRequest, principal *models.User) (*SessionResponse, error) {
	s.logger.Info("Submitting session evidence", "session_id", id, "user_id", principal.ID)

	// Coordinate range failures reject before any state is touched
	if errs := s.validator.GetBusinessValidator().ValidateEvidence(req); len(errs) > 0 {
		return nil, errs
	}

	session, err := s.getSessionWithDistrict(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := access.Authorize(principal, access.ActionUpdate, session, &session.District)
	if !decision.Allowed {
		return nil, NewPermissionError(principal.ID, id, "session", "submit_evidence", decision.Reason)
	}

	previousStatus := session.VerificationStatus
	expectedVersion := session.Version

	outcome, err := verification.ApplyEvidence(session, evidenceFromRequest(req), s.verifyConfig)
	if err != nil {
		return nil, validator.ValidationErrors{{
			Field:   "evidence",
			Message: err.Error(),
			Rule:    "business_logic",
		}}
	}

	if err := s.appendVerificationLog(session, models.VerificationLogEntry{
		ActorID:    principal.ID,
		FromStatus: previousStatus,
		ToStatus:   outcome.Status,
		Reason:     fmt.Sprintf("evidence evaluated: deviation %.1fm, within_fence=%t, discrepancy=%t", outcome.DistanceMeters, outcome.WithinFence, outcome.IsFlaggedDiscrepancy),
		LoggedAt:   time.Now(),
	}); err != nil {
		return nil, err
	}

	// Single-writer guard: the version read above must still be current
	if err := s.repo.Session().UpdateEvidence(ctx, nil, session, expectedVersion); err != nil {
		if err == repositories.ErrVersionConflict {
			return nil, NewConflictError("session", id, "evidence was updated concurrently, re-read and retry")
		}
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, NewStoreError("update session evidence", err)
	}

	s.publishEvidenceEvent(ctx, session, outcome)

	if outcome.Status == models.VerificationVerified {
		s.rollUpDistrictStats(ctx, session)
	}

	s.logger.Info("Session evidence processed",
		"session_id", id,
		"verification_status", outcome.Status,
		"distance_deviation_m", outcome.DistanceMeters,
		"flagged_discrepancy", outcome.IsFlaggedDiscrepancy)

	return s.buildSessionResponse(session, principal), nil
}

func (s *sessionService) Review(ctx context.Context, id uint, req *ReviewRequest, principal *models.User) (*SessionResponse, error) {
	s.logger.Info("Reviewing flagged session", "session_id", id, "user_id", principal.ID, "approve", req.Approve)

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	session, err := s.getSessionWithDistrict(ctx, id)
	if err != nil {
		return nil, err
	}

	// Manual review is an admin operation; state admins only within their state
	if principal.Role != models.RoleNDMAAdmin && principal.Role != models.RoleSDMAAdmin {
		return nil, NewPermissionError(principal.ID, id, "session", "review", "review requires an admin role")
	}
	decision := access.Authorize(principal, access.ActionUpdate, session, &session.District)
	if !decision.Allowed {
		return nil, NewPermissionError(principal.ID, id, "session", "review", decision.Reason)
	}

	if session.VerificationStatus != models.VerificationFlagged {
		return nil, validator.ValidationErrors{{
			Field:   "verification_status",
			Message: "only flagged sessions can be reviewed",
			Value:   session.VerificationStatus,
			Rule:    "business_logic",
		}}
	}

	target := models.VerificationFlagged
	if req.Approve {
		target = models.VerificationVerified
	}

	if err := s.appendVerificationLog(session, models.VerificationLogEntry{
		ActorID:    principal.ID,
		FromStatus: models.VerificationFlagged,
		ToStatus:   target,
		Reason:     req.Reason,
		LoggedAt:   time.Now(),
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Session().UpdateVerificationStatus(ctx, nil, id, target, session.VerificationLogs); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, NewStoreError("update verification status", err)
	}
	session.VerificationStatus = target

	if target == models.VerificationVerified {
		s.publishSessionEvent(ctx, events.EventSessionVerified, session)
		s.rollUpDistrictStats(ctx, session)
	}

	s.logger.Info("Flagged session reviewed", "session_id", id, "verification_status", target)

	return s.buildSessionResponse(session, principal), nil
}

// ===== STATISTICS =====

func (s *sessionService) GetTrainerStats(ctx context.Context, trainerID string, principal *models.User) (*repositories.TrainerStats, error) {
	// Trainers may only see their own stats; admins may see anyone's
	if principal.Role == models.RoleTrainer && trainerID != principal.ID {
		return nil, NewPermissionError(principal.ID, 0, "trainer_stats", "read", "not owner")
	}
	if principal.ReadOnly() {
		return nil, NewPermissionError(principal.ID, 0, "trainer_stats", "read", "read-only role")
	}

	stats, err := s.repo.Session().GetTrainerStats(ctx, nil, trainerID)
	if err != nil {
		return nil, NewStoreError("get trainer stats", err)
	}

	return stats, nil
}
