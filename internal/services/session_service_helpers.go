package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saksham-ndma/training-service/internal/access"
	"github.com/saksham-ndma/training-service/internal/events"
	"github.com/saksham-ndma/training-service/internal/geo"
	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
	"github.com/saksham-ndma/training-service/internal/verification"
)

// catalogAdapter exposes the district repository as the read-only catalog the
// access package consults. Not-found is reported as a nil district, never as
// an error: an unresolvable assignment fails closed, not loud.
type catalogAdapter struct {
	repo repositories.Repository
}

func newCatalogAdapter(repo repositories.Repository) access.DistrictCatalog {
	return &catalogAdapter{repo: repo}
}

func (c *catalogAdapter) GetByState(ctx context.Context, state string) ([]*models.District, error) {
	return c.repo.District().GetByState(ctx, nil, state)
}

func (c *catalogAdapter) GetByName(ctx context.Context, name string) (*models.District, error) {
	district, err := c.repo.District().GetByName(ctx, nil, name)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return district, nil
}

// generateSessionCode builds a human-readable unique session code like
// TRN-KAMRUP-1A2B3C4D.
func generateSessionCode(districtName string) string {
	cleaned := strings.Builder{}
	for _, r := range strings.ToUpper(districtName) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			cleaned.WriteRune(r)
		}
	}
	slug := cleaned.String()
	if len(slug) > 8 {
		slug = slug[:8]
	}
	if slug == "" {
		slug = "DIST"
	}

	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("TRN-%s-%s", slug, suffix)
}

func scopeAllows(scope access.ReadScope, districtID uint) bool {
	if scope.All {
		return true
	}
	for _, id := range scope.DistrictIDs {
		if id == districtID {
			return true
		}
	}
	return false
}

func evidenceFromRequest(req *SubmitEvidenceRequest) verification.Evidence {
	return verification.Evidence{
		VerifiedLocation: geo.Coordinate{Lng: req.VerifiedLng, Lat: req.VerifiedLat},
		ClaimedCount:     req.ClaimedCount,
		AIDetectedCount:  req.AIDetectedCount,
		ConfidenceScore:  req.ConfidenceScore,
	}
}

func buildSessionPatch(req *UpdateSessionRequest) map[string]interface{} {
	patch := make(map[string]interface{})
	if req.Theme != nil {
		patch["theme"] = *req.Theme
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.StartDate != nil {
		patch["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		patch["end_date"] = *req.EndDate
	}
	if req.VenueAddress != nil {
		patch["venue_address"] = *req.VenueAddress
	}
	return patch
}

func emptySessionList(filters repositories.SessionFilters) *SessionListResponse {
	return &SessionListResponse{
		Sessions: []*SessionResponse{},
		Total:    0,
		Page:     1,
		Size:     filters.Limit,
	}
}

func (s *sessionService) getSessionWithDistrict(ctx context.Context, id uint) (*models.TrainingSession, error) {
	session, err := s.repo.Session().GetByIDWithDistrict(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, NewStoreError("get session", err)
	}
	return session, nil
}

// appendVerificationLog appends one entry to the session's append-only
// transition history.
func (s *sessionService) appendVerificationLog(session *models.TrainingSession, entry models.VerificationLogEntry) error {
	var logs []models.VerificationLogEntry
	if len(session.VerificationLogs) > 0 {
		if err := json.Unmarshal(session.VerificationLogs, &logs); err != nil {
			return fmt.Errorf("failed to decode verification logs: %w", err)
		}
	}

	logs = append(logs, entry)

	encoded, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("failed to encode verification logs: %w", err)
	}
	session.VerificationLogs = encoded

	return nil
}

func (s *sessionService) buildSessionResponse(session *models.TrainingSession, principal *models.User) *SessionResponse {
	var district *models.District
	if session.District.ID != 0 {
		district = &session.District
	}

	canEdit := access.Authorize(principal, access.ActionUpdate, session, district).Allowed &&
		session.Status != models.SessionCompleted && session.Status != models.SessionCancelled
	canDelete := access.Authorize(principal, access.ActionDelete, session, district).Allowed
	canSubmit := access.Authorize(principal, access.ActionUpdate, session, district).Allowed &&
		session.Status != models.SessionCancelled &&
		session.VerificationStatus != models.VerificationFlagged

	return &SessionResponse{
		TrainingSession:   session,
		EffectiveStatus:   verification.RollForwardStatus(session.Status, session.StartDate, session.EndDate, time.Now()),
		CanEdit:           canEdit,
		CanDelete:         canDelete,
		CanSubmitEvidence: canSubmit,
	}
}

func (s *sessionService) buildSessionListResponse(sessions []*models.TrainingSession, total int64, filters repositories.SessionFilters, principal *models.User) *SessionListResponse {
	response := &SessionListResponse{
		Sessions: make([]*SessionResponse, len(sessions)),
		Total:    total,
		Page:     (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:     filters.Limit,
	}
	for i, session := range sessions {
		response.Sessions[i] = s.buildSessionResponse(session, principal)
	}
	return response
}

// ===== EVENT PUBLISHING =====

// publishSessionEvent publishes best-effort: event delivery never fails the
// caller's request.
func (s *sessionService) publishSessionEvent(ctx context.Context, eventType string, session *models.TrainingSession) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, &events.SessionEvent{
		SessionID:    session.ID,
		SessionCode:  session.SessionCode,
		TrainerID:    session.TrainerID,
		DistrictID:   session.DistrictID,
		Theme:        session.Theme,
		Status:       session.Status,
		Verification: session.VerificationStatus,
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicTrainingEvents, event); err != nil {
		s.logger.Error("Failed to publish session event", "error", err, "event_type", eventType, "session_id", session.ID)
	}
}

func (s *sessionService) publishEvidenceEvent(ctx context.Context, session *models.TrainingSession, outcome verification.Outcome) {
	if s.eventPublisher == nil {
		return
	}

	payload := &events.EvidenceEvent{
		SessionID:               session.ID,
		SessionCode:             session.SessionCode,
		TrainerID:               session.TrainerID,
		DistrictID:              session.DistrictID,
		DistanceDeviationMeters: outcome.DistanceMeters,
		IsWithinGeofence:        outcome.WithinFence,
		IsFlaggedDiscrepancy:    outcome.IsFlaggedDiscrepancy,
		Verification:            outcome.Status,
	}

	if err := s.eventPublisher.Publish(ctx, events.TopicTrainingEvents, events.NewEvent(events.EventEvidenceSubmitted, payload)); err != nil {
		s.logger.Error("Failed to publish evidence event", "error", err, "session_id", session.ID)
	}

	resolvedType := events.EventSessionFlagged
	if outcome.Status == models.VerificationVerified {
		resolvedType = events.EventSessionVerified
	}
	if err := s.eventPublisher.Publish(ctx, events.TopicTrainingEvents, events.NewEvent(resolvedType, payload)); err != nil {
		s.logger.Error("Failed to publish verification event", "error", err, "session_id", session.ID)
	}
}

// rollUpDistrictStats records a verified training in the district aggregates.
// Best-effort: the verification write already succeeded.
func (s *sessionService) rollUpDistrictStats(ctx context.Context, session *models.TrainingSession) {
	trained := session.AttendanceValidation.AIDetectedCount
	if trained == 0 {
		trained = session.AttendanceValidation.ClaimedCount
	}

	if err := s.repo.District().UpdateStats(ctx, nil, session.DistrictID, trained, session.EndDate); err != nil {
		s.logger.Error("Failed to roll up district stats", "error", err, "district_id", session.DistrictID, "session_id", session.ID)
	}
}
