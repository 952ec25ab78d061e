package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
	"github.com/saksham-ndma/training-service/internal/services"
	"github.com/saksham-ndma/training-service/internal/utils"
)

// SessionHandler handles training session HTTP requests
type SessionHandler struct {
	*BaseHandler
	sessionService services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	h.LogRequest(c, "create_session", "theme", req.Theme)

	session, err := h.sessionService.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err, "create_session")
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession handles GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), id, principal)
	if err != nil {
		h.handleServiceError(c, err, "get_session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListSessions handles GET /api/v1/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	filters, ok := h.parseSessionFilters(c)
	if !ok {
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), filters, principal)
	if err != nil {
		h.handleServiceError(c, err, "list_sessions")
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// MyTrainings handles GET /api/v1/sessions/my-trainings
func (h *SessionHandler) MyTrainings(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	filters, ok := h.parseSessionFilters(c)
	if !ok {
		return
	}

	sessions, err := h.sessionService.MyTrainings(c.Request.Context(), filters, principal)
	if err != nil {
		h.handleServiceError(c, err, "my_trainings")
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// UpdateSession handles PUT /api/v1/sessions/:id
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	h.LogRequest(c, "update_session", "session_id", id)

	session, err := h.sessionService.Update(c.Request.Context(), id, &req, principal)
	if err != nil {
		h.handleServiceError(c, err, "update_session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "delete_session", "session_id", id)

	if err := h.sessionService.Delete(c.Request.Context(), id, principal); err != nil {
		h.handleServiceError(c, err, "delete_session")
		return
	}

	c.Status(http.StatusNoContent)
}

// CancelSession handles POST /api/v1/sessions/:id/cancel
func (h *SessionHandler) CancelSession(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	// Cancellation body is optional
	var req services.CancelSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	h.LogRequest(c, "cancel_session", "session_id", id)

	session, err := h.sessionService.Cancel(c.Request.Context(), id, &req, principal)
	if err != nil {
		h.handleServiceError(c, err, "cancel_session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitEvidence handles POST /api/v1/sessions/:id/evidence
func (h *SessionHandler) SubmitEvidence(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	h.LogRequest(c, "submit_evidence", "session_id", id)

	session, err := h.sessionService.SubmitEvidence(c.Request.Context(), id, &req, principal)
	if err != nil {
		h.handleServiceError(c, err, "submit_evidence")
		return
	}

	c.JSON(http.StatusOK, session)
}

// ReviewSession handles POST /api/v1/sessions/:id/review
func (h *SessionHandler) ReviewSession(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	h.LogRequest(c, "review_session", "session_id", id, "approve", req.Approve)

	session, err := h.sessionService.Review(c.Request.Context(), id, &req, principal)
	if err != nil {
		h.handleServiceError(c, err, "review_session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetTrainerStats handles GET /api/v1/trainers/:trainer_id/stats
func (h *SessionHandler) GetTrainerStats(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	trainerID := c.Param("trainer_id")
	if trainerID == "" {
		h.RespondWithError(c, http.StatusBadRequest, "Trainer ID is required", nil)
		return
	}

	stats, err := h.sessionService.GetTrainerStats(c.Request.Context(), trainerID, principal)
	if err != nil {
		h.handleServiceError(c, err, "get_trainer_stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// parseSessionFilters parses list filters from query parameters
func (h *SessionHandler) parseSessionFilters(c *gin.Context) (repositories.SessionFilters, bool) {
	page := h.parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := h.parseIntQuery(c, "size", 20)
	if size < 1 || size > 100 {
		size = 20
	}

	filters := repositories.SessionFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if status := c.Query("status"); status != "" {
		sessionStatus := models.SessionStatus(status)
		filters.Status = &sessionStatus
	}
	if verification := c.Query("verification_status"); verification != "" {
		verificationStatus := models.VerificationStatus(verification)
		filters.VerificationStatus = &verificationStatus
	}
	if trainerID := c.Query("trainer_id"); trainerID != "" {
		filters.TrainerID = &trainerID
	}
	if districtIDStr := c.Query("district_id"); districtIDStr != "" {
		districtID := uint(h.parseIntQuery(c, "district_id", 0))
		if districtID == 0 {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid district_id parameter", nil)
			return filters, false
		}
		filters.DistrictID = &districtID
	}
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		parsed, err := time.Parse(time.RFC3339, dateFrom)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid date_from parameter, expected RFC3339", nil)
			return filters, false
		}
		filters.DateFrom = &parsed
	}
	if dateTo := c.Query("date_to"); dateTo != "" {
		parsed, err := time.Parse(time.RFC3339, dateTo)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid date_to parameter, expected RFC3339", nil)
			return filters, false
		}
		filters.DateTo = &parsed
	}

	return filters, true
}
