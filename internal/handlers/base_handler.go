package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saksham-ndma/training-service/internal/services"
	"github.com/saksham-ndma/training-service/internal/utils"
	"github.com/saksham-ndma/training-service/internal/validator"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(logger utils.Logger) *BaseHandler {
	return &BaseHandler{logger: logger}
}

// ErrorResponse is the envelope for all error payloads
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is used for operations with no meaningful body
type SuccessResponse struct {
	Message string `json:"message"`
}

// LogRequest logs an incoming request with structured context
func (h *BaseHandler) LogRequest(c *gin.Context, operation string, args ...any) {
	logArgs := append([]any{
		"operation", operation,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"user_id", c.GetString("user_id"),
	}, args...)

	h.logger.Info("Handling request", logArgs...)
}

// RespondWithError sends a structured error response
func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// parseIDParam parses a numeric path parameter
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) (uint, bool) {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid ID parameter", gin.H{
			"parameter": param,
			"value":     idStr,
		})
		return 0, false
	}
	return uint(id), true
}

// parseIntQuery parses an integer query parameter with a default
func (h *BaseHandler) parseIntQuery(c *gin.Context, name string, defaultValue int) int {
	value := c.Query(name)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// handleServiceError maps service errors to HTTP responses. Permission
// failures stay distinct from not-found: a caller who may not touch a
// session learns it exists but not its contents.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error, operation string) {
	h.logger.Error("Service error", "operation", operation, "error", err)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", validationErrs)
		return
	}

	var permissionErr *services.PermissionError
	if errors.As(err, &permissionErr) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", gin.H{
			"resource": permissionErr.Resource,
			"action":   permissionErr.Action,
			"reason":   permissionErr.Reason,
		})
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		h.RespondWithError(c, http.StatusConflict, "Conflict", gin.H{
			"resource": conflictErr.Resource,
			"message":  conflictErr.Message,
		})
		return
	}

	if services.IsNotFoundError(err) {
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", nil)
		return
	}

	var storeErr *services.StoreError
	if errors.As(err, &storeErr) {
		h.RespondWithError(c, http.StatusServiceUnavailable, "Storage unavailable", gin.H{
			"operation": storeErr.Op,
		})
		return
	}

	h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", nil)
}
