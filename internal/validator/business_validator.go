package validator

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/saksham-ndma/training-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSessionCreate validates training session creation business rules
func (bv *BusinessValidator) ValidateSessionCreate(req *SessionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateSessionDates(req.StartDate, req.EndDate)...)

	return errors
}

// ValidateSessionUpdate validates session update business rules against the
// stored session, since partial updates may touch only one of the dates.
func (bv *BusinessValidator) ValidateSessionUpdate(req *SessionUpdateRequest, existing *models.TrainingSession) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	start := existing.StartDate
	end := existing.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	errors = append(errors, bv.validateSessionDates(start, end)...)

	if existing.Status == models.SessionCompleted || existing.Status == models.SessionCancelled {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "completed or cancelled sessions cannot be edited",
			Value:   existing.Status,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateEvidence validates an evidence submission. Coordinate range
// failures must reject before any session mutation happens.
func (bv *BusinessValidator) ValidateEvidence(req *EvidenceRequest) ValidationErrors {
	return bv.Validate(req)
}

func (bv *BusinessValidator) validateSessionDates(start, end time.Time) ValidationErrors {
	var errors ValidationErrors

	if start.IsZero() || end.IsZero() {
		return errors
	}

	if end.Before(start) {
		errors = append(errors, ValidationError{
			Field:   "end_date",
			Message: "must not be before start_date",
			Value:   end,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Session theme validation (1-200 characters)
	bv.validate.RegisterValidation("session_theme", func(fl validator.FieldLevel) bool {
		theme := strings.TrimSpace(fl.Field().String())
		return len(theme) >= 1 && len(theme) <= 200
	})

	// Description validation (max 1000 characters)
	bv.validate.RegisterValidation("session_description", func(fl validator.FieldLevel) bool {
		desc := fl.Field().String()
		return len(desc) <= 1000
	})

	// WGS84 longitude range
	bv.validate.RegisterValidation("longitude_range", func(fl validator.FieldLevel) bool {
		lng := fl.Field().Float()
		return lng >= -180 && lng <= 180
	})

	// WGS84 latitude range
	bv.validate.RegisterValidation("latitude_range", func(fl validator.FieldLevel) bool {
		lat := fl.Field().Float()
		return lat >= -90 && lat <= 90
	})

	// district risk level validation
	bv.validate.RegisterValidation("risk_level", func(fl validator.FieldLevel) bool {
		level := fl.Field().String()
		validLevels := []models.RiskLevel{models.RiskCritical, models.RiskHigh, models.RiskModerate, models.RiskLow}
		for _, vl := range validLevels {
			if models.RiskLevel(level) == vl {
				return true
			}
		}
		return false
	})

	// user role validation
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		validRoles := []models.UserRole{models.RoleNDMAAdmin, models.RoleSDMAAdmin, models.RoleTrainer, models.RolePartnerOrg, models.RoleVolunteer}
		for _, vr := range validRoles {
			if models.UserRole(role) == vr {
				return true
			}
		}
		return false
	})
}
