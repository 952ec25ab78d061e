package validator

import (
	"testing"
	"time"

	"github.com/saksham-ndma/training-service/internal/models"
)

func validCreateRequest() *SessionCreateRequest {
	return &SessionCreateRequest{
		Theme:     "Cyclone shelter management",
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(26 * time.Hour),
		VenueLng:  77.2090,
		VenueLat:  28.6139,
	}
}

func TestValidateSessionCreate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid request", func(t *testing.T) {
		if errs := bv.ValidateSessionCreate(validCreateRequest()); errs.HasErrors() {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("missing theme", func(t *testing.T) {
		req := validCreateRequest()
		req.Theme = ""
		if errs := bv.ValidateSessionCreate(req); !errs.HasErrors() {
			t.Error("empty theme must fail")
		}
	})

	t.Run("whitespace theme", func(t *testing.T) {
		req := validCreateRequest()
		req.Theme = "   "
		if errs := bv.ValidateSessionCreate(req); !errs.HasErrors() {
			t.Error("whitespace-only theme must fail")
		}
	})

	t.Run("end before start", func(t *testing.T) {
		req := validCreateRequest()
		req.EndDate = req.StartDate.Add(-time.Hour)
		errs := bv.ValidateSessionCreate(req)
		if !errs.HasErrors() {
			t.Fatal("end before start must fail")
		}
		if errs[0].Field != "end_date" {
			t.Errorf("field = %s, want end_date", errs[0].Field)
		}
	})

	t.Run("longitude out of range", func(t *testing.T) {
		req := validCreateRequest()
		req.VenueLng = 181
		if errs := bv.ValidateSessionCreate(req); !errs.HasErrors() {
			t.Error("longitude 181 must fail")
		}
	})

	t.Run("latitude out of range", func(t *testing.T) {
		req := validCreateRequest()
		req.VenueLat = -91
		if errs := bv.ValidateSessionCreate(req); !errs.HasErrors() {
			t.Error("latitude -91 must fail")
		}
	})

	t.Run("invalid ingestion source", func(t *testing.T) {
		req := validCreateRequest()
		req.IngestionSource = "carrier_pigeon"
		if errs := bv.ValidateSessionCreate(req); !errs.HasErrors() {
			t.Error("unknown ingestion source must fail")
		}
	})
}

func TestValidateSessionUpdate(t *testing.T) {
	bv := NewBusinessValidator()
	existing := &models.TrainingSession{
		Theme:     "Flood response",
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(26 * time.Hour),
		Status:    models.SessionScheduled,
	}

	t.Run("partial update keeps stored dates consistent", func(t *testing.T) {
		// Moving only the end date before the stored start must fail
		badEnd := existing.StartDate.Add(-time.Hour)
		req := &SessionUpdateRequest{EndDate: &badEnd}
		if errs := bv.ValidateSessionUpdate(req, existing); !errs.HasErrors() {
			t.Error("end date before stored start must fail")
		}
	})

	t.Run("valid partial update", func(t *testing.T) {
		theme := "Flood response (revised)"
		req := &SessionUpdateRequest{Theme: &theme}
		if errs := bv.ValidateSessionUpdate(req, existing); errs.HasErrors() {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("completed session not editable", func(t *testing.T) {
		done := *existing
		done.Status = models.SessionCompleted
		theme := "too late"
		req := &SessionUpdateRequest{Theme: &theme}
		if errs := bv.ValidateSessionUpdate(req, &done); !errs.HasErrors() {
			t.Error("completed session must reject edits")
		}
	})
}

func TestValidateEvidence(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid evidence", func(t *testing.T) {
		req := &EvidenceRequest{VerifiedLng: 77.2, VerifiedLat: 28.6, ClaimedCount: 50, AIDetectedCount: 48, ConfidenceScore: 0.9}
		if errs := bv.ValidateEvidence(req); errs.HasErrors() {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("out-of-range coordinates", func(t *testing.T) {
		req := &EvidenceRequest{VerifiedLng: 999, VerifiedLat: 28.6}
		if errs := bv.ValidateEvidence(req); !errs.HasErrors() {
			t.Error("longitude 999 must fail")
		}
	})

	t.Run("negative counts", func(t *testing.T) {
		req := &EvidenceRequest{VerifiedLng: 77.2, VerifiedLat: 28.6, ClaimedCount: -1}
		if errs := bv.ValidateEvidence(req); !errs.HasErrors() {
			t.Error("negative claimed count must fail")
		}
	})

	t.Run("confidence above one", func(t *testing.T) {
		req := &EvidenceRequest{VerifiedLng: 77.2, VerifiedLat: 28.6, ConfidenceScore: 1.5}
		if errs := bv.ValidateEvidence(req); !errs.HasErrors() {
			t.Error("confidence above 1 must fail")
		}
	})
}
