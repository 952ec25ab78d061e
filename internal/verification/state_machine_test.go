package verification

import (
	"testing"
	"time"

	"github.com/saksham-ndma/training-service/internal/geo"
	"github.com/saksham-ndma/training-service/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.VerificationStatus
		to   models.VerificationStatus
		want bool
	}{
		{name: "unverified to pending", from: models.VerificationUnverified, to: models.VerificationPendingReview, want: true},
		{name: "pending to verified", from: models.VerificationPendingReview, to: models.VerificationVerified, want: true},
		{name: "pending to flagged", from: models.VerificationPendingReview, to: models.VerificationFlagged, want: true},
		{name: "verified back to pending", from: models.VerificationVerified, to: models.VerificationPendingReview, want: true},
		{name: "flagged is terminal", from: models.VerificationFlagged, to: models.VerificationPendingReview, want: false},
		{name: "flagged cannot auto-verify", from: models.VerificationFlagged, to: models.VerificationVerified, want: false},
		{name: "unverified cannot skip to verified", from: models.VerificationUnverified, to: models.VerificationVerified, want: false},
		{name: "same status is idempotent", from: models.VerificationFlagged, to: models.VerificationFlagged, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestFlaggedDiscrepancy(t *testing.T) {
	tests := []struct {
		name     string
		claimed  int
		detected int
		want     bool
	}{
		{name: "exact match", claimed: 100, detected: 100, want: false},
		{name: "within 20 percent", claimed: 100, detected: 85, want: false},
		{name: "exactly 20 percent is not flagged", claimed: 100, detected: 80, want: false},
		{name: "over 20 percent flags", claimed: 100, detected: 70, want: true},
		{name: "overcount flags too", claimed: 100, detected: 130, want: true},
		{name: "zero claimed with detections", claimed: 0, detected: 5, want: true},
		{name: "both zero", claimed: 0, detected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlaggedDiscrepancy(tt.claimed, tt.detected, DefaultDiscrepancyRatio); got != tt.want {
				t.Errorf("FlaggedDiscrepancy(%d, %d) = %v, want %v", tt.claimed, tt.detected, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve(true, false); got != models.VerificationVerified {
		t.Errorf("Resolve(within, clean) = %s, want verified", got)
	}
	if got := Resolve(false, false); got != models.VerificationFlagged {
		t.Errorf("Resolve(outside, clean) = %s, want flagged", got)
	}
	if got := Resolve(true, true); got != models.VerificationFlagged {
		t.Errorf("Resolve(within, discrepancy) = %s, want flagged", got)
	}
}

func newTestSession() *models.TrainingSession {
	return &models.TrainingSession{
		ID:                 1,
		ClaimedLng:         77.2090,
		ClaimedLat:         28.6139,
		VerificationStatus: models.VerificationUnverified,
		Version:            1,
	}
}

func TestApplyEvidence(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("clean evidence verifies", func(t *testing.T) {
		session := newTestSession()
		ev := Evidence{
			VerifiedLocation: geo.Coordinate{Lng: session.ClaimedLng, Lat: session.ClaimedLat + 0.001},
			ClaimedCount:     50,
			AIDetectedCount:  48,
			ConfidenceScore:  0.95,
		}

		outcome, err := ApplyEvidence(session, ev, cfg)
		if err != nil {
			t.Fatalf("ApplyEvidence failed: %v", err)
		}
		if outcome.Status != models.VerificationVerified {
			t.Errorf("Status = %s, want verified", outcome.Status)
		}
		if session.VerificationStatus != models.VerificationVerified {
			t.Errorf("session status = %s, want verified", session.VerificationStatus)
		}
		if !session.HasVerifiedLocation() {
			t.Error("verified location should be recorded")
		}
		if session.AttendanceValidation.AIDetectedCount != 48 {
			t.Errorf("AIDetectedCount = %d, want 48", session.AttendanceValidation.AIDetectedCount)
		}
	})

	t.Run("attendance discrepancy flags", func(t *testing.T) {
		session := newTestSession()
		ev := Evidence{
			VerifiedLocation: geo.Coordinate{Lng: session.ClaimedLng, Lat: session.ClaimedLat},
			ClaimedCount:     100,
			AIDetectedCount:  70,
			ConfidenceScore:  0.9,
		}

		outcome, err := ApplyEvidence(session, ev, cfg)
		if err != nil {
			t.Fatalf("ApplyEvidence failed: %v", err)
		}
		if outcome.Status != models.VerificationFlagged {
			t.Errorf("Status = %s, want flagged", outcome.Status)
		}
		if !session.AttendanceValidation.IsFlaggedDiscrepancy {
			t.Error("discrepancy flag should be set")
		}
	})

	t.Run("outside geofence flags", func(t *testing.T) {
		session := newTestSession()
		ev := Evidence{
			VerifiedLocation: geo.Coordinate{Lng: session.ClaimedLng, Lat: session.ClaimedLat + 0.05},
			ClaimedCount:     40,
			AIDetectedCount:  40,
		}

		outcome, err := ApplyEvidence(session, ev, cfg)
		if err != nil {
			t.Fatalf("ApplyEvidence failed: %v", err)
		}
		if outcome.Status != models.VerificationFlagged {
			t.Errorf("Status = %s, want flagged", outcome.Status)
		}
		if session.IsWithinGeofence {
			t.Error("IsWithinGeofence should be false")
		}
	})

	t.Run("invalid coordinate leaves session untouched", func(t *testing.T) {
		session := newTestSession()
		ev := Evidence{
			VerifiedLocation: geo.Coordinate{Lng: 200, Lat: 0},
			ClaimedCount:     10,
			AIDetectedCount:  10,
		}

		if _, err := ApplyEvidence(session, ev, cfg); err == nil {
			t.Fatal("expected error for out-of-range longitude")
		}
		if session.VerificationStatus != models.VerificationUnverified {
			t.Errorf("status = %s, want unverified unchanged", session.VerificationStatus)
		}
		if session.HasVerifiedLocation() {
			t.Error("rejected submission must not record a verified location")
		}
		if session.AttendanceValidation.ClaimedCount != 0 {
			t.Error("rejected submission must not record attendance")
		}
	})

	t.Run("flagged session rejects evidence that would verify", func(t *testing.T) {
		session := newTestSession()
		session.VerificationStatus = models.VerificationFlagged
		ev := Evidence{
			VerifiedLocation: geo.Coordinate{Lng: session.ClaimedLng, Lat: session.ClaimedLat},
			ClaimedCount:     10,
			AIDetectedCount:  10,
		}

		if _, err := ApplyEvidence(session, ev, cfg); err == nil {
			t.Fatal("flagged session should not auto-verify from new evidence")
		}
		if session.VerificationStatus != models.VerificationFlagged {
			t.Errorf("status = %s, want flagged unchanged", session.VerificationStatus)
		}
	})

	t.Run("resubmitting identical flagged evidence is idempotent", func(t *testing.T) {
		session := newTestSession()
		ev := Evidence{
			VerifiedLocation: geo.Coordinate{Lng: session.ClaimedLng, Lat: session.ClaimedLat},
			ClaimedCount:     100,
			AIDetectedCount:  60,
		}

		first, err := ApplyEvidence(session, ev, cfg)
		if err != nil {
			t.Fatalf("first submission failed: %v", err)
		}
		second, err := ApplyEvidence(session, ev, cfg)
		if err != nil {
			t.Fatalf("identical resubmission failed: %v", err)
		}
		if first.Status != second.Status {
			t.Errorf("outcomes differ: %s vs %s", first.Status, second.Status)
		}
	})
}

func TestRollForwardStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.Add(-2 * time.Hour)
	end := now.Add(2 * time.Hour)

	tests := []struct {
		name    string
		current models.SessionStatus
		start   time.Time
		end     time.Time
		want    models.SessionStatus
	}{
		{name: "before start", current: models.SessionScheduled, start: now.Add(time.Hour), end: now.Add(3 * time.Hour), want: models.SessionScheduled},
		{name: "in window", current: models.SessionScheduled, start: start, end: end, want: models.SessionInProgress},
		{name: "after end", current: models.SessionInProgress, start: start, end: now.Add(-time.Hour), want: models.SessionCompleted},
		{name: "cancelled is sticky", current: models.SessionCancelled, start: start, end: end, want: models.SessionCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RollForwardStatus(tt.current, tt.start, tt.end, now); got != tt.want {
				t.Errorf("RollForwardStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}
