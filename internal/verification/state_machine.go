// Package verification owns the training-session verification lifecycle:
// unverified → pending_review → verified | flagged. All transitions flow
// through ApplyEvidence/Resolve so the same inputs always yield the same
// outcome, and no caller can set a verification status directly.
package verification

import (
	"fmt"
	"time"

	"github.com/saksham-ndma/training-service/internal/geo"
	"github.com/saksham-ndma/training-service/internal/models"
)

// DefaultDiscrepancyRatio is the attendance discrepancy threshold: more than
// a 20% relative difference between claimed and detected counts is flagged.
const DefaultDiscrepancyRatio = 0.2

// Config carries the tunable thresholds; both come from deployment
// configuration rather than being baked into the evaluation.
type Config struct {
	GeofenceThresholdMeters float64
	DiscrepancyRatio        float64
}

// DefaultConfig returns the recommended deployment defaults.
func DefaultConfig() Config {
	return Config{
		GeofenceThresholdMeters: geo.DefaultGeofenceThresholdMeters,
		DiscrepancyRatio:        DefaultDiscrepancyRatio,
	}
}

// Evidence is one location/attendance submission for a session.
type Evidence struct {
	VerifiedLocation geo.Coordinate
	ClaimedCount     int
	AIDetectedCount  int
	ConfidenceScore  float64
}

// Outcome is the deterministic result of evaluating evidence.
type Outcome struct {
	DistanceMeters       float64
	WithinFence          bool
	IsFlaggedDiscrepancy bool
	Status               models.VerificationStatus
}

// allowedTransitions defines the automatic verification state machine.
// flagged is terminal for automatic transitions; only a manual review may
// move it back to verified.
var allowedTransitions = map[models.VerificationStatus][]models.VerificationStatus{
	models.VerificationUnverified:    {models.VerificationPendingReview},
	models.VerificationPendingReview: {models.VerificationVerified, models.VerificationFlagged},
	models.VerificationVerified:      {models.VerificationPendingReview},
	models.VerificationFlagged:       {},
}

// CanTransition reports whether the automatic state machine permits moving
// from one verification status to another. Re-entering the same status is
// always permitted so re-evaluating identical evidence stays idempotent.
func CanTransition(from, to models.VerificationStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FlaggedDiscrepancy applies the relative-discrepancy rule:
// |claimed − detected| / max(claimed, 1) > ratio.
func FlaggedDiscrepancy(claimedCount, detectedCount int, ratio float64) bool {
	diff := claimedCount - detectedCount
	if diff < 0 {
		diff = -diff
	}
	base := claimedCount
	if base < 1 {
		base = 1
	}
	return float64(diff)/float64(base) > ratio
}

// Resolve applies the resolution rule once evidence is present: within the
// fence and no attendance discrepancy means verified, anything else flagged.
func Resolve(withinFence, flaggedDiscrepancy bool) models.VerificationStatus {
	if withinFence && !flaggedDiscrepancy {
		return models.VerificationVerified
	}
	return models.VerificationFlagged
}

// Evaluate computes the full outcome for a session's claimed coordinate and
// one evidence submission. Pure: no session state is touched.
func Evaluate(claimed geo.Coordinate, ev Evidence, cfg Config) (Outcome, error) {
	if err := ev.VerifiedLocation.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := claimed.Validate(); err != nil {
		return Outcome{}, err
	}

	eval := geo.Evaluate(claimed, ev.VerifiedLocation, cfg.GeofenceThresholdMeters)
	flagged := FlaggedDiscrepancy(ev.ClaimedCount, ev.AIDetectedCount, cfg.DiscrepancyRatio)

	return Outcome{
		DistanceMeters:       eval.DistanceMeters,
		WithinFence:          eval.WithinFence,
		IsFlaggedDiscrepancy: flagged,
		Status:               Resolve(eval.WithinFence, flagged),
	}, nil
}

// ApplyEvidence evaluates evidence and writes the outcome onto the session:
// deviation fields, attendance validation and the resolved verification
// status. It validates the transition and returns an error without mutating
// the session when the state machine forbids it, so a failed submission never
// leaves a partial update behind.
func ApplyEvidence(session *models.TrainingSession, ev Evidence, cfg Config) (Outcome, error) {
	outcome, err := Evaluate(geo.Coordinate{Lng: session.ClaimedLng, Lat: session.ClaimedLat}, ev, cfg)
	if err != nil {
		return Outcome{}, err
	}

	// Evidence always passes through pending_review before resolution.
	if !CanTransition(session.VerificationStatus, models.VerificationPendingReview) &&
		session.VerificationStatus != outcome.Status {
		return Outcome{}, fmt.Errorf("verification status %s cannot accept new evidence", session.VerificationStatus)
	}

	lng, lat := ev.VerifiedLocation.Lng, ev.VerifiedLocation.Lat
	session.VerifiedLng = &lng
	session.VerifiedLat = &lat
	session.DistanceDeviationMeters = outcome.DistanceMeters
	session.IsWithinGeofence = outcome.WithinFence
	session.AttendanceValidation = models.AttendanceValidation{
		ClaimedCount:         ev.ClaimedCount,
		AIDetectedCount:      ev.AIDetectedCount,
		ConfidenceScore:      ev.ConfidenceScore,
		IsFlaggedDiscrepancy: outcome.IsFlaggedDiscrepancy,
	}
	session.VerificationStatus = outcome.Status

	return outcome, nil
}

// RollForwardStatus derives the date-driven session status. The scheduling
// axis is independent of verification and is never changed by evidence.
func RollForwardStatus(current models.SessionStatus, startDate, endDate, now time.Time) models.SessionStatus {
	if current == models.SessionCancelled {
		return current
	}
	switch {
	case now.Before(startDate):
		return models.SessionScheduled
	case now.After(endDate):
		return models.SessionCompleted
	default:
		return models.SessionInProgress
	}
}
