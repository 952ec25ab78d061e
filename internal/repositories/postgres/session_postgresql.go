package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/saksham-ndma/training-service/internal/cache"
	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSessionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SessionRepository {
	return &SessionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Create persists a new training session and invalidates listing caches
func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.TrainingSession) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create training session: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, session.ID, session.TrainerID, session.DistrictID)

	return nil
}

// GetByID retrieves a session by ID with caching
func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TrainingSession, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var session models.TrainingSession

	err := s.cacheManager.Session.CacheOrExecute(ctx, cacheKey, &session, cache.SessionCacheConfig.TTL, func() (interface{}, error) {
		var dbSession models.TrainingSession
		if err := s.getDB(tx).WithContext(ctx).First(&dbSession, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get training session: %w", err)
		}
		return &dbSession, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	return &session, nil
}

// GetByIDWithDistrict retrieves a session with its district preloaded.
// Authorization needs the district's state, so this read skips the cache and
// always reflects the stored row.
func (s *SessionPostgreSQL) GetByIDWithDistrict(ctx context.Context, tx *gorm.DB, id uint) (*models.TrainingSession, error) {
	var session models.TrainingSession
	err := s.getDB(tx).WithContext(ctx).
		Preload("District").
		First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get training session: %w", err)
	}

	return &session, nil
}

// List retrieves sessions with filters and pagination
func (s *SessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.TrainingSession, int64, error) {
	query := s.getDB(tx).WithContext(ctx).Model(&models.TrainingSession{})
	query = s.helpers.ApplySessionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count training sessions: %w", err)
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var sessions []*models.TrainingSession
	if err := query.Preload("District").Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list training sessions: %w", err)
	}

	return sessions, total, nil
}

// UpdateFields applies a partial update of editable session detail fields
func (s *SessionPostgreSQL) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, patch map[string]interface{}) error {
	db := s.getDB(tx)

	var session models.TrainingSession
	if err := db.WithContext(ctx).Select("id, trainer_id, district_id").First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get training session: %w", err)
	}

	patch["updated_at"] = time.Now()

	if err := db.WithContext(ctx).
		Model(&models.TrainingSession{}).
		Where("id = ?", id).
		Updates(patch).Error; err != nil {
		return fmt.Errorf("failed to update training session: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, id, session.TrainerID, session.DistrictID)

	return nil
}

// UpdateEvidence writes the evaluated verification outcome with an optimistic
// version check. The WHERE clause carries the version the caller read; zero
// rows affected means another evidence write landed first.
func (s *SessionPostgreSQL) UpdateEvidence(ctx context.Context, tx *gorm.DB, session *models.TrainingSession, expectedVersion int) error {
	db := s.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.TrainingSession{}).
		Where("id = ? AND version = ?", session.ID, expectedVersion).
		Updates(map[string]interface{}{
			"verified_lng":                     session.VerifiedLng,
			"verified_lat":                     session.VerifiedLat,
			"distance_deviation_meters":        session.DistanceDeviationMeters,
			"is_within_geofence":               session.IsWithinGeofence,
			"attendance_claimed_count":         session.AttendanceValidation.ClaimedCount,
			"attendance_ai_detected_count":     session.AttendanceValidation.AIDetectedCount,
			"attendance_confidence_score":      session.AttendanceValidation.ConfidenceScore,
			"attendance_is_flagged_discrepancy": session.AttendanceValidation.IsFlaggedDiscrepancy,
			"verification_status":              session.VerificationStatus,
			"verification_logs":                session.VerificationLogs,
			"version":                          expectedVersion + 1,
			"updated_at":                       time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update session evidence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish missing row from stale version
		var count int64
		if err := db.WithContext(ctx).
			Model(&models.TrainingSession{}).
			Where("id = ?", session.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		if count == 0 {
			return repositories.ErrNotFound
		}
		return repositories.ErrVersionConflict
	}

	session.Version = expectedVersion + 1

	cache.InvalidateSessionCache(ctx, s.cacheManager, session.ID, session.TrainerID, session.DistrictID)

	return nil
}

// UpdateVerificationStatus moves only the verification status and its audit
// log, used by the manual review path.
func (s *SessionPostgreSQL) UpdateVerificationStatus(ctx context.Context, tx *gorm.DB, id uint, status models.VerificationStatus, logs []byte) error {
	db := s.getDB(tx)

	var session models.TrainingSession
	if err := db.WithContext(ctx).Select("id, trainer_id, district_id").First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get training session: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.TrainingSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification_status": status,
			"verification_logs":   logs,
			"updated_at":          time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to update verification status: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, id, session.TrainerID, session.DistrictID)

	return nil
}

// Delete soft deletes a training session
func (s *SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)

	var session models.TrainingSession
	if err := db.WithContext(ctx).Select("id, trainer_id, district_id").First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get training session before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.TrainingSession{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete training session: %w", err)
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, id, session.TrainerID, session.DistrictID)

	return nil
}

// GetTrainerStats aggregates session counts for a trainer with caching
func (s *SessionPostgreSQL) GetTrainerStats(ctx context.Context, tx *gorm.DB, trainerID string) (*repositories.TrainerStats, error) {
	cacheKey := fmt.Sprintf("trainer:%s:summary", trainerID)
	var stats repositories.TrainerStats

	err := s.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := s.getDB(tx)
		fresh := &repositories.TrainerStats{}

		var total, verified, flagged, upcoming, cancelled int64

		base := func() *gorm.DB {
			return db.WithContext(ctx).
				Model(&models.TrainingSession{}).
				Where("trainer_id = ?", trainerID)
		}

		if err := base().Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count trainer sessions: %w", err)
		}
		if err := base().Where("verification_status = ?", models.VerificationVerified).Count(&verified).Error; err != nil {
			return nil, fmt.Errorf("failed to count verified sessions: %w", err)
		}
		if err := base().Where("verification_status = ?", models.VerificationFlagged).Count(&flagged).Error; err != nil {
			return nil, fmt.Errorf("failed to count flagged sessions: %w", err)
		}
		if err := base().Where("status = ? AND start_date > ?", models.SessionScheduled, time.Now()).Count(&upcoming).Error; err != nil {
			return nil, fmt.Errorf("failed to count upcoming sessions: %w", err)
		}
		if err := base().Where("status = ?", models.SessionCancelled).Count(&cancelled).Error; err != nil {
			return nil, fmt.Errorf("failed to count cancelled sessions: %w", err)
		}

		fresh.TotalSessions = int(total)
		fresh.VerifiedSessions = int(verified)
		fresh.FlaggedSessions = int(flagged)
		fresh.UpcomingSessions = int(upcoming)
		fresh.CancelledSessions = int(cancelled)

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
