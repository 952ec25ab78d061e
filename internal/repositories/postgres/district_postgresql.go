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

type DistrictPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewDistrictPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.DistrictRepository {
	return &DistrictPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (d *DistrictPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}

// Create persists a new district
func (d *DistrictPostgreSQL) Create(ctx context.Context, tx *gorm.DB, district *models.District) error {
	db := d.getDB(tx)
	if err := db.WithContext(ctx).Create(district).Error; err != nil {
		return fmt.Errorf("failed to create district: %w", err)
	}

	cache.InvalidateDistrictCache(ctx, d.cacheManager, district.ID, district.State)

	return nil
}

// CreateBatch inserts imported districts in chunks inside one statement batch
func (d *DistrictPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, districts []*models.District) error {
	if len(districts) == 0 {
		return nil
	}

	db := d.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(districts, 100).Error; err != nil {
		return fmt.Errorf("failed to batch create districts: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, d.cacheManager.District, "*")

	return nil
}

// GetByID retrieves a district by ID with caching
func (d *DistrictPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.District, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var district models.District

	err := d.cacheManager.District.CacheOrExecute(ctx, cacheKey, &district, cache.DistrictCacheConfig.TTL, func() (interface{}, error) {
		var dbDistrict models.District
		if err := d.getDB(tx).WithContext(ctx).First(&dbDistrict, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get district: %w", err)
		}
		return &dbDistrict, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	return &district, nil
}

// GetByName retrieves a district by its normalized name
func (d *DistrictPostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.District, error) {
	normalized := models.NormalizeGeoName(name)

	cacheKey := fmt.Sprintf("name:%s", normalized)
	var district models.District

	err := d.cacheManager.District.CacheOrExecute(ctx, cacheKey, &district, cache.DistrictCacheConfig.TTL, func() (interface{}, error) {
		var dbDistrict models.District
		if err := d.getDB(tx).WithContext(ctx).
			Where("name = ?", normalized).
			First(&dbDistrict).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get district by name: %w", err)
		}
		return &dbDistrict, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	return &district, nil
}

// GetByNameAndState disambiguates districts that share a name across states
func (d *DistrictPostgreSQL) GetByNameAndState(ctx context.Context, tx *gorm.DB, name, state string) (*models.District, error) {
	var district models.District
	err := d.getDB(tx).WithContext(ctx).
		Where("name = ? AND state = ?", models.NormalizeGeoName(name), models.NormalizeGeoName(state)).
		First(&district).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get district by name and state: %w", err)
	}

	return &district, nil
}

// GetByState retrieves all districts of a state with caching. This backs the
// state-admin visibility scope, so an empty result is a valid answer and is
// cached too.
func (d *DistrictPostgreSQL) GetByState(ctx context.Context, tx *gorm.DB, state string) ([]*models.District, error) {
	normalized := models.NormalizeGeoName(state)

	cacheKey := fmt.Sprintf("state:%s:all", normalized)
	var districts []*models.District

	err := d.cacheManager.District.CacheOrExecute(ctx, cacheKey, &districts, cache.DistrictCacheConfig.TTL, func() (interface{}, error) {
		var dbDistricts []*models.District
		if err := d.getDB(tx).WithContext(ctx).
			Where("state = ?", normalized).
			Order("name ASC").
			Find(&dbDistricts).Error; err != nil {
			return nil, fmt.Errorf("failed to get districts by state: %w", err)
		}
		return dbDistricts, nil
	})
	if err != nil {
		return nil, err
	}

	return districts, nil
}

// List retrieves districts with filters and pagination
func (d *DistrictPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.DistrictFilters) ([]*models.District, int64, error) {
	query := d.getDB(tx).WithContext(ctx).Model(&models.District{})

	if filters.State != nil {
		normalized := models.NormalizeGeoName(*filters.State)
		filters.State = &normalized
	}
	query = d.helpers.ApplyDistrictFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count districts: %w", err)
	}

	query = d.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var districts []*models.District
	if err := query.Find(&districts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list districts: %w", err)
	}

	return districts, total, nil
}

// UpdateStats rolls a completed training into the district's aggregates
func (d *DistrictPostgreSQL) UpdateStats(ctx context.Context, tx *gorm.DB, id uint, trainedDelta int, lastTraining time.Time) error {
	db := d.getDB(tx)

	var district models.District
	if err := db.WithContext(ctx).Select("id, state").First(&district, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to get district: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.District{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_volunteers_trained": gorm.Expr("total_volunteers_trained + ?", trainedDelta),
			"last_training_date":       lastTraining,
			"updated_at":               time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to update district stats: %w", err)
	}

	cache.InvalidateDistrictCache(ctx, d.cacheManager, id, district.State)

	return nil
}

// GetStats aggregates session statistics for a district with caching
func (d *DistrictPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.DistrictStats, error) {
	cacheKey := fmt.Sprintf("district:%d:summary", id)
	var stats repositories.DistrictStats

	err := d.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := d.getDB(tx)
		fresh := &repositories.DistrictStats{}

		var district models.District
		if err := db.WithContext(ctx).
			Select("id, total_volunteers_trained, last_training_date").
			First(&district, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get district: %w", err)
		}

		var total, verified, flagged int64

		base := func() *gorm.DB {
			return db.WithContext(ctx).
				Model(&models.TrainingSession{}).
				Where("district_id = ?", id)
		}

		if err := base().Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count district sessions: %w", err)
		}
		if err := base().Where("verification_status = ?", models.VerificationVerified).Count(&verified).Error; err != nil {
			return nil, fmt.Errorf("failed to count verified sessions: %w", err)
		}
		if err := base().Where("verification_status = ?", models.VerificationFlagged).Count(&flagged).Error; err != nil {
			return nil, fmt.Errorf("failed to count flagged sessions: %w", err)
		}

		fresh.TotalSessions = int(total)
		fresh.VerifiedSessions = int(verified)
		fresh.FlaggedSessions = int(flagged)
		fresh.VolunteersTrained = district.TotalVolunteersTrained
		fresh.LastTrainingDate = district.LastTrainingDate

		return fresh, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	return &stats, nil
}
