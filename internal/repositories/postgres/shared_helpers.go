package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/saksham-ndma/training-service/internal/repositories"
)

// SharedHelpers provides query helpers shared between repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplySessionFilters applies session list filters to a query.
// An empty-but-present DistrictIDs slice is handled by callers: it means the
// caller's visibility scope matches nothing, so no query should run at all.
func (h *SharedHelpers) ApplySessionFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.TrainerID != nil {
		query = query.Where("trainer_id = ?", *filters.TrainerID)
	}
	if filters.DistrictID != nil {
		query = query.Where("district_id = ?", *filters.DistrictID)
	}
	if len(filters.DistrictIDs) > 0 {
		query = query.Where("district_id IN ?", filters.DistrictIDs)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.VerificationStatus != nil {
		query = query.Where("verification_status = ?", *filters.VerificationStatus)
	}
	if filters.DateFrom != nil {
		query = query.Where("start_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("start_date <= ?", *filters.DateTo)
	}

	return query
}

// ApplyDistrictFilters applies district list filters to a query
func (h *SharedHelpers) ApplyDistrictFilters(query *gorm.DB, filters repositories.DistrictFilters) *gorm.DB {
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.RiskLevel != nil {
		query = query.Where("risk_level = ?", *filters.RiskLevel)
	}

	return query
}

// ApplyPaginationAndSort applies pagination and sorting with a column
// allowlist so client-supplied sort fields can never reach the SQL as-is.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"start_date": true,
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"state":      true,
	}

	column := "created_at"
	if allowedSortColumns[sortBy] {
		column = sortBy
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query = query.Limit(limit)

	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
