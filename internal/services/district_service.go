package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/saksham-ndma/training-service/internal/events"
	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
	"github.com/saksham-ndma/training-service/internal/validator"
)

type districtService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewDistrictService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) DistrictService {
	return &districtService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *districtService) Create(ctx context.Context, req *CreateDistrictRequest, principal *models.User) (*DistrictResponse, error) {
	s.logger.Info("Creating district", "name", req.Name, "state", req.State, "user_id", principal.ID)

	// Catalog writes are a national-admin operation
	if !principal.IsAdmin() {
		return nil, NewPermissionError(principal.ID, 0, "district", "create", "district catalog is managed by national admins")
	}

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	district := &models.District{
		Name:         req.Name,
		State:        req.State,
		CensusCode:   req.CensusCode,
		CenterLng:    req.CenterLng,
		CenterLat:    req.CenterLat,
		RiskLevel:    models.RiskModerate,
		ImportSource: "manual",
	}
	if req.RiskLevel != "" {
		district.RiskLevel = models.RiskLevel(req.RiskLevel)
	}

	if err := s.repo.District().Create(ctx, nil, district); err != nil {
		return nil, NewStoreError("create district", err)
	}

	s.logger.Info("District created", "district_id", district.ID)

	return &DistrictResponse{District: district}, nil
}

func (s *districtService) GetByID(ctx context.Context, id uint) (*DistrictResponse, error) {
	district, err := s.repo.District().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDistrictNotFound
		}
		return nil, NewStoreError("get district", err)
	}

	return &DistrictResponse{District: district}, nil
}

func (s *districtService) List(ctx context.Context, filters repositories.DistrictFilters) (*DistrictListResponse, error) {
	districts, total, err := s.repo.District().List(ctx, nil, filters)
	if err != nil {
		return nil, NewStoreError("list districts", err)
	}

	response := &DistrictListResponse{
		Districts: make([]*DistrictResponse, len(districts)),
		Total:     total,
		Page:      (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:      filters.Limit,
	}
	for i, district := range districts {
		response.Districts[i] = &DistrictResponse{District: district}
	}

	return response, nil
}

func (s *districtService) GetStats(ctx context.Context, id uint) (*repositories.DistrictStats, error) {
	stats, err := s.repo.District().GetStats(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDistrictNotFound
		}
		return nil, NewStoreError("get district stats", err)
	}

	return stats, nil
}

// ImportFromWorkbook loads the district catalog from an Excel export. Expected
// columns: name, state, census_code, center_lng, center_lat, risk_level.
// Rows whose census code already exists are skipped, making re-imports safe.
func (s *districtService) ImportFromWorkbook(ctx context.Context, r io.Reader, source string, principal *models.User) (*ImportResult, error) {
	s.logger.Info("Importing district catalog", "source", source, "user_id", principal.ID)

	if !principal.IsAdmin() {
		return nil, NewPermissionError(principal.ID, 0, "district", "import", "district catalog is managed by national admins")
	}

	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, validator.ValidationErrors{{
			Field:   "file",
			Message: fmt.Sprintf("not a readable workbook: %v", err),
			Rule:    "file_format",
		}}
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, validator.ValidationErrors{{
			Field:   "file",
			Message: "workbook has no data rows",
			Rule:    "file_format",
		}}
	}

	result := &ImportResult{ImportSource: source}
	now := time.Now()
	var batch []*models.District

	for i, row := range rows[1:] {
		rowNum := i + 2
		district, rowErr := parseDistrictRow(row, source, now)
		if rowErr != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, rowErr))
			continue
		}

		// Dedupe on census code so re-imports don't duplicate the catalog
		existing, err := s.repo.District().GetByNameAndState(ctx, nil, district.Name, district.State)
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, NewStoreError("check district existence", err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		batch = append(batch, district)
	}

	if len(batch) > 0 {
		err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
			return txRepo.District().CreateBatch(ctx, nil, batch)
		})
		if err != nil {
			return nil, NewStoreError("import districts", err)
		}
		result.Imported = len(batch)
	}

	s.publishImportEvent(ctx, result)
	s.logger.Info("District catalog imported",
		"source", source,
		"imported", result.Imported,
		"skipped", result.Skipped)

	return result, nil
}

func parseDistrictRow(row []string, source string, importedAt time.Time) (*models.District, error) {
	if len(row) < 3 {
		return nil, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}

	name := models.NormalizeGeoName(row[0])
	state := models.NormalizeGeoName(row[1])
	censusCode := strings.TrimSpace(row[2])

	if name == "" || state == "" {
		return nil, fmt.Errorf("name and state are required")
	}
	if censusCode == "" {
		return nil, fmt.Errorf("census code is required")
	}

	district := &models.District{
		Name:         name,
		State:        state,
		CensusCode:   censusCode,
		RiskLevel:    models.RiskModerate,
		ImportSource: source,
		ImportedAt:   &importedAt,
	}

	if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
		lng, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil || lng < -180 || lng > 180 {
			return nil, fmt.Errorf("invalid center longitude %q", row[3])
		}
		district.CenterLng = lng
	}
	if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("invalid center latitude %q", row[4])
		}
		district.CenterLat = lat
	}
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		level := models.RiskLevel(models.NormalizeGeoName(row[5]))
		switch level {
		case models.RiskCritical, models.RiskHigh, models.RiskModerate, models.RiskLow:
			district.RiskLevel = level
		default:
			return nil, fmt.Errorf("unknown risk level %q", row[5])
		}
	}

	return district, nil
}

func (s *districtService) publishImportEvent(ctx context.Context, result *ImportResult) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(events.EventDistrictsImported, &events.DistrictImportEvent{
		ImportSource: result.ImportSource,
		Imported:     result.Imported,
		Skipped:      result.Skipped,
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicTrainingEvents, event); err != nil {
		s.logger.Error("Failed to publish import event", "error", err)
	}
}
