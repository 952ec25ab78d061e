package services

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/saksham-ndma/training-service/internal/events"
	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/validator"
)

func newTestDistrictService(t *testing.T) (DistrictService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	repo := newMockRepository()

	service := NewDistrictService(repo, nil, logger, validator.New(), publisher)
	return service, repo, publisher
}

func ndmaAdmin() *models.User {
	return &models.User{ID: "ndma-1", Role: models.RoleNDMAAdmin}
}

func TestDistrictService_Create(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestDistrictService(t)

	req := &CreateDistrictRequest{
		Name:       "dibrugarh",
		State:      "assam",
		CensusCode: "AS-011",
		CenterLng:  94.9120,
		CenterLat:  27.4728,
	}

	t.Run("admin creates district", func(t *testing.T) {
		resp, err := service.Create(ctx, req, ndmaAdmin())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.RiskLevel != models.RiskModerate {
			t.Errorf("risk level = %s, want moderate default", resp.RiskLevel)
		}
		if resp.ImportSource != "manual" {
			t.Errorf("import source = %s, want manual", resp.ImportSource)
		}
	})

	t.Run("trainer denied", func(t *testing.T) {
		trainer := &models.User{ID: "t1", Role: models.RoleTrainer}
		_, err := service.Create(ctx, req, trainer)
		if !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("invalid risk level rejected", func(t *testing.T) {
		bad := *req
		bad.RiskLevel = "apocalyptic"
		_, err := service.Create(ctx, &bad, ndmaAdmin())
		if !IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

// buildWorkbook creates an in-memory district catalog export
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"name", "state", "census_code", "center_lng", "center_lat", "risk_level"}
	for col, v := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, v)
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to build workbook: %v", err)
	}
	return buf
}

func TestDistrictService_ImportFromWorkbook(t *testing.T) {
	ctx := context.Background()

	t.Run("imports new rows and skips existing", func(t *testing.T) {
		service, repo, publisher := newTestDistrictService(t)

		buf := buildWorkbook(t, [][]interface{}{
			{"kamrup", "assam", "AS-001"},                                    // already in the catalog
			{"dibrugarh", "assam", "AS-011", 94.9120, 27.4728, "high"},       // new
			{"ernakulam", "kerala", "KL-007", 76.2673, 9.9816},               // new, default risk
			{"", "assam", "AS-999"},                                          // missing name
			{"jorhat", "assam", "AS-012", "not-a-number", 26.75},             // bad longitude
			{"golaghat", "assam", "AS-013", 93.96, 26.51, "apocalyptic"},     // bad risk level
		})

		result, err := service.ImportFromWorkbook(ctx, buf, "census_2026", ndmaAdmin())
		if err != nil {
			t.Fatalf("ImportFromWorkbook failed: %v", err)
		}

		if result.Imported != 2 {
			t.Errorf("imported = %d, want 2", result.Imported)
		}
		if result.Skipped != 4 {
			t.Errorf("skipped = %d, want 4 (1 duplicate + 3 bad rows)", result.Skipped)
		}
		if len(result.Errors) != 3 {
			t.Errorf("errors = %v, want 3 row errors", result.Errors)
		}

		imported, err := repo.district.GetByNameAndState(ctx, nil, "dibrugarh", "assam")
		if err != nil {
			t.Fatalf("imported district missing: %v", err)
		}
		if imported.RiskLevel != models.RiskHigh {
			t.Errorf("risk level = %s, want high", imported.RiskLevel)
		}
		if imported.ImportSource != "census_2026" {
			t.Errorf("import source = %s, want census_2026", imported.ImportSource)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventDistrictsImported {
			t.Errorf("expected districts_imported event, got %+v", published)
		}
	})

	t.Run("non-admin denied", func(t *testing.T) {
		service, _, _ := newTestDistrictService(t)
		buf := buildWorkbook(t, [][]interface{}{{"x", "y", "Z-1"}})

		trainer := &models.User{ID: "t1", Role: models.RoleTrainer}
		_, err := service.ImportFromWorkbook(ctx, buf, "upload", trainer)
		if !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("garbage file rejected", func(t *testing.T) {
		service, _, _ := newTestDistrictService(t)
		_, err := service.ImportFromWorkbook(ctx, bytes.NewBufferString("not a workbook"), "upload", ndmaAdmin())
		if !IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("header-only workbook rejected", func(t *testing.T) {
		service, _, _ := newTestDistrictService(t)
		buf := buildWorkbook(t, nil)
		_, err := service.ImportFromWorkbook(ctx, buf, "upload", ndmaAdmin())
		if !IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
