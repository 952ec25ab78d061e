package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
	"github.com/saksham-ndma/training-service/internal/services"
	"github.com/saksham-ndma/training-service/internal/utils"
)

// DistrictHandler handles district catalog HTTP requests
type DistrictHandler struct {
	*BaseHandler
	districtService services.DistrictService
}

// NewDistrictHandler creates a new district handler
func NewDistrictHandler(districtService services.DistrictService, logger utils.Logger) *DistrictHandler {
	return &DistrictHandler{
		BaseHandler:     NewBaseHandler(logger),
		districtService: districtService,
	}
}

// CreateDistrict handles POST /api/v1/districts
func (h *DistrictHandler) CreateDistrict(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req services.CreateDistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	h.LogRequest(c, "create_district", "name", req.Name, "state", req.State)

	district, err := h.districtService.Create(c.Request.Context(), &req, principal)
	if err != nil {
		h.handleServiceError(c, err, "create_district")
		return
	}

	c.JSON(http.StatusCreated, district)
}

// GetDistrict handles GET /api/v1/districts/:id
func (h *DistrictHandler) GetDistrict(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	district, err := h.districtService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "get_district")
		return
	}

	c.JSON(http.StatusOK, district)
}

// ListDistricts handles GET /api/v1/districts
func (h *DistrictHandler) ListDistricts(c *gin.Context) {
	page := h.parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	size := h.parseIntQuery(c, "size", 20)
	if size < 1 || size > 100 {
		size = 20
	}

	filters := repositories.DistrictFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if state := c.Query("state"); state != "" {
		filters.State = &state
	}
	if riskLevel := c.Query("risk_level"); riskLevel != "" {
		level := models.RiskLevel(riskLevel)
		filters.RiskLevel = &level
	}

	districts, err := h.districtService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err, "list_districts")
		return
	}

	c.JSON(http.StatusOK, districts)
}

// GetDistrictStats handles GET /api/v1/districts/:id/stats
func (h *DistrictHandler) GetDistrictStats(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.districtService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "get_district_stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ImportDistricts handles POST /api/v1/districts/import with a multipart
// workbook upload.
func (h *DistrictHandler) ImportDistricts(c *gin.Context) {
	principal, err := GetUserFromContext(c)
	if err != nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Workbook file is required", gin.H{
			"field": "file",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read uploaded file", nil)
		return
	}
	defer file.Close()

	source := c.DefaultPostForm("source", "upload")

	h.LogRequest(c, "import_districts", "filename", fileHeader.Filename, "source", source)

	result, err := h.districtService.ImportFromWorkbook(c.Request.Context(), file, source, principal)
	if err != nil {
		h.handleServiceError(c, err, "import_districts")
		return
	}

	c.JSON(http.StatusOK, result)
}
