package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories"
	"github.com/SAP-F-2025/exam-delivery-service/internal/services"
	"github.com/SAP-F-2025/exam-delivery-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ResultHandler struct {
	BaseHandler
	resultService     services.ResultService
	assessmentService services.AssessmentService
}

func NewResultHandler(resultService services.ResultService, assessmentService services.AssessmentService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:       NewBaseHandler(logger),
		resultService:     resultService,
		assessmentService: assessmentService,
	}
}

// ListAssessments lists the assessments available for delivery
// @Summary List assessments
// @Tags assessments
// @Produce json
// @Param section query string false "READING, LISTENING or WRITING"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} services.AssessmentListResponse
// @Router /assessments [get]
func (h *ResultHandler) ListAssessments(c *gin.Context) {
	page := max(1, parseIntQuery(c, "page", 1))
	size := parseIntQuery(c, "size", 10)
	if size <= 0 {
		size = 10
	}

	filters := repositories.AssessmentFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if section := c.Query("section"); section != "" {
		kind := models.SectionKind(section)
		filters.Section = &kind
	}

	resp, err := h.assessmentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportResults downloads the results of an assessment as xlsx
// @Summary Export results
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Assessment ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /results/assessments/{id}/export [get]
func (h *ResultHandler) ExportResults(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting results", "assessment_id", id)

	var buf bytes.Buffer
	if err := h.resultService.ExportResults(c.Request.Context(), id, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="assessment-%d-results.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetResultStats returns aggregate scores of an assessment
// @Summary Result statistics
// @Tags results
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} services.ResultStatsResponse
// @Router /results/assessments/{id}/stats [get]
func (h *ResultHandler) GetResultStats(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.resultService.Stats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
