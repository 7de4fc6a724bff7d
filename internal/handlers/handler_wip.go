package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
	"github.com/BuildrFin/construction_finance_app/internal/middleware"
)

// wipHandler handles HTTP requests related to work-in-progress reporting.
type wipHandler struct {
	wipService portssvc.WIPSvcFacade
}

func newWIPHandler(ws portssvc.WIPSvcFacade) *wipHandler {
	return &wipHandler{
		wipService: ws,
	}
}

// registerWIPRoutes registers routes related to WIP reports.
func registerWIPRoutes(rg *gin.RouterGroup, wipService portssvc.WIPSvcFacade) {
	h := newWIPHandler(wipService)

	rg.GET("/projects/:projectID/wip-reports", h.listReports)
	rg.GET("/projects/:projectID/wip-reports/latest", h.getLatestReport)
	rg.POST("/projects/:projectID/wip-reports", h.computeReport)

	rg.POST("/wip-summary", h.computeSummary)
}

// parseReportDate reads the optional reportDate query parameter, defaulting
// to today.
func parseReportDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("reportDate")
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), true
	}
	reportDate, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return reportDate, true
}

// computeReport godoc
// @Summary Compute a WIP report for a project
// @Description Derives a percentage-of-completion snapshot from the project's
// baseline budget, approved job costs and billings, and persists it.
// @Tags wip
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Param   reportDate query string false "Report date (YYYY-MM-DD), defaults to today"
// @Success 201 {object} dto.WIPReportResponse
// @Failure 400 {object} map[string]string "Invalid report date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Project has no baseline budget"
// @Failure 409 {object} map[string]string "Report already exists for this date"
// @Failure 500 {object} map[string]string "Failed to compute WIP report"
// @Router /projects/{projectID}/wip-reports [post]
func (h *wipHandler) computeReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	reportDate, ok := parseReportDate(c)
	if !ok {
		logger.Warn("Invalid report date", slog.String("report_date", c.Query("reportDate")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "reportDate must be formatted as YYYY-MM-DD"})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("project_id", projectID), slog.Time("report_date", reportDate))
	logger.Info("Received request to compute WIP report")

	report, err := h.wipService.ComputeReport(c.Request.Context(), projectID, reportDate, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to compute WIP report")
		return
	}

	logger.Info("WIP report computed successfully")
	c.JSON(http.StatusCreated, dto.ToWIPReportResponse(report))
}

// getLatestReport godoc
// @Summary Get the most recent WIP report for a project
// @Tags wip
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Success 200 {object} dto.WIPReportResponse
// @Failure 404 {object} map[string]string "No report exists for the project"
// @Failure 500 {object} map[string]string "Failed to retrieve WIP report"
// @Router /projects/{projectID}/wip-reports/latest [get]
func (h *wipHandler) getLatestReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	logger = logger.With(slog.String("project_id", projectID))

	report, err := h.wipService.GetLatestReport(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve WIP report")
		return
	}

	c.JSON(http.StatusOK, dto.ToWIPReportResponse(report))
}

// listReports godoc
// @Summary List the WIP report history for a project
// @Tags wip
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Success 200 {array} dto.WIPReportResponse
// @Failure 500 {object} map[string]string "Failed to list WIP reports"
// @Router /projects/{projectID}/wip-reports [get]
func (h *wipHandler) listReports(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	logger = logger.With(slog.String("project_id", projectID))

	reports, err := h.wipService.ListReportsByProject(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list WIP reports")
		return
	}

	responses := make([]dto.WIPReportResponse, len(reports))
	for i := range reports {
		responses[i] = dto.ToWIPReportResponse(&reports[i])
	}
	c.JSON(http.StatusOK, responses)
}

// computeSummary godoc
// @Summary Roll up the latest WIP reports of a set of projects
// @Description Aggregates the latest report of each requested project into a
// portfolio summary with over/under billing totals and a health score.
// @Tags wip
// @Accept  json
// @Produce  json
// @Param   summary body dto.ComputeWIPSummaryRequest true "Projects to roll up"
// @Param   reportDate query string false "Report date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.WIPSummaryResponse
// @Failure 400 {object} map[string]string "Invalid input or mixed currencies"
// @Failure 404 {object} map[string]string "A requested project has no reports"
// @Failure 500 {object} map[string]string "Failed to compute WIP summary"
// @Router /wip-summary [post]
func (h *wipHandler) computeSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ComputeWIPSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ComputeWIPSummary", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	reportDate, ok := parseReportDate(c)
	if !ok {
		logger.Warn("Invalid report date", slog.String("report_date", c.Query("reportDate")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "reportDate must be formatted as YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.Int("project_count", len(req.ProjectIDs)))
	logger.Info("Received request to compute WIP summary")

	summary, err := h.wipService.ComputeSummary(c.Request.Context(), req, reportDate)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to compute WIP summary")
		return
	}

	logger.Info("WIP summary computed successfully")
	c.JSON(http.StatusOK, dto.ToWIPSummaryResponse(summary))
}
