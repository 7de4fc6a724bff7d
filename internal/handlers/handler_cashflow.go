package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
	"github.com/BuildrFin/construction_finance_app/internal/middleware"
)

// cashFlowHandler handles HTTP requests related to cash flow projections.
type cashFlowHandler struct {
	cashFlowService portssvc.CashFlowSvcFacade
}

func newCashFlowHandler(cs portssvc.CashFlowSvcFacade) *cashFlowHandler {
	return &cashFlowHandler{
		cashFlowService: cs,
	}
}

// registerCashFlowRoutes registers routes related to cash flow projections.
func registerCashFlowRoutes(rg *gin.RouterGroup, cashFlowService portssvc.CashFlowSvcFacade) {
	h := newCashFlowHandler(cashFlowService)

	projections := rg.Group("/cash-flow-projections")
	{
		projections.POST("", h.createProjection)
		projections.GET("", h.listCompanyWideProjections)
		projections.GET("/:projectionID", h.getProjection)
		projections.PUT("/:projectionID/weeks/:weekNumber", h.updateWeekData)
	}

	rg.GET("/projects/:projectID/cash-flow-projections", h.listProjectionsByProject)
	rg.GET("/projects/:projectID/cash-flow-projections/scenario/:scenario", h.getProjectionByScenario)
}

// createProjection godoc
// @Summary Create a thirteen-week cash flow projection
// @Description Creates a projection with all 13 weekly buckets supplied up front
// @Tags cash-flow
// @Accept  json
// @Produce  json
// @Param   projection body dto.CreateProjectionRequest true "Projection details"
// @Success 201 {object} dto.ProjectionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Projection already exists for this project and scenario"
// @Failure 500 {object} map[string]string "Failed to create projection"
// @Router /cash-flow-projections [post]
func (h *cashFlowHandler) createProjection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateProjection", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("project_id", req.ProjectID), slog.String("scenario", req.Scenario))
	logger.Info("Received request to create cash flow projection")

	projection, err := h.cashFlowService.CreateProjection(c.Request.Context(), req, creatorUserID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create projection")
		return
	}

	logger.Info("Cash flow projection created successfully", slog.String("projection_id", projection.ProjectionID))
	c.JSON(http.StatusCreated, dto.ToProjectionResponse(projection))
}

// getProjection godoc
// @Summary Get a projection by ID
// @Description Retrieves a projection with its weeks and computed aggregates
// @Tags cash-flow
// @Produce  json
// @Param   projectionID path string true "Projection ID"
// @Success 200 {object} dto.ProjectionResponse
// @Failure 404 {object} map[string]string "Projection not found"
// @Failure 500 {object} map[string]string "Failed to retrieve projection"
// @Router /cash-flow-projections/{projectionID} [get]
func (h *cashFlowHandler) getProjection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectionID := c.Param("projectionID")

	logger = logger.With(slog.String("projection_id", projectionID))

	projection, err := h.cashFlowService.GetProjectionByID(c.Request.Context(), projectionID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve projection")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectionResponse(projection))
}

// listProjectionsByProject godoc
// @Summary List projections for a project
// @Tags cash-flow
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Success 200 {array} dto.ProjectionResponse
// @Failure 500 {object} map[string]string "Failed to list projections"
// @Router /projects/{projectID}/cash-flow-projections [get]
func (h *cashFlowHandler) listProjectionsByProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	logger = logger.With(slog.String("project_id", projectID))

	projections, err := h.cashFlowService.ListProjectionsByProject(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list projections")
		return
	}

	c.JSON(http.StatusOK, dto.ToListProjectionResponse(projections))
}

// listCompanyWideProjections godoc
// @Summary List company-wide projections
// @Description Lists projections not tied to a single project. When a scenario
// query parameter is given, returns only the latest company-wide projection
// for that scenario.
// @Tags cash-flow
// @Produce  json
// @Param   scenario query string false "Scenario filter" Enums(BEST_CASE, EXPECTED, WORST_CASE)
// @Success 200 {array} dto.ProjectionResponse
// @Failure 400 {object} map[string]string "Invalid scenario"
// @Failure 404 {object} map[string]string "No projection for the scenario"
// @Failure 500 {object} map[string]string "Failed to list projections"
// @Router /cash-flow-projections [get]
func (h *cashFlowHandler) listCompanyWideProjections(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if scenarioParam := c.Query("scenario"); scenarioParam != "" {
		scenario := domain.CashFlowScenario(scenarioParam)
		if !scenario.IsValid() {
			logger.Warn("Invalid scenario filter", slog.String("scenario", scenarioParam))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scenario query parameter"})
			return
		}
		projection, err := h.cashFlowService.GetProjectionByScenario(c.Request.Context(), "", scenario)
		if err != nil {
			handleServiceError(c, logger, err, "Failed to retrieve projection")
			return
		}
		c.JSON(http.StatusOK, []dto.ProjectionResponse{dto.ToProjectionResponse(projection)})
		return
	}

	projections, err := h.cashFlowService.ListProjectionsByProject(c.Request.Context(), "")
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list projections")
		return
	}

	c.JSON(http.StatusOK, dto.ToListProjectionResponse(projections))
}

// getProjectionByScenario godoc
// @Summary Get the latest projection for a project and scenario
// @Tags cash-flow
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Param   scenario path string true "Scenario" Enums(BEST_CASE, EXPECTED, WORST_CASE)
// @Success 200 {object} dto.ProjectionResponse
// @Failure 400 {object} map[string]string "Invalid scenario"
// @Failure 404 {object} map[string]string "No projection for the scenario"
// @Failure 500 {object} map[string]string "Failed to retrieve projection"
// @Router /projects/{projectID}/cash-flow-projections/scenario/{scenario} [get]
func (h *cashFlowHandler) getProjectionByScenario(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	scenario := domain.CashFlowScenario(c.Param("scenario"))
	if !scenario.IsValid() {
		logger.Warn("Invalid scenario", slog.String("scenario", string(scenario)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scenario"})
		return
	}

	logger = logger.With(slog.String("project_id", projectID), slog.String("scenario", string(scenario)))

	projection, err := h.cashFlowService.GetProjectionByScenario(c.Request.Context(), projectID, scenario)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve projection")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectionResponse(projection))
}

// updateWeekData godoc
// @Summary Replace one week of a projection
// @Description Replaces the bucket for the given week number and recomputes the
// net cash flow and running balances of every subsequent week.
// @Tags cash-flow
// @Accept  json
// @Produce  json
// @Param   projectionID path string true "Projection ID"
// @Param   weekNumber path int true "Week number (1-13)"
// @Param   week body dto.CashFlowWeekInput true "New week data"
// @Success 200 {object} dto.ProjectionResponse
// @Failure 400 {object} map[string]string "Invalid input or currency mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Projection not found"
// @Failure 500 {object} map[string]string "Failed to update week"
// @Router /cash-flow-projections/{projectionID}/weeks/{weekNumber} [put]
func (h *cashFlowHandler) updateWeekData(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectionID := c.Param("projectionID")

	weekNumber, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil {
		logger.Warn("Invalid week number", slog.String("week_number", c.Param("weekNumber")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekNumber must be an integer"})
		return
	}

	var week dto.CashFlowWeekInput
	if err := c.ShouldBindJSON(&week); err != nil {
		logger.Warn("Failed to bind JSON for UpdateWeekData", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("projection_id", projectionID), slog.Int("week_number", weekNumber))
	logger.Info("Received request to update projection week")

	projection, err := h.cashFlowService.UpdateWeekData(c.Request.Context(), projectionID, weekNumber, week, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update week")
		return
	}

	logger.Info("Projection week updated successfully")
	c.JSON(http.StatusOK, dto.ToProjectionResponse(projection))
}
