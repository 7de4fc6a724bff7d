package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
	"github.com/BuildrFin/construction_finance_app/internal/middleware"
)

// budgetHandler handles HTTP requests related to project budgets.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

// newBudgetHandler creates a new budgetHandler.
func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{
		budgetService: bs,
	}
}

// registerBudgetRoutes registers routes related to project budgets.
func registerBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgetsByStatus)
		budgets.GET("/:budgetID", h.getBudget)
		budgets.PATCH("/:budgetID/status", h.updateBudgetStatus)
		budgets.POST("/:budgetID/baseline", h.approveBaseline)
		budgets.POST("/:budgetID/lines", h.addBudgetLine)
		budgets.PUT("/:budgetID/lines/:lineID", h.replaceBudgetLine)
		budgets.DELETE("/:budgetID/lines/:lineID", h.removeBudgetLine)
	}

	rg.GET("/projects/:projectID/budgets", h.listBudgetsByProject)
}

// createBudget godoc
// @Summary Create a new project budget
// @Description Creates a new budget in draft status, optionally with initial lines
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget body dto.CreateBudgetRequest true "Budget details"
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create budget"
// @Router /budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID), slog.String("project_id", req.ProjectID))
	logger.Info("Received request to create budget", slog.String("budget_name", req.Name))

	newBudget, err := h.budgetService.CreateBudget(c.Request.Context(), req, creatorUserID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create budget")
		return
	}

	logger.Info("Budget created successfully", slog.String("budget_id", newBudget.BudgetID))
	c.JSON(http.StatusCreated, dto.ToBudgetResponse(newBudget))
}

// getBudget godoc
// @Summary Get a budget by ID
// @Description Retrieves details for a specific budget, including its lines
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to retrieve budget"
// @Router /budgets/{budgetID} [get]
func (h *budgetHandler) getBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), budgetID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve budget")
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// listBudgetsByProject godoc
// @Summary List budgets for a project
// @Description Retrieves a paginated list of budgets belonging to a project
// @Tags budgets
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListBudgetsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list budgets"
// @Router /projects/{projectID}/budgets [get]
func (h *budgetHandler) listBudgetsByProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	var params dto.ListBudgetsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListBudgets", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("project_id", projectID))

	budgets, nextToken, err := h.budgetService.ListBudgetsByProject(c.Request.Context(), projectID, params)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list budgets")
		return
	}

	logger.Info("Budgets listed successfully", slog.Int("count", len(budgets)))
	c.JSON(http.StatusOK, dto.ListBudgetsResponse{
		Budgets:   dto.ToListBudgetResponse(budgets),
		NextToken: nextToken,
	})
}

// listBudgetsByStatus godoc
// @Summary List budgets by lifecycle status
// @Description Retrieves all budgets currently in the given status
// @Tags budgets
// @Produce  json
// @Param   status query string true "Budget status" Enums(DRAFT, IN_REVIEW, APPROVED, BASELINE, CLOSED)
// @Success 200 {array} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Missing or invalid status"
// @Failure 500 {object} map[string]string "Failed to list budgets"
// @Router /budgets [get]
func (h *budgetHandler) listBudgetsByStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := domain.BudgetStatus(c.Query("status"))
	if !status.IsValid() {
		logger.Warn("Invalid budget status filter", slog.String("status", string(status)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing status query parameter"})
		return
	}

	budgets, err := h.budgetService.ListBudgetsByStatus(c.Request.Context(), status)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list budgets")
		return
	}

	c.JSON(http.StatusOK, dto.ToListBudgetResponse(budgets))
}

// updateBudgetStatus godoc
// @Summary Transition a budget's status
// @Description Moves the budget along its lifecycle (draft, review, approved, baseline, closed)
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   status body dto.UpdateBudgetStatusRequest true "Target status"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Transition not allowed from current status"
// @Failure 500 {object} map[string]string "Failed to update budget status"
// @Router /budgets/{budgetID}/status [patch]
func (h *budgetHandler) updateBudgetStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.UpdateBudgetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateBudgetStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("target_status", req.Status))
	logger.Info("Received request to update budget status")

	budget, err := h.budgetService.UpdateBudgetStatus(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update budget status")
		return
	}

	logger.Info("Budget status updated successfully")
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// approveBaseline godoc
// @Summary Approve a budget baseline
// @Description Freezes the budget at its approved total; line edits are rejected afterwards
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   baseline body dto.ApproveBaselineRequest true "Approved total"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget not in an approvable status"
// @Failure 500 {object} map[string]string "Failed to approve baseline"
// @Router /budgets/{budgetID}/baseline [post]
func (h *budgetHandler) approveBaseline(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.ApproveBaselineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApproveBaseline", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("approver_user_id", userID))
	logger.Info("Received request to approve budget baseline")

	budget, err := h.budgetService.ApproveBaseline(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to approve baseline")
		return
	}

	logger.Info("Budget baseline approved successfully")
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// addBudgetLine godoc
// @Summary Add a line to a budget
// @Description Appends a cost-code line to a mutable budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   line body dto.BudgetLineInput true "Line details"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget is baselined or duplicate cost code"
// @Failure 500 {object} map[string]string "Failed to add budget line"
// @Router /budgets/{budgetID}/lines [post]
func (h *budgetHandler) addBudgetLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var line dto.BudgetLineInput
	if err := c.ShouldBindJSON(&line); err != nil {
		logger.Warn("Failed to bind JSON for AddBudgetLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("cost_code", line.CostCode))
	logger.Info("Received request to add budget line")

	budget, err := h.budgetService.AddBudgetLine(c.Request.Context(), budgetID, line, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to add budget line")
		return
	}

	logger.Info("Budget line added successfully")
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// replaceBudgetLine godoc
// @Summary Replace a budget line
// @Description Swaps the content of an existing line on a mutable budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   lineID path string true "Line ID"
// @Param   line body dto.BudgetLineInput true "New line content"
// @Success 200 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Budget or line not found"
// @Failure 409 {object} map[string]string "Budget is baselined"
// @Failure 500 {object} map[string]string "Failed to replace budget line"
// @Router /budgets/{budgetID}/lines/{lineID} [put]
func (h *budgetHandler) replaceBudgetLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")
	lineID := c.Param("lineID")

	var line dto.BudgetLineInput
	if err := c.ShouldBindJSON(&line); err != nil {
		logger.Warn("Failed to bind JSON for ReplaceBudgetLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("line_id", lineID))
	logger.Info("Received request to replace budget line")

	budget, err := h.budgetService.ReplaceBudgetLine(c.Request.Context(), budgetID, lineID, line, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to replace budget line")
		return
	}

	logger.Info("Budget line replaced successfully")
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// removeBudgetLine godoc
// @Summary Remove a budget line
// @Description Removes a line from a mutable budget
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   lineID path string true "Line ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Budget or line not found"
// @Failure 409 {object} map[string]string "Budget is baselined"
// @Failure 500 {object} map[string]string "Failed to remove budget line"
// @Router /budgets/{budgetID}/lines/{lineID} [delete]
func (h *budgetHandler) removeBudgetLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")
	lineID := c.Param("lineID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("line_id", lineID))
	logger.Info("Received request to remove budget line")

	budget, err := h.budgetService.RemoveBudgetLine(c.Request.Context(), budgetID, lineID, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to remove budget line")
		return
	}

	logger.Info("Budget line removed successfully")
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}
