package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
	"github.com/BuildrFin/construction_finance_app/internal/middleware"
)

// jobCostHandler handles HTTP requests related to job cost records.
type jobCostHandler struct {
	jobCostService portssvc.JobCostSvcFacade
}

func newJobCostHandler(js portssvc.JobCostSvcFacade) *jobCostHandler {
	return &jobCostHandler{
		jobCostService: js,
	}
}

// registerJobCostRoutes registers routes related to job cost records.
func registerJobCostRoutes(rg *gin.RouterGroup, jobCostService portssvc.JobCostSvcFacade) {
	h := newJobCostHandler(jobCostService)

	jobCosts := rg.Group("/job-costs")
	{
		jobCosts.POST("", h.createJobCost)
		jobCosts.GET("/:jobCostID", h.getJobCost)
		jobCosts.POST("/:jobCostID/approve", h.approveJobCost)
		jobCosts.PUT("/:jobCostID/actual", h.updateActualAmount)
		jobCosts.PUT("/:jobCostID/committed", h.updateCommittedAmount)
		jobCosts.POST("/:jobCostID/apply-to-budget", h.applyToBudget)
	}

	rg.GET("/projects/:projectID/job-costs", h.listJobCostsByProject)
	rg.GET("/projects/:projectID/job-costs/pending-approval", h.listPendingApproval)
	rg.GET("/projects/:projectID/job-costs/over-budget", h.listOverBudget)
	rg.GET("/budgets/:budgetID/job-costs", h.listJobCostsByBudget)
}

// createJobCost godoc
// @Summary Record a job cost
// @Description Creates a new job cost record against a budget's cost code
// @Tags job-costs
// @Accept  json
// @Produce  json
// @Param   jobCost body dto.CreateJobCostRequest true "Job cost details"
// @Success 201 {object} dto.JobCostResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to create job cost"
// @Router /job-costs [post]
func (h *jobCostHandler) createJobCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJobCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateJobCost", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("project_id", req.ProjectID), slog.String("cost_code", req.CostCode))
	logger.Info("Received request to create job cost")

	record, err := h.jobCostService.CreateJobCost(c.Request.Context(), req, creatorUserID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create job cost")
		return
	}

	logger.Info("Job cost created successfully", slog.String("job_cost_id", record.JobCostID))
	c.JSON(http.StatusCreated, dto.ToJobCostResponse(record))
}

// getJobCost godoc
// @Summary Get a job cost record by ID
// @Tags job-costs
// @Produce  json
// @Param   jobCostID path string true "Job cost ID"
// @Success 200 {object} dto.JobCostResponse
// @Failure 404 {object} map[string]string "Job cost not found"
// @Failure 500 {object} map[string]string "Failed to retrieve job cost"
// @Router /job-costs/{jobCostID} [get]
func (h *jobCostHandler) getJobCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobCostID := c.Param("jobCostID")

	logger = logger.With(slog.String("job_cost_id", jobCostID))

	record, err := h.jobCostService.GetJobCostByID(c.Request.Context(), jobCostID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve job cost")
		return
	}

	c.JSON(http.StatusOK, dto.ToJobCostResponse(record))
}

// listJobCostsByProject godoc
// @Summary List job costs for a project
// @Description Retrieves a paginated list of job cost records for a project
// @Tags job-costs
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListJobCostsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list job costs"
// @Router /projects/{projectID}/job-costs [get]
func (h *jobCostHandler) listJobCostsByProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	var params dto.ListJobCostsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListJobCosts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("project_id", projectID))

	records, nextToken, err := h.jobCostService.ListJobCostsByProject(c.Request.Context(), projectID, params)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list job costs")
		return
	}

	logger.Info("Job costs listed successfully", slog.Int("count", len(records)))
	c.JSON(http.StatusOK, dto.ListJobCostsResponse{
		JobCosts:  dto.ToListJobCostResponse(records),
		NextToken: nextToken,
	})
}

// listJobCostsByBudget godoc
// @Summary List job costs charged against a budget
// @Tags job-costs
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {array} dto.JobCostResponse
// @Failure 500 {object} map[string]string "Failed to list job costs"
// @Router /budgets/{budgetID}/job-costs [get]
func (h *jobCostHandler) listJobCostsByBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	logger = logger.With(slog.String("budget_id", budgetID))

	records, err := h.jobCostService.ListJobCostsByBudget(c.Request.Context(), budgetID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list job costs")
		return
	}

	c.JSON(http.StatusOK, dto.ToListJobCostResponse(records))
}

// listPendingApproval godoc
// @Summary List job costs awaiting approval
// @Tags job-costs
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Success 200 {array} dto.JobCostResponse
// @Failure 500 {object} map[string]string "Failed to list job costs"
// @Router /projects/{projectID}/job-costs/pending-approval [get]
func (h *jobCostHandler) listPendingApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	logger = logger.With(slog.String("project_id", projectID))

	records, err := h.jobCostService.ListPendingApproval(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list job costs")
		return
	}

	c.JSON(http.StatusOK, dto.ToListJobCostResponse(records))
}

// listOverBudget godoc
// @Summary List job costs whose actual cost exceeds plan
// @Tags job-costs
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Success 200 {array} dto.JobCostResponse
// @Failure 500 {object} map[string]string "Failed to list job costs"
// @Router /projects/{projectID}/job-costs/over-budget [get]
func (h *jobCostHandler) listOverBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	logger = logger.With(slog.String("project_id", projectID))

	records, err := h.jobCostService.ListOverBudget(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list job costs")
		return
	}

	c.JSON(http.StatusOK, dto.ToListJobCostResponse(records))
}

// approveJobCost godoc
// @Summary Approve a job cost record
// @Description Marks a record approved; approval cannot be undone
// @Tags job-costs
// @Produce  json
// @Param   jobCostID path string true "Job cost ID"
// @Success 200 {object} dto.JobCostResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Job cost not found"
// @Failure 409 {object} map[string]string "Record already approved"
// @Failure 500 {object} map[string]string "Failed to approve job cost"
// @Router /job-costs/{jobCostID}/approve [post]
func (h *jobCostHandler) approveJobCost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobCostID := c.Param("jobCostID")

	approverUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("job_cost_id", jobCostID), slog.String("approver_user_id", approverUserID))
	logger.Info("Received request to approve job cost")

	record, err := h.jobCostService.ApproveJobCost(c.Request.Context(), jobCostID, approverUserID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to approve job cost")
		return
	}

	logger.Info("Job cost approved successfully")
	c.JSON(http.StatusOK, dto.ToJobCostResponse(record))
}

// updateActualAmount godoc
// @Summary Replace the actual cost on a record
// @Tags job-costs
// @Accept  json
// @Produce  json
// @Param   jobCostID path string true "Job cost ID"
// @Param   amount body dto.UpdateJobCostAmountRequest true "New actual amount"
// @Success 200 {object} dto.JobCostResponse
// @Failure 400 {object} map[string]string "Invalid input or currency mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Job cost not found"
// @Failure 500 {object} map[string]string "Failed to update job cost"
// @Router /job-costs/{jobCostID}/actual [put]
func (h *jobCostHandler) updateActualAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobCostID := c.Param("jobCostID")

	var req dto.UpdateJobCostAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateActualAmount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("job_cost_id", jobCostID))
	logger.Info("Received request to update actual amount")

	record, err := h.jobCostService.UpdateActualAmount(c.Request.Context(), jobCostID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update job cost")
		return
	}

	logger.Info("Actual amount updated successfully")
	c.JSON(http.StatusOK, dto.ToJobCostResponse(record))
}

// updateCommittedAmount godoc
// @Summary Replace the committed cost on a record
// @Tags job-costs
// @Accept  json
// @Produce  json
// @Param   jobCostID path string true "Job cost ID"
// @Param   amount body dto.UpdateJobCostAmountRequest true "New committed amount"
// @Success 200 {object} dto.JobCostResponse
// @Failure 400 {object} map[string]string "Invalid input or currency mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Job cost not found"
// @Failure 500 {object} map[string]string "Failed to update job cost"
// @Router /job-costs/{jobCostID}/committed [put]
func (h *jobCostHandler) updateCommittedAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobCostID := c.Param("jobCostID")

	var req dto.UpdateJobCostAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCommittedAmount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("job_cost_id", jobCostID))
	logger.Info("Received request to update committed amount")

	record, err := h.jobCostService.UpdateCommittedAmount(c.Request.Context(), jobCostID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update job cost")
		return
	}

	logger.Info("Committed amount updated successfully")
	c.JSON(http.StatusOK, dto.ToJobCostResponse(record))
}

// applyToBudget godoc
// @Summary Apply an approved job cost to its budget
// @Description Folds the record's amounts into the matching budget line and
// persists the record and the budget atomically. Returns the updated budget.
// @Tags job-costs
// @Produce  json
// @Param   jobCostID path string true "Job cost ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Job cost or budget not found"
// @Failure 409 {object} map[string]string "Record not approved or budget version conflict"
// @Failure 500 {object} map[string]string "Failed to apply job cost to budget"
// @Router /job-costs/{jobCostID}/apply-to-budget [post]
func (h *jobCostHandler) applyToBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobCostID := c.Param("jobCostID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("job_cost_id", jobCostID))
	logger.Info("Received request to apply job cost to budget")

	budget, err := h.jobCostService.ApplyToBudget(c.Request.Context(), jobCostID, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to apply job cost to budget")
		return
	}

	logger.Info("Job cost applied to budget successfully", slog.String("budget_id", budget.BudgetID))
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}
