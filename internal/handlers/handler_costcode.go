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

// costCodeHandler handles HTTP requests related to the cost code hierarchy.
type costCodeHandler struct {
	costCodeService portssvc.CostCodeSvcFacade
}

func newCostCodeHandler(cs portssvc.CostCodeSvcFacade) *costCodeHandler {
	return &costCodeHandler{
		costCodeService: cs,
	}
}

// registerCostCodeRoutes registers routes related to the cost code hierarchy.
func registerCostCodeRoutes(rg *gin.RouterGroup, costCodeService portssvc.CostCodeSvcFacade) {
	h := newCostCodeHandler(costCodeService)

	costCodes := rg.Group("/cost-codes")
	{
		costCodes.POST("", h.createNode)
		costCodes.GET("", h.listByLevel)
		costCodes.GET("/:code", h.getNode)
		costCodes.PUT("/:code", h.updateNode)
		costCodes.DELETE("/:code", h.deactivateNode)
		costCodes.POST("/:code/activate", h.activateNode)
		costCodes.GET("/:code/children", h.listChildren)
	}
}

// createNode godoc
// @Summary Create a cost code hierarchy node
// @Description Creates a new node; non-division nodes must reference an existing parent
// @Tags cost-codes
// @Accept  json
// @Produce  json
// @Param   node body dto.CreateHierarchyNodeRequest true "Node details"
// @Success 201 {object} dto.HierarchyNodeResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Parent node not found"
// @Failure 409 {object} map[string]string "Code already exists"
// @Failure 500 {object} map[string]string "Failed to create cost code"
// @Router /cost-codes [post]
func (h *costCodeHandler) createNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateHierarchyNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateHierarchyNode", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("code", req.Code), slog.Int("level", req.Level))
	logger.Info("Received request to create cost code node")

	node, err := h.costCodeService.CreateHierarchyNode(c.Request.Context(), req, creatorUserID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create cost code")
		return
	}

	logger.Info("Cost code node created successfully")
	c.JSON(http.StatusCreated, dto.ToHierarchyNodeResponse(node))
}

// getNode godoc
// @Summary Get a cost code node by code
// @Tags cost-codes
// @Produce  json
// @Param   code path string true "Cost code"
// @Success 200 {object} dto.HierarchyNodeResponse
// @Failure 404 {object} map[string]string "Cost code not found"
// @Failure 500 {object} map[string]string "Failed to retrieve cost code"
// @Router /cost-codes/{code} [get]
func (h *costCodeHandler) getNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	logger = logger.With(slog.String("code", code))

	node, err := h.costCodeService.GetHierarchyNode(c.Request.Context(), code)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve cost code")
		return
	}

	c.JSON(http.StatusOK, dto.ToHierarchyNodeResponse(node))
}

// listByLevel godoc
// @Summary List cost code nodes at a hierarchy level
// @Description Retrieves all nodes at the given level (1=division through 4=detail)
// @Tags cost-codes
// @Produce  json
// @Param   level query int true "Hierarchy level (1-4)"
// @Param   includeInactive query bool false "Include deactivated nodes" default(false)
// @Success 200 {array} dto.HierarchyNodeResponse
// @Failure 400 {object} map[string]string "Missing or invalid level"
// @Failure 500 {object} map[string]string "Failed to list cost codes"
// @Router /cost-codes [get]
func (h *costCodeHandler) listByLevel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	level, err := strconv.Atoi(c.Query("level"))
	if err != nil || level < int(domain.LevelDivision) || level > int(domain.LevelDetail) {
		logger.Warn("Invalid hierarchy level filter", slog.String("level", c.Query("level")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "level query parameter must be an integer between 1 and 4"})
		return
	}
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("includeInactive", "false"))

	nodes, err := h.costCodeService.ListHierarchyByLevel(c.Request.Context(), domain.HierarchyLevel(level), includeInactive)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list cost codes")
		return
	}

	c.JSON(http.StatusOK, dto.ToListHierarchyNodeResponse(nodes))
}

// listChildren godoc
// @Summary List the direct children of a cost code node
// @Tags cost-codes
// @Produce  json
// @Param   code path string true "Parent cost code"
// @Success 200 {array} dto.HierarchyNodeResponse
// @Failure 404 {object} map[string]string "Parent not found"
// @Failure 500 {object} map[string]string "Failed to list children"
// @Router /cost-codes/{code}/children [get]
func (h *costCodeHandler) listChildren(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	logger = logger.With(slog.String("parent_code", code))

	nodes, err := h.costCodeService.ListHierarchyChildren(c.Request.Context(), code)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list children")
		return
	}

	c.JSON(http.StatusOK, dto.ToListHierarchyNodeResponse(nodes))
}

// updateNode godoc
// @Summary Update a cost code node
// @Description Updates the mutable attributes of a node (description, sort order)
// @Tags cost-codes
// @Accept  json
// @Produce  json
// @Param   code path string true "Cost code"
// @Param   node body dto.UpdateHierarchyNodeRequest true "Fields to update"
// @Success 200 {object} dto.HierarchyNodeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Cost code not found"
// @Failure 500 {object} map[string]string "Failed to update cost code"
// @Router /cost-codes/{code} [put]
func (h *costCodeHandler) updateNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var req dto.UpdateHierarchyNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateHierarchyNode", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("code", code))
	logger.Info("Received request to update cost code node")

	node, err := h.costCodeService.UpdateHierarchyNode(c.Request.Context(), code, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update cost code")
		return
	}

	logger.Info("Cost code node updated successfully")
	c.JSON(http.StatusOK, dto.ToHierarchyNodeResponse(node))
}

// activateNode godoc
// @Summary Reactivate a cost code node
// @Description Restores a deactivated node so it can be referenced again
// @Tags cost-codes
// @Produce  json
// @Param   code path string true "Cost code"
// @Success 200 {object} dto.HierarchyNodeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Cost code not found"
// @Failure 500 {object} map[string]string "Failed to activate cost code"
// @Router /cost-codes/{code}/activate [post]
func (h *costCodeHandler) activateNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("code", code))
	logger.Info("Received request to activate cost code node")

	node, err := h.costCodeService.ActivateHierarchyNode(c.Request.Context(), code, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to activate cost code")
		return
	}

	logger.Info("Cost code node activated successfully")
	c.JSON(http.StatusOK, dto.ToHierarchyNodeResponse(node))
}

// deactivateNode godoc
// @Summary Deactivate a cost code node
// @Description Marks a node inactive so it is rejected on new budget lines and job costs
// @Tags cost-codes
// @Produce  json
// @Param   code path string true "Cost code"
// @Success 200 {object} dto.HierarchyNodeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Cost code not found"
// @Failure 409 {object} map[string]string "Node already inactive"
// @Failure 500 {object} map[string]string "Failed to deactivate cost code"
// @Router /cost-codes/{code} [delete]
func (h *costCodeHandler) deactivateNode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("code", code))
	logger.Info("Received request to deactivate cost code node")

	node, err := h.costCodeService.DeactivateHierarchyNode(c.Request.Context(), code, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to deactivate cost code")
		return
	}

	logger.Info("Cost code node deactivated successfully")
	c.JSON(http.StatusOK, dto.ToHierarchyNodeResponse(node))
}
