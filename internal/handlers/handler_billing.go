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

// billingHandler handles HTTP requests related to progress billing applications.
type billingHandler struct {
	billingService portssvc.BillingSvcFacade
}

func newBillingHandler(bs portssvc.BillingSvcFacade) *billingHandler {
	return &billingHandler{
		billingService: bs,
	}
}

// registerBillingRoutes registers routes related to payment applications.
func registerBillingRoutes(rg *gin.RouterGroup, billingService portssvc.BillingSvcFacade) {
	h := newBillingHandler(billingService)

	billings := rg.Group("/billings")
	{
		billings.POST("", h.createBilling)
		billings.GET("", h.listBillingsByStatus)
		billings.GET("/:billingID", h.getBilling)
		billings.POST("/:billingID/line-items", h.addLineItem)
		billings.DELETE("/:billingID/line-items/:itemID", h.removeLineItem)
		billings.POST("/:billingID/submit", h.submitBilling)
		billings.POST("/:billingID/approve", h.approveBilling)
		billings.POST("/:billingID/reject", h.rejectBilling)
		billings.POST("/:billingID/mark-paid", h.markBillingPaid)
		billings.POST("/:billingID/lien-waivers", h.addLienWaiver)
		billings.POST("/:billingID/lien-waivers/:waiverID/received", h.markLienWaiverReceived)
		billings.POST("/:billingID/documents", h.addDocument)
		billings.DELETE("/:billingID/documents/:documentID", h.removeDocument)
		billings.POST("/:billingID/retainage-release", h.releaseRetainage)
	}

	rg.GET("/projects/:projectID/billings", h.listBillingsByProject)
}

// createBilling godoc
// @Summary Create a payment application
// @Description Opens a new draft G702 payment application for a contract period
// @Tags billings
// @Accept  json
// @Produce  json
// @Param   billing body dto.CreateBillingRequest true "Application details"
// @Success 201 {object} dto.BillingResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Application number already used for this project"
// @Failure 500 {object} map[string]string "Failed to create payment application"
// @Router /billings [post]
func (h *billingHandler) createBilling(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBilling", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("project_id", req.ProjectID), slog.Int("application_number", req.ApplicationNumber))
	logger.Info("Received request to create payment application")

	billing, err := h.billingService.CreateBilling(c.Request.Context(), req, creatorUserID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create payment application")
		return
	}

	logger.Info("Payment application created successfully", slog.String("billing_id", billing.BillingID))
	c.JSON(http.StatusCreated, dto.ToBillingResponse(billing))
}

// getBilling godoc
// @Summary Get a payment application by ID
// @Description Retrieves an application with its continuation sheet, lien waivers and computed G702 sums
// @Tags billings
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Success 200 {object} dto.BillingResponse
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 500 {object} map[string]string "Failed to retrieve payment application"
// @Router /billings/{billingID} [get]
func (h *billingHandler) getBilling(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	logger = logger.With(slog.String("billing_id", billingID))

	billing, err := h.billingService.GetBillingByID(c.Request.Context(), billingID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve payment application")
		return
	}

	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// listBillingsByProject godoc
// @Summary List payment applications for a project
// @Description Retrieves all applications for a project ordered by application number
// @Tags billings
// @Produce  json
// @Param   projectID path string true "Project ID"
// @Success 200 {array} dto.BillingResponse
// @Failure 500 {object} map[string]string "Failed to list payment applications"
// @Router /projects/{projectID}/billings [get]
func (h *billingHandler) listBillingsByProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	logger = logger.With(slog.String("project_id", projectID))

	billings, err := h.billingService.ListBillingsByProject(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list payment applications")
		return
	}

	c.JSON(http.StatusOK, dto.ToListBillingResponse(billings))
}

// listBillingsByStatus godoc
// @Summary List payment applications by status
// @Tags billings
// @Produce  json
// @Param   status query string true "Billing status" Enums(DRAFT, SUBMITTED, APPROVED, REJECTED, PAID, VOID)
// @Success 200 {array} dto.BillingResponse
// @Failure 400 {object} map[string]string "Missing or invalid status"
// @Failure 500 {object} map[string]string "Failed to list payment applications"
// @Router /billings [get]
func (h *billingHandler) listBillingsByStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status := domain.BillingStatus(c.Query("status"))
	if !status.IsValid() {
		logger.Warn("Invalid billing status filter", slog.String("status", string(status)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing status query parameter"})
		return
	}

	billings, err := h.billingService.ListBillingsByStatus(c.Request.Context(), status)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list payment applications")
		return
	}

	c.JSON(http.StatusOK, dto.ToListBillingResponse(billings))
}

// addLineItem godoc
// @Summary Add a continuation-sheet line to a draft application
// @Tags billings
// @Accept  json
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   item body dto.BillingLineItemInput true "Line item details"
// @Success 200 {object} dto.BillingResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 409 {object} map[string]string "Application is not a draft"
// @Failure 500 {object} map[string]string "Failed to add line item"
// @Router /billings/{billingID}/line-items [post]
func (h *billingHandler) addLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	var item dto.BillingLineItemInput
	if err := c.ShouldBindJSON(&item); err != nil {
		logger.Warn("Failed to bind JSON for AddBillingLineItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("item_number", item.ItemNumber))
	logger.Info("Received request to add billing line item")

	billing, err := h.billingService.AddBillingLineItem(c.Request.Context(), billingID, item, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to add line item")
		return
	}

	logger.Info("Billing line item added successfully")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// removeLineItem godoc
// @Summary Remove a continuation-sheet line from a draft application
// @Tags billings
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   itemID path string true "Line item number"
// @Success 200 {object} dto.BillingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application or line not found"
// @Failure 409 {object} map[string]string "Application is not a draft"
// @Failure 500 {object} map[string]string "Failed to remove line item"
// @Router /billings/{billingID}/line-items/{itemID} [delete]
func (h *billingHandler) removeLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")
	itemID := c.Param("itemID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("item_id", itemID))
	logger.Info("Received request to remove billing line item")

	billing, err := h.billingService.RemoveBillingLineItem(c.Request.Context(), billingID, itemID, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to remove line item")
		return
	}

	logger.Info("Billing line item removed successfully")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// submitBilling godoc
// @Summary Submit a draft application for review
// @Tags billings
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Success 200 {object} dto.BillingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 409 {object} map[string]string "Application has no lines or is not a draft"
// @Failure 500 {object} map[string]string "Failed to submit payment application"
// @Router /billings/{billingID}/submit [post]
func (h *billingHandler) submitBilling(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("submitter_user_id", userID))
	logger.Info("Received request to submit payment application")

	billing, err := h.billingService.SubmitBilling(c.Request.Context(), billingID, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to submit payment application")
		return
	}

	logger.Info("Payment application submitted successfully")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// approveBilling godoc
// @Summary Approve a submitted application
// @Tags billings
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Success 200 {object} dto.BillingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 409 {object} map[string]string "Application not in submitted status"
// @Failure 500 {object} map[string]string "Failed to approve payment application"
// @Router /billings/{billingID}/approve [post]
func (h *billingHandler) approveBilling(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	approverUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("approver_user_id", approverUserID))
	logger.Info("Received request to approve payment application")

	billing, err := h.billingService.ApproveBilling(c.Request.Context(), billingID, approverUserID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to approve payment application")
		return
	}

	logger.Info("Payment application approved successfully")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// rejectBilling godoc
// @Summary Reject a submitted application
// @Description Sends a submitted application back to draft with a reason
// @Tags billings
// @Accept  json
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   rejection body dto.RejectBillingRequest true "Rejection reason"
// @Success 200 {object} dto.BillingResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 409 {object} map[string]string "Application not in submitted status"
// @Failure 500 {object} map[string]string "Failed to reject payment application"
// @Router /billings/{billingID}/reject [post]
func (h *billingHandler) rejectBilling(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	var req dto.RejectBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectBilling", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID))
	logger.Info("Received request to reject payment application")

	billing, err := h.billingService.RejectBilling(c.Request.Context(), billingID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to reject payment application")
		return
	}

	logger.Info("Payment application rejected")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// markBillingPaid godoc
// @Summary Record payment against an approved application
// @Tags billings
// @Accept  json
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   payment body dto.MarkBillingPaidRequest true "Payment reference"
// @Success 200 {object} dto.BillingResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 409 {object} map[string]string "Application not approved"
// @Failure 500 {object} map[string]string "Failed to mark payment application paid"
// @Router /billings/{billingID}/mark-paid [post]
func (h *billingHandler) markBillingPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	var req dto.MarkBillingPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for MarkBillingPaid", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("payment_reference", req.PaymentReference))
	logger.Info("Received request to mark payment application paid")

	billing, err := h.billingService.MarkBillingPaid(c.Request.Context(), billingID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to mark payment application paid")
		return
	}

	logger.Info("Payment application marked paid")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// addLienWaiver godoc
// @Summary Attach a lien waiver to an application
// @Tags billings
// @Accept  json
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   waiver body dto.AddLienWaiverRequest true "Lien waiver details"
// @Success 200 {object} dto.BillingResponse
// @Failure 400 {object} map[string]string "Invalid input or currency mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 500 {object} map[string]string "Failed to add lien waiver"
// @Router /billings/{billingID}/lien-waivers [post]
func (h *billingHandler) addLienWaiver(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	var req dto.AddLienWaiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddLienWaiver", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("vendor_name", req.VendorName))
	logger.Info("Received request to add lien waiver")

	billing, err := h.billingService.AddLienWaiver(c.Request.Context(), billingID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to add lien waiver")
		return
	}

	logger.Info("Lien waiver added successfully")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// markLienWaiverReceived godoc
// @Summary Record receipt of a lien waiver
// @Tags billings
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   waiverID path string true "Waiver ID"
// @Success 200 {object} dto.BillingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application or waiver not found"
// @Failure 500 {object} map[string]string "Failed to mark lien waiver received"
// @Router /billings/{billingID}/lien-waivers/{waiverID}/received [post]
func (h *billingHandler) markLienWaiverReceived(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")
	waiverID := c.Param("waiverID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("waiver_id", waiverID))
	logger.Info("Received request to mark lien waiver received")

	billing, err := h.billingService.MarkLienWaiverReceived(c.Request.Context(), billingID, waiverID, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to mark lien waiver received")
		return
	}

	logger.Info("Lien waiver marked received")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// addDocument godoc
// @Summary Attach a supporting document to a draft application
// @Tags billings
// @Accept  json
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   document body dto.AddBillingDocumentRequest true "Document name and URL"
// @Success 200 {object} dto.BillingResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 409 {object} map[string]string "Application is not a draft"
// @Failure 500 {object} map[string]string "Failed to add document"
// @Router /billings/{billingID}/documents [post]
func (h *billingHandler) addDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	var req dto.AddBillingDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddBillingDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("document_name", req.Name))
	logger.Info("Received request to add billing document")

	billing, err := h.billingService.AddBillingDocument(c.Request.Context(), billingID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to add document")
		return
	}

	logger.Info("Billing document added successfully")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// removeDocument godoc
// @Summary Remove a supporting document from a draft application
// @Tags billings
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   documentID path string true "Document ID"
// @Success 200 {object} dto.BillingResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application or document not found"
// @Failure 409 {object} map[string]string "Application is not a draft"
// @Failure 500 {object} map[string]string "Failed to remove document"
// @Router /billings/{billingID}/documents/{documentID} [delete]
func (h *billingHandler) removeDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")
	documentID := c.Param("documentID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("document_id", documentID))
	logger.Info("Received request to remove billing document")

	billing, err := h.billingService.RemoveBillingDocument(c.Request.Context(), billingID, documentID, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to remove document")
		return
	}

	logger.Info("Billing document removed successfully")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}

// releaseRetainage godoc
// @Summary Release held retainage
// @Description Records a partial or full release of retainage on a paid application
// @Tags billings
// @Accept  json
// @Produce  json
// @Param   billingID path string true "Billing ID"
// @Param   release body dto.ReleaseRetainageRequest true "Release amount and type"
// @Success 200 {object} dto.BillingResponse
// @Failure 400 {object} map[string]string "Invalid input or release exceeds held retainage"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Application not found"
// @Failure 409 {object} map[string]string "Application not in a releasable status"
// @Failure 500 {object} map[string]string "Failed to release retainage"
// @Router /billings/{billingID}/retainage-release [post]
func (h *billingHandler) releaseRetainage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	billingID := c.Param("billingID")

	var req dto.ReleaseRetainageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReleaseRetainage", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("billing_id", billingID), slog.String("release_type", req.Type))
	logger.Info("Received request to release retainage")

	billing, err := h.billingService.ReleaseRetainage(c.Request.Context(), billingID, req, userID)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to release retainage")
		return
	}

	logger.Info("Retainage released successfully")
	c.JSON(http.StatusOK, dto.ToBillingResponse(billing))
}
