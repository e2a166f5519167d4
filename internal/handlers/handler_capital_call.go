package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meridianir/capcall_backend/internal/apperrors"
	"github.com/meridianir/capcall_backend/internal/core/services"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
	"github.com/meridianir/capcall_backend/internal/dto"
	"github.com/meridianir/capcall_backend/internal/middleware"
)

// capitalCallHandler handles HTTP requests related to capital calls.
type capitalCallHandler struct {
	callService portssvc.CapitalCallSvcFacade
	scheduler   portssvc.ReminderSchedulerSvc
}

// newCapitalCallHandler creates a new capitalCallHandler.
func newCapitalCallHandler(callService portssvc.CapitalCallSvcFacade, scheduler portssvc.ReminderSchedulerSvc) *capitalCallHandler {
	return &capitalCallHandler{
		callService: callService,
		scheduler:   scheduler,
	}
}

// registerCapitalCallRoutes registers capital call routes on the router group.
func registerCapitalCallRoutes(rg *gin.RouterGroup, callService portssvc.CapitalCallSvcFacade, scheduler portssvc.ReminderSchedulerSvc) {
	h := newCapitalCallHandler(callService, scheduler)

	calls := rg.Group("/capital-calls")
	{
		calls.POST("", h.createCapitalCall)
		calls.GET("/:callID", h.getCapitalCall)
		calls.POST("/:callID/close", h.closeCapitalCall)
	}
	items := rg.Group("/call-items")
	{
		items.POST("/:itemID/wire-receipts", h.confirmWireReceived)
		items.POST("/:itemID/status-changes", h.notifyStatusChange)
	}
	rg.GET("/funds/:fundID/capital-calls", h.listCapitalCalls)
}

// createCapitalCall godoc
// @Summary Create a capital call for a deal
// @Description Allocates the total across the deal's investors, persists the call and schedules reminders
// @Tags capital-calls
// @Accept json
// @Produce json
// @Param call body dto.CreateCapitalCallRequest true "Capital call"
// @Success 201 {object} dto.CapitalCallResponse
// @Failure 400 {object} map[string]string "Invalid request or allocation input"
// @Failure 404 {object} map[string]string "Fund or deal not found"
// @Router /capital-calls [post]
func (h *capitalCallHandler) createCapitalCall(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCapitalCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createCapitalCall", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	call, err := h.callService.CreateCapitalCall(c.Request.Context(), req, actingUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAllocationInput), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Invalid capital call input", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create capital call", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create capital call"})
		}
		return
	}

	resp := dto.ToCapitalCallResponse(call)
	c.JSON(http.StatusCreated, resp)
}

// getCapitalCall godoc
// @Summary Get a capital call and its items
// @Tags capital-calls
// @Produce json
// @Param callID path string true "Capital call ID"
// @Success 200 {object} dto.CapitalCallResponse
// @Failure 404 {object} map[string]string "Call not found"
// @Router /capital-calls/{callID} [get]
func (h *capitalCallHandler) getCapitalCall(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callID := c.Param("callID")

	call, err := h.callService.GetCallByID(c.Request.Context(), callID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Capital call not found"})
			return
		}
		logger.Error("Failed to get capital call", slog.String("call_id", callID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve capital call"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCapitalCallResponse(call))
}

// listCapitalCalls godoc
// @Summary List capital calls for a fund
// @Tags capital-calls
// @Produce json
// @Param fundID path string true "Fund ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListCallsResponse
// @Router /funds/{fundID}/capital-calls [get]
func (h *capitalCallHandler) listCapitalCalls(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fundID := c.Param("fundID")

	var params dto.ListCallsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.callService.ListCallsByFund(c.Request.Context(), fundID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list capital calls", slog.String("fund_id", fundID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list capital calls"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// confirmWireReceived godoc
// @Summary Record a wire receipt against a call item
// @Description Updates the item's payment status, cancels irrelevant reminders and recomputes the call status
// @Tags capital-calls
// @Accept json
// @Produce json
// @Param itemID path string true "Call item ID"
// @Param receipt body dto.ConfirmWireRequest true "Wire receipt"
// @Success 200 {object} dto.CallItemResponse
// @Failure 400 {object} map[string]string "Invalid receipt"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 409 {object} map[string]string "Item or call no longer accepts receipts"
// @Router /call-items/{itemID}/wire-receipts [post]
func (h *capitalCallHandler) confirmWireReceived(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	itemID := c.Param("itemID")

	var req dto.ConfirmWireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for confirmWireReceived", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	receivedAt := time.Now().UTC()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	item, err := h.callService.ConfirmWireReceived(c.Request.Context(), itemID, req.AmountReceived, receivedAt, actingUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Call item not found"})
		case errors.Is(err, apperrors.ErrConflict), errors.Is(err, services.ErrItemNotPayable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAggregationUnavailable):
			// The receipt is persisted; only the aggregate recompute failed.
			logger.Error("Aggregation unavailable after wire receipt", slog.String("item_id", itemID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Wire receipt recorded but call status could not be recomputed",
				"item":  dto.ToCallItemResponse(item),
			})
		default:
			logger.Error("Failed to confirm wire receipt", slog.String("item_id", itemID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm wire receipt"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCallItemResponse(item))
}

// statusChangeRequest notifies the scheduler of an item status transition
// observed outside wire confirmation (defaults, cancellations).
type statusChangeRequest struct {
	NewStatus string `json:"newStatus" binding:"required"`
	OldStatus string `json:"oldStatus" binding:"required"`
}

// notifyStatusChange godoc
// @Summary Apply the notification cancellation policy for an item status transition
// @Tags capital-calls
// @Accept json
// @Produce json
// @Param itemID path string true "Call item ID"
// @Param transition body statusChangeRequest true "Status transition"
// @Success 200 {object} map[string]int "Count of cancelled jobs"
// @Router /call-items/{itemID}/status-changes [post]
func (h *capitalCallHandler) notifyStatusChange(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	itemID := c.Param("itemID")

	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for notifyStatusChange", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	cancelled := h.scheduler.HandleStatusChange(
		c.Request.Context(),
		itemID,
		itemStatusFromString(req.NewStatus),
		itemStatusFromString(req.OldStatus),
	)
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}

// closeCapitalCall godoc
// @Summary Close a capital call
// @Description Explicit manager action; only PARTIAL or FUNDED calls can be closed
// @Tags capital-calls
// @Produce json
// @Param callID path string true "Capital call ID"
// @Success 200 {object} dto.CapitalCallResponse
// @Failure 404 {object} map[string]string "Call not found"
// @Failure 409 {object} map[string]string "Call is not closable"
// @Router /capital-calls/{callID}/close [post]
func (h *capitalCallHandler) closeCapitalCall(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callID := c.Param("callID")

	call, err := h.callService.CloseCall(c.Request.Context(), callID, actingUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Capital call not found"})
		case errors.Is(err, services.ErrCallNotClosable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to close capital call", slog.String("call_id", callID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close capital call"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCapitalCallResponse(call))
}
