package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridianir/capcall_backend/internal/apperrors"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
	"github.com/meridianir/capcall_backend/internal/dto"
	"github.com/meridianir/capcall_backend/internal/middleware"
)

// fundHandler handles HTTP requests related to funds and deals.
type fundHandler struct {
	fundService portssvc.FundSvcFacade
}

func newFundHandler(fundService portssvc.FundSvcFacade) *fundHandler {
	return &fundHandler{fundService: fundService}
}

// registerFundRoutes registers fund and deal routes on the router group.
func registerFundRoutes(rg *gin.RouterGroup, fundService portssvc.FundSvcFacade) {
	h := newFundHandler(fundService)

	funds := rg.Group("/funds")
	{
		funds.POST("", h.createFund)
		funds.GET("", h.listFunds)
		funds.GET("/:fundID", h.getFund)
		funds.POST("/:fundID/deals", h.createDeal)
	}
	rg.GET("/deals/:dealID", h.getDeal)
}

// createFund godoc
// @Summary Create a fund
// @Tags funds
// @Accept json
// @Produce json
// @Param fund body dto.CreateFundRequest true "Fund"
// @Success 201 {object} dto.FundResponse
// @Router /funds [post]
func (h *fundHandler) createFund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createFund", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	fund, err := h.fundService.CreateFund(c.Request.Context(), req, actingUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Fund name already in use"})
		default:
			logger.Error("Failed to create fund", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create fund"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToFundResponse(fund))
}

// getFund godoc
// @Summary Get a fund by ID
// @Tags funds
// @Produce json
// @Param fundID path string true "Fund ID"
// @Success 200 {object} dto.FundResponse
// @Failure 404 {object} map[string]string "Fund not found"
// @Router /funds/{fundID} [get]
func (h *fundHandler) getFund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fundID := c.Param("fundID")

	fund, err := h.fundService.GetFundByID(c.Request.Context(), fundID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fund not found"})
			return
		}
		logger.Error("Failed to get fund", slog.String("fund_id", fundID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve fund"})
		return
	}

	c.JSON(http.StatusOK, dto.ToFundResponse(fund))
}

// listFunds godoc
// @Summary List funds
// @Tags funds
// @Produce json
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListFundsResponse
// @Router /funds [get]
func (h *fundHandler) listFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListFundsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.fundService.ListFunds(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list funds", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list funds"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// createDeal godoc
// @Summary Create a deal under a fund
// @Tags funds
// @Accept json
// @Produce json
// @Param fundID path string true "Fund ID"
// @Param deal body dto.CreateDealRequest true "Deal"
// @Success 201 {object} dto.DealResponse
// @Failure 404 {object} map[string]string "Fund not found"
// @Router /funds/{fundID}/deals [post]
func (h *fundHandler) createDeal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fundID := c.Param("fundID")

	var req dto.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createDeal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	deal, err := h.fundService.CreateDeal(c.Request.Context(), fundID, req, actingUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Fund not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create deal", slog.String("fund_id", fundID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deal"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToDealResponse(deal))
}

// getDeal godoc
// @Summary Get a deal by ID
// @Tags funds
// @Produce json
// @Param dealID path string true "Deal ID"
// @Success 200 {object} dto.DealResponse
// @Failure 404 {object} map[string]string "Deal not found"
// @Router /deals/{dealID} [get]
func (h *fundHandler) getDeal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("dealID")

	deal, err := h.fundService.GetDealByID(c.Request.Context(), dealID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deal not found"})
			return
		}
		logger.Error("Failed to get deal", slog.String("deal_id", dealID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve deal"})
		return
	}

	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}
