package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridianir/capcall_backend/internal/apperrors"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
	"github.com/meridianir/capcall_backend/internal/core/services"
	"github.com/meridianir/capcall_backend/internal/dto"
	"github.com/meridianir/capcall_backend/internal/middleware"
)

// investorHandler handles HTTP requests related to investors.
type investorHandler struct {
	investorService portssvc.InvestorSvcFacade
}

func newInvestorHandler(investorService portssvc.InvestorSvcFacade) *investorHandler {
	return &investorHandler{investorService: investorService}
}

// registerInvestorRoutes registers investor routes on the router group.
func registerInvestorRoutes(rg *gin.RouterGroup, investorService portssvc.InvestorSvcFacade) {
	h := newInvestorHandler(investorService)

	investors := rg.Group("/investors")
	{
		investors.POST("", h.createInvestor)
		investors.GET("", h.listInvestors)
		investors.GET("/:investorID", h.getInvestor)
		investors.PUT("/:investorID", h.updateInvestor)
	}
	rg.PUT("/deals/:dealID/ownership", h.setOwnership)
}

// createInvestor godoc
// @Summary Onboard an investor
// @Tags investors
// @Accept json
// @Produce json
// @Param investor body dto.CreateInvestorRequest true "Investor"
// @Success 201 {object} dto.InvestorResponse
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /investors [post]
func (h *investorHandler) createInvestor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createInvestor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	inv, err := h.investorService.CreateInvestor(c.Request.Context(), req, actingUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Investor email already registered"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create investor", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create investor"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvestorResponse(inv))
}

// getInvestor godoc
// @Summary Get an investor by ID
// @Tags investors
// @Produce json
// @Param investorID path string true "Investor ID"
// @Success 200 {object} dto.InvestorResponse
// @Failure 404 {object} map[string]string "Investor not found"
// @Router /investors/{investorID} [get]
func (h *investorHandler) getInvestor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	investorID := c.Param("investorID")

	inv, err := h.investorService.GetInvestorByID(c.Request.Context(), investorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Investor not found"})
			return
		}
		logger.Error("Failed to get investor", slog.String("investor_id", investorID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve investor"})
		return
	}

	c.JSON(http.StatusOK, dto.ToInvestorResponse(inv))
}

// listInvestors godoc
// @Summary List investors
// @Tags investors
// @Produce json
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListInvestorsResponse
// @Router /investors [get]
func (h *investorHandler) listInvestors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListInvestorsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.investorService.ListInvestors(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list investors", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list investors"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateInvestor godoc
// @Summary Update investor details
// @Tags investors
// @Accept json
// @Produce json
// @Param investorID path string true "Investor ID"
// @Param investor body dto.UpdateInvestorRequest true "Fields to update"
// @Success 200 {object} dto.InvestorResponse
// @Failure 404 {object} map[string]string "Investor not found"
// @Router /investors/{investorID} [put]
func (h *investorHandler) updateInvestor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	investorID := c.Param("investorID")

	var req dto.UpdateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for updateInvestor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	inv, err := h.investorService.UpdateInvestor(c.Request.Context(), investorID, req, actingUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Investor not found"})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Investor email already registered"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update investor", slog.String("investor_id", investorID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update investor"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToInvestorResponse(inv))
}

// setOwnership godoc
// @Summary Set an investor's ownership fraction for a deal
// @Description Creates or replaces the fraction used by capital call allocation
// @Tags investors
// @Accept json
// @Produce json
// @Param dealID path string true "Deal ID"
// @Param ownership body dto.SetOwnershipRequest true "Ownership"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string "Fraction out of range"
// @Failure 404 {object} map[string]string "Deal or investor not found"
// @Router /deals/{dealID}/ownership [put]
func (h *investorHandler) setOwnership(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("dealID")

	var req dto.SetOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for setOwnership", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ownership, err := h.investorService.SetOwnership(c.Request.Context(), dealID, req, actingUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFractionOutOfRange), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to set ownership", slog.String("deal_id", dealID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set ownership"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dealID":     ownership.DealID,
		"investorID": ownership.InvestorID,
		"fraction":   ownership.Fraction,
	})
}
