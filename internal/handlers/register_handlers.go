package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
	"github.com/meridianir/capcall_backend/internal/middleware"
)

// RegisterRoutes wires all API handlers onto the engine under /api/v1.
func RegisterRoutes(engine *gin.Engine, sc *portssvc.ServiceContainer) {
	registerCustomValidators()

	engine.GET("/health", healthCheck)

	apiV1 := engine.Group("/api/v1")
	{
		registerFundRoutes(apiV1, sc.Fund)
		registerInvestorRoutes(apiV1, sc.Investor)
		registerCapitalCallRoutes(apiV1, sc.CapitalCall, sc.Scheduler)
	}
}

// healthCheck godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// actingUserID resolves the back-office user recorded in audit fields.
// Authentication happens upstream; absent a header the write is attributed
// to the system account.
func actingUserID(c *gin.Context) string {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return userID
	}
	return "system"
}

func itemStatusFromString(s string) domain.ItemStatus {
	return domain.ItemStatus(strings.ToUpper(strings.TrimSpace(s)))
}
