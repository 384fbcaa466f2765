// admin.go - Admin-only endpoints: entitlement grants and dashboard stats

package handlers

import (
	"net/http"

	"go-market-backend/logger"
	"go-market-backend/middleware"
	"go-market-backend/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	access *services.AccessService
	stats  *services.StatsService
	log    logger.Logger
}

func NewAdminHandler(access *services.AccessService, stats *services.StatsService, log logger.Logger) *AdminHandler {
	return &AdminHandler{access: access, stats: stats, log: log}
}

// GrantEntitlement serves POST /admin/entitlements {"userId", "productId"}.
func (h *AdminHandler) GrantEntitlement(c *gin.Context) {
	var input services.GrantInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	ent, err := h.access.GrantEntitlement(c.Request.Context(), middleware.Claims(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entitlement": ent})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
