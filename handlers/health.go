// health.go - Store readiness probe

package handlers

import (
	"net/http"

	"go-market-backend/apperr"
	"go-market-backend/logger"
	"go-market-backend/repository"
	"go-market-backend/services"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db  services.Database
	log logger.Logger
}

func NewHealthHandler(db services.Database, log logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

// Check connects on first use, so it doubles as the warm-up request.
func (h *HealthHandler) Check(c *gin.Context) {
	store, err := h.db.EnsureReady(c.Request.Context())
	if err == nil {
		err = store.Ping(c.Request.Context())
	}
	if err != nil {
		h.log.Warn("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  storageMessage(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func storageMessage(err error) string {
	if apperr.Is(err, apperr.KindStorage) {
		return apperr.PublicMessage(err)
	}
	return repository.MsgUnavailable
}
