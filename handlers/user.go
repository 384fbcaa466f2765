// user.go - Handles the signed-in user's library and profile

package handlers

import (
	"net/http"

	"go-market-backend/logger"
	"go-market-backend/middleware"
	"go-market-backend/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	auth   *services.AuthService
	access *services.AccessService
	log    logger.Logger
}

func NewUserHandler(authSvc *services.AuthService, access *services.AccessService, log logger.Logger) *UserHandler {
	return &UserHandler{auth: authSvc, access: access, log: log}
}

// Library lists every product together with the caller's access to it.
func (h *UserHandler) Library(c *gin.Context) {
	items, err := h.access.Library(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": items})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var input services.ProfileInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), middleware.Claims(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
