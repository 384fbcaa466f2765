// auth.go - Handles registration, login and the current session

package handlers

import (
	"net/http"

	"go-market-backend/auth"
	"go-market-backend/logger"
	"go-market-backend/middleware"
	"go-market-backend/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth         *services.AuthService
	cookieSecure bool
	log          logger.Logger
}

// NewAuthHandler sets the token cookie with the Secure flag when cookieSecure
// is true.
func NewAuthHandler(svc *services.AuthService, cookieSecure bool, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, cookieSecure: cookieSecure, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	session, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setTokenCookie(c, session.Token)
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input services.LoginInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	session, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setTokenCookie(c, session.Token)
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.Claims(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(auth.TokenLifetime.Seconds()), "/", "", h.cookieSecure, true)
}
