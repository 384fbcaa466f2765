// respond.go - Shared request decoding and error rendering

package handlers

import (
	"errors"
	"io"

	"go-market-backend/apperr"
	"go-market-backend/logger"

	"github.com/gin-gonic/gin"
)

const msgInvalidBody = "Invalid request body"

// respondError renders err as {"error": message} with the status of its kind.
// Unexpected errors are logged and reach the client only as a generic message.
func respondError(c *gin.Context, log logger.Logger, err error) {
	status := apperr.Status(err)
	switch apperr.KindOf(err) {
	case apperr.KindUnexpected:
		log.Error("request failed", "path", c.Request.URL.Path, "err", err)
	case apperr.KindStorage:
		log.Warn("storage unavailable", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

// bindJSON decodes the body into dst. An empty body leaves dst zero-valued so
// the service reports the missing fields itself.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation(msgInvalidBody)
	}
	return nil
}
