// files.go - Gated downloads and admin uploads

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"go-market-backend/apperr"
	"go-market-backend/logger"
	"go-market-backend/middleware"
	"go-market-backend/services"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the form framing around the file part.
const multipartOverhead = 1 << 20

type FileHandler struct {
	access  *services.AccessService
	uploads *services.UploadService
	log     logger.Logger
}

func NewFileHandler(access *services.AccessService, uploads *services.UploadService, log logger.Logger) *FileHandler {
	return &FileHandler{access: access, uploads: uploads, log: log}
}

// Download serves GET /files/download/:productId/:fileIndex.
func (h *FileHandler) Download(c *gin.Context) {
	// A non-numeric index can never be in range.
	index, err := strconv.Atoi(c.Param("fileIndex"))
	if err != nil {
		respondError(c, h.log, apperr.NotFound("File not found"))
		return
	}

	dl, err := h.access.DownloadFile(c.Request.Context(), middleware.Claims(c), c.Param("productId"), index)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dl)
}

// Upload accepts one multipart "file" field.
func (h *FileHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxUploadSize+multipartOverhead)

	var (
		name string
		size int64
		body io.Reader
	)
	header, err := c.FormFile("file")
	if err == nil {
		f, openErr := header.Open()
		if openErr != nil {
			respondError(c, h.log, apperr.Validation("No file provided"))
			return
		}
		defer f.Close()
		name, size, body = header.Filename, header.Size, f
	} else if isTooLarge(err) {
		size = services.MaxUploadSize + 1
		body = http.NoBody
	}

	uploaded, err := h.uploads.Upload(c.Request.Context(), middleware.Claims(c), name, size, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file":    uploaded,
		"message": "File uploaded successfully",
	})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
