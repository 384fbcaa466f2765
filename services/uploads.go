// uploads.go - Admin file uploads to object storage

package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"go-market-backend/apperr"
	"go-market-backend/auth"
	"go-market-backend/logger"
	"go-market-backend/models"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize is the largest accepted upload.
const MaxUploadSize = 100 << 20

const sniffLen = 3072

var allowedUploadTypes = []string{
	"application/zip",
	"application/x-zip-compressed",
	"application/pdf",
	"text/plain",
	"application/json",
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/javascript",
	"text/javascript",
	"text/html",
	"text/css",
}

// UploadedFile is a stored file ready to attach to a product.
type UploadedFile struct {
	models.DownloadableFile
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy string    `json:"uploadedBy"`
}

type UploadService struct {
	files FileStore
	log   logger.Logger
}

// NewUploadService accepts a nil files; uploads then fail with a storage error.
func NewUploadService(files FileStore, log logger.Logger) *UploadService {
	if log == nil {
		log = logger.Nop()
	}
	return &UploadService{files: files, log: log.With("service", "uploads")}
}

// Upload sniffs the content type from the first bytes of body, checks it
// against the allow-list and stores the file.
func (s *UploadService) Upload(ctx context.Context, caller *auth.Claims, name string, size int64, body io.Reader) (*UploadedFile, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, apperr.Validation("No file provided")
	}
	if size > MaxUploadSize {
		return nil, apperr.Validation("File too large. Maximum size is 100MB.")
	}
	if s.files == nil {
		return nil, apperr.Storage("Object storage is not configured", nil)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperr.Wrap(apperr.KindValidation, "Could not read upload", err)
	}
	head = head[:n]

	contentType, ok := allowedType(head)
	if !ok {
		return nil, apperr.Validation("File type not allowed")
	}

	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}

	location, err := s.files.Put(ctx, name, contentType, size, io.MultiReader(bytes.NewReader(head), body))
	if err != nil {
		s.log.Error("upload failed", "name", name, "error", err)
		return nil, apperr.Storage("Could not store file", err)
	}
	s.log.Info("file uploaded", "name", name, "size", size, "type", contentType, "by", caller.UserID)

	return &UploadedFile{
		DownloadableFile: models.DownloadableFile{Name: name, URL: location, Size: size, Type: contentType},
		UploadedAt:       nowUTC(),
		UploadedBy:       caller.UserID,
	}, nil
}

// allowedType detects the media type of head and reports whether it is on
// the allow-list. The returned type carries no parameters.
func allowedType(head []byte) (string, bool) {
	mt := mimetype.Detect(head)
	for _, allowed := range allowedUploadTypes {
		if mt.Is(allowed) {
			base, _, _ := strings.Cut(mt.String(), ";")
			return strings.TrimSpace(base), true
		}
	}
	return mt.String(), false
}
