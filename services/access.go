// access.go - Entitlement-gated access to files and secrets

package services

import (
	"context"
	"errors"
	"time"

	"go-market-backend/apperr"
	"go-market-backend/auth"
	"go-market-backend/cryptox"
	"go-market-backend/filestore"
	"go-market-backend/logger"
	"go-market-backend/metrics"
	"go-market-backend/models"
	"go-market-backend/repository"

	"github.com/google/uuid"
)

const msgAlreadyGranted = "User already has access to this product"

// ProductView is a product as seen by one caller.
type ProductView struct {
	Product         *models.Product `json:"product"`
	HasAccess       bool            `json:"hasAccess"`
	IsAuthenticated bool            `json:"isAuthenticated"`
}

type Download struct {
	File        models.DownloadableFile `json:"file"`
	DownloadURL string                  `json:"downloadUrl"`
}

type GrantInput struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
}

var grantMessages = messages{
	"required": "User ID and Product ID are required",
}

// LibraryItem is a catalog entry annotated with the caller's access.
type LibraryItem struct {
	*models.Product
	HasAccess bool       `json:"hasAccess"`
	GrantedAt *time.Time `json:"grantedAt,omitempty"`
}

type AccessService struct {
	db      Database
	box     *cryptox.SecretBox
	files   FileStore
	events  EventPublisher
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewAccessService wires the resolver. files and events may be nil.
func NewAccessService(db Database, box *cryptox.SecretBox, files FileStore, events EventPublisher, m *metrics.Metrics, log logger.Logger) *AccessService {
	if events == nil {
		events = nopEvents{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AccessService{db: db, box: box, files: files, events: events, metrics: m, log: log.With("service", "access")}
}

// HasAccess reports whether caller may see the gated content of product.
// Free products are open to everyone; paid products need an entitlement for
// exactly this user and product.
func (s *AccessService) HasAccess(ctx context.Context, caller *auth.Claims, product *models.Product) (bool, error) {
	if !product.IsPaid {
		return true, nil
	}
	if caller == nil || caller.UserID == "" {
		return false, nil
	}

	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return false, err
	}
	_, err = store.GetEntitlement(ctx, caller.UserID, product.ID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// RevealSecrets returns a copy of product. With access, secret values are
// decrypted; without it they are dropped and never decrypted.
func (s *AccessService) RevealSecrets(product *models.Product, hasAccess bool) (*models.Product, error) {
	if !hasAccess {
		return redact(product, false), nil
	}

	out := product.Clone()
	for i, sec := range out.Secrets {
		plain, err := s.box.Decrypt(sec.Value)
		if err != nil {
			s.log.Error("decrypt secret", "product_id", product.ID, "secret", sec.Name, "error", err)
			return nil, apperr.Wrap(apperr.KindUnexpected, "decrypt secret", err)
		}
		out.Secrets[i].Value = plain
	}
	return out, nil
}

func (s *AccessService) view(ctx context.Context, caller *auth.Claims, product *models.Product) (*ProductView, error) {
	ok, err := s.HasAccess(ctx, caller, product)
	if err != nil {
		return nil, err
	}
	revealed, err := s.RevealSecrets(product, ok)
	if err != nil {
		return nil, err
	}
	return &ProductView{Product: revealed, HasAccess: ok, IsAuthenticated: caller != nil}, nil
}

func (s *AccessService) ProductBySlug(ctx context.Context, caller *auth.Claims, slug string) (*ProductView, error) {
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	product, err := store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	return s.view(ctx, caller, product)
}

// DownloadFile returns file fileIndex of a product after a fresh access
// check. The index is validated before access so an out-of-range index is a
// 404 for everyone. Only a successful download is recorded.
func (s *AccessService) DownloadFile(ctx context.Context, caller *auth.Claims, productID string, fileIndex int) (*Download, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	product, err := store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	if fileIndex < 0 || fileIndex >= len(product.DownloadableFiles) {
		return nil, apperr.NotFound("File not found")
	}

	ok, err := s.HasAccess(ctx, caller, product)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("Access denied. Purchase required.")
	}

	file := product.DownloadableFiles[fileIndex]
	url, err := s.downloadURL(ctx, file.URL)
	if err != nil {
		return nil, err
	}

	ev := &models.DownloadEvent{
		ID:           uuid.NewString(),
		UserID:       caller.UserID,
		ProductID:    product.ID,
		FileIndex:    fileIndex,
		FileName:     file.Name,
		DownloadedAt: nowUTC(),
	}
	if err := store.RecordDownload(ctx, ev); err != nil {
		// the download itself succeeded; a lost analytics row is not fatal
		s.log.Warn("record download", "product_id", product.ID, "error", err)
	}
	s.events.PublishDownload(ev)
	s.metrics.Download()
	s.log.Info("file downloaded", "user_id", caller.UserID, "product_id", product.ID, "file", file.Name)

	return &Download{File: file, DownloadURL: url}, nil
}

func (s *AccessService) downloadURL(ctx context.Context, location string) (string, error) {
	if !filestore.IsObjectLocation(location) {
		return location, nil
	}
	if s.files == nil {
		return "", apperr.Storage("Object storage is not configured", nil)
	}
	url, err := s.files.DownloadURL(ctx, location)
	if err != nil {
		return "", apperr.Storage("Could not create download link", err)
	}
	return url, nil
}

// GrantEntitlement gives a user access to a product. Only admins may grant;
// a second grant for the same pair is a conflict.
func (s *AccessService) GrantEntitlement(ctx context.Context, caller *auth.Claims, in GrantInput) (*models.Entitlement, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := check(in, grantMessages, "User ID and Product ID are required"); err != nil {
		return nil, err
	}

	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := store.GetUserByID(ctx, in.UserID); err != nil {
		return nil, notFound(err, "User not found")
	}
	if _, err := store.GetProductByID(ctx, in.ProductID); err != nil {
		return nil, notFound(err, "Product not found")
	}

	ent := &models.Entitlement{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		ProductID: in.ProductID,
		GrantedAt: nowUTC(),
		GrantedBy: caller.UserID,
	}
	if err := store.CreateEntitlement(ctx, ent); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(msgAlreadyGranted)
		}
		return nil, err
	}

	s.events.PublishEntitlement(ent)
	s.metrics.Grant()
	s.log.Info("entitlement granted", "user_id", in.UserID, "product_id", in.ProductID, "by", caller.UserID)
	return ent, nil
}

// Library lists every product with the caller's access and grant time.
// Secret values are never included.
func (s *AccessService) Library(ctx context.Context, caller *auth.Claims) ([]LibraryItem, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	products, _, err := store.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	ents, err := store.ListEntitlementsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	granted := make(map[string]time.Time, len(ents))
	for _, e := range ents {
		granted[e.ProductID] = e.GrantedAt
	}

	items := make([]LibraryItem, 0, len(products))
	for i := range products {
		p := &products[i]
		item := LibraryItem{HasAccess: !p.IsPaid}
		if at, ok := granted[p.ID]; ok {
			at := at
			item.GrantedAt = &at
			item.HasAccess = true
		}
		item.Product = redact(p, item.HasAccess)
		items = append(items, item)
	}
	return items, nil
}
