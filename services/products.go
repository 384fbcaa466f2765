// products.go - Product catalog management

package services

import (
	"context"
	"errors"
	"strings"

	"go-market-backend/apperr"
	"go-market-backend/auth"
	"go-market-backend/cryptox"
	"go-market-backend/logger"
	"go-market-backend/models"
	"go-market-backend/repository"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProductInput is the full editable shape of a product. Secret values are
// plaintext here and encrypted before they reach storage.
type ProductInput struct {
	Title             string                    `json:"title" validate:"required"`
	Category          string                    `json:"category" validate:"required"`
	Tags              []string                  `json:"tags"`
	ShortDescription  string                    `json:"shortDescription"`
	FullDescription   string                    `json:"fullDescription"`
	CoverImage        string                    `json:"coverImage"`
	GalleryImages     []string                  `json:"galleryImages"`
	DownloadableFiles []models.DownloadableFile `json:"downloadableFiles" validate:"dive"`
	ExternalLinks     []models.ExternalLink     `json:"externalLinks" validate:"dive"`
	Secrets           []models.Secret           `json:"secrets" validate:"dive"`
	IsPaid            bool                      `json:"isPaid"`
	Version           string                    `json:"version"`
	Changelog         string                    `json:"changelog"`
}

// ProductPatch updates only the fields that are present.
type ProductPatch struct {
	Title             *string                    `json:"title"`
	Category          *string                    `json:"category"`
	Tags              *[]string                  `json:"tags"`
	ShortDescription  *string                    `json:"shortDescription"`
	FullDescription   *string                    `json:"fullDescription"`
	CoverImage        *string                    `json:"coverImage"`
	GalleryImages     *[]string                  `json:"galleryImages"`
	DownloadableFiles *[]models.DownloadableFile `json:"downloadableFiles"`
	ExternalLinks     *[]models.ExternalLink     `json:"externalLinks"`
	Secrets           *[]models.Secret           `json:"secrets"`
	IsPaid            *bool                      `json:"isPaid"`
	Version           *string                    `json:"version"`
	Changelog         *string                    `json:"changelog"`
}

var productMessages = messages{
	"title.required":    "Title is required",
	"category.required": "Category is required",
	"name.required":     "Every file, link and secret needs a name",
	"url.required":      "Every file and link needs a URL",
	"url.httpurl":       "External links must be http or https URLs",
	"type.oneof":        "Link type must be one of preview, demo, documentation, other",
	"value.required":    "Every secret needs a value",
}

// ListQuery filters the public catalog.
type ListQuery struct {
	Category string
	Tags     []string
	Search   string
	IsPaid   *bool
	Skip     int
	Limit    int
}

type ProductList struct {
	Products []*models.Product `json:"products"`
	Total    int64             `json:"total"`
}

type ProductService struct {
	db  Database
	box *cryptox.SecretBox
	log logger.Logger
}

func NewProductService(db Database, box *cryptox.SecretBox, log logger.Logger) *ProductService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductService{db: db, box: box, log: log.With("service", "products")}
}

func (s *ProductService) Create(ctx context.Context, caller *auth.Claims, in ProductInput) (*models.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	normalizeInput(&in)
	if err := check(in, productMessages, "Invalid product data"); err != nil {
		return nil, err
	}

	secrets, err := s.sealSecrets(in.Secrets)
	if err != nil {
		return nil, err
	}

	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	product := &models.Product{ID: uuid.NewString(), CreatedAt: now, CreatedBy: caller.UserID}
	applyInput(product, in)
	product.Secrets = secrets
	product.UpdatedAt = now
	product.UpdatedBy = caller.UserID

	if err := s.saveWithSlug(ctx, product, store.CreateProduct); err != nil {
		return nil, err
	}
	s.log.Info("product created", "product_id", product.ID, "slug", product.Slug, "by", caller.UserID)
	return withoutSecretValues(product), nil
}

func (s *ProductService) Update(ctx context.Context, caller *auth.Claims, id string, patch ProductPatch) (*models.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	product, err := store.GetProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}

	in := inputFromProduct(product)
	applyPatch(&in, patch)
	normalizeInput(&in)
	if err := check(in, productMessages, "Invalid product data"); err != nil {
		return nil, err
	}

	secrets := product.Secrets
	if patch.Secrets != nil {
		if secrets, err = s.sealSecrets(in.Secrets); err != nil {
			return nil, err
		}
	}

	titleChanged := patch.Title != nil && in.Title != product.Title
	applyInput(product, in)
	product.Secrets = secrets
	product.UpdatedAt = nowUTC()
	product.UpdatedBy = caller.UserID

	if titleChanged {
		err = s.saveWithSlug(ctx, product, store.UpdateProduct)
	} else {
		err = store.UpdateProduct(ctx, product)
	}
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	s.log.Info("product updated", "product_id", product.ID, "by", caller.UserID)
	return withoutSecretValues(product), nil
}

func (s *ProductService) Delete(ctx context.Context, caller *auth.Claims, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return err
	}
	if err := store.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "Product not found")
	}
	s.log.Info("product deleted", "product_id", id, "by", caller.UserID)
	return nil
}

// List returns one page of the catalog with gated content removed from paid
// products.
func (s *ProductService) List(ctx context.Context, q ListQuery) (*ProductList, error) {
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{
		Category: strings.TrimSpace(q.Category),
		Tags:     cleanStrings(q.Tags),
		Search:   strings.TrimSpace(q.Search),
		IsPaid:   q.IsPaid,
		Skip:     q.Skip,
		Limit:    q.Limit,
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}

	items, total, err := store.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := &ProductList{Products: make([]*models.Product, 0, len(items)), Total: total}
	for i := range items {
		p := &items[i]
		out.Products = append(out.Products, redact(p, !p.IsPaid))
	}
	return out, nil
}

// Get returns one product the way it appears in the catalog listing. Use
// AccessService.ProductBySlug for the caller-specific view.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	product, err := store.GetProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	return redact(product, !product.IsPaid), nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := store.ProductCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (s *ProductService) Tags(ctx context.Context) ([]string, error) {
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := store.ProductTags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// saveWithSlug writes product under the first free slug derived from its
// title. The unique slug index decides which candidates are taken.
func (s *ProductService) saveWithSlug(ctx context.Context, product *models.Product, save func(context.Context, *models.Product) error) error {
	base := baseSlug(product.Title)
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		product.Slug = slugCandidate(base, attempt)
		err := save(ctx, product)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	return apperr.Conflict("Could not find a free slug for this title")
}

func (s *ProductService) sealSecrets(in []models.Secret) ([]models.Secret, error) {
	out := make([]models.Secret, 0, len(in))
	for _, sec := range in {
		sealed, err := s.box.Encrypt(sec.Value)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnexpected, "encrypt secret", err)
		}
		out = append(out, models.Secret{Name: sec.Name, Value: sealed, Description: sec.Description})
	}
	return out, nil
}

func normalizeInput(in *ProductInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Tags = cleanStrings(in.Tags)
	in.GalleryImages = cleanStrings(in.GalleryImages)
	if in.DownloadableFiles == nil {
		in.DownloadableFiles = []models.DownloadableFile{}
	}
	if in.ExternalLinks == nil {
		in.ExternalLinks = []models.ExternalLink{}
	}
	for i := range in.ExternalLinks {
		if in.ExternalLinks[i].Type == "" {
			in.ExternalLinks[i].Type = models.LinkOther
		}
	}
	if in.Secrets == nil {
		in.Secrets = []models.Secret{}
	}
}

// cleanStrings trims entries and drops empty ones, keeping order.
func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func applyInput(p *models.Product, in ProductInput) {
	p.Title = in.Title
	p.Category = in.Category
	p.Tags = in.Tags
	p.ShortDescription = in.ShortDescription
	p.FullDescription = in.FullDescription
	p.CoverImage = in.CoverImage
	p.GalleryImages = in.GalleryImages
	p.DownloadableFiles = in.DownloadableFiles
	p.ExternalLinks = in.ExternalLinks
	p.IsPaid = in.IsPaid
	p.Version = in.Version
	p.Changelog = in.Changelog
}

func inputFromProduct(p *models.Product) ProductInput {
	return ProductInput{
		Title:             p.Title,
		Category:          p.Category,
		Tags:              p.Tags,
		ShortDescription:  p.ShortDescription,
		FullDescription:   p.FullDescription,
		CoverImage:        p.CoverImage,
		GalleryImages:     p.GalleryImages,
		DownloadableFiles: p.DownloadableFiles,
		ExternalLinks:     p.ExternalLinks,
		Secrets:           p.Secrets,
		IsPaid:            p.IsPaid,
		Version:           p.Version,
		Changelog:         p.Changelog,
	}
}

func applyPatch(in *ProductInput, p ProductPatch) {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	if p.Tags != nil {
		in.Tags = *p.Tags
	}
	if p.ShortDescription != nil {
		in.ShortDescription = *p.ShortDescription
	}
	if p.FullDescription != nil {
		in.FullDescription = *p.FullDescription
	}
	if p.CoverImage != nil {
		in.CoverImage = *p.CoverImage
	}
	if p.GalleryImages != nil {
		in.GalleryImages = *p.GalleryImages
	}
	if p.DownloadableFiles != nil {
		in.DownloadableFiles = *p.DownloadableFiles
	}
	if p.ExternalLinks != nil {
		in.ExternalLinks = *p.ExternalLinks
	}
	if p.Secrets != nil {
		in.Secrets = *p.Secrets
	}
	if p.IsPaid != nil {
		in.IsPaid = *p.IsPaid
	}
	if p.Version != nil {
		in.Version = *p.Version
	}
	if p.Changelog != nil {
		in.Changelog = *p.Changelog
	}
}

// withoutSecretValues returns a copy whose secrets keep only name and
// description.
func withoutSecretValues(p *models.Product) *models.Product {
	c := p.Clone()
	for i := range c.Secrets {
		c.Secrets[i].Value = ""
	}
	return c
}

// redact hides gated content when hasAccess is false: secret values and
// file locations. It never decrypts.
func redact(p *models.Product, hasAccess bool) *models.Product {
	c := withoutSecretValues(p)
	if !hasAccess {
		for i := range c.DownloadableFiles {
			c.DownloadableFiles[i].URL = ""
		}
	}
	return c
}
