// bootstrap.go - First-start setup: default admin and sample catalog

package services

import (
	"context"
	"errors"
	"time"

	"go-market-backend/auth"
	"go-market-backend/cryptox"
	"go-market-backend/logger"
	"go-market-backend/models"
	"go-market-backend/repository"

	"github.com/google/uuid"
)

// AdminAccount describes the default administrator.
type AdminAccount struct {
	Email    string
	Password string
	Name     string
}

// Bootstrapper works on a store directly; it runs while the database client
// is still initialising.
type Bootstrapper struct {
	hasher *auth.PasswordHasher
	box    *cryptox.SecretBox
	admin  AdminAccount
	seed   bool
	log    logger.Logger
}

func NewBootstrapper(hasher *auth.PasswordHasher, box *cryptox.SecretBox, admin AdminAccount, seed bool, log logger.Logger) *Bootstrapper {
	if log == nil {
		log = logger.Nop()
	}
	admin.Email = normalizeEmail(admin.Email)
	return &Bootstrapper{hasher: hasher, box: box, admin: admin, seed: seed, log: log.With("component", "bootstrap")}
}

// Run ensures the admin exists and, when seeding is enabled, fills an empty
// catalog. It is safe to run repeatedly.
func (b *Bootstrapper) Run(ctx context.Context, store repository.Store) error {
	if _, _, err := b.EnsureAdmin(ctx, store); err != nil {
		return err
	}
	if !b.seed {
		return nil
	}
	_, err := b.SeedProducts(ctx, store)
	return err
}

// EnsureAdmin creates the default admin unless an account with that email
// already exists. The bool reports whether an account was created.
func (b *Bootstrapper) EnsureAdmin(ctx context.Context, store repository.Store) (*models.User, bool, error) {
	existing, err := store.GetUserByEmail(ctx, b.admin.Email)
	if err == nil {
		b.log.Debug("admin already exists", "email", b.admin.Email)
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	user, err := createUser(ctx, store, b.hasher, b.admin.Name, b.admin.Email, b.admin.Password, models.RoleAdmin)
	if err != nil {
		// another instance won the race
		if existing, lookupErr := store.GetUserByEmail(ctx, b.admin.Email); lookupErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	b.log.Info("admin user created", "email", user.Email)
	return user, true, nil
}

// SeedProducts inserts the sample catalog when no product exists and
// returns how many were added.
func (b *Bootstrapper) SeedProducts(ctx context.Context, store repository.Store) (int, error) {
	count, err := store.CountProducts(ctx, nil)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	base := nowUTC()
	for i, sample := range sampleProducts() {
		p := sample
		p.ID = uuid.NewString()
		p.CreatedAt = base.Add(time.Duration(i) * time.Second)
		p.UpdatedAt = p.CreatedAt

		sealed := make([]models.Secret, 0, len(p.Secrets))
		for _, sec := range p.Secrets {
			v, err := b.box.Encrypt(sec.Value)
			if err != nil {
				return created, err
			}
			sealed = append(sealed, models.Secret{Name: sec.Name, Value: v, Description: sec.Description})
		}
		p.Secrets = sealed

		if err := store.CreateProduct(ctx, &p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return created, err
		}
		created++
	}
	b.log.Info("sample products created", "count", created)
	return created, nil
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			Title:            "Premium UI Kit",
			Slug:             "premium-ui-kit",
			Category:         "Design",
			Tags:             []string{"ui-kit", "react", "vue", "components"},
			ShortDescription: "A UI kit with 100+ components for modern web applications.",
			CoverImage:       "/modern-ui-kit-dashboard.png",
			GalleryImages:    []string{},
			DownloadableFiles: []models.DownloadableFile{
				{Name: "ui-kit-react.zip", URL: "/files/ui-kit-react.zip", Size: 15_938_355, Type: "application/zip"},
				{Name: "ui-kit-vue.zip", URL: "/files/ui-kit-vue.zip", Size: 15_518_924, Type: "application/zip"},
			},
			ExternalLinks: []models.ExternalLink{{Name: "Docs", URL: "https://docs.example.com/ui-kit", Type: models.LinkDocumentation}},
			Secrets:       []models.Secret{{Name: "API Key", Value: "uk_live_123456789"}},
			IsPaid:        true,
			Version:       "1.0.0",
		},
		{
			Title:            "E-commerce Template",
			Slug:             "ecommerce-template",
			Category:         "Templates",
			Tags:             []string{"nextjs", "ecommerce", "stripe", "template"},
			ShortDescription: "Complete storefront with checkout and an admin dashboard.",
			CoverImage:       "/ecommerce-website-template.png",
			GalleryImages:    []string{},
			DownloadableFiles: []models.DownloadableFile{
				{Name: "ecommerce-template.zip", URL: "/files/ecommerce-template.zip", Size: 26_633_830, Type: "application/zip"},
			},
			ExternalLinks: []models.ExternalLink{},
			Secrets: []models.Secret{
				{Name: "Stripe Key", Value: "sk_test_123456789"},
				{Name: "Admin Password", Value: "admin2024", Description: "Initial dashboard password"},
			},
			IsPaid:  true,
			Version: "2.1.0",
		},
		{
			Title:            "Free Icon Pack",
			Slug:             "free-icon-pack",
			Category:         "Design",
			Tags:             []string{"icons", "svg", "free"},
			ShortDescription: "500+ free icons in SVG format.",
			CoverImage:       "/icon-pack-collection.png",
			GalleryImages:    []string{},
			DownloadableFiles: []models.DownloadableFile{
				{Name: "free-icons.zip", URL: "/files/free-icons.zip", Size: 9_122_611, Type: "application/zip"},
			},
			ExternalLinks: []models.ExternalLink{},
			Secrets:       []models.Secret{},
			Version:       "1.0.0",
		},
		{
			Title:            "Free Landing Page",
			Slug:             "free-landing-page",
			Category:         "Templates",
			Tags:             []string{"landing-page", "tailwind", "free", "responsive"},
			ShortDescription: "Responsive landing page template built with Tailwind CSS.",
			CoverImage:       "/modern-landing-page.png",
			GalleryImages:    []string{},
			DownloadableFiles: []models.DownloadableFile{
				{Name: "landing-page.zip", URL: "/files/landing-page.zip", Size: 5_452_595, Type: "application/zip"},
			},
			ExternalLinks: []models.ExternalLink{},
			Secrets:       []models.Secret{},
			Version:       "1.0.0",
		},
	}
}
