// Package repository declares the persistence boundary of the marketplace.
// Implementations live in gormstore (SQLite/PostgreSQL) and mongostore.
package repository

import (
	"context"
	"errors"

	"go-market-backend/models"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// ProductFilter narrows ListProducts. A zero Limit means no limit.
type ProductFilter struct {
	Category string
	Tags     []string // any-of
	Search   string   // case-insensitive literal match on title, short description and tags
	IsPaid   *bool
	Skip     int
	Limit    int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	RecentUsers(ctx context.Context, limit int) ([]models.User, error)
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	// ListProducts returns one page, newest first, and the total match count.
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	CountProducts(ctx context.Context, isPaid *bool) (int64, error)
	ProductCategories(ctx context.Context) ([]string, error)
	ProductTags(ctx context.Context) ([]string, error)
}

type EntitlementRepository interface {
	CreateEntitlement(ctx context.Context, ent *models.Entitlement) error
	GetEntitlement(ctx context.Context, userID, productID string) (*models.Entitlement, error)
	ListEntitlementsByUser(ctx context.Context, userID string) ([]models.Entitlement, error)
}

type DownloadRepository interface {
	RecordDownload(ctx context.Context, event *models.DownloadEvent) error
}

// Store is a ready-to-use backend.
type Store interface {
	UserRepository
	ProductRepository
	EntitlementRepository
	DownloadRepository

	// Migrate creates tables/collections and the unique indexes.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
