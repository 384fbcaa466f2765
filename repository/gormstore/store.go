// store.go - GORM backed store (SQLite or PostgreSQL)

package gormstore

import (
	"context"

	"go-market-backend/models"
	"go-market-backend/repository"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store implements repository.Store on top of a *gorm.DB.
type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*Store, error) {
	return Open(sqlite.Open(path))
}

// OpenPostgres opens a PostgreSQL database from a postgres:// DSN.
func OpenPostgres(dsn string) (*Store, error) {
	return Open(postgres.Open(dsn))
}

func Open(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		return nil, translateError(err)
	}
	return New(db), nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for tests and tooling.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Entitlement{},
		&models.DownloadEvent{},
	)
	return translateError(err)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translateError(err)
	}
	return translateError(sqlDB.PingContext(ctx))
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
