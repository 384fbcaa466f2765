// Package services holds the marketplace business logic. Handlers call into
// these types; storage is reached only through a Database.
package services

import (
	"context"
	"errors"
	"io"
	"time"

	"go-market-backend/apperr"
	"go-market-backend/auth"
	"go-market-backend/models"
	"go-market-backend/repository"
)

// Database yields a ready store, connecting on first use.
type Database interface {
	EnsureReady(ctx context.Context) (repository.Store, error)
}

// EventPublisher receives download and grant events.
type EventPublisher interface {
	PublishDownload(ev *models.DownloadEvent)
	PublishEntitlement(ent *models.Entitlement)
}

// FileStore keeps uploaded files and resolves their download links.
type FileStore interface {
	Put(ctx context.Context, name, contentType string, size int64, body io.Reader) (string, error)
	DownloadURL(ctx context.Context, location string) (string, error)
}

type nopEvents struct{}

func (nopEvents) PublishDownload(*models.DownloadEvent)  {}
func (nopEvents) PublishEntitlement(*models.Entitlement) {}

// StaticDatabase wraps an already connected store.
type StaticDatabase struct {
	Store repository.Store
}

func (d StaticDatabase) EnsureReady(context.Context) (repository.Store, error) {
	return d.Store, nil
}

func requireUser(caller *auth.Claims) error {
	if caller == nil || caller.UserID == "" {
		return apperr.Auth("Authentication required")
	}
	return nil
}

func requireAdmin(caller *auth.Claims) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperr.Forbidden("Admin access required")
	}
	return nil
}

// notFound maps repository.ErrNotFound to a 404 with msg and passes any other
// error through unchanged.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
