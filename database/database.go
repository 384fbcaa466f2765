// database.go - Lazily connects the store and runs first-start setup once

package database

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-market-backend/apperr"
	"go-market-backend/logger"
	"go-market-backend/repository"
	"go-market-backend/repository/gormstore"
	"go-market-backend/repository/mongostore"

	"golang.org/x/sync/singleflight"
)

// Backend names returned by Backend.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// connectTimeout bounds a shared initialisation independently of the caller
// that happened to start it.
const connectTimeout = 30 * time.Second

// Opener opens a store for a connection string.
type Opener func(ctx context.Context, uri, name string) (repository.Store, error)

// SetupFunc runs once against a freshly connected store (admin bootstrap,
// sample data). Its failure is logged and does not block readiness.
type SetupFunc func(ctx context.Context, store repository.Store) error

type Options struct {
	URI    string
	Name   string
	Open   Opener // defaults to Open
	Setup  SetupFunc
	Logger logger.Logger
}

// Client hands out a ready store. It connects on first use; concurrent first
// callers share one initialisation. A failed connection is retried on the
// next call.
type Client struct {
	uri   string
	name  string
	open  Opener
	setup SetupFunc
	log   logger.Logger

	group singleflight.Group

	mu    sync.RWMutex
	store repository.Store
}

func New(opts Options) *Client {
	if opts.Open == nil {
		opts.Open = Open
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Client{
		uri:   opts.URI,
		name:  opts.Name,
		open:  opts.Open,
		setup: opts.Setup,
		log:   opts.Logger.With("component", "database"),
	}
}

func (c *Client) current() repository.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

// EnsureReady returns the connected store, connecting and running setup on
// the first successful call. The connection attempt is detached from ctx's
// cancellation so one departing caller cannot fail the waiters sharing it.
// Any connect failure is reported as a storage error.
func (c *Client) EnsureReady(ctx context.Context) (repository.Store, error) {
	if s := c.current(); s != nil {
		return s, nil
	}

	v, err, _ := c.group.Do("init", func() (interface{}, error) {
		if s := c.current(); s != nil {
			return s, nil
		}
		connectCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), connectTimeout)
		defer cancel()
		return c.connect(connectCtx)
	})
	if err != nil {
		err = repository.StorageError(err)
		if !apperr.Is(err, apperr.KindStorage) {
			err = apperr.Storage(repository.MsgUnavailable, err)
		}
		return nil, err
	}
	return v.(repository.Store), nil
}

func (c *Client) connect(ctx context.Context) (repository.Store, error) {
	backend := Backend(c.uri)
	c.log.Info("connecting to database", "backend", backend)

	store, err := c.open(ctx, c.uri, c.name)
	if err != nil {
		c.log.Error("database open failed", "backend", backend, "error", err)
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		c.log.Error("database ping failed", "backend", backend, "error", err)
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		c.log.Error("database migration failed", "backend", backend, "error", err)
		return nil, err
	}

	if c.setup != nil {
		if err := c.setup(ctx, store); err != nil {
			c.log.Error("database setup failed", "error", err)
		}
	}

	c.mu.Lock()
	c.store = store
	c.mu.Unlock()

	c.log.Info("database ready", "backend", backend)
	return store, nil
}

// Close releases the store if one was opened.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// Backend reports which store a connection string selects.
func Backend(uri string) string {
	lower := strings.ToLower(uri)
	switch {
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return BackendMongo
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return BackendPostgres
	default:
		return BackendSQLite
	}
}

// Open opens the store selected by the scheme of uri. Anything that is not a
// MongoDB or PostgreSQL URL is treated as a SQLite file path.
func Open(ctx context.Context, uri, name string) (repository.Store, error) {
	switch Backend(uri) {
	case BackendMongo:
		s, err := mongostore.Open(ctx, uri, name)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := gormstore.OpenPostgres(uri)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := gormstore.OpenSQLite(uri)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
