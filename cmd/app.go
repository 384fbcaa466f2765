// app.go - Builds the shared dependencies of every command from config

package cmd

import (
	"context"
	"fmt"

	"go-market-backend/auth"
	"go-market-backend/config"
	"go-market-backend/cryptox"
	"go-market-backend/database"
	"go-market-backend/filestore"
	"go-market-backend/logger"
	"go-market-backend/metrics"
	"go-market-backend/mqtt"
	"go-market-backend/services"
)

// eventSink is a publisher the app must close on shutdown.
type eventSink interface {
	services.EventPublisher
	Close()
}

type app struct {
	cfg     *config.Config
	log     logger.Logger
	box     *cryptox.SecretBox
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenCodec
	metrics *metrics.Metrics
	db      *database.Client
	events  eventSink
	files   services.FileStore

	closers []func()
}

// newApp loads and validates config and builds the core dependencies. The
// database connects lazily on first use. setup may be nil.
func newApp(cfg *config.Config, log logger.Logger, setup func(a *app) database.SetupFunc) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	box, err := cryptox.NewSecretBox(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		box:     box,
		hasher:  auth.NewPasswordHasher(cfg.BcryptCost),
		tokens:  auth.NewTokenCodec(cfg.JWTSecret),
		metrics: metrics.New(),
		events:  mqtt.NopPublisher{},
	}

	opts := database.Options{
		URI:    cfg.DatabaseURI,
		Name:   cfg.DatabaseName,
		Logger: log,
	}
	if setup != nil {
		opts.Setup = setup(a)
	}
	a.db = database.New(opts)
	a.closers = append(a.closers, func() {
		if err := a.db.Close(); err != nil {
			log.Warn("close database", "err", err)
		}
	})
	return a, nil
}

// bootstrapper builds the admin/sample-data setup from config.
func (a *app) bootstrapper(admin services.AdminAccount, seed bool) *services.Bootstrapper {
	return services.NewBootstrapper(a.hasher, a.box, admin, seed, a.log)
}

func (a *app) defaultAdmin() services.AdminAccount {
	return services.AdminAccount{
		Email:    a.cfg.AdminEmail,
		Password: a.cfg.AdminPassword,
		Name:     a.cfg.AdminName,
	}
}

// connectEvents publishes to MQTT when a broker is configured. A broker that
// cannot be reached is logged and events are dropped.
func (a *app) connectEvents() {
	if a.cfg.MQTTBroker == "" {
		a.log.Info("mqtt disabled, events will not be published")
		return
	}
	client, err := mqtt.Connect(a.cfg.MQTTBroker, a.cfg.MQTTClientID)
	if err != nil {
		a.log.Warn("mqtt connect failed, events will not be published", "broker", a.cfg.MQTTBroker, "err", err)
		return
	}
	pub := mqtt.NewPublisher(client, a.cfg.MQTTTopicPrefix, a.log)
	a.events = pub
	a.closers = append(a.closers, func() {
		pub.Close()
		client.Disconnect(250)
	})
	a.log.Info("mqtt connected", "broker", a.cfg.MQTTBroker, "prefix", a.cfg.MQTTTopicPrefix)
}

// connectFiles enables object storage when a bucket is configured.
func (a *app) connectFiles(ctx context.Context) error {
	if !a.cfg.S3Enabled() {
		a.log.Info("object storage disabled, uploads are unavailable")
		return nil
	}
	store, err := filestore.New(ctx, filestore.Config{
		Bucket:       a.cfg.S3Bucket,
		Region:       a.cfg.S3Region,
		AccessKey:    a.cfg.S3AccessKey,
		SecretKey:    a.cfg.S3SecretKey,
		BaseEndpoint: a.cfg.S3BaseEndpoint,
	})
	if err != nil {
		return err
	}
	a.files = store
	a.log.Info("object storage enabled", "bucket", a.cfg.S3Bucket)
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
