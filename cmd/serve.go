// serve.go - Runs the HTTP server

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-market-backend/database"
	"go-market-backend/handlers"
	"go-market-backend/middleware"
	"go-market-backend/routes"
	"go-market-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log := loadConfig(cmd)

	// STEP 1: Core dependencies; the first request connects the database and
	// runs the admin/sample-data setup once.
	a, err := newApp(cfg, log, func(a *app) database.SetupFunc {
		return a.bootstrapper(a.defaultAdmin(), cfg.SeedSampleData).Run
	})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// STEP 2: Optional integrations
	a.connectEvents()
	if err := a.connectFiles(ctx); err != nil {
		return err
	}

	// STEP 3: Router
	router := newRouter(a)

	// Warm the connection so the first request does not pay for it. A failure
	// here is not fatal; the next request retries.
	if _, err := a.db.EnsureReady(ctx); err != nil {
		log.Warn("database not ready at startup", "err", err)
	}

	// STEP 4: Serve until interrupted
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter wires services and handlers onto a fresh gin engine.
func newRouter(a *app) *gin.Engine {
	authSvc := services.NewAuthService(a.db, a.hasher, a.tokens, a.metrics, a.log)
	productSvc := services.NewProductService(a.db, a.box, a.log)
	accessSvc := services.NewAccessService(a.db, a.box, a.files, a.events, a.metrics, a.log)
	uploadSvc := services.NewUploadService(a.files, a.log)
	statsSvc := services.NewStatsService(a.db)

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.Use(middleware.Recovery(a.log), middleware.RequestLogger(a.log, a.metrics))

	routes.Setup(router, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc, a.cfg.CookieSecure, a.log),
		Products: handlers.NewProductHandler(productSvc, accessSvc, a.log),
		Files:    handlers.NewFileHandler(accessSvc, uploadSvc, a.log),
		User:     handlers.NewUserHandler(authSvc, accessSvc, a.log),
		Admin:    handlers.NewAdminHandler(accessSvc, statsSvc, a.log),
		Health:   handlers.NewHealthHandler(a.db, a.log),
	}, a.tokens, a.metrics)
	return router
}
