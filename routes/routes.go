// Package routes defines the HTTP surface of the marketplace.
package routes

import (
	"go-market-backend/auth"
	"go-market-backend/handlers"
	"go-market-backend/metrics"
	"go-market-backend/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Files    *handlers.FileHandler
	User     *handlers.UserHandler
	Admin    *handlers.AdminHandler
	Health   *handlers.HealthHandler
}

// Setup mounts all routes on router. m may be nil, which disables /metrics.
func Setup(router *gin.Engine, h Handlers, tokens *auth.TokenCodec, m *metrics.Metrics) {
	authRequired := middleware.Auth(tokens)
	adminOnly := []gin.HandlerFunc{authRequired, middleware.Admin()}

	router.GET("/health", h.Health.Check)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Sessions
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.GET("/me", authRequired, h.Auth.Me)
	}

	// Catalog
	products := router.Group("/products")
	{
		products.GET("", h.Products.List)
		products.GET("/categories", h.Products.Categories)
		products.GET("/tags", h.Products.Tags)
		products.GET("/slug/:slug", middleware.OptionalAuth(tokens), h.Products.BySlug)
		products.GET("/:id", h.Products.ByID)
		products.POST("", append(adminOnly, h.Products.Create)...)
		products.PUT("/:id", append(adminOnly, h.Products.Update)...)
		products.DELETE("/:id", append(adminOnly, h.Products.Delete)...)
	}

	// Files
	files := router.Group("/files")
	{
		files.GET("/download/:productId/:fileIndex", authRequired, h.Files.Download)
		files.POST("/upload", append(adminOnly, h.Files.Upload)...)
	}

	// Signed-in user
	user := router.Group("/user", authRequired)
	{
		user.GET("/library", h.User.Library)
		user.PUT("/profile", h.User.UpdateProfile)
	}

	// Admin
	admin := router.Group("/admin", adminOnly...)
	{
		admin.POST("/entitlements", h.Admin.GrantEntitlement)
		admin.GET("/stats", h.Admin.Stats)
	}
}
