package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go-market-backend/auth"
	"go-market-backend/cryptox"
	"go-market-backend/logger"
	"go-market-backend/middleware"
	"go-market-backend/models"
	"go-market-backend/repository"
	"go-market-backend/repository/gormstore"
	"go-market-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  repository.Store
	tokens *auth.TokenCodec
	hasher *auth.PasswordHasher
	files  *fakeFiles
}

// setupServer builds a router over a fresh SQLite database. files may be nil
// to run without object storage.
func setupServer(t *testing.T, files *fakeFiles) *testServer {
	t.Helper()
	store, err := gormstore.OpenSQLite(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	box, err := cryptox.NewSecretBox("handler-test-key")
	require.NoError(t, err)

	ts := &testServer{
		store:  store,
		tokens: auth.NewTokenCodec("handler-test-secret"),
		hasher: auth.NewPasswordHasher(bcrypt.MinCost),
		files:  files,
	}

	var fileStore services.FileStore
	if files != nil {
		fileStore = files
	}

	log := logger.Nop()
	db := services.StaticDatabase{Store: store}
	authSvc := services.NewAuthService(db, ts.hasher, ts.tokens, nil, log)
	productSvc := services.NewProductService(db, box, log)
	accessSvc := services.NewAccessService(db, box, fileStore, nil, nil, log)
	uploadSvc := services.NewUploadService(fileStore, log)
	statsSvc := services.NewStatsService(db)

	authH := NewAuthHandler(authSvc, false, log)
	productH := NewProductHandler(productSvc, accessSvc, log)
	fileH := NewFileHandler(accessSvc, uploadSvc, log)
	userH := NewUserHandler(authSvc, accessSvc, log)
	adminH := NewAdminHandler(accessSvc, statsSvc, log)
	healthH := NewHealthHandler(db, log)

	authRequired := middleware.Auth(ts.tokens)
	admin := middleware.Admin()

	r := gin.New()
	r.GET("/health", healthH.Check)
	r.POST("/auth/register", authH.Register)
	r.POST("/auth/login", authH.Login)
	r.GET("/auth/me", authRequired, authH.Me)
	r.GET("/products", productH.List)
	r.GET("/products/categories", productH.Categories)
	r.GET("/products/tags", productH.Tags)
	r.GET("/products/slug/:slug", middleware.OptionalAuth(ts.tokens), productH.BySlug)
	r.GET("/products/:id", productH.ByID)
	r.POST("/products", authRequired, admin, productH.Create)
	r.PUT("/products/:id", authRequired, admin, productH.Update)
	r.DELETE("/products/:id", authRequired, admin, productH.Delete)
	r.GET("/files/download/:productId/:fileIndex", authRequired, fileH.Download)
	r.POST("/files/upload", authRequired, admin, fileH.Upload)
	r.GET("/user/library", authRequired, userH.Library)
	r.PUT("/user/profile", authRequired, userH.UpdateProfile)
	r.POST("/admin/entitlements", authRequired, admin, adminH.GrantEntitlement)
	r.GET("/admin/stats", authRequired, admin, adminH.Stats)
	ts.router = r
	return ts
}

// createUser stores an account directly and returns it with a session token.
func (ts *testServer) createUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	hash, err := ts.hasher.Hash("password1")
	require.NoError(t, err)
	user := &models.User{ID: uuid.NewString(), Name: "Test " + role, Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, ts.store.CreateUser(context.Background(), user))

	token, err := ts.tokens.Issue(auth.Claims{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
	require.NoError(t, err)
	return user, token
}

// request sends body as JSON when it is not nil.
func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) rawRequest(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

// createProduct posts in as admin and returns the stored product.
func (ts *testServer) createProduct(t *testing.T, adminToken string, in services.ProductInput) *models.Product {
	t.Helper()
	w := ts.request(t, http.MethodPost, "/products", adminToken, in)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		Product models.Product `json:"product"`
	}
	decode(t, w, &body)
	return &body.Product
}

func paidProduct(title string) services.ProductInput {
	return services.ProductInput{
		Title:    title,
		Category: "Templates",
		Tags:     []string{"nextjs", "stripe"},
		IsPaid:   true,
		DownloadableFiles: []models.DownloadableFile{
			{Name: "template.zip", URL: "s3://assets/products/template.zip", Size: 100, Type: "application/zip"},
		},
		Secrets: []models.Secret{
			{Name: "Stripe Key", Value: "sk_test_123"},
		},
	}
}

func freeProduct(title string) services.ProductInput {
	return services.ProductInput{
		Title:    title,
		Category: "Design",
		Tags:     []string{"icons"},
		DownloadableFiles: []models.DownloadableFile{
			{Name: "icons.zip", URL: "/files/icons.zip", Size: 10, Type: "application/zip"},
		},
	}
}

type fakeFiles struct {
	stored map[string][]byte
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{stored: map[string][]byte{}}
}

func (f *fakeFiles) Put(_ context.Context, name, _ string, _ int64, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	location := "s3://assets/products/" + name
	f.stored[location] = b
	return location, nil
}

func (f *fakeFiles) DownloadURL(_ context.Context, location string) (string, error) {
	return "https://signed.example/" + strings.TrimPrefix(location, "s3://"), nil
}
