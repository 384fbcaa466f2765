package services

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"go-market-backend/auth"
	"go-market-backend/cryptox"
	"go-market-backend/models"
	"go-market-backend/repository"
	"go-market-backend/repository/gormstore"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store    repository.Store
	db       Database
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenCodec
	box      *cryptox.SecretBox
	events   *recordingEvents
	files    *fakeFiles
	auth     *AuthService
	products *ProductService
	access   *AccessService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := gormstore.OpenSQLite(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	box, err := cryptox.NewSecretBox("test-encryption-key")
	require.NoError(t, err)

	env := &testEnv{
		store:  store,
		db:     StaticDatabase{Store: store},
		hasher: auth.NewPasswordHasher(bcrypt.MinCost),
		tokens: auth.NewTokenCodec("test-secret"),
		box:    box,
		events: &recordingEvents{},
		files:  &fakeFiles{},
	}
	env.auth = NewAuthService(env.db, env.hasher, env.tokens, nil, nil)
	env.products = NewProductService(env.db, box, nil)
	env.access = NewAccessService(env.db, box, env.files, env.events, nil, nil)
	return env
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: "admin-1", Email: "admin@example.com", Name: "Admin", Role: auth.RoleAdmin}
}

func userClaims(u *models.User) *auth.Claims {
	return &auth.Claims{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (e *testEnv) register(t *testing.T, name, email string) *models.User {
	t.Helper()
	sess, err := e.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret123"})
	require.NoError(t, err)
	return sess.User
}

func (e *testEnv) createProduct(t *testing.T, in ProductInput) *models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), adminClaims(), in)
	require.NoError(t, err)
	return p
}

func paidInput(title string) ProductInput {
	return ProductInput{
		Title:    title,
		Category: "Design",
		Tags:     []string{"ui"},
		IsPaid:   true,
		DownloadableFiles: []models.DownloadableFile{
			{Name: "kit.zip", URL: "/files/kit.zip", Size: 10, Type: "application/zip"},
			{Name: "assets.zip", URL: "s3://assets/products/assets.zip", Size: 20, Type: "application/zip"},
		},
		Secrets: []models.Secret{
			{Name: "License Key", Value: "lic_123", Description: "Activation key"},
			{Name: "API Token", Value: "tok_456"},
		},
	}
}

func freeInput(title string) ProductInput {
	return ProductInput{
		Title:    title,
		Category: "Icons",
		DownloadableFiles: []models.DownloadableFile{
			{Name: "icons.zip", URL: "/files/icons.zip", Size: 5, Type: "application/zip"},
		},
	}
}

type recordingEvents struct {
	mu        sync.Mutex
	downloads []*models.DownloadEvent
	grants    []*models.Entitlement
}

func (r *recordingEvents) PublishDownload(ev *models.DownloadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloads = append(r.downloads, ev)
}

func (r *recordingEvents) PublishEntitlement(ent *models.Entitlement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants = append(r.grants, ent)
}

type fakeFiles struct {
	putName string
	putType string
	putBody []byte
	putErr  error
}

func (f *fakeFiles) Put(ctx context.Context, name, contentType string, size int64, body io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.putName, f.putType, f.putBody = name, contentType, b
	return "s3://assets/products/" + name, nil
}

func (f *fakeFiles) DownloadURL(ctx context.Context, location string) (string, error) {
	return "https://signed.example/" + location[len("s3://"):], nil
}
