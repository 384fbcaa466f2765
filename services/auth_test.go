package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go-market-backend/apperr"
	"go-market-backend/logger"
	"go-market-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	sess, err := env.auth.Register(context.Background(), RegisterInput{
		Name:     "  Ada  ",
		Email:    "  Ada@Example.COM ",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", sess.User.Name)
	assert.Equal(t, "ada@example.com", sess.User.Email)
	assert.Equal(t, models.RoleUser, sess.User.Role)
	assert.NotEqual(t, "secret123", sess.User.PasswordHash)

	claims, err := env.tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com")

	_, err := env.auth.Register(context.Background(), RegisterInput{Name: "Other", Email: "ADA@example.com ", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, "An account with this email already exists", apperr.PublicMessage(err))

	n, err := env.store.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		in   RegisterInput
		want string
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: "secret123"}, "Name, email, and password are required"},
		{"missing password", RegisterInput{Name: "A", Email: "not-an-email"}, "Name, email, and password are required"},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret123"}, "Please enter a valid email address"},
		{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "12345"}, "Password must be at least 6 characters long"},
		{"long password", RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 80)}, "Password must be at most 72 bytes long"},
		{"long multibyte password", RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("é", 40)}, "Password must be at most 72 bytes long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Equal(t, tt.want, apperr.PublicMessage(err))
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com")

	sess, err := env.auth.Login(context.Background(), LoginInput{Email: " ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.User.ID)
	assert.NotEmpty(t, sess.Token)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com")

	_, wrongPassword := env.auth.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "nope-nope"})
	_, unknownEmail := env.auth.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "secret123"})

	for _, err := range []error{wrongPassword, unknownEmail} {
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindAuth))
		assert.Equal(t, "Invalid email or password", apperr.PublicMessage(err))
	}
}

func TestLogin_DoesNotLogEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com")

	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: logger.DebugLevel, Output: &buf, TimeFormat: "15:04:05"})
	svc := NewAuthService(env.db, env.hasher, env.tokens, nil, log)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "secret123"})
	require.Error(t, err)
	_, err = svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "nope-nope"})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "login failed")
	assert.NotContains(t, out, "ghost@example.com")
	assert.NotContains(t, out, "ada@example.com")
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Login(context.Background(), LoginInput{Email: "ada@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com")

	got, err := env.auth.Me(context.Background(), userClaims(user))
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = env.auth.Me(context.Background(), nil)
	assert.True(t, apperr.Is(err, apperr.KindAuth))
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ada := env.register(t, "Ada", "ada@example.com")
	env.register(t, "Bob", "bob@example.com")

	updated, err := env.auth.UpdateProfile(context.Background(), userClaims(ada), ProfileInput{Name: "Ada L", Email: "ADA.L@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L", updated.Name)
	assert.Equal(t, "ada.l@example.com", updated.Email)

	_, err = env.auth.UpdateProfile(context.Background(), userClaims(ada), ProfileInput{Name: "Ada", Email: "bob@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = env.auth.UpdateProfile(context.Background(), userClaims(ada), ProfileInput{Name: "", Email: "x@example.com"})
	assert.Equal(t, "Name and email are required", apperr.PublicMessage(err))
}
