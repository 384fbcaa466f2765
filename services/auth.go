// auth.go - Registration, login and profile management

package services

import (
	"context"
	"errors"
	"strings"

	"go-market-backend/apperr"
	"go-market-backend/auth"
	"go-market-backend/logger"
	"go-market-backend/metrics"
	"go-market-backend/models"
	"go-market-backend/repository"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailTaken         = "An account with this email already exists"
	msgPasswordTooLong    = "Password must be at most 72 bytes long"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

var (
	registerMessages = messages{
		"required": "Name, email, and password are required",
		"email":    "Please enter a valid email address",
		"min":      "Password must be at least 6 characters long",
	}
	loginMessages = messages{
		"required": "Email and password are required",
	}
	profileMessages = messages{
		"required": "Name and email are required",
		"email":    "Please enter a valid email address",
	}
)

// Session is returned by login and registration.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	db      Database
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenCodec
	metrics *metrics.Metrics
	log     logger.Logger
}

func NewAuthService(db Database, hasher *auth.PasswordHasher, tokens *auth.TokenCodec, m *metrics.Metrics, log logger.Logger) *AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{db: db, hasher: hasher, tokens: tokens, metrics: m, log: log.With("service", "auth")}
}

// Register creates a user account. The role is always user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := check(in, registerMessages, "Invalid registration data"); err != nil {
		return nil, err
	}

	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	user, err := createUser(ctx, store, s.hasher, in.Name, in.Email, in.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID)

	return s.session(user)
}

// Login checks credentials. An unknown email and a wrong password produce
// the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := check(in, loginMessages, "Email and password are required"); err != nil {
		return nil, err
	}

	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	user, err := store.GetUserByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if user == nil {
		s.hasher.CompareMissing(in.Password)
		s.metrics.Login(metrics.LoginFailure)
		s.log.Warn("login failed", "reason", "unknown account")
		return nil, apperr.Auth(msgInvalidCredentials)
	}
	if !s.hasher.Compare(user.PasswordHash, in.Password) {
		s.metrics.Login(metrics.LoginFailure)
		s.log.Warn("login failed", "reason", "wrong password", "user_id", user.ID)
		return nil, apperr.Auth(msgInvalidCredentials)
	}

	s.metrics.Login(metrics.LoginSuccess)
	return s.session(user)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpected, "issue token", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Me returns the stored account of the caller.
func (s *AuthService) Me(ctx context.Context, caller *auth.Claims) (*models.User, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	user, err := store.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, caller *auth.Claims, in ProfileInput) (*models.User, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := check(in, profileMessages, "Invalid profile data"); err != nil {
		return nil, err
	}

	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	user, err := store.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}

	user.Name = in.Name
	user.Email = in.Email
	user.UpdatedAt = nowUTC()
	if err := store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Email is already taken")
		}
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

// createUser hashes password and inserts the account, relying on the unique
// email index for duplicate detection.
func createUser(ctx context.Context, store repository.UserRepository, hasher *auth.PasswordHasher, name, email, password, role string) (*models.User, error) {
	hash, err := hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperr.Validation(msgPasswordTooLong)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpected, "hash password", err)
	}

	now := nowUTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(msgEmailTaken)
		}
		return nil, err
	}
	return user, nil
}
