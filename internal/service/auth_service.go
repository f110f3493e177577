package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/config"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	limiter    *LoginLimiter
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Limiter    *LoginLimiter
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// LoginResult is the successful login projection returned to the caller.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Username  string
	Email     string
}

// Register creates a new account. Uniqueness is owned by the store, so a
// concurrent insert with the same username surfaces as DUPLICATE_USER rather
// than racing a pre-check.
func (s *AuthService) Register(ctx context.Context, name, username, password, email string) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateUser(username)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventUserRegistered, user.Username, events.UserRegisteredPayload{
			Username: user.Username,
			Email:    user.Email,
		}))
	}
	return user, nil
}

// Login authenticates a user and issues a token. Unknown username and wrong
// password return the same error so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, username, password, clientIP string) (*LoginResult, error) {
	if err := s.limiter.Enforce(ctx, username, clientIP); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.NewInvalidCredentials()
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.Username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  user.Username,
		Email:     user.Email,
	}, nil
}
