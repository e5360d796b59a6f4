package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abhinav/feedback-service/internal/auth"
	"github.com/abhinav/feedback-service/internal/domain"
	"github.com/abhinav/feedback-service/internal/events"
	"github.com/abhinav/feedback-service/internal/repository"
	apperrors "github.com/abhinav/feedback-service/pkg/util"
)

// Login failures deliberately carry one message for unknown usernames and
// wrong passwords so callers cannot enumerate accounts.
const invalidCredentialsMessage = "invalid username or password"

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, dispatcher events.Dispatcher, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		dispatcher: dispatcher,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account. Username and email must both be novel; the
// existence checks are raced against concurrent registrations, so the unique
// constraint violation from the store is mapped to the same conflict error.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.NewConflict("username already registered", map[string]any{"username": input.Username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username or email already registered", nil)
		}
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRegistered,
			Timestamp: time.Now().UTC(),
			Payload: events.UserRegisteredPayload{
				UserID:   user.ID,
				Username: user.Username,
				Role:     user.Role,
			},
		})
	}

	return user, nil
}

// Login authenticates by username and password and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentialsMessage)
		}
		return nil, "", time.Time{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentialsMessage)
	}

	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// ListUsers returns all registered accounts.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
