package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/storefront-go/apperror"
)

// dummyPassword is hashed once at startup; unknown-email logins are compared
// against it so they cost the same bcrypt work as a wrong password.
const dummyPassword = "storefront-timing-equalizer"

// Service implements registration, login and the admin seed.
type Service struct {
	store            UserStore
	hasher           *Hasher
	tokens           *TokenService
	firstUserIsAdmin bool
	dummyHash        string
	logger           *slog.Logger
}

// NewService wires the credential store, hasher and token service together.
func NewService(store UserStore, hasher *Hasher, tokens *TokenService, firstUserIsAdmin bool, logger *slog.Logger) (*Service, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &Service{
		store:            store,
		hasher:           hasher,
		tokens:           tokens,
		firstUserIsAdmin: firstUserIsAdmin,
		dummyHash:        dummyHash,
		logger:           logger,
	}, nil
}

// LoginResult is what a successful login yields.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Register hashes the password and creates the account.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if _, ok := apperror.FromError(err); ok {
			return nil, err
		}
		return nil, apperror.NewInternalError("Server error during registration.", err)
	}

	grant := GrantNone
	if s.firstUserIsAdmin {
		grant = GrantIfFirst
	}

	user, err := s.store.Create(ctx, email, hash, grant)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperror.NewDuplicateEmailError("User with this email already exists.")
		}
		return nil, apperror.NewDatabaseError("Server error during registration.", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "is_admin", user.IsAdmin)
	return user, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := apperror.NewUnauthorizedError("Invalid email or password.", nil).
		WithCode(apperror.CodeInvalidCredentials)

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, invalid
		}
		return nil, apperror.NewDatabaseError("Server error during login.", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.InfoContext(ctx, "login rejected", "user_id", user.ID)
		return nil, invalid
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, apperror.NewInternalError("Server error during login.", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// SeedAdmin creates an admin account at startup. An existing account with
// the same email is left untouched.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) (*User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	user, err := s.store.Create(ctx, email, hash, GrantAlways)
	if errors.Is(err, ErrDuplicateEmail) {
		existing, findErr := s.store.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, fmt.Errorf("load existing admin: %w", findErr)
		}
		if !existing.IsAdmin {
			s.logger.WarnContext(ctx, "admin seed email belongs to a non-admin account", "user_id", existing.ID)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	s.logger.InfoContext(ctx, "admin account seeded", "user_id", user.ID)
	return user, nil
}
