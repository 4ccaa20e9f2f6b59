// Package users implements the admin side of account management: listing
// accounts and deleting them.
package users

import (
	"context"
	"log/slog"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
)

// Service provides admin operations over the credential store.
type Service struct {
	store  auth.UserStore
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store auth.UserStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListUsers returns every account, ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to list users.", err)
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, summarize(u))
	}
	return out, nil
}

// DeleteUser removes targetID. callerID comes from the verified token; an
// admin deleting their own account is rejected before the store is touched.
func (s *Service) DeleteUser(ctx context.Context, callerID, targetID int64) error {
	if callerID == targetID {
		return apperror.NewValidationError("Admins cannot delete their own account.", nil).
			WithCode(apperror.CodeSelfDelete)
	}

	deleted, err := s.store.Delete(ctx, targetID)
	if err != nil {
		return apperror.NewDatabaseError("Failed to delete user.", err)
	}
	if !deleted {
		return apperror.NewNotFoundError("User not found.", nil)
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", targetID, "by", callerID)
	return nil
}
