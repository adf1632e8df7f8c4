package ports

import (
	"context"

	"github.com/reviewhub/review-api/internal/core/domain"
)

// AccountPatch carries partial-update fields; nil means "leave unchanged".
type AccountPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *domain.Role
}

// CreateAccountInput is the admin-side account creation payload.
type CreateAccountInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      domain.Role
}

// ListAccountsResult is a page of accounts.
type ListAccountsResult struct {
	Items []domain.Account
	Total int64
	Page  int
	Limit int
}

// UserService implements account management and the self-service profile.
type UserService interface {
	// Admin-gated operations.
	List(ctx context.Context, p domain.Principal, search string, page, limit int) (*ListAccountsResult, error)
	Create(ctx context.Context, p domain.Principal, in CreateAccountInput) (*domain.Account, error)
	Get(ctx context.Context, p domain.Principal, username string) (*domain.Account, error)
	Update(ctx context.Context, p domain.Principal, username string, patch AccountPatch) (*domain.Account, error)
	Delete(ctx context.Context, p domain.Principal, username string) error

	// Self-service path. UpdateSelf drops any role change unless the caller
	// is an admin.
	GetSelf(ctx context.Context, p domain.Principal) (*domain.Account, error)
	UpdateSelf(ctx context.Context, p domain.Principal, patch AccountPatch) (*domain.Account, error)
}
