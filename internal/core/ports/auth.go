package ports

import (
	"context"

	"github.com/reviewhub/review-api/internal/core/domain"
)

// AuthService covers passwordless signup and token issuance.
type AuthService interface {
	// Signup creates the account (or rotates the code of the matching
	// existing account) and emails a fresh confirmation code.
	Signup(ctx context.Context, username, email string) error
	// IssueToken exchanges a (username, confirmation code) pair for a signed
	// bearer token. A successful exchange invalidates the stored code.
	IssueToken(ctx context.Context, username, code string) (string, error)
}

// AccountRepository is the durable identity store.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, search string, page, limit int) ([]domain.Account, int64, error)
	// Update persists mutable profile fields and role/flags.
	Update(ctx context.Context, a *domain.Account) error
	// SetCodeHash replaces the active confirmation code hash; an empty hash
	// clears it.
	SetCodeHash(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// Mailer delivers a confirmation code out-of-band. A delivery error is fatal
// to the signup call.
type Mailer interface {
	SendConfirmationCode(ctx context.Context, email, username, code string) error
}

// SignupThrottle bounds how often codes may be requested for one email.
type SignupThrottle interface {
	// Allow reports whether another signup request for email is permitted
	// inside the current window.
	Allow(ctx context.Context, email string) (bool, error)
}
