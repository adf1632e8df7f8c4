package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// UserService implements admin account management and the self-service
// profile path. All admin operations pass through the permission gate with
// the caller's resolved principal; the ambient request identity is never
// consulted.
type UserService struct {
	accounts ports.AccountRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	log      zerolog.Logger
}

func NewUserService(
	accounts ports.AccountRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	log zerolog.Logger,
) *UserService {
	return &UserService{accounts: accounts, reviews: reviews, comments: comments, log: log}
}

func (s *UserService) List(ctx context.Context, p domain.Principal, search string, page, limit int) (*ports.ListAccountsResult, error) {
	if err := domain.Authorize(p, domain.ActionManageAccounts, ""); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)
	items, total, err := s.accounts.List(ctx, search, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return &ports.ListAccountsResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *UserService) Create(ctx context.Context, p domain.Principal, in ports.CreateAccountInput) (*domain.Account, error) {
	if err := domain.Authorize(p, domain.ActionManageAccounts, ""); err != nil {
		return nil, err
	}
	if in.Username == domain.ReservedUsername {
		return nil, domain.ErrUsernameReserved
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.accounts.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if err != domain.ErrAccountNotFound {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if _, err := s.accounts.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if err != domain.ErrAccountNotFound {
		return nil, fmt.Errorf("create account: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("account created by admin")
	return created, nil
}

func (s *UserService) Get(ctx context.Context, p domain.Principal, username string) (*domain.Account, error) {
	if err := domain.Authorize(p, domain.ActionManageAccounts, ""); err != nil {
		return nil, err
	}
	return s.accounts.FindByUsername(ctx, username)
}

func (s *UserService) Update(ctx context.Context, p domain.Principal, username string, patch ports.AccountPatch) (*domain.Account, error) {
	if err := domain.Authorize(p, domain.ActionManageAccounts, ""); err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.applyPatch(ctx, account, patch, true); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *UserService) Delete(ctx context.Context, p domain.Principal, username string) error {
	if err := domain.Authorize(p, domain.ActionManageAccounts, ""); err != nil {
		return err
	}
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	// Cascade: the account's reviews (and those reviews' comments), then the
	// account's own comments elsewhere, then the account itself.
	reviewIDs, err := s.reviews.DeleteByAuthor(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("delete account: cascade reviews: %w", err)
	}
	if len(reviewIDs) > 0 {
		if err := s.comments.DeleteByReviews(ctx, reviewIDs); err != nil {
			return fmt.Errorf("delete account: cascade review comments: %w", err)
		}
	}
	if err := s.comments.DeleteByAuthor(ctx, account.ID); err != nil {
		return fmt.Errorf("delete account: cascade comments: %w", err)
	}
	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.log.Info().Str("username", username).Msg("account deleted")
	return nil
}

func (s *UserService) GetSelf(ctx context.Context, p domain.Principal) (*domain.Account, error) {
	if p.Tier() == domain.TierAnonymous {
		return nil, domain.ErrUnauthenticated
	}
	return s.accounts.FindByID(ctx, p.ID())
}

// UpdateSelf lets any authenticated account edit its own profile. A role
// change in the patch is dropped, not rejected, unless the caller is an
// admin.
func (s *UserService) UpdateSelf(ctx context.Context, p domain.Principal, patch ports.AccountPatch) (*domain.Account, error) {
	if p.Tier() == domain.TierAnonymous {
		return nil, domain.ErrUnauthenticated
	}
	account, err := s.accounts.FindByID(ctx, p.ID())
	if err != nil {
		return nil, err
	}
	if err := s.applyPatch(ctx, account, patch, p.Tier() >= domain.TierAdmin); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *UserService) applyPatch(ctx context.Context, account *domain.Account, patch ports.AccountPatch, allowRole bool) error {
	if patch.Email != nil && *patch.Email != account.Email {
		if _, err := s.accounts.FindByEmail(ctx, *patch.Email); err == nil {
			return domain.ErrEmailTaken
		} else if err != domain.ErrAccountNotFound {
			return fmt.Errorf("update account: %w", err)
		}
		account.Email = *patch.Email
	}
	if patch.FirstName != nil {
		account.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		account.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		account.Bio = *patch.Bio
	}
	if patch.Role != nil && allowRole {
		if !domain.ValidRole(*patch.Role) {
			return domain.ErrInvalidRole
		}
		account.Role = *patch.Role
	}
	account.UpdatedAt = time.Now().UTC()
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// normalizePage clamps pagination parameters to sane defaults.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
