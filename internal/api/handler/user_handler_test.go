package handler

import (
	"testing"
	"time"

	"github.com/reviewhub/review-api/internal/core/domain"
)

func TestAccountView_Projections(t *testing.T) {
	account := &domain.Account{
		ID:        "acc-1",
		Username:  "alice",
		Email:     "alice@example.com",
		Bio:       "hi",
		Role:      domain.RoleUser,
		CreatedAt: time.Now(),
	}

	switch view := accountView(domain.TierAdmin, account).(type) {
	case adminAccountResponse:
		if view.ID != "acc-1" || view.Username != "alice" {
			t.Fatalf("admin view misses fields: %+v", view)
		}
	default:
		t.Fatalf("admin tier got %T", view)
	}

	for _, tier := range []domain.Tier{domain.TierUser, domain.TierModerator} {
		switch view := accountView(tier, account).(type) {
		case ownerAccountResponse:
			if view.Username != "alice" || view.Role != "user" {
				t.Fatalf("owner view misses fields: %+v", view)
			}
		default:
			t.Fatalf("tier %v got %T, want the owner projection", tier, view)
		}
	}
}

func TestNewPagination(t *testing.T) {
	p := newPagination(45, 2, 20)
	if p.TotalPages != 3 || p.Page != 2 || p.Limit != 20 || p.Total != 45 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if empty := newPagination(0, 1, 20); empty.TotalPages != 0 {
		t.Fatalf("empty set should have 0 pages, got %d", empty.TotalPages)
	}
}
