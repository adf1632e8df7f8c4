package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/core/domain"
)

type stubAccounts struct {
	byID map[string]*domain.Account
}

func (s *stubAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccounts) Create(_ context.Context, _ *domain.Account) (*domain.Account, error) {
	return nil, nil
}
func (s *stubAccounts) FindByUsername(_ context.Context, _ string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}
func (s *stubAccounts) FindByEmail(_ context.Context, _ string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}
func (s *stubAccounts) List(_ context.Context, _ string, _, _ int) ([]domain.Account, int64, error) {
	return nil, 0, nil
}
func (s *stubAccounts) Update(_ context.Context, _ *domain.Account) error { return nil }

func (s *stubAccounts) SetCodeHash(_ context.Context, _, _ string) error { return nil }

func (s *stubAccounts) Delete(_ context.Context, _ string) error { return nil }

func signToken(t *testing.T, secret, sub string, exp time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      sub,
		"username": "alice",
		"iat":      now.Unix(),
		"exp":      now.Add(exp).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runPrincipal(t *testing.T, accounts *stubAccounts, authHeader string) domain.Principal {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got domain.Principal
	mw := Principal("secret", accounts)
	handler := mw(func(c echo.Context) error {
		got = PrincipalFrom(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("request rejected with %d; the resolver must never reject", rec.Code)
	}
	return got
}

func TestPrincipal_ValidToken(t *testing.T) {
	accounts := &stubAccounts{byID: map[string]*domain.Account{
		"acc-1": {ID: "acc-1", Username: "alice", Role: domain.RoleModerator},
	}}
	token := signToken(t, "secret", "acc-1", time.Hour)

	p := runPrincipal(t, accounts, "Bearer "+token)
	if p.Account == nil || p.Account.Username != "alice" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if p.Tier() != domain.TierModerator {
		t.Fatalf("tier = %v, want moderator", p.Tier())
	}
}

func TestPrincipal_AnonymousCases(t *testing.T) {
	accounts := &stubAccounts{byID: map[string]*domain.Account{
		"acc-1": {ID: "acc-1", Username: "alice", Role: domain.RoleUser},
	}}

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Token abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "acc-1", time.Hour)},
		{"expired", "Bearer " + signToken(t, "secret", "acc-1", -time.Hour)},
		{"deleted account", "Bearer " + signToken(t, "secret", "acc-gone", time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := runPrincipal(t, accounts, tc.header)
			if p.Account != nil {
				t.Fatalf("expected anonymous, got %+v", p.Account)
			}
			if p.Tier() != domain.TierAnonymous {
				t.Fatalf("tier = %v, want anonymous", p.Tier())
			}
		})
	}
}

func TestPrincipal_RoleReadFreshPerRequest(t *testing.T) {
	account := &domain.Account{ID: "acc-1", Username: "alice", Role: domain.RoleUser}
	accounts := &stubAccounts{byID: map[string]*domain.Account{"acc-1": account}}
	token := signToken(t, "secret", "acc-1", time.Hour)

	if got := runPrincipal(t, accounts, "Bearer "+token); got.Tier() != domain.TierUser {
		t.Fatalf("tier = %v, want user", got.Tier())
	}

	// Promote the account; the same token must now resolve to the new tier.
	account.Role = domain.RoleAdmin
	if got := runPrincipal(t, accounts, "Bearer "+token); got.Tier() != domain.TierAdmin {
		t.Fatalf("tier after promotion = %v, want admin", got.Tier())
	}
}
