package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

func newUserFixture(t *testing.T) (*UserService, *stubAccountRepo, *stubReviewRepo, *stubCommentRepo) {
	t.Helper()
	accounts := newStubAccountRepo()
	reviews := newStubReviewRepo()
	comments := newStubCommentRepo()
	svc := NewUserService(accounts, reviews, comments, zerolog.Nop())
	return svc, accounts, reviews, comments
}

func seedAccount(t *testing.T, repo *stubAccountRepo, username string, role domain.Role) *domain.Account {
	t.Helper()
	created, err := repo.Create(context.Background(), &domain.Account{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("seed account %q: %v", username, err)
	}
	return created
}

func TestUserService_AdminGate(t *testing.T) {
	svc, repo, _, _ := newUserFixture(t)
	seedAccount(t, repo, "bob", domain.RoleUser)

	for _, p := range []domain.Principal{
		principalFor(domain.RoleUser, "u1"),
		principalFor(domain.RoleModerator, "m1"),
	} {
		if _, err := svc.List(context.Background(), p, "", 1, 20); err != domain.ErrForbidden {
			t.Fatalf("%s list: got %v, want ErrForbidden", p.Tier(), err)
		}
		if _, err := svc.Get(context.Background(), p, "bob"); err != domain.ErrForbidden {
			t.Fatalf("%s get: got %v, want ErrForbidden", p.Tier(), err)
		}
		if err := svc.Delete(context.Background(), p, "bob"); err != domain.ErrForbidden {
			t.Fatalf("%s delete: got %v, want ErrForbidden", p.Tier(), err)
		}
	}

	if _, err := svc.List(context.Background(), domain.Anonymous, "", 1, 20); err != domain.ErrUnauthenticated {
		t.Fatalf("anonymous list: got %v, want ErrUnauthenticated", err)
	}
}

func TestUserService_Create(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)
	admin := principalFor(domain.RoleAdmin, "a1")

	created, err := svc.Create(context.Background(), admin, ports.CreateAccountInput{
		Username: "bob",
		Email:    "bob@example.com",
		Role:     domain.RoleModerator,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Role != domain.RoleModerator {
		t.Fatalf("role not applied: %s", created.Role)
	}

	// Defaults and validation.
	defaulted, err := svc.Create(context.Background(), admin, ports.CreateAccountInput{Username: "carol", Email: "carol@example.com"})
	if err != nil {
		t.Fatalf("Create with empty role: %v", err)
	}
	if defaulted.Role != domain.RoleUser {
		t.Fatalf("empty role should default to user, got %s", defaulted.Role)
	}
	if _, err := svc.Create(context.Background(), admin, ports.CreateAccountInput{Username: "me", Email: "me@example.com"}); err != domain.ErrUsernameReserved {
		t.Fatalf("reserved username: got %v, want ErrUsernameReserved", err)
	}
	if _, err := svc.Create(context.Background(), admin, ports.CreateAccountInput{Username: "dave", Email: "dave@example.com", Role: "royalty"}); err != domain.ErrInvalidRole {
		t.Fatalf("bad role: got %v, want ErrInvalidRole", err)
	}
	if _, err := svc.Create(context.Background(), admin, ports.CreateAccountInput{Username: "bob", Email: "new@example.com"}); err != domain.ErrUsernameTaken {
		t.Fatalf("duplicate username: got %v, want ErrUsernameTaken", err)
	}
}

func TestUserService_Update_RoleChange(t *testing.T) {
	svc, repo, _, _ := newUserFixture(t)
	seedAccount(t, repo, "bob", domain.RoleUser)

	role := domain.RoleModerator
	updated, err := svc.Update(context.Background(), principalFor(domain.RoleAdmin, "a1"), "bob", ports.AccountPatch{Role: &role})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Role != domain.RoleModerator {
		t.Fatalf("role change not applied: %s", updated.Role)
	}

	bad := domain.Role("royalty")
	if _, err := svc.Update(context.Background(), principalFor(domain.RoleAdmin, "a1"), "bob", ports.AccountPatch{Role: &bad}); err != domain.ErrInvalidRole {
		t.Fatalf("bad role: got %v, want ErrInvalidRole", err)
	}
}

func TestUserService_UpdateSelf_DropsRoleForNonAdmin(t *testing.T) {
	svc, repo, _, _ := newUserFixture(t)
	account := seedAccount(t, repo, "bob", domain.RoleUser)
	p := domain.Principal{Account: account}

	bio := "hello"
	role := domain.RoleAdmin
	updated, err := svc.UpdateSelf(context.Background(), p, ports.AccountPatch{Bio: &bio, Role: &role})
	if err != nil {
		t.Fatalf("UpdateSelf: %v", err)
	}
	if updated.Bio != "hello" {
		t.Fatalf("bio not applied")
	}
	if updated.Role != domain.RoleUser {
		t.Fatalf("self-service role escalation applied: %s", updated.Role)
	}
}

func TestUserService_UpdateSelf_EmailConflict(t *testing.T) {
	svc, repo, _, _ := newUserFixture(t)
	seedAccount(t, repo, "alice", domain.RoleUser)
	account := seedAccount(t, repo, "bob", domain.RoleUser)

	taken := "alice@example.com"
	if _, err := svc.UpdateSelf(context.Background(), domain.Principal{Account: account}, ports.AccountPatch{Email: &taken}); err != domain.ErrEmailTaken {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestUserService_GetSelf_Anonymous(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)

	if _, err := svc.GetSelf(context.Background(), domain.Anonymous); err != domain.ErrUnauthenticated {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.UpdateSelf(context.Background(), domain.Anonymous, ports.AccountPatch{}); err != domain.ErrUnauthenticated {
		t.Fatalf("got %v, want ErrUnauthenticated", err)
	}
}

func TestUserService_Delete_Cascades(t *testing.T) {
	svc, repo, reviews, comments := newUserFixture(t)
	bob := seedAccount(t, repo, "bob", domain.RoleUser)
	carol := seedAccount(t, repo, "carol", domain.RoleUser)

	// Bob reviews a title; Carol comments on it. Bob also comments on
	// Carol's review elsewhere.
	bobReview, err := reviews.Create(context.Background(), &domain.Review{TitleID: "t1", AuthorID: bob.ID, Score: 8})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}
	carolReview, err := reviews.Create(context.Background(), &domain.Review{TitleID: "t2", AuthorID: carol.ID, Score: 6})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}
	if _, err := comments.Create(context.Background(), &domain.Comment{ReviewID: bobReview.ID, AuthorID: carol.ID}); err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	if _, err := comments.Create(context.Background(), &domain.Comment{ReviewID: carolReview.ID, AuthorID: bob.ID}); err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	if err := svc.Delete(context.Background(), principalFor(domain.RoleAdmin, "a1"), "bob"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := repo.FindByUsername(context.Background(), "bob"); err != domain.ErrAccountNotFound {
		t.Fatalf("account survived deletion: %v", err)
	}
	if _, ok := reviews.reviews[bobReview.ID]; ok {
		t.Fatalf("bob's review survived")
	}
	if _, ok := reviews.reviews[carolReview.ID]; !ok {
		t.Fatalf("carol's review was deleted")
	}
	if len(comments.comments) != 0 {
		t.Fatalf("expected all of bob's comments and comments on bob's reviews gone, %d left", len(comments.comments))
	}
}
