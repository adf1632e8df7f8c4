package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/reviewhub/review-api/internal/core/domain"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account
	nextID   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return nil, domain.ErrUsernameTaken
		}
		if existing.Email == a.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	copy := cloneAccount(a)
	r.nextID++
	copy.ID = fmt.Sprintf("acc-%d", r.nextID)
	r.accounts[copy.ID] = cloneAccount(copy)
	return copy, nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Username == username {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) List(_ context.Context, _ string, _, _ int) ([]domain.Account, int64, error) {
	out := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubAccountRepo) Update(_ context.Context, a *domain.Account) error {
	if _, ok := r.accounts[a.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	r.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r *stubAccountRepo) SetCodeHash(_ context.Context, id, hash string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.CodeHash = hash
	return nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

type stubMailer struct {
	sent     []string // codes in delivery order
	lastTo   string
	failWith error
}

func (m *stubMailer) SendConfirmationCode(_ context.Context, email, _ string, code string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, code)
	m.lastTo = email
	return nil
}

type stubThrottle struct {
	allow bool
	err   error
	calls int
}

func (t *stubThrottle) Allow(_ context.Context, _ string) (bool, error) {
	t.calls++
	return t.allow, t.err
}

type stubAudit struct {
	events []domain.AuditEvent
}

func (a *stubAudit) Record(event domain.AuditEvent) {
	a.events = append(a.events, event)
}

func newAuthFixture() (*AuthService, *stubAccountRepo, *stubMailer, *stubAudit) {
	repo := newStubAccountRepo()
	mailer := &stubMailer{}
	audit := &stubAudit{}
	svc := NewAuthService(repo, mailer, &stubThrottle{allow: true}, audit, "secret", time.Hour, 6, zerolog.Nop())
	return svc, repo, mailer, audit
}

func TestAuthService_Signup_CreatesAccount(t *testing.T) {
	svc, repo, mailer, _ := newAuthFixture()

	if err := svc.Signup(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	account, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("account not stored: %v", err)
	}
	if account.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", account.Role)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}
	if mailer.lastTo != "alice@example.com" {
		t.Fatalf("mail sent to %q", mailer.lastTo)
	}
	code := mailer.sent[0]
	if account.CodeHash == code {
		t.Fatalf("code stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.CodeHash), []byte(code)); err != nil {
		t.Fatalf("stored hash does not match mailed code: %v", err)
	}
}

func TestAuthService_Signup_ReservedUsername(t *testing.T) {
	svc, _, mailer, _ := newAuthFixture()

	if err := svc.Signup(context.Background(), "me", "me@example.com"); err != domain.ErrUsernameReserved {
		t.Fatalf("expected ErrUsernameReserved, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("no mail should be sent for a reserved username")
	}
}

func TestAuthService_Signup_RepeatRotatesCode(t *testing.T) {
	svc, _, mailer, _ := newAuthFixture()

	if err := svc.Signup(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if err := svc.Signup(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("repeat signup must be idempotent, got %v", err)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 mails, got %d", len(mailer.sent))
	}

	// The first code must have stopped working; the second must work.
	if _, err := svc.IssueToken(context.Background(), "alice", mailer.sent[0]); err != domain.ErrInvalidCode {
		t.Fatalf("superseded code accepted: %v", err)
	}
	if _, err := svc.IssueToken(context.Background(), "alice", mailer.sent[1]); err != nil {
		t.Fatalf("fresh code rejected: %v", err)
	}
}

func TestAuthService_Signup_UsernameTaken(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	if err := svc.Signup(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if err := svc.Signup(context.Background(), "alice", "other@example.com"); err != domain.ErrUsernameTaken {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if err := svc.Signup(context.Background(), "alice2", "alice@example.com"); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Signup_Throttled(t *testing.T) {
	repo := newStubAccountRepo()
	mailer := &stubMailer{}
	throttle := &stubThrottle{allow: false}
	svc := NewAuthService(repo, mailer, throttle, nil, "secret", time.Hour, 6, zerolog.Nop())

	if err := svc.Signup(context.Background(), "alice", "alice@example.com"); err != domain.ErrSignupThrottled {
		t.Fatalf("expected ErrSignupThrottled, got %v", err)
	}
	if throttle.calls != 1 {
		t.Fatalf("throttle consulted %d times", throttle.calls)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("throttled signup must not mail a code")
	}
}

func TestAuthService_Signup_ThrottleStoreDownFailsOpen(t *testing.T) {
	repo := newStubAccountRepo()
	mailer := &stubMailer{}
	throttle := &stubThrottle{err: errors.New("redis down")}
	svc := NewAuthService(repo, mailer, throttle, nil, "secret", time.Hour, 6, zerolog.Nop())

	if err := svc.Signup(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("throttle store outage must not block signup, got %v", err)
	}
}

func TestAuthService_Signup_DeliveryFailure(t *testing.T) {
	repo := newStubAccountRepo()
	mailer := &stubMailer{failWith: errors.New("connection refused")}
	svc := NewAuthService(repo, mailer, &stubThrottle{allow: true}, nil, "secret", time.Hour, 6, zerolog.Nop())

	err := svc.Signup(context.Background(), "alice", "alice@example.com")
	if !errors.Is(err, domain.ErrCodeDelivery) {
		t.Fatalf("expected ErrCodeDelivery, got %v", err)
	}
}

func TestAuthService_IssueToken_Success(t *testing.T) {
	svc, repo, mailer, _ := newAuthFixture()

	if err := svc.Signup(context.Background(), "carol", "carol@example.com"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, err := svc.IssueToken(context.Background(), "carol", mailer.sent[0])
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["username"] != "carol" {
		t.Fatalf("unexpected username claim: %v", claims["username"])
	}
	account, _ := repo.FindByUsername(context.Background(), "carol")
	if claims["sub"] != account.ID {
		t.Fatalf("sub claim %v, want %s", claims["sub"], account.ID)
	}
}

func TestAuthService_IssueToken_CodeWorksOnce(t *testing.T) {
	svc, _, mailer, _ := newAuthFixture()

	if err := svc.Signup(context.Background(), "carol", "carol@example.com"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	code := mailer.sent[0]
	if _, err := svc.IssueToken(context.Background(), "carol", code); err != nil {
		t.Fatalf("first exchange: %v", err)
	}
	if _, err := svc.IssueToken(context.Background(), "carol", code); err != domain.ErrInvalidCode {
		t.Fatalf("used code accepted again: %v", err)
	}
}

func TestAuthService_IssueToken_Failures(t *testing.T) {
	svc, _, _, audit := newAuthFixture()

	if _, err := svc.IssueToken(context.Background(), "ghost", "ABCDEF"); err != domain.ErrAccountNotFound {
		t.Fatalf("unknown username: got %v, want ErrAccountNotFound", err)
	}

	if err := svc.Signup(context.Background(), "carol", "carol@example.com"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.IssueToken(context.Background(), "carol", "WRONG1"); err != domain.ErrInvalidCode {
		t.Fatalf("wrong code: got %v, want ErrInvalidCode", err)
	}

	found := false
	for _, e := range audit.events {
		if e.Kind == domain.AuditTokenRejected && e.Username == "carol" {
			found = true
		}
	}
	if !found {
		t.Fatalf("rejected exchange not recorded in audit trail")
	}
}
