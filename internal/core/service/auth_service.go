package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/reviewhub/review-api/internal/api/metrics"
	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AuthService implements passwordless signup and token issuance.
type AuthService struct {
	accounts ports.AccountRepository
	mailer   ports.Mailer
	throttle ports.SignupThrottle
	audit    ports.AuditRecorder
	secret   string
	tokenTTL time.Duration
	codeLen  int
	log      zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	mailer ports.Mailer,
	throttle ports.SignupThrottle,
	audit ports.AuditRecorder,
	secret string,
	tokenTTL time.Duration,
	codeLen int,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if codeLen <= 0 {
		codeLen = 6
	}
	return &AuthService{
		accounts: accounts,
		mailer:   mailer,
		throttle: throttle,
		audit:    audit,
		secret:   secret,
		tokenTTL: tokenTTL,
		codeLen:  codeLen,
		log:      log,
	}
}

// Signup registers a new account or rotates the confirmation code of the
// existing account matching exactly this (username, email) pair. Either way
// a fresh code is generated, stored hashed, and emailed; the previous code
// stops working. A second account is never created for a matching pair.
func (s *AuthService) Signup(ctx context.Context, username, email string) error {
	if username == domain.ReservedUsername {
		return domain.ErrUsernameReserved
	}

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, email)
		if err != nil {
			// Throttle store being down must not take signup down with it.
			s.log.Warn().Err(err).Str("email", email).Msg("signup throttle check failed, allowing")
		} else if !ok {
			return domain.ErrSignupThrottled
		}
	}

	existing, err := s.accounts.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Email != email {
			return domain.ErrUsernameTaken
		}
		// Idempotent re-request: same pair, rotate and resend.
		return s.rotateCode(ctx, existing)
	case err != domain.ErrAccountNotFound:
		return fmt.Errorf("signup: lookup username: %w", err)
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return domain.ErrEmailTaken
	} else if err != domain.ErrAccountNotFound {
		return fmt.Errorf("signup: lookup email: %w", err)
	}

	code, hash, err := s.newCode()
	if err != nil {
		return fmt.Errorf("signup: generate code: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:  username,
		Email:     email,
		Role:      domain.RoleUser,
		CodeHash:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return fmt.Errorf("signup: create account: %w", err)
	}

	if err := s.mailer.SendConfirmationCode(ctx, email, username, code); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCodeDelivery, err)
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	s.record(domain.AuditSignup, created.Username, "account created")
	s.log.Info().Str("username", username).Msg("account created, confirmation code sent")
	return nil
}

// rotateCode replaces the account's active code and re-delivers it.
func (s *AuthService) rotateCode(ctx context.Context, account *domain.Account) error {
	code, hash, err := s.newCode()
	if err != nil {
		return fmt.Errorf("signup: generate code: %w", err)
	}
	if err := s.accounts.SetCodeHash(ctx, account.ID, hash); err != nil {
		return fmt.Errorf("signup: rotate code: %w", err)
	}
	if err := s.mailer.SendConfirmationCode(ctx, account.Email, account.Username, code); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCodeDelivery, err)
	}

	metrics.SignupsTotal.WithLabelValues("rotated").Inc()
	s.record(domain.AuditCodeRotated, account.Username, "confirmation code rotated")
	s.log.Info().Str("username", account.Username).Msg("confirmation code rotated and resent")
	return nil
}

// IssueToken exchanges a (username, code) pair for a signed bearer token.
// The stored code is cleared on success: a code works exactly once.
func (s *AuthService) IssueToken(ctx context.Context, username, code string) (string, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			metrics.TokenFailuresTotal.WithLabelValues("unknown_username").Inc()
			return "", err
		}
		return "", fmt.Errorf("issue token: %w", err)
	}

	if account.CodeHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(account.CodeHash), []byte(code)) != nil {
		metrics.TokenFailuresTotal.WithLabelValues("bad_code").Inc()
		s.record(domain.AuditTokenRejected, username, "confirmation code mismatch")
		return "", domain.ErrInvalidCode
	}

	token, err := s.mintToken(account)
	if err != nil {
		return "", fmt.Errorf("issue token: sign: %w", err)
	}

	if err := s.accounts.SetCodeHash(ctx, account.ID, ""); err != nil {
		// The token is already minted; a failed invalidation is logged, not
		// surfaced. The next signup request rotates the code anyway.
		s.log.Warn().Err(err).Str("username", username).Msg("failed to clear confirmation code")
	}

	metrics.TokensIssuedTotal.Inc()
	s.record(domain.AuditTokenIssued, username, "")
	return token, nil
}

func (s *AuthService) mintToken(account *domain.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      account.ID,
		"username": account.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.secret))
}

// newCode draws a code uniformly from codeAlphabet and returns it with its
// bcrypt hash.
func (s *AuthService) newCode() (code, hash string, err error) {
	buf := make([]byte, s.codeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	code = string(buf)

	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return code, string(h), nil
}

func (s *AuthService) record(kind domain.AuditKind, username, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEvent{
		Kind:      kind,
		Username:  username,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}
