package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/core/domain"
)

type stubAuthService struct {
	signupFn     func(ctx context.Context, username, email string) error
	issueTokenFn func(ctx context.Context, username, code string) (string, error)
}

func (s *stubAuthService) Signup(ctx context.Context, username, email string) error {
	return s.signupFn(ctx, username, email)
}

func (s *stubAuthService) IssueToken(ctx context.Context, username, code string) (string, error) {
	return s.issueTokenFn(ctx, username, code)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(_ context.Context, username, email string) error {
			if username != "alice" || email != "alice@example.com" {
				t.Fatalf("unexpected args: %s %s", username, email)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/auth/signup", `{"username":"alice","email":"alice@example.com"}`)
	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["email"] != "alice@example.com" {
		t.Fatalf("response must echo the input, got %v", resp)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(_ context.Context, _, _ string) error {
			t.Fatalf("service must not be called on invalid input")
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	for _, body := range []string{
		`{"username":"alice"}`,
		`{"email":"alice@example.com"}`,
		`{"username":"alice","email":"not-an-email"}`,
	} {
		c, _ := newTestContext(t, http.MethodPost, "/v1/auth/signup", body)
		err := handler.Signup(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 HTTPError, got %v", body, err)
		}
	}
}

func TestAuthHandler_Signup_ErrorsPassThrough(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(_ context.Context, _, _ string) error {
			return domain.ErrSignupThrottled
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/auth/signup", `{"username":"alice","email":"alice@example.com"}`)
	if err := handler.Signup(c); err != domain.ErrSignupThrottled {
		t.Fatalf("domain error must pass through untouched, got %v", err)
	}
}

func TestAuthHandler_Token_Success(t *testing.T) {
	stub := &stubAuthService{
		issueTokenFn: func(_ context.Context, username, code string) (string, error) {
			if username != "alice" || code != "ABC123" {
				t.Fatalf("unexpected args: %s %s", username, code)
			}
			return "signed.jwt.token", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/auth/token", `{"username":"alice","confirmation_code":"ABC123"}`)
	if err := handler.Token(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed.jwt.token" {
		t.Fatalf("unexpected token: %q", resp.Token)
	}
}

func TestAuthHandler_Token_MissingCode(t *testing.T) {
	stub := &stubAuthService{
		issueTokenFn: func(_ context.Context, _, _ string) (string, error) {
			t.Fatalf("service must not be called on invalid input")
			return "", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/auth/token", `{"username":"alice"}`)
	err := handler.Token(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
