package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/reviewhub/review-api/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewHTTPErrorHandler(zerolog.Nop())
	handler(err, c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	return rec.Code, resp.Error
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrUsernameReserved, http.StatusBadRequest},
		{domain.ErrUsernameTaken, http.StatusBadRequest},
		{domain.ErrEmailTaken, http.StatusBadRequest},
		{domain.ErrInvalidCode, http.StatusBadRequest},
		{domain.ErrScoreOutOfRange, http.StatusBadRequest},
		{domain.ErrUnknownCategory, http.StatusBadRequest},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrTitleNotFound, http.StatusNotFound},
		{domain.ErrReviewNotFound, http.StatusNotFound},
		{domain.ErrReviewExists, http.StatusConflict},
		{domain.ErrSignupThrottled, http.StatusTooManyRequests},
		{domain.ErrCodeDelivery, http.StatusBadGateway},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := renderError(t, tc.err)
		if code != tc.code {
			t.Fatalf("%v: got status %d, want %d", tc.err, code, tc.code)
		}
	}
}

func TestHTTPErrorHandler_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: smtp: connection refused", domain.ErrCodeDelivery)
	code, _ := renderError(t, wrapped)
	if code != http.StatusBadGateway {
		t.Fatalf("wrapped delivery error: got %d, want 502", code)
	}
}

func TestHTTPErrorHandler_InternalErrorIsOpaque(t *testing.T) {
	_, msg := renderError(t, errors.New("pq: password authentication failed"))
	if msg != "internal server error" {
		t.Fatalf("internal detail leaked to client: %q", msg)
	}
}

func TestHTTPErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	code, msg := renderError(t, echo.NewHTTPError(http.StatusNotFound, "route not found"))
	if code != http.StatusNotFound || msg != "route not found" {
		t.Fatalf("echo error mangled: %d %q", code, msg)
	}
}
