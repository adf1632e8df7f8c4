package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/core/domain"
)

// RequireTier rejects requests below the minimum tier before the handler
// runs. Anonymous callers get ErrUnauthenticated (401), authenticated but
// under-privileged callers get ErrForbidden (403); the central error handler
// maps both.
//
// Routes whose decision depends on resource ownership must not use this
// gate; they authorize inside the service where the owner is known.
func RequireTier(min domain.Tier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tier := PrincipalFrom(c).Tier()
			if tier >= min {
				return next(c)
			}
			if tier == domain.TierAnonymous {
				return domain.ErrUnauthenticated
			}
			return domain.ErrForbidden
		}
	}
}
