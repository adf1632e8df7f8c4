package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// principalKey is the echo context key the resolved principal lives under.
const principalKey = "principal"

// Principal resolves the Authorization header to a domain.Principal and
// stores it in the request context. Unlike a conventional auth middleware it
// NEVER rejects the request: an absent, malformed, expired or otherwise
// invalid token resolves to Anonymous and the request continues, because
// catalog and review reads are public and the 401/403 decision belongs to
// the permission gate, not the token parser.
//
// The account is re-fetched on every request so role changes and deletions
// take effect immediately; the token binds identity, not privileges.
func Principal(jwtSecret string, accounts ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(principalKey, domain.Anonymous)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return next(c)
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return next(c)
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				return next(c)
			}
			account, err := accounts.FindByID(c.Request().Context(), sub)
			if err != nil {
				// Deleted account with a still-valid token stays anonymous.
				return next(c)
			}

			c.Set(principalKey, domain.Principal{Account: account})
			return next(c)
		}
	}
}

// PrincipalFrom extracts the resolved principal from the echo context.
// Returns Anonymous when the middleware did not run.
func PrincipalFrom(c echo.Context) domain.Principal {
	p, _ := c.Get(principalKey).(domain.Principal)
	return p
}
