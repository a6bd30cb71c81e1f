package middleware

import (
	"net/http"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Authenticate resolves the request credential (bearer header or token cookie)
// and stores the identity in the echo context.
func Authenticate(resolver *auth.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			credential := auth.CredentialFromRequest(c.Request())
			identity, err := resolver.Resolve(c.Request().Context(), credential)
			if err != nil {
				return echo.NewHTTPError(apperror.HTTPStatus(apperror.KindOf(err)), apperror.Message(err))
			}
			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity set by Authenticate, or nil on unprotected routes.
func IdentityFrom(c echo.Context) *auth.Identity {
	identity, _ := c.Get(identityKey).(*auth.Identity)
	return identity
}

// RequireAdmin only lets through identities whose uid is in ids. It must run after Authenticate.
func RequireAdmin(ids []string) echo.MiddlewareFunc {
	admins := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		admins[id] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: No token provided")
			}
			if _, ok := admins[identity.UID]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}
