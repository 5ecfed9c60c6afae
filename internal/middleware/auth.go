package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/yalovets/cleancrm/internal/model/auth"
)

type principalKey struct{}

// WithPrincipal stores authenticated principal id in the context
func WithPrincipal(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, principalKey{}, id)
}

// PrincipalFromContext extracts principal id put by Authorize middleware,
// empty string when request was not authorized
func PrincipalFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(principalKey{}).(string); ok {
		return id
	}
	return ""
}

// Authorize verifies bearer token and passes the principal down the
// request context. Requests without a valid principal are rejected with 401.
func Authorize(validator *auth.JwtValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHdr := c.Request().Header.Get("Authorization")
			hdrSplit := strings.Split(authHdr, " ")
			if len(hdrSplit) != 2 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			claims, err := validator.Verify(hdrSplit[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), claims.Subject)))

			return next(c)
		}
	}
}
