package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/audioshop/audioshop-api/internal/apperr"
)

// RequireRoles enforces that the authenticated identity carries every one of
// the given role tags (all, not any). It assumes Authenticate ran earlier in
// the chain; a missing identity is treated as unauthenticated rather than
// forbidden.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := Identity(c)
			if !ok {
				return apperr.Unauthenticated("Authentication required")
			}
			for _, role := range roles {
				if !user.HasRole(role) {
					return apperr.Forbidden("Access denied")
				}
			}
			return next(c)
		}
	}
}
