package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/audioshop/audioshop-api/internal/apperr"
	"github.com/audioshop/audioshop-api/internal/model"
	"github.com/audioshop/audioshop-api/internal/utils"
)

// identityKey is the echo context key under which the authenticated user is
// stored. Handlers never touch the key directly; they go through Identity.
const identityKey = "identity"

// IdentityResolver loads the acting user for a verified token subject.
// *repository.UserRepo satisfies it; tests substitute fakes.
type IdentityResolver interface {
	GetByID(ctx context.Context, id bson.ObjectID) (model.User, error)
}

// Authenticate returns middleware that validates a Bearer access token,
// resolves the identity record behind its subject claim and stores it in the
// request context. The token must verify against the access secret; a
// subject that resolves to a different user is rejected outright.
func Authenticate(secret string, users IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return apperr.Unauthenticated("Authentication required")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseToken(secret, raw)
			if err != nil {
				// jwt errors map to 401 at the boundary handler
				return err
			}

			id, err := bson.ObjectIDFromHex(claims.Subject)
			if err != nil {
				return apperr.Unauthenticated("invalid token")
			}

			user, err := users.GetByID(c.Request().Context(), id)
			if err != nil {
				return apperr.Unauthenticated("Authentication required")
			}
			if user.ID.Hex() != claims.Subject {
				return apperr.Forbidden("Not authorized")
			}

			c.Set(identityKey, user)
			return next(c)
		}
	}
}

// Identity extracts the authenticated user placed by Authenticate.
func Identity(c echo.Context) (model.User, bool) {
	u, ok := c.Get(identityKey).(model.User)
	return u, ok
}

// SetIdentity stores a user as the acting identity. Exported for handler
// tests that bypass the Authenticate middleware.
func SetIdentity(c echo.Context, u model.User) {
	c.Set(identityKey, u)
}
