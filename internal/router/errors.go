package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/audioshop/audioshop-api/internal/apperr"
)

// HTTPErrorHandler translates the errors handlers return into the single
// JSON error envelope the API exposes: {"error": message}. Domain errors
// carry their own status, validation and cast failures become 400, token
// verification failures become 401, and everything unrecognized is a 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := err.Error()

	var appErr *apperr.Error
	var validationErrs validator.ValidationErrors
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		message = appErr.Message
	case errors.As(err, &validationErrs):
		status = http.StatusBadRequest
		message = validationMessage(validationErrs[0])
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrSignatureInvalid):
		status = http.StatusUnauthorized
		message = "Invalid or expired token"
	case mongo.IsDuplicateKeyError(err):
		status = http.StatusBadRequest
		message = "Duplicate value"
	case errors.As(err, &echoErr):
		status = echoErr.Code
		message = fmt.Sprintf("%v", echoErr.Message)
	}

	if status >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": message})
}

// validationMessage renders the first failed field constraint in the same
// phrasing clients already parse.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Email is invalid"
	case "strongpassword":
		return "Password is invalid"
	case "eqfield":
		return "Password confirmation is invalid"
	case "max":
		return fmt.Sprintf("%s can be max. %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s has failed for value '%v'", fe.Field(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
