package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/audioshop/audioshop-api/internal/apperr"
	"github.com/audioshop/audioshop-api/internal/config"
	"github.com/audioshop/audioshop-api/internal/middleware"
	"github.com/audioshop/audioshop-api/internal/repository"
	"github.com/audioshop/audioshop-api/internal/utils"
)

// refreshCookieName is the HTTP-only cookie carrying the refresh token.
const refreshCookieName = "refreshToken"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type signupReq struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type signinReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates a user account. The confirm-password field exists only on
// the request; the response carries the saved user without any password
// material.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Users.Create(c.Request().Context(), req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperr.BadRequest("Email already exists")
		}
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": user})
}

// Signin verifies credentials and issues the token pair: the access token in
// the response body, the refresh token as an HTTP-only secure cookie. The
// refresh token is persisted on the user record, replacing any prior value,
// so at most one refresh token per user is ever valid.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return apperr.BadRequest("Email or password is empty")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.BadRequest("Email or password is invalid")
		}
		return err
	}
	if !utils.VerifyPassword(user.Password, req.Password) {
		return apperr.BadRequest("Email or password is invalid")
	}

	access, err := utils.NewToken(h.Cfg.JWTAccessSecret, user.ID.Hex(), user.Roles,
		time.Duration(h.Cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		return err
	}
	refresh, err := utils.NewToken(h.Cfg.JWTRefreshSecret, user.ID.Hex(), user.Roles,
		time.Duration(h.Cfg.RefreshTTLDays)*24*time.Hour)
	if err != nil {
		return err
	}
	if err := h.Users.SetRefreshToken(ctx, user.ID, refresh.Token); err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    refresh.Token,
		Expires:  refresh.Exp,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{"jwt": access.Token})
}

// Signout clears the stored refresh token and expires the cookie.
func (h *AuthHandler) Signout(c echo.Context) error {
	user, ok := middleware.Identity(c)
	if !ok {
		return apperr.Unauthenticated("Authentication required")
	}
	if err := h.Users.ClearRefreshToken(c.Request().Context(), user.ID); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}

// Refresh rotates the access token. The presented refresh cookie must match
// a stored token exactly; its signature and subject are then verified
// against the user it resolved to. The refresh token itself stays in place.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return apperr.Unauthenticated("Authentication required")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByRefreshToken(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}

	claims, err := utils.ParseToken(h.Cfg.JWTRefreshSecret, cookie.Value)
	if err != nil {
		return err
	}
	if claims.Subject != user.ID.Hex() {
		return apperr.Forbidden("Not authorized")
	}

	access, err := utils.NewToken(h.Cfg.JWTAccessSecret, user.ID.Hex(), user.Roles,
		time.Duration(h.Cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"jwt": access.Token})
}
