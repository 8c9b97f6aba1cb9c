package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/audioshop/audioshop-api/internal/apperr"
	"github.com/audioshop/audioshop-api/internal/middleware"
	"github.com/audioshop/audioshop-api/internal/payment"
	"github.com/audioshop/audioshop-api/internal/queue"
)

// CheckoutHandler creates payment sessions and resolves completed ones. The
// publisher is best-effort: an unreachable broker never fails a checkout.
type CheckoutHandler struct {
	Payments  payment.Provider
	Publisher EventPublisher
}

func NewCheckoutHandler(payments payment.Provider, publisher EventPublisher) *CheckoutHandler {
	return &CheckoutHandler{Payments: payments, Publisher: publisher}
}

type checkoutReq struct {
	Products []payment.LineItem `json:"products"`
}

// CreateSession opens a checkout session for the authenticated user's cart
// and returns the provider's redirect URL.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	user, ok := middleware.Identity(c)
	if !ok {
		return apperr.Unauthenticated("Authentication required")
	}

	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if len(req.Products) == 0 {
		return apperr.BadRequest("Cart is empty")
	}

	ctx := c.Request().Context()
	url, sessionID, err := h.Payments.CreateSession(ctx, req.Products, user.Email)
	if err != nil {
		return err
	}

	if h.Publisher != nil {
		var totalCents int64
		for _, item := range req.Products {
			totalCents += int64(math.Round(item.Price*100)) * item.Amount
		}
		// Fire-and-forget; the publisher logs its own failures.
		_ = h.Publisher.PublishCheckoutStarted(ctx, queue.CheckoutStartedEvent{
			SessionID:  sessionID,
			UserID:     user.ID.Hex(),
			Email:      user.Email,
			ItemCount:  len(req.Products),
			TotalCents: totalCents,
			StartedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// Success resolves a completed checkout session into its customer and
// invoice for the confirmation page.
func (h *CheckoutHandler) Success(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return apperr.BadRequest("session_id is required")
	}
	result, err := h.Payments.RetrieveSession(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"customer": result.Customer,
		"invoice":  result.Invoice,
	})
}
