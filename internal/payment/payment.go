// Package payment wraps the third-party checkout provider. The rest of the
// application only sees the Provider interface; Stripe specifics stay here.
package payment

import "context"

// LineItem is one purchasable position in a checkout session.
type LineItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Amount      int64   `json:"amount"`
}

// SessionResult is the provider-side state of a completed (or pending)
// checkout session, including the generated invoice and customer record.
type SessionResult struct {
	Customer any `json:"customer"`
	Invoice  any `json:"invoice"`
}

// Provider creates and retrieves checkout sessions.
type Provider interface {
	// CreateSession opens a checkout session for the given items billed to
	// customerEmail and returns the redirect URL.
	CreateSession(ctx context.Context, items []LineItem, customerEmail string) (url, sessionID string, err error)
	// RetrieveSession loads a session with its invoice and customer.
	RetrieveSession(ctx context.Context, sessionID string) (SessionResult, error)
}
