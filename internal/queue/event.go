// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// CheckoutStartedEvent is published when a payment session is created. It
// carries enough information for downstream consumers to log or trigger
// order handling without querying the primary database.
type CheckoutStartedEvent struct {
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	ItemCount  int    `json:"item_count"`
	TotalCents int64  `json:"total_cents"`
	StartedAt  string `json:"started_at"`
}
