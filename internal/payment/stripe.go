package payment

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
)

// StripeProvider implements Provider against the Stripe API. Sessions are
// payment-mode with invoice creation enabled so /api/success can hand the
// invoice back to the frontend.
type StripeProvider struct {
	successURL string
	cancelURL  string
}

// NewStripeProvider sets the global API key and the redirect URLs derived
// from the client origin.
func NewStripeProvider(apiKey, clientURL string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{
		successURL: clientURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  clientURL + "/cancel",
	}
}

func (p *StripeProvider) CreateSession(ctx context.Context, items []LineItem, customerEmail string) (string, string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(int64(item.Price * 100)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(item.Name),
					Description: stripe.String(item.Description),
					Images:      stripe.StringSlice([]string{item.Image}),
				},
			},
			Quantity: stripe.Int64(item.Amount),
		})
	}

	params := &stripe.CheckoutSessionParams{
		LineItems:     lineItems,
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(p.successURL),
		CancelURL:     stripe.String(p.cancelURL),
		CustomerEmail: stripe.String(customerEmail),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"HU"}),
		},
		BillingAddressCollection: stripe.String("required"),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		InvoiceCreation: &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return s.URL, s.ID, nil
}

func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (SessionResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("invoice")

	s, err := session.Get(sessionID, params)
	if err != nil {
		return SessionResult{}, err
	}

	var cust any
	if s.Customer != nil {
		custParams := &stripe.CustomerParams{}
		custParams.Context = ctx
		if cust, err = customer.Get(s.Customer.ID, custParams); err != nil {
			return SessionResult{}, err
		}
	}
	return SessionResult{Customer: cust, Invoice: s.Invoice}, nil
}
