package payment

import (
	"context"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
)

// Session is the provider-side checkout the buyer is redirected to.
type Session struct {
	ID  string
	URL string
}

// CreateSessionInput carries what the provider needs to open a one-time
// payment session.
type CreateSessionInput struct {
	AmountCents int64
	Description string
	Metadata    map[string]string
}

// CheckoutProvider opens hosted checkout sessions. The ledger only talks
// to the provider through this interface so tests can substitute a stub.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
}

type StripeService struct {
	successURL string
	cancelURL  string
}

func NewStripeService(secretKey, successURL, cancelURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (s *StripeService) CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Context: ctx,
		},
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(input.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(input.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cancelURL),
	}

	for key, value := range input.Metadata {
		params.AddMetadata(key, value)
	}

	checkoutSession, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:  checkoutSession.ID,
		URL: checkoutSession.URL,
	}, nil
}
