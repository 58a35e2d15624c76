package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrInvalidAmount = errors.New("price must be a positive number")

// Gateway creates payment intents with an external processor and returns
// the secret the client confirms the payment with.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64) (clientSecret string, err error)
}

// ToMinorUnits converts a decimal price to cents, truncating the rest.
func ToMinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, ErrInvalidAmount
	}
	amount := int64(price * 100)
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

type StripeGateway struct {
	api      *client.API
	currency string
}

// NewStripeGateway builds a gateway keyed by secretKey. backends may be nil
// to talk to the live API.
func NewStripeGateway(secretKey, currency string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api, currency: currency}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}
