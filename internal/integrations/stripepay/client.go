// Package stripepay обертка над SDK платежного провайдера.
// Все вызовы SDK локализованы здесь, state machine работает
// только с узкими интерфейсами.
package stripepay

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платежного провайдера
type Client struct {
	log Logger
}

// NewClient создает новый экземпляр клиента.
// API-ключ устанавливается глобально (stripe.Key) при старте сервиса.
func NewClient(log Logger) *Client {
	return &Client{log: log}
}

// CreateCheckoutSession создает checkout-сессию с ключом корреляции
// в client_reference_id
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		ClientReferenceID: stripe.String(p.CorrelationKey),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ProductName),
					},
				},
			},
		},
	}
	params.Context = ctx

	cs, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: correlation_key=%s: %v", ErrCheckoutFailed, p.CorrelationKey, err)
	}

	c.log.Info("Created checkout session id=%s for correlation_key=%s", cs.ID, p.CorrelationKey)

	return &CheckoutSession{
		ID:  cs.ID,
		URL: cs.URL,
	}, nil
}

// CreateRefund создает возврат по payment intent.
// amountMinor = 0 означает полный возврат.
func (c *Client) CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	if amountMinor > 0 {
		params.Amount = stripe.Int64(amountMinor)
	}
	params.Context = ctx

	ref, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: payment_intent=%s: %v", ErrRefundFailed, paymentIntentID, err)
	}

	c.log.Info("Created refund id=%s for payment_intent=%s amount=%d", ref.ID, paymentIntentID, ref.Amount)

	return &Refund{
		ID:          ref.ID,
		Status:      string(ref.Status),
		AmountMinor: ref.Amount,
	}, nil
}
