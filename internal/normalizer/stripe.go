package normalizer

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

// Типы событий платежного провайдера, которые мы обрабатываем
const (
	stripeCheckoutCompleted   = "checkout.session.completed"
	stripePaymentIntentFailed = "payment_intent.payment_failed"
	stripeChargeRefunded      = "charge.refunded"
)

// NormalizePayment нормализует проверенное событие платежного провайдера.
// Подпись уже проверена webhook.ConstructEvent на сыром теле.
func (n *Normalizer) NormalizePayment(event stripe.Event) (*domain.NormalizedEvent, error) {
	ev := &domain.NormalizedEvent{
		Provider:     domain.ProviderPayment,
		DeliveryID:   event.ID,
		RawEventType: string(event.Type),
	}

	switch string(event.Type) {
	case stripeCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("%w: payment - decode checkout session: %v", ErrMalformedPayload, err)
		}

		// client_reference_id несет ключ корреляции бронирования;
		// без него платеж невозможно привязать автоматически
		if cs.ClientReferenceID == "" {
			return nil, fmt.Errorf("%w: %s - missing client_reference_id", ErrValidation, event.Type)
		}

		ev.Kind = domain.KindPaymentCompleted
		ev.CorrelationKey = cs.ClientReferenceID
		ev.AmountMinor = cs.AmountTotal
		ev.Currency = string(cs.Currency)
		ev.PaymentSessionID = cs.ID
		if cs.PaymentIntent != nil {
			ev.PaymentIntentID = cs.PaymentIntent.ID
		}

	case stripePaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: payment - decode payment intent: %v", ErrMalformedPayload, err)
		}

		if pi.ID == "" {
			return nil, fmt.Errorf("%w: %s - missing payment intent id", ErrValidation, event.Type)
		}

		ev.Kind = domain.KindPaymentFailed
		ev.PaymentIntentID = pi.ID
		ev.CorrelationKey = pi.Metadata["booking_ref"]
		if pi.LastPaymentError != nil {
			ev.FailureReason = pi.LastPaymentError.Msg
		}

	case stripeChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("%w: payment - decode charge: %v", ErrMalformedPayload, err)
		}

		if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
			return nil, fmt.Errorf("%w: %s - missing payment intent reference", ErrValidation, event.Type)
		}

		ev.Kind = domain.KindPaymentRefunded
		ev.PaymentIntentID = ch.PaymentIntent.ID
		ev.AmountMinor = ch.AmountRefunded
		ev.Currency = string(ch.Currency)

	default:
		ev.Kind = domain.KindUnhandled
	}

	return ev, nil
}
