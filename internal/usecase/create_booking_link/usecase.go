package create_booking_link

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/integrations/stripepay"
)

// Usecase выпускает связанную пару ссылок: одноразовую scheduling-ссылку
// и checkout-сессию. Обе несут один ключ корреляции, по которому webhook'и
// двух провайдеров сойдутся в одном бронировании.
type Usecase struct {
	scheduler Scheduler
	payments  Payments
	logger    Logger

	successURL string
	cancelURL  string
}

func New(scheduler Scheduler, payments Payments, logger Logger, successURL, cancelURL string) *Usecase {
	return &Usecase{
		scheduler:  scheduler,
		payments:   payments,
		logger:     logger,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// Execute создает пару ссылок для клиента.
//
// Шаги:
//  1. Валидация запроса.
//  2. Генерация ключа корреляции.
//  3. Одноразовая scheduling-ссылка с tracking-параметрами.
//  4. Checkout-сессия с ключом корреляции в client_reference_id.
func (uc *Usecase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	correlationKey := uuid.NewString()

	link, err := uc.scheduler.CreateSchedulingLink(ctx, req.EventTypeURI)
	if err != nil {
		uc.logger.Error("Execute: scheduling link for event type %s: %v", req.EventTypeURI, err)
		return nil, fmt.Errorf("%w: %v", ErrSchedulingLinkFailed, err)
	}

	schedulingURL, err := withTracking(link.BookingURL, correlationKey, req)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed booking url %q: %v", ErrSchedulingLinkFailed, link.BookingURL, err)
	}

	cs, err := uc.payments.CreateCheckoutSession(ctx, stripepay.CheckoutParams{
		CorrelationKey: correlationKey,
		ProductName:    req.ProductName,
		AmountMinor:    req.AmountMinor,
		Currency:       req.Currency,
		SuccessURL:     uc.successURL,
		CancelURL:      uc.cancelURL,
	})
	if err != nil {
		uc.logger.Error("Execute: checkout session for correlation_key=%s: %v", correlationKey, err)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	uc.logger.Info("Execute: booking link issued, correlation_key=%s builder=%d client=%d session_type=%d",
		correlationKey, req.BuilderID, req.ClientID, req.SessionTypeID)

	return &Response{
		CorrelationKey:    correlationKey,
		SchedulingURL:     schedulingURL,
		CheckoutURL:       cs.URL,
		CheckoutSessionID: cs.ID,
	}, nil
}

// withTracking добавляет к booking url tracking-параметры, которые
// scheduling-провайдер вернет в webhook-событиях: utm_content несет ключ
// корреляции, utm_campaign несет идентификаторы участников
func withTracking(bookingURL, correlationKey string, req *Request) (string, error) {
	u, err := url.Parse(bookingURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("utm_content", correlationKey)
	q.Set("utm_campaign", fmt.Sprintf(domain.TrackingCampaignFormat, req.BuilderID, req.ClientID, req.SessionTypeID))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
