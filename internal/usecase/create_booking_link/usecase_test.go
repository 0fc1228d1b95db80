package create_booking_link

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WebhookService/internal/integrations/calendly"
	"github.com/m04kA/SMC-WebhookService/internal/integrations/stripepay"
)

type fakeScheduler struct {
	link *calendly.SchedulingLink
	err  error

	gotEventType string
}

func (f *fakeScheduler) CreateSchedulingLink(_ context.Context, eventTypeURI string) (*calendly.SchedulingLink, error) {
	f.gotEventType = eventTypeURI
	return f.link, f.err
}

type fakePayments struct {
	session *stripepay.CheckoutSession
	err     error

	gotParams stripepay.CheckoutParams
}

func (f *fakePayments) CreateCheckoutSession(_ context.Context, p stripepay.CheckoutParams) (*stripepay.CheckoutSession, error) {
	f.gotParams = p
	return f.session, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func validRequest() *Request {
	return &Request{
		BuilderID:     7,
		ClientID:      42,
		SessionTypeID: 3,
		EventTypeURI:  "https://api.calendly.com/event_types/ET1",
		ProductName:   "Консультация 60 минут",
		AmountMinor:   150000,
		Currency:      "rub",
	}
}

func TestExecute_IssuesLinkedPair(t *testing.T) {
	scheduler := &fakeScheduler{link: &calendly.SchedulingLink{BookingURL: "https://calendly.com/d/abc-xyz"}}
	payments := &fakePayments{session: &stripepay.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/pay/cs_123"}}
	uc := New(scheduler, payments, nopLogger{}, "https://app.example.com/success", "https://app.example.com/cancel")

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.CorrelationKey)
	assert.Equal(t, "cs_123", resp.CheckoutSessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", resp.CheckoutURL)

	// Один и тот же ключ корреляции в обеих ссылках
	assert.Equal(t, resp.CorrelationKey, payments.gotParams.CorrelationKey)

	u, err := url.Parse(resp.SchedulingURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, resp.CorrelationKey, q.Get("utm_content"))
	assert.Equal(t, "7:42:3", q.Get("utm_campaign"))

	assert.Equal(t, "https://api.calendly.com/event_types/ET1", scheduler.gotEventType)
	assert.Equal(t, int64(150000), payments.gotParams.AmountMinor)
	assert.Equal(t, "https://app.example.com/success", payments.gotParams.SuccessURL)
}

func TestExecute_UniqueCorrelationKeys(t *testing.T) {
	scheduler := &fakeScheduler{link: &calendly.SchedulingLink{BookingURL: "https://calendly.com/d/abc-xyz"}}
	payments := &fakePayments{session: &stripepay.CheckoutSession{ID: "cs_123"}}
	uc := New(scheduler, payments, nopLogger{}, "https://s", "https://c")

	first, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.CorrelationKey, second.CorrelationKey)
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := New(&fakeScheduler{}, &fakePayments{}, nopLogger{}, "https://s", "https://c")

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"missing builder id", func(r *Request) { r.BuilderID = 0 }},
		{"missing event type uri", func(r *Request) { r.EventTypeURI = "" }},
		{"not a url", func(r *Request) { r.EventTypeURI = "not-a-url" }},
		{"zero amount", func(r *Request) { r.AmountMinor = 0 }},
		{"bad currency", func(r *Request) { r.Currency = "ruble" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestExecute_SchedulerFailure(t *testing.T) {
	scheduler := &fakeScheduler{err: errors.New("provider down")}
	payments := &fakePayments{}
	uc := New(scheduler, payments, nopLogger{}, "https://s", "https://c")

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSchedulingLinkFailed)
	// Checkout-сессия не создается при недоступном scheduling-провайдере
	assert.Empty(t, payments.gotParams.CorrelationKey)
}

func TestExecute_CheckoutFailure(t *testing.T) {
	scheduler := &fakeScheduler{link: &calendly.SchedulingLink{BookingURL: "https://calendly.com/d/abc-xyz"}}
	payments := &fakePayments{err: errors.New("provider down")}
	uc := New(scheduler, payments, nopLogger{}, "https://s", "https://c")

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCheckoutFailed)
}
