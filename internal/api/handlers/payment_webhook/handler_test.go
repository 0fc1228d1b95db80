package payment_webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/normalizer"
	"github.com/m04kA/SMC-WebhookService/internal/usecase/process_payment_event"
)

const testSecret = "whsec_test_secret"

type fakeUsecase struct {
	result *process_payment_event.Result
	err    error

	got *domain.NormalizedEvent
}

func (f *fakeUsecase) Execute(_ context.Context, ev *domain.NormalizedEvent) (*process_payment_event.Result, error) {
	f.got = ev
	return f.result, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newHandler(uc *fakeUsecase) *Handler {
	return NewHandler(normalizer.New(), uc, nopLogger{}, testSecret)
}

// stripeSignature подпись в формате провайдера: "t=<unix>,v1=<hmac>"
// от строки "<unix>.<payload>"
func stripeSignature(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func signedRequest(t *testing.T, body []byte, secret string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set(signatureHeader, stripeSignature(body, secret, time.Now()))
	return req
}

func checkoutCompletedBody() []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_001",
		"type": "checkout.session.completed",
		"api_version": %q,
		"data": {
			"object": {
				"id": "cs_123",
				"client_reference_id": "corr-1",
				"amount_total": 150000,
				"currency": "rub",
				"payment_intent": {"id": "pi_777"}
			}
		}
	}`, stripe.APIVersion))
}

func TestHandle_ValidDelivery(t *testing.T) {
	uc := &fakeUsecase{result: &process_payment_event.Result{Outcome: process_payment_event.OutcomeApplied, BookingID: 9}}
	h := newHandler(uc)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, checkoutCompletedBody(), testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processed", resp.Status)
	assert.Equal(t, int64(9), resp.BookingID)

	require.NotNil(t, uc.got)
	assert.Equal(t, domain.KindPaymentCompleted, uc.got.Kind)
	assert.Equal(t, "corr-1", uc.got.CorrelationKey)
	assert.Equal(t, "evt_001", uc.got.DeliveryID)
}

func TestHandle_MissingSignature(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(checkoutCompletedBody()))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_WrongSecret(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, checkoutCompletedBody(), "whsec_other"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_StaleSignature(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	body := checkoutCompletedBody()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set(signatureHeader, stripeSignature(body, testSecret, time.Now().Add(-time.Hour)))

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_ValidationFailure(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	// checkout-сессия без client_reference_id
	body := []byte(fmt.Sprintf(`{
		"id": "evt_002",
		"type": "checkout.session.completed",
		"api_version": %q,
		"data": {"object": {"id": "cs_123"}}
	}`, stripe.APIVersion))

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, testSecret))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_StoreFailureAsksForRetry(t *testing.T) {
	uc := &fakeUsecase{err: process_payment_event.ErrInternal}
	h := newHandler(uc)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, checkoutCompletedBody(), testSecret))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandle_UnknownEventTypeAcknowledged(t *testing.T) {
	uc := &fakeUsecase{result: &process_payment_event.Result{Outcome: process_payment_event.OutcomeUnhandled}}
	h := newHandler(uc)

	body := []byte(fmt.Sprintf(`{
		"id": "evt_003",
		"type": "customer.subscription.updated",
		"api_version": %q,
		"data": {"object": {}}
	}`, stripe.APIVersion))

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhandled", resp.Status)
}
