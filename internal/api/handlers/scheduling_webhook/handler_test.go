package scheduling_webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/normalizer"
	"github.com/m04kA/SMC-WebhookService/internal/usecase/process_scheduling_event"
	"github.com/m04kA/SMC-WebhookService/pkg/webhooksig"
)

const testSecret = "whsec_test_secret"

type fakeUsecase struct {
	result *process_scheduling_event.Result
	err    error

	got *domain.NormalizedEvent
}

func (f *fakeUsecase) Execute(_ context.Context, ev *domain.NormalizedEvent) (*process_scheduling_event.Result, error) {
	f.got = ev
	return f.result, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newHandler(uc *fakeUsecase) *Handler {
	return NewHandler(normalizer.New(), uc, nopLogger{}, testSecret, 5*time.Minute)
}

func signedRequest(t *testing.T, body []byte, secret string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/scheduling", bytes.NewReader(body))
	req.Header.Set(signatureHeader, webhooksig.Header(body, secret, time.Now().Unix()))
	return req
}

func validBody() []byte {
	return []byte(`{
		"id": "wh_001",
		"event": "invitee.created",
		"payload": {
			"uri": "https://api.calendly.com/scheduled_events/EVT1/invitees/INV1",
			"timezone": "Europe/Moscow",
			"scheduled_event": {
				"uri": "https://api.calendly.com/scheduled_events/EVT1",
				"status": "active",
				"start_time": "2026-03-15T10:00:00Z",
				"end_time": "2026-03-15T11:00:00Z"
			},
			"tracking": {"utm_content": "corr-1", "utm_campaign": "7:42:3"}
		}
	}`)
}

func TestHandle_ValidDelivery(t *testing.T) {
	uc := &fakeUsecase{result: &process_scheduling_event.Result{Outcome: process_scheduling_event.OutcomeApplied, BookingID: 5}}
	h := newHandler(uc)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, validBody(), testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "processed", resp.Status)
	assert.Equal(t, int64(5), resp.BookingID)

	require.NotNil(t, uc.got)
	assert.Equal(t, domain.KindInviteeCreated, uc.got.Kind)
	assert.Equal(t, "EVT1", uc.got.ExternalEventID)
}

func TestHandle_MissingSignature(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/scheduling", bytes.NewReader(validBody()))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_WrongSecret(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, validBody(), "whsec_other"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_TamperedBody(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	body := validBody()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/scheduling", bytes.NewReader(append(body, ' ')))
	req.Header.Set(signatureHeader, webhooksig.Header(body, testSecret, time.Now().Unix()))

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_ReplayOutsideToleranceWindow(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	body := validBody()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/scheduling", bytes.NewReader(body))
	stale := time.Now().Add(-time.Hour).Unix()
	req.Header.Set(signatureHeader, webhooksig.Header(body, testSecret, stale))

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_MalformedPayload(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	body := []byte(`{"event": "invitee.created"`)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, testSecret))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_ValidationFailure(t *testing.T) {
	uc := &fakeUsecase{}
	h := newHandler(uc)

	// invitee.created без ключа корреляции
	body := []byte(`{
		"event": "invitee.created",
		"payload": {
			"scheduled_event": {
				"uri": "https://api.calendly.com/scheduled_events/EVT1",
				"start_time": "2026-03-15T10:00:00Z",
				"end_time": "2026-03-15T11:00:00Z"
			},
			"tracking": {}
		}
	}`)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, testSecret))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_StoreFailureAsksForRetry(t *testing.T) {
	uc := &fakeUsecase{err: process_scheduling_event.ErrInternal}
	h := newHandler(uc)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, validBody(), testSecret))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandle_UnknownEventTypeAcknowledged(t *testing.T) {
	uc := &fakeUsecase{result: &process_scheduling_event.Result{Outcome: process_scheduling_event.OutcomeUnhandled}}
	h := newHandler(uc)

	body := []byte(`{"event": "routing_form_submission.created", "payload": {"scheduled_event": {"uri": ""}}}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body, testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhandled", resp.Status)
}
