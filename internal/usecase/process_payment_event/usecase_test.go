package process_payment_event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	bookingstore "github.com/m04kA/SMC-WebhookService/internal/infra/storage/booking"
	deliverystore "github.com/m04kA/SMC-WebhookService/internal/infra/storage/delivery"
	"github.com/m04kA/SMC-WebhookService/pkg/ptr"
)

// --- fakes ---

type fakeBookings struct {
	byID map[int64]*domain.Booking
}

func newFakeBookings(list ...*domain.Booking) *fakeBookings {
	f := &fakeBookings{byID: map[int64]*domain.Booking{}}
	for _, b := range list {
		f.byID[b.ID] = b
	}
	return f
}

func (f *fakeBookings) GetByCorrelationKey(_ context.Context, correlationKey string) (*domain.Booking, error) {
	for _, b := range f.byID {
		if b.CorrelationKey == correlationKey {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingstore.ErrBookingNotFound
}

func (f *fakeBookings) GetByPaymentIntentID(_ context.Context, paymentIntentID string) (*domain.Booking, error) {
	for _, b := range f.byID {
		if b.PaymentIntentID != nil && *b.PaymentIntentID == paymentIntentID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingstore.ErrBookingNotFound
}

func (f *fakeBookings) MarkCancelled(_ context.Context, id int64, reason string, actor domain.CancelActor) error {
	b, ok := f.byID[id]
	if !ok {
		return bookingstore.ErrBookingNotFound
	}
	now := time.Now()
	b.Status = domain.StatusCancelled
	b.CancellationReason = &reason
	b.CancelledBy = &actor
	b.CancelledAt = &now
	return nil
}

func (f *fakeBookings) SetPayment(_ context.Context, id int64, status domain.PaymentStatus, amountMinor int64, currency, paymentSessionID, paymentIntentID string) error {
	b, ok := f.byID[id]
	if !ok {
		return bookingstore.ErrBookingNotFound
	}
	b.PaymentStatus = status
	b.AmountMinor = amountMinor
	if currency != "" {
		b.Currency = currency
	}
	if paymentSessionID != "" {
		b.PaymentSessionID = &paymentSessionID
	}
	if paymentIntentID != "" {
		b.PaymentIntentID = &paymentIntentID
	}
	return nil
}

func (f *fakeBookings) SetPaymentStatus(_ context.Context, id int64, status domain.PaymentStatus) error {
	b, ok := f.byID[id]
	if !ok {
		return bookingstore.ErrBookingNotFound
	}
	b.PaymentStatus = status
	return nil
}

type fakeLedger struct {
	records map[string]domain.DeliveryOutcome
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[string]domain.DeliveryOutcome{}}
}

func (f *fakeLedger) HasProcessed(_ context.Context, deliveryID string) (bool, error) {
	return f.records[deliveryID] == domain.OutcomeSuccess, nil
}

func (f *fakeLedger) RecordProcessed(_ context.Context, rec *domain.WebhookDelivery) error {
	if f.records[rec.DeliveryID] == domain.OutcomeSuccess {
		return deliverystore.ErrAlreadyRecorded
	}
	f.records[rec.DeliveryID] = rec.Outcome
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeMetrics struct {
	events     map[string]int
	duplicates int
	unhandled  int
	orphaned   int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{events: map[string]int{}}
}

func (f *fakeMetrics) RecordWebhookEvent(provider, kind, outcome string) {
	f.events[kind+"/"+outcome]++
}
func (f *fakeMetrics) RecordWebhookDuration(string, string, float64) {}
func (f *fakeMetrics) RecordDuplicateDelivery(string)                { f.duplicates++ }
func (f *fakeMetrics) RecordUnhandledEvent(string, string)           { f.unhandled++ }
func (f *fakeMetrics) RecordOrphanedEvent(string, string)            { f.orphaned++ }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:              1,
		ExternalEventID: "EVT123",
		CorrelationKey:  "corr-abc",
		BuilderID:       7,
		ClientID:        42,
		Status:          domain.StatusConfirmed,
		PaymentStatus:   domain.PaymentUnpaid,
	}
}

func completedEvent(deliveryID string) *domain.NormalizedEvent {
	return &domain.NormalizedEvent{
		Kind:             domain.KindPaymentCompleted,
		Provider:         domain.ProviderPayment,
		DeliveryID:       deliveryID,
		RawEventType:     "checkout.session.completed",
		CorrelationKey:   "corr-abc",
		AmountMinor:      150000,
		Currency:         "rub",
		PaymentSessionID: "cs_123",
		PaymentIntentID:  "pi_777",
	}
}

func newUsecase(bookings *fakeBookings) (*Usecase, *fakeLedger, *fakeMetrics) {
	ledger := newFakeLedger()
	metrics := newFakeMetrics()
	return New(bookings, ledger, fakeTxManager{}, metrics, nopLogger{}), ledger, metrics
}

// --- tests ---

func TestExecute_PaymentCompleted_MarksPaid(t *testing.T) {
	b := pendingBooking()
	bookings := newFakeBookings(b)
	uc, ledger, _ := newUsecase(bookings)

	result, err := uc.Execute(context.Background(), completedEvent("d1"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, int64(1), result.BookingID)
	assert.Equal(t, domain.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, int64(150000), b.AmountMinor)
	assert.Equal(t, "rub", b.Currency)
	require.NotNil(t, b.PaymentIntentID)
	assert.Equal(t, "pi_777", *b.PaymentIntentID)
	assert.Equal(t, domain.OutcomeSuccess, ledger.records["d1"])
}

func TestExecute_PaymentCompleted_OrphanAcknowledged(t *testing.T) {
	uc, ledger, metrics := newUsecase(newFakeBookings())

	result, err := uc.Execute(context.Background(), completedEvent("d1"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeOrphaned, result.Outcome)
	assert.Equal(t, 1, metrics.orphaned)
	assert.Equal(t, domain.OutcomeSuccess, ledger.records["d1"])
}

func TestExecute_PaymentCompleted_DoesNotDowngradeRefunded(t *testing.T) {
	b := pendingBooking()
	b.Status = domain.StatusCancelled
	b.PaymentStatus = domain.PaymentRefunded
	uc, _, _ := newUsecase(newFakeBookings(b))

	result, err := uc.Execute(context.Background(), completedEvent("d1"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeIgnored, result.Outcome)
	assert.Equal(t, domain.PaymentRefunded, b.PaymentStatus)
}

func TestExecute_PaymentCompleted_DuplicateDelivery(t *testing.T) {
	b := pendingBooking()
	uc, _, metrics := newUsecase(newFakeBookings(b))

	_, err := uc.Execute(context.Background(), completedEvent("d1"))
	require.NoError(t, err)

	result, err := uc.Execute(context.Background(), completedEvent("d1"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuplicate, result.Outcome)
	assert.Equal(t, 1, metrics.duplicates)
}

func TestExecute_PaymentFailed_ByIntentID(t *testing.T) {
	b := pendingBooking()
	b.PaymentIntentID = ptr.Ptr("pi_777")
	uc, _, _ := newUsecase(newFakeBookings(b))

	ev := &domain.NormalizedEvent{
		Kind:            domain.KindPaymentFailed,
		Provider:        domain.ProviderPayment,
		DeliveryID:      "d1",
		RawEventType:    "payment_intent.payment_failed",
		PaymentIntentID: "pi_777",
		FailureReason:   "card declined",
	}

	result, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, domain.PaymentFailed, b.PaymentStatus)
}

func TestExecute_PaymentFailed_FallsBackToCorrelationKey(t *testing.T) {
	b := pendingBooking()
	uc, _, _ := newUsecase(newFakeBookings(b))

	ev := &domain.NormalizedEvent{
		Kind:            domain.KindPaymentFailed,
		Provider:        domain.ProviderPayment,
		DeliveryID:      "d1",
		RawEventType:    "payment_intent.payment_failed",
		PaymentIntentID: "pi_unknown",
		CorrelationKey:  "corr-abc",
	}

	result, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, domain.PaymentFailed, b.PaymentStatus)
}

func TestExecute_PaymentFailed_StaleFailureAfterSuccessIgnored(t *testing.T) {
	b := pendingBooking()
	b.PaymentIntentID = ptr.Ptr("pi_777")
	b.PaymentStatus = domain.PaymentPaid
	uc, _, _ := newUsecase(newFakeBookings(b))

	ev := &domain.NormalizedEvent{
		Kind:            domain.KindPaymentFailed,
		Provider:        domain.ProviderPayment,
		DeliveryID:      "d1",
		RawEventType:    "payment_intent.payment_failed",
		PaymentIntentID: "pi_777",
	}

	result, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeIgnored, result.Outcome)
	assert.Equal(t, domain.PaymentPaid, b.PaymentStatus)
}

func TestExecute_PaymentRefunded_CancelledAndPaid(t *testing.T) {
	b := pendingBooking()
	b.PaymentIntentID = ptr.Ptr("pi_777")
	b.Status = domain.StatusCancelled
	b.PaymentStatus = domain.PaymentPaid
	uc, _, _ := newUsecase(newFakeBookings(b))

	ev := &domain.NormalizedEvent{
		Kind:            domain.KindPaymentRefunded,
		Provider:        domain.ProviderPayment,
		DeliveryID:      "d1",
		RawEventType:    "charge.refunded",
		PaymentIntentID: "pi_777",
		AmountMinor:     150000,
	}

	result, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, domain.PaymentRefunded, b.PaymentStatus)
}

func TestExecute_PaymentRefunded_ActiveBookingGetsCancelledBySystem(t *testing.T) {
	b := pendingBooking()
	b.PaymentIntentID = ptr.Ptr("pi_777")
	b.PaymentStatus = domain.PaymentPaid
	uc, _, _ := newUsecase(newFakeBookings(b))

	ev := &domain.NormalizedEvent{
		Kind:            domain.KindPaymentRefunded,
		Provider:        domain.ProviderPayment,
		DeliveryID:      "d1",
		RawEventType:    "charge.refunded",
		PaymentIntentID: "pi_777",
	}

	result, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, domain.StatusCancelled, b.Status)
	assert.Equal(t, domain.PaymentRefunded, b.PaymentStatus)
	require.NotNil(t, b.CancelledBy)
	assert.Equal(t, domain.CancelledBySystem, *b.CancelledBy)
}

func TestExecute_PaymentRefunded_UnpaidIgnored(t *testing.T) {
	b := pendingBooking()
	b.PaymentIntentID = ptr.Ptr("pi_777")
	uc, _, _ := newUsecase(newFakeBookings(b))

	ev := &domain.NormalizedEvent{
		Kind:            domain.KindPaymentRefunded,
		Provider:        domain.ProviderPayment,
		DeliveryID:      "d1",
		RawEventType:    "charge.refunded",
		PaymentIntentID: "pi_777",
	}

	result, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeIgnored, result.Outcome)
	assert.Equal(t, domain.PaymentUnpaid, b.PaymentStatus)
}

func TestExecute_UnhandledKind_Acknowledged(t *testing.T) {
	uc, _, metrics := newUsecase(newFakeBookings())

	ev := &domain.NormalizedEvent{
		Kind:         domain.KindUnhandled,
		Provider:     domain.ProviderPayment,
		DeliveryID:   "d1",
		RawEventType: "customer.subscription.updated",
	}

	result, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, OutcomeUnhandled, result.Outcome)
	assert.Equal(t, 1, metrics.unhandled)
}

func TestExecute_WrongProvider_Rejected(t *testing.T) {
	uc, _, _ := newUsecase(newFakeBookings())

	ev := completedEvent("d1")
	ev.Provider = domain.ProviderScheduling

	_, err := uc.Execute(context.Background(), ev)
	assert.ErrorIs(t, err, ErrValidation)
}
