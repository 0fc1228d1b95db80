package domain

import "time"

// Provider источник webhook-события
type Provider string

const (
	ProviderScheduling Provider = "scheduling"
	ProviderPayment    Provider = "payment"
)

// EventKind внутренний словарь событий, на который нормализуются
// provider-специфичные типы событий
type EventKind string

const (
	KindInviteeCreated     EventKind = "invitee_created"
	KindInviteeCanceled    EventKind = "invitee_canceled"
	KindInviteeRescheduled EventKind = "invitee_rescheduled"
	KindPaymentCompleted   EventKind = "payment_completed"
	KindPaymentFailed      EventKind = "payment_failed"
	KindPaymentRefunded    EventKind = "payment_refunded"

	// KindUnhandled маркер незнакомого типа события: подтверждаем доставку,
	// но ничего не делаем (провайдеры со временем добавляют новые типы)
	KindUnhandled EventKind = "unhandled"
)

// NormalizedEvent нормализованное webhook-событие (не персистится)
type NormalizedEvent struct {
	Kind     EventKind
	Provider Provider

	// DeliveryID идентификатор доставки, присвоенный провайдером
	// (ключ журнала идемпотентности)
	DeliveryID string

	// RawEventType исходный тип события провайдера (для логов и метрик)
	RawEventType string

	// ExternalEventID идентификатор scheduling-события у провайдера
	ExternalEventID   string
	ExternalInviteeID string

	// CorrelationKey ключ корреляции из tracking-метаданных
	// (utm_content у scheduling-провайдера, client_reference_id у платежного)
	CorrelationKey string

	BuilderID     int64
	ClientID      int64
	SessionTypeID int64

	StartTime *time.Time
	EndTime   *time.Time

	// ScheduledEventActive статус "active" у scheduled event провайдера,
	// подтверждает бронирование на стороне scheduling
	ScheduledEventActive bool

	ClientTimezone string

	CancellationReason string
	CancelledBy        CancelActor

	// Платежные поля
	AmountMinor      int64
	Currency         string
	PaymentSessionID string
	PaymentIntentID  string
	FailureReason    string
}
