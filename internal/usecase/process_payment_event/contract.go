package process_payment_event

import (
	"context"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

// BookingStorage интерфейс хранилища бронирований
type BookingStorage interface {
	GetByCorrelationKey(ctx context.Context, correlationKey string) (*domain.Booking, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Booking, error)
	MarkCancelled(ctx context.Context, id int64, reason string, actor domain.CancelActor) error
	SetPayment(ctx context.Context, id int64, status domain.PaymentStatus, amountMinor int64, currency, paymentSessionID, paymentIntentID string) error
	SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

// DeliveryLedger интерфейс журнала идемпотентности доставок
type DeliveryLedger interface {
	HasProcessed(ctx context.Context, deliveryID string) (bool, error)
	RecordProcessed(ctx context.Context, rec *domain.WebhookDelivery) error
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics интерфейс учета webhook-событий
type Metrics interface {
	RecordWebhookEvent(provider, kind, outcome string)
	RecordWebhookDuration(provider, kind string, seconds float64)
	RecordDuplicateDelivery(provider string)
	RecordUnhandledEvent(provider, eventType string)
	RecordOrphanedEvent(provider, kind string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
