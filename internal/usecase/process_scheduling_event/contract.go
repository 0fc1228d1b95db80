package process_scheduling_event

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/service/refunds"
)

// BookingStorage интерфейс хранилища бронирований
type BookingStorage interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByExternalEventID(ctx context.Context, externalEventID string) (*domain.Booking, error)
	UpdateSchedule(ctx context.Context, id int64, startTime, endTime *time.Time, inviteeID, clientTimezone string) error
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	MarkCancelled(ctx context.Context, id int64, reason string, actor domain.CancelActor) error
	SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

// DeliveryLedger интерфейс журнала идемпотентности доставок
type DeliveryLedger interface {
	HasProcessed(ctx context.Context, deliveryID string) (bool, error)
	RecordProcessed(ctx context.Context, rec *domain.WebhookDelivery) error
}

// RefundTrigger интерфейс компенсационного сервиса.
// Вызывается после коммита транзакции: внешний I/O внутри транзакции запрещен.
type RefundTrigger interface {
	Trigger(ctx context.Context, b *domain.Booking, cancelledBy domain.CancelActor) (*refunds.RefundResult, error)
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
