package bookings

import (
	"context"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/service/refunds"
)

// BookingStorage интерфейс хранилища бронирований
type BookingStorage interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetBySessionType(ctx context.Context, sessionTypeID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	MarkCancelled(ctx context.Context, id int64, reason string, actor domain.CancelActor) error
	SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

// RefundTrigger интерфейс компенсационного сервиса
type RefundTrigger interface {
	Trigger(ctx context.Context, b *domain.Booking, cancelledBy domain.CancelActor) (*refunds.RefundResult, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
