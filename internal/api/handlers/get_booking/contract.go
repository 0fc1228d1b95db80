package get_booking

import (
	"context"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

// BookingService интерфейс чтения бронирований
type BookingService interface {
	GetByID(ctx context.Context, id, userID int64) (*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
