package get_session_bookings

import (
	"context"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

// BookingService интерфейс чтения бронирований
type BookingService interface {
	GetSessionBookings(ctx context.Context, sessionTypeID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
