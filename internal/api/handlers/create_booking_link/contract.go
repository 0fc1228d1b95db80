package create_booking_link

import (
	"context"

	uc "github.com/m04kA/SMC-WebhookService/internal/usecase/create_booking_link"
)

// Usecase интерфейс выпуска пары ссылок
type Usecase interface {
	Execute(ctx context.Context, req *uc.Request) (*uc.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
