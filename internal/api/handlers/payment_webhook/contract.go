package payment_webhook

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/usecase/process_payment_event"
)

// Normalizer интерфейс нормализации события платежного провайдера
type Normalizer interface {
	NormalizePayment(event stripe.Event) (*domain.NormalizedEvent, error)
}

// Usecase интерфейс обработки платежных событий
type Usecase interface {
	Execute(ctx context.Context, ev *domain.NormalizedEvent) (*process_payment_event.Result, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
