package scheduling_webhook

import (
	"context"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	"github.com/m04kA/SMC-WebhookService/internal/usecase/process_scheduling_event"
)

// Normalizer интерфейс нормализации сырого payload в доменное событие
type Normalizer interface {
	NormalizeScheduling(rawBody []byte) (*domain.NormalizedEvent, error)
}

// Usecase интерфейс обработки scheduling-событий
type Usecase interface {
	Execute(ctx context.Context, ev *domain.NormalizedEvent) (*process_scheduling_event.Result, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
