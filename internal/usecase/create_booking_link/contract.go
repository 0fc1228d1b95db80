package create_booking_link

import (
	"context"

	"github.com/m04kA/SMC-WebhookService/internal/integrations/calendly"
	"github.com/m04kA/SMC-WebhookService/internal/integrations/stripepay"
)

// Scheduler интерфейс клиента scheduling-провайдера
type Scheduler interface {
	CreateSchedulingLink(ctx context.Context, eventTypeURI string) (*calendly.SchedulingLink, error)
}

// Payments интерфейс клиента платежного провайдера
type Payments interface {
	CreateCheckoutSession(ctx context.Context, p stripepay.CheckoutParams) (*stripepay.CheckoutSession, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
