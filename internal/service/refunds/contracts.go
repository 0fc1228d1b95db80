package refunds

import (
	"context"

	"github.com/m04kA/SMC-WebhookService/internal/integrations/stripepay"
)

// PaymentClient интерфейс клиента платежного провайдера
type PaymentClient interface {
	CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64) (*stripepay.Refund, error)
}

// Metrics интерфейс учета попыток возврата
type Metrics interface {
	RecordRefund(policy, outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
