package domain

import "time"

// DeliveryOutcome результат обработки webhook-доставки
type DeliveryOutcome string

const (
	OutcomeSuccess DeliveryOutcome = "success"
	OutcomeFailure DeliveryOutcome = "failure"
)

// WebhookDelivery запись журнала идемпотентности.
// Повторная доставка с тем же DeliveryID и outcome=success не выполняет
// side effects повторно.
type WebhookDelivery struct {
	DeliveryID string
	Provider   Provider
	EventType  string
	Outcome    DeliveryOutcome
	DurationMS int64
	ReceivedAt time.Time
}
