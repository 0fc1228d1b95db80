package process_payment_event

// Outcome итог применения события (попадает в ответ провайдеру и в метрики)
type Outcome string

const (
	OutcomeApplied   Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeUnhandled Outcome = "unhandled"
	// OutcomeOrphaned платеж не удалось сопоставить ни с одним бронированием
	// (корреляционный ключ неизвестен): подтверждаем доставку и зовем оператора
	OutcomeOrphaned Outcome = "orphaned"
)

// Result результат обработки платежного события
type Result struct {
	Outcome   Outcome
	BookingID int64
}
