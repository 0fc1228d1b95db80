package process_scheduling_event

// Outcome итог применения события (попадает в ответ провайдеру и в метрики)
type Outcome string

const (
	// OutcomeApplied событие изменило состояние бронирования
	OutcomeApplied Outcome = "processed"
	// OutcomeDuplicate доставка уже была успешно обработана ранее
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored событие распознано, но состояние не изменилось
	// (например, изменение уже отмененного бронирования)
	OutcomeIgnored Outcome = "ignored"
	// OutcomeUnhandled незнакомый тип события, подтвержден без обработки
	OutcomeUnhandled Outcome = "unhandled"
	// OutcomeOrphaned событие не удалось сопоставить ни с одним бронированием
	OutcomeOrphaned Outcome = "orphaned"
)

// Result результат обработки scheduling-события
type Result struct {
	Outcome   Outcome
	BookingID int64
}
