package refunds

import (
	"time"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

// Названия политик (попадают в метрики и RefundResult)
const (
	PolicyFull    = "full"
	PolicyPartial = "partial"
	PolicyNone    = "none"
)

// Policy параметры политики возвратов.
// Значения приходят из конфигурации, state machine их не знает.
type Policy struct {
	// FullRefundHours минимум часов до начала сессии для полного возврата
	// при отмене клиентом
	FullRefundHours int
	// PartialRefundPercent процент возврата внутри окна (0-100)
	PartialRefundPercent int
}

// Decision решение политики для конкретной отмены
type Decision struct {
	Policy      string
	AmountMinor int64 // 0 при Policy == "none"
}

// Evaluate вычисляет сумму возврата.
//
// Правила:
//   - отмена builder-ом или системой: полный возврат всегда;
//   - отмена клиентом за FullRefundHours и более до начала: полный возврат;
//   - отмена клиентом внутри окна, но до начала: PartialRefundPercent;
//   - отмена после начала сессии: без возврата.
//
// Бронирование без времени начала трактуется в пользу клиента (полный возврат).
func (p Policy) Evaluate(cancelledBy domain.CancelActor, startTime *time.Time, now time.Time, amountMinor int64) Decision {
	if cancelledBy == domain.CancelledByBuilder || cancelledBy == domain.CancelledBySystem {
		return Decision{Policy: PolicyFull, AmountMinor: amountMinor}
	}

	if startTime == nil {
		return Decision{Policy: PolicyFull, AmountMinor: amountMinor}
	}

	notice := startTime.Sub(now)

	if notice >= time.Duration(p.FullRefundHours)*time.Hour {
		return Decision{Policy: PolicyFull, AmountMinor: amountMinor}
	}

	if notice > 0 && p.PartialRefundPercent > 0 {
		return Decision{
			Policy:      PolicyPartial,
			AmountMinor: amountMinor * int64(p.PartialRefundPercent) / 100,
		}
	}

	return Decision{Policy: PolicyNone}
}
