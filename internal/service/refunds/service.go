package refunds

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

// RefundResult результат отработки компенсации
type RefundResult struct {
	// Refunded true, если провайдеру отправлен возврат
	Refunded    bool
	Policy      string
	AmountMinor int64
	RefundID    string
}

// Service компенсационный триггер: применяет политику возвратов
// и вызывает платежного провайдера
type Service struct {
	paymentClient PaymentClient
	policy        Policy
	metrics       Metrics
	logger        Logger
}

// NewService создает новый сервис возвратов
func NewService(paymentClient PaymentClient, policy Policy, metrics Metrics, logger Logger) *Service {
	return &Service{
		paymentClient: paymentClient,
		policy:        policy,
		metrics:       metrics,
		logger:        logger,
	}
}

// Trigger выполняет компенсацию для отмененного оплаченного бронирования.
//
// Ошибка возврата логируется и учитывается в метриках, но никогда не
// откатывает отмену: бронирование остается cancelled с payment_status=paid
// до ручной сверки.
func (s *Service) Trigger(ctx context.Context, b *domain.Booking, cancelledBy domain.CancelActor) (*RefundResult, error) {
	decision := s.policy.Evaluate(cancelledBy, b.StartTime, time.Now(), b.AmountMinor)

	if decision.Policy == PolicyNone {
		s.logger.Info("Trigger: no refund due for booking id=%d (cancelled_by=%s)", b.ID, cancelledBy)
		s.metrics.RecordRefund(PolicyNone, "skipped")
		return &RefundResult{Refunded: false, Policy: PolicyNone}, nil
	}

	if b.PaymentIntentID == nil || *b.PaymentIntentID == "" {
		s.metrics.RecordRefund(decision.Policy, "failure")
		return nil, fmt.Errorf("%w: booking id=%d", ErrNoPaymentReference, b.ID)
	}

	// При полном возврате сумму не передаем: провайдер вернет весь платеж
	amount := decision.AmountMinor
	if decision.Policy == PolicyFull {
		amount = 0
	}

	ref, err := s.paymentClient.CreateRefund(ctx, *b.PaymentIntentID, amount)
	if err != nil {
		s.metrics.RecordRefund(decision.Policy, "failure")
		s.logger.Error("Trigger: refund failed for booking id=%d payment_intent=%s: %v",
			b.ID, *b.PaymentIntentID, err)
		return nil, fmt.Errorf("%w: booking id=%d: %v", ErrRefundFailed, b.ID, err)
	}

	s.metrics.RecordRefund(decision.Policy, "success")
	s.logger.Info("Trigger: refund id=%s created for booking id=%d, policy=%s, amount=%d",
		ref.ID, b.ID, decision.Policy, ref.AmountMinor)

	return &RefundResult{
		Refunded:    true,
		Policy:      decision.Policy,
		AmountMinor: ref.AmountMinor,
		RefundID:    ref.ID,
	}, nil
}
