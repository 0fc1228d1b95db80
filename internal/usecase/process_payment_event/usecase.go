package process_payment_event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	bookingstore "github.com/m04kA/SMC-WebhookService/internal/infra/storage/booking"
	deliverystore "github.com/m04kA/SMC-WebhookService/internal/infra/storage/delivery"
)

// Usecase применяет нормализованные платежные события к состоянию бронирований.
//
// Таблица переходов:
//   - payment_completed: помечает бронирование оплаченным по корреляционному
//     ключу; статус refunded никогда не понижается обратно до paid;
//   - payment_failed: помечает платеж неуспешным, если бронирование еще
//     не оплачено; опоздавший failure после успеха игнорируется;
//   - payment_refunded: фиксирует возврат, инициированный на стороне
//     провайдера; неотмененное бронирование при этом отменяется системой.
type Usecase struct {
	bookings  BookingStorage
	ledger    DeliveryLedger
	txManager TxManager
	metrics   Metrics
	logger    Logger
}

func New(bookings BookingStorage, ledger DeliveryLedger, txManager TxManager, metrics Metrics, logger Logger) *Usecase {
	return &Usecase{
		bookings:  bookings,
		ledger:    ledger,
		txManager: txManager,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute обрабатывает одно платежное событие.
//
// Шаги:
//  1. Незнакомые типы событий подтверждаются без обработки.
//  2. Проверка журнала идемпотентности.
//  3. Сериализуемая транзакция: переход состояния + запись в журнал.
func (uc *Usecase) Execute(ctx context.Context, ev *domain.NormalizedEvent) (*Result, error) {
	started := time.Now()

	if ev.Provider != domain.ProviderPayment {
		return nil, fmt.Errorf("%w: Execute - unexpected provider %q", ErrValidation, ev.Provider)
	}

	if ev.Kind == domain.KindUnhandled {
		uc.metrics.RecordUnhandledEvent(string(ev.Provider), ev.RawEventType)
		uc.logger.Info("Execute: unhandled payment event type=%s delivery=%s acknowledged",
			ev.RawEventType, ev.DeliveryID)
		return &Result{Outcome: OutcomeUnhandled}, nil
	}

	processed, err := uc.ledger.HasProcessed(ctx, ev.DeliveryID)
	if err != nil {
		return nil, fmt.Errorf("%w: Execute - check delivery ledger: %v", ErrInternal, err)
	}
	if processed {
		uc.metrics.RecordDuplicateDelivery(string(ev.Provider))
		uc.logger.Info("Execute: duplicate delivery=%s skipped", ev.DeliveryID)
		return &Result{Outcome: OutcomeDuplicate}, nil
	}

	var res *Result
	txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		applied, err := uc.apply(txCtx, ev)
		if err != nil {
			return err
		}
		res = applied
		return uc.recordDelivery(txCtx, ev, domain.OutcomeSuccess, started)
	})

	if txErr != nil {
		if errors.Is(txErr, deliverystore.ErrAlreadyRecorded) {
			uc.metrics.RecordDuplicateDelivery(string(ev.Provider))
			uc.logger.Info("Execute: concurrent duplicate delivery=%s rolled back", ev.DeliveryID)
			return &Result{Outcome: OutcomeDuplicate}, nil
		}

		uc.metrics.RecordWebhookEvent(string(ev.Provider), string(ev.Kind), "failure")
		if recErr := uc.recordDelivery(ctx, ev, domain.OutcomeFailure, started); recErr != nil &&
			!errors.Is(recErr, deliverystore.ErrAlreadyRecorded) {
			uc.logger.Error("Execute: record failed delivery=%s: %v", ev.DeliveryID, recErr)
		}

		if errors.Is(txErr, ErrValidation) {
			return nil, txErr
		}
		return nil, fmt.Errorf("%w: Execute - apply event delivery=%s: %v", ErrInternal, ev.DeliveryID, txErr)
	}

	uc.metrics.RecordWebhookEvent(string(ev.Provider), string(ev.Kind), "success")
	uc.metrics.RecordWebhookDuration(string(ev.Provider), string(ev.Kind), time.Since(started).Seconds())

	return res, nil
}

func (uc *Usecase) apply(ctx context.Context, ev *domain.NormalizedEvent) (*Result, error) {
	switch ev.Kind {
	case domain.KindPaymentCompleted:
		return uc.applyCompleted(ctx, ev)
	case domain.KindPaymentFailed:
		return uc.applyFailed(ctx, ev)
	case domain.KindPaymentRefunded:
		return uc.applyRefunded(ctx, ev)
	default:
		return nil, fmt.Errorf("%w: apply - unsupported payment event kind %q", ErrValidation, ev.Kind)
	}
}

// applyCompleted помечает бронирование оплаченным по корреляционному ключу
func (uc *Usecase) applyCompleted(ctx context.Context, ev *domain.NormalizedEvent) (*Result, error) {
	b, err := uc.bookings.GetByCorrelationKey(ctx, ev.CorrelationKey)
	if err != nil {
		if errors.Is(err, bookingstore.ErrBookingNotFound) {
			return uc.orphan(ev, "no booking for correlation key"), nil
		}
		return nil, fmt.Errorf("applyCompleted - get booking by correlation key: %w", err)
	}

	if b.PaymentStatus == domain.PaymentRefunded {
		uc.logger.Warn("applyCompleted: booking id=%d already refunded, late payment event ignored", b.ID)
		return &Result{Outcome: OutcomeIgnored, BookingID: b.ID}, nil
	}

	if err := uc.bookings.SetPayment(ctx, b.ID, domain.PaymentPaid, ev.AmountMinor, ev.Currency, ev.PaymentSessionID, ev.PaymentIntentID); err != nil {
		return nil, fmt.Errorf("applyCompleted - set payment: %w", err)
	}

	uc.logger.Info("applyCompleted: booking id=%d paid amount=%d %s intent=%s",
		b.ID, ev.AmountMinor, ev.Currency, ev.PaymentIntentID)
	return &Result{Outcome: OutcomeApplied, BookingID: b.ID}, nil
}

// applyFailed помечает платеж неуспешным. Ищет бронирование по payment intent,
// при неудаче ищет по корреляционному ключу из метаданных платежа.
func (uc *Usecase) applyFailed(ctx context.Context, ev *domain.NormalizedEvent) (*Result, error) {
	b, err := uc.findByIntentOrCorrelation(ctx, ev)
	if err != nil {
		if errors.Is(err, bookingstore.ErrBookingNotFound) {
			return uc.orphan(ev, "no booking for failed payment"), nil
		}
		return nil, fmt.Errorf("applyFailed - find booking: %w", err)
	}

	// Опоздавший failure после успешной оплаты или возврата ничего не меняет
	if b.PaymentStatus == domain.PaymentPaid || b.PaymentStatus == domain.PaymentRefunded {
		uc.logger.Warn("applyFailed: booking id=%d payment_status=%s, stale failure ignored", b.ID, b.PaymentStatus)
		return &Result{Outcome: OutcomeIgnored, BookingID: b.ID}, nil
	}

	if err := uc.bookings.SetPaymentStatus(ctx, b.ID, domain.PaymentFailed); err != nil {
		return nil, fmt.Errorf("applyFailed - set payment status: %w", err)
	}

	uc.logger.Info("applyFailed: booking id=%d payment failed: %s", b.ID, ev.FailureReason)
	return &Result{Outcome: OutcomeApplied, BookingID: b.ID}, nil
}

// applyRefunded фиксирует возврат, выполненный на стороне провайдера
// (например, вручную из дашборда). Бронирование с возвратом не может
// оставаться активным, поэтому неотмененное отменяется системой.
func (uc *Usecase) applyRefunded(ctx context.Context, ev *domain.NormalizedEvent) (*Result, error) {
	b, err := uc.bookings.GetByPaymentIntentID(ctx, ev.PaymentIntentID)
	if err != nil {
		if errors.Is(err, bookingstore.ErrBookingNotFound) {
			return uc.orphan(ev, "no booking for refunded payment"), nil
		}
		return nil, fmt.Errorf("applyRefunded - get booking by payment intent: %w", err)
	}

	if b.PaymentStatus == domain.PaymentRefunded {
		uc.logger.Info("applyRefunded: booking id=%d already refunded", b.ID)
		return &Result{Outcome: OutcomeIgnored, BookingID: b.ID}, nil
	}

	if b.PaymentStatus != domain.PaymentPaid {
		uc.logger.Warn("applyRefunded: booking id=%d payment_status=%s, refund of unpaid booking ignored",
			b.ID, b.PaymentStatus)
		return &Result{Outcome: OutcomeIgnored, BookingID: b.ID}, nil
	}

	if !b.IsCancelled() {
		if err := uc.bookings.MarkCancelled(ctx, b.ID, "payment refunded by provider", domain.CancelledBySystem); err != nil {
			return nil, fmt.Errorf("applyRefunded - cancel booking: %w", err)
		}
	}

	if err := uc.bookings.SetPaymentStatus(ctx, b.ID, domain.PaymentRefunded); err != nil {
		return nil, fmt.Errorf("applyRefunded - set payment status: %w", err)
	}

	uc.logger.Info("applyRefunded: booking id=%d marked refunded, intent=%s", b.ID, ev.PaymentIntentID)
	return &Result{Outcome: OutcomeApplied, BookingID: b.ID}, nil
}

func (uc *Usecase) findByIntentOrCorrelation(ctx context.Context, ev *domain.NormalizedEvent) (*domain.Booking, error) {
	if ev.PaymentIntentID != "" {
		b, err := uc.bookings.GetByPaymentIntentID(ctx, ev.PaymentIntentID)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, bookingstore.ErrBookingNotFound) {
			return nil, err
		}
	}

	if ev.CorrelationKey == "" {
		return nil, bookingstore.ErrBookingNotFound
	}
	return uc.bookings.GetByCorrelationKey(ctx, ev.CorrelationKey)
}

func (uc *Usecase) orphan(ev *domain.NormalizedEvent, msg string) *Result {
	uc.metrics.RecordOrphanedEvent(string(ev.Provider), string(ev.Kind))
	uc.logger.Warn("apply: %s, delivery=%s type=%s correlation=%s intent=%s acknowledged",
		msg, ev.DeliveryID, ev.RawEventType, ev.CorrelationKey, ev.PaymentIntentID)
	return &Result{Outcome: OutcomeOrphaned}
}

func (uc *Usecase) recordDelivery(ctx context.Context, ev *domain.NormalizedEvent, outcome domain.DeliveryOutcome, started time.Time) error {
	return uc.ledger.RecordProcessed(ctx, &domain.WebhookDelivery{
		DeliveryID: ev.DeliveryID,
		Provider:   ev.Provider,
		EventType:  ev.RawEventType,
		Outcome:    outcome,
		DurationMS: time.Since(started).Milliseconds(),
		ReceivedAt: started,
	})
}
