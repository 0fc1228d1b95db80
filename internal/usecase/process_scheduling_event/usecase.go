package process_scheduling_event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	bookingstore "github.com/m04kA/SMC-WebhookService/internal/infra/storage/booking"
	deliverystore "github.com/m04kA/SMC-WebhookService/internal/infra/storage/delivery"
)

// Usecase применяет нормализованные scheduling-события к состоянию бронирований.
//
// Таблица переходов:
//   - invitee_created: создает бронирование (pending или confirmed) либо
//     идемпотентно обновляет существующее; отмененное не воскрешает;
//   - invitee_rescheduled: обновляет времена существующего бронирования;
//   - invitee_canceled: отменяет бронирование; при отсутствии пишет
//     cancelled-tombstone, чтобы опоздавший invitee_created не создал
//     активное бронирование для уже отмененного события.
type Usecase struct {
	bookings  BookingStorage
	ledger    DeliveryLedger
	refunds   RefundTrigger
	txManager TxManager
	metrics   Metrics
	logger    Logger
}

func New(bookings BookingStorage, ledger DeliveryLedger, refunds RefundTrigger, txManager TxManager, metrics Metrics, logger Logger) *Usecase {
	return &Usecase{
		bookings:  bookings,
		ledger:    ledger,
		refunds:   refunds,
		txManager: txManager,
		metrics:   metrics,
		logger:    logger,
	}
}

// applied результат применения события внутри транзакции
type applied struct {
	res *Result

	// refundTarget снапшот бронирования для компенсации после коммита
	refundTarget *domain.Booking
	refundActor  domain.CancelActor
}

// Execute обрабатывает одно scheduling-событие.
//
// Шаги:
//  1. Незнакомые типы событий подтверждаются без обработки.
//  2. Проверка журнала идемпотентности: успешно обработанная доставка
//     не применяется повторно.
//  3. Сериализуемая транзакция: переход состояния + запись в журнал.
//  4. После коммита: компенсация, если отменено оплаченное бронирование.
func (uc *Usecase) Execute(ctx context.Context, ev *domain.NormalizedEvent) (*Result, error) {
	started := time.Now()

	if ev.Provider != domain.ProviderScheduling {
		return nil, fmt.Errorf("%w: Execute - unexpected provider %q", ErrValidation, ev.Provider)
	}

	if ev.Kind == domain.KindUnhandled {
		uc.metrics.RecordUnhandledEvent(string(ev.Provider), ev.RawEventType)
		uc.logger.Info("Execute: unhandled scheduling event type=%s delivery=%s acknowledged",
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

	var ap *applied
	txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, err := uc.apply(txCtx, ev)
		if err != nil {
			return err
		}
		ap = res
		return uc.recordDelivery(txCtx, ev, domain.OutcomeSuccess, started)
	})

	if txErr != nil {
		// Параллельная доставка успела зафиксировать success: наши изменения
		// откатились, итог тот же, что и у обычного дубликата
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

	if ap.refundTarget != nil {
		uc.triggerRefund(ctx, ap.refundTarget, ap.refundActor)
	}

	uc.metrics.RecordWebhookEvent(string(ev.Provider), string(ev.Kind), "success")
	uc.metrics.RecordWebhookDuration(string(ev.Provider), string(ev.Kind), time.Since(started).Seconds())

	return ap.res, nil
}

func (uc *Usecase) apply(ctx context.Context, ev *domain.NormalizedEvent) (*applied, error) {
	switch ev.Kind {
	case domain.KindInviteeCreated:
		return uc.applyCreated(ctx, ev)
	case domain.KindInviteeRescheduled:
		return uc.applyRescheduled(ctx, ev)
	case domain.KindInviteeCanceled:
		return uc.applyCanceled(ctx, ev)
	default:
		return nil, fmt.Errorf("%w: apply - unsupported scheduling event kind %q", ErrValidation, ev.Kind)
	}
}

// applyCreated создает бронирование или идемпотентно применяет повторную доставку
func (uc *Usecase) applyCreated(ctx context.Context, ev *domain.NormalizedEvent) (*applied, error) {
	existing, err := uc.bookings.GetByExternalEventID(ctx, ev.ExternalEventID)
	if err != nil && !errors.Is(err, bookingstore.ErrBookingNotFound) {
		return nil, fmt.Errorf("applyCreated - get booking by external event id: %w", err)
	}

	if existing == nil {
		created, err := uc.bookings.Create(ctx, bookingFromEvent(ev))
		if err == nil {
			uc.logger.Info("applyCreated: booking id=%d created for event=%s status=%s",
				created.ID, ev.ExternalEventID, created.Status)
			return &applied{res: &Result{Outcome: OutcomeApplied, BookingID: created.ID}}, nil
		}
		if !errors.Is(err, bookingstore.ErrDuplicateExternalEventID) {
			return nil, fmt.Errorf("applyCreated - create booking: %w", err)
		}

		// Гонка с параллельной доставкой: перечитываем и применяем как обновление
		existing, err = uc.bookings.GetByExternalEventID(ctx, ev.ExternalEventID)
		if err != nil {
			return nil, fmt.Errorf("applyCreated - refetch after duplicate: %w", err)
		}
	}

	if existing.IsCancelled() {
		uc.logger.Warn("applyCreated: booking id=%d already cancelled, event=%s not resurrected",
			existing.ID, ev.ExternalEventID)
		return &applied{res: &Result{Outcome: OutcomeIgnored, BookingID: existing.ID}}, nil
	}

	if err := uc.bookings.UpdateSchedule(ctx, existing.ID, ev.StartTime, ev.EndTime, ev.ExternalInviteeID, ev.ClientTimezone); err != nil {
		return nil, fmt.Errorf("applyCreated - update schedule: %w", err)
	}

	if ev.ScheduledEventActive && existing.Status == domain.StatusPending {
		if err := uc.bookings.UpdateStatus(ctx, existing.ID, domain.StatusConfirmed); err != nil {
			return nil, fmt.Errorf("applyCreated - confirm booking: %w", err)
		}
	}

	return &applied{res: &Result{Outcome: OutcomeApplied, BookingID: existing.ID}}, nil
}

// applyRescheduled обновляет времена существующего бронирования
func (uc *Usecase) applyRescheduled(ctx context.Context, ev *domain.NormalizedEvent) (*applied, error) {
	existing, err := uc.bookings.GetByExternalEventID(ctx, ev.ExternalEventID)
	if err != nil {
		if errors.Is(err, bookingstore.ErrBookingNotFound) {
			uc.metrics.RecordOrphanedEvent(string(ev.Provider), string(ev.Kind))
			uc.logger.Warn("applyRescheduled: no booking for event=%s delivery=%s, acknowledged",
				ev.ExternalEventID, ev.DeliveryID)
			return &applied{res: &Result{Outcome: OutcomeOrphaned}}, nil
		}
		return nil, fmt.Errorf("applyRescheduled - get booking: %w", err)
	}

	if existing.IsCancelled() {
		uc.logger.Warn("applyRescheduled: booking id=%d cancelled, reschedule ignored", existing.ID)
		return &applied{res: &Result{Outcome: OutcomeIgnored, BookingID: existing.ID}}, nil
	}

	if err := uc.bookings.UpdateSchedule(ctx, existing.ID, ev.StartTime, ev.EndTime, ev.ExternalInviteeID, ev.ClientTimezone); err != nil {
		return nil, fmt.Errorf("applyRescheduled - update schedule: %w", err)
	}

	uc.logger.Info("applyRescheduled: booking id=%d rescheduled", existing.ID)
	return &applied{res: &Result{Outcome: OutcomeApplied, BookingID: existing.ID}}, nil
}

// applyCanceled отменяет бронирование. Отмена раньше создания оставляет
// cancelled-tombstone под тем же external event id.
func (uc *Usecase) applyCanceled(ctx context.Context, ev *domain.NormalizedEvent) (*applied, error) {
	existing, err := uc.bookings.GetByExternalEventID(ctx, ev.ExternalEventID)
	if err != nil && !errors.Is(err, bookingstore.ErrBookingNotFound) {
		return nil, fmt.Errorf("applyCanceled - get booking: %w", err)
	}

	if existing == nil {
		created, err := uc.bookings.Create(ctx, bookingFromEvent(ev))
		if err != nil {
			if !errors.Is(err, bookingstore.ErrDuplicateExternalEventID) {
				return nil, fmt.Errorf("applyCanceled - create tombstone: %w", err)
			}
			created, err = uc.bookings.GetByExternalEventID(ctx, ev.ExternalEventID)
			if err != nil {
				return nil, fmt.Errorf("applyCanceled - refetch after duplicate: %w", err)
			}
		}
		existing = created
		uc.logger.Warn("applyCanceled: cancellation before creation for event=%s, tombstone booking id=%d",
			ev.ExternalEventID, existing.ID)
	}

	if existing.IsCancelled() {
		uc.logger.Info("applyCanceled: booking id=%d already cancelled", existing.ID)
		return &applied{res: &Result{Outcome: OutcomeIgnored, BookingID: existing.ID}}, nil
	}

	wasPaid := existing.RequiresRefund()
	actor := cancelActor(ev)

	if err := uc.bookings.MarkCancelled(ctx, existing.ID, cancellationReason(ev), actor); err != nil {
		return nil, fmt.Errorf("applyCanceled - mark cancelled: %w", err)
	}

	uc.logger.Info("applyCanceled: booking id=%d cancelled by %s (paid=%t)", existing.ID, actor, wasPaid)

	ap := &applied{res: &Result{Outcome: OutcomeApplied, BookingID: existing.ID}}
	if wasPaid {
		ap.refundTarget = existing
		ap.refundActor = actor
	}
	return ap, nil
}

// triggerRefund запускает компенсацию после коммита отмены.
// Ошибка возврата не откатывает отмену: бронирование остается
// cancelled/paid до ручной сверки.
func (uc *Usecase) triggerRefund(ctx context.Context, b *domain.Booking, actor domain.CancelActor) {
	res, err := uc.refunds.Trigger(ctx, b, actor)
	if err != nil {
		uc.logger.Error("triggerRefund: compensation failed for booking id=%d: %v", b.ID, err)
		return
	}
	if !res.Refunded {
		return
	}

	if err := uc.bookings.SetPaymentStatus(ctx, b.ID, domain.PaymentRefunded); err != nil {
		uc.logger.Error("triggerRefund: mark booking id=%d refunded (refund=%s): %v", b.ID, res.RefundID, err)
	}
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

func bookingFromEvent(ev *domain.NormalizedEvent) *domain.Booking {
	status := domain.StatusPending
	if ev.ScheduledEventActive {
		status = domain.StatusConfirmed
	}

	return &domain.Booking{
		ExternalEventID:   ev.ExternalEventID,
		ExternalInviteeID: ev.ExternalInviteeID,
		CorrelationKey:    ev.CorrelationKey,
		BuilderID:         ev.BuilderID,
		ClientID:          ev.ClientID,
		SessionTypeID:     ev.SessionTypeID,
		StartTime:         ev.StartTime,
		EndTime:           ev.EndTime,
		Status:            status,
		PaymentStatus:     domain.PaymentUnpaid,
		ClientTimezone:    ev.ClientTimezone,
	}
}

func cancelActor(ev *domain.NormalizedEvent) domain.CancelActor {
	if ev.CancelledBy == "" {
		return domain.CancelledBySystem
	}
	return ev.CancelledBy
}

func cancellationReason(ev *domain.NormalizedEvent) string {
	reason := ev.CancellationReason
	if len(reason) > domain.MaxCancellationReasonLength {
		reason = reason[:domain.MaxCancellationReasonLength]
	}
	return reason
}
