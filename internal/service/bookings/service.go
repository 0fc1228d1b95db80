package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
	bookingstore "github.com/m04kA/SMC-WebhookService/internal/infra/storage/booking"
)

// Service read API по бронированиям и ручная отмена оператором/участником
type Service struct {
	storage   BookingStorage
	refunds   RefundTrigger
	txManager TxManager
	logger    Logger
}

func NewService(storage BookingStorage, refunds RefundTrigger, txManager TxManager, logger Logger) *Service {
	return &Service{
		storage:   storage,
		refunds:   refunds,
		txManager: txManager,
		logger:    logger,
	}
}

// GetByID возвращает бронирование. Доступ есть только у его клиента и builder-а.
func (s *Service) GetByID(ctx context.Context, id, userID int64) (*domain.Booking, error) {
	b, err := s.storage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingstore.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - get booking: %v", ErrInternal, err)
	}

	if b.ClientID != userID && b.BuilderID != userID {
		return nil, fmt.Errorf("%w: GetByID - user %d is not a participant of booking %d", ErrPermissionDenied, userID, id)
	}

	return b, nil
}

// GetUserBookings возвращает бронирования клиента, опционально по статусу
func (s *Service) GetUserBookings(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	list, err := s.storage.GetByClientID(ctx, clientID, status)
	if err != nil {
		return nil, fmt.Errorf("%w: GetUserBookings - list bookings: %v", ErrInternal, err)
	}
	return list, nil
}

// GetSessionBookings возвращает бронирования по типу сессии, опционально по статусу
func (s *Service) GetSessionBookings(ctx context.Context, sessionTypeID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	list, err := s.storage.GetBySessionType(ctx, sessionTypeID, status)
	if err != nil {
		return nil, fmt.Errorf("%w: GetSessionBookings - list bookings: %v", ErrInternal, err)
	}
	return list, nil
}

// Cancel отменяет бронирование вручную (минуя scheduling-провайдера).
//
// Актор выводится из userID: клиент бронирования отменяет как client,
// builder как builder. Компенсация запускается после коммита отмены,
// её ошибка отмену не откатывает.
func (s *Service) Cancel(ctx context.Context, id, userID int64, reason string) (*domain.Booking, error) {
	if len(reason) > domain.MaxCancellationReasonLength {
		reason = reason[:domain.MaxCancellationReasonLength]
	}

	var (
		snapshot *domain.Booking
		actor    domain.CancelActor
	)

	txErr := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.storage.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, bookingstore.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - get booking: %v", ErrInternal, err)
		}

		switch userID {
		case b.ClientID:
			actor = domain.CancelledByClient
		case b.BuilderID:
			actor = domain.CancelledByBuilder
		default:
			return fmt.Errorf("%w: Cancel - user %d is not a participant of booking %d", ErrPermissionDenied, userID, id)
		}

		if !b.CanBeCancelled() {
			return ErrAlreadyCancelled
		}

		if err := s.storage.MarkCancelled(txCtx, b.ID, reason, actor); err != nil {
			return fmt.Errorf("%w: Cancel - mark cancelled: %v", ErrInternal, err)
		}

		snapshot = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logger.Info("Cancel: booking id=%d cancelled by %s (user=%d)", snapshot.ID, actor, userID)

	if snapshot.RequiresRefund() {
		s.triggerRefund(ctx, snapshot, actor)
	}

	updated, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - reload booking: %v", ErrInternal, err)
	}
	return updated, nil
}

func (s *Service) triggerRefund(ctx context.Context, b *domain.Booking, actor domain.CancelActor) {
	res, err := s.refunds.Trigger(ctx, b, actor)
	if err != nil {
		s.logger.Error("triggerRefund: compensation failed for booking id=%d: %v", b.ID, err)
		return
	}
	if !res.Refunded {
		return
	}

	if err := s.storage.SetPaymentStatus(ctx, b.ID, domain.PaymentRefunded); err != nil {
		s.logger.Error("triggerRefund: mark booking id=%d refunded (refund=%s): %v", b.ID, res.RefundID, err)
	}
}
