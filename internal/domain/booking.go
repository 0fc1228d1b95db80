package domain

import "time"

// BookingStatus represents the scheduling lifecycle status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus represents the payment axis of a booking,
// orthogonal to the scheduling status
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// CancelActor кто инициировал отмену бронирования
type CancelActor string

const (
	CancelledByClient  CancelActor = "client"
	CancelledByBuilder CancelActor = "builder"
	CancelledBySystem  CancelActor = "system"
)

// Booking represents a consulting session booking reconciled from webhooks
//
// Инварианты:
//   - ровно одно бронирование на ExternalEventID (уникальный индекс в БД)
//   - PaymentStatus == refunded возможен только при Status == cancelled
//   - Status == confirmed требует непустых StartTime/EndTime, EndTime > StartTime
type Booking struct {
	ID int64

	// Внешние идентификаторы scheduling-провайдера
	ExternalEventID   string // ключ идемпотентности upsert'а
	ExternalInviteeID string

	// CorrelationKey непрозрачный ключ, зашитый в scheduling-ссылку
	// и в checkout-сессию; связывает события двух провайдеров до того,
	// как появился внутренний ID
	CorrelationKey string

	BuilderID     int64
	ClientID      int64
	SessionTypeID int64

	StartTime *time.Time
	EndTime   *time.Time

	Status        BookingStatus
	PaymentStatus PaymentStatus

	AmountMinor int64 // сумма в минорных единицах валюты
	Currency    string

	ClientTimezone  string
	BuilderTimezone string

	CancellationReason *string
	CancelledBy        *CancelActor
	CancelledAt        *time.Time

	// Идентификаторы платежного провайдера
	PaymentSessionID *string
	PaymentIntentID  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsPaid returns true if the booking has a completed payment
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentPaid
}

// RequiresRefund returns true if cancelling this booking must trigger compensation
func (b *Booking) RequiresRefund() bool {
	return b.PaymentStatus == PaymentPaid
}

// HasSchedule returns true if both start and end times are set and consistent
func (b *Booking) HasSchedule() bool {
	return b.StartTime != nil && b.EndTime != nil && b.EndTime.After(*b.StartTime)
}
