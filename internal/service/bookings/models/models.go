// Package models JSON-модели бронирований для API-ответов
package models

import (
	"time"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

// BookingResponse бронирование в API-ответе
type BookingResponse struct {
	ID                 int64      `json:"id"`
	ExternalEventID    string     `json:"externalEventId"`
	CorrelationKey     string     `json:"correlationKey"`
	BuilderID          int64      `json:"builderId"`
	ClientID           int64      `json:"clientId"`
	SessionTypeID      int64      `json:"sessionTypeId"`
	StartTime          *time.Time `json:"startTime,omitempty"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"paymentStatus"`
	AmountMinor        int64      `json:"amountMinor"`
	Currency           string     `json:"currency,omitempty"`
	ClientTimezone     string     `json:"clientTimezone,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledBy        *string    `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// FromDomain конвертирует доменное бронирование в API-модель
func FromDomain(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:                 b.ID,
		ExternalEventID:    b.ExternalEventID,
		CorrelationKey:     b.CorrelationKey,
		BuilderID:          b.BuilderID,
		ClientID:           b.ClientID,
		SessionTypeID:      b.SessionTypeID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		AmountMinor:        b.AmountMinor,
		Currency:           b.Currency,
		ClientTimezone:     b.ClientTimezone,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		actor := string(*b.CancelledBy)
		resp.CancelledBy = &actor
	}

	return resp
}

// FromDomainList конвертирует список доменных бронирований
func FromDomainList(list []*domain.Booking) []*BookingResponse {
	out := make([]*BookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, FromDomain(b))
	}
	return out
}
