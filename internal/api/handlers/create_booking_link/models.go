package create_booking_link

import (
	uc "github.com/m04kA/SMC-WebhookService/internal/usecase/create_booking_link"
)

// CreateBookingLinkRequest HTTP request model
type CreateBookingLinkRequest struct {
	BuilderID     int64  `json:"builderId"`
	SessionTypeID int64  `json:"sessionTypeId"`
	EventTypeURI  string `json:"eventTypeUri"`
	ProductName   string `json:"productName"`
	AmountMinor   int64  `json:"amountMinor"`
	Currency      string `json:"currency"`
}

// ToUsecaseRequest конвертирует HTTP request в модель usecase
func (r *CreateBookingLinkRequest) ToUsecaseRequest(clientID int64) *uc.Request {
	return &uc.Request{
		BuilderID:     r.BuilderID,
		ClientID:      clientID,
		SessionTypeID: r.SessionTypeID,
		EventTypeURI:  r.EventTypeURI,
		ProductName:   r.ProductName,
		AmountMinor:   r.AmountMinor,
		Currency:      r.Currency,
	}
}

// CreateBookingLinkResponse HTTP response model
type CreateBookingLinkResponse struct {
	CorrelationKey    string `json:"correlationKey"`
	SchedulingURL     string `json:"schedulingUrl"`
	CheckoutURL       string `json:"checkoutUrl"`
	CheckoutSessionID string `json:"checkoutSessionId"`
}
