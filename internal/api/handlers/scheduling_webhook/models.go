package scheduling_webhook

// AckResponse тело подтверждения доставки
type AckResponse struct {
	Status    string `json:"status"`
	BookingID int64  `json:"bookingId,omitempty"`
}
