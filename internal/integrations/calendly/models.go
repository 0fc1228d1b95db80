package calendly

// SchedulingLink одноразовая ссылка на бронирование
type SchedulingLink struct {
	BookingURL string `json:"booking_url"`
	Owner      string `json:"owner"`
	OwnerType  string `json:"owner_type"`
}

// resourceEnvelope провайдер оборачивает ответы в {"resource": ...}
type resourceEnvelope[T any] struct {
	Resource T `json:"resource"`
}

// createSchedulingLinkRequest тело запроса создания одноразовой ссылки
type createSchedulingLinkRequest struct {
	MaxEventCount int    `json:"max_event_count"`
	Owner         string `json:"owner"`
	OwnerType     string `json:"owner_type"`
}
