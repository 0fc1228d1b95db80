package normalizer

import "time"

// schedulingWebhook верхний уровень webhook-тела scheduling-провайдера
type schedulingWebhook struct {
	// ID идентификатор доставки; при отсутствии вычисляется детерминированный
	// fallback из тела запроса
	ID        string            `json:"id"`
	Event     string            `json:"event" validate:"required"`
	CreatedAt *time.Time        `json:"created_at"`
	Payload   schedulingPayload `json:"payload" validate:"required"`
}

// schedulingPayload invitee-часть webhook-события
type schedulingPayload struct {
	// URI invitee (".../scheduled_events/<event>/invitees/<invitee>")
	URI      string `json:"uri"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Timezone string `json:"timezone"`

	ScheduledEvent scheduledEvent `json:"scheduled_event"`

	Tracking     tracking      `json:"tracking"`
	Cancellation *cancellation `json:"cancellation"`
	Rescheduled  bool          `json:"rescheduled"`
}

// scheduledEvent данные scheduling-события
type scheduledEvent struct {
	// URI события (".../scheduled_events/<event>")
	URI       string     `json:"uri"`
	Name      string     `json:"name"`
	Status    string     `json:"status"` // "active" | "canceled"
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// tracking UTM-метаданные, зашитые при создании scheduling-ссылки
type tracking struct {
	// UTMContent ключ корреляции бронирования
	UTMContent string `json:"utm_content"`
	// UTMCampaign "<builderID>:<clientID>:<sessionTypeID>"
	UTMCampaign string `json:"utm_campaign"`
	UTMSource   string `json:"utm_source"`
}

// cancellation данные отмены
type cancellation struct {
	CanceledBy   string `json:"canceled_by"`
	Reason       string `json:"reason"`
	CancelerType string `json:"canceler_type"` // "invitee" | "host"
}
