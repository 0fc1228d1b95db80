// Package normalizer приводит provider-специфичные webhook-события
// к внутреннему словарю domain.NormalizedEvent.
package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

// Таблица соответствия типов событий scheduling-провайдера
// внутреннему словарю. Незнакомые типы дают KindUnhandled.
var schedulingEventKinds = map[string]domain.EventKind{
	"invitee.created":     domain.KindInviteeCreated,
	"invitee.canceled":    domain.KindInviteeCanceled,
	"invitee.rescheduled": domain.KindInviteeRescheduled,
}

// Normalizer нормализатор webhook-событий
type Normalizer struct {
	validate *validator.Validate
}

// New создает новый нормализатор
func New() *Normalizer {
	return &Normalizer{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// NormalizeScheduling нормализует webhook scheduling-провайдера.
// Вызывается после проверки подписи; rawBody содержит уже проверенные байты.
func (n *Normalizer) NormalizeScheduling(rawBody []byte) (*domain.NormalizedEvent, error) {
	var wh schedulingWebhook
	if err := json.Unmarshal(rawBody, &wh); err != nil {
		return nil, fmt.Errorf("%w: scheduling - decode body: %v", ErrMalformedPayload, err)
	}

	// Тип события разбирается до схемной валидации: незнакомые типы
	// приходят с произвольной формой payload и должны подтверждаться,
	// а не отклоняться с 400
	kind, ok := schedulingEventKinds[wh.Event]
	if !ok {
		return &domain.NormalizedEvent{
			Kind:         domain.KindUnhandled,
			Provider:     domain.ProviderScheduling,
			DeliveryID:   deliveryID(wh.ID, rawBody),
			RawEventType: wh.Event,
		}, nil
	}

	if err := n.validate.Struct(&wh); err != nil {
		return nil, fmt.Errorf("%w: scheduling - %v", ErrValidation, err)
	}

	ev := &domain.NormalizedEvent{
		Kind:                 kind,
		Provider:             domain.ProviderScheduling,
		DeliveryID:           deliveryID(wh.ID, rawBody),
		RawEventType:         wh.Event,
		ExternalEventID:      lastPathSegment(wh.Payload.ScheduledEvent.URI),
		ExternalInviteeID:    lastPathSegment(wh.Payload.URI),
		CorrelationKey:       wh.Payload.Tracking.UTMContent,
		StartTime:            wh.Payload.ScheduledEvent.StartTime,
		EndTime:              wh.Payload.ScheduledEvent.EndTime,
		ScheduledEventActive: wh.Payload.ScheduledEvent.Status == "active",
		ClientTimezone:       wh.Payload.Timezone,
	}

	// Идентификаторы сторон из utm_campaign; их отсутствие не фатально:
	// бронирование все еще корректно коррелируется по external event id
	parseCampaign(wh.Payload.Tracking.UTMCampaign, ev)

	if wh.Payload.Cancellation != nil {
		ev.CancellationReason = wh.Payload.Cancellation.Reason
		ev.CancelledBy = domain.ActorFromCancelerType(wh.Payload.Cancellation.CancelerType)
	}

	if err := validateSchedulingEvent(ev, &wh); err != nil {
		return nil, err
	}

	return ev, nil
}

// validateSchedulingEvent проверяет обязательные поля для обрабатываемых типов
func validateSchedulingEvent(ev *domain.NormalizedEvent, wh *schedulingWebhook) error {
	if ev.ExternalEventID == "" {
		return fmt.Errorf("%w: %s - missing scheduled event uri", ErrValidation, wh.Event)
	}

	switch ev.Kind {
	case domain.KindInviteeCreated:
		// Без ключа корреляции created-событие невозможно связать
		// с checkout-сессией, требует внимания оператора
		if ev.CorrelationKey == "" {
			return fmt.Errorf("%w: %s - missing tracking correlation key", ErrValidation, wh.Event)
		}
		if ev.StartTime == nil || ev.EndTime == nil {
			return fmt.Errorf("%w: %s - missing scheduled event times", ErrValidation, wh.Event)
		}
	case domain.KindInviteeCanceled:
		if wh.Payload.Cancellation == nil {
			return fmt.Errorf("%w: %s - missing cancellation details", ErrValidation, wh.Event)
		}
	}

	return nil
}

// parseCampaign разбирает utm_campaign формата "<builderID>:<clientID>:<sessionTypeID>"
func parseCampaign(campaign string, ev *domain.NormalizedEvent) {
	parts := strings.Split(campaign, ":")
	if len(parts) != 3 {
		return
	}
	_, _ = fmt.Sscanf(campaign, domain.TrackingCampaignFormat, &ev.BuilderID, &ev.ClientID, &ev.SessionTypeID)
}

// deliveryID возвращает идентификатор доставки провайдера либо
// детерминированный fallback из тела: повторная доставка того же тела
// получает тот же идентификатор
func deliveryID(providerID string, rawBody []byte) string {
	if providerID != "" {
		return providerID
	}
	sum := sha256.Sum256(rawBody)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// lastPathSegment возвращает последний сегмент URI ресурса
func lastPathSegment(uri string) string {
	if uri == "" {
		return ""
	}
	trimmed := strings.TrimRight(uri, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
