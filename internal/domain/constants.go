package domain

// Scheduling-провайдер: значения поля canceler_type в событии отмены
const (
	CancelerTypeInvitee = "invitee"
	CancelerTypeHost    = "host"
)

// Формат utm_campaign в tracking-метаданных scheduling-ссылки:
// "<builderID>:<clientID>:<sessionTypeID>". Зашивается при создании
// ссылки и разбирается нормализатором.
const TrackingCampaignFormat = "%d:%d:%d"

// Validation constants
const (
	MaxCancellationReasonLength = 500
)

// ActorFromCancelerType маппит canceler_type провайдера на внутреннего актора
func ActorFromCancelerType(cancelerType string) CancelActor {
	switch cancelerType {
	case CancelerTypeInvitee:
		return CancelledByClient
	case CancelerTypeHost:
		return CancelledByBuilder
	default:
		return CancelledBySystem
	}
}
