package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

const inviteeCreatedBody = `{
	"id": "wh_001",
	"event": "invitee.created",
	"payload": {
		"uri": "https://api.calendly.com/scheduled_events/EVT123/invitees/INV456",
		"email": "client@example.com",
		"timezone": "Europe/Moscow",
		"scheduled_event": {
			"uri": "https://api.calendly.com/scheduled_events/EVT123",
			"status": "active",
			"start_time": "2026-03-15T10:00:00Z",
			"end_time": "2026-03-15T11:00:00Z"
		},
		"tracking": {
			"utm_content": "corr-abc",
			"utm_campaign": "7:42:3"
		}
	}
}`

func TestNormalizeScheduling_InviteeCreated(t *testing.T) {
	n := New()

	ev, err := n.NormalizeScheduling([]byte(inviteeCreatedBody))
	require.NoError(t, err)

	assert.Equal(t, domain.KindInviteeCreated, ev.Kind)
	assert.Equal(t, domain.ProviderScheduling, ev.Provider)
	assert.Equal(t, "wh_001", ev.DeliveryID)
	assert.Equal(t, "invitee.created", ev.RawEventType)
	assert.Equal(t, "EVT123", ev.ExternalEventID)
	assert.Equal(t, "INV456", ev.ExternalInviteeID)
	assert.Equal(t, "corr-abc", ev.CorrelationKey)
	assert.Equal(t, int64(7), ev.BuilderID)
	assert.Equal(t, int64(42), ev.ClientID)
	assert.Equal(t, int64(3), ev.SessionTypeID)
	assert.True(t, ev.ScheduledEventActive)
	assert.Equal(t, "Europe/Moscow", ev.ClientTimezone)
	require.NotNil(t, ev.StartTime)
	require.NotNil(t, ev.EndTime)
	assert.True(t, ev.EndTime.After(*ev.StartTime))
}

func TestNormalizeScheduling_InviteeCanceled(t *testing.T) {
	n := New()

	body := `{
		"id": "wh_002",
		"event": "invitee.canceled",
		"payload": {
			"uri": "https://api.calendly.com/scheduled_events/EVT123/invitees/INV456",
			"scheduled_event": {
				"uri": "https://api.calendly.com/scheduled_events/EVT123",
				"status": "canceled"
			},
			"tracking": {"utm_content": "corr-abc"},
			"cancellation": {
				"canceled_by": "Client Name",
				"reason": "не смогу прийти",
				"canceler_type": "invitee"
			}
		}
	}`

	ev, err := n.NormalizeScheduling([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, domain.KindInviteeCanceled, ev.Kind)
	assert.Equal(t, "EVT123", ev.ExternalEventID)
	assert.Equal(t, "не смогу прийти", ev.CancellationReason)
	assert.Equal(t, domain.CancelledByClient, ev.CancelledBy)
	assert.False(t, ev.ScheduledEventActive)
}

func TestNormalizeScheduling_HostCancellationMapsToBuilder(t *testing.T) {
	n := New()

	body := `{
		"event": "invitee.canceled",
		"payload": {
			"scheduled_event": {"uri": "https://api.calendly.com/scheduled_events/EVT9"},
			"cancellation": {"canceler_type": "host", "reason": "перенос графика"}
		}
	}`

	ev, err := n.NormalizeScheduling([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, domain.CancelledByBuilder, ev.CancelledBy)
}

func TestNormalizeScheduling_UnknownEventType(t *testing.T) {
	n := New()

	body := `{
		"id": "wh_003",
		"event": "routing_form_submission.created",
		"payload": {"scheduled_event": {"uri": ""}}
	}`

	ev, err := n.NormalizeScheduling([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, domain.KindUnhandled, ev.Kind)
	assert.Equal(t, "wh_003", ev.DeliveryID)
	assert.Equal(t, "routing_form_submission.created", ev.RawEventType)
}

func TestNormalizeScheduling_ValidationErrors(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing event field",
			body: `{"payload": {"scheduled_event": {"uri": "https://x/scheduled_events/E1"}}}`,
		},
		{
			name: "created without correlation key",
			body: `{
				"event": "invitee.created",
				"payload": {
					"scheduled_event": {
						"uri": "https://x/scheduled_events/E1",
						"start_time": "2026-03-15T10:00:00Z",
						"end_time": "2026-03-15T11:00:00Z"
					},
					"tracking": {}
				}
			}`,
		},
		{
			name: "created without times",
			body: `{
				"event": "invitee.created",
				"payload": {
					"scheduled_event": {"uri": "https://x/scheduled_events/E1"},
					"tracking": {"utm_content": "corr-1"}
				}
			}`,
		},
		{
			name: "canceled without cancellation details",
			body: `{
				"event": "invitee.canceled",
				"payload": {"scheduled_event": {"uri": "https://x/scheduled_events/E1"}}
			}`,
		},
		{
			name: "missing scheduled event uri",
			body: `{
				"event": "invitee.rescheduled",
				"payload": {"scheduled_event": {}}
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.NormalizeScheduling([]byte(tt.body))
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNormalizeScheduling_MalformedJSON(t *testing.T) {
	n := New()

	_, err := n.NormalizeScheduling([]byte(`{"event": "invitee.created"`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNormalizeScheduling_DeterministicDeliveryIDFallback(t *testing.T) {
	n := New()

	body := `{
		"event": "invitee.rescheduled",
		"payload": {"scheduled_event": {
			"uri": "https://x/scheduled_events/E1",
			"start_time": "2026-03-16T10:00:00Z",
			"end_time": "2026-03-16T11:00:00Z"
		}}
	}`

	first, err := n.NormalizeScheduling([]byte(body))
	require.NoError(t, err)
	second, err := n.NormalizeScheduling([]byte(body))
	require.NoError(t, err)

	assert.Contains(t, first.DeliveryID, "sha256:")
	assert.Equal(t, first.DeliveryID, second.DeliveryID)
}

func TestNormalizeScheduling_MalformedCampaignIsNotFatal(t *testing.T) {
	n := New()

	body := `{
		"event": "invitee.created",
		"payload": {
			"scheduled_event": {
				"uri": "https://x/scheduled_events/E1",
				"status": "active",
				"start_time": "2026-03-15T10:00:00Z",
				"end_time": "2026-03-15T11:00:00Z"
			},
			"tracking": {"utm_content": "corr-1", "utm_campaign": "garbage"}
		}
	}`

	ev, err := n.NormalizeScheduling([]byte(body))
	require.NoError(t, err)
	assert.Zero(t, ev.BuilderID)
	assert.Zero(t, ev.ClientID)
	assert.Equal(t, "corr-1", ev.CorrelationKey)
}
