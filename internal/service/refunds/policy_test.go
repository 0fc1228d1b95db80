package refunds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-WebhookService/internal/domain"
)

func TestPolicy_Evaluate(t *testing.T) {
	policy := Policy{FullRefundHours: 24, PartialRefundPercent: 50}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name        string
		cancelledBy domain.CancelActor
		startTime   *time.Time
		amount      int64
		want        Decision
	}{
		{
			name:        "builder cancellation always full refund",
			cancelledBy: domain.CancelledByBuilder,
			startTime:   at(time.Hour),
			amount:      10000,
			want:        Decision{Policy: PolicyFull, AmountMinor: 10000},
		},
		{
			name:        "system cancellation always full refund",
			cancelledBy: domain.CancelledBySystem,
			startTime:   at(-time.Hour),
			amount:      10000,
			want:        Decision{Policy: PolicyFull, AmountMinor: 10000},
		},
		{
			name:        "client cancellation outside window full refund",
			cancelledBy: domain.CancelledByClient,
			startTime:   at(48 * time.Hour),
			amount:      10000,
			want:        Decision{Policy: PolicyFull, AmountMinor: 10000},
		},
		{
			name:        "client cancellation exactly at window boundary full refund",
			cancelledBy: domain.CancelledByClient,
			startTime:   at(24 * time.Hour),
			amount:      10000,
			want:        Decision{Policy: PolicyFull, AmountMinor: 10000},
		},
		{
			name:        "client cancellation inside window partial refund",
			cancelledBy: domain.CancelledByClient,
			startTime:   at(6 * time.Hour),
			amount:      10000,
			want:        Decision{Policy: PolicyPartial, AmountMinor: 5000},
		},
		{
			name:        "client cancellation after session start no refund",
			cancelledBy: domain.CancelledByClient,
			startTime:   at(-time.Hour),
			amount:      10000,
			want:        Decision{Policy: PolicyNone},
		},
		{
			name:        "missing start time resolved in favor of client",
			cancelledBy: domain.CancelledByClient,
			startTime:   nil,
			amount:      10000,
			want:        Decision{Policy: PolicyFull, AmountMinor: 10000},
		},
		{
			name:        "partial amount rounds down",
			cancelledBy: domain.CancelledByClient,
			startTime:   at(6 * time.Hour),
			amount:      999,
			want:        Decision{Policy: PolicyPartial, AmountMinor: 499},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Evaluate(tt.cancelledBy, tt.startTime, now, tt.amount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_Evaluate_ZeroPartialPercent(t *testing.T) {
	policy := Policy{FullRefundHours: 24, PartialRefundPercent: 0}
	now := time.Now()
	start := now.Add(6 * time.Hour)

	got := policy.Evaluate(domain.CancelledByClient, &start, now, 10000)
	assert.Equal(t, Decision{Policy: PolicyNone}, got)
}
