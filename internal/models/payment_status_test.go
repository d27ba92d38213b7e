package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatusTransitionTable(t *testing.T) {
	allowed := map[PaymentStatus][]PaymentStatus{
		PaymentPending:     {PaymentPaid, PaymentPartial, PaymentOverdue, PaymentCancelled, PaymentScholarship, PaymentWaived},
		PaymentPartial:     {PaymentPaid, PaymentOverdue, PaymentCancelled},
		PaymentOverdue:     {PaymentPaid, PaymentPartial, PaymentCancelled, PaymentWaived},
		PaymentPaid:        {PaymentRefunded},
		PaymentCancelled:   {},
		PaymentRefunded:    {},
		PaymentScholarship: {},
		PaymentWaived:      {},
	}

	for _, from := range PaymentStatuses() {
		allowedSet := make(map[PaymentStatus]bool)
		for _, to := range allowed[from] {
			allowedSet[to] = true
		}
		for _, to := range PaymentStatuses() {
			assert.Equalf(t, allowedSet[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestPaymentStatusTerminalStates(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentCancelled, PaymentRefunded, PaymentScholarship, PaymentWaived} {
		assert.Emptyf(t, status.AllowedTransitions(), "%s must have no outgoing transitions", status)
	}
}

func TestPaymentStatusPredicates(t *testing.T) {
	assert.True(t, PaymentPaid.Completed())
	assert.True(t, PaymentScholarship.Completed())
	assert.True(t, PaymentWaived.Completed())
	assert.False(t, PaymentPending.Completed())

	assert.True(t, PaymentPending.RequiresAction())
	assert.True(t, PaymentPartial.RequiresAction())
	assert.True(t, PaymentOverdue.RequiresAction())
	assert.False(t, PaymentPaid.RequiresAction())

	assert.True(t, PaymentCancelled.Final())
	assert.True(t, PaymentRefunded.Final())
	assert.True(t, PaymentWaived.Final())
	assert.False(t, PaymentScholarship.Final())
	assert.False(t, PaymentPaid.Final())
}

func TestParsePaymentStatusIdempotent(t *testing.T) {
	for _, status := range PaymentStatuses() {
		assert.Equal(t, status, ParsePaymentStatus(string(status), PaymentPending))
		assert.Equal(t, status, ParsePaymentStatus(status.DisplayName(), PaymentPending))
	}
}

func TestParsePaymentStatusCaseInsensitiveName(t *testing.T) {
	assert.Equal(t, PaymentOverdue, ParsePaymentStatus("vencido", PaymentPending))
	assert.Equal(t, PaymentRefunded, ParsePaymentStatus("REEMBOLSADO", PaymentPending))
	assert.Equal(t, PaymentPaid, ParsePaymentStatus("  Pagado ", PaymentPending))
}

func TestParsePaymentStatusFallback(t *testing.T) {
	assert.Equal(t, PaymentPending, ParsePaymentStatus("no-such-status", PaymentPending))

	_, ok := ResolvePaymentStatus("no-such-status")
	require.False(t, ok)
}

func TestPaymentStatusMetadata(t *testing.T) {
	for _, status := range PaymentStatuses() {
		assert.NotEmpty(t, status.DisplayName())
		assert.NotEmpty(t, status.Description())
		assert.NotEmpty(t, status.Color())
	}
}
