package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentDerivedAmounts(t *testing.T) {
	p := Payment{}
	p.AmountScholarship = 100
	p.AmountOriginal = 1000
	p.AmountPaid = 500
	p.AmountSurcharge = 50

	assert.Equal(t, 950.0, p.TotalAmount())
	assert.Equal(t, 450.0, p.Balance())
}

func TestPaymentBalanceZeroWhenCovered(t *testing.T) {
	p := Payment{AmountOriginal: 1000, AmountSurcharge: 50, AmountPaid: 1050}
	assert.Equal(t, 1050.0, p.TotalAmount())
	assert.Equal(t, 0.0, p.Balance())
}

func TestPaymentDueAsOf(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	p := Payment{Status: PaymentPending, DueDate: due}

	assert.False(t, p.DueAsOf(due.AddDate(0, 0, -1)))
	assert.True(t, p.DueAsOf(due.AddDate(0, 0, 1)))

	p.Status = PaymentPaid
	assert.False(t, p.DueAsOf(due.AddDate(0, 0, 1)))

	p.Status = PaymentCancelled
	assert.False(t, p.DueAsOf(due.AddDate(0, 0, 1)))
}
