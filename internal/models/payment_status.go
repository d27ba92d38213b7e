package models

import "strings"

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "PENDIENTE"
	PaymentPaid        PaymentStatus = "PAGADO"
	PaymentPartial     PaymentStatus = "PARCIAL"
	PaymentOverdue     PaymentStatus = "VENCIDO"
	PaymentCancelled   PaymentStatus = "CANCELADO"
	PaymentRefunded    PaymentStatus = "REEMBOLSADO"
	PaymentScholarship PaymentStatus = "BECA"
	PaymentWaived      PaymentStatus = "CONDONADO"
)

type paymentStatusInfo struct {
	displayName string
	description string
	color       string
	completed   bool
}

var paymentStatusTable = map[PaymentStatus]paymentStatusInfo{
	PaymentPending:     {"Pendiente", "payment registered but not yet covered", "warning", false},
	PaymentPaid:        {"Pagado", "payment covered in full", "success", true},
	PaymentPartial:     {"Parcial", "payment partially covered", "info", false},
	PaymentOverdue:     {"Vencido", "payment past its due date", "danger", false},
	PaymentCancelled:   {"Cancelado", "payment voided by administration", "secondary", false},
	PaymentRefunded:    {"Reembolsado", "payment returned to the payer", "dark", false},
	PaymentScholarship: {"Beca", "payment covered by a scholarship", "primary", true},
	PaymentWaived:      {"Condonado", "payment forgiven by administration", "muted", true},
}

// paymentTransitions is the closed set of allowed next states.
// Cancelled, refunded, scholarship and waived payments are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentPartial, PaymentOverdue, PaymentCancelled, PaymentScholarship, PaymentWaived},
	PaymentPartial: {PaymentPaid, PaymentOverdue, PaymentCancelled},
	PaymentOverdue: {PaymentPaid, PaymentPartial, PaymentCancelled, PaymentWaived},
	PaymentPaid:    {PaymentRefunded},
}

// paymentStatusOrder fixes iteration order for listings and lookups.
var paymentStatusOrder = []PaymentStatus{
	PaymentPending, PaymentPaid, PaymentPartial, PaymentOverdue,
	PaymentCancelled, PaymentRefunded, PaymentScholarship, PaymentWaived,
}

// Valid returns true when the status is a supported value.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentStatusTable[s]
	return ok
}

// DisplayName returns the user-facing label.
func (s PaymentStatus) DisplayName() string {
	return paymentStatusTable[s].displayName
}

// Description returns the short explanation of the status.
func (s PaymentStatus) Description() string {
	return paymentStatusTable[s].description
}

// Color returns the UI color token associated with the status.
func (s PaymentStatus) Color() string {
	return paymentStatusTable[s].color
}

// Completed reports whether the payment is considered settled.
func (s PaymentStatus) Completed() bool {
	return paymentStatusTable[s].completed
}

// RequiresAction reports whether the payment still needs follow-up.
func (s PaymentStatus) RequiresAction() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentOverdue:
		return true
	default:
		return false
	}
}

// Final reports whether the status closes the payment without settling it
// through an ordinary payment (scholarship settles, so it is not final).
func (s PaymentStatus) Final() bool {
	switch s {
	case PaymentCancelled, PaymentRefunded, PaymentWaived:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving to next is allowed from s.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns a copy of the allowed next states for s.
func (s PaymentStatus) AllowedTransitions() []PaymentStatus {
	allowed := paymentTransitions[s]
	out := make([]PaymentStatus, len(allowed))
	copy(out, allowed)
	return out
}

// PaymentStatuses returns every supported status in display order.
func PaymentStatuses() []PaymentStatus {
	out := make([]PaymentStatus, len(paymentStatusOrder))
	copy(out, paymentStatusOrder)
	return out
}

// ParsePaymentStatus resolves a stored literal into a status. Records migrated
// from older schema versions may carry the display name instead of the tag, so
// resolution tries the tag first and then a case-insensitive display-name
// match before giving up and returning the fallback.
func ParsePaymentStatus(raw string, fallback PaymentStatus) PaymentStatus {
	if status, ok := resolvePaymentStatus(raw); ok {
		return status
	}
	return fallback
}

// ResolvePaymentStatus is the strict variant of ParsePaymentStatus: it reports
// failure instead of substituting a default.
func ResolvePaymentStatus(raw string) (PaymentStatus, bool) {
	return resolvePaymentStatus(raw)
}

func resolvePaymentStatus(raw string) (PaymentStatus, bool) {
	trimmed := strings.TrimSpace(raw)
	if status := PaymentStatus(trimmed); status.Valid() {
		return status, true
	}
	for _, status := range paymentStatusOrder {
		if strings.EqualFold(trimmed, status.DisplayName()) {
			return status, true
		}
	}
	return "", false
}
