package models

import "time"

// Payment represents a charge registered against a student account. Totals
// and balances are always derived from the component amounts so the stored
// record can never drift from them.
type Payment struct {
	ID                string        `db:"id" json:"id"`
	StudentID         string        `db:"student_id" json:"student_id"`
	Folio             string        `db:"folio" json:"folio"`
	Type              PaymentType   `db:"type" json:"type"`
	AmountPaid        float64       `db:"amount_paid" json:"amount_paid"`
	AmountOriginal    float64       `db:"amount_original" json:"amount_original"`
	AmountSurcharge   float64       `db:"amount_surcharge" json:"amount_surcharge"`
	AmountScholarship float64       `db:"amount_scholarship" json:"amount_scholarship"`
	Period            string        `db:"period" json:"period"`
	Method            string        `db:"method" json:"method"`
	PaidAt            *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	DueDate           time.Time     `db:"due_date" json:"due_date"`
	Status            PaymentStatus `db:"status" json:"status"`
	Notes             *string       `db:"notes" json:"notes,omitempty"`
	RegisteredBy      string        `db:"registered_by" json:"registered_by"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// TotalAmount derives the amount owed: original plus surcharge minus the
// scholarship discount.
func (p Payment) TotalAmount() float64 {
	return p.AmountOriginal + p.AmountSurcharge - p.AmountScholarship
}

// Balance derives what is still owed after payments received.
func (p Payment) Balance() float64 {
	return p.TotalAmount() - p.AmountPaid
}

// DueAsOf reports whether an unsettled payment is past its due date.
func (p Payment) DueAsOf(now time.Time) bool {
	if p.Status.Completed() || p.Status.Final() {
		return false
	}
	return now.After(p.DueDate)
}

// PaymentFilter scopes payment listing queries.
type PaymentFilter struct {
	StudentID string
	Period    string
	Status    *PaymentStatus
	Type      *PaymentType
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Account status labels derived from payment aggregation.
const (
	AccountStatusCurrent    = "Al día"
	AccountStatusAcceptable = "Aceptable"
	AccountStatusPending    = "Pendiente"
)

// PaymentSummary aggregates a student's account.
type PaymentSummary struct {
	TotalPaid     float64 `db:"total_paid" json:"total_paid"`
	TotalPending  float64 `db:"total_pending" json:"total_pending"`
	AccountStatus string  `db:"-" json:"account_status"`
}
