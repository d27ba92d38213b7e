package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-adm/colegio-api/internal/models"
)

// PaymentRepository manages persistence for payment records.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, student_id, folio, type, amount_paid, amount_original, amount_surcharge, amount_scholarship, period, method, paid_at, due_date, status, notes, registered_by, created_at, updated_at`

// List returns payments matching the provided filters.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	base := "FROM payments"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Period != "" {
		conditions = append(conditions, fmt.Sprintf("period = $%d", len(args)+1))
		args = append(args, filter.Period)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"due_date":   "due_date",
		"paid_at":    "paid_at",
		"folio":      "folio",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d`, paymentColumns, base, column, order, size, offset)

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// ListByStudent returns every payment registered for a student.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE student_id = $1 ORDER BY due_date ASC, created_at ASC`, paymentColumns)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student payments: %w", err)
	}
	return payments, nil
}

// ListDueBefore returns unsettled payments whose due date has passed. Only
// states that can still move to overdue are considered.
func (r *PaymentRepository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE status IN ($1, $2) AND due_date < $3 ORDER BY due_date ASC`, paymentColumns)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, models.PaymentPending, models.PaymentPartial, cutoff); err != nil {
		return nil, fmt.Errorf("list due payments: %w", err)
	}
	return payments, nil
}

// FindByID fetches a payment by ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByFolio fetches a payment by its receipt folio.
func (r *PaymentRepository) FindByFolio(ctx context.Context, folio string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE folio = $1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, folio); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CountByFolioPrefix counts folios issued under a prefix, used to derive the
// next sequential folio number.
func (r *PaymentRepository) CountByFolioPrefix(ctx context.Context, prefix string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM payments WHERE folio LIKE $1`, prefix+"%"); err != nil {
		return 0, fmt.Errorf("count folio prefix: %w", err)
	}
	return count, nil
}

// CountByStatus tallies payments per lifecycle state.
func (r *PaymentRepository) CountByStatus(ctx context.Context) (map[models.PaymentStatus]int, error) {
	rows := []struct {
		Status models.PaymentStatus `db:"status"`
		Count  int                  `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM payments GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count payments by status: %w", err)
	}
	out := make(map[models.PaymentStatus]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// Create inserts a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	const query = `INSERT INTO payments (id, student_id, folio, type, amount_paid, amount_original, amount_surcharge, amount_scholarship, period, method, paid_at, due_date, status, notes, registered_by, created_at, updated_at)
        VALUES (:id, :student_id, :folio, :type, :amount_paid, :amount_original, :amount_surcharge, :amount_scholarship, :period, :method, :paid_at, :due_date, :status, :notes, :registered_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of a payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE payments SET amount_paid = :amount_paid, amount_surcharge = :amount_surcharge, amount_scholarship = :amount_scholarship, method = :method, paid_at = :paid_at, due_date = :due_date, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// UpdateStatus transitions a payment's status guarded by its current state,
// so concurrent sweeps cannot clobber a transition that already happened.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, paidAt *time.Time) error {
	const query = `UPDATE payments SET status = $3, paid_at = COALESCE($4, paid_at), updated_at = $5 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, paidAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SummarizeByStudent aggregates a student's payment history. Paid totals sum
// the received amount of completed records; pending totals sum the full
// derived amount of every record still requiring action.
func (r *PaymentRepository) SummarizeByStudent(ctx context.Context, studentID string) (*models.PaymentSummary, error) {
	const query = `SELECT
        COALESCE(SUM(CASE WHEN status IN ($2, $3, $4) THEN amount_paid ELSE 0 END), 0) AS total_paid,
        COALESCE(SUM(CASE WHEN status IN ($5, $6, $7) THEN amount_original + amount_surcharge - amount_scholarship ELSE 0 END), 0) AS total_pending
        FROM payments WHERE student_id = $1`
	var summary models.PaymentSummary
	err := r.db.GetContext(ctx, &summary, query, studentID,
		models.PaymentPaid, models.PaymentScholarship, models.PaymentWaived,
		models.PaymentPending, models.PaymentPartial, models.PaymentOverdue)
	if err != nil {
		return nil, fmt.Errorf("summarize payments: %w", err)
	}
	return &summary, nil
}
