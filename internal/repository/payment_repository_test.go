package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-adm/colegio-api/internal/models"
)

func paymentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "folio", "type", "amount_paid", "amount_original", "amount_surcharge", "amount_scholarship", "period", "method", "paid_at", "due_date", "status", "notes", "registered_by", "created_at", "updated_at"})
}

func TestPaymentRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	status := models.PaymentPending
	rows := paymentRows().
		AddRow("p1", "s1", "PAG-0001", models.PaymentTypeTuition, 0.0, 1500.0, 0.0, 0.0, "2026-03", "efectivo", nil, time.Now(), status, nil, "u1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE 1=1 AND status = $1")).
		WithArgs(status).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments")).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "PAG-0001", payments[0].Folio)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryFindByFolio(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := paymentRows().
		AddRow("p1", "s1", "PAG-0001", models.PaymentTypeTuition, 1500.0, 1500.0, 0.0, 0.0, "2026-03", "efectivo", time.Now(), time.Now(), models.PaymentPaid, nil, "u1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE folio = $1")).
		WithArgs("PAG-0001").
		WillReturnRows(rows)

	payment, err := repo.FindByFolio(context.Background(), "PAG-0001")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListDueBefore(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	cutoff := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	rows := paymentRows().
		AddRow("p1", "s1", "PAG-0001", models.PaymentTypeTuition, 0.0, 1500.0, 0.0, 0.0, "2026-03", "efectivo", nil, cutoff.AddDate(0, 0, -5), models.PaymentPending, nil, "u1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status IN ($1, $2) AND due_date < $3")).
		WithArgs(models.PaymentPending, models.PaymentPartial, cutoff).
		WillReturnRows(rows)

	payments, err := repo.ListDueBefore(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentPending, payments[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryUpdateStatusGuarded(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	paidAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET status = $3")).
		WithArgs("p1", models.PaymentPending, models.PaymentPaid, &paidAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "p1", models.PaymentPending, models.PaymentPaid, &paidAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryUpdateStatusMissesStaleState(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	// Another writer already moved the record; the guarded update touches
	// nothing and reports no rows.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET status = $3")).
		WithArgs("p1", models.PaymentPending, models.PaymentOverdue, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "p1", models.PaymentPending, models.PaymentOverdue, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositorySummarizeByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"total_paid", "total_pending"}).AddRow(3000.0, 250.0)
	mock.ExpectQuery("COALESCE").
		WithArgs("s1",
			models.PaymentPaid, models.PaymentScholarship, models.PaymentWaived,
			models.PaymentPending, models.PaymentPartial, models.PaymentOverdue).
		WillReturnRows(rows)

	summary, err := repo.SummarizeByStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, summary.TotalPaid)
	assert.Equal(t, 250.0, summary.TotalPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
