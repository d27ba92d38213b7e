package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
)

type mockPaymentRepo struct {
	payments map[string]models.Payment
	order    []string
	summary  *models.PaymentSummary
}

func (m *mockPaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	var result []models.Payment
	for _, id := range m.order {
		result = append(result, m.payments[id])
	}
	return result, len(result), nil
}

func (m *mockPaymentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	var result []models.Payment
	for _, id := range m.order {
		if m.payments[id].StudentID == studentID {
			result = append(result, m.payments[id])
		}
	}
	return result, nil
}

func (m *mockPaymentRepo) ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.Payment, error) {
	var result []models.Payment
	for _, id := range m.order {
		payment := m.payments[id]
		if payment.Status != models.PaymentPending && payment.Status != models.PaymentPartial {
			continue
		}
		if payment.DueDate.Before(cutoff) {
			result = append(result, payment)
		}
	}
	return result, nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if payment, ok := m.payments[id]; ok {
		return &payment, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) FindByFolio(ctx context.Context, folio string) (*models.Payment, error) {
	for _, payment := range m.payments {
		if payment.Folio == folio {
			return &payment, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) CountByFolioPrefix(ctx context.Context, prefix string) (int, error) {
	count := 0
	for _, payment := range m.payments {
		if len(payment.Folio) >= len(prefix) && payment.Folio[:len(prefix)] == prefix {
			count++
		}
	}
	return count, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if m.payments == nil {
		m.payments = make(map[string]models.Payment)
	}
	if payment.ID == "" {
		payment.ID = fmt.Sprintf("pay-%d", len(m.payments)+1)
	}
	m.payments[payment.ID] = *payment
	m.order = append(m.order, payment.ID)
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	if _, ok := m.payments[payment.ID]; !ok {
		return sql.ErrNoRows
	}
	m.payments[payment.ID] = *payment
	return nil
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, paidAt *time.Time) error {
	payment, ok := m.payments[id]
	if !ok || payment.Status != from {
		return sql.ErrNoRows
	}
	payment.Status = to
	if paidAt != nil {
		payment.PaidAt = paidAt
	}
	m.payments[id] = payment
	return nil
}

func (m *mockPaymentRepo) SummarizeByStudent(ctx context.Context, studentID string) (*models.PaymentSummary, error) {
	if m.summary != nil {
		out := *m.summary
		return &out, nil
	}
	return &models.PaymentSummary{}, nil
}

func registerTestCharge(t *testing.T, svc *PaymentService, original, surcharge, scholarship float64) *models.Payment {
	t.Helper()
	payment, err := svc.Register(context.Background(), RegisterPaymentRequest{
		StudentID:         "stu-1",
		Type:              "COLEGIATURA",
		AmountOriginal:    original,
		AmountSurcharge:   surcharge,
		AmountScholarship: scholarship,
		Period:            "2026-03",
		DueDate:           time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		RegisteredBy:      "usr-1",
	})
	require.NoError(t, err)
	return payment
}

func TestRegisterGeneratesSequentialFolio(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "PAG").
		WithClock(func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) })

	first := registerTestCharge(t, svc, 1000, 0, 0)
	second := registerTestCharge(t, svc, 500, 0, 0)
	assert.Equal(t, "PAG-20260302-0001", first.Folio)
	assert.Equal(t, "PAG-20260302-0002", second.Folio)
	assert.Equal(t, models.PaymentPending, first.Status)
}

func TestRegisterRejectsScholarshipAboveCharge(t *testing.T) {
	svc := NewPaymentService(&mockPaymentRepo{}, NewMetricsService(), nil, nil, "")
	_, err := svc.Register(context.Background(), RegisterPaymentRequest{
		StudentID: "stu-1", Type: "COLEGIATURA",
		AmountOriginal: 100, AmountScholarship: 200,
		Period: "2026-03", DueDate: time.Now(), RegisteredBy: "usr-1",
	})
	require.Error(t, err)
}

func TestAmountDerivation(t *testing.T) {
	payment := models.Payment{AmountOriginal: 1000, AmountSurcharge: 50, AmountScholarship: 0, AmountPaid: 1050}
	assert.InDelta(t, 1050.0, payment.TotalAmount(), 0.0001)
	assert.InDelta(t, 0.0, payment.Balance(), 0.0001)
}

func TestRecordFullPaymentSettlesCharge(t *testing.T) {
	repo := &mockPaymentRepo{}
	paidStamp := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "").
		WithClock(func() time.Time { return paidStamp })

	charge := registerTestCharge(t, svc, 1000, 50, 0)
	settled, err := svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 1050, Method: "TRANSFERENCIA"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, settled.Status)
	assert.InDelta(t, 0.0, settled.Balance(), 0.0001)
	require.NotNil(t, settled.PaidAt)
	assert.Equal(t, paidStamp, *settled.PaidAt)
}

func TestRecordPartialPayment(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	charge := registerTestCharge(t, svc, 1000, 0, 0)
	partial, err := svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 400, Method: "EFECTIVO"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, partial.Status)
	assert.InDelta(t, 600.0, partial.Balance(), 0.0001)
	assert.Nil(t, partial.PaidAt)
}

func TestRecordPaymentAcceptsSuccessiveInstallments(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	charge := registerTestCharge(t, svc, 1000, 0, 0)
	first, err := svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 300, Method: "EFECTIVO"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, first.Status)

	second, err := svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 300, Method: "EFECTIVO"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, second.Status)
	assert.InDelta(t, 600.0, second.AmountPaid, 0.0001)
	assert.Nil(t, second.PaidAt)

	settled, err := svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 400, Method: "EFECTIVO"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, settled.Status)
	assert.InDelta(t, 0.0, settled.Balance(), 0.0001)
}

func TestRecordPaymentRejectsSettledCharge(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	charge := registerTestCharge(t, svc, 1000, 0, 0)
	_, err := svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 1000, Method: "TARJETA"})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 100, Method: "TARJETA"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
}

func TestRecordPaymentResolvesLegacyStoredStatus(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	require.NoError(t, repo.Create(context.Background(), &models.Payment{
		ID: "legacy", StudentID: "stu-1", AmountOriginal: 1000,
		Status: models.PaymentStatus("Pendiente"),
	}))

	partial, err := svc.RecordPayment(context.Background(), "legacy", RecordPaymentRequest{Amount: 400, Method: "EFECTIVO"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, partial.Status)
}

func TestTransitionResolvesLegacyStoredStatus(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	require.NoError(t, repo.Create(context.Background(), &models.Payment{
		ID: "legacy", StudentID: "stu-1", AmountOriginal: 1000,
		Status: models.PaymentStatus("Pendiente"),
	}))

	cancelled, err := svc.Transition(context.Background(), "legacy", "CANCELADO")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, cancelled.Status)
}

func TestTransitionPaidBackToPendingFails(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	charge := registerTestCharge(t, svc, 1000, 50, 0)
	_, err := svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 1050, Method: "TARJETA"})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), charge.ID, "PENDIENTE")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
}

func TestTransitionPaidToRefunded(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	charge := registerTestCharge(t, svc, 1000, 0, 0)
	_, err := svc.RecordPayment(context.Background(), charge.ID, RecordPaymentRequest{Amount: 1000, Method: "TARJETA"})
	require.NoError(t, err)

	refunded, err := svc.Transition(context.Background(), charge.ID, "REEMBOLSADO")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, refunded.Status)
}

func TestTransitionResolvesDisplayName(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	charge := registerTestCharge(t, svc, 1000, 0, 0)
	cancelled, err := svc.Transition(context.Background(), charge.ID, "Cancelado")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, cancelled.Status)
}

func TestTransitionConcurrentModificationConflicts(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")

	charge := registerTestCharge(t, svc, 1000, 0, 0)
	// Another writer moves the record between the read and the guarded write.
	stored := repo.payments[charge.ID]
	stored.Status = models.PaymentCancelled
	repo.payments[charge.ID] = stored

	// The service read Pending, the guard sees Cancelled.
	stale := models.Payment{ID: charge.ID, Status: models.PaymentPending}
	err := repo.UpdateStatus(context.Background(), stale.ID, stale.Status, models.PaymentPaid, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMarkOverdueSweepsDueCharges(t *testing.T) {
	repo := &mockPaymentRepo{}
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "").
		WithClock(func() time.Time { return now })

	require.NoError(t, repo.Create(context.Background(), &models.Payment{
		ID: "due", StudentID: "stu-1", Status: models.PaymentPending,
		DueDate: now.AddDate(0, 0, -5),
	}))
	require.NoError(t, repo.Create(context.Background(), &models.Payment{
		ID: "future", StudentID: "stu-1", Status: models.PaymentPending,
		DueDate: now.AddDate(0, 0, 5),
	}))

	moved, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Equal(t, models.PaymentOverdue, repo.payments["due"].Status)
	assert.Equal(t, models.PaymentPending, repo.payments["future"].Status)
}

func TestAccountStatusLabels(t *testing.T) {
	svc := NewPaymentService(&mockPaymentRepo{}, NewMetricsService(), nil, nil, "")
	assert.Equal(t, models.AccountStatusCurrent, svc.AccountStatus(5000, 0))
	assert.Equal(t, models.AccountStatusAcceptable, svc.AccountStatus(5000, 500))
	assert.Equal(t, models.AccountStatusPending, svc.AccountStatus(5000, 501))
	assert.Equal(t, models.AccountStatusPending, svc.AccountStatus(0, 100))
}

func TestSummarizeAttachesAccountStatus(t *testing.T) {
	repo := &mockPaymentRepo{summary: &models.PaymentSummary{TotalPaid: 2000, TotalPending: 100}}
	svc := NewPaymentService(repo, NewMetricsService(), nil, nil, "")
	summary, err := svc.Summarize(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusAcceptable, summary.AccountStatus)
}
