package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/colegio-adm/colegio-api/internal/models"
)

// StatsRepository serves the aggregate counts behind the admin dashboard.
type StatsRepository struct {
	db       *sqlx.DB
	payments *PaymentRepository
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB, payments *PaymentRepository) *StatsRepository {
	return &StatsRepository{db: db, payments: payments}
}

// CountActive returns the number of active students, teachers and groups.
func (r *StatsRepository) CountActive(ctx context.Context) (students, teachers, groups int, err error) {
	counts := struct {
		Students int `db:"students"`
		Teachers int `db:"teachers"`
		Groups   int `db:"groups"`
	}{}
	const query = `SELECT
        (SELECT COUNT(*) FROM students WHERE active = true) AS students,
        (SELECT COUNT(*) FROM teachers WHERE active = true) AS teachers,
        (SELECT COUNT(*) FROM groups WHERE active = true) AS groups`
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return 0, 0, 0, fmt.Errorf("count active records: %w", err)
	}
	return counts.Students, counts.Teachers, counts.Groups, nil
}

// CountPaymentsByStatus tallies payments per lifecycle state.
func (r *StatsRepository) CountPaymentsByStatus(ctx context.Context) (map[models.PaymentStatus]int, error) {
	return r.payments.CountByStatus(ctx)
}
