package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-adm/colegio-api/internal/models"
)

// GuardianRepository manages links between parent users and students.
type GuardianRepository struct {
	db *sqlx.DB
}

// NewGuardianRepository constructs a GuardianRepository.
func NewGuardianRepository(db *sqlx.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

const guardianSelect = `SELECT gl.id, gl.parent_user_id, gl.student_id, gl.relationship, gl.authorized, gl.active, gl.linked_at,
    u.full_name AS parent_name, s.full_name AS student_name
    FROM guardian_links gl
    JOIN users u ON u.id = gl.parent_user_id
    JOIN students s ON s.id = gl.student_id`

// List returns guardian links matching the provided filters.
func (r *GuardianRepository) List(ctx context.Context, filter models.GuardianLinkFilter) ([]models.GuardianLinkDetail, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ParentUserID != "" {
		conditions = append(conditions, fmt.Sprintf("gl.parent_user_id = $%d", len(args)+1))
		args = append(args, filter.ParentUserID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("gl.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("gl.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY gl.linked_at DESC", guardianSelect, strings.Join(conditions, " AND "))

	var links []models.GuardianLinkDetail
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		return nil, fmt.Errorf("list guardian links: %w", err)
	}
	return links, nil
}

// FindByID fetches a guardian link by ID.
func (r *GuardianRepository) FindByID(ctx context.Context, id string) (*models.GuardianLinkDetail, error) {
	query := guardianSelect + " WHERE gl.id = $1"
	var link models.GuardianLinkDetail
	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		return nil, err
	}
	return &link, nil
}

// Create inserts a new guardian link.
func (r *GuardianRepository) Create(ctx context.Context, link *models.GuardianLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.LinkedAt.IsZero() {
		link.LinkedAt = time.Now().UTC()
	}
	const query = `INSERT INTO guardian_links (id, parent_user_id, student_id, relationship, authorized, active, linked_at)
        VALUES (:id, :parent_user_id, :student_id, :relationship, :authorized, :active, :linked_at)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create guardian link: %w", err)
	}
	return nil
}

// Update modifies relationship and authorization flags on a link.
func (r *GuardianRepository) Update(ctx context.Context, link *models.GuardianLink) error {
	const query = `UPDATE guardian_links SET relationship = :relationship, authorized = :authorized, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("update guardian link: %w", err)
	}
	return nil
}

// Archive deactivates a guardian link without removing its history.
func (r *GuardianRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE guardian_links SET active = false WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("archive guardian link: %w", err)
	}
	return nil
}
