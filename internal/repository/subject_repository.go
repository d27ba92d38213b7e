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

// SubjectRepository manages persistence for academic subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching the provided filters.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error) {
	base := "FROM subjects sb LEFT JOIN teachers t ON t.id = sb.teacher_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("sb.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("sb.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("sb.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(sb.name) LIKE $%d OR LOWER(sb.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "sb.name",
		"code":       "sb.code",
		"semester":   "sb.semester",
		"credits":    "sb.credits",
		"created_at": "sb.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "sb.name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT sb.id, sb.code, sb.name, sb.description, sb.credits, sb.weekly_hours, sb.semester, sb.teacher_id, sb.active, sb.created_at, sb.updated_at,
        t.full_name AS teacher_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}

// FindByID fetches a subject detail by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	const query = `SELECT sb.id, sb.code, sb.name, sb.description, sb.credits, sb.weekly_hours, sb.semester, sb.teacher_id, sb.active, sb.created_at, sb.updated_at,
        t.full_name AS teacher_name
        FROM subjects sb LEFT JOIN teachers t ON t.id = sb.teacher_id
        WHERE sb.id = $1`
	var detail models.SubjectDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByCode checks subject code uniqueness, optionally excluding an ID.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now
	const query = `INSERT INTO subjects (id, code, name, description, credits, weekly_hours, semester, teacher_id, active, created_at, updated_at)
        VALUES (:id, :code, :name, :description, :credits, :weekly_hours, :semester, :teacher_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies an existing subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET code = :code, name = :name, description = :description, credits = :credits, weekly_hours = :weekly_hours, semester = :semester, teacher_id = :teacher_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Archive marks a subject as inactive.
func (r *SubjectRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE subjects SET active = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("archive subject: %w", err)
	}
	return nil
}
