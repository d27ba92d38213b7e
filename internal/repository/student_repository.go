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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := "FROM students s LEFT JOIN group_members gm ON gm.student_id = s.id LEFT JOIN groups g ON g.id = gm.group_id AND g.active = true"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.GroupID != "" {
		conditions = append(conditions, fmt.Sprintf("gm.group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("s.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.matricula) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":   "s.full_name",
		"matricula":   "s.matricula",
		"enrolled_at": "s.enrolled_at",
		"created_at":  "s.created_at",
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.created_at"
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

	query := fmt.Sprintf(`SELECT s.id, s.matricula, s.full_name, s.email, s.phone, s.address, s.birth_date, s.guardian_name, s.guardian_phone, s.active, s.enrolled_at, s.created_at, s.updated_at,
        gm.group_id AS current_group_id, g.name AS current_group_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT s.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := `SELECT s.id, s.matricula, s.full_name, s.email, s.phone, s.address, s.birth_date, s.guardian_name, s.guardian_phone, s.active, s.enrolled_at, s.created_at, s.updated_at,
        gm.group_id AS current_group_id, g.name AS current_group_name
        FROM students s
        LEFT JOIN group_members gm ON gm.student_id = s.id
        LEFT JOIN groups g ON g.id = gm.group_id AND g.active = true
        WHERE s.id = $1`
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByMatricula checks if a student with the enrollment code exists,
// optionally excluding an ID.
func (r *StudentRepository) ExistsByMatricula(ctx context.Context, matricula string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE matricula = $1"
	args := []interface{}{matricula}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check matricula: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	if student.EnrolledAt.IsZero() {
		student.EnrolledAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, matricula, full_name, email, phone, address, birth_date, guardian_name, guardian_phone, active, enrolled_at, created_at, updated_at)
        VALUES (:id, :matricula, :full_name, :email, :phone, :address, :birth_date, :guardian_name, :guardian_phone, :active, :enrolled_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET matricula = :matricula, full_name = :full_name, email = :email, phone = :phone, address = :address, birth_date = :birth_date, guardian_name = :guardian_name, guardian_phone = :guardian_phone, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Archive marks a student as inactive. Student rows are never removed.
func (r *StudentRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE students SET active = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("archive student: %w", err)
	}
	return nil
}
