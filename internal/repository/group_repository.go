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

// GroupRepository manages persistence for groups, their members and their
// subject assignments.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// List returns groups matching the provided filters.
func (r *GroupRepository) List(ctx context.Context, filter models.GroupFilter) ([]models.GroupDetail, int, error) {
	base := "FROM groups g LEFT JOIN teachers t ON t.id = g.homeroom_teacher_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Grade != "" {
		conditions = append(conditions, fmt.Sprintf("g.grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("g.section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("g.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(g.name) LIKE $%d OR LOWER(g.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "g.name",
		"code":       "g.code",
		"grade":      "g.grade",
		"created_at": "g.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "g.name"
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

	query := fmt.Sprintf(`SELECT g.id, g.code, g.name, g.grade, g.section, g.homeroom_teacher_id, g.active, g.created_at, g.updated_at,
        t.full_name AS homeroom_teacher_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var groups []models.GroupDetail
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}
	return groups, total, nil
}

// FindByID fetches a group detail by ID.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.GroupDetail, error) {
	const query = `SELECT g.id, g.code, g.name, g.grade, g.section, g.homeroom_teacher_id, g.active, g.created_at, g.updated_at,
        t.full_name AS homeroom_teacher_name
        FROM groups g LEFT JOIN teachers t ON t.id = g.homeroom_teacher_id
        WHERE g.id = $1`
	var detail models.GroupDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByCode checks group code uniqueness, optionally excluding an ID.
func (r *GroupRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM groups WHERE code = $1"
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
		return false, fmt.Errorf("check group code: %w", err)
	}
	return true, nil
}

// Create inserts a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	const query = `INSERT INTO groups (id, code, name, grade, section, homeroom_teacher_id, active, created_at, updated_at)
        VALUES (:id, :code, :name, :grade, :section, :homeroom_teacher_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update modifies an existing group.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE groups SET code = :code, name = :name, grade = :grade, section = :section, homeroom_teacher_id = :homeroom_teacher_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Archive marks a group as inactive.
func (r *GroupRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE groups SET active = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("archive group: %w", err)
	}
	return nil
}

// AddMember enrolls a student into a group. A student belongs to at most one
// active group, so any previous membership is removed first.
func (r *GroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add member: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE student_id = $1`, member.StudentID); err != nil {
		return fmt.Errorf("clear membership: %w", err)
	}
	const insert = `INSERT INTO group_members (id, group_id, student_id, created_at) VALUES (:id, :group_id, :student_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, member); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return tx.Commit()
}

// RemoveMember removes a student from a group.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, studentID string) error {
	const query = `DELETE FROM group_members WHERE group_id = $1 AND student_id = $2`
	res, err := r.db.ExecContext(ctx, query, groupID, studentID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListMembers returns the students enrolled in a group.
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]models.StudentDetail, error) {
	const query = `SELECT s.id, s.matricula, s.full_name, s.email, s.phone, s.address, s.birth_date, s.guardian_name, s.guardian_phone, s.active, s.enrolled_at, s.created_at, s.updated_at,
        gm.group_id AS current_group_id, g.name AS current_group_name
        FROM group_members gm
        JOIN students s ON s.id = gm.student_id
        JOIN groups g ON g.id = gm.group_id
        WHERE gm.group_id = $1
        ORDER BY s.full_name ASC`
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, groupID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return students, nil
}

// AssignSubject adds a subject to a group's curriculum.
func (r *GroupRepository) AssignSubject(ctx context.Context, link *models.GroupSubject) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO group_subjects (id, group_id, subject_id, created_at)
        VALUES (:id, :group_id, :subject_id, :created_at)
        ON CONFLICT (group_id, subject_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("assign subject: %w", err)
	}
	return nil
}

// UnassignSubject removes a subject from a group's curriculum.
func (r *GroupRepository) UnassignSubject(ctx context.Context, groupID, subjectID string) error {
	const query = `DELETE FROM group_subjects WHERE group_id = $1 AND subject_id = $2`
	res, err := r.db.ExecContext(ctx, query, groupID, subjectID)
	if err != nil {
		return fmt.Errorf("unassign subject: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListSubjects returns the subjects assigned to a group.
func (r *GroupRepository) ListSubjects(ctx context.Context, groupID string) ([]models.GroupSubjectDetail, error) {
	const query = `SELECT gs.id, gs.group_id, gs.subject_id, gs.created_at,
        sb.name AS subject_name, sb.code AS subject_code
        FROM group_subjects gs
        JOIN subjects sb ON sb.id = gs.subject_id
        WHERE gs.group_id = $1
        ORDER BY sb.name ASC`
	var links []models.GroupSubjectDetail
	if err := r.db.SelectContext(ctx, &links, query, groupID); err != nil {
		return nil, fmt.Errorf("list group subjects: %w", err)
	}
	return links, nil
}
