package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]models.Student
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var result []models.StudentDetail
	for _, student := range m.students {
		result = append(result, models.StudentDetail{Student: student})
	}
	return result, len(result), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if student, ok := m.students[id]; ok {
		return &models.StudentDetail{Student: student}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByMatricula(ctx context.Context, matricula string, excludeID string) (bool, error) {
	for _, student := range m.students {
		if student.Matricula == matricula && student.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = fmt.Sprintf("stu-%d", len(m.students)+1)
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Archive(ctx context.Context, id string) error {
	student, ok := m.students[id]
	if !ok {
		return sql.ErrNoRows
	}
	student.Active = false
	m.students[id] = student
	return nil
}

func validStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		Matricula: "MAT-100",
		FullName:  "Sofía Hernández",
		Email:     "sofia@colegio.mx",
		BirthDate: time.Date(2012, 5, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateStudent(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.True(t, student.Active)
}

func TestCreateStudentDuplicateMatricula(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	ctx := context.Background()
	_, err := svc.Create(ctx, validStudentRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validStudentRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestGetStudentNotFound(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil)
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestArchiveStudentKeepsRecord(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	ctx := context.Background()
	student, err := svc.Create(ctx, validStudentRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, student.ID))
	stored := repo.students[student.ID]
	assert.False(t, stored.Active)
	assert.Equal(t, "MAT-100", stored.Matricula)
}

func TestUpdateStudent(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	ctx := context.Background()
	student, err := svc.Create(ctx, validStudentRequest())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, student.ID, UpdateStudentRequest{
		Matricula: "MAT-100",
		FullName:  "Sofía Hernández López",
		BirthDate: student.BirthDate,
		Active:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sofía Hernández López", updated.FullName)
}
