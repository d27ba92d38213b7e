package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-adm/colegio-api/internal/models"
)

type mockGradeRepo struct {
	grades map[string]models.Grade
	order  []string
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	var result []models.Grade
	for _, id := range m.order {
		g := m.grades[id]
		if filter.StudentID != "" && filter.StudentID != g.StudentID {
			continue
		}
		result = append(result, g)
	}
	return result, len(result), nil
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID, period string) ([]models.Grade, error) {
	var result []models.Grade
	for _, id := range m.order {
		g := m.grades[id]
		if g.StudentID != studentID {
			continue
		}
		if period != "" && g.Period != period {
			continue
		}
		result = append(result, g)
	}
	return result, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if g, ok := m.grades[id]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if m.grades == nil {
		m.grades = make(map[string]models.Grade)
	}
	if grade.ID == "" {
		grade.ID = "grade-" + grade.SubjectID
	}
	m.grades[grade.ID] = *grade
	m.order = append(m.order, grade.ID)
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	if _, ok := m.grades[grade.ID]; !ok {
		return sql.ErrNoRows
	}
	m.grades[grade.ID] = *grade
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.grades[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.grades, id)
	return nil
}

type mockSubjectLookup struct {
	names map[string]string
}

func (m *mockSubjectLookup) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	name, ok := m.names[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.SubjectDetail{Subject: models.Subject{ID: id, Name: name}}, nil
}

func gradesOf(scores ...float64) []models.Grade {
	grades := make([]models.Grade, 0, len(scores))
	for _, score := range scores {
		grades = append(grades, models.Grade{Type: models.GradeTypeMidtermExam, Score: score})
	}
	return grades
}

func TestAverageScoreEmptySetIsZero(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	assert.Equal(t, 0.0, svc.AverageScore(nil))
}

func TestAverageScoreMean(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	assert.InDelta(t, 80.0, svc.AverageScore(gradesOf(70, 80, 90)), 0.0001)
}

func TestWeightedAverageFallsBackToMeanWhenWeightless(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	grades := []models.Grade{
		{Type: models.GradeType("???"), Score: 60},
		{Type: models.GradeType("???"), Score: 100},
	}
	assert.InDelta(t, 80.0, svc.WeightedAverage(grades), 0.0001)
}

func TestWeightedAverageUsesTypeDefaults(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	grades := []models.Grade{
		{Type: models.GradeTypeMidtermExam, Score: 100},
		{Type: models.GradeTypeHomework, Score: 50},
	}
	mean := svc.AverageScore(grades)
	weighted := svc.WeightedAverage(grades)
	assert.Greater(t, weighted, mean, "exam weight should pull the average up")
}

func TestWeightedAverageResolvesLegacyTypeLiterals(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	grades := []models.Grade{
		{Type: models.GradeType("Examen Parcial"), Score: 100},
		{Type: models.GradeTypeHomework, Score: 50},
	}
	// Display-name entry resolves to EXAMEN_PARCIAL (weight 30) against
	// TAREA (weight 10): (100*30 + 50*10) / 40.
	assert.InDelta(t, 87.5, svc.WeightedAverage(grades), 0.0001)
}

func TestPassedMinimumResolvesLegacyTypeLiterals(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	legacyExam := models.Grade{Type: models.GradeType("Examen Parcial"), Score: 55}
	assert.False(t, svc.PassedMinimum(legacyExam), "legacy exam below the bar must not pass")
	assert.True(t, svc.PassedMinimum(models.Grade{Type: models.GradeType("Examen Parcial"), Score: 60}))
}

func TestStandingBands(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	assert.Equal(t, models.StandingExcellent, svc.Standing(90))
	assert.Equal(t, models.StandingGood, svc.Standing(89.9))
	assert.Equal(t, models.StandingGood, svc.Standing(70))
	assert.Equal(t, models.StandingPassing, svc.Standing(60))
	assert.Equal(t, models.StandingFailing, svc.Standing(59.9))
}

func TestSubjectAveragesKeepFirstAppearanceOrder(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	grades := []models.Grade{
		{SubjectID: "math", Type: models.GradeTypeMidtermExam, Score: 80},
		{SubjectID: "art", Type: models.GradeTypeMidtermExam, Score: 95},
		{SubjectID: "math", Type: models.GradeTypeMidtermExam, Score: 90},
	}
	averages := svc.SubjectAverages(grades, models.SchemeAverage)
	require.Len(t, averages, 2)
	assert.Equal(t, "math", averages[0].SubjectID)
	assert.InDelta(t, 85.0, averages[0].Average, 0.0001)
	assert.Equal(t, 2, averages[0].Count)
	assert.Equal(t, "art", averages[1].SubjectID)
}

func TestBestSubjectTieKeepsFirstEncountered(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	grades := []models.Grade{
		{SubjectID: "math", Type: models.GradeTypeMidtermExam, Score: 85},
		{SubjectID: "art", Type: models.GradeTypeMidtermExam, Score: 85},
	}
	best := svc.BestSubject(grades, models.SchemeAverage)
	require.NotNil(t, best)
	assert.Equal(t, "math", best.SubjectID)
}

func TestBestSubjectEmptyIsNil(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	assert.Nil(t, svc.BestSubject(nil, models.SchemeAverage))
}

func TestReportCardResolvesSubjectNames(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, &mockSubjectLookup{names: map[string]string{"math": "Matemáticas"}}, nil, nil)

	ctx := context.Background()
	_, err := svc.Create(ctx, CreateGradeRequest{
		StudentID: "stu-1", SubjectID: "math", TeacherID: "tea-1",
		Type: "EXAMEN_PARCIAL", Score: 88, Period: "2026-1",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateGradeRequest{
		StudentID: "stu-1", SubjectID: "hist", TeacherID: "tea-1",
		Type: "EXAMEN_PARCIAL", Score: 92, Period: "2026-1",
	})
	require.NoError(t, err)

	card, err := svc.ReportCard(ctx, "stu-1", "2026-1", models.SchemeAverage)
	require.NoError(t, err)
	require.Len(t, card.Subjects, 2)
	assert.Equal(t, "Matemáticas", card.Subjects[0].SubjectName)
	assert.Equal(t, "hist", card.Subjects[1].SubjectName, "unknown subjects keep their id")
	assert.InDelta(t, 90.0, card.Overall, 0.0001)
	assert.Equal(t, models.StandingExcellent, card.Standing)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil, nil)
	_, err := svc.Create(context.Background(), CreateGradeRequest{
		StudentID: "stu-1", SubjectID: "math", TeacherID: "tea-1",
		Type: "TRIMESTRAL", Score: 88, Period: "2026-1",
	})
	require.Error(t, err)
}

func TestCreateDefaultsWeightFromType(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, nil, nil, nil)
	grade, err := svc.Create(context.Background(), CreateGradeRequest{
		StudentID: "stu-1", SubjectID: "math", TeacherID: "tea-1",
		Type: "EXAMEN_PARCIAL", Score: 88, Period: "2026-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.GradeTypeMidtermExam.DefaultWeight(), grade.Weight)
}
