package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-adm/colegio-api/internal/models"
)

type mockAttendanceRepo struct {
	records map[string]models.Attendance
	order   []string
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	var result []models.Attendance
	for _, id := range m.order {
		result = append(result, m.records[id])
	}
	return result, len(result), nil
}

func (m *mockAttendanceRepo) ListByStudent(ctx context.Context, studentID string, from, to *time.Time) ([]models.Attendance, error) {
	var result []models.Attendance
	for _, id := range m.order {
		record := m.records[id]
		if record.StudentID != studentID {
			continue
		}
		if from != nil && record.Date.Before(*from) {
			continue
		}
		if to != nil && record.Date.After(*to) {
			continue
		}
		result = append(result, record)
	}
	return result, nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	if record, ok := m.records[id]; ok {
		return &record, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) Create(ctx context.Context, record *models.Attendance) error {
	if m.records == nil {
		m.records = make(map[string]models.Attendance)
	}
	if record.ID == "" {
		record.ID = record.StudentID + record.Date.Format("20060102")
	}
	m.records[record.ID] = *record
	m.order = append(m.order, record.ID)
	return nil
}

func (m *mockAttendanceRepo) CreateBatch(ctx context.Context, records []models.Attendance) error {
	for i := range records {
		if err := m.Create(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, record *models.Attendance) error {
	if _, ok := m.records[record.ID]; !ok {
		return sql.ErrNoRows
	}
	m.records[record.ID] = *record
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

func marksOf(statuses ...models.AttendanceStatus) []models.Attendance {
	records := make([]models.Attendance, 0, len(statuses))
	for _, status := range statuses {
		records = append(records, models.Attendance{Status: status})
	}
	return records
}

func TestSummarizeEmptySet(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil)
	summary := svc.Summarize(nil)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.PercentPresent)
}

func TestSummarizeEightOfTenPresent(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil)
	records := marksOf(
		models.AttendancePresent, models.AttendancePresent, models.AttendancePresent,
		models.AttendancePresent, models.AttendancePresent, models.AttendancePresent,
		models.AttendancePresent, models.AttendancePresent,
		models.AttendanceAbsent, models.AttendanceLate,
	)
	summary := svc.Summarize(records)
	assert.Equal(t, 10, summary.Total)
	assert.Equal(t, 8, summary.Present)
	assert.Equal(t, 1, summary.Absent)
	assert.Equal(t, 1, summary.Late)
	assert.InDelta(t, 80.0, summary.PercentPresent, 0.0001)
	assert.Equal(t, models.AttendanceBandWarning, svc.Band(summary.PercentPresent))
}

func TestSummarizeLateDoesNotCountAsPresent(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil)
	summary := svc.Summarize(marksOf(models.AttendancePresent, models.AttendanceLate))
	assert.InDelta(t, 50.0, summary.PercentPresent, 0.0001)
}

func TestSummarizeResolvesLegacyLiterals(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil)
	records := []models.Attendance{
		{Status: models.AttendanceStatus("Presente")},
		{Status: models.AttendanceStatus("garbage")},
	}
	summary := svc.Summarize(records)
	assert.Equal(t, 1, summary.Present)
	assert.Equal(t, 1, summary.Absent, "unresolvable literals default to absent")
}

func TestBandBoundaries(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil)
	assert.Equal(t, models.AttendanceBandGood, svc.Band(90))
	assert.Equal(t, models.AttendanceBandWarning, svc.Band(89.9))
	assert.Equal(t, models.AttendanceBandWarning, svc.Band(80))
	assert.Equal(t, models.AttendanceBandCritical, svc.Band(79.9))
}

func TestRecordRejectsUnknownStatus(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, nil, nil)
	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1", GroupID: "grp-1", SubjectID: "sub-1",
		Date: time.Now(), Status: "PRESENTISIMO",
	})
	require.Error(t, err)
}

func TestRecordRollCall(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, nil, nil)
	records, err := svc.RecordRollCall(context.Background(), RollCallRequest{
		GroupID: "grp-1", SubjectID: "sub-1", Date: time.Now(),
		Entries: []RollCallEntry{
			{StudentID: "stu-1", Status: "PRESENTE"},
			{StudentID: "stu-2", Status: "Retardo"},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.AttendancePresent, records[0].Status)
	assert.Equal(t, models.AttendanceLate, records[1].Status, "display names resolve case-insensitively")
	assert.Len(t, repo.order, 2)
}

func TestSummarizeStudentRange(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, nil, nil)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 4; day++ {
		status := models.AttendancePresent
		if day == 3 {
			status = models.AttendanceAbsent
		}
		require.NoError(t, repo.Create(ctx, &models.Attendance{
			StudentID: "stu-1", GroupID: "grp-1", SubjectID: "sub-1",
			Date: base.AddDate(0, 0, day), Status: status,
		}))
	}
	from := base
	to := base.AddDate(0, 0, 2)
	summary, err := svc.SummarizeStudent(ctx, "stu-1", &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.InDelta(t, 100.0, summary.PercentPresent, 0.0001)
}
