package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-adm/colegio-api/internal/models"
)

type stubStudentLookup struct {
	student *models.StudentDetail
}

func (s *stubStudentLookup) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	return s.student, nil
}

type stubReportCardProvider struct {
	card *models.ReportCard
	best *models.SubjectAverage
}

func (s *stubReportCardProvider) ReportCard(ctx context.Context, studentID, period string, scheme models.CalculationScheme) (*models.ReportCard, error) {
	return s.card, nil
}

func (s *stubReportCardProvider) BestSubject(grades []models.Grade, scheme models.CalculationScheme) *models.SubjectAverage {
	return s.best
}

type stubGradeLister struct{}

func (s *stubGradeLister) ListByStudent(ctx context.Context, studentID, period string) ([]models.Grade, error) {
	return nil, nil
}

type stubAttendanceProvider struct {
	summary *models.AttendanceSummary
}

func (s *stubAttendanceProvider) SummarizeStudent(ctx context.Context, studentID string, from, to *time.Time) (*models.AttendanceSummary, error) {
	return s.summary, nil
}

func (s *stubAttendanceProvider) Band(percentPresent float64) models.AttendanceBand {
	switch {
	case percentPresent >= 90:
		return models.AttendanceBandGood
	case percentPresent >= 80:
		return models.AttendanceBandWarning
	default:
		return models.AttendanceBandCritical
	}
}

type stubPaymentProvider struct {
	summary *models.PaymentSummary
}

func (s *stubPaymentProvider) Summarize(ctx context.Context, studentID string) (*models.PaymentSummary, error) {
	return s.summary, nil
}

type stubCounters struct {
	students, teachers, groups int
	byStatus                   map[models.PaymentStatus]int
}

func (s *stubCounters) CountActive(ctx context.Context) (int, int, int, error) {
	return s.students, s.teachers, s.groups, nil
}

func (s *stubCounters) CountPaymentsByStatus(ctx context.Context) (map[models.PaymentStatus]int, error) {
	return s.byStatus, nil
}

func newTestDashboard() *DashboardService {
	groupName := "3-A"
	return NewDashboardService(DashboardServiceParams{
		Students: &stubStudentLookup{student: &models.StudentDetail{
			Student:          models.Student{ID: "stu-1", FullName: "Luis Pérez", Matricula: "MAT-001"},
			CurrentGroupName: &groupName,
		}},
		Grades: &stubReportCardProvider{
			card: &models.ReportCard{StudentID: "stu-1", Period: "2026-1", Overall: 88, Standing: models.StandingGood},
			best: &models.SubjectAverage{SubjectID: "math", Average: 95, Count: 3},
		},
		GradeRows:  &stubGradeLister{},
		Attendance: &stubAttendanceProvider{summary: &models.AttendanceSummary{Total: 10, Present: 8, PercentPresent: 80}},
		Payments:   &stubPaymentProvider{summary: &models.PaymentSummary{TotalPaid: 2000, AccountStatus: models.AccountStatusCurrent}},
		Counters: &stubCounters{
			students: 120, teachers: 14, groups: 6,
			byStatus: map[models.PaymentStatus]int{models.PaymentPending: 3, models.PaymentPaid: 40},
		},
		Metrics: NewMetricsService(),
	})
}

func TestStudentOverviewComposesSnapshot(t *testing.T) {
	svc := newTestDashboard()
	stamp := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return stamp })

	overview, cached, err := svc.StudentOverview(context.Background(), "stu-1", "2026-1")
	require.NoError(t, err)
	assert.False(t, cached, "no cache configured")
	assert.Equal(t, "Luis Pérez", overview.StudentName)
	assert.Equal(t, "MAT-001", overview.Matricula)
	require.NotNil(t, overview.GroupName)
	assert.Equal(t, "3-A", *overview.GroupName)
	assert.InDelta(t, 88.0, overview.ReportCard.Overall, 0.0001)
	require.NotNil(t, overview.BestSubject)
	assert.Equal(t, "math", overview.BestSubject.SubjectID)
	assert.Equal(t, models.AttendanceBandWarning, overview.AttendanceBand)
	assert.Equal(t, models.AccountStatusCurrent, overview.Payments.AccountStatus)
	assert.Equal(t, stamp, overview.GeneratedAt)
}

func TestStudentOverviewRequiresID(t *testing.T) {
	svc := newTestDashboard()
	_, _, err := svc.StudentOverview(context.Background(), "", "2026-1")
	require.Error(t, err)
}

func TestAdminOverviewCounts(t *testing.T) {
	svc := newTestDashboard()
	overview, cached, err := svc.AdminOverview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 120, overview.ActiveStudents)
	assert.Equal(t, 14, overview.ActiveTeachers)
	assert.Equal(t, 6, overview.ActiveGroups)
	assert.Equal(t, 3, overview.PaymentsByState["Pendiente"])
	assert.Equal(t, 40, overview.PaymentsByState["Pagado"])
}
