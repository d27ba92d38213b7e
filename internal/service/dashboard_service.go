package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
)

type dashboardStudentLookup interface {
	Get(ctx context.Context, id string) (*models.StudentDetail, error)
}

type dashboardReportCardProvider interface {
	ReportCard(ctx context.Context, studentID, period string, scheme models.CalculationScheme) (*models.ReportCard, error)
	BestSubject(grades []models.Grade, scheme models.CalculationScheme) *models.SubjectAverage
}

type dashboardGradeLister interface {
	ListByStudent(ctx context.Context, studentID, period string) ([]models.Grade, error)
}

type dashboardAttendanceProvider interface {
	SummarizeStudent(ctx context.Context, studentID string, from, to *time.Time) (*models.AttendanceSummary, error)
	Band(percentPresent float64) models.AttendanceBand
}

type dashboardPaymentProvider interface {
	Summarize(ctx context.Context, studentID string) (*models.PaymentSummary, error)
}

type dashboardCounters interface {
	CountActive(ctx context.Context) (students, teachers, groups int, err error)
	CountPaymentsByStatus(ctx context.Context) (map[models.PaymentStatus]int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	Scheme   models.CalculationScheme
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students   dashboardStudentLookup
	Grades     dashboardReportCardProvider
	GradeRows  dashboardGradeLister
	Attendance dashboardAttendanceProvider
	Payments   dashboardPaymentProvider
	Counters   dashboardCounters
	Metrics    *MetricsService
	Cache      *CacheService
	Logger     *zap.Logger
	Config     DashboardServiceConfig
}

// DashboardService composes consolidated overview payloads.
type DashboardService struct {
	students   dashboardStudentLookup
	grades     dashboardReportCardProvider
	gradeRows  dashboardGradeLister
	attendance dashboardAttendanceProvider
	payments   dashboardPaymentProvider
	counters   dashboardCounters
	metrics    *MetricsService
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	cfg        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Scheme == "" {
		cfg.Scheme = models.SchemeAverage
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:   params.Students,
		grades:     params.Grades,
		gradeRows:  params.GradeRows,
		attendance: params.Attendance,
		payments:   params.Payments,
		counters:   params.Counters,
		metrics:    params.Metrics,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
	}
}

// WithClock overrides the time source.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	if now != nil {
		s.now = now
	}
	return s
}

// StudentOverview assembles the student snapshot and indicates cache use.
func (s *DashboardService) StudentOverview(ctx context.Context, studentID, period string) (*models.StudentOverview, bool, error) {
	if studentID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	cacheKey := fmt.Sprintf("dash:student:%s:%s", studentID, period)
	if s.cache != nil {
		var cached models.StudentOverview
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	overview, err := s.composeStudentOverview(ctx, studentID, period)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, overview)
	return overview, false, nil
}

func (s *DashboardService) composeStudentOverview(ctx context.Context, studentID, period string) (*models.StudentOverview, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	reportCard, err := s.grades.ReportCard(ctx, studentID, period, s.cfg.Scheme)
	if err != nil {
		return nil, err
	}

	var best *models.SubjectAverage
	if s.gradeRows != nil {
		if grades, err := s.gradeRows.ListByStudent(ctx, studentID, period); err == nil {
			best = s.grades.BestSubject(grades, s.cfg.Scheme)
		} else {
			s.logger.Warn("best subject unavailable", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	attendanceSummary, err := s.attendance.SummarizeStudent(ctx, studentID, nil, nil)
	if err != nil {
		return nil, err
	}

	paymentSummary, err := s.payments.Summarize(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &models.StudentOverview{
		StudentID:      student.ID,
		StudentName:    student.FullName,
		Matricula:      student.Matricula,
		GroupName:      student.CurrentGroupName,
		Period:         period,
		ReportCard:     *reportCard,
		BestSubject:    best,
		Attendance:     *attendanceSummary,
		AttendanceBand: s.attendance.Band(attendanceSummary.PercentPresent),
		Payments:       *paymentSummary,
		GeneratedAt:    s.now().UTC(),
	}, nil
}

// AdminOverview assembles the institution-wide snapshot.
func (s *DashboardService) AdminOverview(ctx context.Context) (*models.AdminOverview, bool, error) {
	const cacheKey = "dash:admin"
	if s.cache != nil {
		var cached models.AdminOverview
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	if s.counters == nil {
		return nil, false, appErrors.Clone(appErrors.ErrInternal, "dashboard counters unavailable")
	}
	students, teachers, groups, err := s.counters.CountActive(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active records")
	}
	byStatus, err := s.counters.CountPaymentsByStatus(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count payments")
	}
	paymentsByState := make(map[string]int, len(byStatus))
	for status, count := range byStatus {
		paymentsByState[status.DisplayName()] = count
	}

	overview := &models.AdminOverview{
		ActiveStudents:  students,
		ActiveTeachers:  teachers,
		ActiveGroups:    groups,
		PaymentsByState: paymentsByState,
		System:          s.metrics.Snapshot(),
		GeneratedAt:     s.now().UTC(),
	}
	s.persistCache(ctx, cacheKey, overview)
	return overview, false, nil
}

// InvalidateStudent drops cached snapshots for a student.
func (s *DashboardService) InvalidateStudent(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dash:student:%s:*", studentID)); err != nil {
		s.logger.Warn("dashboard invalidate failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
