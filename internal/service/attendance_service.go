package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	ListByStudent(ctx context.Context, studentID string, from, to *time.Time) ([]models.Attendance, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Create(ctx context.Context, record *models.Attendance) error
	CreateBatch(ctx context.Context, records []models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// RecordAttendanceRequest holds payload for a single attendance record.
type RecordAttendanceRequest struct {
	StudentID string    `json:"student_id" validate:"required"`
	GroupID   string    `json:"group_id" validate:"required"`
	SubjectID string    `json:"subject_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required"`
	Notes     *string   `json:"notes"`
}

// RollCallEntry is one student's mark inside a batch roll call.
type RollCallEntry struct {
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required"`
	Notes     *string `json:"notes"`
}

// RollCallRequest records attendance for a whole group in one call.
type RollCallRequest struct {
	GroupID   string          `json:"group_id" validate:"required"`
	SubjectID string          `json:"subject_id" validate:"required"`
	Date      time.Time       `json:"date" validate:"required"`
	Entries   []RollCallEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceService handles attendance registration and summaries.
type AttendanceService struct {
	repo      attendanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// List returns attendance records and pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// Record registers a single attendance mark. New data must name a known
// status; the lenient default applies only when reading stored records.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status, ok := models.ResolveAttendanceStatus(req.Status)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	record := &models.Attendance{
		StudentID: req.StudentID,
		GroupID:   req.GroupID,
		SubjectID: req.SubjectID,
		Date:      req.Date,
		Status:    status,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// RecordRollCall registers attendance for every entry of a group roll call.
func (s *AttendanceService) RecordRollCall(ctx context.Context, req RollCallRequest) ([]models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roll call payload")
	}
	records := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		status, ok := models.ResolveAttendanceStatus(entry.Status)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status for student "+entry.StudentID)
		}
		records = append(records, models.Attendance{
			StudentID: entry.StudentID,
			GroupID:   req.GroupID,
			SubjectID: req.SubjectID,
			Date:      req.Date,
			Status:    status,
			Notes:     entry.Notes,
		})
	}
	if err := s.repo.CreateBatch(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record roll call")
	}
	return records, nil
}

// UpdateStatus corrects an existing attendance mark.
func (s *AttendanceService) UpdateStatus(ctx context.Context, id, rawStatus string, notes *string) (*models.Attendance, error) {
	status, ok := models.ResolveAttendanceStatus(rawStatus)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	record.Status = status
	if notes != nil {
		record.Notes = notes
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}
	return record, nil
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}
	return nil
}

// Summarize counts a set of attendance records. The presence percentage
// counts strictly present marks over the total, and is 0 for an empty set.
func (s *AttendanceService) Summarize(records []models.Attendance) models.AttendanceSummary {
	summary := models.AttendanceSummary{Total: len(records)}
	for _, record := range records {
		switch record.Status {
		case models.AttendancePresent:
			summary.Present++
		case models.AttendanceAbsent:
			summary.Absent++
		case models.AttendanceLate:
			summary.Late++
		case models.AttendanceExcused:
			summary.Excused++
		default:
			// Stored literals outside the vocabulary resolve leniently.
			switch models.ParseAttendanceStatus(string(record.Status)) {
			case models.AttendancePresent:
				summary.Present++
			case models.AttendanceLate:
				summary.Late++
			case models.AttendanceExcused:
				summary.Excused++
			default:
				summary.Absent++
			}
		}
	}
	if summary.Total > 0 {
		summary.PercentPresent = float64(summary.Present) / float64(summary.Total) * 100
	}
	return summary
}

// SummarizeStudent loads and summarizes a student's attendance in a range.
func (s *AttendanceService) SummarizeStudent(ctx context.Context, studentID string, from, to *time.Time) (*models.AttendanceSummary, error) {
	records, err := s.repo.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student attendance")
	}
	summary := s.Summarize(records)
	return &summary, nil
}

// Band classifies a presence percentage for display coloring.
func (s *AttendanceService) Band(percentPresent float64) models.AttendanceBand {
	switch {
	case percentPresent >= 90:
		return models.AttendanceBandGood
	case percentPresent >= 80:
		return models.AttendanceBandWarning
	default:
		return models.AttendanceBandCritical
	}
}
