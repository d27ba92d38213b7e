package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error)
	ListByStudent(ctx context.Context, studentID, period string) ([]models.Grade, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

type gradeSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
}

// CreateGradeRequest holds payload for registering a grade.
type CreateGradeRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	TeacherID string  `json:"teacher_id" validate:"required"`
	Type      string  `json:"type" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0,lte=100"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=100"`
	Period    string  `json:"period" validate:"required"`
	Notes     *string `json:"notes"`
}

// UpdateGradeRequest holds payload for correcting a grade.
type UpdateGradeRequest struct {
	Type   string  `json:"type" validate:"required"`
	Score  float64 `json:"score" validate:"gte=0,lte=100"`
	Weight float64 `json:"weight" validate:"gte=0,lte=100"`
	Period string  `json:"period" validate:"required"`
	Notes  *string `json:"notes"`
}

// GradeService handles grade registration and academic aggregation.
type GradeService struct {
	repo      gradeRepository
	subjects  gradeSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, subjects gradeSubjectRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// List returns grades and pagination metadata.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, *models.Pagination, error) {
	grades, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
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
	return grades, pagination, nil
}

// Create registers a new grade entry. Unrecognised type literals are rejected
// rather than defaulted, since the caller is entering new data.
func (s *GradeService) Create(ctx context.Context, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	gradeType, ok := models.ResolveGradeType(req.Type)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade type")
	}
	weight := req.Weight
	if weight == 0 {
		weight = gradeType.DefaultWeight()
	}
	grade := &models.Grade{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Type:      gradeType,
		Score:     req.Score,
		Weight:    weight,
		Period:    req.Period,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	return grade, nil
}

// Update corrects an existing grade entry.
func (s *GradeService) Update(ctx context.Context, id string, req UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	gradeType, ok := models.ResolveGradeType(req.Type)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade type")
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	grade.Type = gradeType
	grade.Score = req.Score
	grade.Weight = req.Weight
	grade.Period = req.Period
	grade.Notes = req.Notes
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return grade, nil
}

// Delete removes a grade entry.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

// AverageScore computes the arithmetic mean of the provided grades. An empty
// set averages to zero.
func (s *GradeService) AverageScore(grades []models.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Score
	}
	return sum / float64(len(grades))
}

// WeightedAverage computes a weight-adjusted average. Entries without an
// explicit weight use their type's default; stored type literals outside the
// vocabulary resolve leniently first, so legacy display-name entries keep
// their weight. When every weight is zero the computation degrades to the
// plain mean.
func (s *GradeService) WeightedAverage(grades []models.Grade) float64 {
	var weightedSum, totalWeight float64
	for _, g := range grades {
		weight := g.Weight
		if weight == 0 {
			weight = models.ParseGradeType(string(g.Type), g.Type).DefaultWeight()
		}
		weightedSum += g.Score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return s.AverageScore(grades)
	}
	return weightedSum / totalWeight
}

// Average applies the requested calculation scheme.
func (s *GradeService) Average(grades []models.Grade, scheme models.CalculationScheme) float64 {
	if scheme == models.SchemeWeighted {
		return s.WeightedAverage(grades)
	}
	return s.AverageScore(grades)
}

// Standing classifies an average on the 0-100 scale.
func (s *GradeService) Standing(average float64) models.AcademicStanding {
	switch {
	case average >= 90:
		return models.StandingExcellent
	case average >= 70:
		return models.StandingGood
	case average >= 60:
		return models.StandingPassing
	default:
		return models.StandingFailing
	}
}

// SubjectAverages groups grades by subject and averages each group. Subjects
// appear in the order their first grade was encountered.
func (s *GradeService) SubjectAverages(grades []models.Grade, scheme models.CalculationScheme) []models.SubjectAverage {
	bySubject := make(map[string][]models.Grade)
	order := make([]string, 0)
	for _, g := range grades {
		if _, seen := bySubject[g.SubjectID]; !seen {
			order = append(order, g.SubjectID)
		}
		bySubject[g.SubjectID] = append(bySubject[g.SubjectID], g)
	}
	out := make([]models.SubjectAverage, 0, len(order))
	for _, subjectID := range order {
		group := bySubject[subjectID]
		out = append(out, models.SubjectAverage{
			SubjectID: subjectID,
			Average:   s.Average(group, scheme),
			Count:     len(group),
		})
	}
	return out
}

// BestSubject returns the subject with the highest average. Ties keep the
// subject encountered first; an empty grade set yields nil.
func (s *GradeService) BestSubject(grades []models.Grade, scheme models.CalculationScheme) *models.SubjectAverage {
	averages := s.SubjectAverages(grades, scheme)
	if len(averages) == 0 {
		return nil
	}
	best := averages[0]
	for _, candidate := range averages[1:] {
		if candidate.Average > best.Average {
			best = candidate
		}
	}
	return &best
}

// ReportCard assembles per-subject averages with standings for a student and
// period. The overall average is the mean of the subject averages so every
// subject carries equal weight regardless of how many entries it has.
func (s *GradeService) ReportCard(ctx context.Context, studentID, period string, scheme models.CalculationScheme) (*models.ReportCard, error) {
	grades, err := s.repo.ListByStudent(ctx, studentID, period)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student grades")
	}

	averages := s.SubjectAverages(grades, scheme)
	rows := make([]models.ReportCardRow, 0, len(averages))
	var overallSum float64
	for _, avg := range averages {
		name := avg.SubjectID
		if s.subjects != nil {
			if subject, err := s.subjects.FindByID(ctx, avg.SubjectID); err == nil {
				name = subject.Name
			}
		}
		rows = append(rows, models.ReportCardRow{
			SubjectID:   avg.SubjectID,
			SubjectName: name,
			Average:     avg.Average,
			Standing:    s.Standing(avg.Average),
			Entries:     avg.Count,
		})
		overallSum += avg.Average
	}
	var overall float64
	if len(rows) > 0 {
		overall = overallSum / float64(len(rows))
	}
	return &models.ReportCard{
		StudentID: studentID,
		Period:    period,
		Subjects:  rows,
		Overall:   overall,
		Standing:  s.Standing(overall),
	}, nil
}

// PassedMinimum reports whether a grade individually clears the passing bar
// required for its type. Legacy type literals resolve leniently so old
// records classify the same as their canonical form.
func (s *GradeService) PassedMinimum(grade models.Grade) bool {
	gradeType := models.ParseGradeType(string(grade.Type), grade.Type)
	if !gradeType.RequiresPassingMinimum() {
		return true
	}
	return grade.Score >= gradeType.MinimumPassingScore()
}
