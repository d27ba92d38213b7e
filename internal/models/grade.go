package models

import "time"

// CalculationScheme represents how an average is computed.
type CalculationScheme string

const (
	// SchemeAverage computes the arithmetic mean of all scores.
	SchemeAverage CalculationScheme = "AVERAGE"
	// SchemeWeighted applies per-type default weights to scores. Weighting is
	// an explicit opt-in; the default behaviour is the plain mean.
	SchemeWeighted CalculationScheme = "WEIGHTED"
)

// AcademicStanding classifies a computed average.
type AcademicStanding string

const (
	StandingExcellent AcademicStanding = "Excelente"
	StandingGood      AcademicStanding = "Bueno"
	StandingPassing   AcademicStanding = "Regular"
	StandingFailing   AcademicStanding = "Reprobado"
)

// Grade represents a single grade entry. Scores live on the 0-100 scale.
type Grade struct {
	ID           string     `db:"id" json:"id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	SubjectID    string     `db:"subject_id" json:"subject_id"`
	TeacherID    string     `db:"teacher_id" json:"teacher_id"`
	Type         GradeType  `db:"type" json:"type"`
	Score        float64    `db:"score" json:"score"`
	Weight       float64    `db:"weight" json:"weight"`
	Period       string     `db:"period" json:"period"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	RegisteredAt time.Time  `db:"registered_at" json:"registered_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// GradeFilter scopes grade listing queries.
type GradeFilter struct {
	StudentID string
	SubjectID string
	TeacherID string
	Period    string
	Type      *GradeType
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// SubjectAverage pairs a subject reference with its computed average.
type SubjectAverage struct {
	SubjectID string  `json:"subject_id"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

// ReportCardRow summarises one subject on a student report card.
type ReportCardRow struct {
	SubjectID   string           `json:"subject_id"`
	SubjectName string           `json:"subject_name"`
	Average     float64          `json:"average"`
	Standing    AcademicStanding `json:"standing"`
	Entries     int              `json:"entries"`
}

// ReportCard contains per-subject averages for a student and period.
type ReportCard struct {
	StudentID string          `json:"student_id"`
	Period    string          `json:"period"`
	Subjects  []ReportCardRow `json:"subjects"`
	Overall   float64         `json:"overall"`
	Standing  AcademicStanding `json:"standing"`
}
