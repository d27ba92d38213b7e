package models

import "strings"

// GradeType classifies an individual grade entry.
type GradeType string

const (
	GradeTypeMidtermExam   GradeType = "EXAMEN_PARCIAL"
	GradeTypeFinalExam     GradeType = "EXAMEN_FINAL"
	GradeTypeQuiz          GradeType = "EXAMEN_RAPIDO"
	GradeTypeHomework      GradeType = "TAREA"
	GradeTypeProject       GradeType = "PROYECTO"
	GradeTypeParticipation GradeType = "PARTICIPACION"
	GradeTypePresentation  GradeType = "EXPOSICION"
	GradeTypePractice      GradeType = "PRACTICA"
	GradeTypeLab           GradeType = "LABORATORIO"
	GradeTypeEssay         GradeType = "ENSAYO"
	GradeTypePortfolio     GradeType = "PORTAFOLIO"
	GradeTypeMakeupExam    GradeType = "EXTRAORDINARIO"
)

type gradeTypeInfo struct {
	displayName   string
	abbreviation  string
	defaultWeight float64
	requiresMin   bool
	description   string
}

var gradeTypeTable = map[GradeType]gradeTypeInfo{
	GradeTypeMidtermExam:   {"Examen Parcial", "EP", 30, true, "written exam covering one period"},
	GradeTypeFinalExam:     {"Examen Final", "EF", 40, true, "written exam covering the full course"},
	GradeTypeQuiz:          {"Examen Rápido", "ER", 10, false, "short unannounced exam"},
	GradeTypeHomework:      {"Tarea", "TA", 10, false, "take-home assignment"},
	GradeTypeProject:       {"Proyecto", "PR", 25, true, "term project deliverable"},
	GradeTypeParticipation: {"Participación", "PA", 5, false, "in-class participation"},
	GradeTypePresentation:  {"Exposición", "EX", 15, false, "oral presentation"},
	GradeTypePractice:      {"Práctica", "PC", 10, false, "supervised practice session"},
	GradeTypeLab:           {"Laboratorio", "LB", 15, false, "laboratory session report"},
	GradeTypeEssay:         {"Ensayo", "EN", 10, false, "written essay"},
	GradeTypePortfolio:     {"Portafolio", "PF", 20, true, "collected coursework portfolio"},
	GradeTypeMakeupExam:    {"Extraordinario", "ET", 100, true, "makeup exam replacing the course grade"},
}

var gradeTypeOrder = []GradeType{
	GradeTypeMidtermExam, GradeTypeFinalExam, GradeTypeQuiz, GradeTypeHomework,
	GradeTypeProject, GradeTypeParticipation, GradeTypePresentation,
	GradeTypePractice, GradeTypeLab, GradeTypeEssay, GradeTypePortfolio,
	GradeTypeMakeupExam,
}

// Valid returns true when the type is a supported value.
func (t GradeType) Valid() bool {
	_, ok := gradeTypeTable[t]
	return ok
}

// DisplayName returns the user-facing label.
func (t GradeType) DisplayName() string {
	return gradeTypeTable[t].displayName
}

// Abbreviation returns the short code used in grade sheets.
func (t GradeType) Abbreviation() string {
	return gradeTypeTable[t].abbreviation
}

// DefaultWeight returns the suggested weight percentage for the type.
func (t GradeType) DefaultWeight() float64 {
	return gradeTypeTable[t].defaultWeight
}

// RequiresPassingMinimum reports whether the entry must individually reach
// the passing minimum.
func (t GradeType) RequiresPassingMinimum() bool {
	return gradeTypeTable[t].requiresMin
}

// Description returns the short explanation of the type.
func (t GradeType) Description() string {
	return gradeTypeTable[t].description
}

// Exam reports whether the entry is a formal examination.
func (t GradeType) Exam() bool {
	switch t {
	case GradeTypeMidtermExam, GradeTypeFinalExam, GradeTypeQuiz, GradeTypeMakeupExam:
		return true
	default:
		return false
	}
}

// ContinuousActivity reports whether the entry belongs to day-to-day work.
func (t GradeType) ContinuousActivity() bool {
	switch t {
	case GradeTypeHomework, GradeTypeParticipation, GradeTypePresentation, GradeTypePractice, GradeTypeLab, GradeTypeEssay:
		return true
	default:
		return false
	}
}

// MajorWork reports whether the entry is a heavyweight deliverable.
func (t GradeType) MajorWork() bool {
	switch t {
	case GradeTypeProject, GradeTypePortfolio:
		return true
	default:
		return false
	}
}

// MinimumPassingScore returns the passing threshold on the 0-100 scale.
// Major works demand a higher bar than exams and general work.
func (t GradeType) MinimumPassingScore() float64 {
	if t.MajorWork() {
		return 70
	}
	return 60
}

// GradeTypes returns every supported type in display order.
func GradeTypes() []GradeType {
	out := make([]GradeType, len(gradeTypeOrder))
	copy(out, gradeTypeOrder)
	return out
}

// ParseGradeType resolves a stored literal into a grade type. Older records
// may carry the display name or the grade-sheet abbreviation instead of the
// tag; resolution tries each in turn before returning the fallback.
func ParseGradeType(raw string, fallback GradeType) GradeType {
	if t, ok := resolveGradeType(raw); ok {
		return t
	}
	return fallback
}

// ResolveGradeType is the strict variant of ParseGradeType.
func ResolveGradeType(raw string) (GradeType, bool) {
	return resolveGradeType(raw)
}

func resolveGradeType(raw string) (GradeType, bool) {
	trimmed := strings.TrimSpace(raw)
	if t := GradeType(trimmed); t.Valid() {
		return t, true
	}
	for _, t := range gradeTypeOrder {
		if strings.EqualFold(trimmed, t.DisplayName()) {
			return t, true
		}
	}
	for _, t := range gradeTypeOrder {
		if strings.EqualFold(trimmed, t.Abbreviation()) {
			return t, true
		}
	}
	return "", false
}
