package models

import (
	"strings"
	"time"
)

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENTE"
	AttendanceAbsent  AttendanceStatus = "AUSENTE"
	AttendanceLate    AttendanceStatus = "RETARDO"
	AttendanceExcused AttendanceStatus = "JUSTIFICADO"
)

var attendanceStatusNames = map[AttendanceStatus]string{
	AttendancePresent: "Presente",
	AttendanceAbsent:  "Ausente",
	AttendanceLate:    "Retardo",
	AttendanceExcused: "Justificado",
}

var attendanceStatusOrder = []AttendanceStatus{
	AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused,
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	_, ok := attendanceStatusNames[s]
	return ok
}

// DisplayName returns the user-facing label.
func (s AttendanceStatus) DisplayName() string {
	return attendanceStatusNames[s]
}

// ParseAttendanceStatus resolves a stored literal. Records migrated from
// earlier schema versions may carry the display name; unresolvable values
// default to absent rather than failing the whole read.
func ParseAttendanceStatus(raw string) AttendanceStatus {
	trimmed := strings.TrimSpace(raw)
	if s := AttendanceStatus(trimmed); s.Valid() {
		return s
	}
	for _, s := range attendanceStatusOrder {
		if strings.EqualFold(trimmed, s.DisplayName()) {
			return s
		}
	}
	return AttendanceAbsent
}

// ResolveAttendanceStatus is the strict variant of ParseAttendanceStatus.
func ResolveAttendanceStatus(raw string) (AttendanceStatus, bool) {
	trimmed := strings.TrimSpace(raw)
	if s := AttendanceStatus(trimmed); s.Valid() {
		return s, true
	}
	for _, s := range attendanceStatusOrder {
		if strings.EqualFold(trimmed, s.DisplayName()) {
			return s, true
		}
	}
	return "", false
}

// Attendance represents a single attendance record for a student.
type Attendance struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	GroupID      string           `db:"group_id" json:"group_id"`
	SubjectID    string           `db:"subject_id" json:"subject_id"`
	Date         time.Time        `db:"date" json:"date"`
	Status       AttendanceStatus `db:"status" json:"status"`
	Notes        *string          `db:"notes" json:"notes,omitempty"`
	RegisteredAt time.Time        `db:"registered_at" json:"registered_at"`
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	StudentID string
	GroupID   string
	SubjectID string
	Status    *AttendanceStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AttendanceSummary aggregates counts for a set of attendance records.
type AttendanceSummary struct {
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Excused        int     `json:"excused"`
	PercentPresent float64 `json:"percent_present"`
}

// AttendanceBand labels the display coloring for a presence percentage.
type AttendanceBand string

const (
	AttendanceBandGood     AttendanceBand = "good"
	AttendanceBandWarning  AttendanceBand = "warning"
	AttendanceBandCritical AttendanceBand = "critical"
)
