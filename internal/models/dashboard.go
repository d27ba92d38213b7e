package models

import "time"

// StudentOverview is the consolidated academic and financial snapshot shown
// on the student dashboard.
type StudentOverview struct {
	StudentID      string            `json:"student_id"`
	StudentName    string            `json:"student_name"`
	Matricula      string            `json:"matricula"`
	GroupName      *string           `json:"group_name,omitempty"`
	Period         string            `json:"period"`
	ReportCard     ReportCard        `json:"report_card"`
	BestSubject    *SubjectAverage   `json:"best_subject,omitempty"`
	Attendance     AttendanceSummary `json:"attendance"`
	AttendanceBand AttendanceBand    `json:"attendance_band"`
	Payments       PaymentSummary    `json:"payments"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// AdminOverview summarises institution-wide counts for administrators.
type AdminOverview struct {
	ActiveStudents  int           `json:"active_students"`
	ActiveTeachers  int           `json:"active_teachers"`
	ActiveGroups    int           `json:"active_groups"`
	PaymentsByState map[string]int `json:"payments_by_state"`
	System          SystemMetrics `json:"system"`
	GeneratedAt     time.Time     `json:"generated_at"`
}
