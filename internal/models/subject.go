package models

import "time"

// Subject represents an academic subject.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Credits     int       `db:"credits" json:"credits"`
	WeeklyHours int       `db:"weekly_hours" json:"weekly_hours"`
	Semester    string    `db:"semester" json:"semester"`
	TeacherID   *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail extends Subject with optional teacher information.
type SubjectDetail struct {
	Subject
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	Semester  string
	TeacherID string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
