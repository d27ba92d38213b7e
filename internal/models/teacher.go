package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID           string    `db:"id" json:"id"`
	EmployeeCode string    `db:"employee_code" json:"employee_code"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Specialty    *string   `db:"specialty" json:"specialty,omitempty"`
	Active       bool      `db:"active" json:"active"`
	HiredAt      time.Time `db:"hired_at" json:"hired_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
