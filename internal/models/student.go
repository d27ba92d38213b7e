package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID            string    `db:"id" json:"id"`
	Matricula     string    `db:"matricula" json:"matricula"`
	FullName      string    `db:"full_name" json:"full_name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	Address       string    `db:"address" json:"address"`
	BirthDate     time.Time `db:"birth_date" json:"birth_date"`
	GuardianName  string    `db:"guardian_name" json:"guardian_name"`
	GuardianPhone string    `db:"guardian_phone" json:"guardian_phone"`
	Active        bool      `db:"active" json:"active"`
	EnrolledAt    time.Time `db:"enrolled_at" json:"enrolled_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	GroupID   string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentDetail contains student information with group context.
type StudentDetail struct {
	Student
	CurrentGroupID   *string `db:"current_group_id" json:"current_group_id,omitempty"`
	CurrentGroupName *string `db:"current_group_name" json:"current_group_name,omitempty"`
}
