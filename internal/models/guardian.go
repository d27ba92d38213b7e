package models

import "time"

// GuardianLink ties a parent user to a student.
type GuardianLink struct {
	ID           string    `db:"id" json:"id"`
	ParentUserID string    `db:"parent_user_id" json:"parent_user_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Relationship string    `db:"relationship" json:"relationship"`
	Authorized   bool      `db:"authorized" json:"authorized"`
	Active       bool      `db:"active" json:"active"`
	LinkedAt     time.Time `db:"linked_at" json:"linked_at"`
}

// GuardianLinkDetail is a read-side view including parent and student names.
type GuardianLinkDetail struct {
	GuardianLink
	ParentName  string `db:"parent_name" json:"parent_name"`
	StudentName string `db:"student_name" json:"student_name"`
}

// GuardianLinkFilter scopes guardian link listings.
type GuardianLinkFilter struct {
	ParentUserID string
	StudentID    string
	Active       *bool
}
