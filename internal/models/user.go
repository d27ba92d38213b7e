package models

import (
	"strings"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleDirector  UserRole = "DIRECTOR"
	RoleTeacher   UserRole = "TEACHER"
	RoleStudent   UserRole = "STUDENT"
	RoleParent    UserRole = "PARENT"
	RoleSecretary UserRole = "SECRETARY"
)

type userRoleInfo struct {
	displayName string
	description string
}

var userRoleTable = map[UserRole]userRoleInfo{
	RoleAdmin:     {"Administrador", "full access to every module"},
	RoleDirector:  {"Director", "academic and administrative oversight"},
	RoleTeacher:   {"Docente", "manages grades and attendance for assigned subjects"},
	RoleStudent:   {"Alumno", "consults own academic information"},
	RoleParent:    {"Padre de familia", "consults linked students"},
	RoleSecretary: {"Secretaria", "manages enrollment and payments"},
}

var userRoleOrder = []UserRole{
	RoleAdmin, RoleDirector, RoleTeacher, RoleStudent, RoleParent, RoleSecretary,
}

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	_, ok := userRoleTable[r]
	return ok
}

// DisplayName returns the user-facing label.
func (r UserRole) DisplayName() string {
	return userRoleTable[r].displayName
}

// Description returns the short explanation of the role.
func (r UserRole) Description() string {
	return userRoleTable[r].description
}

// Administrative reports whether the role belongs to the administration.
func (r UserRole) Administrative() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleSecretary:
		return true
	default:
		return false
	}
}

// CanManageGrades reports whether the role may create or edit grades.
func (r UserRole) CanManageGrades() bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleTeacher:
		return true
	default:
		return false
	}
}

// CanViewReports reports whether the role may access institutional reports.
func (r UserRole) CanViewReports() bool {
	switch r {
	case RoleStudent, RoleParent:
		return false
	default:
		return r.Valid()
	}
}

// UserRoles returns every supported role in display order.
func UserRoles() []UserRole {
	out := make([]UserRole, len(userRoleOrder))
	copy(out, userRoleOrder)
	return out
}

// ParseUserRole resolves a stored literal, falling back from the tag to a
// case-insensitive display-name match and finally to the provided default.
func ParseUserRole(raw string, fallback UserRole) UserRole {
	trimmed := strings.TrimSpace(raw)
	if r := UserRole(trimmed); r.Valid() {
		return r
	}
	for _, r := range userRoleOrder {
		if strings.EqualFold(trimmed, r.DisplayName()) {
			return r
		}
	}
	return fallback
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
