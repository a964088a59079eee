package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAluno     UserRole = "ALUNO"
	RoleProfessor UserRole = "PROFESSOR"
	RoleCCA       UserRole = "CCA"
)

// User represents an application user stored in the usuarios table.
// Email is the login key; there is no separate username.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"nome_completo" json:"nome_completo"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
