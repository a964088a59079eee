package models

import "time"

// ProfessorProfile holds professor data linked one-to-one to a user.
type ProfessorProfile struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	SIAPE     string     `db:"siape" json:"siape"`
	CPF       string     `db:"cpf" json:"cpf"`
	BirthDate *time.Time `db:"data_nascimento" json:"data_nascimento,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfessorDetail enriches the profile with account info.
type ProfessorDetail struct {
	ProfessorProfile
	Email    string `db:"email" json:"email"`
	FullName string `db:"nome_completo" json:"nome_completo"`
}
