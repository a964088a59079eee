package models

import "time"

// EnrollmentStatus represents the lifecycle of an inscricao.
type EnrollmentStatus string

// Enrollment states. Transitions out of AGUARDANDO_VALIDACAO happen only via
// the admin validation action and are final.
const (
	EnrollmentStatusAguardando EnrollmentStatus = "AGUARDANDO_VALIDACAO"
	EnrollmentStatusConfirmada EnrollmentStatus = "CONFIRMADA"
	EnrollmentStatusCancelada  EnrollmentStatus = "CANCELADA"
)

// SeatType classifies the quota an enrollment counts against.
type SeatType string

const (
	SeatTypeInterno SeatType = "INTERNO"
	SeatTypeExterno SeatType = "EXTERNO"
)

// Enrollment links a student to a course within a seat quota.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	AlunoID   string           `db:"aluno_id" json:"aluno_id"`
	CursoID   string           `db:"curso_id" json:"curso_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	TipoVaga  SeatType         `db:"tipo_vaga" json:"tipo_vaga"`
	Matricula *string          `db:"matricula" json:"matricula,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	AlunoNome  string `db:"aluno_nome" json:"aluno_nome"`
	AlunoEmail string `db:"aluno_email" json:"aluno_email"`
	CursoNome  string `db:"curso_nome" json:"curso_nome"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	AlunoID   string
	CursoID   string
	Status    EnrollmentStatus
	TipoVaga  SeatType
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Document is a file attached to an enrollment at request time.
type Document struct {
	ID           string    `db:"id" json:"id"`
	InscricaoID  string    `db:"inscricao_id" json:"inscricao_id"`
	StoragePath  string    `db:"storage_path" json:"-"`
	OriginalName string    `db:"nome_original" json:"nome_original"`
	ContentType  string    `db:"content_type" json:"content_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}
