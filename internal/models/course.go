package models

import "time"

// CourseStatus represents the lifecycle of a course.
type CourseStatus string

// Course lifecycle states. CANCELADO is terminal and reachable only via
// explicit administrative action; the scheduler never sets it.
const (
	CourseStatusAgendado          CourseStatus = "AGENDADO"
	CourseStatusInscricoesAbertas CourseStatus = "INSCRICOES_ABERTAS"
	CourseStatusEmAndamento       CourseStatus = "EM_ANDAMENTO"
	CourseStatusFinalizado        CourseStatus = "FINALIZADO"
	CourseStatusCancelado         CourseStatus = "CANCELADO"
)

// Course defines capacity, scheduling windows and lifecycle status.
type Course struct {
	ID                    string       `db:"id" json:"id"`
	Nome                  string       `db:"nome" json:"nome"`
	Descricao             string       `db:"descricao" json:"descricao"`
	CargaHoraria          int          `db:"carga_horaria" json:"carga_horaria"`
	VagasInternas         int          `db:"vagas_internas" json:"vagas_internas"`
	VagasExternas         int          `db:"vagas_externas" json:"vagas_externas"`
	DataInicioInscricoes  time.Time    `db:"data_inicio_inscricoes" json:"data_inicio_inscricoes"`
	DataFimInscricoes     time.Time    `db:"data_fim_inscricoes" json:"data_fim_inscricoes"`
	DataInicioCurso       time.Time    `db:"data_inicio_curso" json:"data_inicio_curso"`
	DataFimCurso          time.Time    `db:"data_fim_curso" json:"data_fim_curso"`
	Status                CourseStatus `db:"status" json:"status"`
	CriadorID             string       `db:"criador_id" json:"criador_id"`
	CreatedAt             time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with creator info.
type CourseDetail struct {
	Course
	CriadorNome  string `db:"criador_nome" json:"criador_nome"`
	CriadorSIAPE string `db:"criador_siape" json:"criador_siape"`
}

// CourseFilter provides filters for listing courses.
type CourseFilter struct {
	Status    CourseStatus
	CriadorID string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StatusTransitionCounts reports rows touched by each scheduler pass.
type StatusTransitionCounts struct {
	Opened   int64     `json:"inscricoes_abertas"`
	Started  int64     `json:"em_andamento"`
	Finished int64     `json:"finalizados"`
	RanAt    time.Time `json:"ran_at"`
}

// Total returns the number of courses transitioned in a run.
func (c StatusTransitionCounts) Total() int64 {
	return c.Opened + c.Started + c.Finished
}
