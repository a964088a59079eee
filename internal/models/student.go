package models

import "time"

// Sex codes accepted on the student profile.
const (
	SexFeminino    = "F"
	SexMasculino   = "M"
	SexOutro       = "O"
	SexNaoInformar = "N"
)

// Issuing bodies accepted for identity documents.
const (
	OrgaoSSP    = "SSP"
	OrgaoSSPDS  = "SSPDS"
	OrgaoPC     = "PC"
	OrgaoDetran = "DETRAN"
	OrgaoIGP    = "IGP"
	OrgaoOutro  = "OUTRO"
)

// StudentProfile holds the aluno data linked one-to-one to a user.
type StudentProfile struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	BirthDate      *time.Time `db:"data_nascimento" json:"data_nascimento,omitempty"`
	Sex            string     `db:"sexo" json:"sexo"`
	CPF            *string    `db:"cpf" json:"cpf,omitempty"`
	IdentityNumber string     `db:"numero_identidade" json:"numero_identidade"`
	IssuingBody    string     `db:"orgao_expedidor" json:"orgao_expedidor"`
	IssuingStateID *int64     `db:"uf_expedidor_id" json:"uf_expedidor_id,omitempty"`
	BirthplaceID   *int64     `db:"naturalidade_id" json:"naturalidade_id,omitempty"`
	CEP            string     `db:"cep" json:"cep"`
	Street         string     `db:"logradouro" json:"logradouro"`
	AddressNumber  string     `db:"numero_endereco" json:"numero_endereco"`
	District       string     `db:"bairro" json:"bairro"`
	CityID         *int64     `db:"cidade_id" json:"cidade_id,omitempty"`
	MobilePhone    string     `db:"telefone_celular" json:"telefone_celular"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentProfileDetail enriches the profile with account info.
type StudentProfileDetail struct {
	StudentProfile
	Email    string `db:"email" json:"email"`
	FullName string `db:"nome_completo" json:"nome_completo"`
}
