package models

import "time"

// TipoPessoa distinguishes citizens from companies.
type TipoPessoa string

const (
	PessoaFisica   TipoPessoa = "FISICA"
	PessoaJuridica TipoPessoa = "JURIDICA"
)

// Solicitante is the citizen or company that files protocols,
// keyed by CPF/CNPJ stored as bare digits.
type Solicitante struct {
	ID          string     `db:"id" json:"id"`
	Documento   string     `db:"documento" json:"documento"`
	TipoPessoa  TipoPessoa `db:"tipo_pessoa" json:"tipo_pessoa"`
	Nome        string     `db:"nome" json:"nome"`
	Email       string     `db:"email" json:"email"`
	Telefone    string     `db:"telefone" json:"telefone"`
	CEP         string     `db:"cep" json:"cep"`
	Logradouro  string     `db:"logradouro" json:"logradouro"`
	Numero      string     `db:"numero" json:"numero"`
	Complemento string     `db:"complemento" json:"complemento"`
	Bairro      string     `db:"bairro" json:"bairro"`
	Cidade      string     `db:"cidade" json:"cidade"`
	UF          string     `db:"uf" json:"uf"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// SolicitanteFilter constrains requester listings.
type SolicitanteFilter struct {
	TipoPessoa *TipoPessoa
	Documento  string
	Search     string
	Page       int
	PageSize   int
}
