package models

import "time"

// Secretaria is a municipal department.
type Secretaria struct {
	ID        string    `db:"id" json:"id"`
	Nome      string    `db:"nome" json:"nome"`
	Sigla     string    `db:"sigla" json:"sigla"`
	Ativo     bool      `db:"ativo" json:"ativo"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Setor is a sub-unit within a secretaria. Protocols sit "in" one setor.
type Setor struct {
	ID           string    `db:"id" json:"id"`
	SecretariaID string    `db:"secretaria_id" json:"secretaria_id"`
	Nome         string    `db:"nome" json:"nome"`
	Ativo        bool      `db:"ativo" json:"ativo"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SetorDetail carries the owning secretaria name for listings.
type SetorDetail struct {
	Setor
	SecretariaNome string `db:"secretaria_nome" json:"secretaria_nome"`
}

// SecretariaFilter constrains secretaria listings.
type SecretariaFilter struct {
	Ativo    *bool
	Search   string
	Page     int
	PageSize int
}

// SetorFilter constrains setor listings.
type SetorFilter struct {
	SecretariaID string
	Ativo        *bool
	Search       string
	Page         int
	PageSize     int
}
