package models

import "time"

// Solicitacao is a catalog entry describing a kind of request citizens can
// file, owned by a secretaria and carrying a resolution deadline in days.
type Solicitacao struct {
	ID           string    `db:"id" json:"id"`
	SecretariaID string    `db:"secretaria_id" json:"secretaria_id"`
	Nome         string    `db:"nome" json:"nome"`
	Descricao    string    `db:"descricao" json:"descricao"`
	PrazoDias    int       `db:"prazo_dias" json:"prazo_dias"`
	Ativo        bool      `db:"ativo" json:"ativo"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SolicitacaoDetail joins the owning secretaria name.
type SolicitacaoDetail struct {
	Solicitacao
	SecretariaNome string `db:"secretaria_nome" json:"secretaria_nome"`
}

// DocumentoNecessario is a required document attached to a request type.
type DocumentoNecessario struct {
	ID            string    `db:"id" json:"id"`
	SolicitacaoID string    `db:"solicitacao_id" json:"solicitacao_id"`
	Nome          string    `db:"nome" json:"nome"`
	Obrigatorio   bool      `db:"obrigatorio" json:"obrigatorio"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SolicitacaoFilter constrains request-type listings.
type SolicitacaoFilter struct {
	SecretariaID string
	Ativo        *bool
	Search       string
	Page         int
	PageSize     int
}
