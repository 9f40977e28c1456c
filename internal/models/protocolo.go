package models

import "time"

// Protocolo is a citizen-initiated administrative request tracked through
// secretarias/setores until resolution. Numero is unique per year in the
// form NNNNNN/YYYY; Seq is the global sequence used for public codes.
type Protocolo struct {
	ID            string     `db:"id" json:"id"`
	Seq           int64      `db:"seq" json:"-"`
	Numero        string     `db:"numero" json:"numero"`
	Ano           int        `db:"ano" json:"ano"`
	SolicitanteID string     `db:"solicitante_id" json:"solicitante_id"`
	SolicitacaoID string     `db:"solicitacao_id" json:"solicitacao_id"`
	StatusID      string     `db:"status_id" json:"status_id"`
	SetorID       string     `db:"setor_id" json:"setor_id"`
	Descricao     string     `db:"descricao" json:"descricao"`
	Prazo         *time.Time `db:"prazo" json:"prazo,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ProtocoloDetail joins the names a tracking screen needs in one row.
type ProtocoloDetail struct {
	Protocolo
	StatusNome           string `db:"status_nome" json:"status_nome"`
	StatusCor            string `db:"status_cor" json:"status_cor"`
	StatusFinal          bool   `db:"status_final" json:"status_final"`
	SetorNome            string `db:"setor_nome" json:"setor_nome"`
	SecretariaID         string `db:"secretaria_id" json:"secretaria_id"`
	SecretariaNome       string `db:"secretaria_nome" json:"secretaria_nome"`
	SolicitanteNome      string `db:"solicitante_nome" json:"solicitante_nome"`
	SolicitanteDocumento string `db:"solicitante_documento" json:"solicitante_documento"`
	SolicitacaoNome      string `db:"solicitacao_nome" json:"solicitacao_nome"`
}

// ProtocoloFilter captures the list-screen filters.
type ProtocoloFilter struct {
	StatusID     string
	SecretariaID string
	SetorID      string
	Documento    string
	Numero       string
	DataInicio   *time.Time
	DataFim      *time.Time
	Atrasados    bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
