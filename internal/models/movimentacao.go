package models

import "time"

// TipoMovimentacao enumerates the kinds of history entries.
type TipoMovimentacao string

const (
	MovimentacaoAbertura      TipoMovimentacao = "ABERTURA"
	MovimentacaoStatus        TipoMovimentacao = "STATUS"
	MovimentacaoTransferencia TipoMovimentacao = "TRANSFERENCIA"
)

// Movimentacao is an immutable, append-only ledger entry recording a status
// change or setor transfer on a protocol. No update or delete path exists.
type Movimentacao struct {
	ID               string           `db:"id" json:"id"`
	ProtocoloID      string           `db:"protocolo_id" json:"protocolo_id"`
	Tipo             TipoMovimentacao `db:"tipo" json:"tipo"`
	StatusAnteriorID *string          `db:"status_anterior_id" json:"status_anterior_id,omitempty"`
	StatusNovoID     *string          `db:"status_novo_id" json:"status_novo_id,omitempty"`
	SetorAnteriorID  *string          `db:"setor_anterior_id" json:"setor_anterior_id,omitempty"`
	SetorNovoID      *string          `db:"setor_novo_id" json:"setor_novo_id,omitempty"`
	Observacao       string           `db:"observacao" json:"observacao"`
	UsuarioID        *string          `db:"usuario_id" json:"usuario_id,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// MovimentacaoDetail joins display names for the timeline.
type MovimentacaoDetail struct {
	Movimentacao
	StatusAnteriorNome *string `db:"status_anterior_nome" json:"status_anterior_nome,omitempty"`
	StatusNovoNome     *string `db:"status_novo_nome" json:"status_novo_nome,omitempty"`
	SetorAnteriorNome  *string `db:"setor_anterior_nome" json:"setor_anterior_nome,omitempty"`
	SetorNovoNome      *string `db:"setor_novo_nome" json:"setor_novo_nome,omitempty"`
	UsuarioNome        *string `db:"usuario_nome" json:"usuario_nome,omitempty"`
}
