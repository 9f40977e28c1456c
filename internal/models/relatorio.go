package models

import "time"

// RelatorioFormato enumerates supported export formats.
type RelatorioFormato string

const (
	RelatorioCSV RelatorioFormato = "CSV"
	RelatorioPDF RelatorioFormato = "PDF"
)

// RelatorioStatus captures the lifecycle of an asynchronous export.
type RelatorioStatus string

const (
	RelatorioPendente    RelatorioStatus = "PENDENTE"
	RelatorioProcessando RelatorioStatus = "PROCESSANDO"
	RelatorioConcluido   RelatorioStatus = "CONCLUIDO"
	RelatorioFalha       RelatorioStatus = "FALHA"
)

// Relatorio is a queued protocol-listing export generated in background.
type Relatorio struct {
	ID            string           `db:"id" json:"id"`
	Formato       RelatorioFormato `db:"formato" json:"formato"`
	Filtro        []byte           `db:"filtro" json:"filtro,omitempty"`
	Status        RelatorioStatus  `db:"status" json:"status"`
	Arquivo       *string          `db:"arquivo" json:"-"`
	Erro          *string          `db:"erro" json:"erro,omitempty"`
	SolicitadoPor string           `db:"solicitado_por" json:"solicitado_por"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
	ConcluidoEm   *time.Time       `db:"concluido_em" json:"concluido_em,omitempty"`
	ExpiraEm      *time.Time       `db:"expira_em" json:"expira_em,omitempty"`
}
