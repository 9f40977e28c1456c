package models

import "time"

// Anexo is a file attached to a protocol, optionally tied to the
// movimentacao created in the same tramitação step.
type Anexo struct {
	ID             string    `db:"id" json:"id"`
	ProtocoloID    string    `db:"protocolo_id" json:"protocolo_id"`
	MovimentacaoID *string   `db:"movimentacao_id" json:"movimentacao_id,omitempty"`
	NomeArquivo    string    `db:"nome_arquivo" json:"nome_arquivo"`
	Caminho        string    `db:"caminho" json:"-"`
	MimeType       string    `db:"mime_type" json:"mime_type"`
	TamanhoBytes   int64     `db:"tamanho_bytes" json:"tamanho_bytes"`
	UsuarioID      *string   `db:"usuario_id" json:"usuario_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// AnexoView augments an Anexo with a signed download token.
type AnexoView struct {
	Anexo
	DownloadToken  string     `json:"download_token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
}
