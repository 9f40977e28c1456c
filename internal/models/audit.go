package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin              = "LOGIN"
	AuditActionLogout             = "LOGOUT"
	AuditActionPasswordChange     = "PASSWORD_CHANGE"
	AuditActionPasswordReset      = "PASSWORD_RESET"
	AuditActionProtocoloCreate    = "PROTOCOLO_CREATE"
	AuditActionProtocoloUpdate    = "PROTOCOLO_UPDATE"
	AuditActionProtocoloDelete    = "PROTOCOLO_DELETE"
	AuditActionProtocoloTramitar  = "PROTOCOLO_TRAMITAR"
	AuditActionProtocoloAnexo     = "PROTOCOLO_ANEXO"
	AuditActionUsuarioCreate      = "USUARIO_CREATE"
	AuditActionUsuarioUpdate      = "USUARIO_UPDATE"
	AuditActionUsuarioDelete      = "USUARIO_DELETE"
	AuditActionMunicipioUpdate    = "MUNICIPIO_UPDATE"
	AuditActionRelatorioSolicitar = "RELATORIO_SOLICITAR"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UsuarioID  *string   `db:"usuario_id" json:"usuario_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
