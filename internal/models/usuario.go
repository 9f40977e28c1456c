package models

import "time"

// Perfil represents the available staff roles for the RBAC system.
type Perfil string

const (
	PerfilMaster  Perfil = "MASTER"
	PerfilAdmin   Perfil = "ADMIN"
	PerfilUsuario Perfil = "USUARIO"
)

// Usuario represents a staff member stored in the usuarios table.
type Usuario struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	SenhaHash    string     `db:"senha_hash" json:"-"`
	Nome         string     `db:"nome" json:"nome"`
	Perfil       Perfil     `db:"perfil" json:"perfil"`
	SetorID      *string    `db:"setor_id" json:"setor_id,omitempty"`
	Ativo        bool       `db:"ativo" json:"ativo"`
	UltimoAcesso *time.Time `db:"ultimo_acesso" json:"ultimo_acesso,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UsuarioFilter captures filtering criteria for listing staff accounts.
type UsuarioFilter struct {
	Perfil    *Perfil
	Ativo     *bool
	SetorID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
