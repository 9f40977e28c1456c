package models

import "time"

// Municipio is the singleton configuration record used to skin the portal.
// Theme colors are stored as hex strings; responses expose derived HSL
// tokens alongside.
type Municipio struct {
	ID            string    `db:"id" json:"id"`
	Nome          string    `db:"nome" json:"nome"`
	UF            string    `db:"uf" json:"uf"`
	Endereco      string    `db:"endereco" json:"endereco"`
	Telefone      string    `db:"telefone" json:"telefone"`
	Email         string    `db:"email" json:"email"`
	Site          string    `db:"site" json:"site"`
	LogoPath      string    `db:"logo_path" json:"-"`
	CorPrimaria   string    `db:"cor_primaria" json:"cor_primaria"`
	CorSecundaria string    `db:"cor_secundaria" json:"cor_secundaria"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// MunicipioView is the response shape including computed theme tokens and
// the public logo URL.
type MunicipioView struct {
	Municipio
	LogoURL          string `json:"logo_url,omitempty"`
	CorPrimariaHSL   string `json:"cor_primaria_hsl"`
	CorSecundariaHSL string `json:"cor_secundaria_hsl"`
}
