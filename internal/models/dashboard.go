package models

// StatusCount is one dashboard slice: protocols per status.
type StatusCount struct {
	StatusID string `db:"status_id" json:"status_id"`
	Nome     string `db:"nome" json:"nome"`
	Cor      string `db:"cor" json:"cor"`
	Total    int    `db:"total" json:"total"`
}

// SecretariaCount is one dashboard slice: protocols per secretaria.
type SecretariaCount struct {
	SecretariaID string `db:"secretaria_id" json:"secretaria_id"`
	Nome         string `db:"nome" json:"nome"`
	Total        int    `db:"total" json:"total"`
}

// MesCount buckets protocol openings per month (YYYY-MM).
type MesCount struct {
	Mes   string `db:"mes" json:"mes"`
	Total int    `db:"total" json:"total"`
}
