package models

import "time"

// Status is a catalog entry for protocol states. Exactly one entry should
// be flagged Inicial; Final entries stop the overdue clock.
type Status struct {
	ID        string    `db:"id" json:"id"`
	Nome      string    `db:"nome" json:"nome"`
	Cor       string    `db:"cor" json:"cor"`
	Ordem     int       `db:"ordem" json:"ordem"`
	Inicial   bool      `db:"inicial" json:"inicial"`
	Final     bool      `db:"final" json:"final"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
