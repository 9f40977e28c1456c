package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// MunicipioRepository reads and writes the singleton municipality record.
type MunicipioRepository struct {
	db *sqlx.DB
}

// NewMunicipioRepository constructs a MunicipioRepository.
func NewMunicipioRepository(db *sqlx.DB) *MunicipioRepository {
	return &MunicipioRepository{db: db}
}

// Get loads the municipality record. The table holds exactly one row.
func (r *MunicipioRepository) Get(ctx context.Context) (*models.Municipio, error) {
	const query = `SELECT id, nome, uf, endereco, telefone, email, site, logo_path, cor_primaria, cor_secundaria, updated_at
        FROM municipio LIMIT 1`
	var municipio models.Municipio
	if err := r.db.GetContext(ctx, &municipio, query); err != nil {
		return nil, err
	}
	return &municipio, nil
}

// Update overwrites the singleton record.
func (r *MunicipioRepository) Update(ctx context.Context, municipio *models.Municipio) error {
	municipio.UpdatedAt = time.Now().UTC()
	const query = `UPDATE municipio SET nome = :nome, uf = :uf, endereco = :endereco, telefone = :telefone, email = :email, site = :site, cor_primaria = :cor_primaria, cor_secundaria = :cor_secundaria, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, municipio); err != nil {
		return fmt.Errorf("update municipio: %w", err)
	}
	return nil
}

// UpdateLogo stores the path of the uploaded logo.
func (r *MunicipioRepository) UpdateLogo(ctx context.Context, id, logoPath string) error {
	const query = `UPDATE municipio SET logo_path = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, logoPath, time.Now().UTC()); err != nil {
		return fmt.Errorf("update logo: %w", err)
	}
	return nil
}
