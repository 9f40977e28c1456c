package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// SecretariaRepository manages persistence for secretarias.
type SecretariaRepository struct {
	db *sqlx.DB
}

// NewSecretariaRepository constructs a SecretariaRepository.
func NewSecretariaRepository(db *sqlx.DB) *SecretariaRepository {
	return &SecretariaRepository{db: db}
}

// List returns secretarias matching the filter, ordered by name.
func (r *SecretariaRepository) List(ctx context.Context, filter models.SecretariaFilter) ([]models.Secretaria, error) {
	query := `SELECT id, nome, sigla, ativo, created_at, updated_at FROM secretarias`
	args := []interface{}{}
	conditions := []string{}

	if filter.Ativo != nil {
		conditions = append(conditions, fmt.Sprintf("ativo = $%d", len(args)+1))
		args = append(args, *filter.Ativo)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(nome) LIKE $%d OR LOWER(sigla) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY nome ASC"

	var secretarias []models.Secretaria
	if err := r.db.SelectContext(ctx, &secretarias, query, args...); err != nil {
		return nil, fmt.Errorf("list secretarias: %w", err)
	}
	return secretarias, nil
}

// FindByID fetches one secretaria.
func (r *SecretariaRepository) FindByID(ctx context.Context, id string) (*models.Secretaria, error) {
	const query = `SELECT id, nome, sigla, ativo, created_at, updated_at FROM secretarias WHERE id = $1`
	var secretaria models.Secretaria
	if err := r.db.GetContext(ctx, &secretaria, query, id); err != nil {
		return nil, err
	}
	return &secretaria, nil
}

// Create inserts a secretaria.
func (r *SecretariaRepository) Create(ctx context.Context, secretaria *models.Secretaria) error {
	if secretaria.ID == "" {
		secretaria.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	secretaria.CreatedAt = now
	secretaria.UpdatedAt = now
	const query = `INSERT INTO secretarias (id, nome, sigla, ativo, created_at, updated_at)
        VALUES (:id, :nome, :sigla, :ativo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, secretaria); err != nil {
		return fmt.Errorf("create secretaria: %w", err)
	}
	return nil
}

// Update modifies a secretaria.
func (r *SecretariaRepository) Update(ctx context.Context, secretaria *models.Secretaria) error {
	secretaria.UpdatedAt = time.Now().UTC()
	const query = `UPDATE secretarias SET nome = :nome, sigla = :sigla, ativo = :ativo, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, secretaria); err != nil {
		return fmt.Errorf("update secretaria: %w", err)
	}
	return nil
}

// CountProtocolosAbertos counts protocols sitting in any setor of the
// secretaria whose status is not final. Used to block deactivation.
func (r *SecretariaRepository) CountProtocolosAbertos(ctx context.Context, secretariaID string) (int, error) {
	const query = `SELECT COUNT(*) FROM protocolos p
        JOIN setores st ON st.id = p.setor_id
        JOIN status s ON s.id = p.status_id
        WHERE st.secretaria_id = $1 AND s.final = false`
	var count int
	if err := r.db.GetContext(ctx, &count, query, secretariaID); err != nil {
		return 0, fmt.Errorf("count protocolos abertos: %w", err)
	}
	return count, nil
}
