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

// SetorRepository manages persistence for setores.
type SetorRepository struct {
	db *sqlx.DB
}

// NewSetorRepository constructs a SetorRepository.
func NewSetorRepository(db *sqlx.DB) *SetorRepository {
	return &SetorRepository{db: db}
}

// List returns setores with their secretaria name.
func (r *SetorRepository) List(ctx context.Context, filter models.SetorFilter) ([]models.SetorDetail, error) {
	query := `SELECT st.id, st.secretaria_id, st.nome, st.ativo, st.created_at, st.updated_at, sec.nome AS secretaria_nome
        FROM setores st
        JOIN secretarias sec ON sec.id = st.secretaria_id`
	args := []interface{}{}
	conditions := []string{}

	if filter.SecretariaID != "" {
		conditions = append(conditions, fmt.Sprintf("st.secretaria_id = $%d", len(args)+1))
		args = append(args, filter.SecretariaID)
	}
	if filter.Ativo != nil {
		conditions = append(conditions, fmt.Sprintf("st.ativo = $%d", len(args)+1))
		args = append(args, *filter.Ativo)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(st.nome) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sec.nome ASC, st.nome ASC"

	var setores []models.SetorDetail
	if err := r.db.SelectContext(ctx, &setores, query, args...); err != nil {
		return nil, fmt.Errorf("list setores: %w", err)
	}
	return setores, nil
}

// FindByID fetches one setor with its secretaria name.
func (r *SetorRepository) FindByID(ctx context.Context, id string) (*models.SetorDetail, error) {
	const query = `SELECT st.id, st.secretaria_id, st.nome, st.ativo, st.created_at, st.updated_at, sec.nome AS secretaria_nome
        FROM setores st
        JOIN secretarias sec ON sec.id = st.secretaria_id
        WHERE st.id = $1`
	var setor models.SetorDetail
	if err := r.db.GetContext(ctx, &setor, query, id); err != nil {
		return nil, err
	}
	return &setor, nil
}

// Create inserts a setor.
func (r *SetorRepository) Create(ctx context.Context, setor *models.Setor) error {
	if setor.ID == "" {
		setor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	setor.CreatedAt = now
	setor.UpdatedAt = now
	const query = `INSERT INTO setores (id, secretaria_id, nome, ativo, created_at, updated_at)
        VALUES (:id, :secretaria_id, :nome, :ativo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, setor); err != nil {
		return fmt.Errorf("create setor: %w", err)
	}
	return nil
}

// Update modifies a setor.
func (r *SetorRepository) Update(ctx context.Context, setor *models.Setor) error {
	setor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE setores SET secretaria_id = :secretaria_id, nome = :nome, ativo = :ativo, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, setor); err != nil {
		return fmt.Errorf("update setor: %w", err)
	}
	return nil
}

// CountProtocolosAbertos counts non-final protocols assigned to the setor.
func (r *SetorRepository) CountProtocolosAbertos(ctx context.Context, setorID string) (int, error) {
	const query = `SELECT COUNT(*) FROM protocolos p
        JOIN status s ON s.id = p.status_id
        WHERE p.setor_id = $1 AND s.final = false`
	var count int
	if err := r.db.GetContext(ctx, &count, query, setorID); err != nil {
		return 0, fmt.Errorf("count protocolos abertos: %w", err)
	}
	return count, nil
}
