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

// SolicitanteRepository manages persistence for citizens and companies
// that open protocols.
type SolicitanteRepository struct {
	db *sqlx.DB
}

// NewSolicitanteRepository constructs a SolicitanteRepository.
func NewSolicitanteRepository(db *sqlx.DB) *SolicitanteRepository {
	return &SolicitanteRepository{db: db}
}

// List returns solicitantes matching the filter, paginated.
func (r *SolicitanteRepository) List(ctx context.Context, filter models.SolicitanteFilter) ([]models.Solicitante, int, error) {
	base := "FROM solicitantes"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.TipoPessoa != nil {
		conditions = append(conditions, fmt.Sprintf("tipo_pessoa = $%d", len(args)+1))
		args = append(args, *filter.TipoPessoa)
	}
	if filter.Documento != "" {
		conditions = append(conditions, fmt.Sprintf("documento = $%d", len(args)+1))
		args = append(args, filter.Documento)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(nome) LIKE $%d OR documento LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, documento, tipo_pessoa, nome, email, telefone, cep, logradouro, numero, complemento, bairro, cidade, uf, created_at, updated_at
        %s ORDER BY nome ASC LIMIT %d OFFSET %d`, base, size, offset)

	var solicitantes []models.Solicitante
	if err := r.db.SelectContext(ctx, &solicitantes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list solicitantes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count solicitantes: %w", err)
	}
	return solicitantes, total, nil
}

// FindByID fetches one solicitante.
func (r *SolicitanteRepository) FindByID(ctx context.Context, id string) (*models.Solicitante, error) {
	const query = `SELECT id, documento, tipo_pessoa, nome, email, telefone, cep, logradouro, numero, complemento, bairro, cidade, uf, created_at, updated_at
        FROM solicitantes WHERE id = $1`
	var solicitante models.Solicitante
	if err := r.db.GetContext(ctx, &solicitante, query, id); err != nil {
		return nil, err
	}
	return &solicitante, nil
}

// FindByDocumento fetches one solicitante by normalized CPF/CNPJ digits.
func (r *SolicitanteRepository) FindByDocumento(ctx context.Context, documento string) (*models.Solicitante, error) {
	const query = `SELECT id, documento, tipo_pessoa, nome, email, telefone, cep, logradouro, numero, complemento, bairro, cidade, uf, created_at, updated_at
        FROM solicitantes WHERE documento = $1`
	var solicitante models.Solicitante
	if err := r.db.GetContext(ctx, &solicitante, query, documento); err != nil {
		return nil, err
	}
	return &solicitante, nil
}

// Create inserts a solicitante.
func (r *SolicitanteRepository) Create(ctx context.Context, solicitante *models.Solicitante) error {
	if solicitante.ID == "" {
		solicitante.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	solicitante.CreatedAt = now
	solicitante.UpdatedAt = now
	const query = `INSERT INTO solicitantes (id, documento, tipo_pessoa, nome, email, telefone, cep, logradouro, numero, complemento, bairro, cidade, uf, created_at, updated_at)
        VALUES (:id, :documento, :tipo_pessoa, :nome, :email, :telefone, :cep, :logradouro, :numero, :complemento, :bairro, :cidade, :uf, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, solicitante); err != nil {
		return fmt.Errorf("create solicitante: %w", err)
	}
	return nil
}

// Update modifies a solicitante. The documento never changes.
func (r *SolicitanteRepository) Update(ctx context.Context, solicitante *models.Solicitante) error {
	solicitante.UpdatedAt = time.Now().UTC()
	const query = `UPDATE solicitantes SET nome = :nome, email = :email, telefone = :telefone, cep = :cep, logradouro = :logradouro, numero = :numero, complemento = :complemento, bairro = :bairro, cidade = :cidade, uf = :uf, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, solicitante); err != nil {
		return fmt.Errorf("update solicitante: %w", err)
	}
	return nil
}
