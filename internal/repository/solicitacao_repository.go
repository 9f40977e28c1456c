package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// SolicitacaoRepository manages the catalog of request types and their
// required documents.
type SolicitacaoRepository struct {
	db *sqlx.DB
}

// NewSolicitacaoRepository constructs a SolicitacaoRepository.
func NewSolicitacaoRepository(db *sqlx.DB) *SolicitacaoRepository {
	return &SolicitacaoRepository{db: db}
}

// List returns request types with their secretaria name.
func (r *SolicitacaoRepository) List(ctx context.Context, filter models.SolicitacaoFilter) ([]models.SolicitacaoDetail, error) {
	query := `SELECT so.id, so.secretaria_id, so.nome, so.descricao, so.prazo_dias, so.ativo, so.created_at, so.updated_at, sec.nome AS secretaria_nome
        FROM solicitacoes so
        JOIN secretarias sec ON sec.id = so.secretaria_id`
	args := []interface{}{}
	conditions := []string{}

	if filter.SecretariaID != "" {
		conditions = append(conditions, fmt.Sprintf("so.secretaria_id = $%d", len(args)+1))
		args = append(args, filter.SecretariaID)
	}
	if filter.Ativo != nil {
		conditions = append(conditions, fmt.Sprintf("so.ativo = $%d", len(args)+1))
		args = append(args, *filter.Ativo)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(so.nome) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY so.nome ASC"

	var solicitacoes []models.SolicitacaoDetail
	if err := r.db.SelectContext(ctx, &solicitacoes, query, args...); err != nil {
		return nil, fmt.Errorf("list solicitacoes: %w", err)
	}
	return solicitacoes, nil
}

// FindByID fetches one request type with its secretaria name.
func (r *SolicitacaoRepository) FindByID(ctx context.Context, id string) (*models.SolicitacaoDetail, error) {
	const query = `SELECT so.id, so.secretaria_id, so.nome, so.descricao, so.prazo_dias, so.ativo, so.created_at, so.updated_at, sec.nome AS secretaria_nome
        FROM solicitacoes so
        JOIN secretarias sec ON sec.id = so.secretaria_id
        WHERE so.id = $1`
	var solicitacao models.SolicitacaoDetail
	if err := r.db.GetContext(ctx, &solicitacao, query, id); err != nil {
		return nil, err
	}
	return &solicitacao, nil
}

// Create inserts a request type.
func (r *SolicitacaoRepository) Create(ctx context.Context, solicitacao *models.Solicitacao) error {
	if solicitacao.ID == "" {
		solicitacao.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	solicitacao.CreatedAt = now
	solicitacao.UpdatedAt = now
	const query = `INSERT INTO solicitacoes (id, secretaria_id, nome, descricao, prazo_dias, ativo, created_at, updated_at)
        VALUES (:id, :secretaria_id, :nome, :descricao, :prazo_dias, :ativo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, solicitacao); err != nil {
		return fmt.Errorf("create solicitacao: %w", err)
	}
	return nil
}

// Update modifies a request type.
func (r *SolicitacaoRepository) Update(ctx context.Context, solicitacao *models.Solicitacao) error {
	solicitacao.UpdatedAt = time.Now().UTC()
	const query = `UPDATE solicitacoes SET secretaria_id = :secretaria_id, nome = :nome, descricao = :descricao, prazo_dias = :prazo_dias, ativo = :ativo, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, solicitacao); err != nil {
		return fmt.Errorf("update solicitacao: %w", err)
	}
	return nil
}

// Delete removes a request type together with its required documents.
func (r *SolicitacaoRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documentos_necessarios WHERE solicitacao_id = $1`, id); err != nil {
		return fmt.Errorf("delete documentos: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM solicitacoes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete solicitacao: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete solicitacao rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("solicitacao %s not found", id)
	}
	return tx.Commit()
}

// CountProtocolos counts protocols opened under the request type.
func (r *SolicitacaoRepository) CountProtocolos(ctx context.Context, solicitacaoID string) (int, error) {
	const query = `SELECT COUNT(*) FROM protocolos WHERE solicitacao_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, solicitacaoID); err != nil {
		return 0, fmt.Errorf("count protocolos: %w", err)
	}
	return count, nil
}

// ListDocumentos returns the required documents of one request type.
func (r *SolicitacaoRepository) ListDocumentos(ctx context.Context, solicitacaoID string) ([]models.DocumentoNecessario, error) {
	const query = `SELECT id, solicitacao_id, nome, obrigatorio, created_at
        FROM documentos_necessarios WHERE solicitacao_id = $1 ORDER BY nome ASC`
	var documentos []models.DocumentoNecessario
	if err := r.db.SelectContext(ctx, &documentos, query, solicitacaoID); err != nil {
		return nil, fmt.Errorf("list documentos: %w", err)
	}
	return documentos, nil
}

// CreateDocumento adds a required document to a request type.
func (r *SolicitacaoRepository) CreateDocumento(ctx context.Context, documento *models.DocumentoNecessario) error {
	if documento.ID == "" {
		documento.ID = uuid.NewString()
	}
	if documento.CreatedAt.IsZero() {
		documento.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO documentos_necessarios (id, solicitacao_id, nome, obrigatorio, created_at)
        VALUES (:id, :solicitacao_id, :nome, :obrigatorio, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, documento); err != nil {
		return fmt.Errorf("create documento: %w", err)
	}
	return nil
}

// UpdateDocumento changes the name or obligatory flag of a document.
func (r *SolicitacaoRepository) UpdateDocumento(ctx context.Context, documento *models.DocumentoNecessario) error {
	const query = `UPDATE documentos_necessarios SET nome = :nome, obrigatorio = :obrigatorio WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, documento)
	if err != nil {
		return fmt.Errorf("update documento: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update documento rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteDocumento removes a required document.
func (r *SolicitacaoRepository) DeleteDocumento(ctx context.Context, id string) error {
	const query = `DELETE FROM documentos_necessarios WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete documento: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete documento rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("documento %s not found", id)
	}
	return nil
}
