package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// AnexoRepository manages metadata for files attached to protocols.
// The file bytes live in storage, only the paths live here.
type AnexoRepository struct {
	db *sqlx.DB
}

// NewAnexoRepository constructs an AnexoRepository.
func NewAnexoRepository(db *sqlx.DB) *AnexoRepository {
	return &AnexoRepository{db: db}
}

// ListByProtocolo returns the attachments of one protocol, newest first.
func (r *AnexoRepository) ListByProtocolo(ctx context.Context, protocoloID string) ([]models.Anexo, error) {
	const query = `SELECT id, protocolo_id, movimentacao_id, nome_arquivo, caminho, mime_type, tamanho_bytes, usuario_id, created_at
        FROM anexos WHERE protocolo_id = $1 ORDER BY created_at DESC`
	var anexos []models.Anexo
	if err := r.db.SelectContext(ctx, &anexos, query, protocoloID); err != nil {
		return nil, fmt.Errorf("list anexos: %w", err)
	}
	return anexos, nil
}

// FindByID fetches one attachment.
func (r *AnexoRepository) FindByID(ctx context.Context, id string) (*models.Anexo, error) {
	const query = `SELECT id, protocolo_id, movimentacao_id, nome_arquivo, caminho, mime_type, tamanho_bytes, usuario_id, created_at
        FROM anexos WHERE id = $1`
	var anexo models.Anexo
	if err := r.db.GetContext(ctx, &anexo, query, id); err != nil {
		return nil, err
	}
	return &anexo, nil
}

// Create inserts attachment metadata.
func (r *AnexoRepository) Create(ctx context.Context, anexo *models.Anexo) error {
	if anexo.ID == "" {
		anexo.ID = uuid.NewString()
	}
	if anexo.CreatedAt.IsZero() {
		anexo.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO anexos (id, protocolo_id, movimentacao_id, nome_arquivo, caminho, mime_type, tamanho_bytes, usuario_id, created_at)
        VALUES (:id, :protocolo_id, :movimentacao_id, :nome_arquivo, :caminho, :mime_type, :tamanho_bytes, :usuario_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, anexo); err != nil {
		return fmt.Errorf("create anexo: %w", err)
	}
	return nil
}

// Delete removes attachment metadata.
func (r *AnexoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM anexos WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete anexo: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete anexo rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("anexo %s not found", id)
	}
	return nil
}
