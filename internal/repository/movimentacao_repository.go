package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// MovimentacaoRepository reads and appends the per-protocol movement
// ledger. Movements are never updated or deleted individually.
type MovimentacaoRepository struct {
	db *sqlx.DB
}

// NewMovimentacaoRepository constructs a MovimentacaoRepository.
func NewMovimentacaoRepository(db *sqlx.DB) *MovimentacaoRepository {
	return &MovimentacaoRepository{db: db}
}

// ListByProtocolo returns the full history of one protocol, oldest first,
// with the names of the statuses, setores and author resolved.
func (r *MovimentacaoRepository) ListByProtocolo(ctx context.Context, protocoloID string) ([]models.MovimentacaoDetail, error) {
	const query = `SELECT m.id, m.protocolo_id, m.tipo, m.status_anterior_id, m.status_novo_id, m.setor_anterior_id, m.setor_novo_id, m.observacao, m.usuario_id, m.created_at,
            sa.nome AS status_anterior_nome, sn.nome AS status_novo_nome,
            ta.nome AS setor_anterior_nome, tn.nome AS setor_novo_nome,
            u.nome AS usuario_nome
        FROM movimentacoes m
        LEFT JOIN status sa ON sa.id = m.status_anterior_id
        LEFT JOIN status sn ON sn.id = m.status_novo_id
        LEFT JOIN setores ta ON ta.id = m.setor_anterior_id
        LEFT JOIN setores tn ON tn.id = m.setor_novo_id
        LEFT JOIN usuarios u ON u.id = m.usuario_id
        WHERE m.protocolo_id = $1
        ORDER BY m.created_at ASC, m.id ASC`
	var movimentacoes []models.MovimentacaoDetail
	if err := r.db.SelectContext(ctx, &movimentacoes, query, protocoloID); err != nil {
		return nil, fmt.Errorf("list movimentacoes: %w", err)
	}
	return movimentacoes, nil
}

// FindByID fetches one movement row without the joined names.
func (r *MovimentacaoRepository) FindByID(ctx context.Context, id string) (*models.Movimentacao, error) {
	const query = `SELECT id, protocolo_id, tipo, status_anterior_id, status_novo_id, setor_anterior_id, setor_novo_id, observacao, usuario_id, created_at
        FROM movimentacoes WHERE id = $1`
	var movimentacao models.Movimentacao
	if err := r.db.GetContext(ctx, &movimentacao, query, id); err != nil {
		return nil, err
	}
	return &movimentacao, nil
}

// Create appends one movement.
func (r *MovimentacaoRepository) Create(ctx context.Context, movimentacao *models.Movimentacao) error {
	if movimentacao.ID == "" {
		movimentacao.ID = uuid.NewString()
	}
	if movimentacao.CreatedAt.IsZero() {
		movimentacao.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO movimentacoes (id, protocolo_id, tipo, status_anterior_id, status_novo_id, setor_anterior_id, setor_novo_id, observacao, usuario_id, created_at)
        VALUES (:id, :protocolo_id, :tipo, :status_anterior_id, :status_novo_id, :setor_anterior_id, :setor_novo_id, :observacao, :usuario_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, movimentacao); err != nil {
		return fmt.Errorf("create movimentacao: %w", err)
	}
	return nil
}
