package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// RelatorioRepository tracks asynchronous export jobs.
type RelatorioRepository struct {
	db *sqlx.DB
}

// NewRelatorioRepository constructs a RelatorioRepository.
func NewRelatorioRepository(db *sqlx.DB) *RelatorioRepository {
	return &RelatorioRepository{db: db}
}

// Create registers a pending export.
func (r *RelatorioRepository) Create(ctx context.Context, relatorio *models.Relatorio) error {
	if relatorio.ID == "" {
		relatorio.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	relatorio.CreatedAt = now
	relatorio.UpdatedAt = now
	const query = `INSERT INTO relatorios (id, formato, filtro, status, arquivo, erro, solicitado_por, concluido_em, expira_em, created_at, updated_at)
        VALUES (:id, :formato, :filtro, :status, :arquivo, :erro, :solicitado_por, :concluido_em, :expira_em, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, relatorio); err != nil {
		return fmt.Errorf("create relatorio: %w", err)
	}
	return nil
}

// FindByID fetches one export job.
func (r *RelatorioRepository) FindByID(ctx context.Context, id string) (*models.Relatorio, error) {
	const query = `SELECT id, formato, filtro, status, arquivo, erro, solicitado_por, concluido_em, expira_em, created_at, updated_at
        FROM relatorios WHERE id = $1`
	var relatorio models.Relatorio
	if err := r.db.GetContext(ctx, &relatorio, query, id); err != nil {
		return nil, err
	}
	return &relatorio, nil
}

// ListByUsuario returns the export jobs requested by one staff member,
// newest first.
func (r *RelatorioRepository) ListByUsuario(ctx context.Context, usuarioID string, limit int) ([]models.Relatorio, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT id, formato, filtro, status, arquivo, erro, solicitado_por, concluido_em, expira_em, created_at, updated_at
        FROM relatorios WHERE solicitado_por = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var relatorios []models.Relatorio
	if err := r.db.SelectContext(ctx, &relatorios, query, usuarioID); err != nil {
		return nil, fmt.Errorf("list relatorios: %w", err)
	}
	return relatorios, nil
}

// MarkProcessando flips a pending job to processing.
func (r *RelatorioRepository) MarkProcessando(ctx context.Context, id string) error {
	const query = `UPDATE relatorios SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RelatorioProcessando, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark processando: %w", err)
	}
	return nil
}

// MarkConcluido records the produced file and completion time.
func (r *RelatorioRepository) MarkConcluido(ctx context.Context, id, arquivo string, expiraEm time.Time) error {
	now := time.Now().UTC()
	const query = `UPDATE relatorios SET status = $2, arquivo = $3, concluido_em = $4, expira_em = $5, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RelatorioConcluido, arquivo, now, expiraEm); err != nil {
		return fmt.Errorf("mark concluido: %w", err)
	}
	return nil
}

// MarkFalha records a failure message.
func (r *RelatorioRepository) MarkFalha(ctx context.Context, id, erro string) error {
	const query = `UPDATE relatorios SET status = $2, erro = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RelatorioFalha, erro, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark falha: %w", err)
	}
	return nil
}

// DeleteExpirados removes jobs whose files already expired. Returns the
// file paths so the caller can clean the storage too.
func (r *RelatorioRepository) DeleteExpirados(ctx context.Context) ([]string, error) {
	const query = `DELETE FROM relatorios WHERE expira_em IS NOT NULL AND expira_em < NOW() RETURNING arquivo`
	var arquivos []string
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("delete expirados: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var arquivo *string
		if err := rows.Scan(&arquivo); err != nil {
			return nil, fmt.Errorf("scan expirado: %w", err)
		}
		if arquivo != nil && *arquivo != "" {
			arquivos = append(arquivos, *arquivo)
		}
	}
	return arquivos, rows.Err()
}
