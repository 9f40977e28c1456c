package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the staff
// dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountTotal counts every protocol.
func (r *DashboardRepository) CountTotal(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM protocolos`); err != nil {
		return 0, fmt.Errorf("count total: %w", err)
	}
	return count, nil
}

// CountAbertos counts protocols whose status is not final.
func (r *DashboardRepository) CountAbertos(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM protocolos p JOIN status s ON s.id = p.status_id WHERE s.final = false`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count abertos: %w", err)
	}
	return count, nil
}

// CountAtrasados counts non-final protocols past their prazo.
func (r *DashboardRepository) CountAtrasados(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM protocolos p JOIN status s ON s.id = p.status_id
        WHERE s.final = false AND p.prazo IS NOT NULL AND p.prazo < NOW()`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count atrasados: %w", err)
	}
	return count, nil
}

// CountPorStatus groups protocols by status, ordered by the catalog order.
func (r *DashboardRepository) CountPorStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT s.id AS status_id, s.nome AS status_nome, s.cor AS status_cor, COUNT(p.id) AS total
        FROM status s
        LEFT JOIN protocolos p ON p.status_id = s.id
        GROUP BY s.id, s.nome, s.cor, s.ordem
        ORDER BY s.ordem ASC`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count por status: %w", err)
	}
	return counts, nil
}

// CountPorSecretaria groups protocols by secretaria.
func (r *DashboardRepository) CountPorSecretaria(ctx context.Context) ([]models.SecretariaCount, error) {
	const query = `SELECT sec.id AS secretaria_id, sec.nome AS secretaria_nome, COUNT(p.id) AS total
        FROM secretarias sec
        LEFT JOIN setores st ON st.secretaria_id = sec.id
        LEFT JOIN protocolos p ON p.setor_id = st.id
        GROUP BY sec.id, sec.nome
        ORDER BY total DESC, sec.nome ASC`
	var counts []models.SecretariaCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count por secretaria: %w", err)
	}
	return counts, nil
}

// CountPorMes groups protocols opened in the last n months.
func (r *DashboardRepository) CountPorMes(ctx context.Context, meses int) ([]models.MesCount, error) {
	const query = `SELECT TO_CHAR(DATE_TRUNC('month', created_at), 'YYYY-MM') AS mes, COUNT(*) AS total
        FROM protocolos
        WHERE created_at >= DATE_TRUNC('month', NOW()) - ($1 || ' months')::interval
        GROUP BY 1 ORDER BY 1 ASC`
	var counts []models.MesCount
	if err := r.db.SelectContext(ctx, &counts, query, meses); err != nil {
		return nil, fmt.Errorf("count por mes: %w", err)
	}
	return counts, nil
}
