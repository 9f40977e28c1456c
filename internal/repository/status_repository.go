package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// StatusRepository manages the status catalog.
type StatusRepository struct {
	db *sqlx.DB
}

// NewStatusRepository constructs a StatusRepository.
func NewStatusRepository(db *sqlx.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// List returns every status ordered by their configured position.
func (r *StatusRepository) List(ctx context.Context) ([]models.Status, error) {
	const query = `SELECT id, nome, cor, ordem, inicial, final, created_at, updated_at
        FROM status ORDER BY ordem ASC, nome ASC`
	var statuses []models.Status
	if err := r.db.SelectContext(ctx, &statuses, query); err != nil {
		return nil, fmt.Errorf("list status: %w", err)
	}
	return statuses, nil
}

// FindByID fetches one status.
func (r *StatusRepository) FindByID(ctx context.Context, id string) (*models.Status, error) {
	const query = `SELECT id, nome, cor, ordem, inicial, final, created_at, updated_at FROM status WHERE id = $1`
	var status models.Status
	if err := r.db.GetContext(ctx, &status, query, id); err != nil {
		return nil, err
	}
	return &status, nil
}

// FindInicial fetches the status marked as the entry point for new
// protocols. Returns sql.ErrNoRows when none is configured.
func (r *StatusRepository) FindInicial(ctx context.Context) (*models.Status, error) {
	const query = `SELECT id, nome, cor, ordem, inicial, final, created_at, updated_at
        FROM status WHERE inicial = true ORDER BY ordem ASC LIMIT 1`
	var status models.Status
	if err := r.db.GetContext(ctx, &status, query); err != nil {
		return nil, err
	}
	return &status, nil
}

// Create inserts a status. When the new status is marked inicial the
// previous inicial flag is cleared in the same transaction.
func (r *StatusRepository) Create(ctx context.Context, status *models.Status) error {
	if status.ID == "" {
		status.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	status.CreatedAt = now
	status.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if status.Inicial {
		if _, err := tx.ExecContext(ctx, `UPDATE status SET inicial = false WHERE inicial = true`); err != nil {
			return fmt.Errorf("clear inicial: %w", err)
		}
	}
	const query = `INSERT INTO status (id, nome, cor, ordem, inicial, final, created_at, updated_at)
        VALUES (:id, :nome, :cor, :ordem, :inicial, :final, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, status); err != nil {
		return fmt.Errorf("create status: %w", err)
	}
	return tx.Commit()
}

// Update modifies a status, keeping the single-inicial invariant.
func (r *StatusRepository) Update(ctx context.Context, status *models.Status) error {
	status.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if status.Inicial {
		if _, err := tx.ExecContext(ctx, `UPDATE status SET inicial = false WHERE inicial = true AND id <> $1`, status.ID); err != nil {
			return fmt.Errorf("clear inicial: %w", err)
		}
	}
	const query = `UPDATE status SET nome = :nome, cor = :cor, ordem = :ordem, inicial = :inicial, final = :final, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return tx.Commit()
}

// Delete removes a status that is not referenced by any protocol.
func (r *StatusRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM status WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountProtocolos counts the protocols currently at a status.
func (r *StatusRepository) CountProtocolos(ctx context.Context, statusID string) (int, error) {
	const query = `SELECT COUNT(*) FROM protocolos WHERE status_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, statusID); err != nil {
		return 0, fmt.Errorf("count protocolos: %w", err)
	}
	return count, nil
}
