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

// ProtocoloRepository manages persistence for protocols, including the
// per-year sequential numbering.
type ProtocoloRepository struct {
	db *sqlx.DB
}

// NewProtocoloRepository constructs a ProtocoloRepository.
func NewProtocoloRepository(db *sqlx.DB) *ProtocoloRepository {
	return &ProtocoloRepository{db: db}
}

const protocoloDetailColumns = `p.id, p.seq, p.numero, p.ano, p.solicitante_id, p.solicitacao_id, p.status_id, p.setor_id, p.descricao, p.prazo, p.created_at, p.updated_at,
        s.nome AS status_nome, s.cor AS status_cor, s.final AS status_final,
        st.nome AS setor_nome, sec.id AS secretaria_id, sec.nome AS secretaria_nome,
        sol.nome AS solicitante_nome, sol.documento AS solicitante_documento,
        req.nome AS solicitacao_nome`

const protocoloDetailJoins = `FROM protocolos p
        JOIN status s ON s.id = p.status_id
        JOIN setores st ON st.id = p.setor_id
        JOIN secretarias sec ON sec.id = st.secretaria_id
        JOIN solicitantes sol ON sol.id = p.solicitante_id
        JOIN solicitacoes req ON req.id = p.solicitacao_id`

// List returns protocols matching the filter, with joined names, paginated.
func (r *ProtocoloRepository) List(ctx context.Context, filter models.ProtocoloFilter) ([]models.ProtocoloDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StatusID != "" {
		conditions = append(conditions, fmt.Sprintf("p.status_id = $%d", len(args)+1))
		args = append(args, filter.StatusID)
	}
	if filter.SecretariaID != "" {
		conditions = append(conditions, fmt.Sprintf("sec.id = $%d", len(args)+1))
		args = append(args, filter.SecretariaID)
	}
	if filter.SetorID != "" {
		conditions = append(conditions, fmt.Sprintf("p.setor_id = $%d", len(args)+1))
		args = append(args, filter.SetorID)
	}
	if filter.Documento != "" {
		conditions = append(conditions, fmt.Sprintf("sol.documento = $%d", len(args)+1))
		args = append(args, filter.Documento)
	}
	if filter.Numero != "" {
		conditions = append(conditions, fmt.Sprintf("p.numero = $%d", len(args)+1))
		args = append(args, filter.Numero)
	}
	if filter.DataInicio != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_at >= $%d", len(args)+1))
		args = append(args, *filter.DataInicio)
	}
	if filter.DataFim != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_at < $%d", len(args)+1))
		args = append(args, *filter.DataFim)
	}
	if filter.Atrasados {
		conditions = append(conditions, "p.prazo IS NOT NULL AND p.prazo < NOW() AND s.final = false")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"numero":     "p.seq",
		"created_at": "p.created_at",
		"prazo":      "p.prazo",
		"status":     "s.ordem",
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "p.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		protocoloDetailColumns, protocoloDetailJoins, where, column, order, size, offset)

	var protocolos []models.ProtocoloDetail
	if err := r.db.SelectContext(ctx, &protocolos, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list protocolos: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", protocoloDetailJoins, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count protocolos: %w", err)
	}
	return protocolos, total, nil
}

// FindByID fetches one protocol with joined names.
func (r *ProtocoloRepository) FindByID(ctx context.Context, id string) (*models.ProtocoloDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.id = $1`, protocoloDetailColumns, protocoloDetailJoins)
	var protocolo models.ProtocoloDetail
	if err := r.db.GetContext(ctx, &protocolo, query, id); err != nil {
		return nil, err
	}
	return &protocolo, nil
}

// FindByNumero fetches one protocol by its formatted number.
func (r *ProtocoloRepository) FindByNumero(ctx context.Context, numero string) (*models.ProtocoloDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.numero = $1`, protocoloDetailColumns, protocoloDetailJoins)
	var protocolo models.ProtocoloDetail
	if err := r.db.GetContext(ctx, &protocolo, query, numero); err != nil {
		return nil, err
	}
	return &protocolo, nil
}

// FindBySeq fetches one protocol by its global sequence. Used by the
// public consultation code.
func (r *ProtocoloRepository) FindBySeq(ctx context.Context, seq int64) (*models.ProtocoloDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.seq = $1`, protocoloDetailColumns, protocoloDetailJoins)
	var protocolo models.ProtocoloDetail
	if err := r.db.GetContext(ctx, &protocolo, query, seq); err != nil {
		return nil, err
	}
	return &protocolo, nil
}

// ListBySolicitante fetches every protocol of one solicitante, newest first.
func (r *ProtocoloRepository) ListBySolicitante(ctx context.Context, solicitanteID string) ([]models.ProtocoloDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.solicitante_id = $1 ORDER BY p.created_at DESC`,
		protocoloDetailColumns, protocoloDetailJoins)
	var protocolos []models.ProtocoloDetail
	if err := r.db.SelectContext(ctx, &protocolos, query, solicitanteID); err != nil {
		return nil, fmt.Errorf("list protocolos by solicitante: %w", err)
	}
	return protocolos, nil
}

// Create inserts a protocol and its opening movement in one transaction.
// The per-year counter and the formatted number are assigned here, so two
// concurrent openings never collide.
func (r *ProtocoloRepository) Create(ctx context.Context, protocolo *models.Protocolo, abertura *models.Movimentacao) error {
	if protocolo.ID == "" {
		protocolo.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	protocolo.CreatedAt = now
	protocolo.UpdatedAt = now
	protocolo.Ano = now.Year()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var numeroAno int64
	const seqQuery = `INSERT INTO protocolo_sequencias (ano, ultimo) VALUES ($1, 1)
        ON CONFLICT (ano) DO UPDATE SET ultimo = protocolo_sequencias.ultimo + 1
        RETURNING ultimo`
	if err := tx.GetContext(ctx, &numeroAno, seqQuery, protocolo.Ano); err != nil {
		return fmt.Errorf("next numero: %w", err)
	}
	protocolo.Numero = fmt.Sprintf("%06d/%d", numeroAno, protocolo.Ano)

	const insertQuery = `INSERT INTO protocolos (id, numero, ano, solicitante_id, solicitacao_id, status_id, setor_id, descricao, prazo, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING seq`
	if err := tx.GetContext(ctx, &protocolo.Seq, insertQuery,
		protocolo.ID, protocolo.Numero, protocolo.Ano, protocolo.SolicitanteID, protocolo.SolicitacaoID,
		protocolo.StatusID, protocolo.SetorID, protocolo.Descricao, protocolo.Prazo,
		protocolo.CreatedAt, protocolo.UpdatedAt); err != nil {
		return fmt.Errorf("create protocolo: %w", err)
	}

	if abertura != nil {
		abertura.ProtocoloID = protocolo.ID
		if abertura.ID == "" {
			abertura.ID = uuid.NewString()
		}
		if abertura.CreatedAt.IsZero() {
			abertura.CreatedAt = now
		}
		const movQuery = `INSERT INTO movimentacoes (id, protocolo_id, tipo, status_anterior_id, status_novo_id, setor_anterior_id, setor_novo_id, observacao, usuario_id, created_at)
            VALUES (:id, :protocolo_id, :tipo, :status_anterior_id, :status_novo_id, :setor_anterior_id, :setor_novo_id, :observacao, :usuario_id, :created_at)`
		if _, err := tx.NamedExecContext(ctx, movQuery, abertura); err != nil {
			return fmt.Errorf("create abertura: %w", err)
		}
	}
	return tx.Commit()
}

// Update modifies the editable fields of a protocol.
func (r *ProtocoloRepository) Update(ctx context.Context, protocolo *models.Protocolo) error {
	protocolo.UpdatedAt = time.Now().UTC()
	const query = `UPDATE protocolos SET status_id = :status_id, setor_id = :setor_id, descricao = :descricao, prazo = :prazo, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, protocolo); err != nil {
		return fmt.Errorf("update protocolo: %w", err)
	}
	return nil
}

// Tramitar applies a routing step: it updates the protocol and appends
// the movement atomically. When the protocol row does not change (a note
// on the same status) the caller appends the movement alone instead.
func (r *ProtocoloRepository) Tramitar(ctx context.Context, protocolo *models.Protocolo, movimentacao *models.Movimentacao) error {
	protocolo.UpdatedAt = time.Now().UTC()
	if movimentacao.ID == "" {
		movimentacao.ID = uuid.NewString()
	}
	if movimentacao.CreatedAt.IsZero() {
		movimentacao.CreatedAt = protocolo.UpdatedAt
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const updateQuery = `UPDATE protocolos SET status_id = :status_id, setor_id = :setor_id, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateQuery, protocolo); err != nil {
		return fmt.Errorf("tramitar update: %w", err)
	}
	const movQuery = `INSERT INTO movimentacoes (id, protocolo_id, tipo, status_anterior_id, status_novo_id, setor_anterior_id, setor_novo_id, observacao, usuario_id, created_at)
        VALUES (:id, :protocolo_id, :tipo, :status_anterior_id, :status_novo_id, :setor_anterior_id, :setor_novo_id, :observacao, :usuario_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, movQuery, movimentacao); err != nil {
		return fmt.Errorf("tramitar movimentacao: %w", err)
	}
	return tx.Commit()
}

// Delete removes a protocol and its movements and attachments rows.
func (r *ProtocoloRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM anexos WHERE protocolo_id = $1`, id); err != nil {
		return fmt.Errorf("delete anexos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM movimentacoes WHERE protocolo_id = $1`, id); err != nil {
		return fmt.Errorf("delete movimentacoes: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM protocolos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete protocolo: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete protocolo rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("protocolo %s not found", id)
	}
	return tx.Commit()
}
