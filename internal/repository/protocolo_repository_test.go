package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

func newProtocoloMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func protocoloDetailRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "seq", "numero", "ano", "solicitante_id", "solicitacao_id", "status_id", "setor_id", "descricao", "prazo", "created_at", "updated_at",
		"status_nome", "status_cor", "status_final", "setor_nome", "secretaria_id", "secretaria_nome",
		"solicitante_nome", "solicitante_documento", "solicitacao_nome",
	}).AddRow("p1", int64(42), "000042/2026", 2026, "sol1", "req1", "st1", "set1", "Poda de árvore", nil, now, now,
		"Em análise", "#f59e0b", false, "Atendimento", "sec1", "Secretaria de Obras",
		"Maria da Silva", "12345678901", "Poda de árvore")
}

func TestProtocoloRepositoryList(t *testing.T) {
	db, mock, cleanup := newProtocoloMock(t)
	defer cleanup()
	repo := NewProtocoloRepository(db)

	mock.ExpectQuery(`SELECT p.id, p.seq, p.numero(.|\n)+FROM protocolos p(.|\n)+ORDER BY p.created_at DESC LIMIT 20 OFFSET 0`).
		WillReturnRows(protocoloDetailRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM protocolos p`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	protocolos, total, err := repo.List(context.Background(), models.ProtocoloFilter{})
	require.NoError(t, err)
	assert.Len(t, protocolos, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "000042/2026", protocolos[0].Numero)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProtocoloRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newProtocoloMock(t)
	defer cleanup()
	repo := NewProtocoloRepository(db)

	mock.ExpectQuery(`FROM protocolos p(.|\n)+p.status_id = \$1 AND p.setor_id = \$2`).
		WithArgs("st1", "set1").
		WillReturnRows(protocoloDetailRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM protocolos p`).
		WithArgs("st1", "set1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, total, err := repo.List(context.Background(), models.ProtocoloFilter{StatusID: "st1", SetorID: "set1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProtocoloRepositoryFindBySeq(t *testing.T) {
	db, mock, cleanup := newProtocoloMock(t)
	defer cleanup()
	repo := NewProtocoloRepository(db)

	mock.ExpectQuery(`FROM protocolos p(.|\n)+WHERE p.seq = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(protocoloDetailRows())

	protocolo, err := repo.FindBySeq(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "p1", protocolo.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProtocoloRepositoryCreateAssignsNumero(t *testing.T) {
	db, mock, cleanup := newProtocoloMock(t)
	defer cleanup()
	repo := NewProtocoloRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO protocolo_sequencias").
		WillReturnRows(sqlmock.NewRows([]string{"ultimo"}).AddRow(int64(7)))
	mock.ExpectQuery("INSERT INTO protocolos").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(101)))
	mock.ExpectExec("INSERT INTO movimentacoes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	protocolo := &models.Protocolo{
		SolicitanteID: "sol1",
		SolicitacaoID: "req1",
		StatusID:      "st1",
		SetorID:       "set1",
		Descricao:     "Poda de árvore",
	}
	abertura := &models.Movimentacao{Tipo: models.MovimentacaoAbertura, StatusNovoID: &protocolo.StatusID}
	err := repo.Create(context.Background(), protocolo, abertura)
	require.NoError(t, err)

	ano := time.Now().UTC().Year()
	assert.Equal(t, ano, protocolo.Ano)
	assert.Contains(t, protocolo.Numero, "000007/")
	assert.Equal(t, int64(101), protocolo.Seq)
	assert.Equal(t, protocolo.ID, abertura.ProtocoloID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProtocoloRepositoryTramitarAtomic(t *testing.T) {
	db, mock, cleanup := newProtocoloMock(t)
	defer cleanup()
	repo := NewProtocoloRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE protocolos SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO movimentacoes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	protocolo := &models.Protocolo{ID: "p1", StatusID: "st2", SetorID: "set1"}
	anterior := "st1"
	mov := &models.Movimentacao{
		ProtocoloID:      "p1",
		Tipo:             models.MovimentacaoStatus,
		StatusAnteriorID: &anterior,
		StatusNovoID:     &protocolo.StatusID,
	}
	err := repo.Tramitar(context.Background(), protocolo, mov)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProtocoloRepositoryTramitarRollsBackOnMovementFailure(t *testing.T) {
	db, mock, cleanup := newProtocoloMock(t)
	defer cleanup()
	repo := NewProtocoloRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE protocolos SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO movimentacoes").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	protocolo := &models.Protocolo{ID: "p1", StatusID: "st2", SetorID: "set1"}
	err := repo.Tramitar(context.Background(), protocolo, &models.Movimentacao{ProtocoloID: "p1", Tipo: models.MovimentacaoStatus})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
