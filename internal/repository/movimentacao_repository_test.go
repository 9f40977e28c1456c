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

func newMovimentacaoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMovimentacaoRepositoryListByProtocolo(t *testing.T) {
	db, mock, cleanup := newMovimentacaoMock(t)
	defer cleanup()
	repo := NewMovimentacaoRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "protocolo_id", "tipo", "status_anterior_id", "status_novo_id", "setor_anterior_id", "setor_novo_id", "observacao", "usuario_id", "created_at",
		"status_anterior_nome", "status_novo_nome", "setor_anterior_nome", "setor_novo_nome", "usuario_nome",
	}).
		AddRow("m1", "p1", models.MovimentacaoAbertura, nil, "st1", nil, nil, "Abertura do protocolo", nil, now.Add(-time.Hour),
			nil, "Aberto", nil, nil, nil).
		AddRow("m2", "p1", models.MovimentacaoStatus, "st1", "st2", nil, nil, "Em análise pelo setor", "u1", now,
			"Aberto", "Em análise", nil, nil, "João Atendente")
	mock.ExpectQuery(`FROM movimentacoes m(.|\n)+WHERE m.protocolo_id = \$1(.|\n)+ORDER BY m.created_at ASC`).
		WithArgs("p1").
		WillReturnRows(rows)

	movimentacoes, err := repo.ListByProtocolo(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, movimentacoes, 2)
	assert.Equal(t, models.MovimentacaoAbertura, movimentacoes[0].Tipo)
	assert.Equal(t, "João Atendente", *movimentacoes[1].UsuarioNome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovimentacaoRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMovimentacaoMock(t)
	defer cleanup()
	repo := NewMovimentacaoRepository(db)

	mock.ExpectExec("INSERT INTO movimentacoes").
		WillReturnResult(sqlmock.NewResult(1, 1))

	anterior := "st1"
	mov := &models.Movimentacao{
		ProtocoloID:      "p1",
		Tipo:             models.MovimentacaoStatus,
		StatusAnteriorID: &anterior,
		Observacao:       "Documentação conferida",
	}
	err := repo.Create(context.Background(), mov)
	require.NoError(t, err)
	assert.NotEmpty(t, mov.ID)
	assert.False(t, mov.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
