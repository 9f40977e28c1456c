package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

type mockAnexoRepo struct {
	created *models.Anexo
}

func (m *mockAnexoRepo) ListByProtocolo(ctx context.Context, protocoloID string) ([]models.Anexo, error) {
	return nil, nil
}

func (m *mockAnexoRepo) FindByID(ctx context.Context, id string) (*models.Anexo, error) {
	return nil, sql.ErrNoRows
}

func (m *mockAnexoRepo) Create(ctx context.Context, anexo *models.Anexo) error {
	m.created = anexo
	return nil
}

func (m *mockAnexoRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type mockMovimentacaoFinder struct {
	byID map[string]*models.Movimentacao
}

func (m *mockMovimentacaoFinder) FindByID(ctx context.Context, id string) (*models.Movimentacao, error) {
	movimentacao, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return movimentacao, nil
}

type mockAnexoStorage struct {
	saved []string
}

func (m *mockAnexoStorage) Save(filename string, data []byte) (string, error) {
	m.saved = append(m.saved, filename)
	return filename, nil
}

func (m *mockAnexoStorage) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (m *mockAnexoStorage) Delete(filename string) error {
	return nil
}

type mockAnexoSigner struct{}

func (m *mockAnexoSigner) Generate(resourceID, relPath string) (string, time.Time, error) {
	return "token", time.Now().Add(time.Hour), nil
}

func (m *mockAnexoSigner) Parse(token string, allowExpired bool) (string, string, time.Time, error) {
	return "", "", time.Time{}, nil
}

func newAnexoService(repo *mockAnexoRepo, protocolos *mockProtocoloRepo, movimentacoes *mockMovimentacaoFinder, storage *mockAnexoStorage) *AnexoService {
	return NewAnexoService(repo, protocolos, movimentacoes, storage, &mockAnexoSigner{}, &mockAuditor{}, nil, AnexoConfig{})
}

func TestUploadVinculaMovimentacao(t *testing.T) {
	repo := &mockAnexoRepo{}
	storage := &mockAnexoStorage{}
	movimentacoes := &mockMovimentacaoFinder{byID: map[string]*models.Movimentacao{
		"m1": {ID: "m1", ProtocoloID: "p1"},
	}}
	svc := newAnexoService(repo, &mockProtocoloRepo{detail: protocoloEmAnalise()}, movimentacoes, storage)

	movID := "m1"
	anexo, err := svc.Upload(context.Background(), "p1", AnexoUpload{
		Filename: "laudo.pdf",
		MimeType: "application/pdf",
		Data:     []byte("conteudo"),
	}, "u1", &movID)
	require.NoError(t, err)
	require.NotNil(t, anexo.MovimentacaoID)
	assert.Equal(t, "m1", *anexo.MovimentacaoID)
	require.NotNil(t, repo.created)
	assert.Equal(t, "m1", *repo.created.MovimentacaoID)
}

func TestUploadMovimentacaoDeOutroProtocolo(t *testing.T) {
	repo := &mockAnexoRepo{}
	storage := &mockAnexoStorage{}
	movimentacoes := &mockMovimentacaoFinder{byID: map[string]*models.Movimentacao{
		"m9": {ID: "m9", ProtocoloID: "outro"},
	}}
	svc := newAnexoService(repo, &mockProtocoloRepo{detail: protocoloEmAnalise()}, movimentacoes, storage)

	movID := "m9"
	_, err := svc.Upload(context.Background(), "p1", AnexoUpload{
		Filename: "laudo.pdf",
		MimeType: "application/pdf",
		Data:     []byte("conteudo"),
	}, "u1", &movID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
	assert.Empty(t, storage.saved, "a rejected upload must not reach storage")
}

func TestUploadMovimentacaoInexistente(t *testing.T) {
	repo := &mockAnexoRepo{}
	svc := newAnexoService(repo, &mockProtocoloRepo{detail: protocoloEmAnalise()}, &mockMovimentacaoFinder{}, &mockAnexoStorage{})

	movID := "m404"
	_, err := svc.Upload(context.Background(), "p1", AnexoUpload{
		Filename: "laudo.pdf",
		MimeType: "application/pdf",
		Data:     []byte("conteudo"),
	}, "u1", &movID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}
