package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

type fakeSolicitacaoRepo struct {
	byID       map[string]*models.SolicitacaoDetail
	protocolos int
	deleted    string
}

func (f *fakeSolicitacaoRepo) List(ctx context.Context, filter models.SolicitacaoFilter) ([]models.SolicitacaoDetail, error) {
	return nil, nil
}

func (f *fakeSolicitacaoRepo) FindByID(ctx context.Context, id string) (*models.SolicitacaoDetail, error) {
	solicitacao, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return solicitacao, nil
}

func (f *fakeSolicitacaoRepo) Create(ctx context.Context, solicitacao *models.Solicitacao) error {
	return nil
}

func (f *fakeSolicitacaoRepo) Update(ctx context.Context, solicitacao *models.Solicitacao) error {
	return nil
}

func (f *fakeSolicitacaoRepo) Delete(ctx context.Context, id string) error {
	f.deleted = id
	return nil
}

func (f *fakeSolicitacaoRepo) CountProtocolos(ctx context.Context, solicitacaoID string) (int, error) {
	return f.protocolos, nil
}

func (f *fakeSolicitacaoRepo) ListDocumentos(ctx context.Context, solicitacaoID string) ([]models.DocumentoNecessario, error) {
	return nil, nil
}

func (f *fakeSolicitacaoRepo) CreateDocumento(ctx context.Context, documento *models.DocumentoNecessario) error {
	return nil
}

func (f *fakeSolicitacaoRepo) UpdateDocumento(ctx context.Context, documento *models.DocumentoNecessario) error {
	return nil
}

func (f *fakeSolicitacaoRepo) DeleteDocumento(ctx context.Context, id string) error {
	return nil
}

type fakeSecretariaFinder struct {
	byID map[string]*models.Secretaria
}

func (f *fakeSecretariaFinder) FindByID(ctx context.Context, id string) (*models.Secretaria, error) {
	secretaria, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return secretaria, nil
}

func podaDeArvore() *models.SolicitacaoDetail {
	return &models.SolicitacaoDetail{
		Solicitacao:    models.Solicitacao{ID: "req1", SecretariaID: "sec1", Nome: "Poda de árvore", PrazoDias: 15, Ativo: true},
		SecretariaNome: "Meio Ambiente",
	}
}

func TestDeleteSolicitacaoComProtocolos(t *testing.T) {
	repo := &fakeSolicitacaoRepo{byID: map[string]*models.SolicitacaoDetail{"req1": podaDeArvore()}, protocolos: 3}
	svc := NewSolicitacaoService(repo, &fakeSecretariaFinder{}, nil, nil)

	err := svc.Delete(context.Background(), "req1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestDeleteSolicitacaoSemProtocolos(t *testing.T) {
	repo := &fakeSolicitacaoRepo{byID: map[string]*models.SolicitacaoDetail{"req1": podaDeArvore()}}
	svc := NewSolicitacaoService(repo, &fakeSecretariaFinder{}, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "req1"))
	assert.Equal(t, "req1", repo.deleted)
}

func TestDeleteSolicitacaoInexistente(t *testing.T) {
	repo := &fakeSolicitacaoRepo{}
	svc := NewSolicitacaoService(repo, &fakeSecretariaFinder{}, nil, nil)

	err := svc.Delete(context.Background(), "req404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
