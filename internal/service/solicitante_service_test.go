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

type fakeSolicitanteRepo struct {
	byID    map[string]*models.Solicitante
	byDoc   map[string]*models.Solicitante
	updated *models.Solicitante
	created *models.Solicitante
}

func (f *fakeSolicitanteRepo) List(ctx context.Context, filter models.SolicitanteFilter) ([]models.Solicitante, int, error) {
	return nil, 0, nil
}

func (f *fakeSolicitanteRepo) FindByID(ctx context.Context, id string) (*models.Solicitante, error) {
	solicitante, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return solicitante, nil
}

func (f *fakeSolicitanteRepo) FindByDocumento(ctx context.Context, documento string) (*models.Solicitante, error) {
	solicitante, ok := f.byDoc[documento]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return solicitante, nil
}

func (f *fakeSolicitanteRepo) Create(ctx context.Context, solicitante *models.Solicitante) error {
	f.created = solicitante
	return nil
}

func (f *fakeSolicitanteRepo) Update(ctx context.Context, solicitante *models.Solicitante) error {
	f.updated = solicitante
	return nil
}

func TestUpdateSolicitanteAtualizaDados(t *testing.T) {
	joao := &models.Solicitante{ID: "s1", Documento: "11144477735", TipoPessoa: models.PessoaFisica, Nome: "João"}
	repo := &fakeSolicitanteRepo{
		byID:  map[string]*models.Solicitante{"s1": joao},
		byDoc: map[string]*models.Solicitante{"11144477735": joao},
	}
	svc := NewSolicitanteService(repo, nil, nil)

	solicitante, err := svc.Update(context.Background(), "s1", SolicitanteRequest{
		Documento: "111.444.777-35",
		Nome:      "João da Silva",
		Email:     "joao@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "João da Silva", solicitante.Nome)
	assert.Equal(t, "joao@example.com", solicitante.Email)
	assert.Equal(t, "11144477735", solicitante.Documento)
	require.NotNil(t, repo.updated)
}

func TestUpdateSolicitanteDocumentoDeOutro(t *testing.T) {
	joao := &models.Solicitante{ID: "s1", Documento: "11144477735", TipoPessoa: models.PessoaFisica}
	maria := &models.Solicitante{ID: "s2", Documento: "52998224725", TipoPessoa: models.PessoaFisica}
	repo := &fakeSolicitanteRepo{
		byID:  map[string]*models.Solicitante{"s1": joao, "s2": maria},
		byDoc: map[string]*models.Solicitante{"11144477735": joao, "52998224725": maria},
	}
	svc := NewSolicitanteService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "s1", SolicitanteRequest{
		Documento: "52998224725",
		Nome:      "João da Silva",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}

func TestUpdateSolicitanteDocumentoInvalido(t *testing.T) {
	joao := &models.Solicitante{ID: "s1", Documento: "11144477735", TipoPessoa: models.PessoaFisica}
	repo := &fakeSolicitanteRepo{byID: map[string]*models.Solicitante{"s1": joao}}
	svc := NewSolicitanteService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "s1", SolicitanteRequest{
		Documento: "11111111111",
		Nome:      "João da Silva",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}
