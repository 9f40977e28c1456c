package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

type fakeStatusCatalogRepo struct {
	statuses []models.Status
	created  []*models.Status
}

func (f *fakeStatusCatalogRepo) List(ctx context.Context) ([]models.Status, error) {
	return f.statuses, nil
}

func (f *fakeStatusCatalogRepo) FindByID(ctx context.Context, id string) (*models.Status, error) {
	for i := range f.statuses {
		if f.statuses[i].ID == id {
			return &f.statuses[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStatusCatalogRepo) FindInicial(ctx context.Context) (*models.Status, error) {
	for i := range f.statuses {
		if f.statuses[i].Inicial {
			return &f.statuses[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStatusCatalogRepo) Create(ctx context.Context, status *models.Status) error {
	f.created = append(f.created, status)
	f.statuses = append(f.statuses, *status)
	return nil
}

func (f *fakeStatusCatalogRepo) Update(ctx context.Context, status *models.Status) error {
	return nil
}

func (f *fakeStatusCatalogRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeStatusCatalogRepo) CountProtocolos(ctx context.Context, statusID string) (int, error) {
	return 0, nil
}

func TestSeedPadraoTabelaVazia(t *testing.T) {
	repo := &fakeStatusCatalogRepo{}
	svc := NewStatusService(repo, nil, nil)

	require.NoError(t, svc.SeedPadrao(context.Background()))
	require.Len(t, repo.created, 5)

	nomes := make([]string, 0, len(repo.created))
	var inicial, finais int
	for _, status := range repo.created {
		nomes = append(nomes, status.Nome)
		if status.Inicial {
			inicial++
		}
		if status.Final {
			finais++
		}
	}
	assert.Equal(t, []string{"Aberto", "Em Análise", "Em Andamento", "Concluído", "Indeferido"}, nomes)
	assert.Equal(t, 1, inicial)
	assert.Equal(t, 2, finais)

	aberto, err := repo.FindInicial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Aberto", aberto.Nome)
}

func TestSeedPadraoNaoDuplica(t *testing.T) {
	repo := &fakeStatusCatalogRepo{statuses: []models.Status{
		{ID: "st1", Nome: "Recebido", Inicial: true},
	}}
	svc := NewStatusService(repo, nil, nil)

	require.NoError(t, svc.SeedPadrao(context.Background()))
	assert.Empty(t, repo.created)
}
