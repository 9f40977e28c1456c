package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/util"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

const cpfValido = "52998224725"

type mockSolicitanteStore struct {
	porDocumento map[string]*models.Solicitante
	updated      *models.Solicitante
}

func newMockSolicitanteStore() *mockSolicitanteStore {
	return &mockSolicitanteStore{porDocumento: map[string]*models.Solicitante{}}
}

func (m *mockSolicitanteStore) List(ctx context.Context, filter models.SolicitanteFilter) ([]models.Solicitante, int, error) {
	return nil, 0, nil
}

func (m *mockSolicitanteStore) FindByID(ctx context.Context, id string) (*models.Solicitante, error) {
	for _, s := range m.porDocumento {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSolicitanteStore) FindByDocumento(ctx context.Context, documento string) (*models.Solicitante, error) {
	s, ok := m.porDocumento[documento]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockSolicitanteStore) Create(ctx context.Context, solicitante *models.Solicitante) error {
	solicitante.ID = "sol1"
	m.porDocumento[solicitante.Documento] = solicitante
	return nil
}

func (m *mockSolicitanteStore) Update(ctx context.Context, solicitante *models.Solicitante) error {
	m.updated = solicitante
	m.porDocumento[solicitante.Documento] = solicitante
	return nil
}

func newPublicoService(repo *mockProtocoloRepo, store *mockSolicitanteStore) *PublicoService {
	movs := &mockMovimentacaoRepo{}
	abertura := NewProtocoloService(ProtocoloServiceDeps{
		Protocolos:    repo,
		Movimentacoes: movs,
		Statuses:      &mockStatusRepo{inicial: &models.Status{ID: "st1", Nome: "Aberto", Inicial: true}},
		Setores: &mockSetorRepo{list: []models.SetorDetail{
			{Setor: models.Setor{ID: "set1", SecretariaID: "sec1", Ativo: true}},
		}},
		Solicitacoes: &mockSolicitacaoRepo{byID: map[string]*models.SolicitacaoDetail{
			"req1": {Solicitacao: models.Solicitacao{ID: "req1", SecretariaID: "sec1", PrazoDias: 10, Ativo: true}},
		}},
		Solicitantes: store,
		Audit:        &mockAuditor{},
	}, nil, nil)
	solicitantes := NewSolicitanteService(store, nil, nil)
	return NewPublicoService(repo, movs, solicitantes, abertura, nil, nil)
}

func TestAbrirProtocoloRetornaCodigoDeConsulta(t *testing.T) {
	repo := &mockProtocoloRepo{}
	store := newMockSolicitanteStore()
	svc := newPublicoService(repo, store)

	resp, err := svc.AbrirProtocolo(context.Background(), AbrirProtocoloRequest{
		Solicitante: SolicitanteRequest{
			Documento: "529.982.247-25",
			Nome:      "Maria da Silva",
			Email:     "maria@example.com",
		},
		SolicitacaoID: "req1",
		Descricao:     "Buraco na rua em frente ao número 120",
	})
	require.NoError(t, err)

	require.NotNil(t, repo.created)
	assert.Equal(t, repo.created.Numero, resp.Numero)
	assert.Equal(t, util.CodificarRef(repo.created.Seq), resp.Codigo)

	criado := store.porDocumento[cpfValido]
	require.NotNil(t, criado, "documento must be stored as bare digits")
	assert.Equal(t, models.PessoaFisica, criado.TipoPessoa)

	require.NotNil(t, repo.abertura)
	assert.Nil(t, repo.abertura.UsuarioID, "public intake has no acting staff member")
}

func TestAbrirProtocoloReaproveitaSolicitante(t *testing.T) {
	repo := &mockProtocoloRepo{}
	store := newMockSolicitanteStore()
	store.porDocumento[cpfValido] = &models.Solicitante{
		ID:         "sol1",
		Documento:  cpfValido,
		TipoPessoa: models.PessoaFisica,
		Nome:       "Maria S.",
		Email:      "antigo@example.com",
	}
	svc := newPublicoService(repo, store)

	_, err := svc.AbrirProtocolo(context.Background(), AbrirProtocoloRequest{
		Solicitante: SolicitanteRequest{
			Documento: cpfValido,
			Nome:      "Maria da Silva",
			Email:     "novo@example.com",
		},
		SolicitacaoID: "req1",
		Descricao:     "Segunda solicitação da mesma cidadã",
	})
	require.NoError(t, err)

	require.NotNil(t, store.updated)
	assert.Equal(t, "novo@example.com", store.updated.Email)
	assert.Equal(t, cpfValido, store.updated.Documento)
	assert.Equal(t, "sol1", repo.created.SolicitanteID)
}

func TestAbrirProtocoloDocumentoInvalido(t *testing.T) {
	svc := newPublicoService(&mockProtocoloRepo{}, newMockSolicitanteStore())

	_, err := svc.AbrirProtocolo(context.Background(), AbrirProtocoloRequest{
		Solicitante: SolicitanteRequest{
			Documento: "111.111.111-11",
			Nome:      "Fulano",
		},
		SolicitacaoID: "req1",
		Descricao:     "qualquer",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConsultarPorCodigo(t *testing.T) {
	detail := protocoloEmAnalise()
	repo := &mockProtocoloRepo{detail: detail}
	svc := newPublicoService(repo, newMockSolicitanteStore())

	view, err := svc.Consultar(context.Background(), util.CodificarRef(detail.Seq))
	require.NoError(t, err)
	assert.Equal(t, detail.Numero, view.Numero)
	assert.Equal(t, "Em análise", view.Status)
	assert.False(t, view.Encerrado)

	_, err = svc.Consultar(context.Background(), "???")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestConsultarPorNumeroExigeDocumentoCorreto(t *testing.T) {
	detail := protocoloEmAnalise()
	detail.SolicitanteDocumento = cpfValido
	repo := &mockProtocoloRepo{detail: detail}
	svc := newPublicoService(repo, newMockSolicitanteStore())

	view, err := svc.ConsultarPorNumero(context.Background(), detail.Numero, "529.982.247-25")
	require.NoError(t, err)
	assert.Equal(t, detail.Numero, view.Numero)

	// a wrong documento looks exactly like a missing protocol
	_, err = svc.ConsultarPorNumero(context.Background(), detail.Numero, "11222333000181")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMeusProtocolos(t *testing.T) {
	detail := protocoloEmAnalise()
	repo := &mockProtocoloRepo{bySolicitante: []models.ProtocoloDetail{*detail}}
	store := newMockSolicitanteStore()
	store.porDocumento[cpfValido] = &models.Solicitante{ID: "sol1", Documento: cpfValido}
	svc := newPublicoService(repo, store)

	views, err := svc.MeusProtocolos(context.Background(), cpfValido)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, util.CodificarRef(detail.Seq), views[0].Codigo)
}
