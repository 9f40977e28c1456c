package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

type mockProtocoloRepo struct {
	detail        *models.ProtocoloDetail
	created       *models.Protocolo
	abertura      *models.Movimentacao
	tramitado     *models.Protocolo
	tramitadoMov  *models.Movimentacao
	updated       *models.Protocolo
	deleted       string
	findByIDErr   error
	bySolicitante []models.ProtocoloDetail
}

func (m *mockProtocoloRepo) List(ctx context.Context, filter models.ProtocoloFilter) ([]models.ProtocoloDetail, int, error) {
	if m.detail == nil {
		return nil, 0, nil
	}
	return []models.ProtocoloDetail{*m.detail}, 1, nil
}

func (m *mockProtocoloRepo) FindByID(ctx context.Context, id string) (*models.ProtocoloDetail, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.detail == nil {
		return nil, sql.ErrNoRows
	}
	return m.detail, nil
}

func (m *mockProtocoloRepo) FindByNumero(ctx context.Context, numero string) (*models.ProtocoloDetail, error) {
	if m.detail == nil || m.detail.Numero != numero {
		return nil, sql.ErrNoRows
	}
	return m.detail, nil
}

func (m *mockProtocoloRepo) FindBySeq(ctx context.Context, seq int64) (*models.ProtocoloDetail, error) {
	if m.detail == nil || m.detail.Seq != seq {
		return nil, sql.ErrNoRows
	}
	return m.detail, nil
}

func (m *mockProtocoloRepo) ListBySolicitante(ctx context.Context, solicitanteID string) ([]models.ProtocoloDetail, error) {
	return m.bySolicitante, nil
}

func (m *mockProtocoloRepo) Create(ctx context.Context, protocolo *models.Protocolo, abertura *models.Movimentacao) error {
	protocolo.ID = "p1"
	protocolo.Seq = 42
	protocolo.Numero = "000001/2026"
	m.created = protocolo
	m.abertura = abertura
	if m.detail == nil {
		m.detail = &models.ProtocoloDetail{Protocolo: *protocolo}
	}
	return nil
}

func (m *mockProtocoloRepo) Update(ctx context.Context, protocolo *models.Protocolo) error {
	m.updated = protocolo
	return nil
}

func (m *mockProtocoloRepo) Tramitar(ctx context.Context, protocolo *models.Protocolo, movimentacao *models.Movimentacao) error {
	m.tramitado = protocolo
	m.tramitadoMov = movimentacao
	return nil
}

func (m *mockProtocoloRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

type mockMovimentacaoRepo struct {
	list    []models.MovimentacaoDetail
	created []*models.Movimentacao
}

func (m *mockMovimentacaoRepo) ListByProtocolo(ctx context.Context, protocoloID string) ([]models.MovimentacaoDetail, error) {
	return m.list, nil
}

func (m *mockMovimentacaoRepo) Create(ctx context.Context, movimentacao *models.Movimentacao) error {
	m.created = append(m.created, movimentacao)
	return nil
}

type mockStatusRepo struct {
	byID    map[string]*models.Status
	inicial *models.Status
}

func (m *mockStatusRepo) FindByID(ctx context.Context, id string) (*models.Status, error) {
	status, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return status, nil
}

func (m *mockStatusRepo) FindInicial(ctx context.Context) (*models.Status, error) {
	if m.inicial == nil {
		return nil, sql.ErrNoRows
	}
	return m.inicial, nil
}

type mockSetorRepo struct {
	byID map[string]*models.SetorDetail
	list []models.SetorDetail
}

func (m *mockSetorRepo) FindByID(ctx context.Context, id string) (*models.SetorDetail, error) {
	setor, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return setor, nil
}

func (m *mockSetorRepo) List(ctx context.Context, filter models.SetorFilter) ([]models.SetorDetail, error) {
	return m.list, nil
}

type mockSolicitacaoRepo struct {
	byID map[string]*models.SolicitacaoDetail
}

func (m *mockSolicitacaoRepo) FindByID(ctx context.Context, id string) (*models.SolicitacaoDetail, error) {
	solicitacao, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return solicitacao, nil
}

type mockSolicitanteRepo2 struct {
	byID map[string]*models.Solicitante
}

func (m *mockSolicitanteRepo2) FindByID(ctx context.Context, id string) (*models.Solicitante, error) {
	solicitante, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return solicitante, nil
}

type mockAuditor struct {
	logs []*models.AuditLog
}

func (m *mockAuditor) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func newProtocoloService(repo *mockProtocoloRepo, movs *mockMovimentacaoRepo, statuses *mockStatusRepo, setores *mockSetorRepo) *ProtocoloService {
	return NewProtocoloService(ProtocoloServiceDeps{
		Protocolos:    repo,
		Movimentacoes: movs,
		Statuses:      statuses,
		Setores:       setores,
		Solicitacoes:  &mockSolicitacaoRepo{},
		Solicitantes:  &mockSolicitanteRepo2{},
		Audit:         &mockAuditor{},
	}, nil, nil)
}

func protocoloEmAnalise() *models.ProtocoloDetail {
	return &models.ProtocoloDetail{
		Protocolo: models.Protocolo{
			ID:       "p1",
			Seq:      42,
			Numero:   "000001/2026",
			StatusID: "st1",
			SetorID:  "set1",
		},
		StatusNome:   "Em análise",
		SetorNome:    "Atendimento",
		SecretariaID: "sec1",
	}
}

func TestTramitarNotaNaoAlteraProtocolo(t *testing.T) {
	repo := &mockProtocoloRepo{detail: protocoloEmAnalise()}
	movs := &mockMovimentacaoRepo{}
	svc := newProtocoloService(repo, movs, &mockStatusRepo{}, &mockSetorRepo{})

	mesmoStatus := "st1"
	_, err := svc.Tramitar(context.Background(), "p1", TramitarRequest{
		StatusID:   &mesmoStatus,
		Observacao: "Aguardando documentação complementar",
	}, "u1")
	require.NoError(t, err)

	assert.Nil(t, repo.tramitado, "protocol row must not change for a note on the same status")
	require.Len(t, movs.created, 1)
	assert.Equal(t, models.MovimentacaoStatus, movs.created[0].Tipo)
	assert.Equal(t, "Aguardando documentação complementar", movs.created[0].Observacao)
	assert.Nil(t, movs.created[0].StatusNovoID)
}

func TestTramitarTransferenciaExigeSecretariaESetor(t *testing.T) {
	repo := &mockProtocoloRepo{detail: protocoloEmAnalise()}
	movs := &mockMovimentacaoRepo{}
	svc := newProtocoloService(repo, movs, &mockStatusRepo{}, &mockSetorRepo{})

	secretaria := "sec2"
	_, err := svc.Tramitar(context.Background(), "p1", TramitarRequest{
		SecretariaID: &secretaria,
		Observacao:   "Transferência de competência",
	}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.tramitado)
	assert.Empty(t, movs.created, "a rejected transfer must leave zero writes")
}

func TestTramitarTransferenciaExigeJustificativa(t *testing.T) {
	repo := &mockProtocoloRepo{detail: protocoloEmAnalise()}
	setores := &mockSetorRepo{byID: map[string]*models.SetorDetail{
		"set2": {Setor: models.Setor{ID: "set2", SecretariaID: "sec2", Ativo: true}},
	}}
	svc := newProtocoloService(repo, &mockMovimentacaoRepo{}, &mockStatusRepo{}, setores)

	secretaria, setor := "sec2", "set2"
	_, err := svc.Tramitar(context.Background(), "p1", TramitarRequest{
		SecretariaID: &secretaria,
		SetorID:      &setor,
	}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.tramitado)
}

func TestTramitarTransferenciaCompleta(t *testing.T) {
	repo := &mockProtocoloRepo{detail: protocoloEmAnalise()}
	setores := &mockSetorRepo{byID: map[string]*models.SetorDetail{
		"set2": {Setor: models.Setor{ID: "set2", SecretariaID: "sec2", Ativo: true}, SecretariaNome: "Obras"},
	}}
	svc := newProtocoloService(repo, &mockMovimentacaoRepo{}, &mockStatusRepo{}, setores)

	secretaria, setor := "sec2", "set2"
	_, err := svc.Tramitar(context.Background(), "p1", TramitarRequest{
		SecretariaID: &secretaria,
		SetorID:      &setor,
		Observacao:   "Competência da Secretaria de Obras",
	}, "u1")
	require.NoError(t, err)

	require.NotNil(t, repo.tramitado)
	assert.Equal(t, "set2", repo.tramitado.SetorID)
	require.NotNil(t, repo.tramitadoMov)
	assert.Equal(t, models.MovimentacaoTransferencia, repo.tramitadoMov.Tipo)
	assert.Equal(t, "set1", *repo.tramitadoMov.SetorAnteriorID)
	assert.Equal(t, "set2", *repo.tramitadoMov.SetorNovoID)
}

func TestTramitarSetorForaDaSecretaria(t *testing.T) {
	repo := &mockProtocoloRepo{detail: protocoloEmAnalise()}
	setores := &mockSetorRepo{byID: map[string]*models.SetorDetail{
		"set2": {Setor: models.Setor{ID: "set2", SecretariaID: "outra", Ativo: true}},
	}}
	svc := newProtocoloService(repo, &mockMovimentacaoRepo{}, &mockStatusRepo{}, setores)

	secretaria, setor := "sec2", "set2"
	_, err := svc.Tramitar(context.Background(), "p1", TramitarRequest{
		SecretariaID: &secretaria,
		SetorID:      &setor,
		Observacao:   "transferir",
	}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.tramitado)
}

func TestTramitarMudancaDeStatus(t *testing.T) {
	repo := &mockProtocoloRepo{detail: protocoloEmAnalise()}
	statuses := &mockStatusRepo{byID: map[string]*models.Status{
		"st2": {ID: "st2", Nome: "Concluído", Final: true},
	}}
	svc := newProtocoloService(repo, &mockMovimentacaoRepo{}, statuses, &mockSetorRepo{})

	novo := "st2"
	_, err := svc.Tramitar(context.Background(), "p1", TramitarRequest{
		StatusID:   &novo,
		Observacao: "Serviço executado",
	}, "u1")
	require.NoError(t, err)

	require.NotNil(t, repo.tramitado)
	assert.Equal(t, "st2", repo.tramitado.StatusID)
	assert.Equal(t, models.MovimentacaoStatus, repo.tramitadoMov.Tipo)
	assert.Equal(t, "st1", *repo.tramitadoMov.StatusAnteriorID)
	assert.Equal(t, "st2", *repo.tramitadoMov.StatusNovoID)
}

func TestTramitarProtocoloEncerrado(t *testing.T) {
	detail := protocoloEmAnalise()
	detail.StatusFinal = true
	repo := &mockProtocoloRepo{detail: detail}
	svc := newProtocoloService(repo, &mockMovimentacaoRepo{}, &mockStatusRepo{}, &mockSetorRepo{})

	novo := "st2"
	_, err := svc.Tramitar(context.Background(), "p1", TramitarRequest{StatusID: &novo, Observacao: "x"}, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateProtocoloDefinePrazoEAbertura(t *testing.T) {
	repo := &mockProtocoloRepo{}
	statuses := &mockStatusRepo{inicial: &models.Status{ID: "st1", Nome: "Aberto", Inicial: true}}
	setores := &mockSetorRepo{list: []models.SetorDetail{
		{Setor: models.Setor{ID: "set1", SecretariaID: "sec1", Ativo: true}},
	}}
	svc := NewProtocoloService(ProtocoloServiceDeps{
		Protocolos:    repo,
		Movimentacoes: &mockMovimentacaoRepo{},
		Statuses:      statuses,
		Setores:       setores,
		Solicitacoes: &mockSolicitacaoRepo{byID: map[string]*models.SolicitacaoDetail{
			"req1": {Solicitacao: models.Solicitacao{ID: "req1", SecretariaID: "sec1", PrazoDias: 15, Ativo: true}},
		}},
		Solicitantes: &mockSolicitanteRepo2{byID: map[string]*models.Solicitante{
			"sol1": {ID: "sol1", Documento: "12345678901"},
		}},
		Audit: &mockAuditor{},
	}, nil, nil)

	detail, err := svc.Create(context.Background(), CreateProtocoloRequest{
		SolicitanteID: "sol1",
		SolicitacaoID: "req1",
		Descricao:     "Poda de árvore na praça central",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, detail)

	require.NotNil(t, repo.created)
	assert.Equal(t, "st1", repo.created.StatusID)
	assert.Equal(t, "set1", repo.created.SetorID)
	require.NotNil(t, repo.created.Prazo)
	esperado := time.Now().UTC().AddDate(0, 0, 15)
	assert.WithinDuration(t, esperado, *repo.created.Prazo, time.Minute)

	require.NotNil(t, repo.abertura)
	assert.Equal(t, models.MovimentacaoAbertura, repo.abertura.Tipo)
}

func TestCreateProtocoloSolicitacaoInativa(t *testing.T) {
	svc := NewProtocoloService(ProtocoloServiceDeps{
		Protocolos:    &mockProtocoloRepo{},
		Movimentacoes: &mockMovimentacaoRepo{},
		Statuses:      &mockStatusRepo{inicial: &models.Status{ID: "st1"}},
		Setores:       &mockSetorRepo{},
		Solicitacoes: &mockSolicitacaoRepo{byID: map[string]*models.SolicitacaoDetail{
			"req1": {Solicitacao: models.Solicitacao{ID: "req1", SecretariaID: "sec1", Ativo: false}},
		}},
		Solicitantes: &mockSolicitanteRepo2{byID: map[string]*models.Solicitante{
			"sol1": {ID: "sol1"},
		}},
		Audit: &mockAuditor{},
	}, nil, nil)

	_, err := svc.Create(context.Background(), CreateProtocoloRequest{
		SolicitanteID: "sol1",
		SolicitacaoID: "req1",
		Descricao:     "qualquer",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestComprovanteFormataMovimentacoes(t *testing.T) {
	criado := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	autor := "Maria Atendente"
	statusNovo := "Concluído"
	mov := models.MovimentacaoDetail{
		Movimentacao: models.Movimentacao{
			Tipo:       models.MovimentacaoStatus,
			Observacao: "Serviço executado",
			CreatedAt:  criado,
		},
		StatusNovoNome: &statusNovo,
		UsuarioNome:    &autor,
	}

	event := timelineEvent(mov)
	assert.Equal(t, "10/03/2026 14:30", event.When)
	assert.Equal(t, "Situação alterada para Concluído", event.Title)
	assert.Equal(t, "Serviço executado", event.Detail)
	assert.Equal(t, "Maria Atendente", event.Author)

	detail := protocoloEmAnalise()
	detail.Ano = 2026
	detail.SolicitanteNome = "João da Silva"
	detail.SolicitanteDocumento = "11144477735"
	repo := &mockProtocoloRepo{detail: detail}
	movs := &mockMovimentacaoRepo{list: []models.MovimentacaoDetail{mov}}
	svc := newProtocoloService(repo, movs, &mockStatusRepo{}, &mockSetorRepo{})

	pdf, filename, err := svc.ComprovantePDF(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "protocolo_p1_2026.pdf", filename)
}

func TestListRestringeSetorParaPerfilUsuario(t *testing.T) {
	repo := &mockProtocoloRepo{detail: protocoloEmAnalise()}
	svc := newProtocoloService(repo, &mockMovimentacaoRepo{}, &mockStatusRepo{}, &mockSetorRepo{})

	claims := &models.JWTClaims{UserID: "u1", Perfil: models.PerfilUsuario}
	_, _, err := svc.List(context.Background(), models.ProtocoloFilter{}, claims, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	setor := "set1"
	_, pagination, err := svc.List(context.Background(), models.ProtocoloFilter{}, claims, &setor)
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.TotalCount)
}
