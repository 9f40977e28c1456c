package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/util"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/export"
)

type protocoloRepository interface {
	List(ctx context.Context, filter models.ProtocoloFilter) ([]models.ProtocoloDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ProtocoloDetail, error)
	FindByNumero(ctx context.Context, numero string) (*models.ProtocoloDetail, error)
	FindBySeq(ctx context.Context, seq int64) (*models.ProtocoloDetail, error)
	ListBySolicitante(ctx context.Context, solicitanteID string) ([]models.ProtocoloDetail, error)
	Create(ctx context.Context, protocolo *models.Protocolo, abertura *models.Movimentacao) error
	Update(ctx context.Context, protocolo *models.Protocolo) error
	Tramitar(ctx context.Context, protocolo *models.Protocolo, movimentacao *models.Movimentacao) error
	Delete(ctx context.Context, id string) error
}

type protocoloMovimentacaoRepository interface {
	ListByProtocolo(ctx context.Context, protocoloID string) ([]models.MovimentacaoDetail, error)
	Create(ctx context.Context, movimentacao *models.Movimentacao) error
}

type protocoloStatusRepository interface {
	FindByID(ctx context.Context, id string) (*models.Status, error)
	FindInicial(ctx context.Context) (*models.Status, error)
}

type protocoloSetorRepository interface {
	FindByID(ctx context.Context, id string) (*models.SetorDetail, error)
	List(ctx context.Context, filter models.SetorFilter) ([]models.SetorDetail, error)
}

type protocoloSolicitacaoRepository interface {
	FindByID(ctx context.Context, id string) (*models.SolicitacaoDetail, error)
}

type protocoloSolicitanteRepository interface {
	FindByID(ctx context.Context, id string) (*models.Solicitante, error)
}

type protocoloAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateProtocoloRequest opens a protocol on behalf of a registered
// solicitante.
type CreateProtocoloRequest struct {
	SolicitanteID string `json:"solicitante_id" validate:"required"`
	SolicitacaoID string `json:"solicitacao_id" validate:"required"`
	Descricao     string `json:"descricao" validate:"required"`
}

// UpdateProtocoloRequest edits the free-form fields of a protocol.
type UpdateProtocoloRequest struct {
	Descricao string     `json:"descricao" validate:"required"`
	Prazo     *time.Time `json:"prazo"`
}

// TramitarRequest is the routing payload. Any combination of a status
// change, a transfer and a note is accepted; a transfer always carries
// both the destination secretaria and setor plus a justification.
type TramitarRequest struct {
	StatusID     *string `json:"status_id"`
	SecretariaID *string `json:"secretaria_id"`
	SetorID      *string `json:"setor_id"`
	Observacao   string  `json:"observacao"`
}

// ProtocoloService coordinates the protocol lifecycle.
type ProtocoloService struct {
	repo          protocoloRepository
	movimentacoes protocoloMovimentacaoRepository
	statuses      protocoloStatusRepository
	setores       protocoloSetorRepository
	solicitacoes  protocoloSolicitacaoRepository
	solicitantes  protocoloSolicitanteRepository
	audit         protocoloAuditor
	timeline      *export.TimelineExporter
	validator     *validator.Validate
	logger        *zap.Logger
}

// ProtocoloServiceDeps bundles the repositories the service needs.
type ProtocoloServiceDeps struct {
	Protocolos    protocoloRepository
	Movimentacoes protocoloMovimentacaoRepository
	Statuses      protocoloStatusRepository
	Setores       protocoloSetorRepository
	Solicitacoes  protocoloSolicitacaoRepository
	Solicitantes  protocoloSolicitanteRepository
	Audit         protocoloAuditor
}

// NewProtocoloService constructs the protocol service.
func NewProtocoloService(deps ProtocoloServiceDeps, validate *validator.Validate, logger *zap.Logger) *ProtocoloService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProtocoloService{
		repo:          deps.Protocolos,
		movimentacoes: deps.Movimentacoes,
		statuses:      deps.Statuses,
		setores:       deps.Setores,
		solicitacoes:  deps.Solicitacoes,
		solicitantes:  deps.Solicitantes,
		audit:         deps.Audit,
		timeline:      export.NewTimelineExporter(),
		validator:     validate,
		logger:        logger,
	}
}

// List returns protocols and pagination metadata. Staff with the USUARIO
// profile only see the queue of their own setor.
func (s *ProtocoloService) List(ctx context.Context, filter models.ProtocoloFilter, claims *models.JWTClaims, setorID *string) ([]models.ProtocoloDetail, *models.Pagination, error) {
	if claims != nil && claims.Perfil == models.PerfilUsuario {
		if setorID == nil || *setorID == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "usuário sem setor atribuído")
		}
		filter.SetorID = *setorID
	}
	filter.Documento = util.SomenteDigitos(filter.Documento)

	protocolos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar protocolos")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return protocolos, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one protocol with its movement history.
func (s *ProtocoloService) Get(ctx context.Context, id string) (*models.ProtocoloDetail, []models.MovimentacaoDetail, error) {
	protocolo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar protocolo")
	}
	movimentacoes, err := s.movimentacoes.ListByProtocolo(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar movimentações")
	}
	return protocolo, movimentacoes, nil
}

// Create opens a protocol for a registered solicitante. The initial setor
// comes from the request type's secretaria, the initial status from the
// catalog, and the prazo from the request type's SLA in days.
func (s *ProtocoloService) Create(ctx context.Context, req CreateProtocoloRequest, usuarioID *string) (*models.ProtocoloDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de protocolo inválidos")
	}

	if _, err := s.solicitantes.FindByID(ctx, req.SolicitanteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "solicitante não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar solicitante")
	}

	solicitacao, err := s.solicitacoes.FindByID(ctx, req.SolicitacaoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "solicitação não encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar solicitação")
	}
	if !solicitacao.Ativo {
		return nil, appErrors.Clone(appErrors.ErrValidation, "solicitação desativada")
	}

	setor, err := s.entrySetor(ctx, solicitacao.SecretariaID)
	if err != nil {
		return nil, err
	}

	inicial, err := s.statuses.FindInicial(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "nenhum status inicial configurado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar status inicial")
	}

	protocolo := &models.Protocolo{
		SolicitanteID: req.SolicitanteID,
		SolicitacaoID: req.SolicitacaoID,
		StatusID:      inicial.ID,
		SetorID:       setor.ID,
		Descricao:     req.Descricao,
	}
	if solicitacao.PrazoDias > 0 {
		prazo := time.Now().UTC().AddDate(0, 0, solicitacao.PrazoDias)
		protocolo.Prazo = &prazo
	}

	abertura := &models.Movimentacao{
		Tipo:         models.MovimentacaoAbertura,
		StatusNovoID: &inicial.ID,
		SetorNovoID:  &setor.ID,
		Observacao:   "Abertura do protocolo",
		UsuarioID:    usuarioID,
	}
	if err := s.repo.Create(ctx, protocolo, abertura); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar protocolo")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UsuarioID:  usuarioID,
			Action:     models.AuditActionProtocoloCreate,
			Resource:   "protocolos",
			ResourceID: &protocolo.ID,
		}); err != nil {
			s.logger.Warn("failed to record protocolo create audit log", zap.Error(err))
		}
	}

	detail, err := s.repo.FindByID(ctx, protocolo.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar protocolo")
	}
	return detail, nil
}

// Update edits the free-form fields of a protocol.
func (s *ProtocoloService) Update(ctx context.Context, id string, req UpdateProtocoloRequest, actorID string) (*models.ProtocoloDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de protocolo inválidos")
	}
	detail, _, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	protocolo := detail.Protocolo
	protocolo.Descricao = req.Descricao
	protocolo.Prazo = req.Prazo
	if err := s.repo.Update(ctx, &protocolo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar protocolo")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UsuarioID:  &actorID,
			Action:     models.AuditActionProtocoloUpdate,
			Resource:   "protocolos",
			ResourceID: &id,
		}); err != nil {
			s.logger.Warn("failed to record protocolo update audit log", zap.Error(err))
		}
	}
	return s.repo.FindByID(ctx, id)
}

// Tramitar applies one routing step. A status change and a transfer can
// arrive together or alone; a bare note appends to the history without
// touching the protocol row. Validation failures leave zero writes.
func (s *ProtocoloService) Tramitar(ctx context.Context, id string, req TramitarRequest, usuarioID string) (*models.ProtocoloDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar protocolo")
	}
	if detail.StatusFinal {
		return nil, appErrors.Clone(appErrors.ErrConflict, "protocolo já encerrado")
	}

	hasStatus := req.StatusID != nil && *req.StatusID != "" && *req.StatusID != detail.StatusID
	hasSecretaria := req.SecretariaID != nil && *req.SecretariaID != ""
	hasSetor := req.SetorID != nil && *req.SetorID != ""

	// A transfer is all-or-nothing: destination secretaria, destination
	// setor and a justification, validated before anything is written.
	if hasSecretaria != hasSetor {
		return nil, appErrors.Clone(appErrors.ErrValidation, "transferência exige secretaria e setor de destino")
	}
	isTransfer := hasSecretaria && hasSetor
	if isTransfer && req.Observacao == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "transferência exige justificativa")
	}
	if !hasStatus && !isTransfer && req.Observacao == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nenhuma alteração informada")
	}

	var novoStatus *models.Status
	if hasStatus {
		novoStatus, err = s.statuses.FindByID(ctx, *req.StatusID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "status não encontrado")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar status")
		}
	}

	var novoSetor *models.SetorDetail
	if isTransfer {
		novoSetor, err = s.setores.FindByID(ctx, *req.SetorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "setor de destino não encontrado")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar setor")
		}
		if novoSetor.SecretariaID != *req.SecretariaID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "setor não pertence à secretaria informada")
		}
		if !novoSetor.Ativo {
			return nil, appErrors.Clone(appErrors.ErrValidation, "setor de destino desativado")
		}
	}

	// A note on the unchanged status only appends to the ledger; the
	// protocol row keeps its updated_at untouched.
	if !hasStatus && !isTransfer {
		mov := &models.Movimentacao{
			ProtocoloID:      id,
			Tipo:             models.MovimentacaoStatus,
			StatusAnteriorID: &detail.StatusID,
			Observacao:       req.Observacao,
			UsuarioID:        &usuarioID,
		}
		if err := s.movimentacoes.Create(ctx, mov); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao registrar movimentação")
		}
		return detail, nil
	}

	protocolo := detail.Protocolo
	statusAnterior := detail.StatusID
	setorAnterior := detail.SetorID

	tipo := models.MovimentacaoStatus
	mov := &models.Movimentacao{
		ProtocoloID: id,
		Observacao:  req.Observacao,
		UsuarioID:   &usuarioID,
	}
	if hasStatus {
		protocolo.StatusID = novoStatus.ID
		mov.StatusAnteriorID = &statusAnterior
		mov.StatusNovoID = &novoStatus.ID
	}
	if isTransfer {
		tipo = models.MovimentacaoTransferencia
		protocolo.SetorID = novoSetor.ID
		mov.SetorAnteriorID = &setorAnterior
		mov.SetorNovoID = &novoSetor.ID
	}
	mov.Tipo = tipo

	if err := s.repo.Tramitar(ctx, &protocolo, mov); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao tramitar protocolo")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UsuarioID:  &usuarioID,
			Action:     models.AuditActionProtocoloTramitar,
			Resource:   "protocolos",
			ResourceID: &id,
			NewValues:  []byte(fmt.Sprintf(`{"tipo":%q}`, tipo)),
		}); err != nil {
			s.logger.Warn("failed to record tramitacao audit log", zap.Error(err))
		}
	}
	return s.repo.FindByID(ctx, id)
}

// Delete removes a protocol and its history. Restricted to MASTER at the
// route level.
func (s *ProtocoloService) Delete(ctx context.Context, id, actorID string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar protocolo")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao remover protocolo")
	}
	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UsuarioID:  &actorID,
			Action:     models.AuditActionProtocoloDelete,
			Resource:   "protocolos",
			ResourceID: &id,
		}); err != nil {
			s.logger.Warn("failed to record protocolo delete audit log", zap.Error(err))
		}
	}
	return nil
}

// ComprovantePDF renders the protocol receipt with the full timeline.
func (s *ProtocoloService) ComprovantePDF(ctx context.Context, id string) ([]byte, string, error) {
	detail, movimentacoes, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	doc := export.TimelineDocument{
		Title:    fmt.Sprintf("Protocolo %s", detail.Numero),
		Subtitle: detail.SolicitacaoNome,
		Fields: []export.TimelineField{
			{Label: "Solicitante", Value: detail.SolicitanteNome},
			{Label: "Documento", Value: util.FormatarDocumento(detail.SolicitanteDocumento)},
			{Label: "Secretaria", Value: detail.SecretariaNome},
			{Label: "Setor", Value: detail.SetorNome},
			{Label: "Situação", Value: detail.StatusNome},
			{Label: "Abertura", Value: detail.CreatedAt.Format("02/01/2006 15:04")},
		},
	}
	if detail.Prazo != nil {
		doc.Fields = append(doc.Fields, export.TimelineField{Label: "Prazo", Value: detail.Prazo.Format("02/01/2006")})
	}
	for _, mov := range movimentacoes {
		doc.Events = append(doc.Events, timelineEvent(mov))
	}

	pdf, err := s.timeline.Render(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao gerar comprovante")
	}
	filename := fmt.Sprintf("protocolo_%s_%d.pdf", detail.ID, detail.Ano)
	return pdf, filename, nil
}

func timelineEvent(mov models.MovimentacaoDetail) export.TimelineEvent {
	event := export.TimelineEvent{
		When:   mov.CreatedAt.Format("02/01/2006 15:04"),
		Detail: mov.Observacao,
	}
	if mov.UsuarioNome != nil {
		event.Author = *mov.UsuarioNome
	}
	switch mov.Tipo {
	case models.MovimentacaoAbertura:
		event.Title = "Abertura"
	case models.MovimentacaoTransferencia:
		de, para := "", ""
		if mov.SetorAnteriorNome != nil {
			de = *mov.SetorAnteriorNome
		}
		if mov.SetorNovoNome != nil {
			para = *mov.SetorNovoNome
		}
		event.Title = fmt.Sprintf("Transferência: %s para %s", de, para)
	default:
		if mov.StatusNovoNome != nil {
			event.Title = fmt.Sprintf("Situação alterada para %s", *mov.StatusNovoNome)
		} else {
			event.Title = "Anotação"
		}
	}
	return event
}

// entrySetor picks the first active setor of the secretaria as the entry
// queue for new protocols.
func (s *ProtocoloService) entrySetor(ctx context.Context, secretariaID string) (*models.SetorDetail, error) {
	ativo := true
	setores, err := s.setores.List(ctx, models.SetorFilter{SecretariaID: secretariaID, Ativo: &ativo})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar setores")
	}
	if len(setores) == 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "secretaria sem setor ativo para receber protocolos")
	}
	return &setores[0], nil
}
