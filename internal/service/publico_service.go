package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/util"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

// AbrirProtocoloRequest is the citizen intake payload: identification,
// contact data and the request itself in one submission.
type AbrirProtocoloRequest struct {
	Solicitante   SolicitanteRequest `json:"solicitante" validate:"required"`
	SolicitacaoID string             `json:"solicitacao_id" validate:"required"`
	Descricao     string             `json:"descricao" validate:"required"`
}

// ProtocoloAbertoResponse returns the tracking handles for a new protocol.
type ProtocoloAbertoResponse struct {
	Numero    string     `json:"numero"`
	Codigo    string     `json:"codigo"`
	Status    string     `json:"status"`
	Prazo     *time.Time `json:"prazo,omitempty"`
	CriadoEm  time.Time  `json:"criado_em"`
	Descricao string     `json:"descricao"`
}

// ProtocoloPublicoView is the limited tracking shape shown without
// authentication. Internal IDs and the full requester record stay hidden.
type ProtocoloPublicoView struct {
	Numero        string                    `json:"numero"`
	Codigo        string                    `json:"codigo"`
	Solicitacao   string                    `json:"solicitacao"`
	Secretaria    string                    `json:"secretaria"`
	Status        string                    `json:"status"`
	StatusCor     string                    `json:"status_cor"`
	Encerrado     bool                      `json:"encerrado"`
	CriadoEm      time.Time                 `json:"criado_em"`
	Prazo         *time.Time                `json:"prazo,omitempty"`
	Movimentacoes []MovimentacaoPublicaView `json:"movimentacoes"`
}

// MovimentacaoPublicaView is one public timeline entry.
type MovimentacaoPublicaView struct {
	Tipo       models.TipoMovimentacao `json:"tipo"`
	Status     *string                 `json:"status,omitempty"`
	Setor      *string                 `json:"setor,omitempty"`
	Observacao string                  `json:"observacao"`
	Data       time.Time               `json:"data"`
}

// PublicoService serves the unauthenticated citizen portal: intake,
// tracking and form prefill.
type PublicoService struct {
	protocolos    protocoloRepository
	movimentacoes protocoloMovimentacaoRepository
	solicitantes  *SolicitanteService
	abertura      *ProtocoloService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewPublicoService constructs the public portal service.
func NewPublicoService(protocolos protocoloRepository, movimentacoes protocoloMovimentacaoRepository, solicitantes *SolicitanteService, abertura *ProtocoloService, validate *validator.Validate, logger *zap.Logger) *PublicoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicoService{
		protocolos:    protocolos,
		movimentacoes: movimentacoes,
		solicitantes:  solicitantes,
		abertura:      abertura,
		validator:     validate,
		logger:        logger,
	}
}

// AbrirProtocolo registers (or refreshes) the solicitante and opens the
// protocol in one step. The response carries the yearly numero and the
// opaque consultation code.
func (s *PublicoService) AbrirProtocolo(ctx context.Context, req AbrirProtocoloRequest) (*ProtocoloAbertoResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de abertura inválidos")
	}

	solicitante, err := s.solicitantes.Upsert(ctx, req.Solicitante)
	if err != nil {
		return nil, err
	}

	detail, err := s.abertura.Create(ctx, CreateProtocoloRequest{
		SolicitanteID: solicitante.ID,
		SolicitacaoID: req.SolicitacaoID,
		Descricao:     req.Descricao,
	}, nil)
	if err != nil {
		return nil, err
	}

	return &ProtocoloAbertoResponse{
		Numero:    detail.Numero,
		Codigo:    util.CodificarRef(detail.Seq),
		Status:    detail.StatusNome,
		Prazo:     detail.Prazo,
		CriadoEm:  detail.CreatedAt,
		Descricao: detail.Descricao,
	}, nil
}

// Consultar resolves a consultation code to the public tracking view.
func (s *PublicoService) Consultar(ctx context.Context, codigo string) (*ProtocoloPublicoView, error) {
	seq := util.DecodificarRef(codigo)
	if seq == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
	}

	detail, err := s.protocolos.FindBySeq(ctx, *seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao consultar protocolo")
	}
	return s.buildPublicView(ctx, detail)
}

// ConsultarPorNumero resolves a formatted numero plus the requester's
// documento. Both must match, the numero alone is guessable.
func (s *PublicoService) ConsultarPorNumero(ctx context.Context, numero, documento string) (*ProtocoloPublicoView, error) {
	digits := util.SomenteDigitos(documento)
	if !util.ValidarDocumento(digits) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "documento inválido")
	}

	detail, err := s.protocolos.FindByNumero(ctx, numero)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao consultar protocolo")
	}
	if detail.SolicitanteDocumento != digits {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
	}
	return s.buildPublicView(ctx, detail)
}

// MeusProtocolos lists the protocols of one documento for the citizen
// tracking screen.
func (s *PublicoService) MeusProtocolos(ctx context.Context, documento string) ([]ProtocoloPublicoView, error) {
	solicitante, err := s.solicitantes.GetByDocumento(ctx, documento)
	if err != nil {
		return nil, err
	}

	protocolos, err := s.protocolos.ListBySolicitante(ctx, solicitante.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar protocolos")
	}

	views := make([]ProtocoloPublicoView, 0, len(protocolos))
	for i := range protocolos {
		view := s.summaryView(&protocolos[i])
		views = append(views, view)
	}
	return views, nil
}

// Prefill returns the stored contact data for a documento so the intake
// form starts filled on a returning citizen.
func (s *PublicoService) Prefill(ctx context.Context, documento string) (*models.Solicitante, error) {
	return s.solicitantes.GetByDocumento(ctx, documento)
}

func (s *PublicoService) buildPublicView(ctx context.Context, detail *models.ProtocoloDetail) (*ProtocoloPublicoView, error) {
	view := s.summaryView(detail)

	movimentacoes, err := s.movimentacoes.ListByProtocolo(ctx, detail.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar movimentações")
	}
	for _, mov := range movimentacoes {
		view.Movimentacoes = append(view.Movimentacoes, MovimentacaoPublicaView{
			Tipo:       mov.Tipo,
			Status:     mov.StatusNovoNome,
			Setor:      mov.SetorNovoNome,
			Observacao: mov.Observacao,
			Data:       mov.CreatedAt,
		})
	}
	return &view, nil
}

func (s *PublicoService) summaryView(detail *models.ProtocoloDetail) ProtocoloPublicoView {
	return ProtocoloPublicoView{
		Numero:      detail.Numero,
		Codigo:      util.CodificarRef(detail.Seq),
		Solicitacao: detail.SolicitacaoNome,
		Secretaria:  detail.SecretariaNome,
		Status:      detail.StatusNome,
		StatusCor:   detail.StatusCor,
		Encerrado:   detail.StatusFinal,
		CriadoEm:    detail.CreatedAt,
		Prazo:       detail.Prazo,
	}
}
