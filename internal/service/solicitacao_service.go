package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

type solicitacaoRepository interface {
	List(ctx context.Context, filter models.SolicitacaoFilter) ([]models.SolicitacaoDetail, error)
	FindByID(ctx context.Context, id string) (*models.SolicitacaoDetail, error)
	Create(ctx context.Context, solicitacao *models.Solicitacao) error
	Update(ctx context.Context, solicitacao *models.Solicitacao) error
	Delete(ctx context.Context, id string) error
	CountProtocolos(ctx context.Context, solicitacaoID string) (int, error)
	ListDocumentos(ctx context.Context, solicitacaoID string) ([]models.DocumentoNecessario, error)
	CreateDocumento(ctx context.Context, documento *models.DocumentoNecessario) error
	UpdateDocumento(ctx context.Context, documento *models.DocumentoNecessario) error
	DeleteDocumento(ctx context.Context, id string) error
}

// SolicitacaoRequest holds payload for the request-type catalog.
type SolicitacaoRequest struct {
	SecretariaID string `json:"secretaria_id" validate:"required"`
	Nome         string `json:"nome" validate:"required"`
	Descricao    string `json:"descricao"`
	PrazoDias    int    `json:"prazo_dias" validate:"gte=0"`
	Ativo        *bool  `json:"ativo"`
}

// DocumentoRequest holds payload for a required document.
type DocumentoRequest struct {
	Nome        string `json:"nome" validate:"required"`
	Obrigatorio bool   `json:"obrigatorio"`
}

// SolicitacaoService manages the catalog of request types offered to
// citizens.
type SolicitacaoService struct {
	repo        solicitacaoRepository
	secretarias setorSecretariaRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSolicitacaoService constructs the request-type service.
func NewSolicitacaoService(repo solicitacaoRepository, secretarias setorSecretariaRepository, validate *validator.Validate, logger *zap.Logger) *SolicitacaoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SolicitacaoService{repo: repo, secretarias: secretarias, validator: validate, logger: logger}
}

// List returns request types matching the filter.
func (s *SolicitacaoService) List(ctx context.Context, filter models.SolicitacaoFilter) ([]models.SolicitacaoDetail, error) {
	solicitacoes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar solicitações")
	}
	return solicitacoes, nil
}

// Get returns one request type.
func (s *SolicitacaoService) Get(ctx context.Context, id string) (*models.SolicitacaoDetail, error) {
	solicitacao, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "solicitação não encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar solicitação")
	}
	return solicitacao, nil
}

// Create registers a request type under an active secretaria.
func (s *SolicitacaoService) Create(ctx context.Context, req SolicitacaoRequest) (*models.Solicitacao, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de solicitação inválidos")
	}
	secretaria, err := s.secretarias.FindByID(ctx, req.SecretariaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "secretaria não encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar secretaria")
	}
	if !secretaria.Ativo {
		return nil, appErrors.Clone(appErrors.ErrValidation, "secretaria desativada")
	}

	solicitacao := &models.Solicitacao{
		SecretariaID: req.SecretariaID,
		Nome:         req.Nome,
		Descricao:    req.Descricao,
		PrazoDias:    req.PrazoDias,
		Ativo:        true,
	}
	if req.Ativo != nil {
		solicitacao.Ativo = *req.Ativo
	}
	if err := s.repo.Create(ctx, solicitacao); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar solicitação")
	}
	return solicitacao, nil
}

// Update modifies a request type.
func (s *SolicitacaoService) Update(ctx context.Context, id string, req SolicitacaoRequest) (*models.Solicitacao, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de solicitação inválidos")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	solicitacao := &models.Solicitacao{
		ID:           existing.ID,
		SecretariaID: req.SecretariaID,
		Nome:         req.Nome,
		Descricao:    req.Descricao,
		PrazoDias:    req.PrazoDias,
		Ativo:        existing.Ativo,
		CreatedAt:    existing.CreatedAt,
	}
	if req.Ativo != nil {
		solicitacao.Ativo = *req.Ativo
	}
	if err := s.repo.Update(ctx, solicitacao); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar solicitação")
	}
	return solicitacao, nil
}

// Delete removes a request type that no protocol references. Types with
// history stay in the catalog and should be deactivated instead.
func (s *SolicitacaoService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountProtocolos(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao verificar protocolos")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "solicitação possui protocolos registrados")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao remover solicitação")
	}
	return nil
}

// ListDocumentos returns the required documents of one request type.
func (s *SolicitacaoService) ListDocumentos(ctx context.Context, solicitacaoID string) ([]models.DocumentoNecessario, error) {
	if _, err := s.Get(ctx, solicitacaoID); err != nil {
		return nil, err
	}
	documentos, err := s.repo.ListDocumentos(ctx, solicitacaoID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar documentos")
	}
	return documentos, nil
}

// AddDocumento appends a required document to a request type.
func (s *SolicitacaoService) AddDocumento(ctx context.Context, solicitacaoID string, req DocumentoRequest) (*models.DocumentoNecessario, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de documento inválidos")
	}
	if _, err := s.Get(ctx, solicitacaoID); err != nil {
		return nil, err
	}
	documento := &models.DocumentoNecessario{
		SolicitacaoID: solicitacaoID,
		Nome:          req.Nome,
		Obrigatorio:   req.Obrigatorio,
	}
	if err := s.repo.CreateDocumento(ctx, documento); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar documento")
	}
	return documento, nil
}

// UpdateDocumento renames a required document or flips its obligatory flag.
func (s *SolicitacaoService) UpdateDocumento(ctx context.Context, solicitacaoID, documentoID string, req DocumentoRequest) (*models.DocumentoNecessario, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de documento inválidos")
	}
	documentos, err := s.ListDocumentos(ctx, solicitacaoID)
	if err != nil {
		return nil, err
	}
	for _, documento := range documentos {
		if documento.ID == documentoID {
			documento.Nome = req.Nome
			documento.Obrigatorio = req.Obrigatorio
			if err := s.repo.UpdateDocumento(ctx, &documento); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar documento")
			}
			return &documento, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "documento não encontrado")
}

// RemoveDocumento removes a required document.
func (s *SolicitacaoService) RemoveDocumento(ctx context.Context, solicitacaoID, documentoID string) error {
	documentos, err := s.ListDocumentos(ctx, solicitacaoID)
	if err != nil {
		return err
	}
	for _, documento := range documentos {
		if documento.ID == documentoID {
			if err := s.repo.DeleteDocumento(ctx, documentoID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao remover documento")
			}
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "documento não encontrado")
}
