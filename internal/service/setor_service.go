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

type setorRepository interface {
	List(ctx context.Context, filter models.SetorFilter) ([]models.SetorDetail, error)
	FindByID(ctx context.Context, id string) (*models.SetorDetail, error)
	Create(ctx context.Context, setor *models.Setor) error
	Update(ctx context.Context, setor *models.Setor) error
	CountProtocolosAbertos(ctx context.Context, setorID string) (int, error)
}

type setorSecretariaRepository interface {
	FindByID(ctx context.Context, id string) (*models.Secretaria, error)
}

// SetorRequest holds payload for creating and updating setores.
type SetorRequest struct {
	SecretariaID string `json:"secretaria_id" validate:"required"`
	Nome         string `json:"nome" validate:"required"`
	Ativo        *bool  `json:"ativo"`
}

// SetorService handles setor management.
type SetorService struct {
	repo        setorRepository
	secretarias setorSecretariaRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSetorService constructs the setor service.
func NewSetorService(repo setorRepository, secretarias setorSecretariaRepository, validate *validator.Validate, logger *zap.Logger) *SetorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SetorService{repo: repo, secretarias: secretarias, validator: validate, logger: logger}
}

// List returns setores matching the filter.
func (s *SetorService) List(ctx context.Context, filter models.SetorFilter) ([]models.SetorDetail, error) {
	setores, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar setores")
	}
	return setores, nil
}

// Get returns one setor.
func (s *SetorService) Get(ctx context.Context, id string) (*models.SetorDetail, error) {
	setor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setor não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar setor")
	}
	return setor, nil
}

// Create registers a setor under an active secretaria.
func (s *SetorService) Create(ctx context.Context, req SetorRequest) (*models.Setor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de setor inválidos")
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

	setor := &models.Setor{SecretariaID: req.SecretariaID, Nome: req.Nome, Ativo: true}
	if req.Ativo != nil {
		setor.Ativo = *req.Ativo
	}
	if err := s.repo.Create(ctx, setor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar setor")
	}
	return setor, nil
}

// Update modifies a setor. Deactivating is refused while the setor still
// holds open protocols.
func (s *SetorService) Update(ctx context.Context, id string, req SetorRequest) (*models.Setor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de setor inválidos")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Ativo != nil && !*req.Ativo && existing.Ativo {
		abertos, err := s.repo.CountProtocolosAbertos(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao verificar protocolos abertos")
		}
		if abertos > 0 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "setor possui protocolos em aberto")
		}
	}

	setor := &models.Setor{
		ID:           existing.ID,
		SecretariaID: req.SecretariaID,
		Nome:         req.Nome,
		Ativo:        existing.Ativo,
		CreatedAt:    existing.CreatedAt,
	}
	if req.Ativo != nil {
		setor.Ativo = *req.Ativo
	}
	if err := s.repo.Update(ctx, setor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar setor")
	}
	return setor, nil
}

// Desativar disables a setor. Refused while it holds open protocols.
func (s *SetorService) Desativar(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Ativo {
		return nil
	}
	abertos, err := s.repo.CountProtocolosAbertos(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao verificar protocolos abertos")
	}
	if abertos > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "setor possui protocolos em aberto")
	}
	setor := &models.Setor{
		ID:           existing.ID,
		SecretariaID: existing.SecretariaID,
		Nome:         existing.Nome,
		Ativo:        false,
		CreatedAt:    existing.CreatedAt,
	}
	if err := s.repo.Update(ctx, setor); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao desativar setor")
	}
	return nil
}
