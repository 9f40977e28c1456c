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

type secretariaRepository interface {
	List(ctx context.Context, filter models.SecretariaFilter) ([]models.Secretaria, error)
	FindByID(ctx context.Context, id string) (*models.Secretaria, error)
	Create(ctx context.Context, secretaria *models.Secretaria) error
	Update(ctx context.Context, secretaria *models.Secretaria) error
	CountProtocolosAbertos(ctx context.Context, secretariaID string) (int, error)
}

// SecretariaRequest holds payload for creating and updating secretarias.
type SecretariaRequest struct {
	Nome  string `json:"nome" validate:"required"`
	Sigla string `json:"sigla" validate:"required,max=10"`
	Ativo *bool  `json:"ativo"`
}

// SecretariaService handles secretaria management.
type SecretariaService struct {
	repo      secretariaRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSecretariaService constructs the secretaria service.
func NewSecretariaService(repo secretariaRepository, validate *validator.Validate, logger *zap.Logger) *SecretariaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecretariaService{repo: repo, validator: validate, logger: logger}
}

// List returns secretarias matching the filter.
func (s *SecretariaService) List(ctx context.Context, filter models.SecretariaFilter) ([]models.Secretaria, error) {
	secretarias, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar secretarias")
	}
	return secretarias, nil
}

// Get returns one secretaria.
func (s *SecretariaService) Get(ctx context.Context, id string) (*models.Secretaria, error) {
	secretaria, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "secretaria não encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar secretaria")
	}
	return secretaria, nil
}

// Create registers a secretaria.
func (s *SecretariaService) Create(ctx context.Context, req SecretariaRequest) (*models.Secretaria, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de secretaria inválidos")
	}
	secretaria := &models.Secretaria{Nome: req.Nome, Sigla: req.Sigla, Ativo: true}
	if req.Ativo != nil {
		secretaria.Ativo = *req.Ativo
	}
	if err := s.repo.Create(ctx, secretaria); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar secretaria")
	}
	return secretaria, nil
}

// Update modifies a secretaria. Deactivating is refused while the
// secretaria still has open protocols.
func (s *SecretariaService) Update(ctx context.Context, id string, req SecretariaRequest) (*models.Secretaria, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de secretaria inválidos")
	}
	secretaria, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Ativo != nil && !*req.Ativo && secretaria.Ativo {
		abertos, err := s.repo.CountProtocolosAbertos(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao verificar protocolos abertos")
		}
		if abertos > 0 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "secretaria possui protocolos em aberto")
		}
	}

	secretaria.Nome = req.Nome
	secretaria.Sigla = req.Sigla
	if req.Ativo != nil {
		secretaria.Ativo = *req.Ativo
	}
	if err := s.repo.Update(ctx, secretaria); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar secretaria")
	}
	return secretaria, nil
}

// Desativar disables a secretaria. Refused while open protocols are
// assigned to any of its setores.
func (s *SecretariaService) Desativar(ctx context.Context, id string) error {
	secretaria, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !secretaria.Ativo {
		return nil
	}
	abertos, err := s.repo.CountProtocolosAbertos(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao verificar protocolos abertos")
	}
	if abertos > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "secretaria possui protocolos em aberto")
	}
	secretaria.Ativo = false
	if err := s.repo.Update(ctx, secretaria); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao desativar secretaria")
	}
	return nil
}
