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

type statusRepository interface {
	List(ctx context.Context) ([]models.Status, error)
	FindByID(ctx context.Context, id string) (*models.Status, error)
	FindInicial(ctx context.Context) (*models.Status, error)
	Create(ctx context.Context, status *models.Status) error
	Update(ctx context.Context, status *models.Status) error
	Delete(ctx context.Context, id string) error
	CountProtocolos(ctx context.Context, statusID string) (int, error)
}

// StatusRequest holds payload for the status catalog.
type StatusRequest struct {
	Nome    string `json:"nome" validate:"required"`
	Cor     string `json:"cor" validate:"required,hexcolor"`
	Ordem   int    `json:"ordem" validate:"gte=0"`
	Inicial bool   `json:"inicial"`
	Final   bool   `json:"final"`
}

// StatusService manages the status catalog.
type StatusService struct {
	repo      statusRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStatusService constructs the status service.
func NewStatusService(repo statusRepository, validate *validator.Validate, logger *zap.Logger) *StatusService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{repo: repo, validator: validate, logger: logger}
}

var statusPadrao = []models.Status{
	{Nome: "Aberto", Cor: "#2563EB", Ordem: 1, Inicial: true},
	{Nome: "Em Análise", Cor: "#F59E0B", Ordem: 2},
	{Nome: "Em Andamento", Cor: "#8B5CF6", Ordem: 3},
	{Nome: "Concluído", Cor: "#16A34A", Ordem: 4, Final: true},
	{Nome: "Indeferido", Cor: "#DC2626", Ordem: 5, Final: true},
}

// SeedPadrao populates the default catalog on first boot. An already
// populated table is left untouched.
func (s *StatusService) SeedPadrao(ctx context.Context) error {
	statuses, err := s.repo.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar status")
	}
	if len(statuses) > 0 {
		return nil
	}
	for _, padrao := range statusPadrao {
		status := padrao
		if err := s.repo.Create(ctx, &status); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar status padrão")
		}
	}
	s.logger.Info("status catalog seeded", zap.Int("statuses", len(statusPadrao)))
	return nil
}

// List returns the status catalog in display order.
func (s *StatusService) List(ctx context.Context) ([]models.Status, error) {
	statuses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar status")
	}
	return statuses, nil
}

// Get returns one status.
func (s *StatusService) Get(ctx context.Context, id string) (*models.Status, error) {
	status, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "status não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar status")
	}
	return status, nil
}

// Create registers a status. A status cannot be inicial and final at once.
func (s *StatusService) Create(ctx context.Context, req StatusRequest) (*models.Status, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de status inválidos")
	}
	if req.Inicial && req.Final {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status não pode ser inicial e final")
	}
	status := &models.Status{
		Nome:    req.Nome,
		Cor:     req.Cor,
		Ordem:   req.Ordem,
		Inicial: req.Inicial,
		Final:   req.Final,
	}
	if err := s.repo.Create(ctx, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar status")
	}
	return status, nil
}

// Update modifies a status.
func (s *StatusService) Update(ctx context.Context, id string, req StatusRequest) (*models.Status, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de status inválidos")
	}
	if req.Inicial && req.Final {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status não pode ser inicial e final")
	}
	status, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	status.Nome = req.Nome
	status.Cor = req.Cor
	status.Ordem = req.Ordem
	status.Inicial = req.Inicial
	status.Final = req.Final
	if err := s.repo.Update(ctx, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar status")
	}
	return status, nil
}

// Delete removes a status that no protocol references.
func (s *StatusService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountProtocolos(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao verificar protocolos")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "status em uso por protocolos")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "status não encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao remover status")
	}
	return nil
}
