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
)

const municipioCacheKey = "municipio:view"

type municipioRepository interface {
	Get(ctx context.Context) (*models.Municipio, error)
	Update(ctx context.Context, municipio *models.Municipio) error
	UpdateLogo(ctx context.Context, id, logoPath string) error
}

type municipioAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type logoStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

// MunicipioRequest holds payload for updating municipality settings.
type MunicipioRequest struct {
	Nome          string `json:"nome" validate:"required"`
	UF            string `json:"uf" validate:"required,len=2"`
	Endereco      string `json:"endereco"`
	Telefone      string `json:"telefone"`
	Email         string `json:"email" validate:"omitempty,email"`
	Site          string `json:"site" validate:"omitempty,url"`
	CorPrimaria   string `json:"cor_primaria" validate:"required,hexcolor"`
	CorSecundaria string `json:"cor_secundaria" validate:"required,hexcolor"`
}

// MunicipioService manages the singleton municipality record and the
// derived branding payload served to the portal.
type MunicipioService struct {
	repo      municipioRepository
	cache     *CacheService
	audit     municipioAuditor
	storage   logoStorage
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	logoBase  string
}

// NewMunicipioService constructs the municipality service. logoBase is the
// public URL prefix where the logo file is served.
func NewMunicipioService(repo municipioRepository, cache *CacheService, audit municipioAuditor, storage logoStorage, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration, logoBase string) *MunicipioService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &MunicipioService{
		repo:      repo,
		cache:     cache,
		audit:     audit,
		storage:   storage,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
		logoBase:  logoBase,
	}
}

// Get returns the municipality view with computed HSL theme tokens,
// served from cache when warm.
func (s *MunicipioService) Get(ctx context.Context) (*models.MunicipioView, error) {
	var cached models.MunicipioView
	if hit, err := s.cache.Get(ctx, municipioCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	municipio, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "município não configurado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar município")
	}

	view := s.buildView(municipio)
	if err := s.cache.Set(ctx, municipioCacheKey, view, s.cacheTTL); err != nil {
		s.logger.Warn("municipio cache write failed", zap.Error(err))
	}
	return view, nil
}

// Update overwrites the municipality settings and invalidates the cache.
func (s *MunicipioService) Update(ctx context.Context, req MunicipioRequest, actorID string) (*models.MunicipioView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de município inválidos")
	}

	municipio, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "município não configurado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar município")
	}

	municipio.Nome = req.Nome
	municipio.UF = req.UF
	municipio.Endereco = req.Endereco
	municipio.Telefone = req.Telefone
	municipio.Email = req.Email
	municipio.Site = req.Site
	municipio.CorPrimaria = req.CorPrimaria
	municipio.CorSecundaria = req.CorSecundaria
	if err := s.repo.Update(ctx, municipio); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar município")
	}

	s.invalidate(ctx)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UsuarioID:  &actorID,
		Action:     models.AuditActionMunicipioUpdate,
		Resource:   "municipio",
		ResourceID: &municipio.ID,
	}); err != nil {
		s.logger.Warn("failed to record municipio update audit log", zap.Error(err))
	}

	return s.buildView(municipio), nil
}

// UpdateLogo stores the uploaded logo and points the record at it.
func (s *MunicipioService) UpdateLogo(ctx context.Context, filename string, data []byte, actorID string) (*models.MunicipioView, error) {
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "arquivo de logo vazio")
	}

	municipio, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "município não configurado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar município")
	}

	stored, err := s.storage.Save(fmt.Sprintf("logo/%d_%s", time.Now().UTC().UnixNano(), filename), data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao salvar logo")
	}

	previous := municipio.LogoPath
	if err := s.repo.UpdateLogo(ctx, municipio.ID, stored); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar logo")
	}
	municipio.LogoPath = stored

	if previous != "" {
		if err := s.storage.Delete(previous); err != nil {
			s.logger.Warn("failed to remove previous logo", zap.String("path", previous), zap.Error(err))
		}
	}

	s.invalidate(ctx)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UsuarioID:  &actorID,
		Action:     models.AuditActionMunicipioUpdate,
		Resource:   "municipio",
		ResourceID: &municipio.ID,
		NewValues:  []byte(`{"logo":"updated"}`),
	}); err != nil {
		s.logger.Warn("failed to record logo update audit log", zap.Error(err))
	}

	return s.buildView(municipio), nil
}

func (s *MunicipioService) buildView(municipio *models.Municipio) *models.MunicipioView {
	view := &models.MunicipioView{
		Municipio:        *municipio,
		CorPrimariaHSL:   util.HexToHSL(municipio.CorPrimaria),
		CorSecundariaHSL: util.HexToHSL(municipio.CorSecundaria),
	}
	if municipio.LogoPath != "" {
		view.LogoURL = fmt.Sprintf("%s/%s", s.logoBase, municipio.LogoPath)
	}
	return view
}

func (s *MunicipioService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, municipioCacheKey); err != nil {
		s.logger.Warn("municipio cache invalidation failed", zap.Error(err))
	}
}
