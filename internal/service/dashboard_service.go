package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:resumo"

type dashboardRepository interface {
	CountTotal(ctx context.Context) (int, error)
	CountAbertos(ctx context.Context) (int, error)
	CountAtrasados(ctx context.Context) (int, error)
	CountPorStatus(ctx context.Context) ([]models.StatusCount, error)
	CountPorSecretaria(ctx context.Context) ([]models.SecretariaCount, error)
	CountPorMes(ctx context.Context, meses int) ([]models.MesCount, error)
}

// DashboardResumo is the aggregate payload behind the staff landing page.
type DashboardResumo struct {
	Total         int                      `json:"total"`
	Abertos       int                      `json:"abertos"`
	Encerrados    int                      `json:"encerrados"`
	Atrasados     int                      `json:"atrasados"`
	PorStatus     []models.StatusCount     `json:"por_status"`
	PorSecretaria []models.SecretariaCount `json:"por_secretaria"`
	PorMes        []models.MesCount        `json:"por_mes"`
	GeradoEm      time.Time                `json:"gerado_em"`
}

// DashboardService composes the dashboard aggregates, cached briefly so a
// busy triage screen does not hammer the aggregate queries.
type DashboardService struct {
	repo     dashboardRepository
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
	meses    int
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(repo dashboardRepository, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, cacheTTL: cacheTTL, meses: 12}
}

// Resumo returns the dashboard aggregates, served from cache when warm.
func (s *DashboardService) Resumo(ctx context.Context) (*DashboardResumo, error) {
	var cached DashboardResumo
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	total, err := s.repo.CountTotal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao contar protocolos")
	}
	abertos, err := s.repo.CountAbertos(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao contar protocolos abertos")
	}
	atrasados, err := s.repo.CountAtrasados(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao contar protocolos atrasados")
	}
	porStatus, err := s.repo.CountPorStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao agrupar por status")
	}
	porSecretaria, err := s.repo.CountPorSecretaria(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao agrupar por secretaria")
	}
	porMes, err := s.repo.CountPorMes(ctx, s.meses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao agrupar por mês")
	}

	resumo := &DashboardResumo{
		Total:         total,
		Abertos:       abertos,
		Encerrados:    total - abertos,
		Atrasados:     atrasados,
		PorStatus:     porStatus,
		PorSecretaria: porSecretaria,
		PorMes:        porMes,
		GeradoEm:      time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, resumo, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return resumo, nil
}

// Invalidate drops the cached aggregates. Called after writes that move
// the numbers.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
