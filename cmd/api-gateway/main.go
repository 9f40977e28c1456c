package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/prefeitura-aberta/protocolo-api/api/swagger"
	"github.com/prefeitura-aberta/protocolo-api/internal/handler"
	"github.com/prefeitura-aberta/protocolo-api/internal/middleware"
	"github.com/prefeitura-aberta/protocolo-api/internal/repository"
	"github.com/prefeitura-aberta/protocolo-api/internal/router"
	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	"github.com/prefeitura-aberta/protocolo-api/pkg/cache"
	"github.com/prefeitura-aberta/protocolo-api/pkg/config"
	"github.com/prefeitura-aberta/protocolo-api/pkg/database"
	"github.com/prefeitura-aberta/protocolo-api/pkg/jobs"
	"github.com/prefeitura-aberta/protocolo-api/pkg/logger"
	"github.com/prefeitura-aberta/protocolo-api/pkg/storage"
)

// @title Protocolo API
// @version 1.0.0
// @description API de abertura e acompanhamento de protocolos municipais
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	}

	anexoStorage, err := storage.NewLocalStorage(cfg.Anexos.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("attachment storage init failed", "error", err)
	}
	brandingDir := filepath.Join(cfg.Anexos.StorageDir, "branding")
	brandingStorage, err := storage.NewLocalStorage(brandingDir)
	if err != nil {
		logr.Sugar().Fatalw("branding storage init failed", "error", err)
	}
	relatorioStorage, err := storage.NewLocalStorage(cfg.Relatorios.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("report storage init failed", "error", err)
	}

	usuarioRepo := repository.NewUsuarioRepository(db)
	secretariaRepo := repository.NewSecretariaRepository(db)
	setorRepo := repository.NewSetorRepository(db)
	solicitacaoRepo := repository.NewSolicitacaoRepository(db)
	solicitanteRepo := repository.NewSolicitanteRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	protocoloRepo := repository.NewProtocoloRepository(db)
	movimentacaoRepo := repository.NewMovimentacaoRepository(db)
	anexoRepo := repository.NewAnexoRepository(db)
	municipioRepo := repository.NewMunicipioRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	relatorioRepo := repository.NewRelatorioRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	authSvc := service.NewAuthService(usuarioRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		ResetTokenExpiry:   cfg.JWT.ResetExpiration,
		Issuer:             "protocolo-api",
	})
	usuarioSvc := service.NewUsuarioService(usuarioRepo, setorRepo, nil, logr)
	secretariaSvc := service.NewSecretariaService(secretariaRepo, nil, logr)
	setorSvc := service.NewSetorService(setorRepo, secretariaRepo, nil, logr)
	solicitacaoSvc := service.NewSolicitacaoService(solicitacaoRepo, secretariaRepo, nil, logr)
	solicitanteSvc := service.NewSolicitanteService(solicitanteRepo, nil, logr)
	statusSvc := service.NewStatusService(statusRepo, nil, logr)
	if err := statusSvc.SeedPadrao(ctx); err != nil {
		logr.Sugar().Fatalw("status catalog seed failed", "error", err)
	}

	protocoloSvc := service.NewProtocoloService(service.ProtocoloServiceDeps{
		Protocolos:    protocoloRepo,
		Movimentacoes: movimentacaoRepo,
		Statuses:      statusRepo,
		Setores:       setorRepo,
		Solicitacoes:  solicitacaoRepo,
		Solicitantes:  solicitanteRepo,
		Audit:         usuarioRepo,
	}, nil, logr)

	publicoSvc := service.NewPublicoService(protocoloRepo, movimentacaoRepo, solicitanteSvc, protocoloSvc, nil, logr)

	anexoSigner := storage.NewSignedURLSigner(cfg.Anexos.SignedURLSecret, cfg.Anexos.SignedURLTTL)
	anexoSvc := service.NewAnexoService(anexoRepo, protocoloRepo, movimentacaoRepo, anexoStorage, anexoSigner, usuarioRepo, logr, service.AnexoConfig{
		MaxFileSizeBytes: cfg.Anexos.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Anexos.AllowedMIMEs,
	})

	relatorioSigner := storage.NewSignedURLSigner(cfg.Relatorios.SignedURLSecret, cfg.Relatorios.SignedURLTTL)
	relatorioSvc := service.NewRelatorioService(relatorioRepo, protocoloRepo, relatorioStorage, relatorioSigner, usuarioRepo, nil, logr, service.RelatorioConfig{
		RetencaoArquivos: cfg.Relatorios.SignedURLTTL,
	})
	relatorioSvc.StartWorkers(ctx, jobs.QueueConfig{
		Workers:    cfg.Relatorios.WorkerConcurrency,
		MaxRetries: cfg.Relatorios.WorkerRetries,
		Logger:     logr,
	})
	defer relatorioSvc.StopWorkers()

	go func() {
		ticker := time.NewTicker(cfg.Relatorios.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				relatorioSvc.LimparExpirados(ctx)
			}
		}
	}()

	logoBase := cfg.APIPrefix + "/publico/arquivos"
	municipioSvc := service.NewMunicipioService(municipioRepo, cacheSvc, usuarioRepo, brandingStorage, nil, logr, cfg.Municipio.CacheTTL, logoBase)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, logr, cfg.Dashboard.CacheTTL)

	rateLimiter := middleware.NewRateLimiter(cfg.Publico.RateLimitPerSecond, cfg.Publico.RateLimitBurst)
	defer rateLimiter.Stop()

	r := router.New(router.Deps{
		Config:      cfg,
		Logger:      logr,
		AuthService: authSvc,
		Metrics:     metricsSvc,
		RateLimiter: rateLimiter,

		Auth:         handler.NewAuthHandler(authSvc),
		Usuarios:     handler.NewUsuarioHandler(usuarioSvc),
		Secretarias:  handler.NewSecretariaHandler(secretariaSvc),
		Setores:      handler.NewSetorHandler(setorSvc),
		Solicitacoes: handler.NewSolicitacaoHandler(solicitacaoSvc),
		Solicitantes: handler.NewSolicitanteHandler(solicitanteSvc, protocoloSvc),
		Status:       handler.NewStatusHandler(statusSvc),
		Protocolos:   handler.NewProtocoloHandler(protocoloSvc, anexoSvc, usuarioSvc, metricsSvc),
		Publico:      handler.NewPublicoHandler(publicoSvc, municipioSvc, solicitacaoSvc, metricsSvc),
		Municipio:    handler.NewMunicipioHandler(municipioSvc),
		Dashboard:    handler.NewDashboardHandler(dashboardSvc),
		Relatorios:   handler.NewRelatorioHandler(relatorioSvc),
		Observ:       handler.NewMetricsHandler(metricsSvc, db),

		BrandingDir: brandingDir,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
}
