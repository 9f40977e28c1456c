package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/prefeitura-aberta/protocolo-api/internal/handler"
	"github.com/prefeitura-aberta/protocolo-api/internal/middleware"
	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	"github.com/prefeitura-aberta/protocolo-api/pkg/config"
	"github.com/prefeitura-aberta/protocolo-api/pkg/logger"
	corsmiddleware "github.com/prefeitura-aberta/protocolo-api/pkg/middleware/cors"
	reqidmiddleware "github.com/prefeitura-aberta/protocolo-api/pkg/middleware/requestid"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Config *config.Config
	Logger *zap.Logger

	AuthService *service.AuthService
	Metrics     *service.MetricsService
	RateLimiter *middleware.RateLimiter

	Auth         *handler.AuthHandler
	Usuarios     *handler.UsuarioHandler
	Secretarias  *handler.SecretariaHandler
	Setores      *handler.SetorHandler
	Solicitacoes *handler.SolicitacaoHandler
	Solicitantes *handler.SolicitanteHandler
	Status       *handler.StatusHandler
	Protocolos   *handler.ProtocoloHandler
	Publico      *handler.PublicoHandler
	Municipio    *handler.MunicipioHandler
	Dashboard    *handler.DashboardHandler
	Relatorios   *handler.RelatorioHandler
	Observ       *handler.MetricsHandler

	// BrandingDir is served statically for the municipality logo.
	BrandingDir string
}

// New builds the gin engine with the full route table.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", deps.Observ.Health)
	r.GET("/ready", deps.Observ.Ready)
	r.GET("/metrics", deps.Observ.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Citizen portal, no authentication, throttled per IP.
	publico := api.Group("/publico")
	if deps.RateLimiter != nil {
		publico.Use(deps.RateLimiter.Handler())
	}
	{
		publico.GET("/municipio", deps.Publico.Municipio)
		publico.GET("/status", deps.Status.List)
		publico.GET("/solicitacoes", deps.Publico.Solicitacoes)
		publico.GET("/solicitacoes/:id/documentos", deps.Publico.Documentos)
		publico.POST("/protocolos", deps.Publico.Abrir)
		publico.GET("/protocolos/:codigo", deps.Publico.Consultar)
		publico.GET("/consulta", deps.Publico.ConsultarPorNumero)
		publico.GET("/meus-protocolos", deps.Publico.MeusProtocolos)
		publico.GET("/prefill", deps.Publico.Prefill)
	}
	if deps.BrandingDir != "" {
		api.Static("/publico/arquivos", deps.BrandingDir)
	}

	// Signed-token downloads carry their own authorization.
	api.GET("/anexos/download", deps.Protocolos.DownloadAnexo)
	api.GET("/relatorios/download", deps.Relatorios.Download)

	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
		auth.POST("/forgot-password", deps.Auth.ForgotPassword)
		auth.POST("/reset-password", deps.Auth.ResetPassword)

		authed := auth.Group("")
		authed.Use(middleware.JWT(deps.AuthService))
		authed.POST("/logout", deps.Auth.Logout)
		authed.GET("/me", deps.Auth.Me)
		authed.PUT("/me", deps.Usuarios.UpdateMe)
		authed.POST("/change-password", deps.Auth.ChangePassword)
	}

	staff := api.Group("")
	staff.Use(middleware.JWT(deps.AuthService))

	admins := middleware.RequirePerfis(models.PerfilMaster, models.PerfilAdmin)
	master := middleware.RequirePerfis(models.PerfilMaster)
	todos := middleware.RequirePerfis(models.PerfilMaster, models.PerfilAdmin, models.PerfilUsuario)

	usuarios := staff.Group("/usuarios")
	{
		usuarios.GET("", admins, deps.Usuarios.List)
		usuarios.POST("", admins, deps.Usuarios.Create)
		usuarios.GET("/:id", middleware.RBAC("MASTER", "ADMIN", "SELF"), deps.Usuarios.Get)
		usuarios.PUT("/:id", admins, deps.Usuarios.Update)
		usuarios.DELETE("/:id", master, deps.Usuarios.Deactivate)
	}

	secretarias := staff.Group("/secretarias")
	{
		secretarias.GET("", todos, deps.Secretarias.List)
		secretarias.GET("/:id", todos, deps.Secretarias.Get)
		secretarias.POST("", admins, deps.Secretarias.Create)
		secretarias.PUT("/:id", admins, deps.Secretarias.Update)
		secretarias.DELETE("/:id", master, deps.Secretarias.Delete)
	}

	setores := staff.Group("/setores")
	{
		setores.GET("", todos, deps.Setores.List)
		setores.GET("/:id", todos, deps.Setores.Get)
		setores.POST("", admins, deps.Setores.Create)
		setores.PUT("/:id", admins, deps.Setores.Update)
		setores.DELETE("/:id", master, deps.Setores.Delete)
	}

	solicitacoes := staff.Group("/solicitacoes")
	{
		solicitacoes.GET("", todos, deps.Solicitacoes.List)
		solicitacoes.GET("/:id", todos, deps.Solicitacoes.Get)
		solicitacoes.POST("", admins, deps.Solicitacoes.Create)
		solicitacoes.PUT("/:id", admins, deps.Solicitacoes.Update)
		solicitacoes.DELETE("/:id", master, deps.Solicitacoes.Delete)
		solicitacoes.GET("/:id/documentos", todos, deps.Solicitacoes.ListDocumentos)
		solicitacoes.POST("/:id/documentos", admins, deps.Solicitacoes.AddDocumento)
		solicitacoes.PUT("/:id/documentos/:documentoId", admins, deps.Solicitacoes.UpdateDocumento)
		solicitacoes.DELETE("/:id/documentos/:documentoId", admins, deps.Solicitacoes.RemoveDocumento)
	}

	solicitantes := staff.Group("/solicitantes")
	{
		solicitantes.GET("", todos, deps.Solicitantes.List)
		solicitantes.GET("/:id", todos, deps.Solicitantes.Get)
		solicitantes.POST("", todos, deps.Solicitantes.Create)
		solicitantes.PUT("/:id", todos, deps.Solicitantes.Update)
	}

	status := staff.Group("/status")
	{
		status.GET("", todos, deps.Status.List)
		status.GET("/:id", todos, deps.Status.Get)
		status.POST("", admins, deps.Status.Create)
		status.PUT("/:id", admins, deps.Status.Update)
		status.DELETE("/:id", master, deps.Status.Delete)
	}

	protocolos := staff.Group("/protocolos")
	{
		protocolos.GET("", todos, deps.Protocolos.List)
		protocolos.GET("/:id", todos, deps.Protocolos.Get)
		protocolos.GET("/:id/movimentacoes", todos, deps.Protocolos.ListMovimentacoes)
		protocolos.POST("", todos, deps.Protocolos.Create)
		protocolos.PUT("/:id", admins, deps.Protocolos.Update)
		protocolos.POST("/:id/tramitar", todos, deps.Protocolos.Tramitar)
		protocolos.DELETE("/:id", master, deps.Protocolos.Delete)
		protocolos.GET("/:id/comprovante", todos, deps.Protocolos.Comprovante)
		protocolos.GET("/:id/anexos", todos, deps.Protocolos.ListAnexos)
		protocolos.POST("/:id/anexos", todos, deps.Protocolos.UploadAnexo)
		protocolos.DELETE("/:id/anexos/:anexoId", admins, deps.Protocolos.DeleteAnexo)
	}

	staff.GET("/dashboard", admins, deps.Dashboard.Resumo)

	municipio := staff.Group("/municipio")
	{
		municipio.GET("", admins, deps.Municipio.Get)
		municipio.PUT("", master, deps.Municipio.Update)
		municipio.POST("/logo", master, deps.Municipio.UploadLogo)
	}

	relatorios := staff.Group("/relatorios")
	{
		relatorios.POST("", admins, deps.Relatorios.Solicitar)
		relatorios.GET("", admins, deps.Relatorios.Listar)
	}

	return r
}
