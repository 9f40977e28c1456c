package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/util"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/export"
	"github.com/prefeitura-aberta/protocolo-api/pkg/jobs"
)

type relatorioRepository interface {
	Create(ctx context.Context, relatorio *models.Relatorio) error
	FindByID(ctx context.Context, id string) (*models.Relatorio, error)
	ListByUsuario(ctx context.Context, usuarioID string, limit int) ([]models.Relatorio, error)
	MarkProcessando(ctx context.Context, id string) error
	MarkConcluido(ctx context.Context, id, arquivo string, expiraEm time.Time) error
	MarkFalha(ctx context.Context, id, erro string) error
	DeleteExpirados(ctx context.Context) ([]string, error)
}

type relatorioProtocoloLister interface {
	List(ctx context.Context, filter models.ProtocoloFilter) ([]models.ProtocoloDetail, int, error)
}

type relatorioStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// SolicitarRelatorioRequest queues one export of the protocol listing.
type SolicitarRelatorioRequest struct {
	Formato models.RelatorioFormato `json:"formato" validate:"required,oneof=CSV PDF"`
	Filtro  RelatorioFiltro         `json:"filtro"`
}

// RelatorioFiltro is the serializable subset of the listing filters an
// export honours.
type RelatorioFiltro struct {
	StatusID     string     `json:"status_id,omitempty"`
	SecretariaID string     `json:"secretaria_id,omitempty"`
	SetorID      string     `json:"setor_id,omitempty"`
	DataInicio   *time.Time `json:"data_inicio,omitempty"`
	DataFim      *time.Time `json:"data_fim,omitempty"`
	Atrasados    bool       `json:"atrasados,omitempty"`
}

// RelatorioConfig tunes the export pipeline.
type RelatorioConfig struct {
	RetencaoArquivos time.Duration
	MaxLinhas        int
}

// RelatorioService generates protocol-listing exports in background
// workers. Requests are acknowledged immediately and picked up by the
// queue; finished files expire after the retention window.
type RelatorioService struct {
	repo       relatorioRepository
	protocolos relatorioProtocoloLister
	storage    relatorioStorage
	signer     anexoSigner
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	queue      *jobs.Queue
	audit      protocoloAuditor
	validator  *validator.Validate
	logger     *zap.Logger
	config     RelatorioConfig
}

// NewRelatorioService constructs the export service. Call StartWorkers to
// attach the background queue before serving requests.
func NewRelatorioService(repo relatorioRepository, protocolos relatorioProtocoloLister, storage relatorioStorage, signer anexoSigner, audit protocoloAuditor, validate *validator.Validate, logger *zap.Logger, config RelatorioConfig) *RelatorioService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RetencaoArquivos <= 0 {
		config.RetencaoArquivos = 24 * time.Hour
	}
	if config.MaxLinhas <= 0 {
		config.MaxLinhas = 10000
	}
	return &RelatorioService{
		repo:       repo,
		protocolos: protocolos,
		storage:    storage,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		audit:      audit,
		validator:  validate,
		logger:     logger,
		config:     config,
	}
}

// StartWorkers wires and starts the background queue.
func (s *RelatorioService) StartWorkers(ctx context.Context, cfg jobs.QueueConfig) {
	s.queue = jobs.NewQueue("relatorios", s.processar, cfg)
	s.queue.Start(ctx)
}

// StopWorkers drains the queue.
func (s *RelatorioService) StopWorkers() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// Solicitar registers a pending export and enqueues its generation.
func (s *RelatorioService) Solicitar(ctx context.Context, req SolicitarRelatorioRequest, usuarioID string) (*models.Relatorio, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de relatório inválidos")
	}

	filtro, err := json.Marshal(req.Filtro)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao serializar filtro")
	}

	relatorio := &models.Relatorio{
		ID:            uuid.NewString(),
		Formato:       req.Formato,
		Filtro:        filtro,
		Status:        models.RelatorioPendente,
		SolicitadoPor: usuarioID,
	}
	if err := s.repo.Create(ctx, relatorio); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao registrar relatório")
	}

	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "fila de relatórios indisponível")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: relatorio.ID, Type: "relatorio"}); err != nil {
		if markErr := s.repo.MarkFalha(ctx, relatorio.ID, "fila cheia"); markErr != nil {
			s.logger.Warn("failed to mark relatorio as failed", zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "fila de relatórios cheia")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UsuarioID:  &usuarioID,
			Action:     models.AuditActionRelatorioSolicitar,
			Resource:   "relatorios",
			ResourceID: &relatorio.ID,
		}); err != nil {
			s.logger.Warn("failed to record relatorio audit log", zap.Error(err))
		}
	}
	return relatorio, nil
}

// Listar returns the export jobs of one staff member, each finished one
// carrying a signed download token.
func (s *RelatorioService) Listar(ctx context.Context, usuarioID string, limit int) ([]RelatorioView, error) {
	relatorios, err := s.repo.ListByUsuario(ctx, usuarioID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar relatórios")
	}
	views := make([]RelatorioView, 0, len(relatorios))
	for _, relatorio := range relatorios {
		views = append(views, s.buildView(relatorio))
	}
	return views, nil
}

// RelatorioView augments a Relatorio with a signed download token.
type RelatorioView struct {
	models.Relatorio
	DownloadToken string `json:"download_token,omitempty"`
}

// Download resolves a signed token to the generated file.
func (s *RelatorioService) Download(ctx context.Context, token string) (*models.Relatorio, *os.File, error) {
	relatorioID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "token de download inválido ou expirado")
	}

	relatorio, err := s.repo.FindByID(ctx, relatorioID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "relatório não encontrado")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar relatório")
	}
	if relatorio.Status != models.RelatorioConcluido || relatorio.Arquivo == nil || *relatorio.Arquivo != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "arquivo não disponível")
	}

	file, err := s.storage.Open(*relatorio.Arquivo)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao abrir arquivo")
	}
	return relatorio, file, nil
}

// LimparExpirados removes expired export rows and their files. Intended
// to run on a ticker from main.
func (s *RelatorioService) LimparExpirados(ctx context.Context) {
	arquivos, err := s.repo.DeleteExpirados(ctx)
	if err != nil {
		s.logger.Warn("failed to purge expired relatorios", zap.Error(err))
		return
	}
	for _, arquivo := range arquivos {
		if err := s.storage.Delete(arquivo); err != nil {
			s.logger.Warn("failed to remove expired file", zap.String("path", arquivo), zap.Error(err))
		}
	}
	if len(arquivos) > 0 {
		s.logger.Info("expired relatorios purged", zap.Int("count", len(arquivos)))
	}
}

func (s *RelatorioService) buildView(relatorio models.Relatorio) RelatorioView {
	view := RelatorioView{Relatorio: relatorio}
	if relatorio.Status == models.RelatorioConcluido && relatorio.Arquivo != nil {
		token, _, err := s.signer.Generate(relatorio.ID, *relatorio.Arquivo)
		if err != nil {
			s.logger.Warn("failed to sign relatorio url", zap.String("relatorio_id", relatorio.ID), zap.Error(err))
		} else {
			view.DownloadToken = token
		}
	}
	return view
}

// processar is the queue handler: it renders the export and stores the
// produced file.
func (s *RelatorioService) processar(ctx context.Context, job jobs.Job) error {
	relatorio, err := s.repo.FindByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load relatorio %s: %w", job.ID, err)
	}
	if relatorio.Status == models.RelatorioConcluido {
		return nil
	}
	if err := s.repo.MarkProcessando(ctx, relatorio.ID); err != nil {
		return fmt.Errorf("mark processando: %w", err)
	}

	var filtro RelatorioFiltro
	if len(relatorio.Filtro) > 0 {
		if err := json.Unmarshal(relatorio.Filtro, &filtro); err != nil {
			s.fail(ctx, relatorio.ID, "filtro inválido")
			return nil
		}
	}

	protocolos, _, err := s.protocolos.List(ctx, models.ProtocoloFilter{
		StatusID:     filtro.StatusID,
		SecretariaID: filtro.SecretariaID,
		SetorID:      filtro.SetorID,
		DataInicio:   filtro.DataInicio,
		DataFim:      filtro.DataFim,
		Atrasados:    filtro.Atrasados,
		Page:         1,
		PageSize:     s.config.MaxLinhas,
		SortBy:       "created_at",
		SortOrder:    "ASC",
	})
	if err != nil {
		s.fail(ctx, relatorio.ID, "falha ao consultar protocolos")
		return fmt.Errorf("list protocolos: %w", err)
	}

	dataset := buildRelatorioDataset(protocolos)
	var payload []byte
	var extensao string
	switch relatorio.Formato {
	case models.RelatorioPDF:
		payload, err = s.pdf.Render(dataset, "Relatório de Protocolos")
		extensao = "pdf"
	default:
		payload, err = s.csv.Render(dataset)
		extensao = "csv"
	}
	if err != nil {
		s.fail(ctx, relatorio.ID, "falha ao gerar arquivo")
		return fmt.Errorf("render relatorio: %w", err)
	}

	stored, err := s.storage.Save(fmt.Sprintf("%s.%s", relatorio.ID, extensao), payload)
	if err != nil {
		s.fail(ctx, relatorio.ID, "falha ao salvar arquivo")
		return fmt.Errorf("save relatorio: %w", err)
	}

	expiraEm := time.Now().UTC().Add(s.config.RetencaoArquivos)
	if err := s.repo.MarkConcluido(ctx, relatorio.ID, stored, expiraEm); err != nil {
		return fmt.Errorf("mark concluido: %w", err)
	}
	s.logger.Info("relatorio generated",
		zap.String("relatorio_id", relatorio.ID),
		zap.String("formato", string(relatorio.Formato)),
		zap.Int("linhas", len(protocolos)))
	return nil
}

func (s *RelatorioService) fail(ctx context.Context, id, motivo string) {
	if err := s.repo.MarkFalha(ctx, id, motivo); err != nil {
		s.logger.Warn("failed to mark relatorio as failed", zap.String("relatorio_id", id), zap.Error(err))
	}
}

func buildRelatorioDataset(protocolos []models.ProtocoloDetail) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Número", "Abertura", "Solicitante", "Documento", "Solicitação", "Secretaria", "Setor", "Situação", "Prazo"},
	}
	for _, p := range protocolos {
		prazo := ""
		if p.Prazo != nil {
			prazo = p.Prazo.Format("02/01/2006")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Número":      p.Numero,
			"Abertura":    p.CreatedAt.Format("02/01/2006 15:04"),
			"Solicitante": p.SolicitanteNome,
			"Documento":   util.FormatarDocumento(p.SolicitanteDocumento),
			"Solicitação": p.SolicitacaoNome,
			"Secretaria":  p.SecretariaNome,
			"Setor":       p.SetorNome,
			"Situação":    p.StatusNome,
			"Prazo":       prazo,
		})
	}
	return dataset
}
