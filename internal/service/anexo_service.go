package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

type anexoRepository interface {
	ListByProtocolo(ctx context.Context, protocoloID string) ([]models.Anexo, error)
	FindByID(ctx context.Context, id string) (*models.Anexo, error)
	Create(ctx context.Context, anexo *models.Anexo) error
	Delete(ctx context.Context, id string) error
}

type anexoProtocoloRepository interface {
	FindByID(ctx context.Context, id string) (*models.ProtocoloDetail, error)
}

type anexoMovimentacaoRepository interface {
	FindByID(ctx context.Context, id string) (*models.Movimentacao, error)
}

type anexoStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type anexoSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (resourceID, relPath string, expiresAt time.Time, err error)
}

// AnexoUpload carries one uploaded file.
type AnexoUpload struct {
	Filename string
	MimeType string
	Data     []byte
}

// AnexoConfig bounds uploads.
type AnexoConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// AnexoService manages files attached to protocols. Download access goes
// through short-lived signed tokens so the storage path never leaks.
type AnexoService struct {
	repo          anexoRepository
	protocolos    anexoProtocoloRepository
	movimentacoes anexoMovimentacaoRepository
	storage       anexoStorage
	signer        anexoSigner
	audit         protocoloAuditor
	logger        *zap.Logger
	config        AnexoConfig
}

// NewAnexoService constructs the attachment service.
func NewAnexoService(repo anexoRepository, protocolos anexoProtocoloRepository, movimentacoes anexoMovimentacaoRepository, storage anexoStorage, signer anexoSigner, audit protocoloAuditor, logger *zap.Logger, config AnexoConfig) *AnexoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnexoService{
		repo:          repo,
		protocolos:    protocolos,
		movimentacoes: movimentacoes,
		storage:       storage,
		signer:        signer,
		audit:         audit,
		logger:        logger,
		config:        config,
	}
}

// List returns the attachments of one protocol with signed download URLs.
func (s *AnexoService) List(ctx context.Context, protocoloID string) ([]models.AnexoView, error) {
	if _, err := s.protocolos.FindByID(ctx, protocoloID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar protocolo")
	}

	anexos, err := s.repo.ListByProtocolo(ctx, protocoloID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar anexos")
	}

	views := make([]models.AnexoView, 0, len(anexos))
	for _, anexo := range anexos {
		view := models.AnexoView{Anexo: anexo}
		token, expires, err := s.signer.Generate(anexo.ID, anexo.Caminho)
		if err != nil {
			s.logger.Warn("failed to sign anexo url", zap.String("anexo_id", anexo.ID), zap.Error(err))
		} else {
			view.DownloadToken = token
			view.TokenExpiresAt = &expires
		}
		views = append(views, view)
	}
	return views, nil
}

// Upload validates, stores and registers one attachment.
func (s *AnexoService) Upload(ctx context.Context, protocoloID string, upload AnexoUpload, usuarioID string, movimentacaoID *string) (*models.Anexo, error) {
	if len(upload.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "arquivo vazio")
	}
	if s.config.MaxFileSizeBytes > 0 && int64(len(upload.Data)) > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "arquivo excede o tamanho máximo permitido")
	}
	if !s.mimeAllowed(upload.MimeType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tipo de arquivo não permitido")
	}

	if _, err := s.protocolos.FindByID(ctx, protocoloID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "protocolo não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar protocolo")
	}

	if movimentacaoID != nil {
		movimentacao, err := s.movimentacoes.FindByID(ctx, *movimentacaoID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "movimentação não encontrada")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar movimentação")
		}
		if movimentacao.ProtocoloID != protocoloID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "movimentação não pertence ao protocolo")
		}
	}

	stored, err := s.storage.Save(fmt.Sprintf("%s/%d_%s", protocoloID, time.Now().UTC().UnixNano(), upload.Filename), upload.Data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao salvar arquivo")
	}

	anexo := &models.Anexo{
		ProtocoloID:    protocoloID,
		MovimentacaoID: movimentacaoID,
		NomeArquivo:    upload.Filename,
		Caminho:        stored,
		MimeType:       upload.MimeType,
		TamanhoBytes:   int64(len(upload.Data)),
		UsuarioID:      &usuarioID,
	}
	if err := s.repo.Create(ctx, anexo); err != nil {
		if delErr := s.storage.Delete(stored); delErr != nil {
			s.logger.Warn("failed to remove orphan file", zap.String("path", stored), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao registrar anexo")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UsuarioID:  &usuarioID,
			Action:     models.AuditActionProtocoloAnexo,
			Resource:   "anexos",
			ResourceID: &anexo.ID,
		}); err != nil {
			s.logger.Warn("failed to record anexo audit log", zap.Error(err))
		}
	}
	return anexo, nil
}

// Download resolves a signed token to the stored file.
func (s *AnexoService) Download(ctx context.Context, token string) (*models.Anexo, *os.File, error) {
	anexoID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "token de download inválido ou expirado")
	}

	anexo, err := s.repo.FindByID(ctx, anexoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "anexo não encontrado")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar anexo")
	}
	if anexo.Caminho != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "token de download inválido")
	}

	file, err := s.storage.Open(anexo.Caminho)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao abrir arquivo")
	}
	return anexo, file, nil
}

// Delete removes one attachment and its stored file.
func (s *AnexoService) Delete(ctx context.Context, id, actorID string) error {
	anexo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "anexo não encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar anexo")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao remover anexo")
	}
	if err := s.storage.Delete(anexo.Caminho); err != nil {
		s.logger.Warn("failed to remove stored file", zap.String("path", anexo.Caminho), zap.Error(err))
	}
	return nil
}

func (s *AnexoService) mimeAllowed(mime string) bool {
	if len(s.config.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(allowed, mime) {
			return true
		}
	}
	return false
}
