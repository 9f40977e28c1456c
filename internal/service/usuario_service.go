package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

type usuarioRepository interface {
	List(ctx context.Context, filter models.UsuarioFilter) ([]models.Usuario, int, error)
	FindByID(ctx context.Context, id string) (*models.Usuario, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, usuario *models.Usuario) error
	Update(ctx context.Context, usuario *models.Usuario) error
	Deactivate(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type usuarioSetorRepository interface {
	FindByID(ctx context.Context, id string) (*models.SetorDetail, error)
}

// CreateUsuarioRequest holds payload for creating staff accounts.
type CreateUsuarioRequest struct {
	Email   string        `json:"email" validate:"required,email"`
	Senha   string        `json:"senha" validate:"required,min=6"`
	Nome    string        `json:"nome" validate:"required"`
	Perfil  models.Perfil `json:"perfil" validate:"required,oneof=MASTER ADMIN USUARIO"`
	SetorID *string       `json:"setor_id"`
}

// UpdateUsuarioRequest holds payload for updating staff accounts.
type UpdateUsuarioRequest struct {
	Email   string        `json:"email" validate:"required,email"`
	Nome    string        `json:"nome" validate:"required"`
	Perfil  models.Perfil `json:"perfil" validate:"required,oneof=MASTER ADMIN USUARIO"`
	SetorID *string       `json:"setor_id"`
	Ativo   bool          `json:"ativo"`
}

// PerfilProprioRequest holds the fields a staff member may change on the
// own account. Perfil and setor stay under admin control.
type PerfilProprioRequest struct {
	Email string `json:"email" validate:"required,email"`
	Nome  string `json:"nome" validate:"required"`
}

// UsuarioService handles staff account management.
type UsuarioService struct {
	repo      usuarioRepository
	setores   usuarioSetorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUsuarioService constructs the staff account service.
func NewUsuarioService(repo usuarioRepository, setores usuarioSetorRepository, validate *validator.Validate, logger *zap.Logger) *UsuarioService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsuarioService{repo: repo, setores: setores, validator: validate, logger: logger}
}

// List returns staff accounts and pagination metadata.
func (s *UsuarioService) List(ctx context.Context, filter models.UsuarioFilter) ([]models.Usuario, *models.Pagination, error) {
	usuarios, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar usuários")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return usuarios, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one staff account.
func (s *UsuarioService) Get(ctx context.Context, id string) (*models.Usuario, error) {
	usuario, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "usuário não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar usuário")
	}
	return usuario, nil
}

// Create registers a new staff account. The USUARIO profile requires a
// setor so the account lands in a routing queue.
func (s *UsuarioService) Create(ctx context.Context, req CreateUsuarioRequest, actorID string) (*models.Usuario, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de usuário inválidos")
	}
	if req.Perfil == models.PerfilUsuario && (req.SetorID == nil || *req.SetorID == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "perfil USUARIO exige um setor")
	}
	if req.SetorID != nil && *req.SetorID != "" {
		if _, err := s.setores.FindByID(ctx, *req.SetorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "setor não encontrado")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar setor")
		}
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar e-mail")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "e-mail já cadastrado")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao gerar hash de senha")
	}

	usuario := &models.Usuario{
		Email:     req.Email,
		SenhaHash: string(hash),
		Nome:      req.Nome,
		Perfil:    req.Perfil,
		SetorID:   req.SetorID,
		Ativo:     true,
	}
	if err := s.repo.Create(ctx, usuario); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar usuário")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UsuarioID:  &actorID,
		Action:     models.AuditActionUsuarioCreate,
		Resource:   "usuarios",
		ResourceID: &usuario.ID,
	}); err != nil {
		s.logger.Warn("failed to record usuario create audit log", zap.Error(err))
	}
	return usuario, nil
}

// Update modifies a staff account.
func (s *UsuarioService) Update(ctx context.Context, id string, req UpdateUsuarioRequest, actorID string) (*models.Usuario, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de usuário inválidos")
	}
	if req.Perfil == models.PerfilUsuario && (req.SetorID == nil || *req.SetorID == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "perfil USUARIO exige um setor")
	}

	usuario, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar e-mail")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "e-mail já cadastrado")
	}

	usuario.Email = req.Email
	usuario.Nome = req.Nome
	usuario.Perfil = req.Perfil
	usuario.SetorID = req.SetorID
	usuario.Ativo = req.Ativo
	if err := s.repo.Update(ctx, usuario); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar usuário")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UsuarioID:  &actorID,
		Action:     models.AuditActionUsuarioUpdate,
		Resource:   "usuarios",
		ResourceID: &usuario.ID,
	}); err != nil {
		s.logger.Warn("failed to record usuario update audit log", zap.Error(err))
	}
	return usuario, nil
}

// UpdateProfile changes name and e-mail of the calling account.
func (s *UsuarioService) UpdateProfile(ctx context.Context, id string, req PerfilProprioRequest) (*models.Usuario, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de perfil inválidos")
	}

	usuario, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao validar e-mail")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "e-mail já cadastrado")
	}

	usuario.Email = req.Email
	usuario.Nome = req.Nome
	if err := s.repo.Update(ctx, usuario); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar perfil")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UsuarioID:  &id,
		Action:     models.AuditActionUsuarioUpdate,
		Resource:   "usuarios",
		ResourceID: &usuario.ID,
	}); err != nil {
		s.logger.Warn("failed to record profile update audit log", zap.Error(err))
	}
	return usuario, nil
}

// Deactivate disables a staff account. A staff member cannot deactivate
// the own account.
func (s *UsuarioService) Deactivate(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return appErrors.Clone(appErrors.ErrValidation, "não é possível desativar a própria conta")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao desativar usuário")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UsuarioID:  &actorID,
		Action:     models.AuditActionUsuarioDelete,
		Resource:   "usuarios",
		ResourceID: &id,
	}); err != nil {
		s.logger.Warn("failed to record usuario deactivate audit log", zap.Error(err))
	}
	return nil
}
