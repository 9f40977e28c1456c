package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/util"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

type solicitanteRepository interface {
	List(ctx context.Context, filter models.SolicitanteFilter) ([]models.Solicitante, int, error)
	FindByID(ctx context.Context, id string) (*models.Solicitante, error)
	FindByDocumento(ctx context.Context, documento string) (*models.Solicitante, error)
	Create(ctx context.Context, solicitante *models.Solicitante) error
	Update(ctx context.Context, solicitante *models.Solicitante) error
}

// SolicitanteRequest holds the identification and contact payload for a
// citizen or company.
type SolicitanteRequest struct {
	Documento   string `json:"documento" validate:"required"`
	Nome        string `json:"nome" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	Telefone    string `json:"telefone"`
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	UF          string `json:"uf" validate:"omitempty,len=2"`
}

// SolicitanteService manages citizens and companies that open protocols.
type SolicitanteService struct {
	repo      solicitanteRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSolicitanteService constructs the solicitante service.
func NewSolicitanteService(repo solicitanteRepository, validate *validator.Validate, logger *zap.Logger) *SolicitanteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SolicitanteService{repo: repo, validator: validate, logger: logger}
}

// List returns solicitantes and pagination metadata.
func (s *SolicitanteService) List(ctx context.Context, filter models.SolicitanteFilter) ([]models.Solicitante, *models.Pagination, error) {
	filter.Documento = util.SomenteDigitos(filter.Documento)
	solicitantes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao listar solicitantes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return solicitantes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one solicitante.
func (s *SolicitanteService) Get(ctx context.Context, id string) (*models.Solicitante, error) {
	solicitante, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "solicitante não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar solicitante")
	}
	return solicitante, nil
}

// GetByDocumento returns one solicitante by CPF or CNPJ, accepting
// formatted or raw digits.
func (s *SolicitanteService) GetByDocumento(ctx context.Context, documento string) (*models.Solicitante, error) {
	digits := util.SomenteDigitos(documento)
	if !util.ValidarDocumento(digits) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "documento inválido")
	}
	solicitante, err := s.repo.FindByDocumento(ctx, digits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "solicitante não encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar solicitante")
	}
	return solicitante, nil
}

// Upsert creates the solicitante on first contact or refreshes the
// contact data of an existing record keyed by documento.
func (s *SolicitanteService) Upsert(ctx context.Context, req SolicitanteRequest) (*models.Solicitante, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de solicitante inválidos")
	}

	digits := util.SomenteDigitos(req.Documento)
	var tipo models.TipoPessoa
	switch {
	case util.ValidarCPF(digits):
		tipo = models.PessoaFisica
	case util.ValidarCNPJ(digits):
		tipo = models.PessoaJuridica
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "documento inválido")
	}

	existing, err := s.repo.FindByDocumento(ctx, digits)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao carregar solicitante")
	}

	if existing != nil {
		existing.Nome = req.Nome
		existing.Email = req.Email
		existing.Telefone = req.Telefone
		existing.CEP = req.CEP
		existing.Logradouro = req.Logradouro
		existing.Numero = req.Numero
		existing.Complemento = req.Complemento
		existing.Bairro = req.Bairro
		existing.Cidade = req.Cidade
		existing.UF = req.UF
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar solicitante")
		}
		return existing, nil
	}

	solicitante := &models.Solicitante{
		Documento:   digits,
		TipoPessoa:  tipo,
		Nome:        req.Nome,
		Email:       req.Email,
		Telefone:    req.Telefone,
		CEP:         req.CEP,
		Logradouro:  req.Logradouro,
		Numero:      req.Numero,
		Complemento: req.Complemento,
		Bairro:      req.Bairro,
		Cidade:      req.Cidade,
		UF:          req.UF,
	}
	if err := s.repo.Create(ctx, solicitante); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao criar solicitante")
	}
	return solicitante, nil
}

// Update rewrites one solicitante by ID. Changing the documento is
// allowed as long as no other record already holds it.
func (s *SolicitanteService) Update(ctx context.Context, id string, req SolicitanteRequest) (*models.Solicitante, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dados de solicitante inválidos")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	digits := util.SomenteDigitos(req.Documento)
	var tipo models.TipoPessoa
	switch {
	case util.ValidarCPF(digits):
		tipo = models.PessoaFisica
	case util.ValidarCNPJ(digits):
		tipo = models.PessoaJuridica
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "documento inválido")
	}
	if digits != existing.Documento {
		other, err := s.repo.FindByDocumento(ctx, digits)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao verificar documento")
		}
		if other != nil && other.ID != id {
			return nil, appErrors.Clone(appErrors.ErrConflict, "documento já cadastrado para outro solicitante")
		}
	}

	existing.Documento = digits
	existing.TipoPessoa = tipo
	existing.Nome = req.Nome
	existing.Email = req.Email
	existing.Telefone = req.Telefone
	existing.CEP = req.CEP
	existing.Logradouro = req.Logradouro
	existing.Numero = req.Numero
	existing.Complemento = req.Complemento
	existing.Bairro = req.Bairro
	existing.Cidade = req.Cidade
	existing.UF = req.UF
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "falha ao atualizar solicitante")
	}
	return existing, nil
}
