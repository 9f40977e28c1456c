package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
)

// UsuarioRepository manages persistence for staff accounts, their session
// tokens and the audit trail.
type UsuarioRepository struct {
	db *sqlx.DB
}

// NewUsuarioRepository constructs a UsuarioRepository.
func NewUsuarioRepository(db *sqlx.DB) *UsuarioRepository {
	return &UsuarioRepository{db: db}
}

// List returns staff accounts matching the provided filters.
func (r *UsuarioRepository) List(ctx context.Context, filter models.UsuarioFilter) ([]models.Usuario, int, error) {
	base := "FROM usuarios u"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Perfil != nil {
		conditions = append(conditions, fmt.Sprintf("u.perfil = $%d", len(args)+1))
		args = append(args, *filter.Perfil)
	}
	if filter.Ativo != nil {
		conditions = append(conditions, fmt.Sprintf("u.ativo = $%d", len(args)+1))
		args = append(args, *filter.Ativo)
	}
	if filter.SetorID != "" {
		conditions = append(conditions, fmt.Sprintf("u.setor_id = $%d", len(args)+1))
		args = append(args, filter.SetorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.nome) LIKE $%d OR LOWER(u.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"nome":       "u.nome",
		"email":      "u.email",
		"created_at": "u.created_at",
	}
	if sortBy == "" {
		sortBy = "nome"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "u.nome"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT u.id, u.email, u.senha_hash, u.nome, u.perfil, u.setor_id, u.ativo, u.ultimo_acesso, u.created_at, u.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var usuarios []models.Usuario
	if err := r.db.SelectContext(ctx, &usuarios, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list usuarios: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count usuarios: %w", err)
	}
	return usuarios, total, nil
}

// FindByID fetches a staff account by ID.
func (r *UsuarioRepository) FindByID(ctx context.Context, id string) (*models.Usuario, error) {
	const query = `SELECT id, email, senha_hash, nome, perfil, setor_id, ativo, ultimo_acesso, created_at, updated_at
        FROM usuarios WHERE id = $1`
	var usuario models.Usuario
	if err := r.db.GetContext(ctx, &usuario, query, id); err != nil {
		return nil, err
	}
	return &usuario, nil
}

// FindByEmail fetches a staff account by e-mail.
func (r *UsuarioRepository) FindByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	const query = `SELECT id, email, senha_hash, nome, perfil, setor_id, ativo, ultimo_acesso, created_at, updated_at
        FROM usuarios WHERE LOWER(email) = LOWER($1)`
	var usuario models.Usuario
	if err := r.db.GetContext(ctx, &usuario, query, email); err != nil {
		return nil, err
	}
	return &usuario, nil
}

// ExistsByEmail checks for a duplicate e-mail optionally excluding an ID.
func (r *UsuarioRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM usuarios WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new staff account.
func (r *UsuarioRepository) Create(ctx context.Context, usuario *models.Usuario) error {
	if usuario.ID == "" {
		usuario.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if usuario.CreatedAt.IsZero() {
		usuario.CreatedAt = now
	}
	usuario.UpdatedAt = now
	const query = `INSERT INTO usuarios (id, email, senha_hash, nome, perfil, setor_id, ativo, created_at, updated_at)
        VALUES (:id, :email, :senha_hash, :nome, :perfil, :setor_id, :ativo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, usuario); err != nil {
		return fmt.Errorf("create usuario: %w", err)
	}
	return nil
}

// Update modifies an existing staff account.
func (r *UsuarioRepository) Update(ctx context.Context, usuario *models.Usuario) error {
	usuario.UpdatedAt = time.Now().UTC()
	const query = `UPDATE usuarios SET email = :email, nome = :nome, perfil = :perfil, setor_id = :setor_id, ativo = :ativo, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, usuario); err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	return nil
}

// Deactivate marks a staff account as inactive.
func (r *UsuarioRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE usuarios SET ativo = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate usuario: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the last successful login.
func (r *UsuarioRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE usuarios SET ultimo_acesso = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword swaps the password hash.
func (r *UsuarioRepository) UpdatePassword(ctx context.Context, id, senhaHash string, updatedAt time.Time) error {
	const query = `UPDATE usuarios SET senha_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, senhaHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateProfile lets a staff member change own name and e-mail.
func (r *UsuarioRepository) UpdateProfile(ctx context.Context, id, nome, email string, updatedAt time.Time) error {
	const query = `UPDATE usuarios SET nome = $2, email = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, nome, email, updatedAt); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a session refresh token.
func (r *UsuarioRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, usuario_id, token, expires_at, created_at, revoked, ip_address, user_agent)
        VALUES (:id, :usuario_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken loads a refresh token by value.
func (r *UsuarioRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, usuario_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
        FROM refresh_tokens WHERE token = $1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// RevokeRefreshToken revokes one token by ID.
func (r *UsuarioRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes every live token of one staff member.
func (r *UsuarioRepository) RevokeUserRefreshTokens(ctx context.Context, usuarioID string) error {
	const query = `UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE usuario_id = $1 AND revoked = false`
	if _, err := r.db.ExecContext(ctx, query, usuarioID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// CreatePasswordResetToken persists a single-use reset token.
func (r *UsuarioRepository) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO password_reset_tokens (id, usuario_id, token, expires_at, created_at)
        VALUES (:id, :usuario_id, :token, :expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

// FindPasswordResetToken loads a reset token by value.
func (r *UsuarioRepository) FindPasswordResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	const query = `SELECT id, usuario_id, token, expires_at, used_at, created_at
        FROM password_reset_tokens WHERE token = $1`
	var stored models.PasswordResetToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// MarkPasswordResetTokenUsed consumes a reset token.
func (r *UsuarioRepository) MarkPasswordResetTokenUsed(ctx context.Context, id string, usedAt time.Time) error {
	const query = `UPDATE password_reset_tokens SET used_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, usedAt); err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	return nil
}

// CreateAuditLog appends an audit trail record.
func (r *UsuarioRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, usuario_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at)
        VALUES (:id, :usuario_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
