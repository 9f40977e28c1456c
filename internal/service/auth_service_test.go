package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
)

type mockAuthRepo struct {
	usuarios         map[string]*models.Usuario
	refreshTokens    map[string]*models.RefreshToken
	resetTokens      map[string]*models.PasswordResetToken
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
	passwordUpdated  string
	sessionsRevoked  bool
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		usuarios:      map[string]*models.Usuario{},
		refreshTokens: map[string]*models.RefreshToken{},
		resetTokens:   map[string]*models.PasswordResetToken{},
	}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	for _, u := range m.usuarios {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Usuario, error) {
	u, ok := m.usuarios[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, senhaHash string, updatedAt time.Time) error {
	m.passwordUpdated = senhaHash
	if u, ok := m.usuarios[id]; ok {
		u.SenhaHash = senhaHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, usuarioID string) error {
	m.sessionsRevoked = true
	for _, t := range m.refreshTokens {
		if t.UsuarioID == usuarioID {
			t.Revoked = true
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, t := range m.refreshTokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	m.resetTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindPasswordResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	t, ok := m.resetTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockAuthRepo) MarkPasswordResetTokenUsed(ctx context.Context, id string, usedAt time.Time) error {
	for _, t := range m.resetTokens {
		if t.ID == id {
			t.UsedAt = &usedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "segredo-de-teste",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		ResetTokenExpiry:   time.Hour,
		Issuer:             "protocolo-api",
	}
}

func seedUsuario(repo *mockAuthRepo, senha string) *models.Usuario {
	hash, _ := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	u := &models.Usuario{
		ID:        "u1",
		Email:     "atendente@prefeitura.gov.br",
		SenhaHash: string(hash),
		Nome:      "João Atendente",
		Perfil:    models.PerfilAdmin,
		Ativo:     true,
	}
	repo.usuarios[u.ID] = u
	return u
}

func TestLoginSuccess(t *testing.T) {
	repo := newMockAuthRepo()
	seedUsuario(repo, "senha-forte")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "atendente@prefeitura.gov.br",
		Senha: "senha-forte",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "u1", resp.Usuario.ID)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.PerfilAdmin, claims.Perfil)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	seedUsuario(repo, "senha-forte")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "atendente@prefeitura.gov.br",
		Senha: "senha-errada",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newMockAuthRepo()
	u := seedUsuario(repo, "senha-forte")
	u.Ativo = false
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "atendente@prefeitura.gov.br",
		Senha: "senha-forte",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	repo := newMockAuthRepo()
	seedUsuario(repo, "senha-forte")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "atendente@prefeitura.gov.br",
		Senha: "senha-forte",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked, "used refresh token must be revoked")

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err, "a refresh token works exactly once")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := newMockAuthRepo()
	seedUsuario(repo, "senha-antiga")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		SenhaAtual: "senha-antiga",
		NovaSenha:  "senha-nova-123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwordUpdated)
	assert.True(t, repo.sessionsRevoked)

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		SenhaAtual: "senha-antiga",
		NovaSenha:  "outra-senha",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	token, err := svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "ninguem@prefeitura.gov.br"})
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, repo.resetTokens)
}

func TestResetPasswordConsumesToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedUsuario(repo, "senha-antiga")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	token, err := svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "atendente@prefeitura.gov.br"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	err = svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: token, NovaSenha: "senha-nova-123"})
	require.NoError(t, err)
	assert.True(t, repo.sessionsRevoked)

	err = svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: token, NovaSenha: "mais-uma"})
	require.Error(t, err, "a reset token is single use")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email: "atendente@prefeitura.gov.br",
		Senha: "senha-nova-123",
	})
	require.NoError(t, err)
}
