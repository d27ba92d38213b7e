package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/colegio-adm/colegio-api/internal/models"
)

type mockAuthRepo struct {
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	lastLogin     map[string]time.Time
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:         make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
		lastLogin:     make(map[string]time.Time),
	}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	m.lastLogin[id] = at
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	user, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockAuthRepo) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = fmt.Sprintf("rt-%d", len(m.refreshTokens)+1)
	}
	copied := *token
	m.refreshTokens[token.ID] = &copied
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	for _, stored := range m.refreshTokens {
		if stored.Token == token {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string) error {
	stored, ok := m.refreshTokens[id]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Revoked = true
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, stored := range m.refreshTokens {
		if stored.UserID == userID {
			stored.Revoked = true
		}
	}
	return nil
}

func (m *mockAuthRepo) activeTokenCount(userID string) int {
	count := 0
	for _, stored := range m.refreshTokens {
		if stored.UserID == userID && !stored.Revoked {
			count++
		}
	}
	return count
}

func seedAuthUser(t *testing.T, repo *mockAuthRepo, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "usr-1",
		Email:        "admin@colegio.mx",
		PasswordHash: string(hash),
		FullName:     "Ana Torres",
		Role:         models.RoleAdmin,
		Active:       active,
	}
	repo.users[user.ID] = user
	return user
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "colegio-api",
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newMockAuthRepo()
	seedAuthUser(t, repo, "secret-password", true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@colegio.mx", Password: "secret-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "usr-1", resp.User.ID)
	assert.Contains(t, repo.lastLogin, "usr-1")

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	seedAuthUser(t, repo, "secret-password", true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@colegio.mx", Password: "wrong",
	})
	require.Error(t, err)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newMockAuthRepo()
	seedAuthUser(t, repo, "secret-password", false)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@colegio.mx", Password: "secret-password",
	})
	require.Error(t, err)
}

func TestSingleSessionRevokesPreviousTokens(t *testing.T) {
	repo := newMockAuthRepo()
	seedAuthUser(t, repo, "secret-password", true)
	cfg := testAuthConfig()
	cfg.SingleSession = true
	svc := NewAuthService(repo, nil, nil, cfg)

	ctx := context.Background()
	_, err := svc.Login(ctx, models.LoginRequest{Email: "admin@colegio.mx", Password: "secret-password"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, models.LoginRequest{Email: "admin@colegio.mx", Password: "secret-password"})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.activeTokenCount("usr-1"))
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedAuthUser(t, repo, "secret-password", true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	ctx := context.Background()
	login, err := svc.Login(ctx, models.LoginRequest{Email: "admin@colegio.mx", Password: "secret-password"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The used token no longer works.
	_, err = svc.RefreshToken(ctx, models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := newMockAuthRepo()
	seedAuthUser(t, repo, "secret-password", true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	ctx := context.Background()
	_, err := svc.Login(ctx, models.LoginRequest{Email: "admin@colegio.mx", Password: "secret-password"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, "usr-1", models.ChangePasswordRequest{
		OldPassword: "secret-password", NewPassword: "brand-new-password",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.activeTokenCount("usr-1"))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "admin@colegio.mx", Password: "brand-new-password"})
	require.NoError(t, err)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	repo := newMockAuthRepo()
	seedAuthUser(t, repo, "secret-password", true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@colegio.mx", Password: "secret-password",
	})
	require.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.AccessTokenSecret = "another-secret"
	other := NewAuthService(repo, nil, nil, otherCfg)
	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
}
