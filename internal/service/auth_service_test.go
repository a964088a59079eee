package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
	"github.com/sistemafic/sistemafic-api/pkg/jobs"
	"github.com/sistemafic/sistemafic-api/pkg/mailer"
	"github.com/sistemafic/sistemafic-api/pkg/resettoken"
)

type mockAuthRepo struct {
	usersByEmail  map[string]*models.User
	usersByID     map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	revokedIDs    []string
	revokedUsers  []string
	passwords     map[string]string
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	m := &mockAuthRepo{
		usersByEmail:  make(map[string]*models.User),
		usersByID:     make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
		passwords:     make(map[string]string),
	}
	for _, u := range users {
		m.usersByEmail[u.Email] = u
		m.usersByID[u.ID] = u
	}
	return m
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.passwords[id] = passwordHash
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedUsers = append(m.revokedUsers, userID)
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.refreshTokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedIDs = append(m.revokedIDs, id)
	for _, t := range m.refreshTokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

type mockMailQueue struct {
	jobs []jobs.Job
	err  error
}

func (m *mockMailQueue) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "sistemafic-test",
		Audience:           []string{"sistemafic"},
		ResetLinkBase:      "https://fic.example.com/redefinir-senha",
	}
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "aluno@example.com",
		FullName:     "Aluno Teste",
		PasswordHash: string(hash),
		Role:         models.RoleAluno,
		Active:       true,
	}
}

func newAuthServiceForTest(repo *mockAuthRepo, queue MailEnqueuer) *AuthService {
	signer := resettoken.NewSigner("test-secret", time.Hour)
	return NewAuthService(repo, signer, queue, nil, nil, testAuthConfig())
}

func TestAuthLoginSuccess(t *testing.T) {
	user := testUser(t, "senha123")
	repo := newMockAuthRepo(user)
	svc := newAuthServiceForTest(repo, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "senha123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Contains(t, repo.refreshTokens, resp.RefreshToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAluno, claims.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo(testUser(t, "senha123"))
	svc := newAuthServiceForTest(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "aluno@example.com",
		Password: "errada",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthLoginUnknownEmailSameError(t *testing.T) {
	svc := newAuthServiceForTest(newMockAuthRepo(), nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "desconhecido@example.com",
		Password: "qualquer",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	user := testUser(t, "senha123")
	user.Active = false
	svc := newAuthServiceForTest(newMockAuthRepo(user), nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "senha123",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInactiveAccount))
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	user := testUser(t, "senha123")
	repo := newMockAuthRepo(user)
	svc := newAuthServiceForTest(repo, nil)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "senha123",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)

	// A revoked token cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthRefreshExpiredToken(t *testing.T) {
	user := testUser(t, "senha123")
	repo := newMockAuthRepo(user)
	repo.refreshTokens["velho"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    user.ID,
		Token:     "velho",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	svc := newAuthServiceForTest(repo, nil)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "velho"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthLogoutRejectsForeignToken(t *testing.T) {
	user := testUser(t, "senha123")
	repo := newMockAuthRepo(user)
	repo.refreshTokens["alheio"] = &models.RefreshToken{
		ID:        "rt-2",
		UserID:    "outro-user",
		Token:     "alheio",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := newAuthServiceForTest(repo, nil)

	err := svc.Logout(context.Background(), "alheio", user.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestAuthForgotPasswordEnqueuesMail(t *testing.T) {
	user := testUser(t, "senha123")
	queue := &mockMailQueue{}
	svc := newAuthServiceForTest(newMockAuthRepo(user), queue)

	err := svc.ForgotPassword(context.Background(), models.ResetPasswordRequest{Email: user.Email})
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "password_reset", queue.jobs[0].Type)
	msg, ok := queue.jobs[0].Payload.(mailer.Message)
	require.True(t, ok)
	assert.Equal(t, user.Email, msg.To)
	assert.Contains(t, msg.Body, testAuthConfig().ResetLinkBase+"/"+resettoken.EncodeUID(user.ID)+"/")
}

func TestAuthForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	queue := &mockMailQueue{}
	svc := newAuthServiceForTest(newMockAuthRepo(), queue)

	err := svc.ForgotPassword(context.Background(), models.ResetPasswordRequest{Email: "ninguem@example.com"})
	require.NoError(t, err)
	assert.Empty(t, queue.jobs)
}

func TestAuthResetPasswordRoundTrip(t *testing.T) {
	user := testUser(t, "senha-antiga")
	repo := newMockAuthRepo(user)
	signer := resettoken.NewSigner("test-secret", time.Hour)
	svc := NewAuthService(repo, signer, nil, nil, nil, testAuthConfig())

	token, _, err := signer.Generate(user.ID, user.PasswordHash)
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), models.ConfirmResetPasswordRequest{
		UID:         resettoken.EncodeUID(user.ID),
		Token:       token,
		NewPassword: "senha-nova",
	})
	require.NoError(t, err)
	require.Contains(t, repo.passwords, user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwords[user.ID]), []byte("senha-nova")))
	assert.Contains(t, repo.revokedUsers, user.ID)
}

func TestAuthResetPasswordTokenBoundToCurrentHash(t *testing.T) {
	user := testUser(t, "senha-antiga")
	repo := newMockAuthRepo(user)
	signer := resettoken.NewSigner("test-secret", time.Hour)
	svc := NewAuthService(repo, signer, nil, nil, nil, testAuthConfig())

	token, _, err := signer.Generate(user.ID, user.PasswordHash)
	require.NoError(t, err)

	// Consuming the token rewrites the hash, so a second use must fail.
	newHash, err := bcrypt.GenerateFromPassword([]byte("outra-senha"), bcrypt.MinCost)
	require.NoError(t, err)
	user.PasswordHash = string(newHash)

	err = svc.ResetPassword(context.Background(), models.ConfirmResetPasswordRequest{
		UID:         resettoken.EncodeUID(user.ID),
		Token:       token,
		NewPassword: "senha-nova",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAuthChangePasswordWrongCurrent(t *testing.T) {
	user := testUser(t, "senha123")
	svc := newAuthServiceForTest(newMockAuthRepo(user), nil)

	err := svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordRequest{
		OldPassword: "errada",
		NewPassword: "nova-senha",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}
