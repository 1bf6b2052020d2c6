package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
	"github.com/noah-isme/edubuild-api/internal/repository"
	appErrors "github.com/noah-isme/edubuild-api/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	findErr   error
	createErr error
	created   []*models.User
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	repo := &mockAuthRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	m.users[user.Email] = user
	m.created = append(m.created, user)
	return nil
}

func newAuthServiceForTest(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: 7 * 24 * time.Hour,
		Issuer:      "test",
		AdminSecret: "let-me-in",
		BcryptCost:  bcrypt.MinCost,
	})
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestSignupCreatesStudentByDefault(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthServiceForTest(repo)

	resp, err := svc.Signup(context.Background(), dto.SignupRequest{
		Name: "Ada", Email: "Ada@Example.com", Password: "secret1", School: "Lincoln", State: "CA",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	require.Len(t, repo.created, 1)
	assert.NotEqual(t, "secret1", repo.created[0].PasswordHash)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestSignupAdminRequiresSecret(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthServiceForTest(repo)

	_, err := svc.Signup(context.Background(), dto.SignupRequest{
		Name: "Eve", Email: "eve@example.com", Password: "secret1", Role: "admin", AdminSecret: "wrong",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidAdminSecret))
	assert.Equal(t, 403, appErrors.FromError(err).Status)
	assert.Empty(t, repo.created)

	resp, err := svc.Signup(context.Background(), dto.SignupRequest{
		Name: "Root", Email: "root@example.com", Password: "secret1", Role: "admin", AdminSecret: "let-me-in",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestSignupAdminRejectedWhenNoSecretConfigured(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, nil, nil, AuthConfig{TokenSecret: "secret", BcryptCost: bcrypt.MinCost})

	_, err := svc.Signup(context.Background(), dto.SignupRequest{
		Name: "Eve", Email: "eve@example.com", Password: "secret1", Role: "admin",
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidAdminSecret)
}

func TestSignupEmailTaken(t *testing.T) {
	repo := newMockAuthRepo(&models.User{ID: "u1", Email: "ada@example.com"})
	svc := newAuthServiceForTest(repo)

	_, err := svc.Signup(context.Background(), dto.SignupRequest{Name: "Ada", Email: "ADA@example.com", Password: "secret1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestSignupConcurrentDuplicateIsEmailTaken(t *testing.T) {
	repo := newMockAuthRepo()
	repo.createErr = repository.ErrDuplicateEmail
	svc := newAuthServiceForTest(repo)

	_, err := svc.Signup(context.Background(), dto.SignupRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrEmailTaken)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestSignupValidation(t *testing.T) {
	svc := newAuthServiceForTest(newMockAuthRepo())

	_, err := svc.Signup(context.Background(), dto.SignupRequest{Name: "Ada", Email: "not-an-email", Password: "123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSigninSuccessAndFailures(t *testing.T) {
	user := &models.User{ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: hashPassword(t, "secret1"), Role: models.RoleStudent}
	svc := newAuthServiceForTest(newMockAuthRepo(user))

	resp, err := svc.Signin(context.Background(), dto.SigninRequest{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)

	_, err = svc.Signin(context.Background(), dto.SigninRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Signin(context.Background(), dto.SigninRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestSigninRepositoryFailure(t *testing.T) {
	repo := newMockAuthRepo()
	repo.findErr = errors.New("db down")
	svc := newAuthServiceForTest(repo)

	_, err := svc.Signin(context.Background(), dto.SigninRequest{Email: "ada@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, 500, appErrors.FromError(err).Status)
}

func TestProfileNotFound(t *testing.T) {
	svc := newAuthServiceForTest(newMockAuthRepo())
	_, err := svc.Profile(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestValidateTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := newAuthServiceForTest(newMockAuthRepo())
	user := &models.User{ID: "u1", Role: models.RoleAdmin}

	token, err := svc.generateToken(user)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	svc.now = time.Now

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})
	signed, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.ValidateToken("garbage")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthServiceForTest(repo)

	user, created, err := svc.EnsureAdmin(context.Background(), "", "admin@edubuild.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "Admin", user.Name)

	again, created, err := svc.EnsureAdmin(context.Background(), "Other", "ADMIN@edubuild.com", "admin123")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, repo.created, 1)
}
