package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	userRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/user"
	"github.com/m04kA/SMC-TimeslotService/internal/service/auth/models"
)

type fakeUsers struct {
	byEmail map[string]*domain.User
	nextID  int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*domain.User{}, nextID: 1}
}

func (f *fakeUsers) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, userRepo.ErrEmailTaken
	}
	cp := *u
	cp.ID = f.nextID
	f.nextID++
	f.byEmail[cp.Email] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, userRepo.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(userID int64, role, email string) (string, error) {
	return "token-for-" + email, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestService() (*Service, *fakeUsers) {
	users := newFakeUsers()
	return NewService(users, fakeTokens{}, nopLogger{}), users
}

func TestRegister_Success(t *testing.T) {
	svc, users := newTestService()

	resp, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name: "Ivan", Email: "Ivan@Example.com", Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, "token-for-ivan@example.com", resp.Token)
	assert.Equal(t, "customer", resp.User.Role)

	stored := users.byEmail["ivan@example.com"]
	require.NotNil(t, stored)
	assert.Equal(t, domain.UserStatusActive, stored.Status)
	// Пароль хранится только в виде bcrypt-хеша
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name: "Ivan", Email: "ivan@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &models.RegisterRequest{
		Name: "Ivan 2", Email: "IVAN@example.com", Password: "secret2",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name string
		req  *models.RegisterRequest
	}{
		{"empty name", &models.RegisterRequest{Name: " ", Email: "a@b.c", Password: "secret1"}},
		{"bad email", &models.RegisterRequest{Name: "Ivan", Email: "not-an-email", Password: "secret1"}},
		{"short password", &models.RegisterRequest{Name: "Ivan", Email: "a@b.c", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name: "Ivan", Email: "ivan@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "Ivan@Example.com", Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, "token-for-ivan@example.com", resp.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name: "Ivan", Email: "ivan@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Email: "ivan@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "nobody@example.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin_CreatesAccount(t *testing.T) {
	svc, users := newTestService()

	err := svc.EnsureAdmin(context.Background(), "Admin@Example.com", "super-secret")

	require.NoError(t, err)
	stored := users.byEmail["admin@example.com"]
	require.NotNil(t, stored)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
	assert.Equal(t, domain.UserStatusActive, stored.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("super-secret")))
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, users := newTestService()

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "super-secret"))
	firstID := users.byEmail["admin@example.com"].ID

	// Повторный старт с теми же (и даже другими) учетными данными ничего не меняет
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "another-secret"))

	assert.Len(t, users.byEmail, 1)
	stored := users.byEmail["admin@example.com"]
	assert.Equal(t, firstID, stored.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("super-secret")))
}

func TestEnsureAdmin_SkippedWhenUnconfigured(t *testing.T) {
	svc, users := newTestService()

	require.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))

	assert.Empty(t, users.byEmail)
}

func TestEnsureAdmin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService()

	err := svc.EnsureAdmin(context.Background(), "admin@example.com", "short")

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEnsureAdmin_BootstrapLoginGetsAdminRole(t *testing.T) {
	svc, _ := newTestService()

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "super-secret"))

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "admin@example.com", Password: "super-secret",
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleAdmin), resp.User.Role)
}
