package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-TimeslotService/internal/domain"
	userRepo "github.com/m04kA/SMC-TimeslotService/internal/infra/storage/user"
	"github.com/m04kA/SMC-TimeslotService/internal/service/auth/models"
)

// adminBootstrapName имя для bootstrap-админа
const adminBootstrapName = "Administrator"

// Service сервис регистрации и входа пользователей
type Service struct {
	userRepo     UserRepository
	tokenManager TokenManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса аутентификации
func NewService(userRepo UserRepository, tokenManager TokenManager, logger Logger) *Service {
	return &Service{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// Register регистрирует нового пользователя с ролью customer
// и сразу выдает access-токен
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.Info("Register: email=%s", email)

	if err := validateRegister(req.Name, email, req.Password); err != nil {
		s.logger.Warn("Register: validation failed: %v", err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Register: failed to hash password: %v", err)
		return nil, fmt.Errorf("%w: Register - hash error: %v", ErrInternal, err)
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		Role:         domain.RoleCustomer,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
	})
	if err != nil {
		if errors.Is(err, userRepo.ErrEmailTaken) {
			s.logger.Warn("Register: email=%s is already taken", email)
			return nil, ErrEmailTaken
		}
		s.logger.Error("Register: repository error: %v", err)
		return nil, fmt.Errorf("%w: Register - repository error: %v", ErrInternal, err)
	}

	return s.issue(user)
}

// Login проверяет пару email/пароль и выдает access-токен
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.Info("Login: email=%s", email)

	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("Login: unknown email=%s", email)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login: repository error: %v", err)
		return nil, fmt.Errorf("%w: Login - repository error: %v", ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Login: wrong password for email=%s", email)
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// EnsureAdmin создает административную учетную запись при старте сервиса,
// если ее еще нет. Пустые учетные данные означают, что bootstrap отключен.
// Повторный запуск с теми же данными ничего не меняет.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" && password == "" {
		s.logger.Warn("EnsureAdmin: bootstrap credentials are not configured, skipping")
		return nil
	}

	if err := validateRegister(adminBootstrapName, email, password); err != nil {
		return err
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		s.logger.Info("EnsureAdmin: account email=%s already exists", email)
		return nil
	} else if !errors.Is(err, userRepo.ErrUserNotFound) {
		return fmt.Errorf("%w: EnsureAdmin - repository error: %v", ErrInternal, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: EnsureAdmin - hash error: %v", ErrInternal, err)
	}

	if _, err := s.userRepo.Create(ctx, &domain.User{
		Name:         adminBootstrapName,
		Email:        email,
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
	}); err != nil {
		// Вторая реплика могла создать учетную запись между проверкой и вставкой
		if errors.Is(err, userRepo.ErrEmailTaken) {
			return nil
		}
		return fmt.Errorf("%w: EnsureAdmin - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("EnsureAdmin: created admin account email=%s", email)
	return nil
}

func (s *Service) issue(user *domain.User) (*models.AuthResponse, error) {
	token, err := s.tokenManager.Issue(user.ID, string(user.Role), user.Email)
	if err != nil {
		s.logger.Error("issue: failed to sign token for user=%d: %v", user.ID, err)
		return nil, fmt.Errorf("%w: failed to issue token: %v", ErrInternal, err)
	}

	return &models.AuthResponse{
		Token: token,
		User:  models.FromDomainUser(user),
	}, nil
}

func validateRegister(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(password) < domain.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, domain.MinPasswordLength)
	}
	return nil
}
