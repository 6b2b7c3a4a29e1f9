package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/QiPanTanYi/banyan/models"
	"github.com/QiPanTanYi/banyan/server/internal/crypto"
	"github.com/QiPanTanYi/banyan/server/internal/repository"
)

// Ошибки сервиса аутентификации. Тексты уходят клиенту в поле message.
var (
	ErrUsernameTaken       = errors.New("username already exists")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	// ValidateCredentials ищет активного пользователя по username, email или phone
	// и сверяет пароль. Возвращает ErrInvalidCredentials при любом несовпадении.
	ValidateCredentials(ctx context.Context, identifier, password string) (*models.User, error)
	// Login выдает токены пользователю, уже прошедшему ValidateCredentials.
	Login(ctx context.Context, user *models.User) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	// Logout фиксирует время выхода. Выданные токены остаются валидными до истечения.
	Logout(ctx context.Context, userID int64) error
}

var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(userRepo repository.UserRepository, tokens TokenService, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With(zap.String("component", "auth_service")),
		now:      time.Now,
	}
}

// Register регистрирует нового пользователя и сразу выдает ему пару токенов.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := normalizeOptional(req.Email)
	phone := normalizeOptional(req.Phone)

	// Предварительные проверки. Гонку между ними и вставкой закрывает уникальный индекс.
	if _, err := s.userRepo.GetUserByUsername(ctx, req.Username); err == nil {
		s.logger.Info("Попытка регистрации с занятым именем", zap.String("username", req.Username))
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("ошибка проверки имени пользователя: %w", err)
	}

	if email != nil {
		if _, err := s.userRepo.GetUserByEmail(ctx, *email); err == nil {
			s.logger.Info("Попытка регистрации с занятым email", zap.String("username", req.Username))
			return nil, ErrEmailTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("ошибка проверки email: %w", err)
		}
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Ошибка хеширования пароля", zap.String("username", req.Username), zap.Error(err))
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Password: hash,
		Email:    email,
		Phone:    phone,
		Status:   models.UserStatusActive,
	}

	if _, err = s.userRepo.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrEmailTaken
		}
		s.logger.Error("Непредвиденная ошибка репозитория при регистрации",
			zap.String("username", req.Username), zap.Error(err))
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	s.logger.Info("Пользователь успешно зарегистрирован",
		zap.String("username", user.Username), zap.Int64("user_id", user.ID))
	return s.issue(user)
}

func (s *authService) ValidateCredentials(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := s.userRepo.FindActiveByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("Попытка входа несуществующего или отключенного пользователя")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if !crypto.ComparePassword(password, user.Password) {
		s.logger.Info("Неверный пароль", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	if !user.IsActive() {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.UpdateLoginTime(ctx, user.ID, now); err != nil {
		s.logger.Error("Ошибка обновления времени входа", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("ошибка обновления времени входа: %w", err)
	}
	user.LoginTime = &now

	s.logger.Info("Пользователь успешно аутентифицирован", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// GetProfile возвращает публичные поля профиля. Статус пользователя не проверяется.
func (s *authService) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	profile := user.Profile()
	return &profile, nil
}

// Refresh проверяет refresh токен и выдает новую пару (ротация).
// Предъявленный токен не отзывается.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.logger.Info("Отклонен refresh токен", zap.Error(err))
		return nil, ErrInvalidRefreshToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetActiveUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("Refresh для отсутствующего или отключенного пользователя", zap.Int64("user_id", userID))
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, userID int64) error {
	if err := s.userRepo.UpdateLogoutTime(ctx, userID, s.now()); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("ошибка обновления времени выхода: %w", err)
	}
	s.logger.Info("Пользователь вышел из системы", zap.Int64("user_id", userID))
	return nil
}

func (s *authService) issue(user *models.User) (*models.AuthResponse, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Ошибка генерации JWT", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}
	return &models.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         user.Public(),
	}, nil
}

// normalizeOptional превращает пустую строку в отсутствующее значение.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
