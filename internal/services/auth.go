package services

import (
	"context"
	"fmt"

	"gmp-system/internal/dto"
	"gmp-system/internal/repositories"
	"gmp-system/pkg/config"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/service"
	"gmp-system/pkg/utils"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
}

// AuthService - вход в систему. Использует ту же политику блокировки, что и
// повторная аутентификация при подписании, но со своими счётчиками.
type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	authCfg    config.SignatureAuthConfig
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	authCfg config.SignatureAuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		authCfg:    authCfg,
		logger:     logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	user, err := s.userRepo.FindUserByEmailOrLogin(ctx, payload.Login)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	lockoutKey := fmt.Sprintf("login_lockout:%d", user.ID)
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return nil, apperrors.ErrAccountLocked
	}

	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		attemptsKey := fmt.Sprintf("login_attempts:%d", user.ID)
		attempts, _ := s.cacheRepo.Incr(ctx, attemptsKey)
		s.cacheRepo.Expire(ctx, attemptsKey, s.authCfg.LockoutDuration)
		if attempts >= int64(s.authCfg.MaxAttempts) {
			s.cacheRepo.Set(ctx, lockoutKey, "locked", s.authCfg.LockoutDuration)
			s.cacheRepo.Del(ctx, attemptsKey)
			s.logger.Warn("Вход заблокирован из-за превышения числа попыток", zap.Uint64("userID", user.ID))
		}
		return nil, apperrors.ErrInvalidCredentials
	}
	s.cacheRepo.Del(ctx, fmt.Sprintf("login_attempts:%d", user.ID))

	accessToken, refreshToken, err := s.jwtService.GenerateTokens(int(user.ID))
	if err != nil {
		s.logger.Error("Не удалось сгенерировать токены", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Пользователь вошёл в систему", zap.Uint64("userID", user.ID))
	return &dto.TokenPairDTO{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
