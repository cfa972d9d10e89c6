package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"gmp-system/internal/dto"
	"gmp-system/internal/entities"
	"gmp-system/internal/repositories"
	"gmp-system/internal/workflow"
	"gmp-system/pkg/config"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SignatureServiceInterface interface {
	ListMeanings(scope workflow.Scope) []string
	Sign(ctx context.Context, actorID uint64, payload dto.SignDTO) (*dto.SignatureDTO, error)
	SignInTx(ctx context.Context, tx pgx.Tx, txID *uuid.UUID, actorID uint64, password string,
		scope workflow.Scope, entityType string, entityID uint64, meaning, comment string) (*entities.Signature, error)
	Verify(ctx context.Context, signatureID uint64) (*dto.SignatureDTO, error)
	VerifyPassword(ctx context.Context, actorID uint64, password string) error
	BlockModification(ctx context.Context, actorID, signatureID uint64, method string, attemptedPayload []byte) error
}

// SignatureService реализует примитив электронной подписи: повторная
// аутентификация, контроль словаря формулировок, единственность подписи на
// (scope, entity, signer) и полная неизменяемость созданной записи.
type SignatureService struct {
	txManager     repositories.TxManagerInterface
	signatureRepo repositories.SignatureRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	auditRepo     repositories.AuditRepositoryInterface
	cacheRepo     repositories.CacheRepositoryInterface
	meanings      map[workflow.Scope][]string
	authCfg       config.SignatureAuthConfig
	logger        *zap.Logger
}

func NewSignatureService(
	txManager repositories.TxManagerInterface,
	signatureRepo repositories.SignatureRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	auditRepo repositories.AuditRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	meanings map[workflow.Scope][]string,
	authCfg config.SignatureAuthConfig,
	logger *zap.Logger,
) SignatureServiceInterface {
	return &SignatureService{
		txManager:     txManager,
		signatureRepo: signatureRepo,
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		cacheRepo:     cacheRepo,
		meanings:      meanings,
		authCfg:       authCfg,
		logger:        logger,
	}
}

// ListMeanings возвращает утверждённый словарь формулировок области.
// Словарь - статическая конфигурация процесса, он не редактируется на лету.
func (s *SignatureService) ListMeanings(scope workflow.Scope) []string {
	list := s.meanings[scope]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func (s *SignatureService) meaningAllowed(scope workflow.Scope, meaning string) bool {
	for _, m := range s.meanings[scope] {
		if m == meaning {
			return true
		}
	}
	return false
}

// Sign - самостоятельное подписание (POST /signatures/sign): подпись и
// аудиторская запись создаются в одной транзакции.
func (s *SignatureService) Sign(ctx context.Context, actorID uint64, payload dto.SignDTO) (*dto.SignatureDTO, error) {
	var created *entities.Signature
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		txID := uuid.New()
		sig, err := s.SignInTx(ctx, tx, &txID, actorID, payload.Password,
			workflow.Scope(payload.Scope), payload.EntityType, payload.EntityID,
			payload.Meaning, payload.Comment)
		if err != nil {
			return err
		}
		created = sig
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Verify(ctx, created.ID)
}

// SignInTx выполняет подписание внутри уже открытой транзакции. Это путь,
// которым пользуется исполнитель переходов: падение подписания откатывает
// весь переход, а не оставляет полусостояние.
func (s *SignatureService) SignInTx(ctx context.Context, tx pgx.Tx, txID *uuid.UUID, actorID uint64, password string,
	scope workflow.Scope, entityType string, entityID uint64, meaning, comment string) (*entities.Signature, error) {

	if err := s.checkLockout(ctx, actorID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		s.auditAuthFailure(ctx, actorID, scope, entityType, entityID, "учётная запись деактивирована")
		return nil, apperrors.ErrSignatureAuthFailed
	}

	// Повторная аутентификация. Отказ фиксируется в аудите как событие
	// безопасности и никогда не деградирует до "подпись принята".
	if err := utils.ComparePasswords(user.Password, password); err != nil {
		s.handleFailedAttempt(ctx, actorID)
		s.auditAuthFailure(ctx, actorID, scope, entityType, entityID, "неверный пароль")
		s.logger.Warn("Повторная аутентификация при подписании не пройдена",
			zap.Uint64("userID", actorID),
			zap.String("scope", string(scope)),
		)
		return nil, apperrors.ErrSignatureAuthFailed
	}
	s.resetAttempts(ctx, actorID)

	if !s.meaningAllowed(scope, meaning) {
		return nil, apperrors.ErrUnknownMeaning
	}

	exists, err := s.signatureRepo.Exists(ctx, tx, string(scope), entityType, entityID, actorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateSignature
	}

	sig := &entities.Signature{
		Scope:          string(scope),
		EntityType:     entityType,
		EntityID:       entityID,
		SignedByUserID: actorID,
		Meaning:        meaning,
	}
	if comment != "" {
		sig.Comment = &comment
	}
	if err := s.signatureRepo.CreateInTx(ctx, tx, sig); err != nil {
		return nil, err
	}

	newValues, _ := json.Marshal(map[string]interface{}{
		"signature_id": sig.ID,
		"scope":        sig.Scope,
		"entity_type":  sig.EntityType,
		"entity_id":    sig.EntityID,
		"meaning":      sig.Meaning,
	})
	newValuesStr := string(newValues)
	if err := s.auditRepo.CreateInTx(ctx, tx, &entities.AuditEntry{
		UserID:     actorID,
		Action:     entities.AuditSignatureCreated,
		EntityType: "E_SIGNATURE",
		EntityID:   sig.ID,
		NewValues:  &newValuesStr,
		TxID:       txID,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Электронная подпись создана",
		zap.Uint64("signatureID", sig.ID),
		zap.String("scope", sig.Scope),
		zap.String("entityType", sig.EntityType),
		zap.Uint64("entityID", sig.EntityID),
	)
	return sig, nil
}

func (s *SignatureService) Verify(ctx context.Context, signatureID uint64) (*dto.SignatureDTO, error) {
	item, err := s.signatureRepo.FindByID(ctx, signatureID)
	if err != nil {
		return nil, err
	}
	result := signatureItemToDTO(item)
	return &result, nil
}

func (s *SignatureService) VerifyPassword(ctx context.Context, actorID uint64, password string) error {
	if err := s.checkLockout(ctx, actorID); err != nil {
		return err
	}
	user, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return apperrors.ErrSignatureAuthFailed
	}
	if err := utils.ComparePasswords(user.Password, password); err != nil {
		s.handleFailedAttempt(ctx, actorID)
		s.auditAuthFailure(ctx, actorID, "", "USER", actorID, "неверный пароль при проверке")
		return apperrors.ErrSignatureAuthFailed
	}
	s.resetAttempts(ctx, actorID)
	return nil
}

// BlockModification - ловушка для PUT/PATCH/DELETE по подписи. Функционального
// результата нет: пишется криминалистическая запись с присланным телом и
// возвращается фиксированная ошибка неизменяемости.
func (s *SignatureService) BlockModification(ctx context.Context, actorID, signatureID uint64, method string, attemptedPayload []byte) error {
	newValues, _ := json.Marshal(map[string]interface{}{
		"method":  method,
		"payload": string(attemptedPayload),
	})
	newValuesStr := string(newValues)
	if err := s.auditRepo.Create(ctx, &entities.AuditEntry{
		UserID:     actorID,
		Action:     entities.AuditModificationBlocked,
		EntityType: "E_SIGNATURE",
		EntityID:   signatureID,
		NewValues:  &newValuesStr,
	}); err != nil {
		s.logger.Error("Не удалось записать MODIFICATION_BLOCKED в аудит", zap.Error(err))
	}
	s.logger.Warn("Заблокирована попытка изменить электронную подпись",
		zap.Uint64("signatureID", signatureID),
		zap.Uint64("userID", actorID),
		zap.String("method", method),
	)
	return apperrors.ErrSignatureImmutable
}

// auditAuthFailure пишется вне транзакции подписания: откат перехода не
// должен стереть след неудачной аутентификации.
func (s *SignatureService) auditAuthFailure(ctx context.Context, actorID uint64, scope workflow.Scope, entityType string, entityID uint64, reason string) {
	newValues, _ := json.Marshal(map[string]interface{}{
		"scope":  string(scope),
		"reason": reason,
	})
	newValuesStr := string(newValues)
	if err := s.auditRepo.Create(ctx, &entities.AuditEntry{
		UserID:     actorID,
		Action:     entities.AuditSignatureAuthFailed,
		EntityType: entityType,
		EntityID:   entityID,
		NewValues:  &newValuesStr,
	}); err != nil {
		s.logger.Error("Не удалось записать SIGNATURE_AUTH_FAILED в аудит", zap.Error(err))
	}
}

func (s *SignatureService) checkLockout(ctx context.Context, userID uint64) error {
	lockoutKey := fmt.Sprintf("sig_lockout:%d", userID)
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *SignatureService) handleFailedAttempt(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("sig_auth_attempts:%d", userID)
	attempts, _ := s.cacheRepo.Incr(ctx, attemptsKey)
	s.cacheRepo.Expire(ctx, attemptsKey, s.authCfg.LockoutDuration)
	if attempts >= int64(s.authCfg.MaxAttempts) {
		lockoutKey := fmt.Sprintf("sig_lockout:%d", userID)
		s.cacheRepo.Set(ctx, lockoutKey, "locked", s.authCfg.LockoutDuration)
		s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Подписание заблокировано после "+strconv.Itoa(s.authCfg.MaxAttempts)+" неудачных попыток",
			zap.Uint64("userID", userID))
	}
}

func (s *SignatureService) resetAttempts(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("sig_auth_attempts:%d", userID)
	s.cacheRepo.Del(ctx, attemptsKey)
}

func signatureItemToDTO(item *repositories.SignatureItem) dto.SignatureDTO {
	result := dto.SignatureDTO{
		ID:             item.ID,
		Scope:          item.Scope,
		EntityType:     item.EntityType,
		EntityID:       item.EntityID,
		SignedByUserID: item.SignedByUserID,
		SignerFio:      utils.NullStringToString(item.SignerFio),
		SignerActive:   item.SignerActive.Valid && item.SignerActive.Bool,
		Meaning:        item.Meaning,
		SignedAt:       item.SignedAt.Local().Format("2006-01-02 15:04:05"),
	}
	if item.Comment != nil {
		result.Comment = *item.Comment
	}
	return result
}
