package services

import (
	"context"
	"encoding/json"

	"gmp-system/internal/entities"
	"gmp-system/internal/events"
	"gmp-system/internal/repositories"
	"gmp-system/internal/workflow"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/eventbus"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SignatureInput - учётные данные и формулировка для подписи, гейтящей переход.
type SignatureInput struct {
	Password string
	Meaning  string
	Comment  string
}

// TransitionRequest - всё, что адаптер типа дела передаёт исполнителю:
// актор, содержательные поля для записи вместе с переходом, произвольный
// payload для таймлайна и (если переход гейтится) данные подписи.
type TransitionRequest struct {
	Actor     uint64
	Comment   string
	Details   repositories.CaseDetails
	Payload   map[string]interface{}
	Signature *SignatureInput
}

type TransitionExecutorInterface interface {
	CreateCase(ctx context.Context, caseType workflow.CaseType, c *entities.Case, setup func(tx pgx.Tx) error) error
	Execute(ctx context.Context, caseType workflow.CaseType, caseID uint64, transitionName string, req TransitionRequest) (*entities.Case, error)
}

// TransitionExecutor - единственная точка смены статуса дела. Вся
// последовательность (блокировка строки, проверка графа, guard-предикаты,
// подпись, смена статуса, таймлайн, аудит) выполняется в одной транзакции:
// либо состоялось всё, либо ничего.
type TransitionExecutor struct {
	txManager    repositories.TxManagerInterface
	caseRepo     repositories.CaseRepositoryInterface
	timelineRepo repositories.TimelineRepositoryInterface
	auditRepo    repositories.AuditRepositoryInterface
	signatureSvc SignatureServiceInterface
	guards       map[string]GuardFunc
	bus          *eventbus.Bus
	logger       *zap.Logger
}

func NewTransitionExecutor(
	txManager repositories.TxManagerInterface,
	caseRepo repositories.CaseRepositoryInterface,
	timelineRepo repositories.TimelineRepositoryInterface,
	auditRepo repositories.AuditRepositoryInterface,
	signatureSvc SignatureServiceInterface,
	guards map[string]GuardFunc,
	bus *eventbus.Bus,
	logger *zap.Logger,
) TransitionExecutorInterface {
	return &TransitionExecutor{
		txManager:    txManager,
		caseRepo:     caseRepo,
		timelineRepo: timelineRepo,
		auditRepo:    auditRepo,
		signatureSvc: signatureSvc,
		guards:       guards,
		bus:          bus,
		logger:       logger,
	}
}

// CreateCase заводит дело в начальном статусе его графа. setup (может быть
// nil) выполняется в той же транзакции - например, вставка шагов досье.
func (e *TransitionExecutor) CreateCase(ctx context.Context, caseType workflow.CaseType, c *entities.Case, setup func(tx pgx.Tx) error) error {
	c.CaseType = string(caseType)
	c.Status = workflow.InitialStatus(caseType)
	txID := uuid.New()

	err := e.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := e.caseRepo.CreateInTx(ctx, tx, c); err != nil {
			return err
		}
		if setup != nil {
			if err := setup(tx); err != nil {
				return err
			}
		}

		newStatus := c.Status
		payload, _ := json.Marshal(map[string]interface{}{
			"case_number": c.CaseNumber,
			"title":       c.Title,
		})
		payloadStr := string(payload)
		if err := e.timelineRepo.CreateInTx(ctx, tx, &entities.TimelineEntry{
			CaseID:    c.ID,
			Action:    "case-created",
			ActorID:   c.CreatedBy,
			NewStatus: &newStatus,
			Payload:   &payloadStr,
			TxID:      &txID,
		}); err != nil {
			return err
		}

		newValues, _ := json.Marshal(map[string]interface{}{
			"case_number": c.CaseNumber,
			"status":      c.Status,
		})
		newValuesStr := string(newValues)
		return e.auditRepo.CreateInTx(ctx, tx, &entities.AuditEntry{
			UserID:     c.CreatedBy,
			Action:     entities.AuditCaseCreated,
			EntityType: c.CaseType,
			EntityID:   c.ID,
			NewValues:  &newValuesStr,
			TxID:       &txID,
		})
	})
	if err != nil {
		return err
	}

	e.logger.Info("Дело заведено",
		zap.String("caseNumber", c.CaseNumber),
		zap.String("caseType", c.CaseType),
		zap.Uint64("createdBy", c.CreatedBy),
	)
	e.bus.Publish(ctx, events.CaseCreatedEvent{
		CaseID:     c.ID,
		CaseNumber: c.CaseNumber,
		CaseType:   c.CaseType,
		ActorID:    c.CreatedBy,
	})
	return nil
}

// Execute выполняет именованный переход над делом.
//
// Порядок проверок фиксирован: терминальность -> граф -> guard-предикаты ->
// подпись. Клиент, получивший GUARD_FAILED, уже знает, что само ребро легально.
func (e *TransitionExecutor) Execute(ctx context.Context, caseType workflow.CaseType, caseID uint64, transitionName string, req TransitionRequest) (*entities.Case, error) {
	def, ok := workflow.TransitionFor(caseType, transitionName)
	if !ok {
		return nil, apperrors.ErrUnknownTransition
	}

	var result *entities.Case
	var oldStatus string
	txID := uuid.New()

	err := e.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		c, err := e.caseRepo.FindForUpdateInTx(ctx, tx, string(caseType), caseID)
		if err != nil {
			return err
		}
		oldStatus = c.Status

		if workflow.IsTerminal(caseType, c.Status) {
			return apperrors.ErrCaseClosed
		}
		if !workflow.CanTransition(caseType, c.Status, def.To) {
			return &apperrors.InvalidTransitionError{
				CaseType:   string(caseType),
				FromStatus: c.Status,
				ToStatus:   def.To,
				Allowed:    workflow.SuccessorsOf(caseType, c.Status),
			}
		}

		var unmet []string
		details := make(map[string]string)
		for _, name := range def.Guards {
			guard, registered := e.guards[name]
			if !registered {
				return apperrors.NewInvalidInputError("guard %q не зарегистрирован", name)
			}
			ok, detail, err := guard(ctx, tx, c)
			if err != nil {
				return err
			}
			if !ok {
				unmet = append(unmet, name)
				if detail != "" {
					details[name] = detail
				}
			}
		}
		if len(unmet) > 0 {
			return &apperrors.GuardFailedError{
				Transition: def.Name,
				Unmet:      unmet,
				Details:    details,
			}
		}

		var sig *entities.Signature
		if def.SignatureScope != "" {
			if req.Signature == nil {
				return apperrors.ErrSignatureRequired
			}
			sig, err = e.signatureSvc.SignInTx(ctx, tx, &txID, req.Actor, req.Signature.Password,
				def.SignatureScope, c.CaseType, c.ID, req.Signature.Meaning, req.Signature.Comment)
			if err != nil {
				return err
			}
		}

		if err := e.caseRepo.UpdateDetailsInTx(ctx, tx, c.ID, req.Details); err != nil {
			return err
		}
		if err := e.caseRepo.UpdateStatusInTx(ctx, tx, c.ID, def.To, def.TimestampField); err != nil {
			return err
		}

		payloadMap := make(map[string]interface{}, len(req.Payload)+1)
		for k, v := range req.Payload {
			payloadMap[k] = v
		}
		if req.Comment != "" {
			payloadMap["comment"] = req.Comment
		}
		var payloadStr *string
		if len(payloadMap) > 0 {
			raw, _ := json.Marshal(payloadMap)
			s := string(raw)
			payloadStr = &s
		}

		newStatus := def.To
		entry := &entities.TimelineEntry{
			CaseID:    c.ID,
			Action:    def.Name,
			ActorID:   req.Actor,
			OldStatus: &oldStatus,
			NewStatus: &newStatus,
			Payload:   payloadStr,
			TxID:      &txID,
		}
		if sig != nil {
			entry.SignatureID = &sig.ID
		}
		if err := e.timelineRepo.CreateInTx(ctx, tx, entry); err != nil {
			return err
		}

		oldValues, _ := json.Marshal(map[string]string{"status": oldStatus})
		newValues, _ := json.Marshal(map[string]string{"status": def.To})
		oldValuesStr, newValuesStr := string(oldValues), string(newValues)
		if err := e.auditRepo.CreateInTx(ctx, tx, &entities.AuditEntry{
			UserID:     req.Actor,
			Action:     entities.AuditStatusChanged,
			EntityType: c.CaseType,
			EntityID:   c.ID,
			OldValues:  &oldValuesStr,
			NewValues:  &newValuesStr,
			TxID:       &txID,
		}); err != nil {
			return err
		}

		// Повторное чтение под уже взятой блокировкой: возвращаем клиенту
		// состояние дела после перехода, включая проставленные отметки.
		result, err = e.caseRepo.FindForUpdateInTx(ctx, tx, string(caseType), caseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Переход выполнен",
		zap.String("caseNumber", result.CaseNumber),
		zap.String("transition", def.Name),
		zap.String("oldStatus", oldStatus),
		zap.String("newStatus", result.Status),
		zap.Uint64("actorID", req.Actor),
	)
	e.bus.Publish(ctx, events.CaseTransitionedEvent{
		CaseID:     result.ID,
		CaseNumber: result.CaseNumber,
		CaseType:   result.CaseType,
		Transition: def.Name,
		OldStatus:  oldStatus,
		NewStatus:  result.Status,
		ActorID:    req.Actor,
	})
	return result, nil
}
