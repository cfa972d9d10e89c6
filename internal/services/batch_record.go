package services

import (
	"context"
	"encoding/json"

	"gmp-system/internal/dto"
	"gmp-system/internal/entities"
	"gmp-system/internal/repositories"
	"gmp-system/internal/workflow"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BatchRecordServiceInterface interface {
	Create(ctx context.Context, actorID uint64, payload dto.CreateBatchRecordDTO) (*dto.BatchRecordDetailDTO, error)
	FindByID(ctx context.Context, id uint64) (*dto.BatchRecordDetailDTO, error)
	List(ctx context.Context, filter types.Filter) ([]dto.CaseDTO, uint64, error)
	Start(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error)
	CompleteStep(ctx context.Context, actorID uint64, caseID, stepID uint64) (*dto.BatchRecordStepDTO, error)
	SubmitReview(ctx context.Context, actorID uint64, id uint64, comment string) (*dto.CaseDTO, error)
	Review(ctx context.Context, actorID uint64, id uint64, payload dto.SignActionDTO) (*dto.SignatureDTO, error)
	Approve(ctx context.Context, actorID uint64, id uint64, payload dto.SignActionDTO) (*dto.CaseDTO, error)
	Reject(ctx context.Context, actorID uint64, id uint64, payload dto.SignActionDTO) (*dto.CaseDTO, error)
}

// BatchRecordService - адаптер электронного досье серии (eBR): шаги
// производственного процесса, подписанная проверка (review) и двухподписной
// выпуск серии.
type BatchRecordService struct {
	executor      TransitionExecutorInterface
	txManager     repositories.TxManagerInterface
	caseRepo      repositories.CaseRepositoryInterface
	batchRepo     repositories.BatchRepositoryInterface
	timelineRepo  repositories.TimelineRepositoryInterface
	auditRepo     repositories.AuditRepositoryInterface
	signatureRepo repositories.SignatureRepositoryInterface
	signatureSvc  SignatureServiceInterface
	logger        *zap.Logger
}

func NewBatchRecordService(
	executor TransitionExecutorInterface,
	txManager repositories.TxManagerInterface,
	caseRepo repositories.CaseRepositoryInterface,
	batchRepo repositories.BatchRepositoryInterface,
	timelineRepo repositories.TimelineRepositoryInterface,
	auditRepo repositories.AuditRepositoryInterface,
	signatureRepo repositories.SignatureRepositoryInterface,
	signatureSvc SignatureServiceInterface,
	logger *zap.Logger,
) BatchRecordServiceInterface {
	return &BatchRecordService{
		executor:      executor,
		txManager:     txManager,
		caseRepo:      caseRepo,
		batchRepo:     batchRepo,
		timelineRepo:  timelineRepo,
		auditRepo:     auditRepo,
		signatureRepo: signatureRepo,
		signatureSvc:  signatureSvc,
		logger:        logger,
	}
}

func (s *BatchRecordService) Create(ctx context.Context, actorID uint64, payload dto.CreateBatchRecordDTO) (*dto.BatchRecordDetailDTO, error) {
	if _, err := s.batchRepo.FindBatch(ctx, payload.BatchID); err != nil {
		return nil, apperrors.NewInvalidInputError("серия %d не найдена", payload.BatchID)
	}

	seen := make(map[int]bool, len(payload.Steps))
	steps := make([]entities.BatchRecordStep, 0, len(payload.Steps))
	for _, step := range payload.Steps {
		if seen[step.StepNumber] {
			return nil, apperrors.NewInvalidInputError("номер шага %d задан дважды", step.StepNumber)
		}
		seen[step.StepNumber] = true
		steps = append(steps, entities.BatchRecordStep{
			StepNumber: step.StepNumber,
			Name:       step.Name,
			Status:     workflow.StepPending,
		})
	}

	c := &entities.Case{
		Title:     payload.Title,
		BatchID:   &payload.BatchID,
		CreatedBy: actorID,
	}
	err := s.executor.CreateCase(ctx, workflow.CaseTypeBatchRec, c, func(tx pgx.Tx) error {
		return s.batchRepo.CreateStepsInTx(ctx, tx, c.ID, steps)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, c)
}

func (s *BatchRecordService) FindByID(ctx context.Context, id uint64) (*dto.BatchRecordDetailDTO, error) {
	c, err := s.caseRepo.FindByID(ctx, string(workflow.CaseTypeBatchRec), id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, c)
}

func (s *BatchRecordService) detail(ctx context.Context, c *entities.Case) (*dto.BatchRecordDetailDTO, error) {
	steps, err := s.batchRepo.FindStepsByCaseID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	signatures, err := s.signatureRepo.ListByEntity(ctx, c.CaseType, c.ID)
	if err != nil {
		return nil, err
	}

	result := &dto.BatchRecordDetailDTO{
		Case:       *caseToDTO(c),
		Steps:      make([]dto.BatchRecordStepDTO, 0, len(steps)),
		Signatures: make([]dto.SignatureDTO, 0, len(signatures)),
	}
	for i := range steps {
		result.Steps = append(result.Steps, stepToDTO(&steps[i]))
	}
	for i := range signatures {
		result.Signatures = append(result.Signatures, signatureItemToDTO(&signatures[i]))
	}
	return result, nil
}

func (s *BatchRecordService) List(ctx context.Context, filter types.Filter) ([]dto.CaseDTO, uint64, error) {
	cases, total, err := s.caseRepo.List(ctx, string(workflow.CaseTypeBatchRec), filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.CaseDTO, 0, len(cases))
	for i := range cases {
		result = append(result, *caseToDTO(&cases[i]))
	}
	return result, total, nil
}

func (s *BatchRecordService) Start(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "start", TransitionRequest{Actor: actorID})
}

// CompleteStep отмечает шаг выполненным. Дело блокируется на время операции:
// завершение шага не должно гоняться с переходом досье в проверку.
func (s *BatchRecordService) CompleteStep(ctx context.Context, actorID uint64, caseID, stepID uint64) (*dto.BatchRecordStepDTO, error) {
	var step *entities.BatchRecordStep
	txID := uuid.New()

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		c, err := s.caseRepo.FindForUpdateInTx(ctx, tx, string(workflow.CaseTypeBatchRec), caseID)
		if err != nil {
			return err
		}
		if workflow.IsTerminal(workflow.CaseTypeBatchRec, c.Status) {
			return apperrors.ErrCaseClosed
		}
		if c.Status != workflow.BRInProgress {
			return apperrors.NewInvalidInputError("шаги заполняются только в статусе %s, текущий статус %s",
				workflow.BRInProgress, c.Status)
		}

		step, err = s.batchRepo.CompleteStepInTx(ctx, tx, caseID, stepID, actorID)
		if err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"step_number": step.StepNumber,
			"step_name":   step.Name,
		})
		payloadStr := string(payload)
		status := c.Status
		if err := s.timelineRepo.CreateInTx(ctx, tx, &entities.TimelineEntry{
			CaseID:    caseID,
			Action:    "complete-step",
			ActorID:   actorID,
			OldStatus: &status,
			NewStatus: &status,
			Payload:   &payloadStr,
			TxID:      &txID,
		}); err != nil {
			return err
		}

		newValues, _ := json.Marshal(map[string]interface{}{
			"step_id":     step.ID,
			"step_number": step.StepNumber,
			"status":      step.Status,
		})
		newValuesStr := string(newValues)
		return s.auditRepo.CreateInTx(ctx, tx, &entities.AuditEntry{
			UserID:     actorID,
			Action:     entities.AuditStepCompleted,
			EntityType: string(workflow.CaseTypeBatchRec),
			EntityID:   caseID,
			NewValues:  &newValuesStr,
			TxID:       &txID,
		})
	})
	if err != nil {
		return nil, err
	}

	result := stepToDTO(step)
	return &result, nil
}

func (s *BatchRecordService) SubmitReview(ctx context.Context, actorID uint64, id uint64, comment string) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "submit-review", TransitionRequest{Actor: actorID, Comment: comment})
}

// Review - подписанная проверка досье. Статус дела не меняется: это чисто
// подписная операция в статусе PENDING_REVIEW, создающая подпись
// BATCH_RELEASE с формулировкой проверки. Именно её ищет guard review_signed
// при выпуске.
func (s *BatchRecordService) Review(ctx context.Context, actorID uint64, id uint64, payload dto.SignActionDTO) (*dto.SignatureDTO, error) {
	var created *entities.Signature
	txID := uuid.New()

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		c, err := s.caseRepo.FindForUpdateInTx(ctx, tx, string(workflow.CaseTypeBatchRec), id)
		if err != nil {
			return err
		}
		if workflow.IsTerminal(workflow.CaseTypeBatchRec, c.Status) {
			return apperrors.ErrCaseClosed
		}
		if c.Status != workflow.BRPendingReview {
			return apperrors.NewInvalidInputError("проверка возможна только в статусе %s, текущий статус %s",
				workflow.BRPendingReview, c.Status)
		}

		created, err = s.signatureSvc.SignInTx(ctx, tx, &txID, actorID, payload.Password,
			workflow.ScopeBatchRelease, c.CaseType, c.ID, payload.Meaning, payload.Comment)
		if err != nil {
			return err
		}

		status := c.Status
		var payloadStr *string
		if payload.Comment != "" {
			raw, _ := json.Marshal(map[string]string{"comment": payload.Comment})
			str := string(raw)
			payloadStr = &str
		}
		return s.timelineRepo.CreateInTx(ctx, tx, &entities.TimelineEntry{
			CaseID:      id,
			Action:      "review",
			ActorID:     actorID,
			OldStatus:   &status,
			NewStatus:   &status,
			Payload:     payloadStr,
			SignatureID: &created.ID,
			TxID:        &txID,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.signatureSvc.Verify(ctx, created.ID)
}

func (s *BatchRecordService) Approve(ctx context.Context, actorID uint64, id uint64, payload dto.SignActionDTO) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "approve", TransitionRequest{
		Actor:   actorID,
		Comment: payload.Comment,
		Signature: &SignatureInput{
			Password: payload.Password,
			Meaning:  payload.Meaning,
			Comment:  payload.Comment,
		},
	})
}

func (s *BatchRecordService) Reject(ctx context.Context, actorID uint64, id uint64, payload dto.SignActionDTO) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "reject", TransitionRequest{
		Actor:   actorID,
		Comment: payload.Comment,
		Signature: &SignatureInput{
			Password: payload.Password,
			Meaning:  payload.Meaning,
			Comment:  payload.Comment,
		},
	})
}

func (s *BatchRecordService) execute(ctx context.Context, id uint64, transition string, req TransitionRequest) (*dto.CaseDTO, error) {
	c, err := s.executor.Execute(ctx, workflow.CaseTypeBatchRec, id, transition, req)
	if err != nil {
		return nil, err
	}
	return caseToDTO(c), nil
}
