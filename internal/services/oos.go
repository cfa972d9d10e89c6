package services

import (
	"context"

	"gmp-system/internal/dto"
	"gmp-system/internal/entities"
	"gmp-system/internal/repositories"
	"gmp-system/internal/workflow"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/types"
	"gmp-system/pkg/utils"

	"go.uber.org/zap"
)

type OOSServiceInterface interface {
	Create(ctx context.Context, actorID uint64, payload dto.CreateOOSCaseDTO) (*dto.CaseDTO, error)
	FindByID(ctx context.Context, id uint64) (*dto.CaseDTO, error)
	List(ctx context.Context, filter types.Filter) ([]dto.CaseDTO, uint64, error)
	StartPhase1(ctx context.Context, actorID uint64, id uint64, payload dto.StartPhase1DTO) (*dto.CaseDTO, error)
	CompletePhase1(ctx context.Context, actorID uint64, id uint64, payload dto.CompletePhase1DTO) (*dto.CaseDTO, error)
	StartPhase2(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error)
	CompletePhase2(ctx context.Context, actorID uint64, id uint64, payload dto.CompletePhase2DTO) (*dto.CaseDTO, error)
	ProposeCAPA(ctx context.Context, actorID uint64, id uint64, payload dto.ProposeCAPADTO) (*dto.CaseDTO, error)
	ApproveCAPA(ctx context.Context, actorID uint64, id uint64, payload dto.ApproveCAPADTO) (*dto.CaseDTO, error)
	StartImplementation(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error)
	Close(ctx context.Context, actorID uint64, id uint64, payload dto.CloseOOSDTO) (*dto.CaseDTO, error)
}

// OOSService - адаптер OOS-расследования: знает только, какой переход
// дёрнуть для какого HTTP-действия и какие содержательные поля записать
// вместе с ним. Вся механика переходов - в исполнителе.
type OOSService struct {
	executor  TransitionExecutorInterface
	caseRepo  repositories.CaseRepositoryInterface
	batchRepo repositories.BatchRepositoryInterface
	userRepo  repositories.UserRepositoryInterface
	logger    *zap.Logger
}

func NewOOSService(
	executor TransitionExecutorInterface,
	caseRepo repositories.CaseRepositoryInterface,
	batchRepo repositories.BatchRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) OOSServiceInterface {
	return &OOSService{
		executor:  executor,
		caseRepo:  caseRepo,
		batchRepo: batchRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

func (s *OOSService) Create(ctx context.Context, actorID uint64, payload dto.CreateOOSCaseDTO) (*dto.CaseDTO, error) {
	if _, err := s.batchRepo.FindBatch(ctx, payload.BatchID); err != nil {
		return nil, apperrors.NewInvalidInputError("серия %d не найдена", payload.BatchID)
	}

	c := &entities.Case{
		Title:              payload.Title,
		BatchID:            &payload.BatchID,
		CreatedBy:          actorID,
		TestName:           &payload.TestName,
		ResultValue:        payload.ResultValue,
		SpecificationLimit: &payload.SpecificationLimit,
	}
	if err := s.executor.CreateCase(ctx, workflow.CaseTypeOOS, c, nil); err != nil {
		return nil, err
	}
	return caseToDTO(c), nil
}

func (s *OOSService) FindByID(ctx context.Context, id uint64) (*dto.CaseDTO, error) {
	c, err := s.caseRepo.FindByID(ctx, string(workflow.CaseTypeOOS), id)
	if err != nil {
		return nil, err
	}
	return caseToDTO(c), nil
}

func (s *OOSService) List(ctx context.Context, filter types.Filter) ([]dto.CaseDTO, uint64, error) {
	cases, total, err := s.caseRepo.List(ctx, string(workflow.CaseTypeOOS), filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.CaseDTO, 0, len(cases))
	for i := range cases {
		result = append(result, *caseToDTO(&cases[i]))
	}
	return result, total, nil
}

func (s *OOSService) StartPhase1(ctx context.Context, actorID uint64, id uint64, payload dto.StartPhase1DTO) (*dto.CaseDTO, error) {
	if _, err := s.userRepo.FindUserByID(ctx, payload.InvestigatorID); err != nil {
		return nil, apperrors.NewInvalidInputError("следователь %d не найден", payload.InvestigatorID)
	}
	return s.execute(ctx, id, "start-phase1", TransitionRequest{
		Actor:   actorID,
		Details: repositories.CaseDetails{InvestigatorID: &payload.InvestigatorID},
		Payload: map[string]interface{}{"investigator_id": payload.InvestigatorID},
	})
}

// CompletePhase1 завершает лабораторную фазу. Если явная лабораторная ошибка
// найдена (proceedToPhase2=false при выводе об ошибке), дело уходит сразу в
// CLOSED_INVALIDATED; иначе - в PHASE_1_COMPLETE, откуда решается судьба
// полного расследования.
func (s *OOSService) CompletePhase1(ctx context.Context, actorID uint64, id uint64, payload dto.CompletePhase1DTO) (*dto.CaseDTO, error) {
	transition := "complete-phase1"
	if payload.ProceedToPhase2 != nil && !*payload.ProceedToPhase2 {
		transition = "invalidate-phase1"
	}
	return s.execute(ctx, id, transition, TransitionRequest{
		Actor:   actorID,
		Details: repositories.CaseDetails{Conclusion: utils.StringPtr(payload.Conclusion)},
		Payload: map[string]interface{}{"conclusion": payload.Conclusion},
	})
}

func (s *OOSService) StartPhase2(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "start-phase2", TransitionRequest{Actor: actorID})
}

func (s *OOSService) CompletePhase2(ctx context.Context, actorID uint64, id uint64, payload dto.CompletePhase2DTO) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "complete-phase2", TransitionRequest{
		Actor:   actorID,
		Details: repositories.CaseDetails{Conclusion: utils.StringPtr(payload.Conclusion)},
		Payload: map[string]interface{}{"conclusion": payload.Conclusion},
	})
}

func (s *OOSService) ProposeCAPA(ctx context.Context, actorID uint64, id uint64, payload dto.ProposeCAPADTO) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "propose-capa", TransitionRequest{
		Actor: actorID,
		Details: repositories.CaseDetails{
			RootCause:        utils.StringPtr(payload.RootCause),
			CorrectiveAction: utils.StringPtr(payload.CorrectiveAction),
			PreventiveAction: utils.StringPtr(payload.PreventiveAction),
		},
		Payload: map[string]interface{}{
			"root_cause":        payload.RootCause,
			"corrective_action": payload.CorrectiveAction,
			"preventive_action": payload.PreventiveAction,
		},
	})
}

func (s *OOSService) ApproveCAPA(ctx context.Context, actorID uint64, id uint64, payload dto.ApproveCAPADTO) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "approve-capa", TransitionRequest{
		Actor:   actorID,
		Comment: payload.Comment,
		Signature: &SignatureInput{
			Password: payload.Password,
			Meaning:  payload.SignatureMeaning,
			Comment:  payload.Comment,
		},
	})
}

func (s *OOSService) StartImplementation(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "start-implementation", TransitionRequest{Actor: actorID})
}

var oosClosureTransitions = map[string]string{
	"CONFIRMED":    "close-confirmed",
	"INVALIDATED":  "close-invalidated",
	"INCONCLUSIVE": "close-inconclusive",
}

func (s *OOSService) Close(ctx context.Context, actorID uint64, id uint64, payload dto.CloseOOSDTO) (*dto.CaseDTO, error) {
	transition, ok := oosClosureTransitions[payload.ClosureType]
	if !ok {
		return nil, apperrors.NewInvalidInputError("неизвестный тип закрытия: %s", payload.ClosureType)
	}
	return s.execute(ctx, id, transition, TransitionRequest{
		Actor:   actorID,
		Comment: payload.Comment,
		Details: repositories.CaseDetails{FinalConclusion: utils.StringPtr(payload.FinalConclusion)},
		Payload: map[string]interface{}{
			"closure_type":     payload.ClosureType,
			"final_conclusion": payload.FinalConclusion,
		},
		Signature: &SignatureInput{
			Password: payload.Password,
			Meaning:  payload.SignatureMeaning,
			Comment:  payload.Comment,
		},
	})
}

func (s *OOSService) execute(ctx context.Context, id uint64, transition string, req TransitionRequest) (*dto.CaseDTO, error) {
	c, err := s.executor.Execute(ctx, workflow.CaseTypeOOS, id, transition, req)
	if err != nil {
		return nil, err
	}
	return caseToDTO(c), nil
}
