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

type DeviationServiceInterface interface {
	Create(ctx context.Context, actorID uint64, payload dto.CreateDeviationDTO) (*dto.CaseDTO, error)
	FindByID(ctx context.Context, id uint64) (*dto.CaseDTO, error)
	List(ctx context.Context, filter types.Filter) ([]dto.CaseDTO, uint64, error)
	StartInvestigation(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error)
	ProposeCAPA(ctx context.Context, actorID uint64, id uint64, payload dto.DeviationProposeCAPADTO) (*dto.CaseDTO, error)
	Approve(ctx context.Context, actorID uint64, id uint64, payload dto.SignActionDTO) (*dto.CaseDTO, error)
	StartImplementation(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error)
	Close(ctx context.Context, actorID uint64, id uint64, payload dto.CloseDeviationDTO) (*dto.CaseDTO, error)
}

// DeviationService - адаптер отклонения серии: линейный жизненный цикл
// с одной подписью DEVIATION_APPROVAL на утверждении CAPA.
type DeviationService struct {
	executor  TransitionExecutorInterface
	caseRepo  repositories.CaseRepositoryInterface
	batchRepo repositories.BatchRepositoryInterface
	logger    *zap.Logger
}

func NewDeviationService(
	executor TransitionExecutorInterface,
	caseRepo repositories.CaseRepositoryInterface,
	batchRepo repositories.BatchRepositoryInterface,
	logger *zap.Logger,
) DeviationServiceInterface {
	return &DeviationService{
		executor:  executor,
		caseRepo:  caseRepo,
		batchRepo: batchRepo,
		logger:    logger,
	}
}

func (s *DeviationService) Create(ctx context.Context, actorID uint64, payload dto.CreateDeviationDTO) (*dto.CaseDTO, error) {
	if _, err := s.batchRepo.FindBatch(ctx, payload.BatchID); err != nil {
		return nil, apperrors.NewInvalidInputError("серия %d не найдена", payload.BatchID)
	}

	c := &entities.Case{
		Title:       payload.Title,
		BatchID:     &payload.BatchID,
		CreatedBy:   actorID,
		Severity:    &payload.Severity,
		Description: &payload.Description,
	}
	if err := s.executor.CreateCase(ctx, workflow.CaseTypeDeviation, c, nil); err != nil {
		return nil, err
	}
	return caseToDTO(c), nil
}

func (s *DeviationService) FindByID(ctx context.Context, id uint64) (*dto.CaseDTO, error) {
	c, err := s.caseRepo.FindByID(ctx, string(workflow.CaseTypeDeviation), id)
	if err != nil {
		return nil, err
	}
	return caseToDTO(c), nil
}

func (s *DeviationService) List(ctx context.Context, filter types.Filter) ([]dto.CaseDTO, uint64, error) {
	cases, total, err := s.caseRepo.List(ctx, string(workflow.CaseTypeDeviation), filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.CaseDTO, 0, len(cases))
	for i := range cases {
		result = append(result, *caseToDTO(&cases[i]))
	}
	return result, total, nil
}

func (s *DeviationService) StartInvestigation(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "start-investigation", TransitionRequest{Actor: actorID})
}

func (s *DeviationService) ProposeCAPA(ctx context.Context, actorID uint64, id uint64, payload dto.DeviationProposeCAPADTO) (*dto.CaseDTO, error) {
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

func (s *DeviationService) Approve(ctx context.Context, actorID uint64, id uint64, payload dto.SignActionDTO) (*dto.CaseDTO, error) {
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

func (s *DeviationService) StartImplementation(ctx context.Context, actorID uint64, id uint64) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "start-implementation", TransitionRequest{Actor: actorID})
}

func (s *DeviationService) Close(ctx context.Context, actorID uint64, id uint64, payload dto.CloseDeviationDTO) (*dto.CaseDTO, error) {
	return s.execute(ctx, id, "close", TransitionRequest{
		Actor:   actorID,
		Comment: payload.Comment,
		Details: repositories.CaseDetails{FinalConclusion: utils.StringPtr(payload.FinalConclusion)},
		Payload: map[string]interface{}{"final_conclusion": payload.FinalConclusion},
	})
}

func (s *DeviationService) execute(ctx context.Context, id uint64, transition string, req TransitionRequest) (*dto.CaseDTO, error) {
	c, err := s.executor.Execute(ctx, workflow.CaseTypeDeviation, id, transition, req)
	if err != nil {
		return nil, err
	}
	return caseToDTO(c), nil
}
