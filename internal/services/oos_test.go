package services

import (
	"context"
	"testing"

	"gmp-system/internal/dto"
	"gmp-system/internal/entities"
	"gmp-system/internal/workflow"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type oosFixture struct {
	*executorFixture
	userRepo *fakeUserRepo
	svc      OOSServiceInterface
}

func newOOSFixture() *oosFixture {
	ef := newExecutorFixture()
	f := &oosFixture{
		executorFixture: ef,
		userRepo:        &fakeUserRepo{users: map[uint64]*entities.User{}},
	}
	f.userRepo.users[5] = &entities.User{ID: 5, Fio: "Расулова М.Н.", Login: "m.rasulova", IsActive: true}
	f.batchRepo.batches[1] = &entities.Batch{ID: 1, BatchNumber: "B-2026-001"}
	f.svc = NewOOSService(ef.executor, ef.caseRepo, f.batchRepo, f.userRepo, zap.NewNop())
	return f
}

func TestOOSCreate(t *testing.T) {
	f := newOOSFixture()

	result, err := f.svc.Create(context.Background(), 1, dto.CreateOOSCaseDTO{
		Title:              "Результат вне спецификации по растворению",
		BatchID:            1,
		TestName:           "Dissolution",
		ResultValue:        utils.Float64Ptr(71.2),
		SpecificationLimit: "NLT 80% (Q) за 30 мин",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.OOSOpen, result.Status)
	assert.Equal(t, string(workflow.CaseTypeOOS), result.CaseType)
}

func TestOOSCreate_UnknownBatch(t *testing.T) {
	f := newOOSFixture()

	_, err := f.svc.Create(context.Background(), 1, dto.CreateOOSCaseDTO{
		Title:              "x",
		BatchID:            99,
		TestName:           "Assay",
		ResultValue:        utils.Float64Ptr(1),
		SpecificationLimit: "90-110%",
	})
	var invalid *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestOOSStartPhase1_UnknownInvestigator(t *testing.T) {
	f := newOOSFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSOpen)

	_, err := f.svc.StartPhase1(context.Background(), 1, c.ID, dto.StartPhase1DTO{InvestigatorID: 404})
	var invalid *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestOOSStartPhase1_AssignsInvestigator(t *testing.T) {
	f := newOOSFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSOpen)

	result, err := f.svc.StartPhase1(context.Background(), 1, c.ID, dto.StartPhase1DTO{InvestigatorID: 5})
	require.NoError(t, err)
	assert.Equal(t, workflow.OOSPhase1, result.Status)

	stored := f.caseRepo.cases[c.ID]
	require.NotNil(t, stored.InvestigatorID)
	assert.Equal(t, uint64(5), *stored.InvestigatorID)
}

func TestOOSCompletePhase1_RoutesByOutcome(t *testing.T) {
	f := newOOSFixture()

	// Лабораторная ошибка найдена: расследование сразу закрывается.
	invalidated := f.seedCase(workflow.CaseTypeOOS, workflow.OOSPhase1)
	result, err := f.svc.CompletePhase1(context.Background(), 1, invalidated.ID, dto.CompletePhase1DTO{
		Conclusion:      "Ошибка разведения пробы, результат недействителен",
		ProceedToPhase2: utils.BoolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.OOSClosedInvalidated, result.Status)

	// Ошибка не найдена: фаза 1 завершена, решение о фазе 2 впереди.
	proceeding := f.seedCase(workflow.CaseTypeOOS, workflow.OOSPhase1)
	result, err = f.svc.CompletePhase1(context.Background(), 1, proceeding.ID, dto.CompletePhase1DTO{
		Conclusion:      "Явная лабораторная ошибка не обнаружена",
		ProceedToPhase2: utils.BoolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.OOSPhase1Complete, result.Status)
}

func TestOOSProposeCAPA_RecordsDetails(t *testing.T) {
	f := newOOSFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSPhase2Complete)

	result, err := f.svc.ProposeCAPA(context.Background(), 1, c.ID, dto.ProposeCAPADTO{
		RootCause:        "Износ пресс-инструмента",
		CorrectiveAction: "Замена пресс-инструмента",
		PreventiveAction: "Ежеквартальная ревизия оснастки",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.OOSCAPAProposed, result.Status)

	stored := f.caseRepo.cases[c.ID]
	require.NotNil(t, stored.RootCause)
	assert.Equal(t, "Износ пресс-инструмента", *stored.RootCause)
	require.NotNil(t, stored.PreventiveAction)
}

func TestOOSProposeCAPA_GuardBlocksMidPhase(t *testing.T) {
	f := newOOSFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSPhase2)

	_, err := f.svc.ProposeCAPA(context.Background(), 1, c.ID, dto.ProposeCAPADTO{
		RootCause:        "x",
		CorrectiveAction: "y",
		PreventiveAction: "z",
	})
	// Ребро PHASE_2 -> CAPA_PROPOSED в графе отсутствует.
	var invalid *apperrors.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestOOSApproveCAPA_Signed(t *testing.T) {
	f := newOOSFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSCAPAProposed)

	result, err := f.svc.ApproveCAPA(context.Background(), 3, c.ID, dto.ApproveCAPADTO{
		Password:         "secret",
		SignatureMeaning: workflow.MeaningCAPAApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.OOSCAPAApproved, result.Status)
	require.Len(t, f.sigSvc.signed, 1)
	assert.Equal(t, workflow.MeaningCAPAApproved, f.sigSvc.signed[0].Meaning)
}

func TestOOSClose_UnknownClosureType(t *testing.T) {
	f := newOOSFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSCAPAImplementing)

	_, err := f.svc.Close(context.Background(), 1, c.ID, dto.CloseOOSDTO{
		ClosureType:      "MAYBE",
		FinalConclusion:  "x",
		Password:         "secret",
		SignatureMeaning: workflow.MeaningResultConfirmed,
	})
	var invalid *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestOOSClose_ByClosureType(t *testing.T) {
	for closureType, want := range map[string]struct {
		status  string
		meaning string
	}{
		"CONFIRMED":    {workflow.OOSClosedConfirmed, workflow.MeaningResultConfirmed},
		"INVALIDATED":  {workflow.OOSClosedInvalidated, workflow.MeaningResultInvalidated},
		"INCONCLUSIVE": {workflow.OOSClosedInconclusive, workflow.MeaningConclusionApproved},
	} {
		f := newOOSFixture()
		c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSPhase2Complete)

		result, err := f.svc.Close(context.Background(), 1, c.ID, dto.CloseOOSDTO{
			ClosureType:      closureType,
			FinalConclusion:  "Итоговое заключение",
			Password:         "secret",
			SignatureMeaning: want.meaning,
		})
		require.NoError(t, err, "тип закрытия %s", closureType)
		assert.Equal(t, want.status, result.Status)

		stored := f.caseRepo.cases[c.ID]
		require.NotNil(t, stored.FinalConclusion)
		assert.NotNil(t, stored.ClosedAt)
	}
}

func TestOOSClose_TerminalIsFinal(t *testing.T) {
	f := newOOSFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSClosedConfirmed)

	_, err := f.svc.Close(context.Background(), 1, c.ID, dto.CloseOOSDTO{
		ClosureType:      "CONFIRMED",
		FinalConclusion:  "повторно",
		Password:         "secret",
		SignatureMeaning: workflow.MeaningResultConfirmed,
	})
	assert.ErrorIs(t, err, apperrors.ErrCaseClosed)
}
