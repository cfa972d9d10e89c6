package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gmp-system/internal/entities"
	"gmp-system/internal/events"
	"gmp-system/internal/workflow"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/eventbus"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type executorFixture struct {
	caseRepo     *fakeCaseRepo
	timelineRepo *fakeTimelineRepo
	auditRepo    *fakeAuditRepo
	batchRepo    *fakeBatchRepo
	sigRepo      *fakeSignatureRepo
	sigSvc       *fakeSignatureService
	bus          *eventbus.Bus
	executor     TransitionExecutorInterface
}

func newExecutorFixture() *executorFixture {
	f := &executorFixture{
		caseRepo:     newFakeCaseRepo(),
		timelineRepo: &fakeTimelineRepo{},
		auditRepo:    &fakeAuditRepo{},
		batchRepo:    newFakeBatchRepo(),
		sigRepo:      &fakeSignatureRepo{},
		sigSvc:       &fakeSignatureService{},
		bus:          eventbus.New(zap.NewNop()),
	}
	f.executor = NewTransitionExecutor(
		&fakeTxManager{},
		f.caseRepo,
		f.timelineRepo,
		f.auditRepo,
		f.sigSvc,
		NewGuardRegistry(f.batchRepo, f.sigRepo),
		f.bus,
		zap.NewNop(),
	)
	return f
}

func (f *executorFixture) seedCase(caseType workflow.CaseType, status string) *entities.Case {
	return f.caseRepo.add(&entities.Case{
		CaseType:  string(caseType),
		Status:    status,
		Title:     "Тестовое дело",
		CreatedBy: 1,
	})
}

func TestExecute_UnknownTransition(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSOpen)

	_, err := f.executor.Execute(context.Background(), workflow.CaseTypeOOS, c.ID, "teleport", TransitionRequest{Actor: 1})
	assert.ErrorIs(t, err, apperrors.ErrUnknownTransition)
}

func TestExecute_CaseNotFound(t *testing.T) {
	f := newExecutorFixture()

	_, err := f.executor.Execute(context.Background(), workflow.CaseTypeOOS, 999, "start-phase1", TransitionRequest{Actor: 1})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestExecute_TerminalCaseRejected(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSClosedConfirmed)

	_, err := f.executor.Execute(context.Background(), workflow.CaseTypeOOS, c.ID, "start-phase1", TransitionRequest{Actor: 1})
	assert.ErrorIs(t, err, apperrors.ErrCaseClosed)
	assert.Empty(t, f.timelineRepo.entries, "отклонённый переход не оставляет следа в таймлайне")
}

func TestExecute_IllegalEdge(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSOpen)

	// OPEN -> PHASE_2 минует фазу 1, такого ребра в графе нет.
	_, err := f.executor.Execute(context.Background(), workflow.CaseTypeOOS, c.ID, "start-phase2", TransitionRequest{Actor: 1})

	var invalid *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, workflow.OOSOpen, invalid.FromStatus)
	assert.Equal(t, workflow.OOSPhase2, invalid.ToStatus)
	assert.Equal(t, []string{workflow.OOSPhase1}, invalid.Allowed)

	got, findErr := f.caseRepo.FindByID(context.Background(), string(workflow.CaseTypeOOS), c.ID)
	require.NoError(t, findErr)
	assert.Equal(t, workflow.OOSOpen, got.Status, "статус не должен измениться")
}

func TestExecute_GuardFailure(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeBatchRec, workflow.BRInProgress)
	f.batchRepo.steps[c.ID] = []entities.BatchRecordStep{
		{ID: 1, CaseID: c.ID, StepNumber: 1, Status: workflow.StepCompleted},
		{ID: 2, CaseID: c.ID, StepNumber: 2, Status: workflow.StepPending},
	}

	_, err := f.executor.Execute(context.Background(), workflow.CaseTypeBatchRec, c.ID, "submit-review", TransitionRequest{Actor: 1})

	var guardErr *apperrors.GuardFailedError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "submit-review", guardErr.Transition)
	assert.Contains(t, guardErr.Unmet, workflow.GuardStepsTerminal)
	assert.Empty(t, f.auditRepo.inTx, "проваленный guard откатывает аудит перехода")
}

func TestExecute_GuardPassesWithTerminalSteps(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeBatchRec, workflow.BRInProgress)
	f.batchRepo.steps[c.ID] = []entities.BatchRecordStep{
		{ID: 1, CaseID: c.ID, StepNumber: 1, Status: workflow.StepCompleted},
		{ID: 2, CaseID: c.ID, StepNumber: 2, Status: workflow.StepSkipped},
	}

	result, err := f.executor.Execute(context.Background(), workflow.CaseTypeBatchRec, c.ID, "submit-review", TransitionRequest{Actor: 1})
	require.NoError(t, err)
	assert.Equal(t, workflow.BRPendingReview, result.Status)
}

func TestExecute_SignatureRequired(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSCAPAProposed)

	_, err := f.executor.Execute(context.Background(), workflow.CaseTypeOOS, c.ID, "approve-capa", TransitionRequest{Actor: 1})
	assert.ErrorIs(t, err, apperrors.ErrSignatureRequired)
	assert.Empty(t, f.sigSvc.signed)
}

func TestExecute_SignatureFailureRollsBack(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSCAPAProposed)
	f.sigSvc.signErr = apperrors.ErrSignatureAuthFailed

	_, err := f.executor.Execute(context.Background(), workflow.CaseTypeOOS, c.ID, "approve-capa", TransitionRequest{
		Actor:     1,
		Signature: &SignatureInput{Password: "wrong", Meaning: "x"},
	})
	assert.ErrorIs(t, err, apperrors.ErrSignatureAuthFailed)

	got, findErr := f.caseRepo.FindByID(context.Background(), string(workflow.CaseTypeOOS), c.ID)
	require.NoError(t, findErr)
	assert.Equal(t, workflow.OOSCAPAProposed, got.Status)
}

func TestExecute_SuccessPath(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSOpen)

	received := make(chan events.CaseTransitionedEvent, 1)
	f.bus.Subscribe(events.CaseTransitionedEventName, func(ctx context.Context, e eventbus.Event) error {
		evt, ok := e.(events.CaseTransitionedEvent)
		if !ok {
			return errors.New("неожиданный тип события")
		}
		received <- evt
		return nil
	})

	result, err := f.executor.Execute(context.Background(), workflow.CaseTypeOOS, c.ID, "start-phase1", TransitionRequest{
		Actor:   7,
		Comment: "начинаем лабораторную проверку",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.OOSPhase1, result.Status)
	assert.NotNil(t, result.Phase1StartedAt, "переход проставляет отметку времени фазы")

	require.Len(t, f.timelineRepo.entries, 1)
	entry := f.timelineRepo.entries[0]
	assert.Equal(t, "start-phase1", entry.Action)
	assert.Equal(t, uint64(7), entry.ActorID)
	require.NotNil(t, entry.OldStatus)
	assert.Equal(t, workflow.OOSOpen, *entry.OldStatus)
	require.NotNil(t, entry.NewStatus)
	assert.Equal(t, workflow.OOSPhase1, *entry.NewStatus)
	require.NotNil(t, entry.Payload)
	assert.Contains(t, *entry.Payload, "начинаем лабораторную проверку")
	require.NotNil(t, entry.TxID)

	require.Len(t, f.auditRepo.inTx, 1)
	audit := f.auditRepo.inTx[0]
	assert.Equal(t, entities.AuditStatusChanged, audit.Action)
	assert.Equal(t, string(workflow.CaseTypeOOS), audit.EntityType)
	require.NotNil(t, audit.TxID)
	assert.Equal(t, *entry.TxID, *audit.TxID, "таймлайн и аудит делят один идентификатор транзакции")

	select {
	case evt := <-received:
		assert.Equal(t, c.ID, evt.CaseID)
		assert.Equal(t, "start-phase1", evt.Transition)
		assert.Equal(t, workflow.OOSOpen, evt.OldStatus)
		assert.Equal(t, workflow.OOSPhase1, evt.NewStatus)
		assert.Equal(t, uint64(7), evt.ActorID)
	case <-time.After(2 * time.Second):
		t.Fatal("событие о переходе не опубликовано")
	}
}

func TestExecute_SignedTransitionLinksSignature(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeOOS, workflow.OOSCAPAProposed)

	result, err := f.executor.Execute(context.Background(), workflow.CaseTypeOOS, c.ID, "approve-capa", TransitionRequest{
		Actor:     3,
		Signature: &SignatureInput{Password: "secret", Meaning: "Approved CAPA plan as adequate", Comment: "ок"},
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.OOSCAPAApproved, result.Status)
	assert.NotNil(t, result.CAPAApprovedAt)

	require.Len(t, f.sigSvc.signed, 1)
	require.Len(t, f.timelineRepo.entries, 1)
	require.NotNil(t, f.timelineRepo.entries[0].SignatureID)
	assert.Equal(t, uint64(1), *f.timelineRepo.entries[0].SignatureID)
}

func TestExecute_DeviationCloseRequiresImplementing(t *testing.T) {
	f := newExecutorFixture()
	c := f.seedCase(workflow.CaseTypeDeviation, workflow.DevCAPAApproved)

	_, err := f.executor.Execute(context.Background(), workflow.CaseTypeDeviation, c.ID, "close", TransitionRequest{Actor: 1})

	var invalid *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{workflow.DevImplementing}, invalid.Allowed)
}

func TestCreateCase_SetsInitialStatusAndJournals(t *testing.T) {
	f := newExecutorFixture()

	created := make(chan events.CaseCreatedEvent, 1)
	f.bus.Subscribe(events.CaseCreatedEventName, func(ctx context.Context, e eventbus.Event) error {
		if evt, ok := e.(events.CaseCreatedEvent); ok {
			created <- evt
		}
		return nil
	})

	c := &entities.Case{Title: "Новое досье", CreatedBy: 2}
	err := f.executor.CreateCase(context.Background(), workflow.CaseTypeBatchRec, c, nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.BRDraft, c.Status)
	assert.NotZero(t, c.ID)

	require.Len(t, f.timelineRepo.entries, 1)
	assert.Equal(t, "case-created", f.timelineRepo.entries[0].Action)
	require.Len(t, f.auditRepo.inTx, 1)
	assert.Equal(t, entities.AuditCaseCreated, f.auditRepo.inTx[0].Action)

	select {
	case evt := <-created:
		assert.Equal(t, c.ID, evt.CaseID)
		assert.Equal(t, string(workflow.CaseTypeBatchRec), evt.CaseType)
	case <-time.After(2 * time.Second):
		t.Fatal("событие о создании дела не опубликовано")
	}
}

func TestCreateCase_SetupFailureAborts(t *testing.T) {
	f := newExecutorFixture()

	boom := errors.New("вставка шагов не удалась")
	c := &entities.Case{Title: "Сломанное досье", CreatedBy: 2}
	err := f.executor.CreateCase(context.Background(), workflow.CaseTypeBatchRec, c, func(tx pgx.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.timelineRepo.entries)
}
