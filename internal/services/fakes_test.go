package services

import (
	"context"
	"fmt"
	"time"

	"gmp-system/internal/dto"
	"gmp-system/internal/entities"
	"gmp-system/internal/repositories"
	"gmp-system/internal/workflow"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeTxManager выполняет fn без реальной транзакции: репозитории-заглушки
// игнорируют tx, поэтому nil достаточно.
type fakeTxManager struct {
	fail error
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.fail != nil {
		return m.fail
	}
	return fn(nil)
}

type fakeCaseRepo struct {
	cases  map[uint64]*entities.Case
	nextID uint64
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: make(map[uint64]*entities.Case), nextID: 1}
}

func (r *fakeCaseRepo) add(c *entities.Case) *entities.Case {
	c.ID = r.nextID
	r.nextID++
	if c.CaseNumber == "" {
		c.CaseNumber = fmt.Sprintf("TEST-%04d", c.ID)
	}
	c.CreatedAt = time.Now()
	r.cases[c.ID] = c
	return c
}

func (r *fakeCaseRepo) CreateInTx(ctx context.Context, tx pgx.Tx, c *entities.Case) error {
	r.add(c)
	return nil
}

func (r *fakeCaseRepo) find(caseType string, id uint64) (*entities.Case, error) {
	c, ok := r.cases[id]
	if !ok || c.CaseType != caseType {
		return nil, apperrors.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCaseRepo) FindByID(ctx context.Context, caseType string, id uint64) (*entities.Case, error) {
	return r.find(caseType, id)
}

func (r *fakeCaseRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	_, ok := r.cases[id]
	return ok, nil
}

func (r *fakeCaseRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, caseType string, id uint64) (*entities.Case, error) {
	return r.find(caseType, id)
}

func (r *fakeCaseRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, newStatus, timestampColumn string) error {
	c, ok := r.cases[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.Status = newStatus
	if timestampColumn != "" {
		now := time.Now()
		switch timestampColumn {
		case "closed_at":
			c.ClosedAt = &now
		case "capa_approved_at":
			c.CAPAApprovedAt = &now
		case "approved_at":
			c.ApprovedAt = &now
		case "phase1_started_at":
			c.Phase1StartedAt = &now
		case "phase1_completed_at":
			c.Phase1CompletedAt = &now
		}
	}
	return nil
}

func (r *fakeCaseRepo) UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, id uint64, details repositories.CaseDetails) error {
	c, ok := r.cases[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if details.Conclusion != nil {
		c.Conclusion = details.Conclusion
	}
	if details.RootCause != nil {
		c.RootCause = details.RootCause
	}
	if details.CorrectiveAction != nil {
		c.CorrectiveAction = details.CorrectiveAction
	}
	if details.PreventiveAction != nil {
		c.PreventiveAction = details.PreventiveAction
	}
	if details.FinalConclusion != nil {
		c.FinalConclusion = details.FinalConclusion
	}
	if details.InvestigatorID != nil {
		c.InvestigatorID = details.InvestigatorID
	}
	return nil
}

func (r *fakeCaseRepo) List(ctx context.Context, caseType string, filter types.Filter) ([]entities.Case, uint64, error) {
	var out []entities.Case
	for _, c := range r.cases {
		if c.CaseType == caseType {
			out = append(out, *c)
		}
	}
	return out, uint64(len(out)), nil
}

type fakeTimelineRepo struct {
	entries []entities.TimelineEntry
}

func (r *fakeTimelineRepo) CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.TimelineEntry) error {
	entry.ID = uint64(len(r.entries) + 1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeTimelineRepo) FindByCaseID(ctx context.Context, caseID uint64) ([]repositories.TimelineItem, error) {
	var out []repositories.TimelineItem
	for _, e := range r.entries {
		if e.CaseID == caseID {
			out = append(out, repositories.TimelineItem{TimelineEntry: e})
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	inTx    []entities.AuditEntry
	outside []entities.AuditEntry
}

func (r *fakeAuditRepo) CreateInTx(ctx context.Context, tx pgx.Tx, entry *entities.AuditEntry) error {
	entry.ID = uint64(len(r.inTx) + 1)
	entry.CreatedAt = time.Now()
	r.inTx = append(r.inTx, *entry)
	return nil
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *entities.AuditEntry) error {
	entry.ID = uint64(len(r.outside) + 1)
	entry.CreatedAt = time.Now()
	r.outside = append(r.outside, *entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filter repositories.AuditFilter) ([]repositories.AuditItem, uint64, error) {
	var out []repositories.AuditItem
	for _, e := range r.inTx {
		out = append(out, repositories.AuditItem{AuditEntry: e})
	}
	return out, uint64(len(out)), nil
}

func (r *fakeAuditRepo) lastInTx() *entities.AuditEntry {
	if len(r.inTx) == 0 {
		return nil
	}
	return &r.inTx[len(r.inTx)-1]
}

type fakeSignatureRepo struct {
	signatures []entities.Signature
}

func (r *fakeSignatureRepo) CreateInTx(ctx context.Context, tx pgx.Tx, s *entities.Signature) error {
	for _, existing := range r.signatures {
		if existing.Scope == s.Scope && existing.EntityType == s.EntityType &&
			existing.EntityID == s.EntityID && existing.SignedByUserID == s.SignedByUserID {
			return apperrors.ErrDuplicateSignature
		}
	}
	s.ID = uint64(len(r.signatures) + 1)
	s.SignedAt = time.Now()
	r.signatures = append(r.signatures, *s)
	return nil
}

func (r *fakeSignatureRepo) Exists(ctx context.Context, q repositories.Querier, scope, entityType string, entityID, userID uint64) (bool, error) {
	for _, s := range r.signatures {
		if s.Scope == scope && s.EntityType == entityType && s.EntityID == entityID && s.SignedByUserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSignatureRepo) FindByEntityAndMeaning(ctx context.Context, q repositories.Querier, scope, entityType string, entityID uint64, meaning string) (bool, error) {
	for _, s := range r.signatures {
		if s.Scope == scope && s.EntityType == entityType && s.EntityID == entityID && s.Meaning == meaning {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSignatureRepo) FindByID(ctx context.Context, id uint64) (*repositories.SignatureItem, error) {
	for _, s := range r.signatures {
		if s.ID == id {
			return &repositories.SignatureItem{Signature: s}, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeSignatureRepo) ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]repositories.SignatureItem, error) {
	var out []repositories.SignatureItem
	for _, s := range r.signatures {
		if s.EntityType == entityType && s.EntityID == entityID {
			out = append(out, repositories.SignatureItem{Signature: s})
		}
	}
	return out, nil
}

type fakeBatchRepo struct {
	batches map[uint64]*entities.Batch
	steps   map[uint64][]entities.BatchRecordStep
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{
		batches: make(map[uint64]*entities.Batch),
		steps:   make(map[uint64][]entities.BatchRecordStep),
	}
}

func (r *fakeBatchRepo) FindBatch(ctx context.Context, id uint64) (*entities.Batch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return b, nil
}

func (r *fakeBatchRepo) CreateStepsInTx(ctx context.Context, tx pgx.Tx, caseID uint64, steps []entities.BatchRecordStep) error {
	for i := range steps {
		steps[i].ID = uint64(i + 1)
		steps[i].CaseID = caseID
	}
	r.steps[caseID] = append(r.steps[caseID], steps...)
	return nil
}

func (r *fakeBatchRepo) FindStepsByCaseID(ctx context.Context, caseID uint64) ([]entities.BatchRecordStep, error) {
	return r.steps[caseID], nil
}

func (r *fakeBatchRepo) StepStatusCounts(ctx context.Context, q repositories.Querier, caseID uint64) (map[string]int, error) {
	counts := make(map[string]int)
	for _, s := range r.steps[caseID] {
		counts[s.Status]++
	}
	return counts, nil
}

func (r *fakeBatchRepo) CompleteStepInTx(ctx context.Context, tx pgx.Tx, caseID, stepID, userID uint64) (*entities.BatchRecordStep, error) {
	steps := r.steps[caseID]
	for i := range steps {
		if steps[i].ID == stepID {
			if steps[i].Status != workflow.StepPending && steps[i].Status != workflow.StepInProgress {
				return nil, apperrors.ErrNotFound
			}
			now := time.Now()
			steps[i].Status = workflow.StepCompleted
			steps[i].CompletedBy = &userID
			steps[i].CompletedAt = &now
			return &steps[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeUserRepo struct {
	users map[uint64]*entities.User
}

func (r *fakeUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindUserByEmailOrLogin(ctx context.Context, login string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Login == login || u.Email == login {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *entities.User) error {
	user.ID = uint64(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

type fakeCacheRepo struct {
	values map[string]string
	counts map[string]int64
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: make(map[string]string), counts: make(map[string]int64)}
}

func (r *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	r.values[key] = fmt.Sprintf("%v", value)
	return nil
}

func (r *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	v, ok := r.values[key]
	if !ok {
		return "", fmt.Errorf("ключ %s не найден", key)
	}
	return v, nil
}

func (r *fakeCacheRepo) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(r.values, key)
		delete(r.counts, key)
	}
	return nil
}

func (r *fakeCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	r.counts[key]++
	return r.counts[key], nil
}

func (r *fakeCacheRepo) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return true, nil
}

// fakeSignatureService - заглушка для тестов исполнителя: сам сервис подписей
// тестируется отдельно.
type fakeSignatureService struct {
	signErr  error
	signed   []SignatureInput
	lastID   uint64
	meanings map[workflow.Scope][]string
}

func (s *fakeSignatureService) ListMeanings(scope workflow.Scope) []string {
	return s.meanings[scope]
}

func (s *fakeSignatureService) Sign(ctx context.Context, actorID uint64, payload dto.SignDTO) (*dto.SignatureDTO, error) {
	return nil, nil
}

func (s *fakeSignatureService) SignInTx(ctx context.Context, tx pgx.Tx, txID *uuid.UUID, actorID uint64, password string,
	scope workflow.Scope, entityType string, entityID uint64, meaning, comment string) (*entities.Signature, error) {
	if s.signErr != nil {
		return nil, s.signErr
	}
	s.lastID++
	s.signed = append(s.signed, SignatureInput{Password: password, Meaning: meaning, Comment: comment})
	return &entities.Signature{
		ID:             s.lastID,
		Scope:          string(scope),
		EntityType:     entityType,
		EntityID:       entityID,
		SignedByUserID: actorID,
		Meaning:        meaning,
	}, nil
}

func (s *fakeSignatureService) Verify(ctx context.Context, signatureID uint64) (*dto.SignatureDTO, error) {
	return &dto.SignatureDTO{ID: signatureID}, nil
}

func (s *fakeSignatureService) VerifyPassword(ctx context.Context, actorID uint64, password string) error {
	return nil
}

func (s *fakeSignatureService) BlockModification(ctx context.Context, actorID, signatureID uint64, method string, attemptedPayload []byte) error {
	return apperrors.ErrSignatureImmutable
}
