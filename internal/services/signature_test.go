package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gmp-system/internal/entities"
	"gmp-system/internal/workflow"
	"gmp-system/pkg/config"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type signatureFixture struct {
	sigRepo   *fakeSignatureRepo
	userRepo  *fakeUserRepo
	auditRepo *fakeAuditRepo
	cacheRepo *fakeCacheRepo
	svc       SignatureServiceInterface
}

func newSignatureFixture(t *testing.T) *signatureFixture {
	t.Helper()

	hashed, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)

	f := &signatureFixture{
		sigRepo:   &fakeSignatureRepo{},
		userRepo:  &fakeUserRepo{users: map[uint64]*entities.User{}},
		auditRepo: &fakeAuditRepo{},
		cacheRepo: newFakeCacheRepo(),
	}
	f.userRepo.users[1] = &entities.User{ID: 1, Fio: "Каримова С.А.", Login: "s.karimova", Password: hashed, IsActive: true}
	f.userRepo.users[2] = &entities.User{ID: 2, Fio: "Уволенный П.П.", Login: "fired", Password: hashed, IsActive: false}

	f.svc = NewSignatureService(
		&fakeTxManager{},
		f.sigRepo,
		f.userRepo,
		f.auditRepo,
		f.cacheRepo,
		workflow.DefaultMeanings(),
		config.SignatureAuthConfig{MaxAttempts: 5, LockoutDuration: 15 * time.Minute},
		zap.NewNop(),
	)
	return f
}

func (f *signatureFixture) sign(actorID uint64, password, meaning string) (*entities.Signature, error) {
	return f.svc.SignInTx(context.Background(), nil, nil, actorID, password,
		workflow.ScopeQCApproval, "OOS_CASE", 10, meaning, "")
}

func TestSignInTx_Success(t *testing.T) {
	f := newSignatureFixture(t)

	sig, err := f.sign(1, "correct-horse", workflow.MeaningCAPAApproved)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.ScopeQCApproval), sig.Scope)
	assert.Equal(t, uint64(1), sig.SignedByUserID)
	assert.Equal(t, workflow.MeaningCAPAApproved, sig.Meaning)

	require.Len(t, f.auditRepo.inTx, 1)
	assert.Equal(t, entities.AuditSignatureCreated, f.auditRepo.inTx[0].Action)
	assert.Equal(t, "E_SIGNATURE", f.auditRepo.inTx[0].EntityType)
}

func TestSignInTx_WrongPassword(t *testing.T) {
	f := newSignatureFixture(t)

	_, err := f.sign(1, "wrong", workflow.MeaningCAPAApproved)
	assert.ErrorIs(t, err, apperrors.ErrSignatureAuthFailed)
	assert.Empty(t, f.sigRepo.signatures)

	// След безопасности пишется вне транзакции подписания.
	require.Len(t, f.auditRepo.outside, 1)
	assert.Equal(t, entities.AuditSignatureAuthFailed, f.auditRepo.outside[0].Action)
	assert.Empty(t, f.auditRepo.inTx)
}

func TestSignInTx_InactiveUser(t *testing.T) {
	f := newSignatureFixture(t)

	_, err := f.sign(2, "correct-horse", workflow.MeaningCAPAApproved)
	assert.ErrorIs(t, err, apperrors.ErrSignatureAuthFailed)
	require.Len(t, f.auditRepo.outside, 1)
	assert.Equal(t, entities.AuditSignatureAuthFailed, f.auditRepo.outside[0].Action)
}

func TestSignInTx_UnknownMeaning(t *testing.T) {
	f := newSignatureFixture(t)

	_, err := f.sign(1, "correct-horse", "Мне просто нравится эта серия")
	assert.ErrorIs(t, err, apperrors.ErrUnknownMeaning)
	assert.Empty(t, f.sigRepo.signatures)
}

func TestSignInTx_MeaningScopedToOwnVocabulary(t *testing.T) {
	f := newSignatureFixture(t)

	// Формулировка релиза серии не входит в словарь области QC_APPROVAL.
	_, err := f.sign(1, "correct-horse", workflow.MeaningApprovedForRelease)
	assert.ErrorIs(t, err, apperrors.ErrUnknownMeaning)
}

func TestSignInTx_Duplicate(t *testing.T) {
	f := newSignatureFixture(t)

	_, err := f.sign(1, "correct-horse", workflow.MeaningCAPAApproved)
	require.NoError(t, err)

	_, err = f.sign(1, "correct-horse", workflow.MeaningCAPAApproved)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateSignature)
	assert.Len(t, f.sigRepo.signatures, 1)
}

func TestSignInTx_LockoutAfterMaxAttempts(t *testing.T) {
	f := newSignatureFixture(t)

	for i := 0; i < 5; i++ {
		_, err := f.sign(1, "wrong", workflow.MeaningCAPAApproved)
		assert.ErrorIs(t, err, apperrors.ErrSignatureAuthFailed)
	}

	// Шестая попытка упирается в блокировку ещё до проверки пароля.
	_, err := f.sign(1, "correct-horse", workflow.MeaningCAPAApproved)
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)

	_, hasLockout := f.cacheRepo.values[fmt.Sprintf("sig_lockout:%d", 1)]
	assert.True(t, hasLockout)
}

func TestSignInTx_SuccessResetsAttempts(t *testing.T) {
	f := newSignatureFixture(t)

	for i := 0; i < 3; i++ {
		_, _ = f.sign(1, "wrong", workflow.MeaningCAPAApproved)
	}
	_, err := f.sign(1, "correct-horse", workflow.MeaningCAPAApproved)
	require.NoError(t, err)

	assert.Zero(t, f.cacheRepo.counts[fmt.Sprintf("sig_auth_attempts:%d", 1)],
		"успешная аутентификация сбрасывает счётчик")
}

func TestVerifyPassword(t *testing.T) {
	f := newSignatureFixture(t)

	assert.NoError(t, f.svc.VerifyPassword(context.Background(), 1, "correct-horse"))
	assert.ErrorIs(t, f.svc.VerifyPassword(context.Background(), 1, "wrong"), apperrors.ErrSignatureAuthFailed)
	assert.ErrorIs(t, f.svc.VerifyPassword(context.Background(), 2, "correct-horse"), apperrors.ErrSignatureAuthFailed)
}

func TestBlockModification(t *testing.T) {
	f := newSignatureFixture(t)

	err := f.svc.BlockModification(context.Background(), 1, 42, "DELETE", []byte(`{"meaning":"changed"}`))
	assert.ErrorIs(t, err, apperrors.ErrSignatureImmutable)

	require.Len(t, f.auditRepo.outside, 1)
	entry := f.auditRepo.outside[0]
	assert.Equal(t, entities.AuditModificationBlocked, entry.Action)
	assert.Equal(t, uint64(42), entry.EntityID)
	require.NotNil(t, entry.NewValues)
	assert.Contains(t, *entry.NewValues, "DELETE")
}

func TestListMeanings(t *testing.T) {
	f := newSignatureFixture(t)

	meanings := f.svc.ListMeanings(workflow.ScopeBatchRelease)
	assert.Contains(t, meanings, workflow.MeaningApprovedForRelease)
	assert.Contains(t, meanings, workflow.MeaningRecordReviewed)

	// Возвращается копия, чужая мутация словарь не портит.
	if len(meanings) > 0 {
		meanings[0] = "испорчено"
		fresh := f.svc.ListMeanings(workflow.ScopeBatchRelease)
		assert.NotEqual(t, "испорчено", fresh[0])
	}
}
