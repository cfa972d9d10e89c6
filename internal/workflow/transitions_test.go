package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionFor(t *testing.T) {
	def, ok := TransitionFor(CaseTypeOOS, "approve-capa")
	require.True(t, ok)
	assert.Equal(t, OOSCAPAApproved, def.To)
	assert.Equal(t, ScopeQCApproval, def.SignatureScope)
	assert.Equal(t, "capa_approved_at", def.TimestampField)

	_, ok = TransitionFor(CaseTypeOOS, "no-such-transition")
	assert.False(t, ok)

	_, ok = TransitionFor(CaseType("UNKNOWN"), "approve-capa")
	assert.False(t, ok)
}

// Каждая декларация перехода обязана вести в объявленный статус своего графа,
// и этот статус должен быть достижим хотя бы из одного состояния.
func TestTransitionDefsConsistentWithGraphs(t *testing.T) {
	for caseType, defs := range transitionDefs {
		g, ok := GraphFor(caseType)
		require.Truef(t, ok, "нет графа для %s", caseType)

		for name, def := range defs {
			assert.Equalf(t, name, def.Name, "имя в ключе и в декларации расходятся: %s", name)
			assert.Truef(t, IsKnownStatus(caseType, def.To),
				"переход %s/%s ведёт в необъявленный статус %s", caseType, name, def.To)

			reachable := false
			for _, successors := range g.Transitions {
				for _, to := range successors {
					if to == def.To {
						reachable = true
					}
				}
			}
			assert.Truef(t, reachable, "целевой статус %s перехода %s/%s недостижим", def.To, caseType, name)
		}
	}
}

func TestSignatureGatedTransitions(t *testing.T) {
	gated := map[CaseType][]string{
		CaseTypeOOS:       {"approve-capa", "close-confirmed", "close-invalidated", "close-inconclusive"},
		CaseTypeBatchRec:  {"approve", "reject"},
		CaseTypeDeviation: {"approve"},
	}
	for caseType, names := range gated {
		for _, name := range names {
			def, ok := TransitionFor(caseType, name)
			require.True(t, ok)
			assert.NotEmptyf(t, def.SignatureScope, "переход %s/%s должен требовать подпись", caseType, name)
		}
	}

	// и наоборот: рядовые переходы не гейтятся
	for _, name := range []string{"start-phase1", "complete-phase1", "start-phase2", "propose-capa", "start-implementation"} {
		def, ok := TransitionFor(CaseTypeOOS, name)
		require.True(t, ok)
		assert.Emptyf(t, def.SignatureScope, "переход OOS/%s не должен требовать подпись", name)
	}
}

func TestGuardedTransitions(t *testing.T) {
	def, _ := TransitionFor(CaseTypeBatchRec, "submit-review")
	assert.Equal(t, []string{GuardStepsTerminal}, def.Guards)

	def, _ = TransitionFor(CaseTypeBatchRec, "approve")
	assert.Equal(t, []string{GuardReviewSigned}, def.Guards)

	def, _ = TransitionFor(CaseTypeOOS, "propose-capa")
	assert.Equal(t, []string{GuardFromPhaseComplete}, def.Guards)

	def, _ = TransitionFor(CaseTypeDeviation, "close")
	assert.Equal(t, []string{GuardImplementing}, def.Guards)
}

func TestDefaultMeanings(t *testing.T) {
	meanings := DefaultMeanings()
	assert.Contains(t, meanings[ScopeQCApproval], MeaningCAPAApproved)
	assert.Contains(t, meanings[ScopeBatchRelease], MeaningRecordReviewed)
	assert.Contains(t, meanings[ScopeBatchRelease], MeaningApprovedForRelease)
	assert.Contains(t, meanings[ScopeDeviationApproval], MeaningDeviationClosure)
	assert.NotContains(t, meanings[ScopeQCApproval], MeaningRecordReviewed)
}
