package workflow

// Имена guard-предикатов. Сами предикаты регистрируются в движке при сборке
// приложения: им нужны репозитории, а объявление переходов должно оставаться
// чистыми данными.
const (
	GuardStepsTerminal     = "steps_terminal"
	GuardReviewSigned      = "review_signed"
	GuardFromPhaseComplete = "from_phase_complete"
	GuardImplementing      = "deviation_implementing"
)

// TransitionDef - декларативное описание одного перехода: куда он ведёт,
// какая область подписи его гейтит (пустая - подпись не нужна) и какие
// guard-предикаты должны выполниться. Адаптеры типов дел - это только выбор
// имени перехода по HTTP-глаголу, никакой собственной логики.
type TransitionDef struct {
	Name           string
	To             string
	SignatureScope Scope
	Guards         []string
	TimestampField string
}

var transitionDefs = map[CaseType]map[string]TransitionDef{
	CaseTypeOOS: {
		"start-phase1": {
			Name: "start-phase1", To: OOSPhase1,
			TimestampField: "phase1_started_at",
		},
		"complete-phase1": {
			Name: "complete-phase1", To: OOSPhase1Complete,
			TimestampField: "phase1_completed_at",
		},
		"invalidate-phase1": {
			Name: "invalidate-phase1", To: OOSClosedInvalidated,
			TimestampField: "closed_at",
		},
		"start-phase2": {
			Name: "start-phase2", To: OOSPhase2,
			TimestampField: "phase2_started_at",
		},
		"complete-phase2": {
			Name: "complete-phase2", To: OOSPhase2Complete,
			TimestampField: "phase2_completed_at",
		},
		"propose-capa": {
			Name: "propose-capa", To: OOSCAPAProposed,
			Guards: []string{GuardFromPhaseComplete},
		},
		"approve-capa": {
			Name: "approve-capa", To: OOSCAPAApproved,
			SignatureScope: ScopeQCApproval,
			TimestampField: "capa_approved_at",
		},
		"start-implementation": {
			Name: "start-implementation", To: OOSCAPAImplementing,
		},
		"close-confirmed": {
			Name: "close-confirmed", To: OOSClosedConfirmed,
			SignatureScope: ScopeQCApproval,
			TimestampField: "closed_at",
		},
		"close-invalidated": {
			Name: "close-invalidated", To: OOSClosedInvalidated,
			SignatureScope: ScopeQCApproval,
			TimestampField: "closed_at",
		},
		"close-inconclusive": {
			Name: "close-inconclusive", To: OOSClosedInconclusive,
			SignatureScope: ScopeQCApproval,
			TimestampField: "closed_at",
		},
	},
	CaseTypeBatchRec: {
		"start": {
			Name: "start", To: BRInProgress,
			TimestampField: "started_at",
		},
		"submit-review": {
			Name: "submit-review", To: BRPendingReview,
			Guards: []string{GuardStepsTerminal},
		},
		"approve": {
			Name: "approve", To: BRApproved,
			SignatureScope: ScopeBatchRelease,
			Guards:         []string{GuardReviewSigned},
			TimestampField: "approved_at",
		},
		"reject": {
			Name: "reject", To: BRRejected,
			SignatureScope: ScopeBatchRelease,
			TimestampField: "rejected_at",
		},
	},
	CaseTypeDeviation: {
		"start-investigation": {
			Name: "start-investigation", To: DevUnderInvestigation,
			TimestampField: "investigation_started_at",
		},
		"propose-capa": {
			Name: "propose-capa", To: DevCAPAProposed,
		},
		"approve": {
			Name: "approve", To: DevCAPAApproved,
			SignatureScope: ScopeDeviationApproval,
			TimestampField: "capa_approved_at",
		},
		"start-implementation": {
			Name: "start-implementation", To: DevImplementing,
		},
		"close": {
			Name: "close", To: DevClosed,
			Guards:         []string{GuardImplementing},
			TimestampField: "closed_at",
		},
	},
}

// TransitionFor возвращает объявление перехода по типу дела и имени.
func TransitionFor(caseType CaseType, name string) (TransitionDef, bool) {
	defs, ok := transitionDefs[caseType]
	if !ok {
		return TransitionDef{}, false
	}
	def, ok := defs[name]
	return def, ok
}

// TransitionsFor возвращает все объявленные переходы типа дела.
func TransitionsFor(caseType CaseType) map[string]TransitionDef {
	return transitionDefs[caseType]
}
