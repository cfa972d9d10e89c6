package workflow

// CaseType - дискриминатор регулируемого дела.
type CaseType string

const (
	CaseTypeOOS       CaseType = "OOS_CASE"
	CaseTypeBatchRec  CaseType = "BATCH_RECORD"
	CaseTypeDeviation CaseType = "BATCH_DEVIATION"
)

// Scope - область действия электронной подписи. Каждая область несёт свой
// утверждённый словарь формулировок (meanings).
type Scope string

const (
	ScopeQCApproval        Scope = "QC_APPROVAL"
	ScopeBatchRelease      Scope = "BATCH_RELEASE"
	ScopeDeviationApproval Scope = "DEVIATION_APPROVAL"
)

// Статусы OOS-расследования.
const (
	OOSOpen               = "OPEN"
	OOSPhase1             = "PHASE_1_LAB_INVESTIGATION"
	OOSPhase1Complete     = "PHASE_1_COMPLETE"
	OOSPhase2             = "PHASE_2_FULL_INVESTIGATION"
	OOSPhase2Complete     = "PHASE_2_COMPLETE"
	OOSCAPAProposed       = "CAPA_PROPOSED"
	OOSCAPAApproved       = "CAPA_APPROVED"
	OOSCAPAImplementing   = "CAPA_IMPLEMENTING"
	OOSClosedConfirmed    = "CLOSED_CONFIRMED"
	OOSClosedInvalidated  = "CLOSED_INVALIDATED"
	OOSClosedInconclusive = "CLOSED_INCONCLUSIVE"
)

// Статусы электронного досье серии (eBR).
const (
	BRDraft         = "DRAFT"
	BRInProgress    = "IN_PROGRESS"
	BRPendingReview = "PENDING_REVIEW"
	BRApproved      = "APPROVED"
	BRRejected      = "REJECTED"
	BRCancelled     = "CANCELLED"
)

// Статусы отклонения серии.
const (
	DevOpen               = "OPEN"
	DevUnderInvestigation = "UNDER_INVESTIGATION"
	DevCAPAProposed       = "CAPA_PROPOSED"
	DevCAPAApproved       = "CAPA_APPROVED"
	DevImplementing       = "IMPLEMENTING"
	DevClosed             = "CLOSED"
)

// Статусы шагов досье серии (субъекты guard-проверки steps_terminal).
const (
	StepPending    = "PENDING"
	StepInProgress = "IN_PROGRESS"
	StepCompleted  = "COMPLETED"
	StepSkipped    = "SKIPPED"
)
