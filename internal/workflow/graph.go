package workflow

// Graph - декларативный граф состояний одного типа дела: начальный статус,
// множество терминальных статусов и карта "статус -> разрешённые преемники".
// Терминальные статусы поглощающие: у них пустое множество преемников,
// и никакой переход из них не легален.
type Graph struct {
	Initial     string
	Transitions map[string][]string
	Terminal    map[string]bool
}

var graphs = map[CaseType]Graph{
	CaseTypeOOS: {
		Initial: OOSOpen,
		Transitions: map[string][]string{
			OOSOpen:   {OOSPhase1},
			OOSPhase1: {OOSPhase1Complete, OOSClosedInvalidated},
			OOSPhase1Complete: {
				OOSPhase2, OOSCAPAProposed,
				OOSClosedConfirmed, OOSClosedInvalidated, OOSClosedInconclusive,
			},
			OOSPhase2: {OOSPhase2Complete},
			OOSPhase2Complete: {
				OOSCAPAProposed,
				OOSClosedConfirmed, OOSClosedInvalidated, OOSClosedInconclusive,
			},
			OOSCAPAProposed:       {OOSCAPAApproved},
			OOSCAPAApproved:       {OOSCAPAImplementing},
			OOSCAPAImplementing:   {OOSClosedConfirmed},
			OOSClosedConfirmed:    {},
			OOSClosedInvalidated:  {},
			OOSClosedInconclusive: {},
		},
		Terminal: map[string]bool{
			OOSClosedConfirmed:    true,
			OOSClosedInvalidated:  true,
			OOSClosedInconclusive: true,
		},
	},
	CaseTypeBatchRec: {
		Initial: BRDraft,
		Transitions: map[string][]string{
			BRDraft:         {BRInProgress},
			BRInProgress:    {BRPendingReview},
			BRPendingReview: {BRApproved, BRRejected},
			BRApproved:      {},
			BRRejected:      {},
			BRCancelled:     {},
		},
		Terminal: map[string]bool{
			BRApproved:  true,
			BRRejected:  true,
			BRCancelled: true,
		},
	},
	CaseTypeDeviation: {
		Initial: DevOpen,
		Transitions: map[string][]string{
			DevOpen:               {DevUnderInvestigation},
			DevUnderInvestigation: {DevCAPAProposed},
			DevCAPAProposed:       {DevCAPAApproved},
			DevCAPAApproved:       {DevImplementing},
			DevImplementing:       {DevClosed},
			DevClosed:             {},
		},
		Terminal: map[string]bool{
			DevClosed: true,
		},
	},
}

// GraphFor возвращает граф состояний для типа дела.
func GraphFor(caseType CaseType) (Graph, bool) {
	g, ok := graphs[caseType]
	return g, ok
}

// CanTransition - чистая функция над статическим графом. Переход легален,
// только если он явно объявлен; "срезание" промежуточных статусов невозможно.
func CanTransition(caseType CaseType, from, to string) bool {
	g, ok := graphs[caseType]
	if !ok {
		return false
	}
	for _, next := range g.Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SuccessorsOf возвращает множество легальных преемников статуса.
// Для терминальных и неизвестных статусов - пустой срез.
func SuccessorsOf(caseType CaseType, from string) []string {
	g, ok := graphs[caseType]
	if !ok {
		return nil
	}
	successors := make([]string, len(g.Transitions[from]))
	copy(successors, g.Transitions[from])
	return successors
}

// IsTerminal сообщает, является ли статус поглощающим для данного типа дела.
func IsTerminal(caseType CaseType, status string) bool {
	g, ok := graphs[caseType]
	if !ok {
		return false
	}
	return g.Terminal[status]
}

// InitialStatus возвращает начальный статус типа дела.
func InitialStatus(caseType CaseType) string {
	return graphs[caseType].Initial
}

// IsKnownStatus проверяет принадлежность статуса объявленному множеству
// состояний типа дела.
func IsKnownStatus(caseType CaseType, status string) bool {
	g, ok := graphs[caseType]
	if !ok {
		return false
	}
	_, declared := g.Transitions[status]
	return declared
}
