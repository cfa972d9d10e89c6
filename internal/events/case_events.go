package events

const CaseTransitionedEventName = "case.transitioned"

// CaseTransitionedEvent публикуется ПОСЛЕ коммита транзакции перехода.
// Слушатели видят только состоявшиеся факты.
type CaseTransitionedEvent struct {
	CaseID     uint64
	CaseNumber string
	CaseType   string
	Transition string
	OldStatus  string
	NewStatus  string
	ActorID    uint64
}

func (e CaseTransitionedEvent) Name() string { return CaseTransitionedEventName }

const CaseCreatedEventName = "case.created"

type CaseCreatedEvent struct {
	CaseID     uint64
	CaseNumber string
	CaseType   string
	ActorID    uint64
}

func (e CaseCreatedEvent) Name() string { return CaseCreatedEventName }
