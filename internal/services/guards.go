package services

import (
	"context"
	"fmt"

	"gmp-system/internal/entities"
	"gmp-system/internal/repositories"
	"gmp-system/internal/workflow"
)

// GuardFunc - предикат предусловия перехода. Выполняется внутри транзакции
// перехода (q - её соединение), чтобы видеть строки, записанные до проверки,
// и не гоняться с конкурентными изменениями.
type GuardFunc func(ctx context.Context, q repositories.Querier, c *entities.Case) (ok bool, detail string, err error)

// NewGuardRegistry собирает guard-предикаты по именам из деклараций
// переходов. Неизвестное имя в декларации - ошибка программиста, она
// всплывёт при первом же выполнении перехода.
func NewGuardRegistry(
	batchRepo repositories.BatchRepositoryInterface,
	signatureRepo repositories.SignatureRepositoryInterface,
) map[string]GuardFunc {
	return map[string]GuardFunc{
		workflow.GuardStepsTerminal: func(ctx context.Context, q repositories.Querier, c *entities.Case) (bool, string, error) {
			counts, err := batchRepo.StepStatusCounts(ctx, q, c.ID)
			if err != nil {
				return false, "", err
			}
			open := counts[workflow.StepPending] + counts[workflow.StepInProgress]
			if open > 0 {
				return false, fmt.Sprintf("шагов не в терминальном статусе: %d", open), nil
			}
			return true, "", nil
		},

		workflow.GuardReviewSigned: func(ctx context.Context, q repositories.Querier, c *entities.Case) (bool, string, error) {
			signed, err := signatureRepo.FindByEntityAndMeaning(ctx, q,
				string(workflow.ScopeBatchRelease), c.CaseType, c.ID,
				workflow.MeaningRecordReviewed)
			if err != nil {
				return false, "", err
			}
			if !signed {
				return false, "досье не прошло подписанную проверку (review)", nil
			}
			return true, "", nil
		},

		workflow.GuardFromPhaseComplete: func(ctx context.Context, q repositories.Querier, c *entities.Case) (bool, string, error) {
			if c.Status != workflow.OOSPhase1Complete && c.Status != workflow.OOSPhase2Complete {
				return false, fmt.Sprintf("CAPA предлагается только после завершения фазы, текущий статус %s", c.Status), nil
			}
			return true, "", nil
		},

		workflow.GuardImplementing: func(ctx context.Context, q repositories.Querier, c *entities.Case) (bool, string, error) {
			if c.Status != workflow.DevImplementing {
				return false, fmt.Sprintf("закрытие возможно только из IMPLEMENTING, текущий статус %s", c.Status), nil
			}
			return true, "", nil
		},
	}
}
