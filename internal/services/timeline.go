package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"gmp-system/internal/dto"
	"gmp-system/internal/repositories"
	apperrors "gmp-system/pkg/errors"
	"gmp-system/pkg/utils"

	"go.uber.org/zap"
)

type TimelineServiceInterface interface {
	GetCaseTimeline(ctx context.Context, caseID uint64) ([]dto.TimelineEventDTO, error)
}

// TimelineService собирает человекочитаемую историю дела из append-only
// строк таймлайна. Записи никогда не редактируются; сервис только
// форматирует их для выдачи.
type TimelineService struct {
	caseRepo      repositories.CaseRepositoryInterface
	timelineRepo  repositories.TimelineRepositoryInterface
	signatureRepo repositories.SignatureRepositoryInterface
	logger        *zap.Logger
}

func NewTimelineService(
	caseRepo repositories.CaseRepositoryInterface,
	timelineRepo repositories.TimelineRepositoryInterface,
	signatureRepo repositories.SignatureRepositoryInterface,
	logger *zap.Logger,
) TimelineServiceInterface {
	return &TimelineService{
		caseRepo:      caseRepo,
		timelineRepo:  timelineRepo,
		signatureRepo: signatureRepo,
		logger:        logger,
	}
}

// Подписи ключей payload для выдачи. Ключи вне карты выводятся как есть:
// история обязана показывать всё, что в неё записано.
var payloadLabels = map[string]string{
	"comment":           "Комментарий",
	"conclusion":        "Заключение",
	"final_conclusion":  "Итоговое заключение",
	"root_cause":        "Корневая причина",
	"corrective_action": "Корректирующее действие",
	"preventive_action": "Предупреждающее действие",
	"investigator_id":   "Назначен следователь",
	"step_number":       "Номер шага",
	"step_name":         "Шаг",
	"closure_type":      "Тип закрытия",
	"case_number":       "Номер дела",
	"title":             "Заголовок",
}

func (s *TimelineService) GetCaseTimeline(ctx context.Context, caseID uint64) ([]dto.TimelineEventDTO, error) {
	exists, err := s.caseRepo.Exists(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrNotFound
	}

	items, err := s.timelineRepo.FindByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	timeline := make([]dto.TimelineEventDTO, 0, len(items))
	for i := range items {
		item := &items[i]
		event := dto.TimelineEventDTO{
			ID:     item.ID,
			Action: item.Action,
			Actor: dto.ShortUserDTO{
				ID:  item.ActorID,
				Fio: utils.NullStringToString(item.ActorFio),
			},
			OldStatus:   strOrEmpty(item.OldStatus),
			NewStatus:   strOrEmpty(item.NewStatus),
			Lines:       s.renderLines(ctx, item),
			SignatureID: item.SignatureID,
			CreatedAt:   item.CreatedAt.Local().Format(timeFormat),
		}
		timeline = append(timeline, event)
	}
	return timeline, nil
}

func (s *TimelineService) renderLines(ctx context.Context, item *repositories.TimelineItem) []string {
	lines := make([]string, 0, 4)

	if item.Payload != nil && *item.Payload != "" {
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(*item.Payload), &payload); err != nil {
			s.logger.Warn("Нечитаемый payload в таймлайне",
				zap.Uint64("entryID", item.ID), zap.Error(err))
		} else {
			keys := make([]string, 0, len(payload))
			for k := range payload {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				label, ok := payloadLabels[k]
				if !ok {
					label = k
				}
				lines = append(lines, fmt.Sprintf("%s: %v", label, payload[k]))
			}
		}
	}

	if item.SignatureID != nil {
		sig, err := s.signatureRepo.FindByID(ctx, *item.SignatureID)
		if err != nil {
			s.logger.Warn("Подпись из таймлайна не найдена",
				zap.Uint64("signatureID", *item.SignatureID), zap.Error(err))
		} else {
			lines = append(lines, fmt.Sprintf("Подписано: %s (%s)",
				utils.NullStringToString(sig.SignerFio), sig.Meaning))
		}
	}
	return lines
}
