package services

import (
	"context"

	"gmp-system/internal/events"

	"go.uber.org/zap"
)

type NotificationServiceInterface interface {
	NotifyCaseCreated(ctx context.Context, event events.CaseCreatedEvent) error
	NotifyCaseTransitioned(ctx context.Context, event events.CaseTransitionedEvent) error
}

// NotificationService фиксирует факты для внешних каналов оповещения.
// Доставка (почта, мессенджеры) подключается отдельным транспортом; сервис
// отвечает только за формирование события после состоявшегося перехода.
type NotificationService struct {
	logger *zap.Logger
}

func NewNotificationService(logger *zap.Logger) NotificationServiceInterface {
	return &NotificationService{logger: logger}
}

func (s *NotificationService) NotifyCaseCreated(ctx context.Context, event events.CaseCreatedEvent) error {
	s.logger.Info("Оповещение: заведено дело",
		zap.String("caseNumber", event.CaseNumber),
		zap.String("caseType", event.CaseType),
		zap.Uint64("actorID", event.ActorID),
	)
	return nil
}

func (s *NotificationService) NotifyCaseTransitioned(ctx context.Context, event events.CaseTransitionedEvent) error {
	s.logger.Info("Оповещение: дело сменило статус",
		zap.String("caseNumber", event.CaseNumber),
		zap.String("transition", event.Transition),
		zap.String("oldStatus", event.OldStatus),
		zap.String("newStatus", event.NewStatus),
		zap.Uint64("actorID", event.ActorID),
	)
	return nil
}
