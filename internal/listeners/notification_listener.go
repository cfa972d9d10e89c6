package listeners

import (
	"context"
	"fmt"

	"gmp-system/internal/events"
	"gmp-system/internal/services"
	"gmp-system/pkg/eventbus"

	"go.uber.org/zap"
)

// NotificationListener переводит события шины в оповещения. Слушатель
// срабатывает после коммита транзакции, поэтому любая его ошибка влияет
// только на доставку, но не на само дело.
type NotificationListener struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotificationListener(
	notificationService services.NotificationServiceInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationService: notificationService,
		logger:              logger,
	}
}

// Register подписывает слушателя на события дел.
func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.CaseCreatedEventName, l.handleCaseCreated)
	bus.Subscribe(events.CaseTransitionedEventName, l.handleCaseTransitioned)
}

func (l *NotificationListener) handleCaseCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.CaseCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	return l.notificationService.NotifyCaseCreated(ctx, e)
}

func (l *NotificationListener) handleCaseTransitioned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.CaseTransitionedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	return l.notificationService.NotifyCaseTransitioned(ctx, e)
}
