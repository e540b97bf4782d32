package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"restaurant-orders/internal/entities"
	"restaurant-orders/internal/events"
	"restaurant-orders/pkg/eventbus"
)

var orderActions = []string{events.OrderCreated, events.OrderUpdated, events.OrderDeleted}

func asOrderEvent(e eventbus.Event) (events.OrderChangedEvent, error) {
	ev, ok := e.(events.OrderChangedEvent)
	if !ok {
		return events.OrderChangedEvent{}, fmt.Errorf("unexpected event type %T", e)
	}
	return ev, nil
}

// AuditListener пишет каждое изменение заказа в лог.
type AuditListener struct {
	logger *zap.Logger
}

func NewAuditListener(logger *zap.Logger) *AuditListener {
	return &AuditListener{logger: logger}
}

func (l *AuditListener) Register(bus *eventbus.Bus) {
	for _, action := range orderActions {
		bus.Subscribe(action, l.Handle)
	}
}

func (l *AuditListener) Handle(ctx context.Context, e eventbus.Event) error {
	ev, err := asOrderEvent(e)
	if err != nil {
		return err
	}
	l.logger.Info("order changed",
		zap.String("action", ev.Action),
		zap.String("order_id", ev.OrderID),
		zap.String("actor_id", ev.ActorID),
	)
	return nil
}

// Publisher is satisfied by *mq.Client.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte) error
}

type kitchenMessage struct {
	Event      string          `json:"event"`
	OrderID    string          `json:"orderId"`
	Order      *entities.Order `json:"order,omitempty"`
	ActorID    string          `json:"actorId,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// KitchenListener forwards order changes to the broker so the kitchen display
// picks them up. Routing key: kitchen.<event name>.
type KitchenListener struct {
	publisher Publisher
	exchange  string
	now       func() time.Time
}

func NewKitchenListener(publisher Publisher, exchange string) *KitchenListener {
	return &KitchenListener{publisher: publisher, exchange: exchange, now: time.Now}
}

func (l *KitchenListener) Register(bus *eventbus.Bus) {
	for _, action := range orderActions {
		bus.Subscribe(action, l.Handle)
	}
}

func (l *KitchenListener) Handle(ctx context.Context, e eventbus.Event) error {
	ev, err := asOrderEvent(e)
	if err != nil {
		return err
	}
	body, err := json.Marshal(kitchenMessage{
		Event:      ev.Action,
		OrderID:    ev.OrderID,
		Order:      ev.Order,
		ActorID:    ev.ActorID,
		OccurredAt: l.now().UTC(),
	})
	if err != nil {
		return err
	}
	return l.publisher.Publish(ctx, l.exchange, "kitchen."+ev.Action, body)
}
