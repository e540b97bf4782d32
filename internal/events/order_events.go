package events

import (
	"restaurant-orders/internal/entities"
)

const (
	OrderCreated = "order.created"
	OrderUpdated = "order.updated"
	OrderDeleted = "order.deleted"
)

// OrderChangedEvent is published after an order mutation succeeded. Order is
// nil for deletions.
type OrderChangedEvent struct {
	Action  string
	OrderID string
	Order   *entities.Order
	ActorID string
}

// Name - реализуем интерфейс eventbus.Event
func (e OrderChangedEvent) Name() string {
	return e.Action
}
