package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"restaurant-orders/internal/authz"
	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/entities"
	"restaurant-orders/internal/events"
	"restaurant-orders/internal/repositories"
	apperrors "restaurant-orders/pkg/errors"
	"restaurant-orders/pkg/eventbus"
	"restaurant-orders/pkg/metrics"
	"restaurant-orders/pkg/utils"
)

const (
	msgOnlyWaiters   = "only waiters may create orders"
	msgOrderNotFound = "order not found"
)

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, order dto.CreateOrderDTO, user dto.UserClaims) (*entities.Order, error)
	GetOrders(ctx context.Context) ([]entities.Order, error)
	GetOrderByID(ctx context.Context, id string) (*entities.Order, error)
	UpdateOrder(ctx context.Context, id string, patch dto.UpdateOrderDTO) (*dto.UpdateResultDTO, error)
	DeleteOrder(ctx context.Context, id string) (*dto.DeleteResultDTO, error)
}

// Validator is satisfied by *validation.CustomValidator.
type Validator interface {
	Validate(i interface{}) error
}

// EventPublisher is satisfied by *eventbus.Bus.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// OrderService holds no state between calls: every operation is one
// repository call, and the repository opens and closes its own session.
// Errors are returned to the caller as they are, never logged here.
type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	validator Validator
	publisher EventPublisher
	metrics   *metrics.OrderMetrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(
	orderRepo repositories.OrderRepositoryInterface,
	validator Validator,
	publisher EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		validator: validator,
		publisher: publisher,
		metrics:   orderMetrics,
		logger:    logger,
		now:       time.Now,
	}
}

func isClientError(err error) bool {
	code := apperrors.StatusCode(err)
	return code >= 400 && code < 500
}

func (s *OrderService) observe(operation string, start time.Time, err error) {
	s.metrics.Observe(operation, start, err, isClientError)
}

func (s *OrderService) publish(ctx context.Context, event events.OrderChangedEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, event)
}

// timestamp is truncated to the millisecond precision BSON dates keep.
func (s *OrderService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// ParseOrderID converts the hex form of an ObjectID, answering 400 on garbage.
func ParseOrderID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewValidationError(fmt.Sprintf("invalid order id '%s'", id), nil)
	}
	return oid, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, order dto.CreateOrderDTO, user dto.UserClaims) (_ *entities.Order, err error) {
	defer func(start time.Time) { s.observe("create", start, err) }(time.Now())

	if !authz.Can(user.Role, authz.OrdersCreate) {
		return nil, apperrors.NewForbiddenError(msgOnlyWaiters)
	}
	if err := s.validator.Validate(order); err != nil {
		return nil, err
	}

	now := s.timestamp()
	doc := &entities.Order{
		Items:         toEntityItems(order.Items),
		Total:         *order.Total,
		CustomerName:  *order.CustomerName,
		CustomerTable: utils.SafeDeref(order.CustomerTable),
		Status:        entities.OrderStatusPending,
		CreatedBy:     user.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.Status != nil {
		doc.Status = entities.OrderStatus(*order.Status)
	}

	if err := s.orderRepo.InsertOrder(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Debug("order created", zap.String("order_id", doc.ID.Hex()), zap.String("actor_id", user.UserID))
	s.publish(ctx, events.OrderChangedEvent{
		Action:  events.OrderCreated,
		OrderID: doc.ID.Hex(),
		Order:   doc,
		ActorID: user.UserID,
	})
	return doc, nil
}

func (s *OrderService) GetOrders(ctx context.Context) (_ []entities.Order, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return s.orderRepo.FindOrders(ctx)
}

// GetOrderByID returns (nil, nil) when the order does not exist.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (_ *entities.Order, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())

	oid, err := ParseOrderID(id)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindOrderByID(ctx, oid)
}

// UpdateOrder merges the present patch properties into the stored order. A
// patch that matches no document is a 404.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, patch dto.UpdateOrderDTO) (_ *dto.UpdateResultDTO, err error) {
	defer func(start time.Time) { s.observe("update", start, err) }(time.Now())

	oid, err := ParseOrderID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}

	fields := patchFields(patch)
	fields["updatedAt"] = s.timestamp()

	res, err := s.orderRepo.UpdateOrder(ctx, oid, fields)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.NewNotFoundError(msgOrderNotFound)
	}

	s.publish(ctx, events.OrderChangedEvent{Action: events.OrderUpdated, OrderID: id, ActorID: utils.ActorID(ctx)})
	return &dto.UpdateResultDTO{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) (_ *dto.DeleteResultDTO, err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())

	oid, err := ParseOrderID(id)
	if err != nil {
		return nil, err
	}

	res, err := s.orderRepo.DeleteOrder(ctx, oid)
	if err != nil {
		return nil, err
	}

	if res.DeletedCount > 0 {
		s.publish(ctx, events.OrderChangedEvent{Action: events.OrderDeleted, OrderID: id, ActorID: utils.ActorID(ctx)})
	}
	return &dto.DeleteResultDTO{DeletedCount: res.DeletedCount}, nil
}

func toEntityItems(items []dto.OrderItemDTO) []entities.OrderItem {
	out := make([]entities.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, entities.OrderItem{Name: it.Name, Quantity: *it.Quantity, Price: *it.Price})
	}
	return out
}

// patchFields builds the $set document from the properties present in patch.
func patchFields(patch dto.UpdateOrderDTO) bson.M {
	fields := bson.M{}
	if patch.Items != nil {
		fields["items"] = toEntityItems(patch.Items)
	}
	if patch.Total != nil {
		fields["total"] = *patch.Total
	}
	if patch.CustomerName != nil {
		fields["customerName"] = *patch.CustomerName
	}
	if patch.CustomerTable != nil {
		fields["customerTable"] = *patch.CustomerTable
	}
	if patch.Status != nil {
		fields["status"] = entities.OrderStatus(*patch.Status)
	}
	return fields
}
