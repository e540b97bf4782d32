package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"restaurant-orders/internal/entities"
)

const OrdersCollection = "orders"

type OrderRepositoryInterface interface {
	InsertOrder(ctx context.Context, order *entities.Order) error
	FindOrders(ctx context.Context) ([]entities.Order, error)
	FindOrderByID(ctx context.Context, id primitive.ObjectID) (*entities.Order, error)
	UpdateOrder(ctx context.Context, id primitive.ObjectID, fields bson.M) (*mongo.UpdateResult, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error)
}

// OrderRepository opens its own session for every call; nothing is shared
// between calls.
type OrderRepository struct {
	connector  Connector
	collection string
	opTimeout  time.Duration
	logger     *zap.Logger
}

func NewOrderRepository(connector Connector, collection string, opTimeout time.Duration, logger *zap.Logger) OrderRepositoryInterface {
	if collection == "" {
		collection = OrdersCollection
	}
	return &OrderRepository{
		connector:  connector,
		collection: collection,
		opTimeout:  opTimeout,
		logger:     logger,
	}
}

func (r *OrderRepository) withCollection(ctx context.Context, fn func(ctx context.Context, c Collection) error) error {
	ctx, cancel := withTimeout(ctx, r.opTimeout)
	defer cancel()
	return WithSession(ctx, r.connector, r.logger, func(s Session) error {
		return fn(ctx, s.Collection(r.collection))
	})
}

// InsertOrder assigns a new ObjectID when the order has none and stores it.
func (r *OrderRepository) InsertOrder(ctx context.Context, order *entities.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	return r.withCollection(ctx, func(ctx context.Context, c Collection) error {
		_, err := c.InsertOne(ctx, order)
		return err
	})
}

func (r *OrderRepository) FindOrders(ctx context.Context) ([]entities.Order, error) {
	orders := make([]entities.Order, 0)
	err := r.withCollection(ctx, func(ctx context.Context, c Collection) error {
		return c.FindAll(ctx, &orders)
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// FindOrderByID returns (nil, nil) when no document has the id.
func (r *OrderRepository) FindOrderByID(ctx context.Context, id primitive.ObjectID) (*entities.Order, error) {
	var order entities.Order
	err := r.withCollection(ctx, func(ctx context.Context, c Collection) error {
		return c.FindOne(ctx, bson.M{"_id": id}, &order)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) UpdateOrder(ctx context.Context, id primitive.ObjectID, fields bson.M) (*mongo.UpdateResult, error) {
	var res *mongo.UpdateResult
	err := r.withCollection(ctx, func(ctx context.Context, c Collection) error {
		var err error
		res, err = c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
		return err
	})
	return res, err
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	var res *mongo.DeleteResult
	err := r.withCollection(ctx, func(ctx context.Context, c Collection) error {
		var err error
		res, err = c.DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
	return res, err
}
