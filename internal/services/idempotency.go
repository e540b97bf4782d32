package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"restaurant-orders/internal/authz"
	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/entities"
	"restaurant-orders/internal/repositories"
	apperrors "restaurant-orders/pkg/errors"
)

const (
	idempotencyProcessing = "processing"
	msgKeyInFlight        = "a request with this Idempotency-Key is still being processed"
	msgKeyStale           = "Idempotency-Key was already used for an order that no longer exists"
)

// IdempotentOrderCreator makes order creation safe to retry: the first call
// with a key creates the order, later calls with the same key get the same
// order back.
type IdempotentOrderCreator struct {
	orders OrderServiceInterface
	cache  repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewIdempotentOrderCreator(orders OrderServiceInterface, cache repositories.CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) *IdempotentOrderCreator {
	return &IdempotentOrderCreator{orders: orders, cache: cache, ttl: ttl, logger: logger}
}

func idempotencyCacheKey(user dto.UserClaims, key string) string {
	return fmt.Sprintf("idempotency:orders:%s:%s", user.UserID, key)
}

// Create returns the order and whether it is a replay of an earlier request.
// An empty key creates without any bookkeeping.
func (c *IdempotentOrderCreator) Create(ctx context.Context, key string, order dto.CreateOrderDTO, user dto.UserClaims) (*entities.Order, bool, error) {
	if key == "" {
		created, err := c.orders.CreateOrder(ctx, order, user)
		return created, false, err
	}
	// Replays must not leak orders to actors that could not create them.
	if !authz.Can(user.Role, authz.OrdersCreate) {
		return nil, false, apperrors.NewForbiddenError(msgOnlyWaiters)
	}

	cacheKey := idempotencyCacheKey(user, key)
	reserved, err := c.cache.SetNX(ctx, cacheKey, idempotencyProcessing, c.ttl)
	if err != nil {
		return nil, false, err
	}
	if !reserved {
		existing, err := c.replay(ctx, cacheKey)
		return existing, existing != nil, err
	}

	created, err := c.orders.CreateOrder(ctx, order, user)
	if err != nil {
		if delErr := c.cache.Del(context.WithoutCancel(ctx), cacheKey); delErr != nil {
			c.logger.Warn("не удалось освободить ключ идемпотентности", zap.String("key", cacheKey), zap.Error(delErr))
		}
		return nil, false, err
	}

	// Без записанного результата ключ остался бы "processing" на весь TTL.
	if err := c.cache.Set(context.WithoutCancel(ctx), cacheKey, created.ID.Hex(), c.ttl); err != nil {
		c.logger.Warn("не удалось сохранить результат идемпотентного запроса", zap.String("key", cacheKey), zap.Error(err))
		if delErr := c.cache.Del(context.WithoutCancel(ctx), cacheKey); delErr != nil {
			c.logger.Warn("не удалось освободить ключ идемпотентности", zap.String("key", cacheKey), zap.Error(delErr))
		}
	}
	return created, false, nil
}

func (c *IdempotentOrderCreator) replay(ctx context.Context, cacheKey string) (*entities.Order, error) {
	value, err := c.cache.Get(ctx, cacheKey)
	if errors.Is(err, repositories.ErrCacheMiss) || value == idempotencyProcessing {
		return nil, apperrors.NewConflictError(msgKeyInFlight)
	}
	if err != nil {
		return nil, err
	}

	existing, err := c.orders.GetOrderByID(ctx, value)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.NewConflictError(msgKeyStale)
	}
	return existing, nil
}
