package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/repositories"
	"restaurant-orders/internal/repositories/memstore"
	apperrors "restaurant-orders/pkg/errors"
	"restaurant-orders/pkg/validation"
)

type idempotencyFixture struct {
	redis   *miniredis.Miniredis
	store   *memstore.Store
	creator *IdempotentOrderCreator
	waiter  dto.UserClaims
}

func newIdempotencyFixture(t *testing.T) *idempotencyFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memstore.New()
	repo := repositories.NewOrderRepository(store, repositories.OrdersCollection, time.Second, zap.NewNop())
	orders := NewOrderService(repo, validation.New(), nil, nil, zap.NewNop())
	cache := repositories.NewRedisCacheRepository(client)

	return &idempotencyFixture{
		redis:   mr,
		store:   store,
		creator: NewIdempotentOrderCreator(orders, cache, time.Hour, zap.NewNop()),
		waiter:  dto.UserClaims{UserID: "42", Role: "waiter"},
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httpErr *apperrors.HttpError
	require.True(t, errors.As(err, &httpErr), "expected HttpError, got %v", err)
	return httpErr.Code
}

func TestIdempotentCreateReplaysSameOrder(t *testing.T) {
	f := newIdempotencyFixture(t)
	ctx := context.Background()

	first, replay, err := f.creator.Create(ctx, "key-1", pizzaOrder(), f.waiter)
	require.NoError(t, err)
	assert.False(t, replay)

	second, replay, err := f.creator.Create(ctx, "key-1", pizzaOrder(), f.waiter)
	require.NoError(t, err)
	assert.True(t, replay)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.Len(repositories.OrdersCollection))

	stored, err := f.redis.Get("idempotency:orders:42:key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID.Hex(), stored)
}

func TestIdempotentCreateWithoutKey(t *testing.T) {
	f := newIdempotencyFixture(t)
	ctx := context.Background()

	_, _, err := f.creator.Create(ctx, "", pizzaOrder(), f.waiter)
	require.NoError(t, err)
	_, replay, err := f.creator.Create(ctx, "", pizzaOrder(), f.waiter)
	require.NoError(t, err)

	assert.False(t, replay)
	assert.Equal(t, 2, f.store.Len(repositories.OrdersCollection))
	assert.Empty(t, f.redis.Keys())
}

func TestIdempotentCreateKeysAreScopedPerUser(t *testing.T) {
	f := newIdempotencyFixture(t)
	ctx := context.Background()
	other := dto.UserClaims{UserID: "43", Role: "waiter"}

	a, _, err := f.creator.Create(ctx, "shared", pizzaOrder(), f.waiter)
	require.NoError(t, err)
	b, replay, err := f.creator.Create(ctx, "shared", pizzaOrder(), other)
	require.NoError(t, err)

	assert.False(t, replay)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestIdempotentCreateInFlightConflicts(t *testing.T) {
	f := newIdempotencyFixture(t)
	require.NoError(t, f.redis.Set("idempotency:orders:42:busy", idempotencyProcessing))

	_, _, err := f.creator.Create(context.Background(), "busy", pizzaOrder(), f.waiter)

	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Zero(t, f.store.Len(repositories.OrdersCollection))
}

func TestIdempotentCreateStaleKeyConflicts(t *testing.T) {
	f := newIdempotencyFixture(t)
	require.NoError(t, f.redis.Set("idempotency:orders:42:gone", "313233343536373839303132"))

	_, _, err := f.creator.Create(context.Background(), "gone", pizzaOrder(), f.waiter)

	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestIdempotentCreateReleasesKeyOnFailure(t *testing.T) {
	f := newIdempotencyFixture(t)
	ctx := context.Background()
	invalid := pizzaOrder()
	invalid.CustomerName = nil

	_, _, err := f.creator.Create(ctx, "retry", invalid, f.waiter)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.False(t, f.redis.Exists("idempotency:orders:42:retry"))

	created, replay, err := f.creator.Create(ctx, "retry", pizzaOrder(), f.waiter)
	require.NoError(t, err)
	assert.False(t, replay)
	assert.NotNil(t, created)
}

func TestIdempotentCreateForbiddenBeforeReservation(t *testing.T) {
	f := newIdempotencyFixture(t)

	_, _, err := f.creator.Create(context.Background(), "k", pizzaOrder(), dto.UserClaims{UserID: "9", Role: "customer"})

	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.Empty(t, f.redis.Keys())
}

// unwritableCache accepts reservations but fails to record results.
type unwritableCache struct {
	repositories.CacheRepositoryInterface
}

func (unwritableCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("READONLY You can't write against a read only replica")
}

func TestIdempotentCreateReleasesKeyWhenResultNotRecorded(t *testing.T) {
	f := newIdempotencyFixture(t)
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: f.redis.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := unwritableCache{repositories.NewRedisCacheRepository(client)}
	repo := repositories.NewOrderRepository(f.store, repositories.OrdersCollection, time.Second, zap.NewNop())
	creator := NewIdempotentOrderCreator(NewOrderService(repo, validation.New(), nil, nil, zap.NewNop()), cache, time.Hour, zap.NewNop())

	first, replay, err := creator.Create(ctx, "flaky", pizzaOrder(), f.waiter)
	require.NoError(t, err)
	assert.False(t, replay)
	require.NotNil(t, first)
	assert.False(t, f.redis.Exists("idempotency:orders:42:flaky"))

	second, replay, err := creator.Create(ctx, "flaky", pizzaOrder(), f.waiter)
	require.NoError(t, err, "a retry must not be stuck behind a processing marker")
	assert.False(t, replay)
	assert.NotEqual(t, first.ID, second.ID)
}
