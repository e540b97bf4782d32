package seeders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"restaurant-orders/internal/repositories"
	"restaurant-orders/internal/repositories/memstore"
)

func TestSeedDemoOrders(t *testing.T) {
	store := memstore.New()
	repo := repositories.NewOrderRepository(store, repositories.OrdersCollection, time.Second, zap.NewNop())

	n, err := SeedDemoOrders(context.Background(), repo, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, len(demoOrdersData), n)
	assert.Equal(t, n, store.Len(repositories.OrdersCollection))
	assert.Equal(t, memstore.Stats{Connects: n, Closes: n}, store.Stats())

	orders, err := repo.FindOrders(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 27.97, orders[0].Total, 1e-9)
	assert.Equal(t, SeederUserID, orders[0].CreatedBy)
}

func TestSeedDemoOrdersStopsOnError(t *testing.T) {
	store := memstore.New()
	repo := repositories.NewOrderRepository(store, repositories.OrdersCollection, time.Second, zap.NewNop())
	store.FailNext(memstore.OpInsert, errors.New("write concern error"))

	n, err := SeedDemoOrders(context.Background(), repo, zap.NewNop())

	assert.EqualError(t, err, "write concern error")
	assert.Zero(t, n)
}
