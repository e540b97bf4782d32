package seeders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"restaurant-orders/internal/entities"
	"restaurant-orders/internal/repositories"
)

// SeederUserID marks seeded orders in createdBy.
const SeederUserID = "seeder"

// SeedDemoOrders inserts the demo orders through the regular repository, so
// every insert opens and closes its own session like a request would.
func SeedDemoOrders(ctx context.Context, repo repositories.OrderRepositoryInterface, logger *zap.Logger) (int, error) {
	logger.Info("▶️  Запуск наполнения демонстрационных заказов...")

	now := time.Now().UTC().Truncate(time.Millisecond)
	inserted := 0
	for _, d := range demoOrdersData {
		order := &entities.Order{
			Items:         d.Items,
			Total:         orderTotal(d.Items),
			CustomerName:  d.CustomerName,
			CustomerTable: d.CustomerTable,
			Status:        d.Status,
			CreatedBy:     SeederUserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := repo.InsertOrder(ctx, order); err != nil {
			return inserted, err
		}
		inserted++
		logger.Debug("заказ добавлен", zap.String("order_id", order.ID.Hex()), zap.String("customer", order.CustomerName))
	}

	logger.Info("✅ Наполнение демонстрационных заказов завершено!", zap.Int("count", inserted))
	return inserted, nil
}

func orderTotal(items []entities.OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += float64(it.Quantity) * it.Price
	}
	return total
}
