package validation

import (
	"github.com/go-playground/validator/v10"

	"restaurant-orders/internal/entities"
)

var orderStatuses = []entities.OrderStatus{
	entities.OrderStatusPending,
	entities.OrderStatusPreparing,
	entities.OrderStatusReady,
	entities.OrderStatusDelivered,
	entities.OrderStatusCanceled,
}

// registerRules регистрирует собственные теги валидации
func registerRules(v *validator.Validate) error {
	return v.RegisterValidation("order_status", isOrderStatus)
}

func isOrderStatus(fl validator.FieldLevel) bool {
	return entities.OrderStatus(fl.Field().String()).Valid()
}

func orderStatusNames() []string {
	names := make([]string, 0, len(orderStatuses))
	for _, s := range orderStatuses {
		names = append(names, string(s))
	}
	return names
}
