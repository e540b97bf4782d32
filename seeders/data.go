package seeders

import "restaurant-orders/internal/entities"

// demoOrdersData - меню и столы для демонстрационных заказов.
var demoOrdersData = []struct {
	CustomerName  string
	CustomerTable string
	Status        entities.OrderStatus
	Items         []entities.OrderItem
}{
	{
		CustomerName:  "Pepito Pérez",
		CustomerTable: "5",
		Status:        entities.OrderStatusPending,
		Items: []entities.OrderItem{
			{Name: "Pizza", Quantity: 2, Price: 10.99},
			{Name: "Burger", Quantity: 1, Price: 5.99},
		},
	},
	{
		CustomerName:  "Ana",
		CustomerTable: "2",
		Status:        entities.OrderStatusPreparing,
		Items: []entities.OrderItem{
			{Name: "Sandwich de jamón y queso", Quantity: 1, Price: 10},
			{Name: "Café americano", Quantity: 2, Price: 5},
		},
	},
	{
		CustomerName: "Luis",
		Status:       entities.OrderStatusReady,
		Items: []entities.OrderItem{
			{Name: "Hamburguesa doble", Quantity: 1, Price: 15},
			{Name: "Papas fritas", Quantity: 1, Price: 5},
			{Name: "Agua 750ml", Quantity: 2, Price: 7},
		},
	},
	{
		CustomerName:  "María",
		CustomerTable: "8",
		Status:        entities.OrderStatusDelivered,
		Items: []entities.OrderItem{
			{Name: "Jugo de frutas natural", Quantity: 3, Price: 7},
		},
	},
}
