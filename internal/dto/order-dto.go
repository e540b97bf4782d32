package dto

type OrderItemDTO struct {
	Name     string   `json:"name" validate:"required"`
	Quantity *int     `json:"quantity" validate:"required,gt=0"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
}

// CreateOrderDTO is the POST /orders body. Pointer fields tell a missing or
// null property apart from a zero value.
type CreateOrderDTO struct {
	Items         []OrderItemDTO `json:"items" validate:"required,min=1,dive"`
	Total         *float64       `json:"total" validate:"required,gte=0"`
	CustomerName  *string        `json:"customerName" validate:"required,min=1"`
	CustomerTable *string        `json:"customerTable,omitempty"`
	Status        *string        `json:"status,omitempty" validate:"omitempty,order_status"`
}

// UpdateOrderDTO is a partial patch: only the properties present in the
// request end up in the $set document.
type UpdateOrderDTO struct {
	Items         []OrderItemDTO `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Total         *float64       `json:"total,omitempty" validate:"omitempty,gte=0"`
	CustomerName  *string        `json:"customerName,omitempty" validate:"omitempty,min=1"`
	CustomerTable *string        `json:"customerTable,omitempty"`
	Status        *string        `json:"status,omitempty" validate:"omitempty,order_status"`
}

type UpdateResultDTO struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeleteResultDTO struct {
	DeletedCount int64 `json:"deletedCount"`
}
