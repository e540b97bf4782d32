package routes

import (
	"github.com/labstack/echo/v4"

	"restaurant-orders/internal/authz"
	"restaurant-orders/internal/controllers"
	"restaurant-orders/pkg/middleware"
)

// Creation is gated by the service, the rest by permission middleware.
func runOrderRouter(secureGroup *echo.Group, orderCtrl *controllers.OrderController, authMW *middleware.AuthMiddleware) {
	{
		secureGroup.GET("/orders", orderCtrl.GetOrders, authMW.RequirePermission(authz.OrdersView))
		secureGroup.POST("/orders", orderCtrl.CreateOrder)
		secureGroup.GET("/orders/export", orderCtrl.ExportOrders, authMW.RequirePermission(authz.OrdersExport))
		secureGroup.GET("/orders/:id", orderCtrl.FindOrder, authMW.RequirePermission(authz.OrdersView))
		secureGroup.PUT("/orders/:id", orderCtrl.UpdateOrder, authMW.RequirePermission(authz.OrdersUpdate))
		secureGroup.DELETE("/orders/:id", orderCtrl.DeleteOrder, authMW.RequirePermission(authz.OrdersDelete))
	}
}
