package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"restaurant-orders/internal/controllers"
	"restaurant-orders/internal/repositories"
	"restaurant-orders/internal/services"
	"restaurant-orders/pkg/api"
	"restaurant-orders/pkg/config"
	"restaurant-orders/pkg/metrics"
	"restaurant-orders/pkg/middleware"
	"restaurant-orders/pkg/service"
	"restaurant-orders/pkg/validation"
)

type Loggers struct {
	Main  *zap.Logger
	Auth  *zap.Logger
	Order *zap.Logger
}

// Dependencies are the long-lived clients built in main.
type Dependencies struct {
	Connector repositories.Connector
	Cache     repositories.CacheRepositoryInterface
	Publisher services.EventPublisher
	Registry  *prometheus.Registry
	JWT       service.JWTService
}

func InitRouter(e *echo.Echo, deps Dependencies, loggers *Loggers, cfg *config.Config) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	apiGroup := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.JWT, loggers.Auth)
	orderMetrics := metrics.NewOrderMetrics(deps.Registry)

	// --- 1. РЕПОЗИТОРИИ ---
	orderRepo := repositories.NewOrderRepository(deps.Connector, cfg.Mongo.Collection, cfg.Mongo.OpTimeout, loggers.Order)

	// --- 2. СЕРВИСЫ ---
	orderService := services.NewOrderService(orderRepo, validation.New(), deps.Publisher, orderMetrics, loggers.Order)
	creator := services.NewIdempotentOrderCreator(orderService, deps.Cache, cfg.Idempotency.TTL, loggers.Order)

	// --- 3. КОНТРОЛЛЕРЫ ---
	orderController := controllers.NewOrderController(orderService, creator, loggers.Order)

	// --- 4. РОУТЕРЫ ---
	e.GET("/health", func(c echo.Context) error {
		return api.SuccessOne(c, http.StatusOK, "ok", map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	secureGroup := apiGroup.Group("", authMW.Auth)
	runOrderRouter(secureGroup, orderController, authMW)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
}
