// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"restaurant-orders/internal/listeners"
	"restaurant-orders/internal/repositories"
	"restaurant-orders/internal/repositories/memstore"
	"restaurant-orders/internal/routes"
	"restaurant-orders/pkg/api"
	"restaurant-orders/pkg/config"
	apperrors "restaurant-orders/pkg/errors"
	"restaurant-orders/pkg/eventbus"
	applogger "restaurant-orders/pkg/logger"
	appmiddleware "restaurant-orders/pkg/middleware"
	"restaurant-orders/pkg/mq"
	"restaurant-orders/pkg/service"
)

const memoryURIPrefix = "memory://"

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.FilePath)
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true

	// 2. Middleware
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = api.ErrorResponse(c, httpErr)
			}
			return err
		},
	}))
	e.Use(appmiddleware.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
		ExposeHeaders: []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))

	// 3. Хранилище заказов
	var connector repositories.Connector
	if strings.HasPrefix(cfg.Mongo.URI, memoryURIPrefix) {
		logger.Warn("Используется хранилище в памяти, данные не сохраняются между запусками")
		connector = memstore.New()
	} else {
		connector = repositories.NewMongoConnector(cfg.Mongo)
	}

	// 4. Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	// 5. События
	bus := eventbus.New(logger)
	listeners.NewAuditListener(logger.Named("audit")).Register(bus)

	var mqClient *mq.Client
	if cfg.RabbitMQ.URL != "" {
		var err error
		mqClient, err = mq.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Fatal("не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		if err := mqClient.DeclareTopology(cfg.RabbitMQ.Exchange); err != nil {
			logger.Fatal("не удалось объявить топологию RabbitMQ", zap.Error(err))
		}
		listeners.NewKitchenListener(mqClient, cfg.RabbitMQ.Exchange).Register(bus)
		logger.Info("Кухня подключена к RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}
	defer mqClient.Close()

	// 6. Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 7. Роуты
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger)
	routes.InitRouter(e, routes.Dependencies{
		Connector: connector,
		Cache:     repositories.NewRedisCacheRepository(redisClient),
		Publisher: bus,
		Registry:  registry,
		JWT:       jwtSvc,
	}, &routes.Loggers{
		Main:  logger,
		Auth:  logger.Named("auth"),
		Order: logger.Named("orders"),
	}, cfg)

	// 8. Запуск и остановка
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	bus.Wait()
}
