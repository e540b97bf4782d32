package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"restaurant-orders/internal/repositories"
	"restaurant-orders/pkg/config"
	applogger "restaurant-orders/pkg/logger"
	"restaurant-orders/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runOrders := flag.Bool("orders", false, "Добавить демонстрационные заказы")
	flag.Parse()

	if !*runOrders {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Пример использования:")
		log.Println("  go run ./seeders/cmd/seed -orders")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.FilePath)
	defer logger.Sync()

	logger.Info("📦 Используется MongoDB", zap.String("database", cfg.Mongo.Database), zap.String("collection", cfg.Mongo.Collection))
	repo := repositories.NewOrderRepository(repositories.NewMongoConnector(cfg.Mongo), cfg.Mongo.Collection, cfg.Mongo.OpTimeout, logger)

	if _, err := seeders.SeedDemoOrders(context.Background(), repo, logger); err != nil {
		logger.Fatal("❌ Ошибка наполнения заказов", zap.Error(err))
	}
	log.Println("======================================================")
}
