// tokengen issues a bearer token for local testing of the orders API.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"restaurant-orders/pkg/config"
	applogger "restaurant-orders/pkg/logger"
	"restaurant-orders/pkg/service"
)

func main() {
	userID := flag.String("user", "1", "userId claim")
	role := flag.String("role", "waiter", "role claim (waiter, chef, admin, customer)")
	flag.Parse()

	cfg := config.New()
	logger := applogger.NewLogger("warn", "")
	defer logger.Sync()

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger)
	token, err := jwtSvc.GenerateToken(*userID, *role)
	if err != nil {
		logger.Error("не удалось выпустить токен", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(token)
}
