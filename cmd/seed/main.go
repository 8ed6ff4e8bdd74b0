package main

import (
	"context"
	"flag"
	"time"

	"github.com/tsystem/portal/internal/config"
	"github.com/tsystem/portal/internal/database"
	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/modules/system/seed"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	email := flag.String("email", seed.DemoEmail, "Account email")
	password := flag.String("password", seed.DemoPassword, "Account password")
	role := flag.String("role", string(models.RoleManager), "Account role")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	r, err := models.ParseRole(*role)
	if err != nil {
		logger.Fatal("invalid role", zap.String("role", *role), zap.Error(err))
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	account := seed.DemoAccount().WithEmail(*email)
	account.Password = *password
	account.Role = r

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := seed.Upsert(ctx, db, account, logger); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}
