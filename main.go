package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/blogapi/config"
	"github.com/cppla/blogapi/routes"
	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase()

	if len(cfg.SeedCategories) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		seeder := services.NewCategoryService(db, services.NewPolicy(cfg.AdminUsernames), utils.Logger)
		if err := seeder.EnsureSeeded(ctx, cfg.SeedCategories); err != nil {
			utils.Logger.Error("seeding categories failed", zap.Error(err))
		}
		cancel()
	}

	r := routes.SetupRouter(db, cfg)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
