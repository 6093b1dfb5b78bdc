package main

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gorilla/handlers"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"slotswapper/internal/api"
	"slotswapper/internal/app"
	"slotswapper/internal/auth"
	"slotswapper/internal/config"
	"slotswapper/internal/repository"
	"slotswapper/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open DB", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to connect to DB", zap.Error(err))
	}

	migrator, err := app.NewMigrator(db, "migrations")
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(context.Background()); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	store := repository.NewSQLStore(db)
	sender := service.NewSenderService(logger)

	authSvc := service.NewAuthService(store, cfg.JWTSecret)
	slotSvc := service.NewSlotService(store, logger)
	swapSvc := service.NewSwapService(store, sender, logger)
	jobSvc := service.NewJobService(store, logger)

	mw := auth.NewMiddleware(authSvc)
	router := api.NewRouter(
		api.NewAuthHandler(authSvc),
		api.NewSlotHandler(slotSvc),
		api.NewSwapHandler(swapSvc),
		mw,
	)

	c := cron.New()
	c.AddFunc("@every 15m", func() {
		if err := jobSvc.RejectStaleRequests(context.Background()); err != nil {
			logger.Error("Janitor run failed", zap.Error(err))
		}
	})
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
	)

	logger.Info("Server running", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, cors(router)); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
