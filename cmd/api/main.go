package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ahmed2300/triptracker/internal/api/handlers"
	"github.com/Ahmed2300/triptracker/internal/api/routes"
	"github.com/Ahmed2300/triptracker/internal/config"
	"github.com/Ahmed2300/triptracker/internal/repository/postgres"
	"github.com/Ahmed2300/triptracker/internal/service/pricing"
	"github.com/Ahmed2300/triptracker/internal/service/tracking"
	"github.com/Ahmed2300/triptracker/internal/service/trips"
	"github.com/Ahmed2300/triptracker/pkg/cache"
	"github.com/Ahmed2300/triptracker/pkg/database"
	"github.com/Ahmed2300/triptracker/pkg/logger"
	"github.com/Ahmed2300/triptracker/pkg/monitoring"
	"github.com/Ahmed2300/triptracker/pkg/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting TripTracker ride service",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp = &monitoring.NewRelicApp{}
	}
	defer nrApp.Shutdown(10 * time.Second)

	redisClient, err := cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer cache.Close(redisClient)

	appLogger.Info("Connected to Redis")

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
		MaxIdle:  cfg.Database.MaxIdle,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer db.Close()

	appLogger.Info("Connected to PostgreSQL")

	if err := postgres.Migrate(context.Background(), db); err != nil {
		appLogger.Fatal("Failed to apply schema", logger.Err(err))
	}

	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run()

	rideRepo := postgres.NewRideRepository(db)
	calc := pricing.NewCalculator(pricing.Config{
		BaseFare:    cfg.Pricing.BaseFare,
		PerMileRate: cfg.Pricing.PerMileRate,
	})
	tracker := tracking.NewTracker(cfg.Trip.TrackingInterval, appLogger)

	tripService := trips.NewService(
		rideRepo,
		redisClient,
		calc,
		tracker,
		trips.NewHubNotifier(wsHub),
		nrApp,
		appLogger,
		trips.Config{
			ProximityRadiusMiles: cfg.Trip.ProximityRadiusMiles,
			GeohashPrecision:     cfg.Trip.GeohashPrecision,
			SimulatedSpeedMPH:    cfg.Trip.SimulatedSpeedMPH,
		},
	)
	defer tripService.Shutdown()

	h := handlers.NewHandlers(tripService, calc, wsHub, appLogger)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	if nrApp.IsEnabled() {
		routes.SetupRoutes(router, h, nrApp.Application)
	} else {
		routes.SetupRoutes(router, h, nil)
	}

	appLogger.Info("Routes configured")

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}
