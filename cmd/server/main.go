package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/stocksense/backend/internal/application/catalog"
	demandapp "github.com/stocksense/backend/internal/application/demand"
	forecastapp "github.com/stocksense/backend/internal/application/forecast"
	salesapp "github.com/stocksense/backend/internal/application/sales"
	"github.com/stocksense/backend/internal/infrastructure/cache"
	"github.com/stocksense/backend/internal/infrastructure/config"
	forecastinfra "github.com/stocksense/backend/internal/infrastructure/forecast"
	"github.com/stocksense/backend/internal/infrastructure/logger"
	"github.com/stocksense/backend/internal/infrastructure/ocr"
	"github.com/stocksense/backend/internal/infrastructure/persistence"
	"github.com/stocksense/backend/internal/interfaces/http/handler"
	"github.com/stocksense/backend/internal/interfaces/http/middleware"
	"github.com/stocksense/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting StockSense Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis is optional at startup: the tiered cache degrades to the
	// in-process layer when it is unreachable.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()
	{
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unreachable at startup, serving from local cache only", zap.Error(err))
		} else {
			log.Info("Redis connected successfully")
		}
		cancel()
	}

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	featureRepo := persistence.NewGormFeatureRepository(db.DB)
	predictionRepo := persistence.NewGormPredictionRepository(db.DB)

	// Caches: shared redis layer over the process-local copy
	viewCache := cache.NewTieredViewCache(
		cache.NewRedisViewCache(redisClient),
		cache.NewInMemoryViewCache(),
		cache.WithTieredLogger(log.Named("cache")),
	)

	// External clients
	modelClient := forecastinfra.NewModelClient(forecastinfra.ModelClientConfig{
		BaseURL: cfg.Forecast.ModelURL,
		Timeout: cfg.Forecast.Timeout,
	}, log.Named("model"))
	labelClient := ocr.NewLabelClient(ocr.LabelClientConfig{
		APIKey:        cfg.Label.APIKey,
		Model:         cfg.Label.Model,
		FallbackModel: cfg.Label.FallbackModel,
		Timeout:       cfg.Label.Timeout,
	}, log.Named("ocr"))

	// Application services
	demandService := demandapp.NewService(itemRepo, saleRepo, featureRepo, log.Named("demand"))
	forecastService := forecastapp.NewService(
		itemRepo, featureRepo, predictionRepo, modelClient, viewCache,
		forecastapp.Config{CacheTTL: cfg.Cache.TTL, BatchSize: cfg.Forecast.BatchSize},
		log.Named("forecast"),
	)
	salesService := salesapp.NewService(itemRepo, saleRepo, viewCache, demandService, log.Named("sales"))
	intakeService := catalogapp.NewIntakeService(itemRepo, viewCache, log.Named("intake"))
	itemService := catalogapp.NewItemService(itemRepo)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	middleware.SetupValidator()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	// Routes
	handler.NewHealthHandler(db).Register(engine)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewForecastHandler(forecastService)).
		Register(handler.NewSalesHandler(salesService)).
		Register(handler.NewDemandHandler(demandService)).
		Register(handler.NewInventoryHandler(intakeService, itemService)).
		Register(handler.NewLabelHandler(labelClient))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
