package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"hospital-server/internal/config"
	"hospital-server/internal/configstore"
	"hospital-server/internal/handler"
	"hospital-server/internal/messaging"
	"hospital-server/internal/realtime"
	"hospital-server/internal/service"
	"hospital-server/shared/database"
	"hospital-server/shared/interfaces"
	sharedLogger "hospital-server/shared/logger"
	sharedMiddleware "hospital-server/shared/middleware"
	"hospital-server/shared/models"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env", os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Development: cfg.IsDevelopment(),
		Service:     serviceName,
		Fields:      map[string]any{"env": cfg.Env},
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	zap.ReplaceGlobals(logger)
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel), zap.String("env", cfg.Env))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- External Connections ---
	pgPool, err := setupPostgres(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	if err := database.ApplyMigrations(pgPool, logger); err != nil {
		logger.Fatal("Failed to apply database migrations", zap.Error(err))
	}

	redisClient, err := setupRedis(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// --- Dependency Injection ---
	generalRepo := database.NewPgGeneralConfigRepository(pgPool, logger)
	sessionRepo := database.NewRedisSessionRepository(redisClient, logger)

	ensureCtx, ensureCancel := context.WithTimeout(rootCtx, cfg.Database.ConnectTimeout)
	if err := generalRepo.EnsureGeneralRow(ensureCtx, models.DefaultGeneralConfig()); err != nil {
		logger.Fatal("Failed to seed general config row", zap.Error(err))
	}
	ensureCancel()

	store := configstore.New(configstore.Options{
		Path: cfg.CacheFilePath(),
		TTL:  cfg.ConfigCache.TTL,
	}, logger)
	logger.Info("Config cache initialized", zap.String("path", store.Path()), zap.Duration("ttl", store.TTL()))

	hub := realtime.NewHub(logger)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// RabbitMQ необязателен: без него инстансы расходятся не дольше чем на TTL.
	var (
		mqConn    *amqp091.Connection
		publisher interfaces.GeneralConfigEventPublisher
		mqPub     *messaging.GeneralConfigPublisher
	)
	if cfg.RabbitMQ.URL != "" {
		mqConn, err = messaging.Connect(cfg.RabbitMQ.URL, maxConnectRetries, connectRetryDelay, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		mqPub, err = messaging.NewGeneralConfigPublisher(mqConn, logger)
		if err != nil {
			logger.Fatal("Failed to create general config publisher", zap.Error(err))
		}
		defer mqPub.Close()
		publisher = mqPub
	} else {
		logger.Warn("RABBITMQ_URL not set, cross-instance config updates disabled")
	}

	configService := service.NewGeneralConfigService(generalRepo, store, publisher, hub, logger)

	var mqConsumer *messaging.GeneralConfigConsumer
	if mqConn != nil {
		mqConsumer, err = messaging.NewGeneralConfigConsumer(mqConn, configService, logger)
		if err != nil {
			logger.Fatal("Failed to create general config consumer", zap.Error(err))
		}
		if err := mqConsumer.StartConsuming(); err != nil {
			logger.Fatal("Failed to start general config consumer", zap.Error(err))
		}
	}

	// Прогрев кэша; ошибка не фатальна, GET повторит чтение из БД.
	if _, err := configService.Get(rootCtx); err != nil {
		logger.Warn("Failed to warm general config cache", zap.Error(err))
	}

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", handler.SessionHeader, sharedMiddleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	generalHandler := handler.NewGeneralConfigHandler(configService, sessionRepo, cfg.HTTP.SessionCookie, logger)
	generalHandler.RegisterRoutes(router)
	router.GET("/ws", gin.WrapF(hub.Handler(cfg.AllowedOrigins())))

	// Метрики регистрируем после роутов.
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-rootCtx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	if mqConsumer != nil {
		if err := mqConsumer.Stop(); err != nil {
			logger.Error("Error stopping general config consumer", zap.Error(err))
		}
	}
	hubCancel()

	logger.Info("Server exiting")
}
