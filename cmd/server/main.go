package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/exam-delivery-service/internal/cache"
	"github.com/SAP-F-2025/exam-delivery-service/internal/config"
	"github.com/SAP-F-2025/exam-delivery-service/internal/handlers"
	"github.com/SAP-F-2025/exam-delivery-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-delivery-service/internal/services"
	"github.com/SAP-F-2025/exam-delivery-service/internal/utils"
	"github.com/SAP-F-2025/exam-delivery-service/internal/validator"
	"github.com/SAP-F-2025/exam-delivery-service/pkg"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Database initialization failed")
		os.Exit(1)
	}

	assessmentCache := cache.NewNoopCache()
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, assessment cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		assessmentCache = cache.NewRedisCache(redisClient, "exam-delivery", slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Event publisher initialization failed")
		os.Exit(1)
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(
		postgres.NewRepository(db),
		assessmentCache,
		publisher,
		validator.New(),
		slogger,
		services.DeliveryConfig{
			TickInterval:    cfg.TickInterval,
			ScorePerCorrect: cfg.ScorePerCorrect,
			HomePath:        cfg.HomePath,
			CacheTTL:        cfg.AssessmentCacheTTL,
		},
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))

	handlers.NewHandlerManager(serviceManager, handlers.NewCasdoorParser(cfg.Casdoor), logger).SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Exam delivery service starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Server shutdown failed")
	}
	serviceManager.Delivery().Shutdown()
}
