package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interpretation-service/internal/config"
	"interpretation-service/internal/database"
	"interpretation-service/internal/handlers"
	"interpretation-service/internal/kafka"
	"interpretation-service/internal/logger"
	"interpretation-service/internal/redis"
	"interpretation-service/internal/services"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting interpretation service...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	app.shutdown(ctx)
	app.log.Info("Server exited")
	_ = app.log.Close()
}

// shutdown останавливает приём запросов и закрывает подключения в обратном порядке.
func (app *application) shutdown(ctx context.Context) {
	if app.consumer != nil {
		if err := app.consumer.Stop(); err != nil {
			app.log.WithError(err).Error("Failed to stop Kafka consumer")
		}
	}
	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			app.log.WithError(err).Error("Server forced to shutdown")
		}
	}
	_ = app.producer.Close()
	_ = app.redis.Close()
	_ = app.db.Close()
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	// Тарифная сетка проверяется до подключения к внешним сервисам.
	rateCard, err := services.NewRateCardFromConfig(&cfg.Pricing)
	if err != nil {
		return nil, fmt.Errorf("rate card: %w", err)
	}

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	pricingService := services.NewPricingService(rateCard)
	quoteService := services.NewQuoteService(db, log, pricingService)
	jobService := services.NewJobService(db, log, pricingService)
	earningsService := services.NewEarningsService(db, redisClient, log, &cfg.Earnings)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	quoteTTL := time.Duration(cfg.Quotes.CacheTTLMinutes) * time.Minute
	routes := routeHandlers{
		quotes:    handlers.NewQuoteHandler(quoteService, producer, redisClient, quoteTTL, log),
		jobs:      handlers.NewJobHandler(jobService, producer, redisClient, log),
		catalog:   handlers.NewCatalogHandler(rateCard, log),
		earnings:  handlers.NewEarningsHandler(earningsService, log, &cfg.Earnings),
		health:    handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck),
		rateLimit: handlers.NewRateLimitHandler(rateLimiter, log),
	}

	registerEventHandlers(consumer, log)
	if err := consumer.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"currency":      rateCard.Currency(),
		"service_types": len(rateCard.ServiceTypes()),
		"rate_card":     cfg.Pricing.RateCardFile,
	}).Info("Rate card loaded")

	mux := setupRoutes(routes, rateLimiter, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		producer: producer,
		consumer: consumer,
		mux:      mux,
		server:   server,
	}, nil
}
