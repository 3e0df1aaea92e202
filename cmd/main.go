package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"offer-service/internal/ai/gemini"
	"offer-service/internal/config"
	"offer-service/internal/database/minio"
	"offer-service/internal/database/postgres"
	"offer-service/internal/database/redis"
	"offer-service/internal/event"
	"offer-service/internal/handlers"
	"offer-service/internal/repository"
	"offer-service/internal/services"
	"offer-service/internal/worker"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	logDir := filepath.Join("/var", "log", "offer_service")
	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewTextHandler(file, nil)))

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	// db connection; retry in the background on startup failure so the
	// service still comes up when Postgres is slower than us
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}
	if err := minioClient.EnsureBuckets(context.Background()); err != nil {
		log.Fatalf("Failed to ensure MinIO buckets: %v", err)
	}

	if len(cfg.GeminiAPICfg.APIKeys) == 0 {
		log.Fatalf("No Gemini API keys configured (set GEMINI_KEYS)")
	}
	geminiClients := make([]gemini.GeminiClient, 0, len(cfg.GeminiAPICfg.APIKeys))
	for _, key := range cfg.GeminiAPICfg.APIKeys {
		client, err := gemini.NewGenAIClient(key, cfg.GeminiAPICfg.FlashName, cfg.GeminiAPICfg.ProName)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		geminiClients = append(geminiClients, *client)
	}
	selector := gemini.NewGeminiClientSelector(geminiClients)

	// RabbitMQ is optional: without a broker the finished events are dropped
	var publisher *event.ExtractionPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Printf("RabbitMQ unavailable, extraction events disabled: %v", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewExtractionPublisher(rabbitConn)
	}

	// worker pool
	pool := worker.NewWorkingPool(cfg.WorkerCfg.NumWorkers, cfg.WorkerCfg.QueueSize)
	poolCtx, poolCancel := context.WithCancel(context.Background())
	var managerWg sync.WaitGroup
	managerWg.Add(1)
	go pool.Start(poolCtx, &managerWg)

	// repositories
	healthRepo := repository.NewHealthOfferRepository(db)
	cascoRepo := repository.NewCascoRepository(db)
	jobRepo := repository.NewJobRepository(redisClient)

	// services
	extractionService := services.NewExtractionService(minioClient, selector, healthRepo, cascoRepo, jobRepo, publisher, pool)
	healthOfferService := services.NewHealthOfferService(healthRepo)
	cascoService := services.NewCascoService(cascoRepo)

	// handlers
	uploadHandler := handlers.NewUploadHandler(extractionService)
	healthOfferHandler := handlers.NewHealthOfferHandler(healthOfferService)
	cascoHandler := handlers.NewCascoHandler(cascoService)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Offer service is healthy")
	})

	uploadHandler.Register(app)
	healthOfferHandler.Register(app)
	cascoHandler.Register(app)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting offer-service on port %s", cfg.Port)
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	poolCancel()
	managerWg.Wait()

	if err := app.Shutdown(); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
}
