package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/config"
	"github.com/decisiontrace/decisiontrace/internal/llm"
	"github.com/decisiontrace/decisiontrace/internal/pkg/database"
	"github.com/decisiontrace/decisiontrace/internal/pkg/logger"
	"github.com/decisiontrace/decisiontrace/internal/repository/postgres"
	"github.com/decisiontrace/decisiontrace/internal/service"
	"github.com/decisiontrace/decisiontrace/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Log
	defer log.Sync()

	log.Info("starting worker service")

	// Initialize dependencies
	deps, cleanup, err := initWorkerDependencies(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer cleanup()

	// Create worker server
	workerServer, err := worker.NewServer(log, cfg, deps)
	if err != nil {
		log.Fatal("failed to create worker server", zap.Error(err))
	}

	// Start worker in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- workerServer.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down worker...")
		workerServer.Stop()
	case err := <-errCh:
		if err != nil {
			log.Error("worker server error", zap.Error(err))
		}
	}

	log.Info("worker stopped")
}

// initWorkerDependencies initializes dependencies for the worker
func initWorkerDependencies(cfg *config.Config, log *zap.Logger) (*worker.Dependencies, func(), error) {
	ctx := context.Background()

	// Initialize PostgreSQL using database wrapper
	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	// Initialize MinIO
	minioClient, err := initMinio(cfg)
	if err != nil {
		log.Warn("failed to initialize MinIO, export uploads will fail", zap.Error(err))
	}

	// Initialize analysis collaborator. Analysis tasks degrade to a
	// marker result when the collaborator is not configured.
	var llmClient llm.Client
	if cfg.Analysis.APIKey != "" {
		openaiClient, err := llm.NewOpenAIClient(cfg.Analysis)
		if err != nil {
			log.Warn("analysis client unavailable, enrichment will degrade", zap.Error(err))
		} else {
			llmClient = openaiClient
		}
	}

	// Initialize repositories
	scenarioRepo := postgres.NewScenarioRepository(pgDB)
	sessionRepo := postgres.NewSessionRepository(pgDB)
	responseRepo := postgres.NewResponseRepository(pgDB)
	analysisRepo := postgres.NewAnalysisRepository(pgDB)

	// Initialize services
	exportService := service.NewExportService(sessionRepo, responseRepo, scenarioRepo)
	analysisService := service.NewAnalysisService(
		analysisRepo,
		responseRepo,
		scenarioRepo,
		llmClient,
		cfg.Analysis.Timeout,
	)

	deps := &worker.Dependencies{
		ExportService:   exportService,
		AnalysisService: analysisService,
		TranscriptStore: responseRepo,
		MinioClient:     minioClient,
		MinioBucket:     cfg.MinIO.Bucket,
	}

	cleanup := func() {
		pgDB.Close()
	}

	return deps, cleanup, nil
}

// initMinio initializes MinIO client
func initMinio(cfg *config.Config) (*minio.Client, error) {
	if cfg.MinIO.Endpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return client, nil
}
