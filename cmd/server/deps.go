package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/config"
	"github.com/decisiontrace/decisiontrace/internal/handler"
	"github.com/decisiontrace/decisiontrace/internal/llm"
	"github.com/decisiontrace/decisiontrace/internal/pkg/database"
	"github.com/decisiontrace/decisiontrace/internal/repository/postgres"
	"github.com/decisiontrace/decisiontrace/internal/service"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Database connections
	Postgres *database.PostgresDB
	Redis    *redis.Client
	Minio    *minio.Client

	// Repositories
	ExperimentRepo *postgres.ExperimentRepository
	ScenarioRepo   *postgres.ScenarioRepository
	SessionRepo    *postgres.SessionRepository
	ResponseRepo   *postgres.ResponseRepository
	AnalysisRepo   *postgres.AnalysisRepository
	UserRepo       *postgres.UserRepository

	// Services
	ExperimentService *service.ExperimentService
	ScenarioService   *service.ScenarioService
	SessionService    *service.SessionService
	ResponseService   *service.ResponseService
	ExportService     *service.ExportService
	AnalysisService   *service.AnalysisService
	UserService       *service.UserService

	// Handlers
	HealthHandler     *handler.HealthHandler
	ExperimentHandler *handler.ExperimentHandler
	ScenarioHandler   *handler.ScenarioHandler
	SessionHandler    *handler.SessionHandler
	ExportHandler     *handler.ExportHandler
	AnalysisHandler   *handler.AnalysisHandler
	UserHandler       *handler.UserHandler

	// Asynq client
	AsynqClient *asynq.Client
}

// initDependencies initializes all dependencies
func initDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	// Initialize PostgreSQL using database wrapper
	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	deps.Postgres = pgDB

	// Initialize Redis
	redisClient, err := initRedis(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	deps.Redis = redisClient

	// Initialize MinIO
	minioClient, err := initMinio(cfg)
	if err != nil {
		logger.Warn("failed to initialize MinIO, export storage will be unavailable", zap.Error(err))
	}
	deps.Minio = minioClient

	// Initialize repositories
	deps.ExperimentRepo = postgres.NewExperimentRepository(pgDB)
	deps.ScenarioRepo = postgres.NewScenarioRepository(pgDB)
	deps.SessionRepo = postgres.NewSessionRepository(pgDB)
	deps.ResponseRepo = postgres.NewResponseRepository(pgDB)
	deps.AnalysisRepo = postgres.NewAnalysisRepository(pgDB)
	deps.UserRepo = postgres.NewUserRepository(pgDB)

	// Initialize Asynq client
	deps.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize analysis collaborator. The API serves reads and
	// enqueues work even when the collaborator is not configured.
	llmClient, err := initLLM(cfg)
	if err != nil {
		logger.Warn("analysis client unavailable, enrichment will degrade", zap.Error(err))
	}

	// Initialize services
	deps.ExperimentService = service.NewExperimentService(deps.ExperimentRepo, deps.ScenarioRepo)
	deps.ScenarioService = service.NewScenarioService(deps.ScenarioRepo)
	deps.SessionService = service.NewSessionService(deps.SessionRepo, deps.ExperimentRepo)
	deps.ResponseService = service.NewResponseService(
		deps.ResponseRepo,
		deps.SessionRepo,
		deps.ExperimentRepo,
		deps.ScenarioRepo,
	)
	deps.ExportService = service.NewExportService(
		deps.SessionRepo,
		deps.ResponseRepo,
		deps.ScenarioRepo,
	)
	deps.AnalysisService = service.NewAnalysisService(
		deps.AnalysisRepo,
		deps.ResponseRepo,
		deps.ScenarioRepo,
		llmClient,
		cfg.Analysis.Timeout,
	)
	deps.UserService = service.NewUserService(deps.UserRepo)

	// Initialize handlers
	deps.HealthHandler = handler.NewHealthHandler(
		pgDB.Pool,
		redisClient,
		appVersion,
	)
	deps.ExperimentHandler = handler.NewExperimentHandler(deps.ExperimentService, logger)
	deps.ScenarioHandler = handler.NewScenarioHandler(deps.ScenarioService, logger)
	deps.SessionHandler = handler.NewSessionHandler(
		deps.SessionService,
		deps.ResponseService,
		logger,
	)
	deps.ExportHandler = handler.NewExportHandler(
		deps.ExportService,
		deps.AsynqClient,
		logger,
	)
	deps.AnalysisHandler = handler.NewAnalysisHandler(
		deps.AnalysisService,
		deps.ResponseService,
		deps.AsynqClient,
		minioClient,
		cfg.MinIO.Bucket,
		logger,
	)
	deps.UserHandler = handler.NewUserHandler(deps.UserService, logger)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() {
	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
	if d.AsynqClient != nil {
		d.AsynqClient.Close()
	}
}

// initRedis initializes Redis client
func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// initMinio initializes MinIO client
func initMinio(cfg *config.Config) (*minio.Client, error) {
	if cfg.MinIO.Endpoint == "" {
		return nil, nil // MinIO not configured
	}

	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// Ensure bucket exists
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinIO.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIO.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return client, nil
}

// initLLM initializes the OpenAI-backed analysis client
func initLLM(cfg *config.Config) (llm.Client, error) {
	if cfg.Analysis.APIKey == "" {
		return nil, nil // analysis not configured
	}
	client, err := llm.NewOpenAIClient(cfg.Analysis)
	if err != nil {
		return nil, err
	}
	return client, nil
}
