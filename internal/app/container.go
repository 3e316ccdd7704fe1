package app

import (
	"context"
	"log"
	"time"

	"skillgap/internal/config"
	"skillgap/internal/database"
	dbpostgres "skillgap/internal/database/postgres"
	"skillgap/internal/embedding"
	"skillgap/internal/infrastructure/cache"
	"skillgap/internal/pipeline"
	"skillgap/internal/pkg/jwt"
	"skillgap/internal/repository"
	"skillgap/internal/usecase"
	"skillgap/internal/ws"
)

// Container owns every long-lived dependency and hands them to the
// delivery layer, the pipelines and the CLI.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis

	Embedder *embedding.Service

	Curricula repository.CurriculumRepository
	Postings  repository.PostingRepository
	Snapshots repository.AnalysisRepository
	Users     repository.UserRepository

	JWT jwt.Service

	Auth     usecase.AuthUsecase
	Analysis usecase.GapAnalysisUsecase

	Backfill *pipeline.EmbeddingBackfillPipeline

	Hub *ws.Hub
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	redisCache := cache.NewRedis(logger)

	embedder := embedding.NewService(cfg.Embedding.Model, func(ctx context.Context) (embedding.Provider, error) {
		return embedding.NewGeminiProvider(ctx, cfg.Embedding.APIKey, cfg.Embedding.Model)
	})

	curricula := repository.NewPostgresCurriculumRepository(db)
	postings := repository.NewPostgresPostingRepository(db)
	snapshots := repository.NewPostgresAnalysisRepository(db)
	users := repository.NewPostgresUserRepository(db)

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	relevance := usecase.NewJobRelevanceFilter(postings, embedder, logger)
	analysis := usecase.NewGapAnalysisUsecase(curricula, snapshots, relevance, embedder, redisCache, logger)

	hub := ws.NewHub(logger)
	ws.SetDefaultHub(hub)
	analysis.SetCompletionHook(ws.NotifyAnalysisCompleted)

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Cache:     redisCache,
		Embedder:  embedder,
		Curricula: curricula,
		Postings:  postings,
		Snapshots: snapshots,
		Users:     users,
		JWT:       jwtSvc,
		Auth:      usecase.NewAuthUsecase(users, jwtSvc),
		Analysis:  analysis,
		Backfill:  pipeline.NewEmbeddingBackfillPipeline(postings, embedder, logger),
		Hub:       hub,
	}
	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
