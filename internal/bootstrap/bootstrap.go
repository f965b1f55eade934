// Package bootstrap builds the service graph shared by the server and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/yoockh/studycounsel/config"
	"github.com/yoockh/studycounsel/internal/cache"
	"github.com/yoockh/studycounsel/internal/metrics"
	"github.com/yoockh/studycounsel/internal/providers/embedder"
	"github.com/yoockh/studycounsel/internal/providers/llm"
	mongorepo "github.com/yoockh/studycounsel/internal/repositories/mongo"
	pgrepo "github.com/yoockh/studycounsel/internal/repositories/postgres"
	"github.com/yoockh/studycounsel/internal/services"
)

type App struct {
	Config   config.Config
	Log      *logrus.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Mongo    *mongo.Client
	Redis    *redis.Client
	Postgres *gorm.DB
	LLM      llm.Provider

	Embeddings services.EmbeddingService
	Sessions   services.SessionService
	Profiles   services.ProfileService
	Plans      services.PlanService
	Turns      services.TurnService
	Chat       services.ChatService

	closers []func() error
}

// Build connects every backing store and wires the services. On error any
// connection already opened is closed.
func Build(ctx context.Context, cfg config.Config, log *logrus.Logger) (_ *App, err error) {
	app := &App{Config: cfg, Log: log, Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = metrics.New(app.Registry)

	app.Mongo, err = config.NewMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	app.closers = append(app.closers, func() error { return app.Mongo.Disconnect(context.Background()) })
	db := app.Mongo.Database(cfg.MongoDB)
	log.WithField("db", cfg.MongoDB).Info("MongoDB connected")

	if err := config.EnsureMongoIndexes(ctx, db); err != nil {
		log.WithError(err).Warn("ensure mongo indexes failed")
	}

	embedCache := app.buildCache(ctx)

	var store services.EmbeddingStore = mongorepo.NewEmbeddingRepo(db)
	if cfg.EmbeddingStore == "postgres" {
		app.Postgres, err = config.NewPostgres(cfg.PostgresURI)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		app.closers = append(app.closers, func() error {
			sqlDB, err := app.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		if err := config.EnsurePostgresSchema(ctx, app.Postgres); err != nil {
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		store = pgrepo.NewEmbeddingRepo(app.Postgres)
		log.Info("PostgreSQL embedding store ready")
	}

	app.LLM, err = buildLLM(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, app.LLM.Close)

	emb, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cls, err := services.LoadKeywordConfig(cfg.TopicKeywordsFile)
	if err != nil {
		return nil, fmt.Errorf("topic keywords: %w", err)
	}
	classifier := services.NewKeywordClassifier(cls)

	sessions := mongorepo.NewSessionRepo(db)
	messages := mongorepo.NewMessageRepo(db)
	profiles := mongorepo.NewProfileRepo(db)

	app.Embeddings = services.NewEmbeddingService(emb, store, mongorepo.NewDocumentRepo(db), embedCache, services.EmbeddingOptions{
		Timeout:   cfg.EmbedTimeout,
		CacheTTL:  cfg.EmbedCacheTTL,
		IndexRate: cfg.ReindexPerSecond,
	}, log, app.Metrics)
	app.Sessions = services.NewSessionService(sessions, messages, nil)
	app.Profiles = services.NewProfileService(profiles, nil)
	app.Plans = services.NewPlanService(mongorepo.NewPlanRepo(db), cfg.CountryTarget, nil)

	counselor := services.NewCounselorService(
		app.LLM,
		services.NewProfileExtractor(app.LLM, log, app.Metrics),
		services.NewIntentExtractor(app.LLM, log, app.Metrics),
		services.NewCandidateRetriever(mongorepo.NewCatalogRepo(db), cfg.UniversityCountry, log),
		classifier,
		log, app.Metrics,
	)
	app.Turns = services.NewTurnService(services.TurnDeps{
		Sessions:    sessions,
		Messages:    messages,
		Profiles:    profiles,
		Assessments: mongorepo.NewAssessmentRepo(db),
		Plans:       app.Plans,
		Counselor:   counselor,
		Log:         log,
		Metrics:     app.Metrics,
	})
	app.Chat = services.NewChatService(app.LLM, app.Embeddings, log, app.Metrics)

	return app, nil
}

// buildCache prefers Redis and falls back to an in-process cache.
func (a *App) buildCache(ctx context.Context) cache.Cache {
	if a.Config.RedisURL == "" {
		a.Log.Info("REDIS_URL not set, using in-memory embedding cache")
		return cache.NewMemoryCache(a.Config.EmbedCacheTTL, 10*time.Minute)
	}
	rdb, err := config.NewRedis(ctx, a.Config.RedisURL)
	if err != nil {
		a.Log.WithError(err).Warn("redis unavailable, using in-memory embedding cache")
		return cache.NewMemoryCache(a.Config.EmbedCacheTTL, 10*time.Minute)
	}
	a.Redis = rdb
	a.closers = append(a.closers, rdb.Close)
	a.Log.Info("Redis connected")
	return cache.NewRedisCache(rdb, "studycounsel:")
}

func buildLLM(ctx context.Context, cfg config.Config, log *logrus.Logger) (llm.Provider, error) {
	if cfg.LLMProvider == "vertex" {
		v, err := llm.NewVertexGemini(ctx, cfg.VertexProjectID, cfg.VertexLocation, cfg.VertexModel)
		if err != nil {
			return nil, fmt.Errorf("vertex: %w", err)
		}
		return llm.WithTimeout(v, cfg.LLMTimeout), nil
	}

	hc := &http.Client{}
	var chain []llm.Provider
	if cfg.OpenRouterAPIKey != "" {
		p, err := llm.NewOpenAICompat("openrouter", cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, hc)
		if err != nil {
			return nil, err
		}
		chain = append(chain, llm.WithTimeout(p, cfg.LLMTimeout))
	}
	if cfg.OpenAIAPIKey != "" {
		p, err := llm.NewOpenAICompat("openai", cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, hc)
		if err != nil {
			return nil, err
		}
		chain = append(chain, llm.WithTimeout(p, cfg.LLMTimeout))
	}
	if len(chain) == 0 {
		return nil, errors.New("no completion provider configured: set OPENROUTER_API_KEY or OPENAI_API_KEY")
	}
	return llm.NewFallback(log, chain...), nil
}

func buildEmbedder(ctx context.Context, cfg config.Config) (embedder.Provider, error) {
	if cfg.EmbeddingProvider == "genai" {
		return embedder.NewGenAI(ctx, cfg.GenAIAPIKey, cfg.GenAIEmbeddingModel)
	}
	return embedder.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel, &http.Client{})
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.WithError(err).Warn("close failed")
		}
	}
	a.closers = nil
}
