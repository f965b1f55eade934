package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port string

	MongoURI    string
	MongoDB     string
	RedisURL    string
	PostgresURI string

	// EmbeddingStore selects where vectors live: mongo|postgres.
	EmbeddingStore string

	// LLMProvider selects the completion backend: openai|vertex.
	LLMProvider       string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string

	VertexProjectID string
	VertexLocation  string
	VertexModel     string

	// EmbeddingProvider selects the embedding backend: openai|genai.
	EmbeddingProvider    string
	OpenAIEmbeddingModel string
	GenAIAPIKey          string
	GenAIEmbeddingModel  string

	LLMTimeout    time.Duration
	EmbedTimeout  time.Duration
	EmbedCacheTTL time.Duration

	CountryTarget     string
	UniversityCountry string

	// ReindexSchedule is a cron expression; empty disables the worker.
	ReindexSchedule  string
	ReindexPerSecond float64

	TopicKeywordsFile string
	LogLevel          string
}

func Load() Config {
	return Config{
		Port: env("PORT", "8080"),

		MongoURI:    env("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDB:     env("MONGO_DB", "study_germany_db"),
		RedisURL:    firstEnv("REDIS_URL", "REDIS_URI", "REDIS_ADDR"),
		PostgresURI: os.Getenv("POSTGRES_URI"),

		EmbeddingStore: strings.ToLower(env("EMBEDDING_STORE", "mongo")),

		LLMProvider:       strings.ToLower(env("LLM_PROVIDER", "openai")),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   env("OPENROUTER_MODEL", "meta-llama/llama-3.3-70b-instruct:free"),
		OpenRouterBaseURL: env("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       env("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     env("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		VertexProjectID: os.Getenv("VERTEX_PROJECT_ID"),
		VertexLocation:  env("VERTEX_LOCATION", "us-central1"),
		VertexModel:     env("VERTEX_MODEL", "gemini-1.5-flash"),

		EmbeddingProvider:    strings.ToLower(env("EMBEDDING_PROVIDER", "openai")),
		OpenAIEmbeddingModel: env("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		GenAIAPIKey:          os.Getenv("GENAI_API_KEY"),
		GenAIEmbeddingModel:  env("GENAI_EMBEDDING_MODEL", "gemini-embedding-001"),

		LLMTimeout:    duration("LLM_TIMEOUT", 60*time.Second),
		EmbedTimeout:  duration("EMBED_TIMEOUT", 30*time.Second),
		EmbedCacheTTL: duration("EMBED_CACHE_TTL", 24*time.Hour),

		CountryTarget:     env("COUNTRY_TARGET", "DE"),
		UniversityCountry: env("UNIVERSITY_COUNTRY", "Germany"),

		ReindexSchedule:  os.Getenv("REINDEX_SCHEDULE"),
		ReindexPerSecond: float(os.Getenv("REINDEX_PER_SECOND"), 5),

		TopicKeywordsFile: os.Getenv("TOPIC_KEYWORDS_FILE"),
		LogLevel:          env("LOG_LEVEL", "info"),
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// plain seconds
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func float(v string, def float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
		return f
	}
	return def
}
