package app

import (
	"time"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
	"github.com/yungbote/articlegen-backend/internal/pkg/envutil"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
)

// Config holds every tunable the article pipeline and its surrounding
// process need, loaded once at startup from the environment.
type Config struct {
	Port               string
	WorkerConcurrency  int
	DatabaseURL        string
	RedisURL           string
	StorageBucket      string
	OpenAIAPIKey       string

	BatchMemoryCapacity int
	Engine              articlepipeline.Config
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:                envutil.GetEnv("PORT", "8080", log),
		WorkerConcurrency:   envutil.GetEnvAsInt("WORKER_CONCURRENCY", 4, log),
		DatabaseURL:         envutil.GetEnv("DATABASE_URL", "", log),
		RedisURL:            envutil.GetEnv("REDIS_URL", "", log),
		StorageBucket:       envutil.GetEnv("STORAGE_BUCKET", "articlegen-articles", log),
		OpenAIAPIKey:        envutil.GetEnv("OPENAI_API_KEY", "", log),
		BatchMemoryCapacity: envutil.GetEnvAsInt("BATCH_MEMORY_CAPACITY", 100, log),
		Engine: articlepipeline.Config{
			MaxRegenerationAttempts: envutil.GetEnvAsInt("MAX_REGENERATION_ATTEMPTS", 3, log),
			AEOGateThreshold:        envutil.GetEnvAsInt("AEO_GATE_THRESHOLD", 80, log),
			StageTimeoutDefault:     time.Duration(envutil.GetEnvAsInt("STAGE_TIMEOUT_DEFAULT_SECONDS", 60, log)) * time.Second,
			LLMStageTimeout:         time.Duration(envutil.GetEnvAsInt("LLM_STAGE_TIMEOUT_SECONDS", 120, log)) * time.Second,
			EmbeddingStageTimeout:   time.Duration(envutil.GetEnvAsInt("EMBEDDING_STAGE_TIMEOUT_SECONDS", 30, log)) * time.Second,
			URLValidateTimeout:      time.Duration(envutil.GetEnvAsInt("URL_VALIDATE_TIMEOUT_SECONDS", 10, log)) * time.Second,
			ImageStageTimeout:       time.Duration(envutil.GetEnvAsInt("IMAGE_STAGE_TIMEOUT_SECONDS", 180, log)) * time.Second,
		},
	}
}
