package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
	"github.com/yungbote/articlegen-backend/internal/platform/aeoscorer"
	"github.com/yungbote/articlegen-backend/internal/platform/gcp"
	"github.com/yungbote/articlegen-backend/internal/platform/linkprovider"
	"github.com/yungbote/articlegen-backend/internal/platform/openai"
	"github.com/yungbote/articlegen-backend/internal/platform/render"
	"github.com/yungbote/articlegen-backend/internal/platform/urlvalidate"
	"github.com/yungbote/articlegen-backend/internal/realtime/bus"
)

// Clients bundles every external dependency the pipeline and HTTP layer
// need, wired once at process startup and shared across every job.
type Clients struct {
	SSEBus bus.Bus

	OpenAI        *openai.Client
	LLM           *openai.LLMAdapter
	Embeddings    *openai.EmbeddingAdapter
	ImageBackend  *openai.ImageAdapter

	Storage      *gcp.JobStorage
	LinkProvider *linkprovider.SitemapProvider
	Renderer     *render.HTMLRenderer
	URLValidator *urlvalidate.Validator
	Scorer       *aeoscorer.HeuristicScorer
}

func wireClients(ctx context.Context, cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	var out Clients

	if strings.TrimSpace(cfg.RedisURL) != "" || strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.SSEBus = b
	} else {
		out.SSEBus = bus.NewLocalBus()
	}

	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return Clients{}, fmt.Errorf("OPENAI_API_KEY is required")
	}
	out.OpenAI = openai.New(cfg.OpenAIAPIKey)
	out.LLM = openai.NewLLMAdapter(out.OpenAI)
	out.Embeddings = openai.NewEmbeddingAdapter(out.OpenAI)
	out.ImageBackend = openai.NewImageAdapter(out.OpenAI)

	storage, err := gcp.NewJobStorage(ctx, cfg.StorageBucket)
	if err != nil {
		return Clients{}, fmt.Errorf("init gcp storage: %w", err)
	}
	out.Storage = storage

	out.LinkProvider = linkprovider.NewSitemapProvider()
	out.Renderer = render.NewHTMLRenderer()
	out.URLValidator = urlvalidate.NewValidator()
	out.Scorer = aeoscorer.NewHeuristicScorer()

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
		c.SSEBus = nil
	}
}
