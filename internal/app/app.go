package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
	"github.com/yungbote/articlegen-backend/internal/batch"
	"github.com/yungbote/articlegen-backend/internal/data/db"
	"github.com/yungbote/articlegen-backend/internal/jobs/handler"
	"github.com/yungbote/articlegen-backend/internal/jobs/runtime"
	"github.com/yungbote/articlegen-backend/internal/jobs/worker"
	"github.com/yungbote/articlegen-backend/internal/pkg/logger"
	"github.com/yungbote/articlegen-backend/internal/realtime"
	"github.com/yungbote/articlegen-backend/internal/temporalx"
	"github.com/yungbote/articlegen-backend/internal/temporalx/temporalworker"
)

// App is the fully wired process: every collaborator the article pipeline
// needs, the SQL-backed job queue that drives it, and the HTTP surface that
// exposes it, assembled once at startup.
type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Hub      *realtime.Hub

	registry *runtime.Registry
	worker   *worker.Worker
	temporal *temporalworker.Runner

	cancel context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init clients: %w", err)
	}

	repos := wireRepos(theDB, log)
	services := wireServices(ctx, theDB, log, repos, clients.SSEBus)
	handlers := wireHandlers(log, services)
	router := wireRouter(log, handlers)

	batchServices := batch.NewServices(cfg.BatchMemoryCapacity, log)

	stageFactory := articlepipeline.NewStageFactory(articlepipeline.Collaborators{
		LLM:          clients.LLM,
		Embeddings:   clients.Embeddings,
		URLValidator: clients.URLValidator,
		LinkProvider: clients.LinkProvider,
		ImageBackend: clients.ImageBackend,
		Storage:      clients.Storage,
		Renderer:     clients.Renderer,
		Scorer:       clients.Scorer,
		Similarity:   batchServices.Checker,
	})
	stageRegistry, err := stageFactory.Build()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("build stage registry: %w", err)
	}

	engine := articlepipeline.NewEngine(stageRegistry, clients.Scorer, batchServices.Quality, cfg.Engine)

	jobRegistry := runtime.NewRegistry()
	jobRegistry.Register(handler.NewArticleHandler(engine))

	jobWorker := worker.NewWorker(theDB, log, repos.JobRun, jobRegistry, services.Notify)

	var temporalRunner *temporalworker.Runner
	if strings.TrimSpace(os.Getenv("TEMPORAL_ADDRESS")) != "" {
		tc, err := temporalx.NewClient(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init temporal client: %w", err)
		}
		if tc != nil {
			temporalRunner, err = temporalworker.NewRunner(log, tc, theDB, repos.JobRun, jobRegistry, services.Notify)
			if err != nil {
				log.Sync()
				return nil, fmt.Errorf("init temporal worker: %w", err)
			}
		}
	}

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    repos,
		Clients:  clients,
		Services: services,
		Hub:      services.Hub,
		registry: jobRegistry,
		worker:   jobWorker,
		temporal: temporalRunner,
	}, nil
}

// Start launches background processing. runWorker controls the SQL
// poll-loop worker (and, when configured, the durable Temporal worker);
// runServer is accepted for symmetry with Run but does not itself start
// anything here, since the HTTP listener is started separately via Run.
func (a *App) Start(runServer, runWorker bool) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if !runWorker {
		return
	}

	if a.worker != nil {
		a.worker.Start(ctx)
	}
	if a.temporal != nil {
		go func() {
			if err := a.temporal.Start(ctx); err != nil && a.Log != nil {
				a.Log.Error("Temporal worker stopped", "error", err)
			}
		}()
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
