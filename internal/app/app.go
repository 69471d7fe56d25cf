package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cuebook/internal/config"
	"github.com/riskibarqy/cuebook/internal/domain/audit"
	"github.com/riskibarqy/cuebook/internal/domain/jobscheduler"
	"github.com/riskibarqy/cuebook/internal/domain/league"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/player"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/domain/venue"
	"github.com/riskibarqy/cuebook/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/cuebook/internal/infrastructure/jobqueue"
	cacherepo "github.com/riskibarqy/cuebook/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/cuebook/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cuebook/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/cuebook/internal/interfaces/httpapi"
	"github.com/riskibarqy/cuebook/internal/platform/cache"
	idgen "github.com/riskibarqy/cuebook/internal/platform/id"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
	"github.com/riskibarqy/cuebook/internal/platform/resilience"
	"github.com/riskibarqy/cuebook/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const recomputeJobName = "recompute-standings-drain"

// App owns the HTTP server and everything that has to be closed with it.
type App struct {
	Server *http.Server

	db        *sqlx.DB
	scheduler *scheduler
	logger    *logging.Logger
}

type repositories struct {
	leagues    league.Repository
	venues     venue.Repository
	seasons    season.Repository
	players    player.Repository
	matches    match.Repository
	standings  standing.Repository
	tasks      standing.TaskRepository
	recomputer standing.Recomputer
	audit      audit.Repository
	dispatches jobscheduler.Repository
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app := &App{logger: logger}

	repos, err := app.buildRepositories(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL, cache.WithMaxEntries(cfg.CacheMaxEntries))
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, store)
		repos.venues = cacherepo.NewVenueRepository(repos.venues, store)
		repos.seasons = cacherepo.NewSeasonRepository(repos.seasons, store)
	}

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
		if err != nil {
			_ = app.closeDB()
			return nil, fmt.Errorf("build qstash publisher: %w", err)
		}
		queue = publisher
	}

	ids := idgen.NewUUIDGenerator()
	guard := usecase.NewGuard(repos.leagues, repos.players)
	auditor := usecase.NewAuditRecorder(repos.audit, ids)

	recomputeSvc := usecase.NewRecomputeService(
		repos.recomputer,
		repos.tasks,
		queue,
		repos.dispatches,
		resilience.NewCircuitBreakerFromConfig(resilience.CircuitBreakerConfig{Enabled: cfg.RecomputeCircuitEnabled}).
			OnStateChange(func(from, to resilience.CircuitState) {
				logger.Warn("circuit breaker state changed", "dependency", "standings_recompute", "from", from, "to", to)
			}),
		ids,
		usecase.RecomputeConfig{
			Workers:     cfg.RecomputeWorkers,
			BatchSize:   cfg.RecomputeBatchSize,
			MaxAttempts: cfg.RecomputeMaxAttempts,
			RetryBase:   cfg.RecomputeRetryBase,
			RetryMax:    cfg.RecomputeRetryMax,
		},
		logger,
	)
	matchSvc := usecase.NewMatchService(
		repos.matches,
		repos.seasons,
		repos.players,
		repos.venues,
		repos.audit,
		guard,
		auditor,
		recomputeSvc,
		logger,
	)
	seasonSvc := usecase.NewSeasonService(repos.seasons, guard, auditor, ids, logger)
	playerSvc := usecase.NewPlayerService(repos.players, repos.seasons, repos.standings, repos.matches, guard, auditor, ids, logger)
	standingSvc := usecase.NewStandingService(repos.seasons, repos.standings, repos.players)
	dashboardSvc := usecase.NewDashboardService(repos.leagues, repos.players, repos.seasons, repos.standings, repos.matches)

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		anubis.Config{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectPath,
			RevokePath:     cfg.AnubisRevokePath,
			AdminKey:       cfg.AnubisAdminKey,
			PrincipalTTL:   cfg.AnubisPrincipalTTL,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AnubisCircuitEnabled,
				FailureThreshold: cfg.AnubisCircuitFailureCount,
				OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
			},
		},
		logger,
	)

	handler := httpapi.NewHandler(
		matchSvc,
		seasonSvc,
		playerSvc,
		standingSvc,
		dashboardSvc,
		recomputeSvc,
		anubisClient,
		logger,
	)
	router := httpapi.NewRouter(
		handler,
		anubisClient,
		httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		logger,
		httpapi.RouterConfig{
			ServiceName:        cfg.ServiceName,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			InternalJobToken:   cfg.InternalJobToken,
		},
	)

	if cfg.RecomputeInterval > 0 {
		sched, err := newScheduler(logger)
		if err != nil {
			_ = app.closeDB()
			return nil, fmt.Errorf("build scheduler: %w", err)
		}
		err = sched.every(recomputeJobName, cfg.RecomputeInterval, cfg.RecomputeInterval, func(ctx context.Context) error {
			result, err := recomputeSvc.Drain(ctx)
			if err != nil {
				return err
			}
			if result.Claimed > 0 {
				logger.Info("recompute drain finished",
					"claimed", result.Claimed,
					"seasons", result.SeasonCount,
					"succeeded", result.Succeeded,
					"failed", result.Failed,
					"gave_up", result.GaveUp,
				)
			}
			return nil
		})
		if err != nil {
			_ = sched.stop()
			_ = app.closeDB()
			return nil, fmt.Errorf("register recompute job: %w", err)
		}
		app.scheduler = sched
	}

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return app, nil
}

// Start launches background jobs. The caller runs Server itself.
func (a *App) Start() {
	if a.scheduler != nil {
		a.scheduler.start()
	}
}

// Shutdown stops the HTTP server first so no new writes create outbox tasks,
// then the scheduler and the database pool.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("shutdown http server: %w", err)
		}
	}
	if a.scheduler != nil {
		if err := a.scheduler.stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop scheduler: %w", err)
		}
	}
	if err := a.closeDB(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (a *App) buildRepositories(cfg config.Config) (repositories, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		a.logger.Warn("using in-memory storage with seed data, nothing is persisted")
		store := memory.NewStore(memory.SeedDataset())
		return repositories{
			leagues:    store.Leagues,
			venues:     store.Venues,
			seasons:    store.Seasons,
			players:    store.Players,
			matches:    store.Matches,
			standings:  store.Standings,
			tasks:      store.Tasks,
			recomputer: store.Recomputer,
			audit:      store.Audit,
			dispatches: store.Dispatches,
		}, nil
	case config.StorageDriverPostgres, "":
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, err
		}
		a.db = db
		return repositories{
			leagues:    postgres.NewLeagueRepository(db),
			venues:     postgres.NewVenueRepository(db),
			seasons:    postgres.NewSeasonRepository(db),
			players:    postgres.NewPlayerRepository(db),
			matches:    postgres.NewMatchRepository(db),
			standings:  postgres.NewStandingRepository(db),
			tasks:      postgres.NewRecomputeTaskRepository(db),
			recomputer: postgres.NewRecomputer(db),
			audit:      postgres.NewAuditRepository(db),
			dispatches: postgres.NewJobDispatchRepository(db),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) closeDB() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
