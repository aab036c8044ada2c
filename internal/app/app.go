package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/clubsync/external/spond"
	"github.com/riskibarqy/clubsync/internal/config"
	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/eventmatch"
	"github.com/riskibarqy/clubsync/internal/domain/spondaccount"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	"github.com/riskibarqy/clubsync/internal/infrastructure/account/anubis"
	cacherepo "github.com/riskibarqy/clubsync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/clubsync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/clubsync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/clubsync/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/clubsync/internal/platform/id"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
	"github.com/riskibarqy/clubsync/internal/platform/secret"
	"github.com/riskibarqy/clubsync/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// App owns the HTTP server and everything that must be released with it.
type App struct {
	Server  *http.Server
	closers []func() error
}

type repositories struct {
	teams  team.Repository
	events event.Repository
	links  syncsetting.Repository
	creds  spondaccount.Repository
}

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app := &App{}
	clock := clockwork.NewRealClock()

	repos, err := app.buildRepositories(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	if cfg.CacheEnabled {
		repos.teams = cacherepo.NewTeamRepository(repos.teams, cfg.CacheTTL, clock)
		repos.links = cacherepo.NewSyncSettingRepository(repos.links, cfg.CacheTTL, clock)
		logger.Info("repository cache enabled", "ttl", cfg.CacheTTL)
	}

	box, err := secret.NewBox(cfg.Spond.CredentialsKey)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("build credential box: %w", err)
	}

	spondHTTP := &http.Client{
		Timeout:   cfg.Spond.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	spondLogger := logger.Named("spond")
	factory := func(email, password string) usecase.RemoteClient {
		return spond.NewClient(spond.ClientConfig{
			HTTPClient:     spondHTTP,
			BaseURL:        cfg.Spond.BaseURL,
			Email:          email,
			Password:       password,
			Timeout:        cfg.Spond.Timeout,
			Logger:         spondLogger,
			CircuitBreaker: cfg.Spond.Circuit,
			Clock:          clock,
		})
	}

	linkSvc := usecase.NewSpondLinkService(repos.teams, repos.links, clock, logger)
	connectionSvc := usecase.NewSpondConnectionService(
		repos.creds,
		box,
		factory,
		repos.teams,
		linkSvc,
		idgen.NewRandomGenerator("team_"),
		clock,
		usecase.SpondConnectionConfig{
			BootstrapEmail:    cfg.Spond.Email,
			BootstrapPassword: cfg.Spond.Password,
			GroupsCacheTTL:    cfg.Spond.GroupsCacheTTL,
		},
		logger,
	)
	syncSvc, err := usecase.NewSpondSyncService(usecase.SpondPipelineDeps{
		Events:      repos.events,
		Teams:       repos.teams,
		Links:       repos.links,
		Remote:      connectionSvc,
		IDs:         idgen.NewRandomGenerator("evt_"),
		Clock:       clock,
		Logger:      logger.Named("sync"),
		MatchConfig: eventmatch.Config{TimeWindow: cfg.Spond.MatchTimeWindow},
	}, usecase.SpondSyncConfig{
		DaysBehind: cfg.Spond.DaysBehind,
		DaysAhead:  cfg.Spond.DaysAhead,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, func() error {
		syncSvc.Close()
		return nil
	})

	anubisClient := anubis.NewClient(anubis.Config{
		HTTPClient:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectURL,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CircuitBreaker: cfg.AnubisCircuit,
		CacheTTL:       cfg.AnubisCacheTTL,
		Clock:          clock,
		Logger:         logger.Named("anubis"),
	})

	handler := httpapi.NewHandler(syncSvc, linkSvc, connectionSvc, logger)
	router := httpapi.NewRouter(handler, anubisClient, logger, httpapi.RouterConfig{
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		InternalJobToken:    cfg.InternalJobToken,
		CaptureRequestBody:  cfg.UptraceEnabled && cfg.UptraceCaptureRequestBody,
		RequestBodyMaxBytes: cfg.UptraceRequestBodyMaxBytes,
	})

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return app, nil
}

// buildRepositories uses Postgres when DB_URL is set and seeded in-memory
// repositories otherwise.
func (a *App) buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Warn("DB_URL is empty, using in-memory repositories")
		return repositories{
			teams:  memory.NewTeamRepository(memory.SeedTeams()),
			events: memory.NewEventRepository(memory.SeedEvents(clockwork.NewRealClock().Now())),
			links:  memory.NewSyncSettingRepository(nil),
			creds:  memory.NewSpondCredentialsRepository(),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	a.closers = append(a.closers, db.Close)

	if cfg.DBBootstrapSeed {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
		logger.Info("database bootstrap seed applied")
	}

	logger.Info("using postgres repositories", "db_name", databaseName(cfg.DBURL))
	return repositories{
		teams:  postgres.NewTeamRepository(db),
		events: postgres.NewEventRepository(db),
		links:  postgres.NewSyncSettingRepository(db),
		creds:  postgres.NewSpondCredentialsRepository(db),
	}, nil
}

// Close releases resources in reverse construction order.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
