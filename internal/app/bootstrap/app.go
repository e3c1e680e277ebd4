package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/nectar-lead-tracker/internal/api/router"
	appconfig "github.com/wolfman30/nectar-lead-tracker/internal/config"
	"github.com/wolfman30/nectar-lead-tracker/internal/docs"
	httpmiddleware "github.com/wolfman30/nectar-lead-tracker/internal/http/middleware"
	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/library"
	"github.com/wolfman30/nectar-lead-tracker/internal/notify"
	"github.com/wolfman30/nectar-lead-tracker/internal/projects"
	"github.com/wolfman30/nectar-lead-tracker/internal/reminders"
	"github.com/wolfman30/nectar-lead-tracker/internal/reports"
	"github.com/wolfman30/nectar-lead-tracker/internal/sales"
	"github.com/wolfman30/nectar-lead-tracker/internal/settings"
	"github.com/wolfman30/nectar-lead-tracker/internal/sheetsync"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// Deps are externally owned clients. Nil fields are built from config.
type Deps struct {
	Redis *redis.Client
	AWS   *aws.Config
}

// App is the fully wired API process.
type App struct {
	Handler  http.Handler
	Leads    *leads.Service
	Settings *settings.Store
	Mirror   *sheetsync.Dispatcher
	Metrics  *Metrics
	// Scanner is nil unless reminders are enabled.
	Scanner *reminders.Scanner

	redis     *redis.Client
	ownsRedis bool
	pool      *pgxpool.Pool
	db        *sql.DB
	transport *SheetTransport
}

// New builds every store, service and handler described by cfg.
func New(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, deps Deps) (_ *App, err error) {
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{redis: deps.Redis}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
		}
	}()

	if app.redis == nil {
		app.redis = BuildRedisClient(ctx, cfg, logger, true)
		app.ownsRedis = app.redis != nil
	}
	if app.redis == nil {
		return nil, fmt.Errorf("bootstrap: redis is required for settings (REDIS_ADDR=%q)", cfg.RedisAddr)
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		if cfg.LeadStore == "postgres" {
			if app.pool, err = OpenPostgres(ctx, cfg.DatabaseURL); err != nil {
				return nil, err
			}
		}
		if app.db, err = OpenSQL(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	app.Metrics = BuildMetrics()
	loc := cfg.Location()

	app.Settings = settings.NewStore(app.redis, settings.Defaults{
		Team:     cfg.DefaultTeam,
		Sentinel: cfg.SentinelMember,
	})

	direct := sheetsync.NewWebhookTransport(nil, cfg.SyncTimeout, logger.Component("sheetsync"))
	if app.transport, err = BuildSheetTransport(cfg, deps.AWS, direct); err != nil {
		return nil, err
	}
	app.Mirror = sheetsync.NewDispatcher(app.Settings, app.transport.Transport, direct, logger.Component("sheetsync"),
		sheetsync.WithMetrics(app.Metrics.Leads),
		sheetsync.WithTimeout(cfg.SyncTimeout),
		sheetsync.WithMaxInFlight(cfg.SyncMaxInFlight),
	)

	repo, err := BuildLeadRepository(cfg, app.pool, deps.AWS, logger.Component("leads"))
	if err != nil {
		return nil, err
	}
	app.Leads = leads.NewService(repo, logger.Component("leads"),
		leads.WithMirror(app.Mirror),
		leads.WithMetrics(app.Metrics.Leads),
		leads.WithLocation(loc),
		leads.WithStoreTimeout(cfg.StoreTimeout),
		leads.WithRequirePhone(cfg.RequirePhone),
		leads.WithDefaultMember(cfg.SentinelMember),
		leads.WithImportBatchSize(cfg.ImportBatchSize),
	)

	sender, err := BuildEmailSender(cfg, deps.AWS, logger.Component("email"))
	if err != nil {
		return nil, err
	}
	notifier := notify.NewService(sender, logger.Component("notify"))
	registry := reminders.NewRegistry(app.redis)
	if cfg.RemindersEnabled {
		app.Scanner = reminders.NewScanner(app.Leads, notifier, registry, cfg.ReminderRecipient, logger.Component("reminders")).
			WithInterval(cfg.ReminderInterval).
			WithMetrics(app.Metrics.Leads)
	}

	media := BuildMediaStore(cfg, deps.AWS, logger.Component("media"))
	routerCfg := &router.Config{
		Logger:          logger,
		LeadsHandler:    leads.NewHandler(app.Leads, logger),
		SalesHandler:    sales.NewHandler(app.Leads, cfg.CurrencySymbol, logger),
		ReportsHandler:  reports.NewHandler(reports.NewService(app.Leads, notifier, cfg.ReportRecipients, logger), logger),
		SettingsHandler: settings.NewHandler(app.Settings, app.Mirror, cfg.SheetURLHost, logger),
		MetricsHandler:  app.Metrics.Handler,
		CORS: httpmiddleware.CORSConfig{
			Origins:        cfg.CORSOrigin,
			AllowedHeaders: cfg.CORSAllowedHeaders,
			ExposedHeaders: cfg.CORSExposedHeaders,
			MaxAge:         cfg.CORSMaxAge,
		},
		JWTSecret:   cfg.JWTSecret,
		DevUserID:   cfg.DevUserID,
		UserTracker: registry,
		ImportRate:  cfg.ImportRateLimit,
	}
	if app.db != nil {
		routerCfg.DocsHandler = docs.NewHandler(docs.NewService(docs.NewSQLRepository(app.db), media, loc, logger), logger)
		routerCfg.ProjectsHandler = projects.NewHandler(projects.NewService(projects.NewSQLRepository(app.db), logger), logger)
		routerCfg.LibraryHandler = library.NewHandler(library.NewService(library.NewSQLRepository(app.db), media, logger), logger)
	} else {
		logger.Warn("DATABASE_URL not set, documentation, projects and library routes disabled")
	}
	app.Handler = router.New(routerCfg)
	return app, nil
}

// Close drains pending mirror deliveries and releases every connection the
// app opened. It is safe to call on a partially built app.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Mirror != nil {
		if err := a.Mirror.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain sheet mirror: %w", err))
		}
	}
	if err := a.transport.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close broker: %w", err))
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sql: %w", err))
		}
	}
	if a.ownsRedis && a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
