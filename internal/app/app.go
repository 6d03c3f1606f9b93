package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"OpportunityValidator/internal/agent"
	"OpportunityValidator/internal/config"
	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/infrastructure/export"
	"OpportunityValidator/internal/infrastructure/filestore"
	"OpportunityValidator/internal/infrastructure/httpapi"
	"OpportunityValidator/internal/infrastructure/llm"
	"OpportunityValidator/internal/infrastructure/mapper"
	"OpportunityValidator/internal/infrastructure/scheduler"
	"OpportunityValidator/internal/infrastructure/storage"
	"OpportunityValidator/internal/infrastructure/telegram"
	"OpportunityValidator/internal/logging"
	"OpportunityValidator/internal/ports"
	"OpportunityValidator/internal/usecase"
)

// Application wires configuration to adapters and use cases.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	registry   *agent.Registry
	store      *filestore.Store
	mapper     *mapper.Mapper
	db         *sqlx.DB
	repository ports.ResultRepository
	notifier   ports.Notifier
}

// New builds the adapters that do not need the agent credential. The
// Postgres history is opened only when a DSN is configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	a := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		registry: NewAgentRegistry(),
		store:    filestore.NewStore(cfg.Storage.Root, baseLogger.With("component", "filestore")),
		mapper:   mapper.New(),
	}

	if cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		a.repository = repo
	}

	if cfg.Notifications.Telegram.Enabled() {
		a.notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	return a, nil
}

// NewAgentRegistry registers the supported agent providers.
func NewAgentRegistry() *agent.Registry {
	registry := agent.NewRegistry()
	registry.Register(config.ProviderAnthropic, func(cfg config.AgentConfig) (ports.Agent, error) {
		client, err := llm.NewAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	registry.Register(config.ProviderChatGPT, func(cfg config.AgentConfig) (ports.Agent, error) {
		client, err := llm.NewChatGPTClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	return registry
}

// Validator builds the validation use case. It fails with a configuration
// error when the agent credential is missing.
func (a *Application) Validator() (*usecase.Validator, error) {
	ag, err := a.buildAgent()
	if err != nil {
		return nil, err
	}

	a.logger.Info("validator initialized", "provider", a.cfg.Agent.Provider, "model", a.cfg.Agent.Model)

	return usecase.NewValidator(usecase.ValidatorDeps{
		Agent:      ag,
		Mapper:     a.mapper,
		Store:      a.store,
		Repository: a.repository,
		Notifier:   a.notifier,
		Logger:     a.logger,
	})
}

// Comparer builds the comparison use case. With qualitative set the agent
// is consulted for summaries, which requires the credential.
func (a *Application) Comparer(qualitative bool) (*usecase.Comparer, error) {
	deps := usecase.ComparerDeps{
		Mapper:   a.mapper,
		Notifier: a.notifier,
		Logger:   a.logger,
	}
	if qualitative {
		ag, err := a.buildAgent()
		if err != nil {
			return nil, err
		}
		deps.Agent = ag
	}
	return usecase.NewComparer(deps), nil
}

// LoadResults reads persisted results for names (all when empty). With
// fromHistory set they come from the Postgres history instead of the files.
func (a *Application) LoadResults(ctx context.Context, names []string, fromHistory bool) ([]domain.ValidationResult, error) {
	if fromHistory {
		if a.repository == nil {
			return nil, fmt.Errorf("%w: result history needs database.dsn (DATABASE_DSN)", domain.ErrConfiguration)
		}
		return a.repository.ListResults(ctx, names)
	}

	if len(names) == 0 {
		return a.store.List(ctx)
	}
	results := make([]domain.ValidationResult, 0, len(names))
	for _, name := range names {
		res, err := a.store.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ResultPath is where the artifact for name is written.
func (a *Application) ResultPath(name string) string {
	return a.store.Path(name)
}

// Exporter returns the spreadsheet exporter.
func (a *Application) Exporter() ports.ComparisonExporter {
	return export.NewXLSXExporter()
}

// Serve runs the read-only HTTP API until ctx is cancelled, republishing
// the recommendation digest when an interval and a notifier are configured.
func (a *Application) Serve(ctx context.Context) error {
	comparer, err := a.Comparer(false)
	if err != nil {
		return err
	}

	if a.notifier != nil && a.cfg.Notifications.DigestInterval > 0 {
		digest := usecase.NewDigestScheduler(
			scheduler.NewIntervalScheduler(a.cfg.Notifications.DigestInterval),
			a.store, comparer, a.logger,
		)
		if err := digest.Start(ctx); err != nil {
			return fmt.Errorf("start digest: %w", err)
		}
		defer func() {
			if err := digest.Stop(context.Background()); err != nil {
				a.logger.Warn("stop digest", "error", err)
			}
		}()
	}

	server := httpapi.NewServer(a.store, comparer, a.logger.With("component", "httpapi"))
	return server.ListenAndServe(ctx, a.cfg.Server.Addr)
}

// Close releases the database connection, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Application) buildAgent() (ports.Agent, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return a.registry.Build(a.cfg.Agent)
}
