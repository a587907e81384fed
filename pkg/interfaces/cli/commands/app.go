package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lararachidi/agent-supply-chain/pkg/application/services/analytics"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/emails"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/forecast"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/genie"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/orchestration"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/rawmaterial"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/setup"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/transport"
	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/events"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/llm"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/metrics"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/repositories/sqlite"
)

// App wires the services over the SQLite managed tables
type App struct {
	Config   *config.Config
	Log      *logger.ZerologLogger
	Registry *prometheus.Registry
	Events   events.EventStore
	Runs     repositories.RunRepository

	Setup       *setup.Service
	Forecast    *forecast.Service
	RawMaterial *rawmaterial.Service
	Transport   *transport.Service
	Emails      *emails.Service
	Analytics   *analytics.Service
	Tools       *genie.Toolbox
	Genie       *genie.Service
	Pipeline    *orchestration.Pipeline

	db *sql.DB
}

// NewApp opens the database named by cfg and builds every service. logOut
// receives the structured logs.
func NewApp(cfg *config.Config, logOut io.Writer) (*App, error) {
	log, err := logger.NewZerologLogger("supplychain", logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Out:    logOut,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := sqlite.OpenDB(cfg.DatabaseFile())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DatabaseFile(), err)
	}
	log.Debugf("opened %s", cfg.DatabaseFile())

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSink(reg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	bomRepo := sqlite.NewBOMRepo(db)
	demandRepo := sqlite.NewDemandRepo(db)
	networkRepo := sqlite.NewNetworkRepo(db)
	outputRepo := sqlite.NewOutputRepo(db)
	emailRepo := sqlite.NewEmailRepo(db)
	runRepo := sqlite.NewRunRepo(db)

	var client llm.Client
	if cfg.LLM.Enabled {
		client = llm.NewOllamaClient(cfg.LLM, log.With("llm"))
	}
	embedder, err := newEmbedder(cfg, client)
	if err != nil {
		db.Close()
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Events:   events.NewInMemoryEventStore(log.With("events")),
		Runs:     runRepo,
		db:       db,
	}
	resetter := setup.ResetFunc(func(ctx context.Context) error { return sqlite.Reset(ctx, db) })
	app.Setup = setup.NewService(demandRepo, networkRepo, bomRepo, resetter, log.With("setup"))
	app.Forecast = forecast.NewService(demandRepo, networkRepo, outputRepo, cfg.Forecast, log.With("forecast"), sink)
	app.RawMaterial = rawmaterial.NewService(bomRepo, outputRepo, outputRepo, log.With("rawmaterial"))
	app.Transport = transport.NewService(networkRepo, outputRepo, outputRepo, cfg.Transport, log.With("transport"), sink)
	app.Emails = emails.NewService(emailRepo, embedder, cfg.Emails, log.With("emails"))
	app.Analytics = analytics.NewService(demandRepo, outputRepo, networkRepo, app.RawMaterial, log.With("analytics"))
	app.Tools = genie.NewToolbox(app.RawMaterial, app.Analytics, app.Emails, sink)
	app.Genie = genie.NewService(app.Tools, client, log.With("genie"), sink)
	app.Pipeline = orchestration.NewPipeline(orchestration.Stages{
		Setup:       app.Setup,
		Forecast:    app.Forecast,
		RawMaterial: app.RawMaterial,
		Transport:   app.Transport,
		Emails:      app.Emails,
	}, cfg.Generator, runRepo, app.Events, log.With("pipeline"), sink)

	return app, nil
}

func newEmbedder(cfg *config.Config, client llm.Client) (emails.Embedder, error) {
	switch cfg.Emails.Embedder {
	case "ollama":
		if client == nil {
			return nil, fmt.Errorf("emails.embedder ollama requires llm.enabled")
		}
		return emails.NewLLMEmbedder(client), nil
	default:
		return emails.NewHashingEmbedder(cfg.Emails.Dimensions)
	}
}

// Close releases the database
func (a *App) Close() error {
	return a.db.Close()
}
