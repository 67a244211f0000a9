package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bnrubin/discord-logbot/internal/application/doctor"
	"github.com/bnrubin/discord-logbot/internal/application/lifecycle"
	"github.com/bnrubin/discord-logbot/internal/application/search"
	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/infrastructure/config"
	"github.com/bnrubin/discord-logbot/internal/infrastructure/fetcher"
	"github.com/bnrubin/discord-logbot/internal/infrastructure/metrics"
	"github.com/bnrubin/discord-logbot/internal/infrastructure/store"
	"github.com/bnrubin/discord-logbot/internal/pkg/logger"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

// Options selects the config sources and log verbosity.
type Options struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config           domain.Config
	ConfigLoader     *config.FileLoader
	Logger           *logger.ZeroLogger
	Metrics          *metrics.Metrics
	Store            ports.RecordRepository
	Fetcher          *fetcher.HTTPFetcher
	LifecycleService *lifecycle.Service
	SearchService    *search.Service
	DoctorService    *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath, opts.EnvFile)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: cfg.Logging.Pretty})

	timeout, err := cfg.ImageTimeout()
	if err != nil {
		return nil, err
	}
	maxBytes, err := cfg.MaxImageBytes()
	if err != nil {
		return nil, err
	}

	recordStore, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	m := metrics.NewMetrics()
	imageFetcher := fetcher.NewHTTPFetcher(cfg.Images.Path, timeout, maxBytes)

	lifecycleService := &lifecycle.Service{
		Rules:   cfg.Rules(),
		Store:   recordStore,
		Fetcher: imageFetcher,
		Clock:   systemClock{},
		Metrics: m,
		Logger:  log.With("lifecycle"),
	}

	searchService := &search.Service{
		Store:    recordStore,
		Scope:    cfg.Web.ScopeChannel,
		PageSize: cfg.Web.PageSize,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Store:          recordStore,
	}

	return &Container{
		Config:           cfg,
		ConfigLoader:     cfgLoader,
		Logger:           log,
		Metrics:          m,
		Store:            recordStore,
		Fetcher:          imageFetcher,
		LifecycleService: lifecycleService,
		SearchService:    searchService,
		DoctorService:    doctorService,
	}, nil
}

// Close releases the record store.
func (c *Container) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
