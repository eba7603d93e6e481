package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/cinefind/internal/config"
	"github.com/five82/cinefind/internal/counter"
	"github.com/five82/cinefind/internal/logging"
	"github.com/five82/cinefind/internal/prefs"
	"github.com/five82/cinefind/internal/search"
	"github.com/five82/cinefind/internal/state"
	"github.com/five82/cinefind/internal/tmdb"
	"github.com/five82/cinefind/internal/ui"
)

// Options configure the cinefind application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/cinefind/prefs.toml
	InitialQuery string
	Debug        bool
}

// services is everything Run wires before handing control to the UI.
type services struct {
	cfg        config.Config
	prefs      prefs.Prefs
	sink       *logging.Sink
	backend    counter.Backend
	store      *state.Store
	controller *search.Controller
	debouncer  *search.Debouncer
}

func (s *services) close() {
	if s.backend != nil {
		if err := s.backend.Close(); err != nil && s.sink != nil {
			s.sink.Logger.Warn("close counter backend", "err", err)
		}
	}
	if s.sink != nil {
		_ = s.sink.Close()
	}
}

// Run boots the cinefind TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	svc, err := build(opts, time.Now())
	if err != nil {
		return err
	}
	defer svc.close()

	ctx, cancel := context.WithCancel(ctx)
	logger := svc.sink.Logger
	pollerDone := Poller{
		Store:    svc.store,
		Source:   svc.backend,
		Interval: svc.cfg.TrendingRefresh,
		Limit:    svc.cfg.TrendingLimit,
		Logger:   logger,
	}.Start(ctx)

	err = ui.Run(ui.Options{
		Context:      ctx,
		Controller:   svc.controller,
		Debouncer:    svc.debouncer,
		Store:        svc.store,
		Logger:       logger,
		LogPath:      svc.sink.Path,
		Prefs:        svc.prefs,
		PrefsPath:    opts.PrefsPath,
		InitialQuery: opts.InitialQuery,
	})
	if err != nil {
		logger.Error("ui exited with error", "err", err)
	}

	// The backend and log file close after the poller stops using them.
	cancel()
	<-pollerDone
	return err
}

// build loads configuration and opens every collaborator. On error nothing is
// left open.
func build(opts Options, now time.Time) (*services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		userPrefs = prefs.Default()
	}

	sink, err := logging.Open(cfg.LogDir, opts.Debug, now)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	svc := &services{cfg: cfg, prefs: userPrefs, sink: sink}
	logger := sink.Logger
	logger.Info("cinefind started",
		"api", cfg.APIBaseURL,
		"counter", cfg.Counter.Backend,
		"debounce", cfg.Debounce,
	)
	if cfg.APIToken == "" {
		logger.Warn("no TMDB token configured; requests will be rejected", "env", config.TokenEnv)
	}

	client, err := tmdb.NewClient(tmdb.Options{
		BaseURL:           cfg.APIBaseURL,
		Token:             cfg.APIToken,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("init tmdb client: %w", err)
	}

	backend, err := counter.Open(counter.Options{
		Backend: cfg.Counter.Backend,
		DBPath:  cfg.Counter.DBPath,
		URL:     cfg.Counter.URL,
		Project: cfg.Counter.Project,
		APIKey:  cfg.Counter.APIKey,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		logger.Error("open counter backend", "backend", cfg.Counter.Backend, "err", err)
		svc.close()
		return nil, fmt.Errorf("open %s counter: %w", cfg.Counter.Backend, err)
	}
	svc.backend = backend

	svc.store = &state.Store{}
	svc.controller = search.NewController(client, backend, logger)
	svc.debouncer = search.NewDebouncer(cfg.Debounce)
	return svc, nil
}

