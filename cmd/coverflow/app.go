package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nomadcxx/coverflow/internal/config"
	"github.com/Nomadcxx/coverflow/internal/covers"
	"github.com/Nomadcxx/coverflow/internal/database"
	"github.com/Nomadcxx/coverflow/internal/library"
	"github.com/Nomadcxx/coverflow/internal/logging"
	"github.com/Nomadcxx/coverflow/internal/naming"
	"github.com/Nomadcxx/coverflow/internal/paths"
	"github.com/Nomadcxx/coverflow/internal/scanner"
)

// app bundles what every command builds from the config.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	lib    *library.Library
	store  *database.CoverDB
}

type appOptions struct {
	// quiet keeps log lines off the terminal; they go to the log file.
	quiet    bool
	progress scanner.ProgressFunc
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s:\n%w", cfg.Path(), err)
	}
	return cfg, nil
}

func newApp(opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	if opts.quiet {
		logCfg.Quiet = true
		if logCfg.File == "" {
			if logCfg.File, err = paths.LogPath(); err != nil {
				return nil, err
			}
		}
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	norm, err := naming.New(cfg.Normalizer)
	if err != nil {
		return nil, err
	}
	coverDir, err := cfg.CoverDir()
	if err != nil {
		return nil, err
	}

	lib := library.New(library.Options{
		Roots:      cfg.LibraryPaths(),
		Extensions: cfg.Library.Extensions,
		Normalizer: norm,
		CoverRoot:  coverDir,
		Logger:     logger,
		Progress:   opts.progress,
	})
	return &app{cfg: cfg, logger: logger, lib: lib}, nil
}

// populate wraps ErrNoRoots with a hint on where to add paths.
func (a *app) populate(ctx context.Context) (library.Stats, error) {
	stats, err := a.lib.Populate(ctx)
	if errors.Is(err, library.ErrNoRoots) {
		return stats, fmt.Errorf("%w: add [library] paths to %s", err, a.cfg.Path())
	}
	return stats, err
}

func (a *app) openStore() (*database.CoverDB, error) {
	if a.store != nil {
		return a.store, nil
	}
	path, err := a.cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	store, err := database.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cover database: %w", err)
	}
	a.store = store
	return store, nil
}

// fetcher returns nil when covers are disabled.
func (a *app) fetcher() (*covers.Fetcher, error) {
	cc := a.cfg.Covers
	if !cc.Enabled {
		return nil, nil
	}
	if cc.APIKey == "" {
		return nil, fmt.Errorf("%w: set covers.api_key or COVERFLOW_OMDB_API_KEY", covers.ErrNoAPIKey)
	}
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	provider := covers.NewOMDbProvider(cc.Endpoint, cc.APIKey, cc.Timeout())
	return covers.NewFetcher(provider, a.lib.Resolver(), covers.Options{
		Workers:       cc.Workers,
		RatePerSecond: cc.RatePerSecond,
		RetryAfter:    cc.RetryAfterDuration(),
		Timeout:       cc.Timeout(),
		Store:         store,
		Logger:        a.logger,
	}), nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Close()
}
