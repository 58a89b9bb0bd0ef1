// Package daemon keeps the catalog current in the background: it populates
// once at start, again on every debounced filesystem change and on a cron
// schedule, fetches covers after each populate and serves the HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Nomadcxx/coverflow/internal/covers"
	"github.com/Nomadcxx/coverflow/internal/library"
	"github.com/Nomadcxx/coverflow/internal/logging"
	"github.com/Nomadcxx/coverflow/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

// Deps are the parts the daemon drives. Everything but Library is optional.
type Deps struct {
	Library *library.Library
	Watcher *watcher.Watcher
	Fetcher *covers.Fetcher
	Server  *http.Server

	// RescanSpec is a robfig/cron spec. Empty disables scheduled rescans.
	RescanSpec string
	Logger     *logging.Logger
}

// Status is a snapshot of the daemon's refresh state.
type Status struct {
	Populating   bool      `json:"populating"`
	Populates    int64     `json:"populates"`
	Coalesced    int64     `json:"coalesced"`
	LastPopulate time.Time `json:"last_populate"`
	LastError    string    `json:"last_error,omitempty"`
}

type Daemon struct {
	deps   Deps
	logger *logging.Logger

	mu         sync.Mutex
	populating bool
	again      bool
	status     Status
	lastErr    error

	fetchMu    sync.Mutex
	fetching   bool
	fetchAgain bool

	wg sync.WaitGroup
}

// New checks deps and returns a daemon ready to Run.
func New(deps Deps) (*Daemon, error) {
	if deps.Library == nil {
		return nil, errors.New("daemon: library is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Daemon{deps: deps, logger: logger}, nil
}

// Run is New followed by Daemon.Run.
func Run(ctx context.Context, deps Deps) error {
	d, err := New(deps)
	if err != nil {
		return err
	}
	return d.Run(ctx)
}

// Run blocks until ctx is cancelled or the HTTP server fails.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		d.wg.Wait()
	}()

	d.logger.Info("daemon", "Daemon starting", logging.F("roots", len(d.deps.Library.Roots())))

	serverErr := make(chan error, 1)
	if srv := d.deps.Server; srv != nil {
		go func() {
			d.logger.Info("daemon", "API server listening", logging.F("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("api server: %w", err)
			}
		}()
		defer d.shutdownServer(srv)
	}

	d.Refresh(ctx, "startup")

	if spec := d.deps.RescanSpec; spec != "" {
		c := cron.New()
		if _, err := c.AddFunc(spec, func() { d.Refresh(ctx, "schedule") }); err != nil {
			return fmt.Errorf("invalid rescan schedule %q: %w", spec, err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		d.logger.Info("daemon", "Scheduled rescans", logging.F("spec", spec))
	}

	var changes <-chan struct{}
	if w := d.deps.Watcher; w != nil {
		changes = w.Changes()
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("daemon", "Watcher stopped", err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon", "Daemon stopping")
			return nil
		case err := <-serverErr:
			return err
		case <-changes:
			d.Refresh(ctx, "watch")
		}
	}
}

// Refresh repopulates the library. A refresh requested while one is
// running is folded into a single follow-up run.
func (d *Daemon) Refresh(ctx context.Context, reason string) {
	d.mu.Lock()
	if d.populating {
		d.again = true
		d.status.Coalesced++
		d.mu.Unlock()
		d.logger.Debug("daemon", "Refresh queued behind running populate", logging.F("reason", reason))
		return
	}
	d.populating = true
	d.mu.Unlock()

	for {
		d.logger.Debug("daemon", "Refreshing catalog", logging.F("reason", reason))
		err := d.populate(ctx)

		d.mu.Lock()
		d.status.Populates++
		d.status.LastPopulate = time.Now()
		d.lastErr = err
		rerun := d.again && ctx.Err() == nil
		d.again = false
		if !rerun {
			d.populating = false
		}
		d.mu.Unlock()

		if err == nil {
			d.kickFetcher(ctx)
		}
		if !rerun {
			return
		}
		reason = "coalesced"
	}
}

func (d *Daemon) populate(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("populate panic: %v", r)
			d.logger.Error("daemon", "Panic during populate", err)
		}
	}()

	if _, err = d.deps.Library.Populate(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("daemon", "Populate failed", err)
	}
	return err
}

// kickFetcher starts a cover run in the background. A kick that arrives
// while a run is going makes that run repeat against the newest catalog.
func (d *Daemon) kickFetcher(ctx context.Context) {
	f := d.deps.Fetcher
	if f == nil {
		return
	}
	d.fetchMu.Lock()
	if d.fetching {
		d.fetchAgain = true
		d.fetchMu.Unlock()
		return
	}
	d.fetching = true
	d.fetchMu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			cat := d.deps.Library.Catalog()
			if _, err := f.Run(ctx, cat.All()); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("daemon", "Cover run failed", err)
			}

			d.fetchMu.Lock()
			again := d.fetchAgain && ctx.Err() == nil
			d.fetchAgain = false
			if !again {
				d.fetching = false
			}
			d.fetchMu.Unlock()
			if !again {
				return
			}
			d.logger.Debug("daemon", "Repeating cover run for the new catalog")
		}
	}()
}

func (d *Daemon) shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		d.logger.Error("daemon", "API server shutdown failed", err)
	}
}

// Status returns the current refresh state.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.status
	st.Populating = d.populating
	if d.lastErr != nil {
		st.LastError = d.lastErr.Error()
	}
	return st
}
