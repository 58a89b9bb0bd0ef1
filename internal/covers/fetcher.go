package covers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/database"
	"github.com/Nomadcxx/coverflow/internal/logging"
)

// maxImageBytes caps a single poster download.
const maxImageBytes = 20 << 20

// AttemptStore remembers download outcomes between runs.
type AttemptStore interface {
	RecordAttempt(key, collectionRoot string, status database.AttemptStatus, lastErr string) error
	ShouldRetry(key, collectionRoot string, after time.Duration) (bool, error)
}

// Options configures a Fetcher.
type Options struct {
	Workers       int
	RatePerSecond float64
	RetryAfter    time.Duration
	Timeout       time.Duration
	Store         AttemptStore
	Logger        *logging.Logger
}

// Report summarizes one Run.
type Report struct {
	Checked    int `json:"checked"`
	Cached     int `json:"cached"`
	Deferred   int `json:"deferred"`
	Downloaded int `json:"downloaded"`
	NoPoster   int `json:"no_poster"`
	Failed     int `json:"failed"`
}

// Fetcher downloads missing covers with bounded concurrency, pacing
// provider lookups through a shared rate limiter.
type Fetcher struct {
	provider   Provider
	resolver   catalog.CoverResolver
	store      AttemptStore
	logger     *logging.Logger
	limiter    *rate.Limiter
	client     *http.Client
	workers    int
	retryAfter time.Duration
	ready      chan string
}

// NewFetcher creates a fetcher. Workers defaults to 2; a non-positive rate
// disables pacing.
func NewFetcher(p Provider, r catalog.CoverResolver, opts Options) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 2
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Fetcher{
		provider:   p,
		resolver:   r,
		store:      opts.Store,
		logger:     logger,
		limiter:    rate.NewLimiter(limit, 1),
		client:     &http.Client{Timeout: timeout},
		workers:    workers,
		retryAfter: opts.RetryAfter,
		ready:      make(chan string, 64),
	}
}

// Ready receives the key of every title whose cover was just written.
// Keys are dropped when nobody keeps up; readers re-check HasCover anyway.
func (f *Fetcher) Ready() <-chan string {
	return f.ready
}

// Run fetches covers for every entry that has none. Individual failures
// are recorded and counted; only context cancellation ends the run early.
func (f *Fetcher) Run(ctx context.Context, entries iter.Seq[*catalog.Entry]) (Report, error) {
	var (
		mu     sync.Mutex
		report Report
	)
	count := func(fn func(*Report)) {
		mu.Lock()
		fn(&report)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for e := range entries {
		if gctx.Err() != nil {
			break
		}
		count(func(r *Report) { r.Checked++ })

		if f.resolver.HasCover(e) {
			count(func(r *Report) { r.Cached++ })
			continue
		}
		if !f.due(e) {
			count(func(r *Report) { r.Deferred++ })
			continue
		}

		g.Go(func() error {
			err := f.FetchOne(gctx, e)
			switch {
			case err == nil:
				count(func(r *Report) { r.Downloaded++ })
			case gctx.Err() != nil:
				return gctx.Err()
			case errors.Is(err, ErrNoPoster):
				count(func(r *Report) { r.NoPoster++ })
			default:
				count(func(r *Report) { r.Failed++ })
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	f.logger.Info("covers", "Cover run finished",
		logging.F("checked", report.Checked),
		logging.F("downloaded", report.Downloaded),
		logging.F("no_poster", report.NoPoster),
		logging.F("failed", report.Failed))
	return report, err
}

func (f *Fetcher) due(e *catalog.Entry) bool {
	if f.store == nil || f.retryAfter <= 0 {
		return true
	}
	ok, err := f.store.ShouldRetry(e.Key(), e.CollectionRoot(), f.retryAfter)
	if err != nil {
		f.logger.Warn("covers", "Attempt lookup failed", logging.F("key", e.Key()), logging.F("error", err.Error()))
		return true
	}
	return ok
}

// FetchOne looks up and downloads the cover for a single title.
func (f *Fetcher) FetchOne(ctx context.Context, e *catalog.Entry) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	poster, err := f.provider.Lookup(ctx, e.Title(), e.YearOrEmpty())
	if err == nil {
		err = f.download(ctx, poster, f.resolver.CoverCachePath(e))
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.record(e, err)
	if err != nil {
		if errors.Is(err, ErrNoPoster) {
			f.logger.Debug("covers", "No poster available", logging.F("title", e.Display()))
		} else {
			f.logger.Warn("covers", "Cover download failed", logging.F("title", e.Display()), logging.F("error", err.Error()))
		}
		return err
	}

	f.logger.Debug("covers", "Cover saved", logging.F("title", e.Display()))
	select {
	case f.ready <- e.Key():
	default:
	}
	return nil
}

func (f *Fetcher) record(e *catalog.Entry, err error) {
	if f.store == nil {
		return
	}
	status, msg := database.StatusOK, ""
	switch {
	case errors.Is(err, ErrNoPoster):
		status = database.StatusNoPoster
	case err != nil:
		status, msg = database.StatusFailed, err.Error()
	}
	if recErr := f.store.RecordAttempt(e.Key(), e.CollectionRoot(), status, msg); recErr != nil {
		f.logger.Warn("covers", "Failed to record attempt", logging.F("key", e.Key()), logging.F("error", recErr.Error()))
	}
}

func (f *Fetcher) download(ctx context.Context, src, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poster returned status %d", resp.StatusCode)
	}
	return writeImage(io.LimitReader(resp.Body, maxImageBytes), dest)
}

// SetCover installs a user-chosen image as the cover for e.
func SetCover(r catalog.CoverResolver, e *catalog.Entry, imagePath string) error {
	src, err := os.Open(imagePath)
	if err != nil {
		return err
	}
	defer src.Close()
	return writeImage(src, r.CoverCachePath(e))
}

// writeImage sniffs the first bytes of src, then writes it to dest through
// a temp file in the same directory so readers never see a partial file.
func writeImage(src io.Reader, dest string) error {
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return ErrNotImage
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create cover directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".cover-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), src)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
