package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"musebox/internal/extract"
	"musebox/internal/fetch"
	"musebox/internal/models"
	"musebox/internal/providers"
	"musebox/internal/shared"
)

// session is one provider's entry in the coordinator's map.
//
// cancel is non-nil exactly while a pipeline task is live; done is closed
// when the task finishes for any reason.
type session struct {
	args   models.StartArgs
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *session) running() bool {
	return s != nil && s.cancel != nil
}

// CoordinatorOpts configures a [Coordinator].
type CoordinatorOpts struct {
	Factory   providers.Factory
	Library   Library
	Reporter  Reporter
	Fetcher   RangeFetcher
	Extractor extract.Extractor
	Logger    *log.Logger
	Sync      shared.SyncConfig

	// Now overrides the clock, used by tests for the skip-window and
	// token-expiry prechecks.
	Now func() time.Time
}

// Coordinator gates and supervises one sync attempt per provider.
//
// It is the sole handler of start and stop commands. The session map is the
// single source of truth for "is this provider currently syncing"; every
// mutation is an atomic read-modify-write under one mutex so close start and
// stop commands cannot race past the single-flight check.
type Coordinator struct {
	mu       sync.Mutex
	sessions map[string]*session

	factory   providers.Factory
	library   Library
	reporter  Reporter
	fetcher   RangeFetcher
	extractor extract.Extractor
	logger    *log.Logger
	cfg       shared.SyncConfig
	now       func() time.Time
}

// NewCoordinator creates a Coordinator, applying defaults for unset options.
func NewCoordinator(opts CoordinatorOpts) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sync.Workers <= 0 {
		opts.Sync.Workers = 10
	}
	if opts.Sync.SampleBytes <= 0 {
		opts.Sync.SampleBytes = 500000
	}
	if opts.Sync.SkipWindowHrs <= 0 {
		opts.Sync.SkipWindowHrs = 24
	}
	if opts.Sync.PageSize <= 0 {
		opts.Sync.PageSize = 50
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.NewRangeFetcher(time.Duration(opts.Sync.RequestTimeout)*time.Second, opts.Logger)
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.NewTagExtractor(opts.Logger)
	}

	return &Coordinator{
		sessions:  make(map[string]*session),
		factory:   opts.Factory,
		library:   opts.Library,
		reporter:  opts.Reporter,
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		logger:    opts.Logger,
		cfg:       opts.Sync,
		now:       opts.Now,
	}
}

// RequestSync handles a start command for one provider.
//
// Policy short-circuits (an already-running sync, the recently-synced skip,
// an expired token) resolve by reporting a status and returning; they are
// not errors and nothing propagates to the caller.
func (c *Coordinator) RequestSync(args models.StartArgs, force bool) {
	providerID := args.Provider().ID
	now := c.now()

	c.mu.Lock()

	if c.sessions[providerID].running() {
		c.mu.Unlock()
		c.logger.Info("sync already in flight, ignoring start", "provider", providerID)
		return
	}

	if !force {
		if last := args.LastSyncedAt(); last != nil {
			window := time.Duration(c.cfg.SkipWindowHrs) * time.Hour
			if now.Sub(*last) < window {
				c.sessions[providerID] = &session{args: args}
				c.mu.Unlock()
				c.logger.Info("recently synced, skipping", "provider", providerID, "last", *last)
				c.reporter.Report(providerID, models.SyncSkipped{LastSyncedAt: *last})
				return
			}
		}
	}

	if !models.AuthOf(args).Valid(now) {
		c.sessions[providerID] = &session{args: args}
		c.mu.Unlock()
		c.logger.Warn("token expired, not syncing", "provider", providerID)
		c.reporter.Report(providerID, models.Errored{Err: shared.ErrTokenExpired})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{args: args, cancel: cancel, done: make(chan struct{})}
	c.sessions[providerID] = s
	c.mu.Unlock()

	go c.runSession(ctx, s, args)
}

// RequestStop handles a stop command for one provider. Stopping an unknown
// or already-stopped provider is a no-op.
func (c *Coordinator) RequestStop(providerID string) {
	c.mu.Lock()
	s, ok := c.sessions[providerID]
	if !ok {
		c.mu.Unlock()
		c.logger.Debug("stop for unknown provider, ignoring", "provider", providerID)
		return
	}

	running := s.running()
	if running {
		s.cancel()
	}
	delete(c.sessions, providerID)
	c.mu.Unlock()

	if running {
		<-s.done
	}
	c.logger.Info("provider stopped", "provider", providerID)
	c.reporter.Report(providerID, models.Stopped{})
}

// Done returns a channel closed when the provider's current sync task
// finishes, or nil when no task is live.
func (c *Coordinator) Done(providerID string) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.sessions[providerID]; s.running() {
		return s.done
	}
	return nil
}

// runSession resolves the provider handle and drives the matching pipeline.
// Factory and pipeline failures surface as statuses, never as panics or
// errors crossing the worker boundary.
func (c *Coordinator) runSession(ctx context.Context, s *session, args models.StartArgs) {
	defer c.finish(s, args.Provider().ID)

	providerID := args.Provider().ID

	switch a := args.(type) {
	case models.FileStartArgs:
		provider, err := c.factory.FileProvider(ctx, a.Info, a.Auth)
		if err != nil {
			c.reportResolveFailure(ctx, providerID, err)
			return
		}
		pipeline := NewFilePipeline(FilePipelineOpts{
			Provider:    provider,
			Fetcher:     c.fetcher,
			Extractor:   c.extractor,
			Library:     c.library,
			Reporter:    c.reporter,
			Logger:      shared.WithLogger(c.logger, "provider", providerID),
			Workers:     c.cfg.Workers,
			SampleBytes: c.cfg.SampleBytes,
			RateLimit:   c.cfg.RateLimit,
		})
		if err := pipeline.Run(ctx, a); err != nil {
			c.logger.Debug("file pipeline finished with error", "provider", providerID, "error", err)
		}

	case models.APIStartArgs:
		provider, err := c.factory.LibraryProvider(ctx, a.Info, a.Auth)
		if err != nil {
			c.reportResolveFailure(ctx, providerID, err)
			return
		}
		pipeline := NewAPIPipeline(APIPipelineOpts{
			Provider: provider,
			Library:  c.library,
			Reporter: c.reporter,
			Logger:   shared.WithLogger(c.logger, "provider", providerID),
			PageSize: c.cfg.PageSize,
		})
		if err := pipeline.Run(ctx, a); err != nil {
			c.logger.Debug("api pipeline finished with error", "provider", providerID, "error", err)
		}

	default:
		c.logger.Error("unknown start args variant", "provider", providerID, "type", fmt.Sprintf("%T", args))
		c.reporter.Report(providerID, models.Errored{Err: shared.ErrInvalidInput})
	}
}

// finish clears the session's task handle. The entry itself stays so the
// coordinator remembers the session args between runs; only a stop command
// removes it.
func (c *Coordinator) finish(s *session, providerID string) {
	c.mu.Lock()
	s.cancel = nil
	c.mu.Unlock()
	close(s.done)
	c.logger.Debug("sync task finished", "provider", providerID)
}

// reportResolveFailure publishes a provider-resolution failure unless the
// session was already cancelled.
func (c *Coordinator) reportResolveFailure(ctx context.Context, providerID string, err error) {
	c.logger.Error("provider resolution failed", "provider", providerID, "error", err)
	if ctx.Err() != nil {
		return
	}
	c.reporter.Report(providerID, models.Errored{Err: err})
}
