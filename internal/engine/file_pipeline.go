package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"musebox/internal/extract"
	"musebox/internal/fetch"
	"musebox/internal/models"
	"musebox/internal/providers"
	"musebox/internal/shared"
)

// supportedExtensions is the audio allow-list, matched case-insensitively
// against file name extensions.
var supportedExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".aac":  {},
	".ogg":  {},
	".flac": {},
	".m4a":  {},
	".opus": {},
}

// SupportedAudioFile reports whether the file name carries a supported
// audio extension.
func SupportedAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := supportedExtensions[ext]
	return ok
}

// RangeFetcher is the partial-content contract the file pipeline downloads
// samples through. Implemented by [fetch.RangeFetcher].
type RangeFetcher interface {
	FetchRange(ctx context.Context, url string, start, end int64) (io.ReadCloser, error)
}

// FilePipelineOpts configures a [FilePipeline].
type FilePipelineOpts struct {
	Provider  providers.FileProvider
	Fetcher   RangeFetcher
	Extractor extract.Extractor
	Library   Library
	Reporter  Reporter
	Logger    *log.Logger

	Workers     int     // In-flight file operations (default 10)
	SampleBytes int64   // Bytes fetched per file (default 500000)
	RateLimit   float64 // Fetch requests per second (0 = unlimited)
	Backoff     fetch.Backoff
}

// FilePipeline turns a provider's folder tree into a normalized and
// persisted album/artist graph, tolerating individual file failures.
type FilePipeline struct {
	provider  providers.FileProvider
	fetcher   RangeFetcher
	extractor extract.Extractor
	library   Library
	reporter  Reporter
	logger    *log.Logger

	workers     int
	sampleBytes int64
	limiter     *rate.Limiter
	backoff     fetch.Backoff
}

// NewFilePipeline creates a FilePipeline, applying defaults for unset options.
func NewFilePipeline(opts FilePipelineOpts) *FilePipeline {
	if opts.Workers <= 0 {
		opts.Workers = 10
	}
	if opts.SampleBytes <= 0 {
		opts.SampleBytes = 500000
	}
	if opts.Backoff.Attempts == 0 {
		opts.Backoff = fetch.DefaultBackoff()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &FilePipeline{
		provider:    opts.Provider,
		fetcher:     opts.Fetcher,
		extractor:   opts.Extractor,
		library:     opts.Library,
		reporter:    opts.Reporter,
		logger:      opts.Logger,
		workers:     opts.Workers,
		sampleBytes: opts.SampleBytes,
		limiter:     limiter,
		backoff:     opts.Backoff,
	}
}

// fileResult is one file's outcome from the fetch+extract stage.
type fileResult struct {
	file models.File
	meta models.TrackMetadata
	err  error
}

// Run executes the pipeline for one session.
//
// Individual file failures are counted, not fatal. The only outright abort
// is a failing root listing, reported as errored. After cancellation no
// status is reported and nothing is written.
func (p *FilePipeline) Run(ctx context.Context, args models.FileStartArgs) error {
	providerID := args.Info.ID
	p.report(ctx, providerID, models.Syncing{})

	files := make(chan models.File)
	rootErr := make(chan error, 1)

	go func() {
		defer close(files)
		rootErr <- p.walk(ctx, args.RootFolder, files)
	}()

	results := make(chan fileResult)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, files, results)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Sequential fold: successes and failures land in one place, so no
	// update is lost even though workers complete out of listing order.
	var processed []fileResult
	var failures []error
	for res := range results {
		if res.err != nil {
			p.logger.Warn("file skipped", "file", res.file.Name, "error", res.err)
			failures = append(failures, res.err)
			continue
		}
		processed = append(processed, res)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := <-rootErr; err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		p.logger.Error("root listing failed", "provider", providerID, "error", err)
		p.report(ctx, providerID, models.Errored{Err: fmt.Errorf("%w: %v", shared.ErrProviderGateway, err)})
		return err
	}

	normalizer := NewNormalizer(p.library, providerID)
	for _, res := range processed {
		if err := normalizer.AddFile(ctx, res.meta, res.file.DownloadURL); err != nil {
			return p.fail(ctx, providerID, err)
		}
	}

	artists, albums := normalizer.Result()
	if err := p.library.SaveSync(ctx, artists, albums); err != nil {
		return p.fail(ctx, providerID, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.report(ctx, providerID, models.Synced{
		LastSyncedAt:    time.Now(),
		SyncedTracks:    normalizer.TrackCount(),
		TracksWithError: len(failures),
	})
	p.logger.Info("file sync complete",
		"provider", providerID,
		"tracks", normalizer.TrackCount(),
		"errors", len(failures),
	)
	return nil
}

// walk lists the tree depth-first starting at root, sending supported audio
// files downstream as they are discovered.
//
// Folder listings are retried under the backoff policy; a folder whose
// retries are exhausted contributes nothing and is skipped, except the root
// itself, whose failure is returned and aborts the sync.
func (p *FilePipeline) walk(ctx context.Context, root models.Folder, out chan<- models.File) error {
	return p.walkFolder(ctx, root, out, true)
}

func (p *FilePipeline) walkFolder(ctx context.Context, folder models.Folder, out chan<- models.File, isRoot bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	listing, err := fetch.Do(ctx, p.backoff, p.logger, func(ctx context.Context) (*providers.Listing, error) {
		return p.provider.ListFolder(ctx, folder)
	})
	if err != nil {
		if isRoot {
			return err
		}
		p.logger.Warn("folder skipped after retries", "folder", folder.Name, "error", err)
		return nil
	}

	for _, file := range listing.Files {
		if !SupportedAudioFile(file.Name) {
			continue
		}
		select {
		case out <- file:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for _, sub := range listing.Folders {
		if err := p.walkFolder(ctx, sub, out, false); err != nil {
			return err
		}
	}
	return nil
}

// worker consumes files, fetching a bounded sample and extracting metadata
// for each. Failures become per-file results, never stream-ending errors.
func (p *FilePipeline) worker(ctx context.Context, wg *sync.WaitGroup, files <-chan models.File, results chan<- fileResult) {
	defer wg.Done()

	for file := range files {
		if ctx.Err() != nil {
			return
		}

		meta, err := p.processFile(ctx, file)
		if ctx.Err() != nil {
			return
		}

		select {
		case results <- fileResult{file: file, meta: meta, err: err}:
		case <-ctx.Done():
			return
		}
	}
}

// processFile fetches the file's leading bytes under the retry policy and
// hands them to the extractor with size/type hints.
func (p *FilePipeline) processFile(ctx context.Context, file models.File) (models.TrackMetadata, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return models.TrackMetadata{}, err
		}
	}

	body, err := fetch.Do(ctx, p.backoff, p.logger, func(ctx context.Context) (io.ReadCloser, error) {
		return p.fetcher.FetchRange(ctx, file.DownloadURL, 0, p.sampleBytes)
	})
	if err != nil {
		return models.TrackMetadata{}, fmt.Errorf("fetching %s: %w", file.Name, err)
	}
	defer body.Close()

	meta, err := p.extractor.Extract(ctx, body, extract.Hints{MimeType: file.MimeType, Size: file.Size})
	if err != nil {
		return models.TrackMetadata{}, fmt.Errorf("extracting %s: %w", file.Name, err)
	}
	return meta, nil
}

// fail reports an errored status unless the run was cancelled.
func (p *FilePipeline) fail(ctx context.Context, providerID string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.logger.Error("file sync failed", "provider", providerID, "error", err)
	p.report(ctx, providerID, models.Errored{Err: err})
	return err
}

// report publishes a status unless the run was cancelled.
func (p *FilePipeline) report(ctx context.Context, providerID string, status models.Status) {
	if ctx.Err() != nil {
		return
	}
	p.reporter.Report(providerID, status)
}
