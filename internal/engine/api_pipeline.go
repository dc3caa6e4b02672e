package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"musebox/internal/models"
	"musebox/internal/providers"
	"musebox/internal/shared"
)

// APIPipelineOpts configures an [APIPipeline].
type APIPipelineOpts struct {
	Provider providers.LibraryProvider
	Library  Library
	Reporter Reporter
	Logger   *log.Logger

	PageSize int // Albums per page (default 50)
}

// APIPipeline mirrors a provider's paginated remote library into the same
// normalized shape as the file pipeline, without a file tree to walk.
//
// Unlike the file pipeline there is no per-item failure concept: a page
// fetch failing anywhere aborts the whole sync.
type APIPipeline struct {
	provider providers.LibraryProvider
	library  Library
	reporter Reporter
	logger   *log.Logger
	pageSize int
}

// NewAPIPipeline creates an APIPipeline, applying defaults for unset options.
func NewAPIPipeline(opts APIPipelineOpts) *APIPipeline {
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &APIPipeline{
		provider: opts.Provider,
		library:  opts.Library,
		reporter: opts.Reporter,
		logger:   opts.Logger,
		pageSize: opts.PageSize,
	}
}

// Run executes the pipeline for one session.
func (p *APIPipeline) Run(ctx context.Context, args models.APIStartArgs) error {
	providerID := args.Info.ID
	p.report(ctx, providerID, models.Syncing{})

	normalizer := NewNormalizer(p.library, providerID)

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := p.provider.ListAlbums(ctx, offset, p.pageSize)
		if err != nil {
			return p.fail(ctx, providerID, fmt.Errorf("%w: page at offset %d: %v", shared.ErrProviderGateway, offset, err))
		}

		for _, item := range page.Items {
			if err := normalizer.AddAlbum(ctx, item); err != nil {
				return p.fail(ctx, providerID, err)
			}
		}

		p.logger.Debug("library page mirrored", "provider", providerID, "offset", offset, "albums", len(page.Items))

		if page.NextOffset == nil {
			break
		}
		offset = *page.NextOffset
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
		TracksWithError: 0,
	})
	p.logger.Info("library sync complete", "provider", providerID, "tracks", normalizer.TrackCount())
	return nil
}

// fail reports an errored status unless the run was cancelled.
func (p *APIPipeline) fail(ctx context.Context, providerID string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.logger.Error("library sync failed", "provider", providerID, "error", err)
	p.report(ctx, providerID, models.Errored{Err: err})
	return err
}

// report publishes a status unless the run was cancelled.
func (p *APIPipeline) report(ctx context.Context, providerID string, status models.Status) {
	if ctx.Err() != nil {
		return
	}
	p.reporter.Report(providerID, status)
}
