package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pixivcrawler/internal/downloader"
	"pixivcrawler/pkg/config"
	"pixivcrawler/pkg/logger"
	"pixivcrawler/pkg/ratelimit"
	"pixivcrawler/pkg/storage"
	"pixivcrawler/pkg/ui"
)

// Configuration errors returned by Run before any work is done
var (
	ErrEmptyTag      = errors.New("tag must not be empty")
	ErrInvalidTarget = errors.New("target count must be at least 1")
)

// Options controls where and how a run saves images
type Options struct {
	SaveRoot          string
	ExcludeManga      bool
	SortByOrientation bool
	PageDelay         time.Duration
	ResourceDelay     time.Duration
	ArtworkDelay      time.Duration
}

// OptionsFromConfig maps the search, output and http config sections
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SaveRoot:          cfg.Output.SaveRoot,
		ExcludeManga:      cfg.Search.ExcludeManga,
		SortByOrientation: cfg.Search.SortByOrientation,
		PageDelay:         cfg.HTTP.PageDelay,
		ResourceDelay:     cfg.HTTP.ResourceDelay,
		ArtworkDelay:      cfg.HTTP.ArtworkDelay,
	}
}

// Summary counts the outcome of one run
type Summary struct {
	Tag      string
	BasePath string
	// Existing is the number of distinct artwork ids found on disk
	Existing int
	// Fetched is the number of ids returned by the listing
	Fetched int
	// AlreadyPresent counts fetched ids that were on disk
	AlreadyPresent int
	// New counts fetched ids scheduled for download
	New            int
	ArtworksFailed int
	Downloaded     int
	Skipped        int
	Failed         int
	Bytes          int64
	// Paused is the time spent in pacing delays
	Paused   time.Duration
	Duration time.Duration
}

// Scraper orchestrates the Pixiv download process
type Scraper struct {
	client        PixivClient
	files         FileDownloader
	opts          Options
	pagePacer     ratelimit.Limiter
	resourcePacer ratelimit.Limiter
	artworkPacer  ratelimit.Limiter
	progress      ui.Progress
	logger        logger.Logger
}

// New creates a new Scraper instance
func New(client PixivClient, files FileDownloader, opts Options, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		client:        client,
		files:         files,
		opts:          opts,
		pagePacer:     ratelimit.NewPacer(opts.PageDelay),
		resourcePacer: ratelimit.NewPacer(opts.ResourceDelay),
		artworkPacer:  ratelimit.NewPacer(opts.ArtworkDelay),
		progress:      ui.NopProgress{},
		logger:        log,
	}
}

// SetLimiters replaces the page, resource and artwork pacers; nil keeps the
// current one
func (s *Scraper) SetLimiters(page, resource, artwork ratelimit.Limiter) {
	if page != nil {
		s.pagePacer = page
	}
	if resource != nil {
		s.resourcePacer = resource
	}
	if artwork != nil {
		s.artworkPacer = artwork
	}
}

func (s *Scraper) limiters() []ratelimit.Limiter {
	return []ratelimit.Limiter{s.pagePacer, s.resourcePacer, s.artworkPacer}
}

// resetPacing clears the statistics of limiters that keep them
func (s *Scraper) resetPacing() {
	for _, l := range s.limiters() {
		if r, ok := l.(ratelimit.Recorder); ok {
			r.Reset()
		}
	}
}

// paused sums the recorded wait time of all limiters
func (s *Scraper) paused() time.Duration {
	var total time.Duration
	for _, l := range s.limiters() {
		if r, ok := l.(ratelimit.Recorder); ok {
			_, waited := r.Stats()
			total += waited
		}
	}
	return total
}

// SetProgress sets the per-artwork progress sink
func (s *Scraper) SetProgress(p ui.Progress) {
	if p == nil {
		p = ui.NopProgress{}
	}
	s.progress = p
}

// Run downloads up to targetCount new artworks of tag. Network failures are
// logged and counted in the summary; only configuration problems and
// context cancellation are returned as errors.
func (s *Scraper) Run(ctx context.Context, tag string, targetCount int) (*Summary, error) {
	start := time.Now()
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrEmptyTag
	}
	if targetCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTarget, targetCount)
	}

	layout := storage.NewLayout(s.opts.SaveRoot, tag, s.opts.SortByOrientation)
	summary := &Summary{Tag: tag, BasePath: layout.Base}
	s.resetPacing()
	defer func() {
		summary.Paused = s.paused()
		summary.Duration = time.Since(start)
	}()

	log := s.logger.WithField("tag", tag)
	log.InfoWithFields("starting run", map[string]interface{}{
		"base_path": layout.Base,
		"sorted":    layout.Sorted,
		"target":    targetCount,
	})

	if err := layout.Prepare(); err != nil {
		return summary, err
	}

	inventory, err := storage.ScanExisting(layout.CandidateDirs())
	if err != nil {
		return summary, err
	}
	summary.Existing = inventory.Len()
	log.InfoWithFields("scanned local files", map[string]interface{}{
		"existing": summary.Existing,
	})

	ids := s.FetchIdentifiers(ctx, tag, targetCount)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	summary.Fetched = len(ids)

	toDownload := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if inventory.Has(id) {
			summary.AlreadyPresent++
			continue
		}
		toDownload = append(toDownload, id)
	}
	summary.New = len(toDownload)

	log.InfoWithFields("listing compared with local files", map[string]interface{}{
		"fetched":         summary.Fetched,
		"new":             summary.New,
		"already_present": summary.AlreadyPresent,
	})
	if len(toDownload) == 0 {
		log.Info("nothing new to download")
		return summary, nil
	}

	s.progress.Start("downloading", len(toDownload))
	defer s.progress.Finish()

	for i, id := range toDownload {
		if i > 0 {
			if err := s.artworkPacer.Wait(ctx); err != nil {
				return summary, err
			}
		}
		ok, err := s.downloadArtwork(ctx, layout, id, summary)
		s.progress.Advance(id, ok)
		if err != nil {
			return summary, err
		}
	}

	log.InfoWithFields("run finished", map[string]interface{}{
		"downloaded":      summary.Downloaded,
		"skipped":         summary.Skipped,
		"failed":          summary.Failed,
		"artworks_failed": summary.ArtworksFailed,
	})
	return summary, nil
}

// downloadArtwork saves every image of one artwork. It reports whether all
// images were saved and returns an error only on cancellation.
func (s *Scraper) downloadArtwork(ctx context.Context, layout storage.Layout, id string, summary *Summary) (bool, error) {
	resources := s.FetchMedia(ctx, id)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(resources) == 0 {
		summary.ArtworksFailed++
		return false, nil
	}

	ok := true
	for j, res := range resources {
		if j > 0 {
			if err := s.resourcePacer.Wait(ctx); err != nil {
				return false, err
			}
		}

		result := s.files.Download(ctx, downloader.Job{
			URL:       res.URL,
			ArtworkID: id,
			Dir:       layout.DirFor(res.Width, res.Height),
		})
		switch result.Status {
		case downloader.StatusDownloaded:
			summary.Downloaded++
			summary.Bytes += result.Size
		case downloader.StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
			ok = false
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}
	}
	return ok, nil
}
