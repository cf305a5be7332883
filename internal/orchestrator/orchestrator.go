// Package orchestrator drives a scrape job end to end: enumerate the listing,
// fan detail fetches across the worker pool, and stream completions.
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-video-scraper/internal/extract"
	"github.com/JakeFAU/realtime-video-scraper/internal/metrics"
	"github.com/JakeFAU/realtime-video-scraper/internal/pool"
	"github.com/JakeFAU/realtime-video-scraper/internal/scraper"
)

// Config controls Orchestrator behavior.
type Config struct {
	// MaxItems caps how many listing cards one job enumerates.
	MaxItems int
	// Workers bounds concurrent detail fetches.
	Workers int
	// Cookie, when set, is installed before the listing navigation.
	Cookie *scraper.Cookie
}

// Orchestrator runs scrape jobs. Multiple jobs may run concurrently; the only
// state shared between them is the job registry.
type Orchestrator struct {
	renderers scraper.RendererFactory
	registry  scraper.JobRegistry
	clock     scraper.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs an Orchestrator.
func New(
	renderers scraper.RendererFactory,
	registry scraper.JobRegistry,
	clock scraper.Clock,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Orchestrator{
		renderers: renderers,
		registry:  registry,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Stream runs the job for jobID against listingURL and returns its event
// feed. The channel carries one event per processed item in completion order,
// closes after a single finished event, and stops early only when ctx is
// canceled by the consumer going away.
func (o *Orchestrator) Stream(ctx context.Context, jobID, listingURL string) <-chan scraper.Event {
	out := make(chan scraper.Event, 1)
	go o.run(ctx, jobID, listingURL, out)
	return out
}

func (o *Orchestrator) run(ctx context.Context, jobID, listingURL string, out chan<- scraper.Event) {
	defer close(out)
	start := o.clock.Now()
	logger := o.logger.With(zap.String("job_id", jobID))

	items, err := o.enumerate(ctx, listingURL)
	if err != nil {
		msg := fmt.Sprintf("scrape failed during enumeration: %v", err)
		logger.Error("enumeration failed", zap.String("url", listingURL), zap.Error(err))
		o.setTerminal(jobID, scraper.JobStatusFailed, msg, logger)
		o.send(ctx, out, scraper.ErrorEvent(msg))
		o.send(ctx, out, scraper.FinishedEvent())
		return
	}
	total := len(items)
	logger.Info("enumeration complete", zap.Int("items", total))

	tasks := make([]pool.Task[scraper.DetailOutcome], 0, total)
	for _, item := range items {
		item := item
		tasks = append(tasks, func(taskCtx context.Context) scraper.DetailOutcome {
			return o.fetchDetail(taskCtx, item)
		})
	}

	done := 0
	for outcome := range pool.Run(ctx, tasks, o.cfg.Workers) {
		done++
		if err := o.registry.SetStatus(jobID, scraper.ProcessingStatus(done, total)); err != nil {
			logger.Warn("progress status update failed", zap.Error(err))
		}
		if outcome.Err != nil {
			metrics.ObserveItem("error")
			logger.Warn("detail fetch failed",
				zap.Int("index", outcome.Item.Index),
				zap.String("url", outcome.Item.DetailURL),
				zap.Error(outcome.Err),
			)
			msg := fmt.Sprintf("failed to process item %d (%s): %v",
				outcome.Item.Index, outcome.Item.Title, outcome.Err)
			o.send(ctx, out, scraper.ErrorEvent(msg))
			continue
		}
		metrics.ObserveItem("record")
		o.send(ctx, out, scraper.RecordEvent(*outcome.Record))
	}

	// Item failures do not fail the job; only an enumeration error does.
	o.setTerminal(jobID, scraper.JobStatusCompleted, fmt.Sprintf("processed %d items", total), logger)
	metrics.ObserveJobDuration(o.clock.Now().Sub(start))
	logger.Info("job finished", zap.Int("items", total), zap.Int("drained", done))
	o.send(ctx, out, scraper.FinishedEvent())
}

// enumerate renders the listing page and extracts candidate items. The
// listing renderer is scoped to this phase so it never competes with the
// detail task renderers.
func (o *Orchestrator) enumerate(ctx context.Context, listingURL string) ([]scraper.ListingItem, error) {
	r, err := o.renderers.NewRenderer(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listing renderer: %w", err)
	}
	defer o.closeRenderer(ctx, r)

	html, err := r.Render(ctx, scraper.RenderRequest{
		URL:          listingURL,
		WaitSelector: extract.ListingReadySelector,
		Cookie:       o.cfg.Cookie,
	})
	if err != nil {
		return nil, fmt.Errorf("render listing: %w", err)
	}
	items, err := extract.ParseListing(html, listingURL, o.cfg.MaxItems)
	if err != nil {
		return nil, fmt.Errorf("extract listing: %w", err)
	}
	return items, nil
}

// fetchDetail is the unit of parallel work. Any failure, including a panic,
// becomes a typed per-item outcome; the acquired renderer is released on
// every exit path.
func (o *Orchestrator) fetchDetail(ctx context.Context, item scraper.ListingItem) (outcome scraper.DetailOutcome) {
	outcome.Item = item
	defer func() {
		if rec := recover(); rec != nil {
			outcome.Record = nil
			outcome.Err = fmt.Errorf("detail task panic: %v", rec)
		}
	}()
	metrics.IncActiveDetailWorkers()
	defer metrics.DecActiveDetailWorkers()

	r, err := o.renderers.NewRenderer(ctx)
	if err != nil {
		outcome.Err = fmt.Errorf("acquire detail renderer: %w", err)
		return outcome
	}
	defer o.closeRenderer(ctx, r)

	html, err := r.Render(ctx, scraper.RenderRequest{
		URL:          item.DetailURL,
		WaitSelector: extract.DetailReadySelector,
	})
	if err != nil {
		outcome.Err = fmt.Errorf("render detail page: %w", err)
		return outcome
	}
	rec, err := extract.ParseDetail(html)
	if err != nil {
		outcome.Err = fmt.Errorf("extract detail fields: %w", err)
		return outcome
	}
	outcome.Record = &scraper.MergedRecord{ListingItem: item, DetailRecord: rec}
	return outcome
}

func (o *Orchestrator) setTerminal(jobID string, status scraper.JobStatus, result string, logger *zap.Logger) {
	if err := o.registry.SetTerminal(jobID, status, result); err != nil {
		logger.Error("terminal status update failed", zap.Error(err))
	}
	metrics.ObserveJob(string(status))
}

func (o *Orchestrator) send(ctx context.Context, out chan<- scraper.Event, evt scraper.Event) {
	select {
	case out <- evt:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) closeRenderer(ctx context.Context, r scraper.Renderer) {
	if err := r.Close(ctx); err != nil {
		o.logger.Warn("renderer close failed", zap.Error(err))
	}
}
