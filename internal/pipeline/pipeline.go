package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer renders a raw event into an output event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline runs the extract-render-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// Ready reports whether at least one batch has been loaded.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// CheckReadiness returns nil once the pipeline has loaded a batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.Ready() {
		return errors.New("pipeline has not rendered any rows yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	delay := initialBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		ok, failed := p.processBatch(ctx)
		if !ok {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		if !failed {
			delay = initialBackoff
			continue
		}
		if !sleepWithContext(ctx, delay) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		delay = nextBackoff(delay)
	}
}

// processBatch runs one extract-render-load cycle. ok is false when the
// context ended mid-cycle; failed is true when extract errored and the caller
// should back off. Load failures are retried inside the cycle.
func (p *Pipeline) processBatch(ctx context.Context) (ok, failed bool) {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false, false
		}
		p.logger.Error("extract batch failed", "error", err)
		return true, true
	}
	if len(rawBatch) == 0 {
		return ctx.Err() == nil, false
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))

	loaded, err := p.renderAndLoad(ctx, rawBatch)
	if err != nil {
		return false, false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true, false
}

// renderAndLoad renders each message, loads the successes and then commits
// every offset in the batch, poison messages included, in extract order.
// Nothing is committed until the load has succeeded. It returns the number
// of rows loaded, or an error only when the context ends first.
func (p *Pipeline) renderAndLoad(ctx context.Context, rawBatch []domain.RawEvent) (int, error) {
	outBatch := make([]domain.OutputEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("render failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			continue
		}
		outBatch = append(outBatch, out)
	}

	if len(outBatch) > 0 {
		if err := p.loadWithRetry(ctx, outBatch); err != nil {
			return 0, err
		}
		p.metrics.MessagesProduced.Add(float64(len(outBatch)))
		for _, out := range outBatch {
			p.metrics.RowsRendered.WithLabelValues(out.Headers["magnitude_category"], "pipeline").Inc()
		}
	}

	// Loaded rows are committed even if shutdown began during the load.
	commitCtx := context.WithoutCancel(ctx)
	for _, raw := range rawBatch {
		p.commitOffset(commitCtx, raw)
	}
	return len(outBatch), nil
}

// loadWithRetry loads the batch, backing off between failed attempts until
// it succeeds or the context ends. The source reader does not rewind.
func (p *Pipeline) loadWithRetry(ctx context.Context, outBatch []domain.OutputEvent) error {
	delay := initialBackoff
	for attempt := 1; ; attempt++ {
		err := p.loader.LoadBatch(ctx, outBatch)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(outBatch), "attempt", attempt)
		if !sleepWithContext(ctx, delay) {
			return ctx.Err()
		}
		delay = nextBackoff(delay)
	}
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
