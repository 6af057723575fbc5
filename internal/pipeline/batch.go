package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// defaultBatchConcurrency is the number of URLs processed at once.
const defaultBatchConcurrency = 4

// BatchItem is the outcome for one URL of a batch.
type BatchItem[T any] struct {
	URL   string
	Value T
	Err   error
}

// BatchProcessor applies a function to many URLs with bounded concurrency.
type BatchProcessor[T any] struct {
	fn          func(ctx context.Context, rawURL string) (T, error)
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*batchSettings)

type batchSettings struct {
	concurrency int
	logger      *slog.Logger
}

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(s *batchSettings) {
		s.logger = logger
	}
}

// WithConcurrency sets the number of URLs processed at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(s *batchSettings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewBatchProcessor returns a processor that calls fn for every URL.
func NewBatchProcessor[T any](fn func(ctx context.Context, rawURL string) (T, error), opts ...BatchOption) *BatchProcessor[T] {
	s := batchSettings{concurrency: defaultBatchConcurrency}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return &BatchProcessor[T]{fn: fn, concurrency: s.concurrency, logger: s.logger}
}

// ProcessBatch runs fn for each URL and returns the items in input order.
// A failing URL does not stop the others; its error is kept in the item.
// The returned error is non-nil only when ctx is cancelled.
func (bp *BatchProcessor[T]) ProcessBatch(ctx context.Context, urls []string) ([]BatchItem[T], error) {
	items := make([]BatchItem[T], len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(item BatchItem[T], index int) {
		items[index] = item
	})
	return items, err
}

// ProcessBatchWithCallback runs fn for each URL and hands every item to
// callback as soon as it is ready. callback is invoked from worker
// goroutines and must be safe for concurrent use.
func (bp *BatchProcessor[T]) ProcessBatchWithCallback(ctx context.Context, urls []string, callback func(item BatchItem[T], index int)) error {
	bp.logger.Info("starting batch analysis",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			v, err := bp.fn(ctx, u)
			if err != nil {
				bp.logger.Warn("analysis failed", "url", u, "error", err)
			}
			callback(BatchItem[T]{URL: u, Value: v, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch analysis complete",
		"total_urls", len(urls),
		"elapsed", time.Since(start),
	)
	return err
}
