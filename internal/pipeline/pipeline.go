package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
	"golang.org/x/sync/errgroup"
)

// DefaultCollectorTimeout bounds each collector when no timeout is configured.
const DefaultCollectorTimeout = 5 * time.Second

// gracePeriod is how long a collector may take past its context deadline
// to return what it has before it is abandoned.
const gracePeriod = 250 * time.Millisecond

// Collector contributes one group of features for a URL.
type Collector interface {
	// Name identifies the collector in results and logs.
	Name() string

	// Defaults returns the features emitted when the collector fails or
	// does not apply.
	Defaults() feature.Vector

	// Collect observes rawURL. A non-nil error means the returned vector
	// is ignored and Defaults is used instead.
	Collect(ctx context.Context, rawURL string) (feature.Vector, error)
}

// Result records how one collector fared.
type Result struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Reason   string         `json:"reason,omitempty"`
	Duration time.Duration  `json:"duration"`
	Features feature.Vector `json:"features"`
}

// Outcome is the merged output of a run.
type Outcome struct {
	Features feature.Vector
	Results  []Result
}

// Degraded returns the results that did not complete normally.
func (o *Outcome) Degraded() []Result {
	var out []Result
	for _, r := range o.Results {
		if r.Status == StatusDegraded {
			out = append(out, r)
		}
	}
	return out
}

// Pipeline fans a URL out to its collectors.
type Pipeline struct {
	collectors []Collector
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithCollectorTimeout sets the per-collector deadline. Non-positive
// values are ignored.
func WithCollectorTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{timeout: DefaultCollectorTimeout}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddCollector registers collectors. Registration order is merge order.
func (p *Pipeline) AddCollector(collectors ...Collector) {
	p.collectors = append(p.collectors, collectors...)
}

// CollectorNames returns the registered collector names in merge order.
func (p *Pipeline) CollectorNames() []string {
	names := make([]string, len(p.collectors))
	for i, c := range p.collectors {
		names[i] = c.Name()
	}
	return names
}

// Run executes every collector concurrently against rawURL and merges
// their features. It only returns an error when ctx itself is done; a
// collector failure is reported in the corresponding Result.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (*Outcome, error) {
	results := make([]Result, len(p.collectors))

	var g errgroup.Group
	for i, c := range p.collectors {
		g.Go(func() error {
			results[i] = p.runOne(ctx, c, rawURL)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Outcome{Features: feature.New(), Results: results}
	for _, r := range results {
		out.Features.Merge(r.Features)
	}
	return out, nil
}

type collectResult struct {
	features feature.Vector
	err      error
}

// runOne runs c under its own deadline. A collector that ignores its
// context is abandoned shortly after the deadline.
func (p *Pipeline) runOne(ctx context.Context, c Collector, rawURL string) Result {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan collectResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- collectResult{err: fmt.Errorf("%w: %v", ErrCollectorPanic, r)}
			}
		}()
		v, err := c.Collect(cctx, rawURL)
		done <- collectResult{features: v, err: err}
	}()

	hardStop := time.NewTimer(p.timeout + gracePeriod)
	defer hardStop.Stop()

	var cr collectResult
	select {
	case cr = <-done:
	case <-hardStop.C:
		cr = collectResult{err: fmt.Errorf("abandoned after %v: %w", p.timeout, context.DeadlineExceeded)}
	case <-ctx.Done():
		cr = collectResult{err: ctx.Err()}
	}

	res := Result{Name: c.Name(), Duration: time.Since(start)}
	var partial *PartialError
	switch {
	case cr.err == nil:
		res.Status = StatusOK
		res.Features = c.Defaults()
		res.Features.Merge(cr.features)
	case errors.As(cr.err, &partial):
		res.Status = StatusDegraded
		res.Reason = partial.Err.Error()
		res.Features = c.Defaults()
		res.Features.Merge(cr.features)
	case errors.Is(cr.err, ErrSkipped):
		res.Status = StatusSkipped
		res.Features = c.Defaults()
	default:
		res.Status = StatusDegraded
		res.Reason = cr.err.Error()
		res.Features = c.Defaults()
	}

	if res.Status == StatusDegraded {
		p.logger.Debug("collector degraded",
			"collector", res.Name,
			"url", rawURL,
			"reason", res.Reason,
			"elapsed", res.Duration,
		)
	}
	return res
}
