package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/classifier"
	"github.com/leaderofARS/anti-phishing-system/internal/database"
	"github.com/leaderofARS/anti-phishing-system/internal/feature"
	"github.com/leaderofARS/anti-phishing-system/internal/history"
	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
	"github.com/leaderofARS/anti-phishing-system/internal/override"
	"github.com/leaderofARS/anti-phishing-system/internal/pipeline"
	"github.com/leaderofARS/anti-phishing-system/internal/policy"
)

// Archive persists verdicts and override additions beyond the in-memory
// history. *database.ScanDB implements it.
type Archive interface {
	InsertScan(ctx context.Context, rec *database.ScanRecord) (int64, error)
	InsertOverride(ctx context.Context, rec *database.OverrideRecord) error
}

var _ Archive = (*database.ScanDB)(nil)

// archiveTimeout bounds a single archive write.
const archiveTimeout = 2 * time.Second

// Verdict is the result of Analyze.
type Verdict struct {
	URL             string         `json:"url"`
	RiskLevel       policy.Tier    `json:"risk_level"`
	RiskScore       float64        `json:"risk_score"`
	Confidence      float64        `json:"confidence"`
	Features        feature.Vector `json:"features"`
	Recommendations []string       `json:"recommendations"`
	AllowAccess     bool           `json:"allow_access"`
	ScanTime        float64        `json:"scan_time"`

	// Source tells whether an override list or the classifier decided.
	Source policy.Source `json:"-"`
	// Collectors holds one result per collector in pipeline order.
	Collectors []pipeline.Result `json:"-"`
	// HistoryID is the ID assigned by the scan history.
	HistoryID int64 `json:"-"`
	// Timestamp is when the analysis finished.
	Timestamp time.Time `json:"-"`
}

// Degraded returns the names of collectors that fell back to defaults.
func (v *Verdict) Degraded() []string {
	var names []string
	for _, r := range v.Collectors {
		if r.Status == pipeline.StatusDegraded {
			names = append(names, r.Name)
		}
	}
	return names
}

// OverrideResult reports the outcome of AddOverride.
type OverrideResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Engine runs analyses and owns the scan state.
type Engine struct {
	pipeline *pipeline.Pipeline
	lists    *override.Lists
	scorer   classifier.Scorer
	history  *history.Store
	archive  Archive
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPipeline replaces the default pipeline, which only runs the lexical
// collector.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) {
		e.pipeline = p
	}
}

// WithHistory replaces the default history store.
func WithHistory(h *history.Store) Option {
	return func(e *Engine) {
		e.history = h
	}
}

// WithArchive enables persistence of verdicts and override additions.
func WithArchive(a Archive) Option {
	return func(e *Engine) {
		e.archive = a
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine around the given lists and scorer.
func New(lists *override.Lists, scorer classifier.Scorer, opts ...Option) *Engine {
	e := &Engine{
		lists:  lists,
		scorer: scorer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.pipeline == nil {
		e.pipeline = pipeline.New(pipeline.WithLogger(e.logger))
		e.pipeline.AddCollector(lexical.NewCollector())
	}
	if e.history == nil {
		e.history = history.NewStore()
	}
	return e
}

// Analyze runs every collector against rawURL, applies the override lists
// and the classifier, and records the verdict. analysisContext is the
// optional text the URL was found in; it is logged but not scored.
func (e *Engine) Analyze(ctx context.Context, rawURL, analysisContext string) (*Verdict, error) {
	start := time.Now()

	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, ErrEmptyURL)
	}

	outcome, err := e.pipeline.Run(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	features := outcome.Features
	blacklisted := e.lists.IsBlacklisted(rawURL)
	whitelisted := e.lists.IsWhitelisted(rawURL)
	features.SetBool(feature.IsBlacklisted, blacklisted)
	features.SetBool(feature.IsWhitelisted, whitelisted)

	in := policy.Input{Blacklisted: blacklisted, Whitelisted: whitelisted}
	if !blacklisted && !whitelisted {
		in.Score, in.Confidence = e.scorer.Score(features)
	}
	d := policy.Decide(in)

	elapsed := time.Since(start)
	v := &Verdict{
		URL:             rawURL,
		RiskLevel:       d.Tier,
		RiskScore:       d.Score,
		Confidence:      d.Confidence,
		Features:        features,
		Recommendations: d.Recommendations,
		AllowAccess:     d.AllowAccess,
		ScanTime:        elapsed.Seconds(),
		Source:          d.Source,
		Collectors:      outcome.Results,
		Timestamp:       e.now(),
	}

	rec := e.history.Append(history.Entry{
		URL:        rawURL,
		Tier:       d.Tier,
		Score:      d.Score,
		Confidence: d.Confidence,
		Timestamp:  v.Timestamp,
		Duration:   elapsed,
	})
	v.HistoryID = rec.ID

	e.logger.Info("url analyzed",
		"url", rawURL,
		"risk_level", d.Tier.String(),
		"risk_score", d.Score,
		"source", string(d.Source),
		"degraded", v.Degraded(),
		"duration", elapsed,
	)
	if analysisContext != "" {
		e.logger.Debug("analysis context", "url", rawURL, "context_length", len(analysisContext))
	}

	e.archiveScan(ctx, v)
	return v, nil
}

// archiveScan writes v to the archive. Failures are logged only.
func (e *Engine) archiveScan(ctx context.Context, v *Verdict) {
	if e.archive == nil {
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	_, err := e.archive.InsertScan(actx, &database.ScanRecord{
		URL:             v.URL,
		Host:            lexical.Split(v.URL).Host,
		RiskLevel:       v.RiskLevel.String(),
		RiskScore:       v.RiskScore,
		Confidence:      v.Confidence,
		AllowAccess:     v.AllowAccess,
		ScanTime:        v.ScanTime,
		Features:        v.Features,
		Recommendations: v.Recommendations,
		Degraded:        v.Degraded(),
		Timestamp:       v.Timestamp,
	})
	if err != nil {
		e.logger.Warn("failed to archive scan", "url", v.URL, "error", err)
	}
}

// AnalyzeBatch analyzes urls with at most concurrency analyses in flight.
// Results are returned in input order.
func (e *Engine) AnalyzeBatch(ctx context.Context, urls []string, concurrency int) ([]pipeline.BatchItem[*Verdict], error) {
	bp := pipeline.NewBatchProcessor(
		func(ctx context.Context, rawURL string) (*Verdict, error) {
			return e.Analyze(ctx, rawURL, "")
		},
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(e.logger),
	)
	return bp.ProcessBatch(ctx, urls)
}

// QuickCheck applies the lexical heuristic only. It does not touch the
// network, the classifier or the history.
func (e *Engine) QuickCheck(rawURL string) lexical.QuickResult {
	return lexical.QuickCheck(rawURL)
}

// AddOverride adds token to the given list. A token that is already listed
// is reported with Success false and no error; other failures are errors.
// origin ("api", "cli", ...) is recorded in the archive.
func (e *Engine) AddOverride(ctx context.Context, kind override.Kind, token, origin string) (OverrideResult, error) {
	normalized, err := e.lists.Add(kind, token)
	switch {
	case errors.Is(err, override.ErrAlreadyListed):
		return OverrideResult{Success: false, Message: fmt.Sprintf("Domain already in %s", kind)}, nil
	case err != nil:
		return OverrideResult{}, err
	}

	e.logger.Info("override added", "list", kind.String(), "token", normalized, "origin", origin)

	if e.archive != nil {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()
		if err := e.archive.InsertOverride(actx, &database.OverrideRecord{
			List:      kind.String(),
			Token:     normalized,
			Origin:    origin,
			Timestamp: e.now(),
		}); err != nil {
			e.logger.Warn("failed to archive override", "token", normalized, "error", err)
		}
	}

	return OverrideResult{Success: true, Message: fmt.Sprintf("Added %s to %s", normalized, kind)}, nil
}

// ListOverrides returns the tokens of a list in insertion order.
func (e *Engine) ListOverrides(kind override.Kind) ([]string, error) {
	return e.lists.List(kind)
}

// ReloadLists re-reads the override files from disk.
func (e *Engine) ReloadLists() {
	e.lists.Reload()
}

// Stats returns the cumulative tier counters.
func (e *Engine) Stats() history.Stats {
	return e.history.Stats()
}

// History returns up to limit recent scans, newest first. A non-positive
// limit returns the default number of scans.
func (e *Engine) History(limit int) []history.Record {
	return e.history.Recent(limit)
}

// ModelInfo describes the classifier in use.
func (e *Engine) ModelInfo() classifier.ModelInfo {
	return e.scorer.Info()
}

// CollectorNames lists the collectors run by Analyze, in merge order.
func (e *Engine) CollectorNames() []string {
	return e.pipeline.CollectorNames()
}
