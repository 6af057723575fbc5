package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/classifier"
	"github.com/leaderofARS/anti-phishing-system/internal/database"
	"github.com/leaderofARS/anti-phishing-system/internal/feature"
	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
	"github.com/leaderofARS/anti-phishing-system/internal/override"
	"github.com/leaderofARS/anti-phishing-system/internal/pipeline"
	"github.com/leaderofARS/anti-phishing-system/internal/policy"
)

// fixedScorer returns the same score for every vector.
type fixedScorer struct {
	risk, confidence float64
	calls            atomic.Int32
}

func (s *fixedScorer) Score(feature.Vector) (float64, float64) {
	s.calls.Add(1)
	return s.risk, s.confidence
}

func (s *fixedScorer) Info() classifier.ModelInfo {
	return classifier.ModelInfo{Variant: "fixed", ModelType: "test"}
}

// failingCollector always fails.
type failingCollector struct{}

func (failingCollector) Name() string { return "failing" }

func (failingCollector) Defaults() feature.Vector {
	v := feature.New()
	v.SetInt(feature.DomainAgeDays, feature.UnknownDomainAge)
	return v
}

func (failingCollector) Collect(context.Context, string) (feature.Vector, error) {
	return nil, errors.New("connection refused")
}

// recordingArchive keeps archived rows in memory.
type recordingArchive struct {
	mu        sync.Mutex
	scans     []database.ScanRecord
	overrides []database.OverrideRecord
	err       error
}

func (a *recordingArchive) InsertScan(_ context.Context, rec *database.ScanRecord) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return 0, a.err
	}
	a.scans = append(a.scans, *rec)
	return int64(len(a.scans)), nil
}

func (a *recordingArchive) InsertOverride(_ context.Context, rec *database.OverrideRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.overrides = append(a.overrides, *rec)
	return nil
}

// newLists writes the given list files into a temp dir and loads them.
func newLists(t *testing.T, black, white string) (*override.Lists, override.Paths) {
	t.Helper()

	dir := t.TempDir()
	paths := override.Paths{
		Blacklist: filepath.Join(dir, "blacklist.txt"),
		Whitelist: filepath.Join(dir, "whitelist.txt"),
	}
	if black != "" {
		if err := os.WriteFile(paths.Blacklist, []byte(black), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if white != "" {
		if err := os.WriteFile(paths.Whitelist, []byte(white), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return override.Load(paths), paths
}

// TestAnalyzeOverrides tests that override lists take precedence over the
// classifier.
func TestAnalyzeOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		url         string
		wantTier    policy.Tier
		wantScore   float64
		wantAllow   bool
		wantScored  bool
		blacklisted bool
		whitelisted bool
	}{
		{
			name:        "whitelisted subdomain",
			url:         "https://accounts.google.com/",
			wantTier:    policy.TierSafe,
			wantScore:   0.05,
			wantAllow:   true,
			whitelisted: true,
		},
		{
			name:        "blacklisted path",
			url:         "http://evil.test/path",
			wantTier:    policy.TierDangerous,
			wantScore:   0.95,
			blacklisted: true,
		},
		{
			name:        "blacklist beats whitelist",
			url:         "https://www.google.com/evil.test",
			wantTier:    policy.TierDangerous,
			wantScore:   0.95,
			blacklisted: true,
			whitelisted: true,
		},
		{
			name:       "classifier decides",
			url:        "https://example.org/",
			wantTier:   policy.TierSuspicious,
			wantScore:  0.5,
			wantScored: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lists, _ := newLists(t, "evil.test\n", "google.com\n")
			scorer := &fixedScorer{risk: 0.5, confidence: 0.5}
			e := New(lists, scorer)

			v, err := e.Analyze(context.Background(), tt.url, "")
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if v.RiskLevel != tt.wantTier || v.RiskScore != tt.wantScore || v.AllowAccess != tt.wantAllow {
				t.Errorf("got %v/%v/allow=%v, want %v/%v/allow=%v",
					v.RiskLevel, v.RiskScore, v.AllowAccess, tt.wantTier, tt.wantScore, tt.wantAllow)
			}
			if got := v.Features.Bool(feature.IsBlacklisted); got != tt.blacklisted {
				t.Errorf("is_blacklisted = %v, want %v", got, tt.blacklisted)
			}
			if got := v.Features.Bool(feature.IsWhitelisted); got != tt.whitelisted {
				t.Errorf("is_whitelisted = %v, want %v", got, tt.whitelisted)
			}
			if scored := scorer.calls.Load() > 0; scored != tt.wantScored {
				t.Errorf("classifier consulted = %v, want %v", scored, tt.wantScored)
			}
			if len(v.Recommendations) == 0 {
				t.Error("expected recommendations")
			}
		})
	}
}

// TestAnalyzeIPLiteralScenario tests the IP literal credential phish with
// the synthetic model and lexical features only.
func TestAnalyzeIPLiteralScenario(t *testing.T) {
	t.Parallel()

	lists, _ := newLists(t, "", "")
	e := New(lists, classifier.NewSynthetic())

	v, err := e.Analyze(context.Background(), "http://192.168.1.1/login-verify-account-suspended", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if v.RiskLevel == policy.TierSafe {
		t.Errorf("risk level = %v (score %v), want suspicious or dangerous", v.RiskLevel, v.RiskScore)
	}
	if v.AllowAccess {
		t.Error("expected access to be denied")
	}
	if !v.Features.Bool(feature.HasIP) {
		t.Error("expected has_ip")
	}
}

// TestAnalyzeAddOverrideThenBlacklisted tests that a runtime addition is
// visible to the next analysis.
func TestAnalyzeAddOverrideThenBlacklisted(t *testing.T) {
	t.Parallel()

	lists, paths := newLists(t, "", "")
	archive := &recordingArchive{}
	e := New(lists, &fixedScorer{risk: 0.1, confidence: 0.9}, WithArchive(archive))
	ctx := context.Background()

	res, err := e.AddOverride(ctx, override.Blacklist, "  Evil.TEST ", "test")
	if err != nil {
		t.Fatalf("AddOverride() error = %v", err)
	}
	if !res.Success || res.Message != "Added evil.test to blacklist" {
		t.Errorf("AddOverride() = %+v", res)
	}

	res, err = e.AddOverride(ctx, override.Blacklist, "evil.test", "test")
	if err != nil {
		t.Fatalf("second AddOverride() error = %v", err)
	}
	if res.Success || res.Message != "Domain already in blacklist" {
		t.Errorf("second AddOverride() = %+v", res)
	}

	v, err := e.Analyze(ctx, "http://evil.test/path", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !v.Features.Bool(feature.IsBlacklisted) || v.RiskLevel != policy.TierDangerous {
		t.Errorf("got %v with is_blacklisted=%v", v.RiskLevel, v.Features.Bool(feature.IsBlacklisted))
	}

	data, err := os.ReadFile(paths.Blacklist)
	if err != nil {
		t.Fatalf("manual blacklist not written: %v", err)
	}
	if strings.TrimSpace(string(data)) != "evil.test" {
		t.Errorf("manual blacklist = %q", data)
	}

	domains, err := e.ListOverrides(override.Blacklist)
	if err != nil || len(domains) != 1 || domains[0] != "evil.test" {
		t.Errorf("ListOverrides() = %v, %v", domains, err)
	}

	if len(archive.overrides) != 1 || archive.overrides[0].Origin != "test" {
		t.Errorf("archived overrides = %+v", archive.overrides)
	}
	if len(archive.scans) != 1 || archive.scans[0].RiskLevel != "dangerous" || archive.scans[0].Host != "evil.test" {
		t.Errorf("archived scans = %+v", archive.scans)
	}
}

// TestAddOverrideErrors tests failures other than duplicates.
func TestAddOverrideErrors(t *testing.T) {
	t.Parallel()

	lists, _ := newLists(t, "", "")
	e := New(lists, &fixedScorer{})

	if _, err := e.AddOverride(context.Background(), override.Whitelist, "   ", "test"); !errors.Is(err, override.ErrEmptyToken) {
		t.Errorf("expected ErrEmptyToken, got %v", err)
	}
	if _, err := e.AddOverride(context.Background(), override.Kind(7), "x.example", "test"); !errors.Is(err, override.ErrUnknownList) {
		t.Errorf("expected ErrUnknownList, got %v", err)
	}
}

// TestAnalyzeDegradedCollector tests that a failing collector degrades to
// its defaults without failing the analysis.
func TestAnalyzeDegradedCollector(t *testing.T) {
	t.Parallel()

	lists, _ := newLists(t, "", "")
	p := pipeline.New(pipeline.WithCollectorTimeout(time.Second))
	p.AddCollector(lexical.NewCollector(), failingCollector{})
	e := New(lists, &fixedScorer{risk: 0.2, confidence: 0.8}, WithPipeline(p))

	v, err := e.Analyze(context.Background(), "https://example.com/", "")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got := v.Features.Int(feature.DomainAgeDays); got != feature.UnknownDomainAge {
		t.Errorf("domain_age_days = %d, want %d", got, feature.UnknownDomainAge)
	}
	if d := v.Degraded(); len(d) != 1 || d[0] != "failing" {
		t.Errorf("Degraded() = %v, want [failing]", d)
	}
	if got := e.CollectorNames(); len(got) != 2 || got[0] != lexical.Name {
		t.Errorf("CollectorNames() = %v", got)
	}
}

// TestAnalyzeFailures tests errors surfaced as ErrAnalysisFailed.
func TestAnalyzeFailures(t *testing.T) {
	t.Parallel()

	lists, _ := newLists(t, "", "")
	e := New(lists, &fixedScorer{})

	if _, err := e.Analyze(context.Background(), "  ", ""); !errors.Is(err, ErrAnalysisFailed) || !errors.Is(err, ErrEmptyURL) {
		t.Errorf("blank url: got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Analyze(ctx, "https://example.com/", ""); !errors.Is(err, ErrAnalysisFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got %v", err)
	}

	if st := e.Stats(); st.Total != 0 {
		t.Errorf("failed analyses were counted: %+v", st)
	}
}

// TestHistoryAndStats tests that analyses are recorded newest first and
// counted per tier.
func TestHistoryAndStats(t *testing.T) {
	t.Parallel()

	lists, _ := newLists(t, "bad.example\n", "good.example\n")
	e := New(lists, &fixedScorer{risk: 0.5, confidence: 0.5})
	ctx := context.Background()

	urls := []string{
		"https://good.example/",
		"https://bad.example/",
		"https://unknown.example/",
	}
	for _, u := range urls {
		if _, err := e.Analyze(ctx, u, "found in an email"); err != nil {
			t.Fatalf("Analyze(%q) error = %v", u, err)
		}
	}

	got := e.History(0)
	if len(got) != 3 {
		t.Fatalf("History(0) returned %d records, want 3", len(got))
	}
	if got[0].URL != "https://unknown.example/" || got[0].ID != 3 {
		t.Errorf("newest record = %+v", got[0])
	}

	st := e.Stats()
	if st.Total != 3 || st.Safe != 1 || st.Dangerous != 1 || st.Suspicious != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

// TestArchiveFailureIsNotFatal tests that archive errors are only logged.
func TestArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	lists, _ := newLists(t, "", "")
	e := New(lists, &fixedScorer{risk: 0.1, confidence: 0.9}, WithArchive(&recordingArchive{err: errors.New("disk full")}))

	if _, err := e.Analyze(context.Background(), "https://example.com/", ""); err != nil {
		t.Errorf("Analyze() error = %v", err)
	}
	if res, err := e.AddOverride(context.Background(), override.Whitelist, "example.com", "test"); err != nil || !res.Success {
		t.Errorf("AddOverride() = %+v, %v", res, err)
	}
}

// TestAnalyzeBatch tests bounded concurrent analysis.
func TestAnalyzeBatch(t *testing.T) {
	t.Parallel()

	lists, _ := newLists(t, "", "")
	e := New(lists, &fixedScorer{risk: 0.9, confidence: 0.9})

	urls := []string{"https://a.example/", "", "https://c.example/"}
	items, err := e.AnalyzeBatch(context.Background(), urls, 2)
	if err != nil {
		t.Fatalf("AnalyzeBatch() error = %v", err)
	}
	if len(items) != len(urls) {
		t.Fatalf("got %d items, want %d", len(items), len(urls))
	}
	for i, item := range items {
		if item.URL != urls[i] {
			t.Errorf("item %d URL = %q, want %q", i, item.URL, urls[i])
		}
	}
	if !errors.Is(items[1].Err, ErrEmptyURL) {
		t.Errorf("empty url error = %v", items[1].Err)
	}
	if items[0].Value == nil || items[0].Value.RiskLevel != policy.TierDangerous {
		t.Errorf("first item = %+v", items[0])
	}
}

// TestArchiveWithScanDB tests the engine against a real SQLite archive.
func TestArchiveWithScanDB(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	lists, _ := newLists(t, "", "")
	e := New(lists, &fixedScorer{risk: 0.8, confidence: 0.8}, WithArchive(db))

	if _, err := e.Analyze(context.Background(), "http://phish.example/login", ""); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	scans, err := db.RecentScans(context.Background(), database.ScanFilter{})
	if err != nil {
		t.Fatalf("RecentScans() error = %v", err)
	}
	if len(scans) != 1 || scans[0].RiskLevel != "dangerous" || scans[0].Host != "phish.example" {
		t.Errorf("archived = %+v", scans)
	}
}

// TestQuickCheckAndModelInfo tests the pass-through operations.
func TestQuickCheckAndModelInfo(t *testing.T) {
	t.Parallel()

	lists, _ := newLists(t, "", "")
	e := New(lists, &fixedScorer{})

	if !e.QuickCheck("https://example.com/").IsSafe {
		t.Error("expected https://example.com/ to pass the quick check")
	}
	if e.QuickCheck("http://10.0.0.1/login/verify").IsSafe {
		t.Error("expected ip literal to fail the quick check")
	}
	if e.Stats().Total != 0 {
		t.Error("quick check must not be recorded")
	}
	if got := e.ModelInfo().Variant; got != "fixed" {
		t.Errorf("ModelInfo().Variant = %q", got)
	}
}
