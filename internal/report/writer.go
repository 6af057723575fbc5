package report

import (
	"io"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leaderofARS/anti-phishing-system/internal/database"
	"github.com/leaderofARS/anti-phishing-system/internal/engine"
	"github.com/leaderofARS/anti-phishing-system/internal/history"
	"github.com/leaderofARS/anti-phishing-system/internal/policy"
)

// Writer renders phishguard output.
type Writer interface {
	// WriteVerdict renders the result of one analysis.
	WriteVerdict(v *engine.Verdict) (int, error)

	// WriteHistory renders a list of past scans with tier counts.
	WriteHistory(h *History) (int, error)
}

// HistoryEntry is one past scan, from either the in-memory history or the
// SQLite archive.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	RiskLevel  string    `json:"risk_level"`
	RiskScore  float64   `json:"risk_score"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	ScanTime   float64   `json:"scan_time"`
}

// History is the input of WriteHistory.
type History struct {
	// Source names where the entries came from, e.g. the archive path.
	Source  string         `json:"source,omitempty"`
	Stats   history.Stats  `json:"stats"`
	Entries []HistoryEntry `json:"scans"`
}

// FromRecords converts in-memory history records.
func FromRecords(records []history.Record, stats history.Stats) *History {
	h := &History{Stats: stats, Entries: make([]HistoryEntry, len(records))}
	for i, r := range records {
		h.Entries[i] = HistoryEntry{
			ID:         r.ID,
			URL:        r.URL,
			RiskLevel:  r.Tier.String(),
			RiskScore:  r.Score,
			Confidence: r.Confidence,
			Timestamp:  r.Timestamp,
			ScanTime:   r.ScanTime,
		}
	}
	return h
}

// FromScans converts archived scans. counts are the per-level totals of
// the whole archive, as returned by database.ScanDB.CountByLevel.
func FromScans(scans []database.ScanRecord, counts map[string]int64, source string) *History {
	h := &History{Source: source, Entries: make([]HistoryEntry, len(scans))}
	for i, s := range scans {
		h.Entries[i] = HistoryEntry{
			ID:         s.ID,
			URL:        s.URL,
			RiskLevel:  s.RiskLevel,
			RiskScore:  s.RiskScore,
			Confidence: s.Confidence,
			Timestamp:  s.Timestamp,
			ScanTime:   s.ScanTime,
		}
	}
	h.Stats = history.Stats{
		Dangerous:  counts[policy.TierDangerous.String()],
		Safe:       counts[policy.TierSafe.String()],
		Suspicious: counts[policy.TierSuspicious.String()],
	}
	for _, n := range counts {
		h.Stats.Total += n
	}
	return h
}

// MultiWriter writes to several Writers and stops at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteVerdict writes v to every writer.
func (m *MultiWriter) WriteVerdict(v *engine.Verdict) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteVerdict(v)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory writes h to every writer.
func (m *MultiWriter) WriteHistory(h *History) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(h)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// tierTitle renders a tier name for humans, "dangerous" as "Dangerous".
func tierTitle(level string) string {
	return cases.Title(language.English).String(level)
}

// accessText renders the allow_access flag.
func accessText(allow bool) string {
	if allow {
		return "ALLOWED"
	}
	return "BLOCKED"
}

// truncateString truncates s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
