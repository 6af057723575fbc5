// Package history keeps the in-memory scan log and the running tier
// counters.
package history

import (
	"sync"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/policy"
)

const (
	// DefaultCapacity is how many records the log keeps.
	DefaultCapacity = 100
	// DefaultLimit is how many records Recent returns for a non-positive
	// limit.
	DefaultLimit = 20
)

// Record is one completed analysis.
type Record struct {
	ID         int64         `json:"id"`
	URL        string        `json:"url"`
	Tier       policy.Tier   `json:"risk_level"`
	Score      float64       `json:"risk_score"`
	Confidence float64       `json:"confidence"`
	Timestamp  time.Time     `json:"timestamp"`
	ScanTime   float64       `json:"scan_time"` // seconds
	Duration   time.Duration `json:"-"`
}

// Stats are cumulative counts since the store was created. Eviction from
// the log does not decrement them.
type Stats struct {
	Total      int64 `json:"total_scans"`
	Dangerous  int64 `json:"phishing_detected"`
	Safe       int64 `json:"safe_urls"`
	Suspicious int64 `json:"suspicious_urls"`
}

// Entry is what callers hand to Append; the store assigns the ID.
type Entry struct {
	URL        string
	Tier       policy.Tier
	Score      float64
	Confidence float64
	Timestamp  time.Time
	Duration   time.Duration
}

// Store owns the scan log and the stats. The log and the counters are
// updated in the same critical section so a reader never sees one without
// the other.
type Store struct {
	mu       sync.Mutex
	capacity int
	nextID   int64
	records  []Record // newest first
	stats    Stats
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity overrides DefaultCapacity. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{capacity: DefaultCapacity, nextID: 1}
	for _, opt := range opts {
		opt(s)
	}
	s.records = make([]Record, 0, s.capacity)
	return s
}

// Append records e at the head of the log, evicting the oldest record once
// the log is full, and bumps the counters.
func (s *Store) Append(e Entry) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Record{
		ID:         s.nextID,
		URL:        e.URL,
		Tier:       e.Tier,
		Score:      e.Score,
		Confidence: e.Confidence,
		Timestamp:  e.Timestamp,
		ScanTime:   e.Duration.Seconds(),
		Duration:   e.Duration,
	}
	s.nextID++

	if len(s.records) == s.capacity {
		s.records = s.records[:len(s.records)-1]
	}
	s.records = append(s.records, Record{})
	copy(s.records[1:], s.records[:len(s.records)-1])
	s.records[0] = r

	s.stats.Total++
	switch e.Tier {
	case policy.TierDangerous:
		s.stats.Dangerous++
	case policy.TierSuspicious:
		s.stats.Suspicious++
	default:
		s.stats.Safe++
	}
	return r
}

// Recent returns up to limit records, newest first. A non-positive limit
// means DefaultLimit.
func (s *Store) Recent(limit int) []Record {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]Record, limit)
	copy(out, s.records[:limit])
	return out
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
