package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestDB creates a temporary archive for testing.
func setupTestDB(t *testing.T) *ScanDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestOpen tests archive opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates archive in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open archive: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("archive file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false reports a missing archive", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateIfNotExists=false opens an existing archive", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create archive: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen archive: %v", err)
		}
		_ = db.Close()
	})
}

// TestInsertAndQueryScans tests archiving and listing verdicts.
func TestInsertAndQueryScans(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []ScanRecord{
		{
			URL: "https://example.com/", Host: "example.com", RiskLevel: "safe",
			RiskScore: 0.1, Confidence: 0.9, AllowAccess: true, ScanTime: 0.5,
			Features:        map[string]any{"has_https": true, "url_length": 20},
			Recommendations: []string{"This website appears to be safe."},
			Timestamp:       base,
		},
		{
			URL: "http://192.168.1.1/login", Host: "192.168.1.1", RiskLevel: "dangerous",
			RiskScore: 0.9, Confidence: 0.9, ScanTime: 1.5,
			Degraded:  []string{"content"},
			Timestamp: base.Add(time.Minute),
		},
		{
			URL: "https://example.com/account", Host: "example.com", RiskLevel: "suspicious",
			RiskScore: 0.4, Confidence: 0.6, ScanTime: 0.7,
			Timestamp: base.Add(2 * time.Minute),
		},
	}
	for i := range records {
		id, err := db.InsertScan(ctx, &records[i])
		if err != nil {
			t.Fatalf("InsertScan() error = %v", err)
		}
		if id != int64(i+1) {
			t.Errorf("InsertScan() id = %d, want %d", id, i+1)
		}
	}

	t.Run("all newest first", func(t *testing.T) {
		t.Parallel()

		got, err := db.RecentScans(ctx, ScanFilter{})
		if err != nil {
			t.Fatalf("RecentScans() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d scans, want 3", len(got))
		}
		if got[0].URL != "https://example.com/account" || got[2].URL != "https://example.com/" {
			t.Errorf("unexpected order: %q ... %q", got[0].URL, got[2].URL)
		}
		if !got[0].Timestamp.Equal(base.Add(2 * time.Minute)) {
			t.Errorf("timestamp = %v", got[0].Timestamp)
		}
	})

	t.Run("filter by host and level", func(t *testing.T) {
		t.Parallel()

		got, err := db.RecentScans(ctx, ScanFilter{Host: "example.com", RiskLevel: "safe"})
		if err != nil {
			t.Fatalf("RecentScans() error = %v", err)
		}
		if len(got) != 1 || !got[0].AllowAccess {
			t.Fatalf("got %+v, want the single safe example.com scan", got)
		}
		if got[0].Features["has_https"] != true {
			t.Errorf("features = %v", got[0].Features)
		}
		if len(got[0].Recommendations) != 1 {
			t.Errorf("recommendations = %v", got[0].Recommendations)
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		got, err := db.RecentScans(ctx, ScanFilter{Limit: 2})
		if err != nil {
			t.Fatalf("RecentScans() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d scans, want 2", len(got))
		}
	})

	t.Run("get by id", func(t *testing.T) {
		t.Parallel()

		got, err := db.GetScan(ctx, 2)
		if err != nil {
			t.Fatalf("GetScan() error = %v", err)
		}
		if got.Host != "192.168.1.1" || len(got.Degraded) != 1 || got.Degraded[0] != "content" {
			t.Errorf("GetScan(2) = %+v", got)
		}

		if _, err := db.GetScan(ctx, 99); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("count by level", func(t *testing.T) {
		t.Parallel()

		counts, err := db.CountByLevel(ctx)
		if err != nil {
			t.Fatalf("CountByLevel() error = %v", err)
		}
		if counts["safe"] != 1 || counts["dangerous"] != 1 || counts["suspicious"] != 1 {
			t.Errorf("counts = %v", counts)
		}
	})
}

// TestOverrides tests the override audit trail.
func TestOverrides(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	inserts := []OverrideRecord{
		{List: "blacklist", Token: "evil.example", Origin: "api", Timestamp: base},
		{List: "whitelist", Token: "good.example", Origin: "cli", Timestamp: base.Add(time.Second)},
		{List: "blacklist", Token: "worse.example", Timestamp: base.Add(2 * time.Second)},
	}
	for i := range inserts {
		if err := db.InsertOverride(ctx, &inserts[i]); err != nil {
			t.Fatalf("InsertOverride() error = %v", err)
		}
	}

	black, err := db.Overrides(ctx, "blacklist")
	if err != nil {
		t.Fatalf("Overrides() error = %v", err)
	}
	if len(black) != 2 || black[0].Token != "worse.example" || black[1].Origin != "api" {
		t.Errorf("blacklist overrides = %+v", black)
	}

	all, err := db.Overrides(ctx, "")
	if err != nil {
		t.Fatalf("Overrides() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d overrides, want 3", len(all))
	}
}

// TestParseTimestamp tests the accepted timestamp formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		zero  bool
	}{
		{input: "2025-03-01T12:00:00.123456789Z"},
		{input: "2025-03-01T12:00:00Z"},
		{input: "2025-03-01 12:00:00"},
		{input: "2025-03-01T12:00:00"},
		{input: "not a time", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v", tt.input, got)
			}
		})
	}
}
