package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the archive directory.
const FileName = "phishguard.db"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ScanDB stores scan verdicts and override additions.
type ScanDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when they
	// are missing. Read-only consumers such as the history command leave it
	// false so that a typo in the path is reported instead of silently
	// creating an empty archive.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the CLI can read while the
	// server writes.
	EnableWAL bool
}

// DefaultOptions returns the options used by the server.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the archive in dbDir.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("archive not found at %s: %w", dbPath, ErrNotFound)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check archive path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

func (sdb *ScanDB) createTables() error {
	schema := `
	-- One row per completed analysis
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		host TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		risk_score REAL NOT NULL,
		confidence REAL NOT NULL,
		allow_access INTEGER NOT NULL,
		scan_time REAL NOT NULL,
		features TEXT,
		recommendations TEXT,
		degraded TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_host ON scans(host);
	CREATE INDEX IF NOT EXISTS idx_scans_level ON scans(risk_level);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);

	-- Override tokens added at runtime
	CREATE TABLE IF NOT EXISTS overrides (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		list TEXT NOT NULL,
		token TEXT NOT NULL,
		origin TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_overrides_list ON overrides(list);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRecord is an archived verdict.
type ScanRecord struct {
	ID              int64
	URL             string
	Host            string
	RiskLevel       string
	RiskScore       float64
	Confidence      float64
	AllowAccess     bool
	ScanTime        float64
	Features        map[string]any
	Recommendations []string
	// Degraded lists the collectors that fell back to defaults.
	Degraded  []string
	Timestamp time.Time
}

// InsertScan archives a verdict and returns its row ID.
func (sdb *ScanDB) InsertScan(ctx context.Context, rec *ScanRecord) (int64, error) {
	featuresJSON, err := json.Marshal(rec.Features)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize features: %w", err)
	}
	recsJSON, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize recommendations: %w", err)
	}
	degradedJSON, err := json.Marshal(rec.Degraded)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize degraded collectors: %w", err)
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
	INSERT INTO scans (url, host, risk_level, risk_score, confidence, allow_access, scan_time, features, recommendations, degraded, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sdb.db.ExecContext(ctx, query,
		rec.URL,
		rec.Host,
		rec.RiskLevel,
		rec.RiskScore,
		rec.Confidence,
		rec.AllowAccess,
		rec.ScanTime,
		string(featuresJSON),
		string(recsJSON),
		string(degradedJSON),
		ts.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}

	return result.LastInsertId()
}

// ScanFilter narrows RecentScans. Zero values match everything.
type ScanFilter struct {
	Host      string
	RiskLevel string
	Limit     int
}

// RecentScans returns archived scans newest first.
func (sdb *ScanDB) RecentScans(ctx context.Context, filter ScanFilter) ([]ScanRecord, error) {
	query := `
	SELECT id, url, host, risk_level, risk_score, confidence, allow_access, scan_time, features, recommendations, degraded, timestamp
	FROM scans
	WHERE 1=1
	`
	args := make([]any, 0, 3)

	if filter.Host != "" {
		query += " AND host = ?"
		args = append(args, filter.Host)
	}
	if filter.RiskLevel != "" {
		query += " AND risk_level = ?"
		args = append(args, filter.RiskLevel)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var results []ScanRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// GetScan returns the scan with the given row ID.
func (sdb *ScanDB) GetScan(ctx context.Context, id int64) (*ScanRecord, error) {
	query := `
	SELECT id, url, host, risk_level, risk_score, confidence, allow_access, scan_time, features, recommendations, degraded, timestamp
	FROM scans
	WHERE id = ?
	`

	rec, err := scanRecord(sdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountByLevel returns how many archived scans fall in each risk level.
func (sdb *ScanDB) CountByLevel(ctx context.Context) (map[string]int64, error) {
	rows, err := sdb.db.QueryContext(ctx, `SELECT risk_level, COUNT(*) FROM scans GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var level string
		var n int64
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[level] = n
	}
	return counts, rows.Err()
}

// OverrideRecord is an archived override addition.
type OverrideRecord struct {
	ID        int64
	List      string
	Token     string
	Origin    string
	Timestamp time.Time
}

// InsertOverride records a token added to a list.
func (sdb *ScanDB) InsertOverride(ctx context.Context, rec *OverrideRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := sdb.db.ExecContext(ctx,
		`INSERT INTO overrides (list, token, origin, timestamp) VALUES (?, ?, ?, ?)`,
		rec.List, rec.Token, rec.Origin, ts.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert override: %w", err)
	}
	return nil
}

// Overrides returns recorded additions to list, newest first. An empty list
// name returns additions to every list.
func (sdb *ScanDB) Overrides(ctx context.Context, list string) ([]OverrideRecord, error) {
	query := `SELECT id, list, token, origin, timestamp FROM overrides`
	var args []any
	if list != "" {
		query += " WHERE list = ?"
		args = append(args, list)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	var results []OverrideRecord
	for rows.Next() {
		var rec OverrideRecord
		var origin sql.NullString
		var timestamp string
		if err := rows.Scan(&rec.ID, &rec.List, &rec.Token, &origin, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		rec.Origin = origin.String
		rec.Timestamp = parseTimestamp(timestamp)
		results = append(results, rec)
	}
	return results, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (ScanRecord, error) {
	var rec ScanRecord
	var featuresJSON, recsJSON, degradedJSON sql.NullString
	var timestamp string

	err := row.Scan(
		&rec.ID,
		&rec.URL,
		&rec.Host,
		&rec.RiskLevel,
		&rec.RiskScore,
		&rec.Confidence,
		&rec.AllowAccess,
		&rec.ScanTime,
		&featuresJSON,
		&recsJSON,
		&degradedJSON,
		&timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Timestamp = parseTimestamp(timestamp)

	if featuresJSON.Valid && featuresJSON.String != "" {
		if err := json.Unmarshal([]byte(featuresJSON.String), &rec.Features); err != nil {
			return rec, fmt.Errorf("failed to parse features: %w", err)
		}
	}
	if recsJSON.Valid && recsJSON.String != "" {
		if err := json.Unmarshal([]byte(recsJSON.String), &rec.Recommendations); err != nil {
			return rec, fmt.Errorf("failed to parse recommendations: %w", err)
		}
	}
	if degradedJSON.Valid && degradedJSON.String != "" {
		// Malformed degraded lists are informational only.
		_ = json.Unmarshal([]byte(degradedJSON.String), &rec.Degraded)
	}

	return rec, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp tries each of timestampFormats and returns the zero time
// when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
