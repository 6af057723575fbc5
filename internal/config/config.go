package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "phishguard"

	// DefaultListenAddress matches the port the browser extension and the
	// dashboard expect.
	DefaultListenAddress = ":8000"

	// DefaultCollectorTimeout bounds each network collector (WHOIS, TLS,
	// page fetch) for a single analysis.
	DefaultCollectorTimeout = 5 * time.Second

	// DefaultBatchSize is the number of URLs analyzed at once by
	// `phishguard analyze` when given several URLs.
	DefaultBatchSize = 4

	// DefaultUserAgent is sent by the content prober.
	DefaultUserAgent = "Mozilla/5.0 (compatible; PhishGuard/1.0; +https://github.com/leaderofARS/anti-phishing-system)"

	// DefaultMaxBodySize limits how much of a page the content prober reads.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultCORSOrigin allows every origin, which the browser extension
	// relies on.
	DefaultCORSOrigin = "*"

	// FeedFileName is the bulk phishing-domain feed inside the lists dir.
	FeedFileName = "ALL-phishing-domains.lst"
	// BlacklistFileName is the manual blacklist inside the lists dir.
	BlacklistFileName = "blacklist.txt"
	// WhitelistFileName is the manual whitelist inside the lists dir.
	WhitelistFileName = "whitelist.txt"
)

// Config holds every option of the server and the CLI. It is built by
// NewConfig and passed down explicitly; nothing reads global state.
type Config struct {
	// ListenAddress is the HTTP listen address of `phishguard serve`.
	ListenAddress string

	// CollectorTimeout bounds each collector of a single analysis.
	CollectorTimeout time.Duration

	// BatchSize is the number of concurrent analyses for multi-URL runs.
	BatchSize int

	// ListsDir holds the feed and the two manual list files.
	ListsDir string

	// ModelDir holds the persisted classifier artifacts. When they are
	// missing the synthetic model is used.
	ModelDir string

	// DBDir is the directory of the SQLite archive.
	DBDir string

	// SaveToDB enables the archive.
	SaveToDB bool

	// Offline skips the WHOIS, TLS and page collectors. Only lexical
	// features and the override lists are used.
	Offline bool

	// ProxyAddress routes the network collectors through a SOCKS5 proxy
	// in "host:port" form. Empty means direct connections.
	ProxyAddress string

	// EmbeddedTor starts a private Tor daemon and routes the collectors
	// through it. It takes precedence over ProxyAddress.
	EmbeddedTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// UserAgent is sent by the content prober.
	UserAgent string

	// MaxBodySize is the number of body bytes the content prober reads.
	MaxBodySize int64

	// CORSOrigin is returned in Access-Control-Allow-Origin.
	CORSOrigin string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches the log output to JSON.
	LogJSON bool

	// JSONReport and MarkdownReport select the CLI output format. They
	// are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes CLI output to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is the YAML file to load. Empty means search for
	// .phishguard in the current and home directories.
	ConfigFilePath string

	// Targets are the URLs given to `phishguard analyze`.
	Targets []string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		ListenAddress:     DefaultListenAddress,
		CollectorTimeout:  DefaultCollectorTimeout,
		BatchSize:         DefaultBatchSize,
		ListsDir:          filepath.Join(XDGDataDir(), "lists"),
		ModelDir:          filepath.Join(XDGDataDir(), "models"),
		DBDir:             XDGDataDir(),
		TorStartupTimeout: DefaultTorStartupTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		CORSOrigin:        DefaultCORSOrigin,
	}
}

// FeedFile returns the path of the bulk phishing-domain feed.
func (c *Config) FeedFile() string {
	return filepath.Join(c.ListsDir, FeedFileName)
}

// BlacklistFile returns the path of the manual blacklist.
func (c *Config) BlacklistFile() string {
	return filepath.Join(c.ListsDir, BlacklistFileName)
}

// WhitelistFile returns the path of the manual whitelist.
func (c *Config) WhitelistFile() string {
	return filepath.Join(c.ListsDir, WhitelistFileName)
}

// XDGDataDir returns the XDG data directory for phishguard.
// On Linux: ~/.local/share/phishguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for phishguard.
// On Linux: ~/.config/phishguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.CollectorTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.ListsDir == "" {
		return ErrNoListsDir
	}
	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}
	if c.EmbeddedTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}
	return nil
}

// ValidateTargets checks that at least one URL was given.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return nil
}
