package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leaderofARS/anti-phishing-system/internal/certificate"
	"github.com/leaderofARS/anti-phishing-system/internal/classifier"
	"github.com/leaderofARS/anti-phishing-system/internal/config"
	"github.com/leaderofARS/anti-phishing-system/internal/content"
	"github.com/leaderofARS/anti-phishing-system/internal/database"
	"github.com/leaderofARS/anti-phishing-system/internal/domain"
	"github.com/leaderofARS/anti-phishing-system/internal/engine"
	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
	plog "github.com/leaderofARS/anti-phishing-system/internal/log"
	"github.com/leaderofARS/anti-phishing-system/internal/override"
	"github.com/leaderofARS/anti-phishing-system/internal/pipeline"
	"github.com/leaderofARS/anti-phishing-system/internal/report"
	"github.com/leaderofARS/anti-phishing-system/internal/tor"
)

// loadConfig layers defaults, .env, the YAML file, the environment and
// the flags that were set explicitly, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named file must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// applyFlags copies the flags the user set onto cfg. Flags left at their
// defaults do not override the file or the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	strs := map[string]*string{
		"proxy":       &cfg.ProxyAddress,
		"lists-dir":   &cfg.ListsDir,
		"model-dir":   &cfg.ModelDir,
		"db-dir":      &cfg.DBDir,
		"listen":      &cfg.ListenAddress,
		"cors-origin": &cfg.CORSOrigin,
		"output":      &cfg.ReportFile,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	bools := map[string]*bool{
		"verbose":      &cfg.Verbose,
		"log-json":     &cfg.LogJSON,
		"offline":      &cfg.Offline,
		"embedded-tor": &cfg.EmbeddedTor,
		"archive":      &cfg.SaveToDB,
		"json":         &cfg.JSONReport,
		"markdown":     &cfg.MarkdownReport,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Changed("collector-timeout") {
		d, err := flags.GetDuration("collector-timeout")
		if err != nil {
			return err
		}
		cfg.CollectorTimeout = d
	}
	if flags.Changed("batch") {
		n, err := flags.GetInt("batch")
		if err != nil {
			return err
		}
		cfg.BatchSize = n
	}
	return nil
}

// newLogger creates the secure structured logger on stderr.
func newLogger(cfg *config.Config) *slog.Logger {
	return plog.NewLogger(os.Stderr, plog.Options{
		Level: plog.LevelFor(cfg.Verbose, slog.LevelWarn),
		JSON:  cfg.LogJSON,
	})
}

// app holds everything a command builds from the configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	engine *engine.Engine
	model  *classifier.Classifier
	lists  *override.Lists
	db     *database.ScanDB
	tor    *tor.EmbeddedTor
}

// newApp builds the engine. With network false only the lexical collector
// runs, whatever the configuration says.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, network bool) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	a.lists = override.Load(override.Paths{
		Feed:      cfg.FeedFile(),
		Blacklist: cfg.BlacklistFile(),
		Whitelist: cfg.WhitelistFile(),
	}, override.WithLogger(logger))

	if err := os.MkdirAll(cfg.ListsDir, 0o750); err != nil {
		logger.Warn("lists directory is not writable, additions stay in memory", "dir", cfg.ListsDir, "error", err)
	}

	a.model = classifier.Load(cfg.ModelDir, logger)

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithCollectorTimeout(cfg.CollectorTimeout),
	)
	p.AddCollector(lexical.NewCollector())

	if network && !cfg.Offline {
		client, err := a.proxyClient(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		p.AddCollector(networkCollectors(cfg, client, logger)...)
	}

	opts := []engine.Option{
		engine.WithPipeline(p),
		engine.WithLogger(logger),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.db = db
		opts = append(opts, engine.WithArchive(db))
		logger.Info("scan archive opened", "path", db.Path())
	}

	a.engine = engine.New(a.lists, a.model, opts...)
	return a, nil
}

// networkCollectors builds the WHOIS, TLS and page collectors. A non-nil
// client routes all three through its SOCKS5 proxy.
func networkCollectors(cfg *config.Config, client *tor.Client, logger *slog.Logger) []pipeline.Collector {
	whoisOpts := []domain.WhoisOption{domain.WithWhoisTimeout(cfg.CollectorTimeout)}
	certOpts := []certificate.Option{certificate.WithLogger(logger)}
	proberOpts := []content.Option{
		content.WithUserAgent(cfg.UserAgent),
		content.WithMaxBodySize(cfg.MaxBodySize),
		content.WithLogger(logger),
	}

	if client != nil {
		whoisOpts = append(whoisOpts, domain.WithWhoisDialer(client.Dialer()))
		certOpts = append(certOpts, certificate.WithDialer(client))
		proberOpts = append(proberOpts, content.WithHTTPClient(client.NewHTTPClient()))
	}

	return []pipeline.Collector{
		domain.NewCollector(domain.NewWhoisRegistry(whoisOpts...), domain.WithLogger(logger)),
		certificate.NewInspector(certOpts...),
		content.NewProber(proberOpts...),
	}
}

// proxyClient returns the SOCKS5 client the collectors should use, or nil
// for direct connections. The embedded daemon wins over a proxy address.
func (a *app) proxyClient(ctx context.Context) (*tor.Client, error) {
	cfg := a.cfg

	if cfg.EmbeddedTor {
		fmt.Fprintln(os.Stderr, "Starting embedded Tor daemon...")
		fmt.Fprintln(os.Stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.")

		et := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := et.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		a.tor = et

		client, err := et.NewClient(cfg.CollectorTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, fmt.Errorf("embedded Tor proxy check failed: %w", status.Error())
		}
		a.logger.Info("embedded Tor daemon started", "socksAddr", et.SocksAddr())
		return client, nil
	}

	if cfg.ProxyAddress == "" {
		return nil, nil
	}

	client, err := tor.NewClient(cfg.ProxyAddress, cfg.CollectorTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy client: %w", err)
	}
	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		return nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
			status.Error(), cfg.ProxyAddress)
	}
	a.logger.Info("SOCKS5 proxy connection verified", "address", cfg.ProxyAddress)
	return client, nil
}

// Close releases the archive and stops the embedded daemon.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
	}
	if a.tor != nil {
		a.logger.Info("stopping embedded Tor daemon")
		if err := a.tor.Stop(); err != nil {
			a.logger.Error("failed to stop embedded Tor", "error", err)
		}
	}
}

// openOutput returns the report destination: cfg.ReportFile when set,
// otherwise the command's stdout.
func openOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports name the URLs a user visited, so only the owner may read them.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter picks the writer for the configured format.
func newReportWriter(w io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// errArchiveMissing explains how to create the archive.
var errArchiveMissing = errors.New("no scan archive found (run analyze or serve with --archive first)")
