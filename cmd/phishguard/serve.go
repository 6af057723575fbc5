package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leaderofARS/anti-phishing-system/internal/config"
	"github.com/leaderofARS/anti-phishing-system/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve starts the HTTP API used by the browser extension and the dashboard.

Endpoints:
  GET  /                      service information
  GET  /health                liveness probe
  POST /api/analyze           full analysis of {"url": "...", "context": "..."}
  GET  /api/check/{url}       lexical quick check, no network access
  POST /api/report            accept a phishing report
  GET  /api/stats             tier counters since start
  GET  /api/history?limit=N   recent verdicts, newest first
  GET  /api/blacklist         list blacklist entries
  POST /api/blacklist/add     add ?domain= to the blacklist
  GET  /api/whitelist         list whitelist entries
  POST /api/whitelist/add     add ?domain= to the whitelist
  GET  /api/model             classifier metadata

Send SIGHUP to reload the list files without restarting.

Examples:
  # Listen on the default port 8000
  phishguard serve

  # Listen on localhost only and archive every verdict
  phishguard serve -l 127.0.0.1:8080 --archive

  # Probe suspicious sites through Tor
  phishguard serve --embedded-tor`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"HTTP listen address")
	cmd.Flags().String("cors-origin", config.DefaultCORSOrigin,
		"Allowed CORS origin (\"*\" echoes the request origin)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	go reloadOnHangup(ctx, a)

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithCORSOrigin(cfg.CORSOrigin),
	}
	if v := getVersion(); v != "(devel)" {
		opts = append(opts, server.WithVersion(v))
	}

	logger.Info("starting server",
		"listen", cfg.ListenAddress,
		"collectors", a.engine.CollectorNames(),
		"model", a.model.Info().Variant,
		"archive", cfg.SaveToDB,
	)
	return server.New(a.engine, opts...).ListenAndServe(ctx, cfg.ListenAddress)
}

// reloadOnHangup re-reads the list files on every SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, a *app) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			a.engine.ReloadLists()
			a.logger.Info("override lists reloaded")
		}
	}
}
