package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for PhishGuard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phishguard",
		Short: "URL phishing risk engine",
		Long: `PhishGuard rates URLs as safe, suspicious or dangerous.

Each URL is scored from lexical features, domain age, the TLS certificate
and the fetched page, combined by a logistic regression model. Manual
blacklist and whitelist entries override the model.

Settings are read, in increasing priority, from defaults, a .env file,
the .phishguard YAML file, PHISHGUARD_* environment variables and flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "",
		"Configuration file path (default: .phishguard in current or home directory)")
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.Bool("log-json", false, "Write logs as JSON")
	pf.Bool("offline", false, "Skip the WHOIS, TLS and page collectors")
	pf.String("proxy", "", "Route network collectors through a SOCKS5 proxy (host:port)")
	pf.Bool("embedded-tor", false, "Start a private Tor daemon and route network collectors through it")
	pf.String("lists-dir", "", "Directory holding blacklist.txt, whitelist.txt and the phishing feed")
	pf.String("model-dir", "", "Directory holding the persisted model")
	pf.String("db-dir", "", "Directory of the SQLite scan archive")
	pf.Bool("archive", false, "Archive every verdict to the SQLite database")
	pf.Duration("collector-timeout", 0, "Timeout of each collector (default 5s)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewModelCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
