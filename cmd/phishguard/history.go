package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leaderofARS/anti-phishing-system/internal/database"
	"github.com/leaderofARS/anti-phishing-system/internal/history"
	"github.com/leaderofARS/anti-phishing-system/internal/policy"
	"github.com/leaderofARS/anti-phishing-system/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived verdicts",
		Long: `History reads the SQLite scan archive written by analyze and serve when
--archive is enabled, and prints recent verdicts with per-tier totals.

Examples:
  # Last 20 verdicts
  phishguard history

  # Dangerous verdicts for one host, as Markdown with a pie chart
  phishguard history --level dangerous --host paypal-verify.tk -m`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", history.DefaultLimit,
		"Maximum number of verdicts to show")
	cmd.Flags().Int64("id", 0,
		"Show only the archived verdict with this ID")
	cmd.Flags().String("host", "",
		"Only show verdicts for this host")
	cmd.Flags().String("level", "",
		"Only show verdicts of this risk level (safe, suspicious, dangerous)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file (creates directories if needed)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	filter := database.ScanFilter{}
	if filter.Limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if filter.Host, err = cmd.Flags().GetString("host"); err != nil {
		return err
	}
	level, err := cmd.Flags().GetString("level")
	if err != nil {
		return err
	}
	if level != "" {
		tier, err := policy.ParseTier(level)
		if err != nil {
			return err
		}
		filter.RiskLevel = tier.String()
	}

	db, err := openArchive(cfg.DBDir)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	var scans []database.ScanRecord
	if id, _ := cmd.Flags().GetInt64("id"); id > 0 {
		rec, err := db.GetScan(ctx, id)
		if err != nil {
			return err
		}
		scans = append(scans, *rec)
	} else if scans, err = db.RecentScans(ctx, filter); err != nil {
		return fmt.Errorf("failed to read scans: %w", err)
	}
	counts, err := db.CountByLevel(ctx)
	if err != nil {
		return fmt.Errorf("failed to count scans: %w", err)
	}

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // Write errors surface from the writer

	_, err = newReportWriter(out, cfg).WriteHistory(report.FromScans(scans, counts, db.Path()))
	return err
}

// openArchive opens an existing scan archive for reading.
func openArchive(dir string) (*database.ScanDB, error) {
	db, err := database.Open(dir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrNotFound) {
		return nil, errArchiveMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
