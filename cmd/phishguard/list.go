package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leaderofARS/anti-phishing-system/internal/override"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list {blacklist|whitelist} [show | add <domain> | audit]",
		Short: "Show or extend the override lists",
		Long: `List prints or extends the manual blacklist and whitelist.

A blacklist entry matches any URL containing it; a whitelist entry matches
URLs whose host contains it. Both override the model. Additions are
appended to the list file in the lists directory, so a running server
picks them up on SIGHUP.

With --archive, additions are also recorded in the scan archive together
with where they came from (cli or api); audit prints that record.

Examples:
  phishguard list blacklist
  phishguard list whitelist add example.com
  phishguard list blacklist audit`,
		Args: cobra.RangeArgs(1, 3),
		RunE: runListCmd,
	}
	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, args []string) error {
	kind, err := override.ParseKind(args[0])
	if err != nil {
		return err
	}

	action := "show"
	if len(args) > 1 {
		action = args[1]
	}
	switch {
	case action == "show" && len(args) <= 2:
	case action == "add" && len(args) == 3:
	case action == "audit" && len(args) == 2:
	case action == "add":
		return fmt.Errorf("usage: list %s add <domain>", kind)
	default:
		return fmt.Errorf("unknown action %q (expected show, add or audit)", action)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if action == "audit" {
		return runListAudit(cmd, cfg.DBDir, kind)
	}
	logger := newLogger(cfg)

	a, err := newApp(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if action == "add" {
		res, err := a.engine.AddOverride(cmd.Context(), kind, args[2], "cli")
		if err != nil {
			return fmt.Errorf("failed to add to %s: %w", kind, err)
		}
		fmt.Fprintln(out, res.Message)
		return nil
	}

	domains, err := a.engine.ListOverrides(kind)
	if err != nil {
		return err
	}
	if len(domains) == 0 {
		fmt.Fprintf(out, "The %s is empty.\n", kind)
		return nil
	}
	for _, d := range domains {
		fmt.Fprintln(out, d)
	}
	return nil
}

// runListAudit prints the archived additions to one list, newest first.
func runListAudit(cmd *cobra.Command, dbDir string, kind override.Kind) error {
	db, err := openArchive(dbDir)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.Overrides(cmd.Context(), kind.String())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintf(out, "No archived %s additions.\n", kind)
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%s  %-4s  %s\n", rec.Timestamp.Local().Format(time.DateTime), rec.Origin, rec.Token)
	}
	return nil
}
