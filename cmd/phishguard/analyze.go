package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leaderofARS/anti-phishing-system/internal/config"
	"github.com/leaderofARS/anti-phishing-system/internal/engine"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url>...",
		Short: "Analyze one or more URLs",
		Long: `Analyze runs every collector against each URL and prints the verdict.

Examples:
  # Analyze a single URL
  phishguard analyze "http://192.168.1.1/login-verify-account-suspended"

  # Analyze several URLs, eight at a time, as JSON
  phishguard analyze -b 8 --json https://a.example https://b.example

  # Lexical features and lists only, written to a Markdown file
  phishguard analyze --offline -m -o report.md https://example.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses")
	cmd.Flags().String("context", "",
		"Text the URL was found in, such as the email body (single URL only)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file (creates directories if needed)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Targets = args
	if err := cfg.ValidateTargets(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	analysisContext, err := cmd.Flags().GetString("context")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // Write errors surface from the writer

	verdicts, err := analyzeTargets(ctx, a.engine, cfg, analysisContext)
	w := newReportWriter(out, cfg)
	for _, v := range verdicts {
		if _, werr := w.WriteVerdict(v); werr != nil {
			return fmt.Errorf("failed to write report: %w", werr)
		}
	}
	return err
}

// analyzeTargets analyzes cfg.Targets, in batch when there are several.
// Verdicts keep the input order; the first failure is returned after all
// targets were tried.
func analyzeTargets(ctx context.Context, eng *engine.Engine, cfg *config.Config, analysisContext string) ([]*engine.Verdict, error) {
	if len(cfg.Targets) == 1 {
		v, err := eng.Analyze(ctx, cfg.Targets[0], analysisContext)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Targets[0], err)
		}
		return []*engine.Verdict{v}, nil
	}

	items, err := eng.AnalyzeBatch(ctx, cfg.Targets, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	verdicts := make([]*engine.Verdict, 0, len(items))
	var firstErr error
	for _, item := range items {
		if item.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", item.URL, item.Err)
			}
			continue
		}
		verdicts = append(verdicts, item.Value)
	}
	return verdicts, firstErr
}
