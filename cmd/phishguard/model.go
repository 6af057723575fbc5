package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leaderofARS/anti-phishing-system/internal/classifier"
	"github.com/leaderofARS/anti-phishing-system/internal/report"
)

// NewModelCmd creates the model command and its subcommands.
func NewModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect or export the classifier",
		Long: `Model shows which classifier the engine uses and exports it.

When no model is found in the model directory, a logistic regression is
trained on a fixed synthetic data set at startup and reported as degraded.`,
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Print model metadata",
		Args:  cobra.NoArgs,
		RunE:  runModelInfoCmd,
	}
	info.Flags().BoolP("json", "j", false, "Output JSON")

	export := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write the current model to a directory",
		Long: `Export writes phishing_detector.json, feature_names.json and
model_metadata.json to dir.
Point --model-dir at it to load the same model on the next start.`,
		Args: cobra.ExactArgs(1),
		RunE: runModelExportCmd,
	}

	cmd.AddCommand(info, export)
	return cmd
}

// runModelInfoCmd executes the model info command.
func runModelInfoCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	info := classifier.Load(cfg.ModelDir, newLogger(cfg)).Info()
	out := cmd.OutOrStdout()

	if asJSON {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(info)
		return err
	}

	fmt.Fprintf(out, "Variant:     %s\n", info.Variant)
	fmt.Fprintf(out, "Type:        %s\n", info.ModelType)
	fmt.Fprintf(out, "Accuracy:    %.4f\n", info.Accuracy)
	fmt.Fprintf(out, "Provenance:  %s\n", info.Provenance)
	fmt.Fprintf(out, "Features:    %d (%s)\n", len(info.Features), strings.Join(info.Features, ", "))
	if info.Degraded {
		fmt.Fprintf(out, "Degraded:    yes (%s)\n", info.Reason)
	}
	return nil
}

// runModelExportCmd executes the model export command.
func runModelExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model := classifier.Load(cfg.ModelDir, newLogger(cfg))
	if err := model.Save(args[0]); err != nil {
		return fmt.Errorf("failed to export model: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s model to %s\n", model.Info().Variant, args[0])
	return nil
}
