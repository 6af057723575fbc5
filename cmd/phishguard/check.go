package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
	"github.com/leaderofARS/anti-phishing-system/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Quick lexical safety check without network access",
		Long: `Check applies the quick heuristic used by the browser extension before a
full analysis: a URL is considered safe when it uses HTTPS, its host is not
an IP address and it contains fewer than two suspicious keywords.

No network request is made and the model is not consulted.

Examples:
  phishguard check https://example.com/login
  phishguard check --json "http://10.0.0.1/verify-account"`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	res := lexical.QuickCheck(args[0])
	out := cmd.OutOrStdout()

	if asJSON {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(res)
		return err
	}

	verdict := "SAFE"
	if !res.IsSafe {
		verdict = "UNSAFE"
	}
	fmt.Fprintf(out, "URL:         %s\n", res.URL)
	fmt.Fprintf(out, "Verdict:     %s\n", verdict)
	fmt.Fprintf(out, "HTTPS:       %s\n", yesNo(res.Features.HasHTTPS))
	fmt.Fprintf(out, "IP literal:  %s\n", yesNo(res.Features.HasIP))
	fmt.Fprintf(out, "Keywords:    %d\n", res.Features.SuspiciousKeywords)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
