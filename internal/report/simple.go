package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/engine"
)

// SimpleWriter outputs plain text for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the feature vector and collector details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteVerdict writes v as a text block.
func (w *SimpleWriter) WriteVerdict(v *engine.Verdict) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "PHISHGUARD VERDICT")

	fmt.Fprintf(&sb, "URL:         %s\n", v.URL)
	fmt.Fprintf(&sb, "Risk Level:  %s %s\n", tierIndicator(v.RiskLevel.String()), tierTitle(v.RiskLevel.String()))
	fmt.Fprintf(&sb, "Risk Score:  %.2f\n", v.RiskScore)
	fmt.Fprintf(&sb, "Confidence:  %.2f\n", v.Confidence)
	fmt.Fprintf(&sb, "Access:      %s\n", accessText(v.AllowAccess))
	fmt.Fprintf(&sb, "Decided By:  %s\n", v.Source)
	fmt.Fprintf(&sb, "Scan Time:   %.3fs\n\n", v.ScanTime)

	writeSection(&sb, "RECOMMENDATIONS")
	for _, r := range v.Recommendations {
		fmt.Fprintf(&sb, "  * %s\n", r)
	}
	sb.WriteString("\n")

	writeSection(&sb, "COLLECTORS")
	for _, r := range v.Collectors {
		fmt.Fprintf(&sb, "  %-12s %-9s %8s", r.Name, r.Status, r.Duration.Round(time.Millisecond))
		if r.Reason != "" {
			fmt.Fprintf(&sb, "  %s", truncateString(r.Reason, 60))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if w.verbose {
		writeSection(&sb, "FEATURES")
		for _, name := range v.Features.Names() {
			fmt.Fprintf(&sb, "  %-26s %v\n", name, v.Features[name])
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory writes h as a text table.
func (w *SimpleWriter) WriteHistory(h *History) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "PHISHGUARD SCAN HISTORY")
	if h.Source != "" {
		fmt.Fprintf(&sb, "Source: %s\n\n", h.Source)
	}

	writeSection(&sb, "STATISTICS")
	fmt.Fprintf(&sb, "  Total scans:        %d\n", h.Stats.Total)
	fmt.Fprintf(&sb, "  Phishing detected:  %d\n", h.Stats.Dangerous)
	fmt.Fprintf(&sb, "  Suspicious:         %d\n", h.Stats.Suspicious)
	fmt.Fprintf(&sb, "  Safe:               %d\n\n", h.Stats.Safe)

	writeSection(&sb, "RECENT SCANS")
	if len(h.Entries) == 0 {
		sb.WriteString("  No scans recorded\n\n")
	}
	for _, e := range h.Entries {
		fmt.Fprintf(&sb, "  #%-5d %s %-10s %.2f  %s  %s\n",
			e.ID,
			tierIndicator(e.RiskLevel),
			e.RiskLevel,
			e.RiskScore,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			truncateString(e.URL, 60),
		)
	}
	if len(h.Entries) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	pad := max(0, (70-len(title))/2)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// tierIndicator returns a short ASCII marker for a risk level.
func tierIndicator(level string) string {
	switch level {
	case "dangerous":
		return "[!!]"
	case "suspicious":
		return "[!] "
	case "safe":
		return "[ok]"
	default:
		return "[?] "
	}
}
