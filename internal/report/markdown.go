package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/leaderofARS/anti-phishing-system/internal/engine"
	"github.com/leaderofARS/anti-phishing-system/internal/policy"
)

// MarkdownWriter outputs GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteVerdict writes v as a Markdown document.
func (w *MarkdownWriter) WriteVerdict(v *engine.Verdict) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("PhishGuard Verdict")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + v.URL + "`"},
			{"Risk Level", tierEmoji(v.RiskLevel) + " " + tierTitle(v.RiskLevel.String())},
			{"Risk Score", strconv.FormatFloat(v.RiskScore, 'f', 2, 64)},
			{"Confidence", strconv.FormatFloat(v.Confidence, 'f', 2, 64)},
			{"Access", accessText(v.AllowAccess)},
			{"Decided By", string(v.Source)},
			{"Scan Time", fmt.Sprintf("%.3fs", v.ScanTime)},
		},
	})
	md.PlainText("")

	switch v.RiskLevel {
	case policy.TierDangerous:
		md.Cautionf("This URL is rated dangerous (score %.2f). Do not open it.", v.RiskScore)
	case policy.TierSuspicious:
		md.Warningf("This URL shows phishing traits (score %.2f). Verify it before opening.", v.RiskScore)
	default:
		md.Tip("No significant phishing indicators detected.")
	}
	md.PlainText("")

	md.H2("Recommendations")
	md.PlainText("")
	md.BulletList(v.Recommendations...)
	md.PlainText("")

	md.H2("Collectors")
	md.PlainText("")
	rows := make([][]string, len(v.Collectors))
	for i, r := range v.Collectors {
		reason := r.Reason
		if reason == "" {
			reason = "-"
		}
		rows[i] = []string{r.Name, r.Status.String(), r.Duration.Round(time.Millisecond).String(), truncateString(reason, 60)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Collector", "Status", "Duration", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")

	featureRows := make([][]string, 0, len(v.Features))
	for _, name := range v.Features.Names() {
		featureRows = append(featureRows, []string{"`" + name + "`", fmt.Sprint(v.Features[name])})
	}
	features := markdown.NewMarkdown(io.Discard)
	features.Table(markdown.TableSet{Header: []string{"Feature", "Value"}, Rows: featureRows})
	md.Details("Features", "\n"+features.String())
	md.PlainText("")

	writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteHistory writes h as a Markdown document with a pie chart of the
// tier counts.
func (w *MarkdownWriter) WriteHistory(h *History) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("PhishGuard Scan History")
	md.PlainText("")
	if h.Source != "" {
		md.PlainTextf("Source: `%s`", h.Source)
		md.PlainText("")
	}

	md.H2("Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Tier", "Count"},
		Rows: [][]string{
			{"🔴 Dangerous", strconv.FormatInt(h.Stats.Dangerous, 10)},
			{"🟠 Suspicious", strconv.FormatInt(h.Stats.Suspicious, 10)},
			{"🟢 Safe", strconv.FormatInt(h.Stats.Safe, 10)},
			{"**Total**", "**" + strconv.FormatInt(h.Stats.Total, 10) + "**"},
		},
	})
	md.PlainText("")

	if h.Stats.Total > 0 {
		writePieChart(md, h)
	}

	md.H2("Recent Scans")
	md.PlainText("")
	if len(h.Entries) == 0 {
		md.PlainText("No scans recorded.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(h.Entries))
		for i, e := range h.Entries {
			rows[i] = []string{
				strconv.FormatInt(e.ID, 10),
				"`" + truncateString(e.URL, 60) + "`",
				tierTitle(e.RiskLevel),
				strconv.FormatFloat(e.RiskScore, 'f', 2, 64),
				e.Timestamp.Format("2006-01-02 15:04:05"),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"ID", "URL", "Risk Level", "Score", "Scanned"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	writeFooter(md)

	return len(md.String()), md.Build()
}

func writePieChart(md *markdown.Markdown, h *History) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Risk Tier Distribution"),
		piechart.WithShowData(true),
	)

	if h.Stats.Dangerous > 0 {
		chart.LabelAndIntValue("Dangerous", uint64(h.Stats.Dangerous))
	}
	if h.Stats.Suspicious > 0 {
		chart.LabelAndIntValue("Suspicious", uint64(h.Stats.Suspicious))
	}
	if h.Stats.Safe > 0 {
		chart.LabelAndIntValue("Safe", uint64(h.Stats.Safe))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [PhishGuard](https://github.com/leaderofARS/anti-phishing-system)*")
}

func tierEmoji(t policy.Tier) string {
	switch t {
	case policy.TierDangerous:
		return "🔴"
	case policy.TierSuspicious:
		return "🟠"
	default:
		return "🟢"
	}
}
