// Package report renders verdicts and scan history for the CLI.
//
// Three formats are provided:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter and FullJSONWriter: JSON for scripts; the verdict object
//     has the same shape as the HTTP API response
//   - MarkdownWriter: GitHub-flavored Markdown with alerts and a mermaid
//     pie chart of the tier distribution
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
