package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"logfix/internal/history"
	"logfix/internal/report"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *report.Summary:
		return formatSummaryHuman(v)
	case *ScanResponse:
		return formatScanHuman(v)
	case *HistoryResponse:
		return formatHistoryHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// formatSummaryHuman formats a run summary in human-readable format
func formatSummaryHuman(s *report.Summary) (string, error) {
	var b strings.Builder

	title := "Run Summary"
	if s.DryRun {
		title = "Run Summary (dry run, nothing written)"
	}
	b.WriteString(fmt.Sprintf("%s - %s\n", title, s.RunID))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Root: %s\n", s.Root))
	b.WriteString(fmt.Sprintf("Files: %d scanned, %d modified, %d unchanged, %d errored\n",
		s.FilesScanned, s.FilesModified, s.FilesUnchanged, s.FilesErrored))
	b.WriteString(fmt.Sprintf("Calls: %d rewritten, %d skipped unparsable, %d skipped mismatch\n",
		s.Calls.Rewritten, s.Calls.SkippedUnparsable, s.Calls.SkippedMismatch))
	if s.Changes > 0 {
		b.WriteString(fmt.Sprintf("Substitutions: %d\n", s.Changes))
	}
	b.WriteString(fmt.Sprintf("Duration: %dms\n", s.DurationMs))

	if len(s.Files) > 0 {
		b.WriteString("\nFiles:\n")
		for _, f := range s.Files {
			switch {
			case f.Error != "":
				b.WriteString(fmt.Sprintf("  ✗ %s: %s\n", f.Path, f.Error))
			default:
				// Rewrite runs count rewritten calls; substitution runs
				// count rule hits. A file never carries both.
				count := f.Changes
				if f.Tally.Rewritten > 0 {
					count = f.Tally.Rewritten
				}
				b.WriteString(fmt.Sprintf("  ✓ %s (%d changes)\n", f.Path, count))
				if f.Backup != "" {
					b.WriteString(fmt.Sprintf("     backup: %s\n", f.Backup))
				}
			}
		}
	}

	return b.String(), nil
}

// formatScanHuman formats a ScanResponse in human-readable format
func formatScanHuman(resp *ScanResponse) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Scan Results - %s\n", resp.Root))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Scanned %d files, found %d candidate calls\n\n",
		resp.FilesScanned, len(resp.Sites)))

	for _, site := range resp.Sites {
		b.WriteString(fmt.Sprintf("%s:%d %s [%s]", site.File, site.Line, site.Method, site.Outcome))
		if site.Reason != "" {
			b.WriteString(fmt.Sprintf(" (%s)", site.Reason))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// formatHistoryHuman formats a HistoryResponse in human-readable format
func formatHistoryHuman(resp *HistoryResponse) (string, error) {
	var b strings.Builder

	b.WriteString("Run History\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Runs) == 0 {
		b.WriteString("No recorded runs.\n")
		return b.String(), nil
	}

	for _, r := range resp.Runs {
		dryMarker := ""
		if r.DryRun {
			dryMarker = " [dry run]"
		}
		b.WriteString(fmt.Sprintf("%s  %s  %-6s%s\n", r.ID, r.StartedAt, r.Command, dryMarker))
		b.WriteString(fmt.Sprintf("  files: %d scanned, %d modified, %d errored; calls: %d rewritten\n",
			r.FilesScanned, r.FilesModified, r.FilesErrored, r.CallsRewritten))
	}

	if len(resp.Files) > 0 {
		b.WriteString("\nFile outcomes:\n")
		for _, f := range resp.Files {
			b.WriteString(fmt.Sprintf("  %-10s %s (%d changes)\n", f.Outcome, f.Path, f.Changes))
		}
	}

	return b.String(), nil
}

// HistoryResponse is the history command output.
type HistoryResponse struct {
	Runs  []history.RunRecord  `json:"runs"`
	Files []history.FileRecord `json:"files,omitempty"`
}
