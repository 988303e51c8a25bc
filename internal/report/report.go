// Package report aggregates per-file engine outcomes into a run summary.
// The core returns structured results; rendering them for humans or
// machines belongs to the CLI layer.
package report

import (
	"time"

	"logfix/internal/paths"
	"logfix/internal/rewrite"
	"logfix/internal/transaction"
)

// FileReport is one file's contribution to a summary. Paths are shown
// root-relative with forward slashes.
type FileReport struct {
	Path    string                  `json:"path"`
	Outcome transaction.FileOutcome `json:"outcome"`
	Tally   rewrite.Tally           `json:"tally"`
	Changes int                     `json:"changes"`
	Backup  string                  `json:"backup,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// Summary is the aggregate outcome of one run.
type Summary struct {
	RunID          string        `json:"runId"`
	Root           string        `json:"root"`
	DryRun         bool          `json:"dryRun,omitempty"`
	FilesScanned   int           `json:"filesScanned"`
	FilesModified  int           `json:"filesModified"`
	FilesUnchanged int           `json:"filesUnchanged"`
	FilesErrored   int           `json:"filesErrored"`
	Calls          rewrite.Tally `json:"calls"`
	Changes        int           `json:"changes"`
	DurationMs     int64         `json:"durationMs"`

	// Files lists only files with activity: modified or errored.
	Files []FileReport `json:"files,omitempty"`
}

// Build aggregates results into a Summary. Unchanged files count toward
// totals but are omitted from the file list to keep summaries readable on
// large trees.
func Build(runID, root string, dryRun bool, results []transaction.FileResult, duration time.Duration) *Summary {
	s := &Summary{
		RunID:        runID,
		Root:         root,
		DryRun:       dryRun,
		FilesScanned: len(results),
		DurationMs:   duration.Milliseconds(),
	}

	for _, r := range results {
		s.Calls.Add(r.Tally)
		s.Changes += r.Changes

		switch r.Outcome {
		case transaction.FileRewritten:
			s.FilesModified++
		case transaction.FileUnchanged:
			s.FilesUnchanged++
			continue
		case transaction.FileErrored:
			s.FilesErrored++
		}

		backup := ""
		if r.BackupPath != "" {
			backup = paths.DisplayPath(r.BackupPath, root)
		}
		s.Files = append(s.Files, FileReport{
			Path:    paths.DisplayPath(r.Path, root),
			Outcome: r.Outcome,
			Tally:   r.Tally,
			Changes: r.Changes,
			Backup:  backup,
			Error:   r.ErrMessage,
		})
	}

	return s
}
