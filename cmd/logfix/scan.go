package main

import (
	"fmt"
	"os"
	"strings"

	"logfix/internal/errors"
	"logfix/internal/paths"
	"logfix/internal/rewrite"
	"logfix/internal/walk"

	"github.com/spf13/cobra"
)

var scanOnlyActionable bool

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "List candidate logging calls without modifying anything",
	Long: `Walks the tree under root and reports every candidate call with the
outcome a fix run would produce. No file is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanOnlyActionable, "only-actionable", false,
		"Report only calls that would be rewritten or skipped, not already-converted ones")
	rootCmd.AddCommand(scanCmd)
}

// ScanResponse is the scan command output.
type ScanResponse struct {
	Root         string     `json:"root"`
	FilesScanned int        `json:"filesScanned"`
	Sites        []SiteInfo `json:"sites"`
}

// SiteInfo describes one candidate call found during a scan.
type SiteInfo struct {
	File    string          `json:"file"`
	Line    int             `json:"line"`
	Method  string          `json:"method"`
	Outcome rewrite.Outcome `json:"outcome"`
	Reason  string          `json:"reason,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, logger, err := loadSetup(root)
	if err != nil {
		return err
	}

	engine, err := engineFromConfig(cfg)
	if err != nil {
		return err
	}

	files, err := walk.FindFiles(root, walkOptionsFromConfig(cfg))
	if err != nil {
		return errors.New(errors.IOFailure, "file discovery failed", err)
	}

	resp := &ScanResponse{Root: root, FilesScanned: len(files)}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("Skipping unreadable file", map[string]interface{}{
				"path":  file,
				"error": err.Error(),
			})
			continue
		}

		content := string(data)
		_, results := engine.Rewrite(content)
		for _, r := range results {
			if scanOnlyActionable && r.Outcome == rewrite.Unchanged {
				continue
			}
			resp.Sites = append(resp.Sites, SiteInfo{
				File:    paths.DisplayPath(file, root),
				Line:    lineOf(content, r.Start),
				Method:  r.Method,
				Outcome: r.Outcome,
				Reason:  r.Reason,
			})
		}
	}

	output, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

// lineOf returns the 1-based line number of a byte offset.
func lineOf(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return 1 + strings.Count(content[:offset], "\n")
}
