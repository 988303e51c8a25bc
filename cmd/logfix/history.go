package main

import (
	"fmt"

	"logfix/internal/history"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRunID string
)

var historyCmd = &cobra.Command{
	Use:   "history [root]",
	Short: "List recent runs recorded in the history database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "Show per-file outcomes for one run ID")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	_, logger, err := loadSetup(root)
	if err != nil {
		return err
	}

	store, err := history.Open(root, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	resp := &HistoryResponse{}
	if historyRunID != "" {
		resp.Files, err = store.FileResults(historyRunID)
		if err != nil {
			return err
		}
	}
	resp.Runs, err = store.RecentRuns(historyLimit)
	if err != nil {
		return err
	}

	output, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}
