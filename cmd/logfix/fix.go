package main

import (
	"context"
	"fmt"
	"time"

	"logfix/internal/batch"
	"logfix/internal/errors"
	"logfix/internal/history"
	"logfix/internal/logging"
	"logfix/internal/report"
	"logfix/internal/transaction"
	"logfix/internal/walk"

	"github.com/spf13/cobra"
)

var (
	fixDryRun    bool
	fixWorkers   int
	fixCompress  bool
	fixNoHistory bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [root]",
	Short: "Rewrite template-style logging calls in place",
	Long: `Walks the tree under root, rewrites every convertible template-style
logging call into its interpolated form, and writes a backup of each
modified file next to the original.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Report what would change without writing anything")
	fixCmd.Flags().IntVar(&fixWorkers, "workers", 0, "Number of files processed concurrently (default from config)")
	fixCmd.Flags().BoolVar(&fixCompress, "compress-backups", false, "Write zstd-compressed backups")
	fixCmd.Flags().BoolVar(&fixNoHistory, "no-history", false, "Skip recording this run in the history database")
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
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
	logger.Info("Discovered files", map[string]interface{}{
		"root":  root,
		"count": len(files),
	})

	manager := transaction.NewManager(engine, logger, transaction.Options{
		SuffixBase: cfg.Backup.SuffixBase,
		Compress:   fixCompress || cfg.Backup.Compress,
		DryRun:     fixDryRun,
	})

	workers := cfg.Workers
	if fixWorkers > 0 {
		workers = fixWorkers
	}

	started := time.Now()
	results, err := batch.Run(cmd.Context(), files, workers, manager.Process)
	if err != nil && cmd.Context().Err() == nil {
		return err
	}
	if cmd.Context().Err() != nil {
		return errors.New(errors.InternalError, "run interrupted", context.Cause(cmd.Context()))
	}

	summary := report.Build(manager.RunID(), root, fixDryRun, results, time.Since(started))

	if cfg.History.Enabled && !fixNoHistory && !fixDryRun {
		recordRun(root, logger, "fix", started, summary)
	}

	output, err := FormatResponse(summary, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	fmt.Println(output)

	if summary.FilesErrored > 0 {
		return errors.New(errors.IOFailure,
			fmt.Sprintf("%d files could not be processed", summary.FilesErrored), nil)
	}
	return nil
}

// recordRun persists the summary, logging rather than failing when the
// history database is unavailable. A recording problem never undoes a
// completed rewrite batch.
func recordRun(root string, logger *logging.Logger, command string, started time.Time, summary *report.Summary) {
	store, err := history.Open(root, logger)
	if err != nil {
		logger.Warn("History unavailable, run not recorded", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer store.Close()

	if err := store.RecordRun(command, started, summary); err != nil {
		logger.Warn("Failed to record run", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
