package main

import (
	"fmt"
	"time"

	"logfix/internal/batch"
	"logfix/internal/errors"
	"logfix/internal/report"
	"logfix/internal/subst"
	"logfix/internal/transaction"
	"logfix/internal/walk"

	"github.com/spf13/cobra"
)

var (
	substRulesPath string
	substGroups    []string
	substDryRun    bool
	substWorkers   int
	substNoHistory bool
)

var substCmd = &cobra.Command{
	Use:   "subst [root]",
	Short: "Apply pattern substitution rules across the tree",
	Long: `Applies a rule set of literal and regexp substitutions to every matching
file under root, with the same backup discipline as fix. Rules come from
the built-in set, the configured rules file, or --rules.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubst,
}

func init() {
	substCmd.Flags().StringVar(&substRulesPath, "rules", "", "Rules file (.toml, .yaml, or .json)")
	substCmd.Flags().StringSliceVar(&substGroups, "groups", nil, "Rule groups to apply (built-in set defaults to the logging group)")
	substCmd.Flags().BoolVar(&substDryRun, "dry-run", false, "Report what would change without writing anything")
	substCmd.Flags().IntVar(&substWorkers, "workers", 0, "Number of files processed concurrently (default from config)")
	substCmd.Flags().BoolVar(&substNoHistory, "no-history", false, "Skip recording this run in the history database")
	rootCmd.AddCommand(substCmd)
}

func runSubst(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, logger, err := loadSetup(root)
	if err != nil {
		return err
	}

	rulesPath := substRulesPath
	if rulesPath == "" {
		rulesPath = cfg.Rules.Path
	}

	var rules *subst.RuleSet
	if rulesPath != "" {
		rules, err = subst.Load(rulesPath)
		if err != nil {
			return err
		}
	} else {
		rules = subst.DefaultRules()
		if len(substGroups) == 0 {
			// The financial-precision group rewrites types, not logging;
			// it runs only when asked for.
			substGroups = []string{"logging"}
		}
	}
	if len(substGroups) > 0 {
		rules = rules.Filter(substGroups...)
	}
	logger.Info("Loaded substitution rules", map[string]interface{}{
		"rules":  len(rules.Rules),
		"groups": substGroups,
	})

	files, err := walk.FindFiles(root, walkOptionsFromConfig(cfg))
	if err != nil {
		return errors.New(errors.IOFailure, "file discovery failed", err)
	}

	manager := transaction.NewManager(nil, logger, transaction.Options{
		SuffixBase: cfg.Backup.SuffixBase,
		Compress:   cfg.Backup.Compress,
		DryRun:     substDryRun,
	})

	workers := cfg.Workers
	if substWorkers > 0 {
		workers = substWorkers
	}

	started := time.Now()
	results, err := batch.Run(cmd.Context(), files, workers, func(path string) transaction.FileResult {
		return manager.Apply(path, rules.Apply)
	})
	if err != nil {
		return err
	}

	summary := report.Build(manager.RunID(), root, substDryRun, results, time.Since(started))

	if cfg.History.Enabled && !substNoHistory && !substDryRun {
		recordRun(root, logger, "subst", started, summary)
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
