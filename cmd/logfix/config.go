package main

import (
	"fmt"
	"os"
	"path/filepath"

	"logfix/internal/config"
	"logfix/internal/errors"

	"github.com/spf13/cobra"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize logfix configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [root]",
	Short: "Write a default .logfix/config.json",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show [root]",
	Short: "Print the effective configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"Overwrite an existing configuration")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	configPath := filepath.Join(root, ".logfix", "config.json")
	if _, statErr := os.Stat(configPath); statErr == nil && !configInitForce {
		// Idempotent behavior: already initialized is success (CI-friendly)
		fmt.Println("logfix already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'logfix config init --force' to overwrite.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return errors.New(errors.IOFailure, "cannot write configuration", err)
	}

	fmt.Println("logfix initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'logfix scan' to preview candidate calls")
	fmt.Println("  2. Run 'logfix fix --dry-run' to see what would change")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, _, err := loadSetup(root)
	if err != nil {
		return err
	}

	output, err := FormatResponse(cfg, FormatJSON)
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}
