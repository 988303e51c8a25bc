package main

import (
	"os"
	"path/filepath"

	"logfix/internal/config"
	"logfix/internal/errors"
	"logfix/internal/logging"
	"logfix/internal/rewrite"
	"logfix/internal/walk"
)

// resolveRoot turns the optional positional root argument into an absolute
// path, defaulting to the current directory.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.New(errors.InternalError, "cannot resolve root path", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.New(errors.IOFailure, "root path does not exist", err)
	}
	if !info.IsDir() {
		return "", errors.New(errors.IOFailure, "root path is not a directory", nil)
	}
	return abs, nil
}

// loadSetup loads and validates the configuration under root and builds
// the logger the command will use.
func loadSetup(root string) (*config.Config, *logging.Logger, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, nil, errors.New(errors.ConfigInvalid, "cannot load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}

	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(level),
	})
	return cfg, logger, nil
}

// engineFromConfig builds the rewrite engine from the rewrite section.
func engineFromConfig(cfg *config.Config) (*rewrite.Engine, error) {
	return rewrite.NewEngine(rewrite.Options{
		Methods:            cfg.Rewrite.Methods,
		PlaceholderPattern: cfg.Rewrite.PlaceholderPattern,
		AuxiliaryIdents:    cfg.Rewrite.AuxiliaryIdents,
		Marker:             cfg.Rewrite.Marker,
	})
}

// walkOptionsFromConfig builds file discovery options from the scan section.
func walkOptionsFromConfig(cfg *config.Config) walk.Options {
	opts := walk.DefaultOptions()
	if len(cfg.Scan.Extensions) > 0 {
		opts.Extensions = cfg.Scan.Extensions
	}
	if len(cfg.Scan.ExcludeDirs) > 0 {
		opts.ExcludeDirs = cfg.Scan.ExcludeDirs
	}
	return opts
}
