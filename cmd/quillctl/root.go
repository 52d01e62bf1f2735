package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quill/internal/config"
	"quill/internal/repository"
	"quill/internal/service/fsnode"
)

var (
	storeDriver string
	sqlitePath  string
	userID      string
	output      string
)

var rootCmd = &cobra.Command{
	Use:           "quillctl",
	Short:         "Inspect and maintain project node trees",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Store driver override (postgres|sqlite)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite-path", "", "SQLite database file override")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "Acting user ID (project owner)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format (text|json|yaml)")

	rootCmd.AddCommand(schemaCmd, projectCmd, treeCmd, statsCmd, resequenceCmd)
}

// loadConfig applies the command-line overrides on top of config.Load
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("store") {
		cfg.StoreDriver = storeDriver
	}
	if cmd.Flags().Changed("sqlite-path") {
		cfg.SQLitePath = sqlitePath
	}
	return cfg, nil
}

// withServices opens the store, wires the services and runs fn
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svcs *fsnode.Services) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg, nil)
	if !cfg.Debug {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx := cmd.Context()
	store, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx, fsnode.SetupServices(store.Nodes, store.Projects, store.TxManager, cfg, logger))
}

func requireUser() error {
	if userID == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}

// printValue writes v as JSON or YAML; text callers pass their own rendering
func printValue(w io.Writer, v any, text string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		_, err := fmt.Fprintln(w, text)
		return err
	default:
		return fmt.Errorf("unknown output format %q (text, json, yaml)", output)
	}
}
