package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThalesMMS/pyrunner/internal/config"
	"github.com/ThalesMMS/pyrunner/internal/history"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "First-time setup: write a config template and prepare the data directory",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	// 1. Write template config if missing
	configPath := config.DefaultPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(config.TemplateConfig()), 0644); err != nil {
			return fmt.Errorf("writing config template: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  wrote config template to %s\n", configPath)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "  config already present at %s\n", configPath)
	}

	// 2. Load config (template defaults suffice)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// 3. Create the data directory
	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return fmt.Errorf("creating data dir %s: %w", cfg.Data.Dir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  data directory %s\n", cfg.Data.Dir)

	// 4. Initialize the history database
	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("initializing history database: %w", err)
	}
	store.Close()
	fmt.Fprintf(cmd.OutOrStdout(), "  history database: OK\n")

	fmt.Fprintf(cmd.OutOrStdout(), "\npyrunner initialized. Run 'pyrunner doctor' to verify the interpreter setup.\n")
	return nil
}
