package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThalesMMS/pyrunner/internal/config"
	"github.com/ThalesMMS/pyrunner/internal/scripts"
	"github.com/spf13/cobra"
)

func examplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "Work with the bundled example scripts",
	}
	cmd.AddCommand(examplesFetchCmd())
	return cmd
}

func examplesFetchCmd() *cobra.Command {
	var (
		dest    string
		version string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the example scripts from a GitHub release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dest == "" {
				dest = filepath.Join(cfg.Data.Dir, "examples")
			}

			client := scripts.New(os.Getenv("GITHUB_TOKEN"), cfg.Scripts.Owner, cfg.Scripts.Repo)
			files, err := client.FetchExamples(cmd.Context(), version, dest)
			if err != nil {
				return fmt.Errorf("fetching examples: %w", err)
			}

			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d scripts to %s\n", len(files), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "destination directory (default: <data dir>/examples)")
	cmd.Flags().StringVar(&version, "version", "latest", "release tag to fetch from")
	return cmd
}
