package commands

import (
	"fmt"
	"strconv"

	"github.com/ThalesMMS/pyrunner/internal/config"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the persisted settings",
	}

	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetVenvCmd())
	cmd.AddCommand(configSetAutoActivateCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config file:    %s\n", config.DefaultPath())
			venvPath := cfg.Venv.Path
			if venvPath == "" {
				venvPath = "(none)"
			}
			fmt.Fprintf(out, "venv path:      %s\n", venvPath)
			fmt.Fprintf(out, "auto-activate:  %t\n", cfg.AutoActivate())
			fmt.Fprintf(out, "scripts repo:   %s/%s\n", cfg.Scripts.Owner, cfg.Scripts.Repo)
			fmt.Fprintf(out, "history db:     %s\n", cfg.HistoryDBPath())
			return nil
		},
	}
}

func configSetVenvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-venv <path>",
		Short: "Select the virtual environment scripts run in (empty path clears it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.SetVenvPath(args[0])
			if err := cfg.Save(); err != nil {
				return err
			}
			if args[0] == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "cleared the selected environment")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "selected %s\n", args[0])
			}
			return nil
		},
	}
}

func configSetAutoActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-auto-activate <true|false>",
		Short: "Toggle automatic use of the selected environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("invalid value %q: want true or false", args[0])
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.SetAutoActivate(v)
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "auto-activate = %t\n", v)
			return nil
		},
	}
}
