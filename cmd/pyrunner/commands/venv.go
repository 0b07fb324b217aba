package commands

import (
	"fmt"

	"github.com/ThalesMMS/pyrunner/internal/config"
	"github.com/ThalesMMS/pyrunner/internal/execute"
	"github.com/ThalesMMS/pyrunner/internal/venv"
	"github.com/spf13/cobra"
)

func venvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venv",
		Short: "Manage the Python virtual environment",
	}

	cmd.AddCommand(venvCreateCmd())
	cmd.AddCommand(venvInstallCmd())
	cmd.AddCommand(venvListCmd())
	cmd.AddCommand(venvValidateCmd())
	return cmd
}

func venvCreateCmd() *cobra.Command {
	var use bool

	cmd := &cobra.Command{
		Use:   "create <path>",
		Short: "Create a new virtual environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orc, cleanup, err := buildOrchestrator(&execute.OSExecutor{})
			if err != nil {
				return err
			}
			defer cleanup()

			if err := orc.CreateEnv(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("creating environment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created environment at %s\n", args[0])

			if use {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				cfg.SetVenvPath(args[0])
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "selected %s as the active environment\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&use, "use", false, "select the new environment in the configuration")
	return cmd
}

func venvInstallCmd() *cobra.Command {
	var envPath string

	cmd := &cobra.Command{
		Use:   "install <requirements.txt>",
		Short: "Install packages from a requirements manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exec := &execute.OSExecutor{Log: func(stream, chunk string) {
				if stream == "stderr" {
					fmt.Fprint(cmd.ErrOrStderr(), chunk)
				} else {
					fmt.Fprint(cmd.OutOrStdout(), chunk)
				}
			}}

			orc, cleanup, err := buildOrchestrator(exec)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := orc.InstallPackages(cmd.Context(), envPath, args[0]); err != nil {
				return fmt.Errorf("installing packages: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "packages installed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&envPath, "venv", "e", "", "target environment (default: the configured one)")
	return cmd
}

func venvListCmd() *cobra.Command {
	var envPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages in freeze format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orc, cleanup, err := buildOrchestrator(&execute.OSExecutor{})
			if err != nil {
				return err
			}
			defer cleanup()

			pkgs := orc.ListPackages(cmd.Context(), envPath)
			if len(pkgs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no packages")
				return nil
			}
			for _, p := range pkgs {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&envPath, "venv", "e", "", "target environment (default: the configured one)")
	return cmd
}

func venvValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check whether a path is a usable virtual environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := venv.New(&execute.OSExecutor{})
			if m.Validate(cmd.Context(), args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid environment\n", args[0])
				return nil
			}
			cmd.SilenceUsage = true
			return fmt.Errorf("%w: %s", venv.ErrInvalidEnv, args[0])
		},
	}
}
