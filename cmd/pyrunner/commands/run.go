package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ThalesMMS/pyrunner/internal/execute"
	"github.com/ThalesMMS/pyrunner/internal/orchestrator"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		envOverride string
		noVenv      bool
	)

	cmd := &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Run a Python script and capture its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Stream subprocess output live, each stream to its own side.
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

			report, err := orc.RunScript(cmd.Context(), orchestrator.RunRequest{
				Script:      args[0],
				Args:        args[1:],
				EnvOverride: envOverride,
				NoVenv:      noVenv,
			})
			if err != nil {
				return err
			}

			if report.FellBack {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: environment interpreter failed to launch; used the system interpreter")
			}

			name := filepath.Base(args[0])
			res := report.Result
			if res.Success() {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s finished in %s (run %s)\n",
					name, report.Duration.Round(time.Millisecond), shortID(report.RunID))
				return nil
			}

			// Output was already streamed; keep the summary to status only.
			if res.LaunchErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "\n%s could not be launched: %v\n", report.Interpreter, res.LaunchErr)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "\n%s exited with status %d\n", name, res.ExitCode)
			}
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return &scriptError{code: res.ExitCode}
		},
	}

	cmd.Flags().StringVarP(&envOverride, "venv", "e", "", "run in this virtual environment instead of the configured one")
	cmd.Flags().BoolVar(&noVenv, "no-venv", false, "ignore the configured environment and use the system interpreter")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
