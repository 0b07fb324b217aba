package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/ThalesMMS/pyrunner/internal/config"
	"github.com/ThalesMMS/pyrunner/internal/doctor"
	"github.com/ThalesMMS/pyrunner/internal/execute"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the interpreter, environment, and data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			checks := doctor.Run(cmd.Context(), &execute.OSExecutor{}, cfg.Venv.Path, cfg.Data.Dir)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range checks {
				status := "OK"
				if !c.OK {
					status = "FAIL"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", status, c.Name, c.Detail)
			}
			w.Flush()

			if !doctor.AllOK(checks) {
				cmd.SilenceUsage = true
				return fmt.Errorf("some checks failed")
			}
			return nil
		},
	}
}
