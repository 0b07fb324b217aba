// Package commands defines the pyrunner command tree. Each subcommand
// is one of the actions the host application exposes as a menu item.
package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

// Root returns the root cobra command with all subcommands attached.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pyrunner",
		Short: "Run Python scripts against a managed virtual environment",
		Long:  "pyrunner executes Python scripts through an external interpreter, manages an optional virtual environment, and keeps a local history of runs.",
	}

	cmd.AddCommand(runCmd())
	cmd.AddCommand(venvCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(examplesCmd())
	cmd.AddCommand(doctorCmd())
	cmd.AddCommand(initCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// scriptError carries a failed script's exit status to the process exit.
type scriptError struct {
	code int
}

func (e *scriptError) Error() string {
	return "script failed"
}

// ExitCode maps a command error to the process exit status: a failed
// script's own code when known, 1 otherwise.
func ExitCode(err error) int {
	var se *scriptError
	if errors.As(err, &se) && se.code > 0 {
		return se.code
	}
	return 1
}
