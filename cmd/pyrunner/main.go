package main

import (
	"os"

	"github.com/ThalesMMS/pyrunner/cmd/pyrunner/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
