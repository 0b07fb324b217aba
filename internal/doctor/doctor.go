// Package doctor diagnoses the tool's external prerequisites: a Python
// interpreter, the configured environment, and the data directory.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ThalesMMS/pyrunner/internal/execute"
	"github.com/ThalesMMS/pyrunner/internal/venv"
)

// Check is one diagnostic result.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// AllOK reports whether every check passed.
func AllOK(checks []Check) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Run performs the diagnostics in order. venvPath may be empty when no
// environment is configured; dataDir is where run history is kept.
func Run(ctx context.Context, exec execute.Executor, venvPath, dataDir string) []Check {
	var checks []Check

	interp, err := venv.SystemInterpreter()
	if err != nil {
		checks = append(checks,
			Check{Name: "python interpreter", Detail: "not found on PATH"},
			Check{Name: "version probe", Detail: "skipped"})
	} else {
		checks = append(checks, Check{Name: "python interpreter", OK: true, Detail: interp})

		res := exec.Execute(ctx, interp, "--version")
		probe := Check{Name: "version probe", OK: res.Success()}
		if res.Success() {
			probe.Detail = strings.TrimSpace(res.CombinedOutput())
		} else {
			probe.Detail = res.FailureDetail()
		}
		checks = append(checks, probe)
	}

	envCheck := Check{Name: "virtual environment"}
	switch {
	case venvPath == "":
		envCheck.OK = true
		envCheck.Detail = "none configured"
	case venv.New(exec).Validate(ctx, venvPath):
		envCheck.OK = true
		envCheck.Detail = venvPath
	default:
		envCheck.Detail = fmt.Sprintf("%s does not validate", venvPath)
	}
	checks = append(checks, envCheck)

	checks = append(checks, dataDirCheck(dataDir))
	return checks
}

func dataDirCheck(dataDir string) Check {
	c := Check{Name: "data directory", Detail: dataDir}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		c.Detail = err.Error()
		return c
	}
	probe := filepath.Join(dataDir, ".write-probe")
	if err := os.WriteFile(probe, nil, 0644); err != nil {
		c.Detail = err.Error()
		return c
	}
	os.Remove(probe)
	c.OK = true
	return c
}
