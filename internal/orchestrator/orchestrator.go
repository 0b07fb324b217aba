// Package orchestrator coordinates configuration, interpreter
// selection, execution, and run history for the user-facing flows.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ThalesMMS/pyrunner/internal/config"
	"github.com/ThalesMMS/pyrunner/internal/execute"
	"github.com/ThalesMMS/pyrunner/internal/history"
	"github.com/ThalesMMS/pyrunner/internal/venv"
)

// Orchestrator wires the managers together for run/create/install flows.
type Orchestrator struct {
	cfg   *config.Config
	store *history.Store
	venv  *venv.Manager
	exec  execute.Executor
}

// New creates an Orchestrator from the loaded config, an open history
// store, and an executor.
func New(cfg *config.Config, store *history.Store, exec execute.Executor) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		store: store,
		venv:  venv.New(exec),
		exec:  exec,
	}
}

// RunRequest holds the parameters for a script run.
type RunRequest struct {
	Script      string
	Args        []string
	EnvOverride string // use this environment instead of the configured one
	NoVenv      bool   // force the system interpreter for this run
}

// RunReport holds the outcome of a script run.
type RunReport struct {
	RunID       string
	Interpreter string
	Result      *execute.Result
	Duration    time.Duration
	FellBack    bool // env interpreter failed to launch; system one was used
}

// RunScript executes a Python script with the interpreter the selection
// policy resolves. A launch failure of the environment's interpreter
// degrades gracefully to the system interpreter once; everything the
// process itself does (including non-zero exits) lands in the report,
// not in the error.
func (o *Orchestrator) RunScript(ctx context.Context, req RunRequest) (*RunReport, error) {
	if _, err := os.Stat(req.Script); err != nil {
		return nil, fmt.Errorf("script %s: %w", req.Script, err)
	}

	interp, fromEnv, err := o.selectInterpreter(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &RunReport{Interpreter: interp}
	args := append([]string{req.Script}, req.Args...)

	start := time.Now()
	res := o.exec.Execute(ctx, interp, args...)
	if res.LaunchErr != nil && fromEnv {
		// Missing or broken env interpreter: fall back to PATH.
		if sys, sysErr := venv.SystemInterpreter(); sysErr == nil && sys != interp {
			report.Interpreter = sys
			report.FellBack = true
			res = o.exec.Execute(ctx, sys, args...)
		}
	}
	report.Result = res
	report.Duration = time.Since(start)

	report.RunID = o.record(ctx, &history.Run{
		Action:      history.ActionRun,
		Target:      req.Script,
		Interpreter: report.Interpreter,
		ExitCode:    res.ExitCode,
		StdoutBytes: len(res.Stdout),
		StderrBytes: len(res.Stderr),
		Duration:    report.Duration,
		Detail:      failureDetail(res),
	})
	return report, nil
}

// selectInterpreter applies the per-run overrides on top of the
// configured selection policy. The second return value reports whether
// the choice came from a virtual environment.
func (o *Orchestrator) selectInterpreter(ctx context.Context, req RunRequest) (string, bool, error) {
	switch {
	case req.EnvOverride != "":
		if !o.venv.Validate(ctx, req.EnvOverride) {
			return "", false, fmt.Errorf("%w: %s", venv.ErrInvalidEnv, req.EnvOverride)
		}
		return venv.Interpreter(req.EnvOverride), true, nil
	case req.NoVenv:
		interp, err := venv.SystemInterpreter()
		return interp, false, err
	default:
		interp, err := o.venv.Resolve(ctx, o.cfg.Venv.Path, o.cfg.AutoActivate())
		if err != nil {
			return "", false, err
		}
		return interp, interp == venv.Interpreter(o.cfg.Venv.Path) && o.cfg.Venv.Path != "", nil
	}
}

// CreateEnv builds a virtual environment and records the outcome.
func (o *Orchestrator) CreateEnv(ctx context.Context, path string) error {
	start := time.Now()
	err := o.venv.Create(ctx, path)

	run := &history.Run{
		Action:   history.ActionCreate,
		Target:   path,
		Duration: time.Since(start),
	}
	cmdErr, ran := asCommandError(err)
	if ran {
		run.ExitCode = cmdErr.ExitCode
		run.Detail = cmdErr.Detail
	}
	if err == nil || ran {
		o.record(ctx, run)
	}
	return err
}

// InstallPackages installs a requirements manifest into an environment,
// defaulting to the configured one, and records the outcome. Precondition
// failures (invalid env, missing manifest) are returned without being
// recorded: no subprocess ever ran.
func (o *Orchestrator) InstallPackages(ctx context.Context, envPath, manifest string) error {
	if envPath == "" {
		envPath = o.cfg.Venv.Path
	}
	start := time.Now()
	err := o.venv.Install(ctx, envPath, manifest)

	run := &history.Run{
		Action:   history.ActionInstall,
		Target:   envPath,
		Duration: time.Since(start),
	}
	cmdErr, ran := asCommandError(err)
	if ran {
		run.ExitCode = cmdErr.ExitCode
		run.Detail = cmdErr.Detail
	}
	if err == nil || ran {
		o.record(ctx, run)
	}
	return err
}

// ListPackages lists the packages of an environment, defaulting to the
// configured one. Empty on any failure.
func (o *Orchestrator) ListPackages(ctx context.Context, envPath string) []string {
	if envPath == "" {
		envPath = o.cfg.Venv.Path
	}
	return o.venv.ListPackages(ctx, envPath)
}

// record inserts a history row. History is advisory: a write failure
// never fails the operation it describes.
func (o *Orchestrator) record(ctx context.Context, run *history.Run) string {
	if o.store == nil {
		return ""
	}
	id, err := o.store.InsertRun(ctx, run)
	if err != nil {
		return ""
	}
	return id
}

func failureDetail(res *execute.Result) string {
	if res.Success() {
		return ""
	}
	return res.FailureDetail()
}

func asCommandError(err error) (*venv.CommandError, bool) {
	var cmdErr *venv.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}
