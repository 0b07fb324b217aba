package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ThalesMMS/pyrunner/internal/config"
	"github.com/ThalesMMS/pyrunner/internal/execute"
	"github.com/ThalesMMS/pyrunner/internal/history"
	"github.com/ThalesMMS/pyrunner/internal/venv"
)

func makeEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "bin")
	if err := os.Mkdir(bin, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"python3", "pip"} {
		if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func fakeSystemPython(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "python3")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)
	return p
}

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.py")
	if err := os.WriteFile(path, []byte("print('hi')\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestOrchestrator(t *testing.T, cfg *config.Config, fake *execute.FakeExecutor) (*Orchestrator, *history.Store) {
	t.Helper()
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return New(cfg, store, fake), store
}

func TestRunScriptUsesConfiguredEnv(t *testing.T) {
	env := makeEnv(t)
	script := writeScript(t)
	fake := execute.NewFakeExecutor()

	cfg := config.Default()
	cfg.SetVenvPath(env)
	o, store := newTestOrchestrator(t, cfg, fake)

	report, err := o.RunScript(context.Background(), RunRequest{Script: script})
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if report.Interpreter != venv.Interpreter(env) {
		t.Errorf("Interpreter = %q, want env interpreter", report.Interpreter)
	}
	if !report.Result.Success() {
		t.Errorf("Result = %+v", report.Result)
	}
	if !fake.Called(venv.Interpreter(env) + " " + script) {
		t.Errorf("expected script execution, got %v", fake.Calls)
	}

	got, err := store.GetRun(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Action != history.ActionRun || got.Target != script {
		t.Errorf("recorded run = %+v", got)
	}
}

func TestRunScriptMissingScript(t *testing.T) {
	fake := execute.NewFakeExecutor()
	o, _ := newTestOrchestrator(t, config.Default(), fake)

	_, err := o.RunScript(context.Background(), RunRequest{Script: "/nonexistent/script.py"})
	if err == nil {
		t.Fatal("expected error for a missing script")
	}
	if len(fake.Calls) != 0 {
		t.Errorf("nothing should be spawned, got %v", fake.Calls)
	}
}

func TestRunScriptNoVenvForcesSystem(t *testing.T) {
	sys := fakeSystemPython(t)
	env := makeEnv(t)
	script := writeScript(t)
	fake := execute.NewFakeExecutor()

	cfg := config.Default()
	cfg.SetVenvPath(env)
	o, _ := newTestOrchestrator(t, cfg, fake)

	report, err := o.RunScript(context.Background(), RunRequest{Script: script, NoVenv: true})
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if report.Interpreter != sys {
		t.Errorf("Interpreter = %q, want system %q", report.Interpreter, sys)
	}
}

func TestRunScriptInvalidOverride(t *testing.T) {
	script := writeScript(t)
	o, _ := newTestOrchestrator(t, config.Default(), execute.NewFakeExecutor())

	_, err := o.RunScript(context.Background(), RunRequest{Script: script, EnvOverride: "/nonexistent/env"})
	if !errors.Is(err, venv.ErrInvalidEnv) {
		t.Errorf("err = %v, want ErrInvalidEnv", err)
	}
}

func TestRunScriptFallsBackOnLaunchFailure(t *testing.T) {
	sys := fakeSystemPython(t)
	env := makeEnv(t)
	script := writeScript(t)
	fake := execute.NewFakeExecutor()
	fake.SetResponse(venv.Interpreter(env)+" "+script, execute.Response{
		ExitCode:  -1,
		LaunchErr: fmt.Errorf("exec format error"),
	})

	cfg := config.Default()
	cfg.SetVenvPath(env)
	o, _ := newTestOrchestrator(t, cfg, fake)

	report, err := o.RunScript(context.Background(), RunRequest{Script: script})
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if !report.FellBack {
		t.Error("expected fallback to the system interpreter")
	}
	if report.Interpreter != sys {
		t.Errorf("Interpreter = %q, want %q", report.Interpreter, sys)
	}
	if !report.Result.Success() {
		t.Errorf("fallback run should succeed: %+v", report.Result)
	}
}

func TestRunScriptNonZeroExitIsReportedNotErrored(t *testing.T) {
	env := makeEnv(t)
	script := writeScript(t)
	fake := execute.NewFakeExecutor()
	fake.SetResponse(venv.Interpreter(env)+" "+script, execute.Response{
		ExitCode: 2,
		Stderr:   "Traceback: boom\n",
	})

	cfg := config.Default()
	cfg.SetVenvPath(env)
	o, store := newTestOrchestrator(t, cfg, fake)

	report, err := o.RunScript(context.Background(), RunRequest{Script: script})
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if report.Result.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", report.Result.ExitCode)
	}

	got, err := store.GetRun(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Succeeded() {
		t.Error("recorded run should be a failure")
	}
	if got.Detail != "Traceback: boom" {
		t.Errorf("Detail = %q", got.Detail)
	}
}

func TestCreateEnvRecordsHistory(t *testing.T) {
	fakeSystemPython(t)
	fake := execute.NewFakeExecutor()
	o, store := newTestOrchestrator(t, config.Default(), fake)

	target := filepath.Join(t.TempDir(), "env")
	if err := o.CreateEnv(context.Background(), target); err != nil {
		t.Fatalf("CreateEnv: %v", err)
	}

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Action != history.ActionCreate || runs[0].Target != target {
		t.Errorf("runs = %+v", runs)
	}
}

func TestCreateEnvNoInterpreterNotRecorded(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	o, store := newTestOrchestrator(t, config.Default(), execute.NewFakeExecutor())

	if err := o.CreateEnv(context.Background(), "/tmp/env"); !errors.Is(err, venv.ErrInterpreterNotFound) {
		t.Fatalf("err = %v, want ErrInterpreterNotFound", err)
	}

	runs, _ := store.ListRuns(context.Background(), 0)
	if len(runs) != 0 {
		t.Errorf("precondition failures must not be recorded: %+v", runs)
	}
}

func TestInstallPackagesDefaultsToConfiguredEnv(t *testing.T) {
	env := makeEnv(t)
	manifest := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(manifest, []byte("numpy\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fake := execute.NewFakeExecutor()

	cfg := config.Default()
	cfg.SetVenvPath(env)
	o, store := newTestOrchestrator(t, cfg, fake)

	if err := o.InstallPackages(context.Background(), "", manifest); err != nil {
		t.Fatalf("InstallPackages: %v", err)
	}
	if !fake.Called(filepath.Join(env, "bin", "pip") + " install -r " + manifest) {
		t.Errorf("expected pip install, got %v", fake.Calls)
	}

	runs, _ := store.ListRuns(context.Background(), 0)
	if len(runs) != 1 || runs[0].Action != history.ActionInstall {
		t.Errorf("runs = %+v", runs)
	}
}

func TestInstallPackagesPreconditionNotRecorded(t *testing.T) {
	env := makeEnv(t)
	fake := execute.NewFakeExecutor()

	cfg := config.Default()
	cfg.SetVenvPath(env)
	o, store := newTestOrchestrator(t, cfg, fake)

	err := o.InstallPackages(context.Background(), "", "/nonexistent/requirements.txt")
	if !errors.Is(err, venv.ErrManifestNotFound) {
		t.Fatalf("err = %v, want ErrManifestNotFound", err)
	}

	runs, _ := store.ListRuns(context.Background(), 0)
	if len(runs) != 0 {
		t.Errorf("precondition failures must not be recorded: %+v", runs)
	}
}

func TestListPackagesDefaultsToConfiguredEnv(t *testing.T) {
	env := makeEnv(t)
	fake := execute.NewFakeExecutor()
	fake.SetResponse(filepath.Join(env, "bin", "pip")+" freeze", execute.Response{
		Stdout: "pydicom==2.4.0\n",
	})

	cfg := config.Default()
	cfg.SetVenvPath(env)
	o, _ := newTestOrchestrator(t, cfg, fake)

	pkgs := o.ListPackages(context.Background(), "")
	if len(pkgs) != 1 || pkgs[0] != "pydicom==2.4.0" {
		t.Errorf("ListPackages = %v", pkgs)
	}
}
