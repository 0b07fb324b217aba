// Package venv manages Python virtual environments: validation,
// interpreter selection, creation, and package install/list via pip.
package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ThalesMMS/pyrunner/internal/execute"
)

// ErrInterpreterNotFound is returned when no usable Python interpreter
// exists on the system at all.
var ErrInterpreterNotFound = errors.New("no usable python interpreter found")

// ErrInvalidEnv is returned when a path is not a valid virtual environment.
var ErrInvalidEnv = errors.New("not a valid virtual environment")

// ErrManifestNotFound is returned when a requirements manifest does not exist.
var ErrManifestNotFound = errors.New("requirements manifest not found")

// CommandError reports a venv operation whose subprocess ran but failed.
// Detail carries the tool's combined output verbatim when any was
// captured, so the user sees the real underlying diagnostic.
type CommandError struct {
	Op       string // "create" or "install"
	ExitCode int
	Detail   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("venv %s failed: %s", e.Op, e.Detail)
}

// Manager performs environment lifecycle operations through an executor.
type Manager struct {
	exec execute.Executor
}

// New creates a venv manager with the given executor.
func New(exec execute.Executor) *Manager {
	return &Manager{exec: exec}
}

// Interpreter returns the interpreter binary inside an environment:
// bin/python3, falling back to bin/python when only that exists.
func Interpreter(envPath string) string {
	p3 := filepath.Join(envPath, "bin", "python3")
	if fileExists(p3) {
		return p3
	}
	p := filepath.Join(envPath, "bin", "python")
	if fileExists(p) {
		return p
	}
	return p3
}

// pip returns the package installer binary inside an environment.
func pip(envPath string) string {
	p := filepath.Join(envPath, "bin", "pip")
	if fileExists(p) {
		return p
	}
	return filepath.Join(envPath, "bin", "pip3")
}

// SystemInterpreter resolves a Python interpreter via PATH lookup.
func SystemInterpreter() (string, error) {
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrInterpreterNotFound
}

// Validate reports whether path is a usable virtual environment: the
// directory exists, contains an interpreter binary, and that binary
// answers a --version probe with exit 0. Returns false for every
// failure mode, never an error.
func (m *Manager) Validate(ctx context.Context, path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	interp := Interpreter(path)
	if !fileExists(interp) {
		return false
	}
	return m.exec.Execute(ctx, interp, "--version").Success()
}

// Resolve picks the interpreter to invoke: the configured environment's
// interpreter when auto-activation is on, a path is set, and validation
// passes; otherwise the system interpreter from PATH.
func (m *Manager) Resolve(ctx context.Context, envPath string, autoActivate bool) (string, error) {
	if autoActivate && envPath != "" && m.Validate(ctx, envPath) {
		return Interpreter(envPath), nil
	}
	return SystemInterpreter()
}

// Create builds a new virtual environment at path using the system
// interpreter's venv module.
func (m *Manager) Create(ctx context.Context, path string) error {
	interp, err := SystemInterpreter()
	if err != nil {
		return err
	}
	res := m.exec.Execute(ctx, interp, "-m", "venv", path)
	if !res.Success() {
		return &CommandError{Op: "create", ExitCode: res.ExitCode, Detail: res.FailureDetail()}
	}
	return nil
}

// Install runs the environment's pip against a requirements manifest.
// Both the environment and the manifest are checked before anything is
// spawned, each missing precondition failing with its own error kind.
func (m *Manager) Install(ctx context.Context, envPath, manifest string) error {
	if !m.Validate(ctx, envPath) {
		return fmt.Errorf("%w: %s", ErrInvalidEnv, envPath)
	}
	if !fileExists(manifest) {
		return fmt.Errorf("%w: %s", ErrManifestNotFound, manifest)
	}
	res := m.exec.Execute(ctx, pip(envPath), "install", "-r", manifest)
	if !res.Success() {
		return &CommandError{Op: "install", ExitCode: res.ExitCode, Detail: res.FailureDetail()}
	}
	return nil
}

// ListPackages returns the environment's installed packages in freeze
// format ("name==version"), in pip's order. Any failure, including an
// invalid environment, yields an empty list rather than an error: an
// empty package list is a valid, harmless degraded state.
func (m *Manager) ListPackages(ctx context.Context, envPath string) []string {
	if !m.Validate(ctx, envPath) {
		return nil
	}
	res := m.exec.Execute(ctx, pip(envPath), "freeze")
	if !res.Success() {
		return nil
	}
	return ParseFreeze(res.Stdout)
}

// ParseFreeze parses newline-delimited freeze output, trimming blank lines.
func ParseFreeze(out []byte) []string {
	var pkgs []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			pkgs = append(pkgs, line)
		}
	}
	return pkgs
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
