// Package execute runs external commands and captures their complete
// output without deadlocking on full pipe buffers.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// LogFunc receives decoded output chunks as they arrive, for live
// visibility while a process is still running. stream is "stdout" or
// "stderr".
type LogFunc func(stream, chunk string)

// Result holds everything captured from one process invocation.
// Immutable after construction; each invocation produces its own.
type Result struct {
	ExitCode  int    // -1 if the process never launched
	Stdout    []byte // everything the process wrote to stdout
	Stderr    []byte // everything the process wrote to stderr
	LaunchErr error  // non-nil if the process could not be started
}

// Success reports whether the process launched and exited 0.
func (r *Result) Success() bool {
	return r.LaunchErr == nil && r.ExitCode == 0
}

// CombinedOutput returns stdout followed by stderr as text.
func (r *Result) CombinedOutput() string {
	return string(r.Stdout) + string(r.Stderr)
}

// FailureDetail returns the text a user should see for a failed run:
// the combined output verbatim when any was captured, otherwise a
// generic status message.
func (r *Result) FailureDetail() string {
	if out := strings.TrimSpace(r.CombinedOutput()); out != "" {
		return out
	}
	if r.LaunchErr != nil {
		return r.LaunchErr.Error()
	}
	return fmt.Sprintf("exited with status %d", r.ExitCode)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) *Result
}

// OSExecutor executes commands via os/exec, draining stdout and stderr
// concurrently so a chatty child cannot block on a full pipe while the
// parent waits on the other stream.
type OSExecutor struct {
	Log LogFunc // optional live-output sink
}

func (e *OSExecutor) Execute(ctx context.Context, name string, args ...string) *Result {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &Result{ExitCode: -1, LaunchErr: fmt.Errorf("stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &Result{ExitCode: -1, LaunchErr: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return &Result{ExitCode: -1, LaunchErr: fmt.Errorf("starting %s: %w", name, err)}
	}

	// One reader per stream; each buffer has exactly one writer and is
	// only read back after both readers have been joined.
	var outBuf, errBuf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go e.drain(&wg, stdout, &outBuf, "stdout")
	go e.drain(&wg, stderr, &errBuf, "stderr")
	wg.Wait()

	res := &Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.LaunchErr = fmt.Errorf("waiting for %s: %w", name, err)
		}
	}
	return res
}

// drain copies everything from r into buf chunk by chunk, forwarding
// each non-empty chunk to the log sink. Runs until EOF or pipe close.
func (e *OSExecutor) drain(wg *sync.WaitGroup, r io.Reader, buf *bytes.Buffer, stream string) {
	defer wg.Done()
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if e.Log != nil {
				e.Log(stream, string(chunk[:n]))
			}
		}
		if err != nil {
			return
		}
	}
}

var _ Executor = (*OSExecutor)(nil)
