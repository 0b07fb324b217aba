package execute

import (
	"context"
	"strings"
	"sync"
)

// Call records a single invocation of a command.
type Call struct {
	Name string
	Args []string
}

func (c Call) String() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Response is a pre-configured outcome for a command pattern.
type Response struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	LaunchErr error
}

func (r Response) result() *Result {
	return &Result{
		ExitCode:  r.ExitCode,
		Stdout:    []byte(r.Stdout),
		Stderr:    []byte(r.Stderr),
		LaunchErr: r.LaunchErr,
	}
}

// FakeExecutor records command calls and returns pre-configured results.
// Exported for use by venv/doctor/orchestrator tests.
type FakeExecutor struct {
	mu        sync.Mutex
	Calls     []Call
	responses map[string]Response // key: "name arg1 arg2..."
	fallback  Response
}

// NewFakeExecutor creates a FakeExecutor whose fallback is a clean exit.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		responses: make(map[string]Response),
	}
}

// SetResponse configures the result for a specific command string.
func (f *FakeExecutor) SetResponse(cmd string, resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[cmd] = resp
}

// SetFallback sets the default result for unmatched commands.
func (f *FakeExecutor) SetFallback(resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallback = resp
}

// Execute records the call and returns the matching result.
func (f *FakeExecutor) Execute(_ context.Context, name string, args ...string) *Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Name: name, Args: args}
	f.Calls = append(f.Calls, call)

	if resp, ok := f.responses[call.String()]; ok {
		return resp.result()
	}

	// Try matching the command name with its first arg for broader matches
	if len(args) > 0 {
		if resp, ok := f.responses[name+" "+args[0]]; ok {
			return resp.result()
		}
	}

	if resp, ok := f.responses[name]; ok {
		return resp.result()
	}

	return f.fallback.result()
}

// Called returns true if a command matching the prefix was recorded.
func (f *FakeExecutor) Called(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if strings.HasPrefix(c.String(), prefix) {
			return true
		}
	}
	return false
}

// CallCount returns how many recorded commands match the prefix.
func (f *FakeExecutor) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if strings.HasPrefix(c.String(), prefix) {
			n++
		}
	}
	return n
}

// Reset clears all recorded calls.
func (f *FakeExecutor) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}

var _ Executor = (*FakeExecutor)(nil)
