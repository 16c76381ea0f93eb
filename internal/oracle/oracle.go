// Package oracle implements the subprocess runner the evaluator
// dispatches ORACLE applications to (spec.md §4.4.1, §6's oracle
// protocol): write one argument per line to "input.txt" in a scratch
// directory, invoke "<cmd> input.txt" there, capture stdout.
package oracle

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Runner executes a shell command in a working directory and captures
// its stdout. Exit code -1 means the process could not be spawned at
// all (mirrors popen returning nullptr in the original).
type Runner interface {
	Run(ctx context.Context, command, workDir string) (stdout string, exitCode int)
}

// ProcessRunner is the default Runner, backed by os/exec.
type ProcessRunner struct{}

// Run invokes command through the shell so callers can pass it exactly
// as "<ocmd> input.txt", matching the original's popen(call.c_str()).
func (ProcessRunner) Run(ctx context.Context, command, workDir string) (string, int) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workDir
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Start(); err != nil {
		return "", -1
	}
	err := cmd.Wait()
	if err == nil {
		return out.String(), 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return out.String(), exitErr.ExitCode()
	}
	return out.String(), -1
}

// Caller bundles a Runner with the scratch-directory and timeout
// policy each oracle invocation needs. Each call gets a fresh,
// uuid-named scratch directory so concurrent/successive oracle calls
// never clobber each other's input.txt.
type Caller struct {
	Runner      Runner
	ScratchRoot string
	Timeout     time.Duration
}

// NewCaller returns a Caller backed by ProcessRunner.
func NewCaller(scratchRoot string, timeout time.Duration) *Caller {
	return &Caller{Runner: ProcessRunner{}, ScratchRoot: scratchRoot, Timeout: timeout}
}

// Call writes argLines (one argument serialization per line) to
// input.txt in a fresh scratch directory, runs "<cmd> input.txt" there,
// and returns stdout and the exit code. The scratch directory is
// removed before returning.
func (c *Caller) Call(cmd string, argLines []string) (stdout string, exitCode int) {
	scratchDir := filepath.Join(c.ScratchRoot, uuid.NewString())
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return "", -1
	}
	defer os.RemoveAll(scratchDir)

	input := strings.Join(argLines, "\n")
	if len(argLines) > 0 {
		input += "\n"
	}
	if err := os.WriteFile(filepath.Join(scratchDir, "input.txt"), []byte(input), 0o644); err != nil {
		return "", -1
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if c.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return c.Runner.Run(ctx, cmd+" input.txt", scratchDir)
}
