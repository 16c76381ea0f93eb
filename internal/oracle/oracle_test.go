package oracle

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCallWritesOneArgumentPerLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	caller := NewCaller(t.TempDir(), 0)
	stdout, exitCode := caller.Call("cat", []string{"1", "2", "three"})
	if exitCode != 0 {
		t.Fatalf("cat input.txt exited %d, want 0", exitCode)
	}
	want := "1\n2\nthree\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestCallNonzeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	caller := NewCaller(t.TempDir(), 0)
	_, exitCode := caller.Call("false", nil)
	if exitCode != 1 {
		t.Errorf("exitCode = %d, want 1", exitCode)
	}
}

func TestCallScratchDirIsCleanedUp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	root := t.TempDir()
	caller := NewCaller(root, 0)
	caller.Call("true", []string{"x"})

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch root has %d leftover entries, want 0", len(entries))
	}
}

type recordingRunner struct {
	gotCommand string
	gotWorkDir string
}

func (r *recordingRunner) Run(_ context.Context, command, workDir string) (string, int) {
	r.gotCommand = command
	r.gotWorkDir = workDir
	return "ok", 0
}

func TestCallInvokesCmdWithInputFileArgument(t *testing.T) {
	runner := &recordingRunner{}
	caller := &Caller{Runner: runner, ScratchRoot: t.TempDir()}
	stdout, exitCode := caller.Call("./my-oracle.sh", []string{"a"})
	if exitCode != 0 || stdout != "ok" {
		t.Fatalf("Call = (%q, %d), want (\"ok\", 0)", stdout, exitCode)
	}
	if runner.gotCommand != "./my-oracle.sh input.txt" {
		t.Errorf("command = %q, want \"./my-oracle.sh input.txt\"", runner.gotCommand)
	}
	if filepath.Dir(runner.gotWorkDir) != filepath.Clean(caller.ScratchRoot) {
		t.Errorf("Run's workDir %q was not inside ScratchRoot %q", runner.gotWorkDir, caller.ScratchRoot)
	}
}

func TestProcessRunnerSpawnFailure(t *testing.T) {
	var r ProcessRunner
	_, exitCode := r.Run(context.Background(), "", t.TempDir()+"/does-not-exist")
	if exitCode != -1 {
		t.Errorf("running in a nonexistent directory should report exitCode -1, got %d", exitCode)
	}
}
