// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bgsetup-cli/internal/python"
)

// fakeExecutable points the executable-directory seam at dir.
func fakeExecutable(t *testing.T, dir string) {
	t.Helper()
	origExec, origEval := osExecutable, evalSymlinks
	t.Cleanup(func() {
		osExecutable, evalSymlinks = origExec, origEval
	})
	osExecutable = func() (string, error) {
		return filepath.Join(dir, "bgsetup"), nil
	}
	evalSymlinks = func(path string) (string, error) {
		return path, nil
	}
}

func TestResolveScript_NextToExecutable(t *testing.T) {
	dir := t.TempDir()
	fakeExecutable(t, dir)

	scriptPath := filepath.Join(dir, "bg_remove.py")
	if err := os.WriteFile(scriptPath, []byte("print('hi')"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveScript("bg_remove.py")
	if err != nil {
		t.Fatalf("ResolveScript() error: %v", err)
	}
	if got != scriptPath {
		t.Errorf("ResolveScript() = %q, want %q", got, scriptPath)
	}
}

func TestResolveScript_FallsBackToCwd(t *testing.T) {
	fakeExecutable(t, t.TempDir()) // Executable dir has no script.

	cwd := t.TempDir()
	t.Chdir(cwd)
	scriptPath := filepath.Join(cwd, "bg_remove.py")
	if err := os.WriteFile(scriptPath, []byte("print('hi')"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveScript("bg_remove.py")
	if err != nil {
		t.Fatalf("ResolveScript() error: %v", err)
	}
	if got != scriptPath {
		t.Errorf("ResolveScript() = %q, want %q", got, scriptPath)
	}
}

func TestResolveScript_NotFound(t *testing.T) {
	fakeExecutable(t, t.TempDir())
	t.Chdir(t.TempDir())

	_, err := ResolveScript("bg_remove.py")
	if !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("ResolveScript() = %v, want ErrScriptNotFound", err)
	}

	var snf *ScriptNotFoundError
	if !errors.As(err, &snf) {
		t.Fatal("error should be a *ScriptNotFoundError")
	}
	if len(snf.Probed) == 0 {
		t.Error("ScriptNotFoundError should list probed paths")
	}
}

func TestResolveScript_Absolute(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "app.py")
	if err := os.WriteFile(scriptPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveScript(scriptPath)
	if err != nil || got != scriptPath {
		t.Errorf("ResolveScript() = %q, %v", got, err)
	}

	if _, err := ResolveScript(filepath.Join(dir, "missing.py")); !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("absolute missing script = %v, want ErrScriptNotFound", err)
	}
}

func TestLauncher_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	fakeExecutable(t, dir)

	// Use sh as a stand-in interpreter so the test has no Python dependency.
	script := filepath.Join(dir, "app.sh")
	if err := os.WriteFile(script, []byte("echo started; exit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	l := &Launcher{
		Interp: python.Interpreter{Path: "sh"},
		Script: "app.sh",
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	}

	code, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if code != 3 {
		t.Errorf("Run() exit code = %d, want 3", code)
	}
	if !strings.Contains(stdout.String(), "started") {
		t.Errorf("Run() stdout = %q", stdout.String())
	}
}

func TestLauncher_Run_MissingScript(t *testing.T) {
	fakeExecutable(t, t.TempDir())
	t.Chdir(t.TempDir())

	l := &Launcher{Interp: python.Interpreter{Path: "sh"}, Script: "app.sh"}
	code, err := l.Run(context.Background())
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("Run() = %v, want ErrScriptNotFound", err)
	}
	if code != 1 {
		t.Errorf("Run() exit code = %d, want 1", code)
	}
}

func TestPause(t *testing.T) {
	var out bytes.Buffer
	Pause(strings.NewReader("\n"), &out)
	if !strings.Contains(out.String(), "Press Enter") {
		t.Errorf("Pause() output = %q", out.String())
	}
}
