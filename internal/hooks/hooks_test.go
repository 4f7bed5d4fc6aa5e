package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScript writes an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts are POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "hook.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInvokeNoCommand(t *testing.T) {
	result, err := Invoke(context.Background(), Options{Op: "add", Location: "/tmp/x.csv"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Ran {
		t.Error("expected Ran to be false")
	}
}

func TestInvokeValidation(t *testing.T) {
	t.Run("missing op", func(t *testing.T) {
		_, err := Invoke(context.Background(), Options{Command: "true"})
		if err == nil || !strings.Contains(err.Error(), "op is empty") {
			t.Errorf("expected op error, got %v", err)
		}
	})

	t.Run("location is directory", func(t *testing.T) {
		result, err := Invoke(context.Background(), Options{
			Command:  "true",
			Op:       "add",
			Location: t.TempDir(),
		})
		if err == nil || !strings.Contains(err.Error(), "is a directory") {
			t.Errorf("expected directory error, got %v", err)
		}
		if result.Ran {
			t.Error("expected Ran to be false")
		}
	})
}

func TestInvokeArguments(t *testing.T) {
	script := writeScript(t, `echo "$1|$2|$3|$TASKDESK_INDEX"
cat`)
	var stdout bytes.Buffer

	result, err := Invoke(context.Background(), Options{
		Command:  script,
		Op:       "done",
		Location: "/data/sample.csv",
		Count:    4,
		Index:    2,
		Stdout:   &stdout,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Ran || result.ExitCode != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Command) != 4 || result.Command[1] != "done" {
		t.Errorf("Command = %v", result.Command)
	}

	lines := strings.SplitN(stdout.String(), "\n", 2)
	if lines[0] != "done|/data/sample.csv|4|2" {
		t.Errorf("args line = %q", lines[0])
	}
	var payload Payload
	if err := json.Unmarshal([]byte(lines[1]), &payload); err != nil {
		t.Fatalf("stdin payload %q: %v", lines[1], err)
	}
	want := Payload{Op: "done", Location: "/data/sample.csv", Count: 4, Index: 2}
	if payload != want {
		t.Errorf("payload = %+v, want %+v", payload, want)
	}
}

func TestInvokeHookFailure(t *testing.T) {
	script := writeScript(t, "echo oops >&2\nexit 42")
	var stderr bytes.Buffer

	result, err := Invoke(context.Background(), Options{
		Command: script,
		Op:      "add",
		Stderr:  &stderr,
	})
	if err == nil {
		t.Fatal("expected error for failed hook, got nil")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Errorf("error should wrap *exec.ExitError, got %T", errors.Unwrap(err))
	}
	if !result.Ran || result.ExitCode != 42 {
		t.Errorf("result = %+v", result)
	}
	if strings.TrimSpace(stderr.String()) != "oops" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestInvokeWithWorkDir(t *testing.T) {
	workDir := t.TempDir()
	script := writeScript(t, "pwd")
	var stdout bytes.Buffer

	if _, err := Invoke(context.Background(), Options{
		Command: script,
		Op:      "add",
		WorkDir: workDir,
		Stdout:  &stdout,
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, _ := filepath.EvalSymlinks(strings.TrimSpace(stdout.String()))
	want, _ := filepath.EvalSymlinks(workDir)
	if got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestInvokeWithContextCancellation(t *testing.T) {
	script := writeScript(t, "sleep 10")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := Invoke(ctx, Options{Command: script, Op: "add"})
	if err == nil {
		t.Fatal("expected cancelled hook to fail")
	}
	if !result.Ran {
		t.Error("expected Ran to be true")
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("hook was not killed on cancellation")
	}
}

func TestInvokeMissingBinary(t *testing.T) {
	result, err := Invoke(context.Background(), Options{
		Command: filepath.Join(t.TempDir(), "no-such-hook"),
		Op:      "add",
	})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if result.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", result.ExitCode)
	}
}

func TestExitCodeFromError(t *testing.T) {
	if got := exitCodeFromError(nil); got != 0 {
		t.Errorf("nil: got %d", got)
	}
	if got := exitCodeFromError(errors.New("boom")); got != -1 {
		t.Errorf("plain error: got %d", got)
	}
}
