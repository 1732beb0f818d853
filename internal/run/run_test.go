package run

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costela/lpmodel"
)

// script writes an executable shell script into a temporary directory.
func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fake-solver")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRunOutput(t *testing.T) {
	exe := script(t, "echo first\necho second >&2\nprintf 'no newline'\n")

	var logged []string
	logger := lpmodel.LoggerFunc(func(v ...interface{}) {
		logged = append(logged, v[0].(string))
	})

	out, err := Run(context.Background(), Command{Solver: "fake", Executable: exe, Logger: logger})
	require.NoError(t, err)
	assert.Len(t, out.Lines, 3)
	assert.True(t, out.Contains("second"))
	assert.False(t, out.Contains("third"))
	assert.Equal(t, "no newline", out.Tail(1))
	assert.Contains(t, logged, "fake: first")
}

func TestRunExitStatus(t *testing.T) {
	exe := script(t, "echo license expired\nexit 3\n")

	_, err := Run(context.Background(), Command{Solver: "fake", Executable: exe})
	var se *lpmodel.SolveError
	require.True(t, errors.As(err, &se), "got %T: %v", err, err)
	assert.Equal(t, 3, se.ExitCode)
	assert.Equal(t, "fake", se.Solver)
	assert.Contains(t, se.Error(), "license expired")
}

func TestRunNotFound(t *testing.T) {
	_, err := Run(context.Background(), Command{Solver: "fake", Executable: "no-such-solver-executable"})
	assert.Equal(t, lpmodel.ErrExecutableNotFound, errors.Cause(err))
}

func TestRunArgsAndDir(t *testing.T) {
	exe := script(t, `pwd; for a in "$@"; do echo "arg:$a"; done`)
	dir := t.TempDir()

	out, err := Run(context.Background(), Command{Solver: "fake", Executable: exe, Args: []string{"-a", "b c"}, Dir: dir})
	require.NoError(t, err)
	require.Len(t, out.Lines, 3)
	assert.True(t, strings.HasSuffix(out.Lines[0], filepath.Base(dir)))
	assert.Equal(t, "arg:b c", out.Lines[2])
}

func TestRunCanceled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}
	exe := script(t, "exec sleep 10\n")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Run(ctx, Command{Solver: "fake", Executable: exe})
	assert.Equal(t, context.DeadlineExceeded, errors.Cause(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWorkspace(t *testing.T) {
	ws, err := NewWorkspace("", false)
	require.NoError(t, err)

	f, err := ws.Create("problem", "lp")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, filepath.Join(ws.Dir(), "problem-"+ws.ID()+".lp"), f.Name())
	assert.FileExists(t, f.Name())

	require.NoError(t, ws.Close())
	assert.NoDirExists(t, ws.Dir())
}

func TestWorkspaceSharedDir(t *testing.T) {
	dir := t.TempDir()

	ws1, err := NewWorkspace(dir, false)
	require.NoError(t, err)
	ws2, err := NewWorkspace(dir, true)
	require.NoError(t, err)
	assert.NotEqual(t, ws1.ID(), ws2.ID())

	f1, err := ws1.Create("problem", "lp")
	require.NoError(t, err)
	require.NoError(t, f1.Close())
	f2, err := ws2.Create("problem", "lp")
	require.NoError(t, err)
	require.NoError(t, f2.Close())
	assert.NotEqual(t, f1.Name(), f2.Name())

	// only scheduled, never created
	ws1.Path("solution", "sol")

	require.NoError(t, ws1.Close())
	require.NoError(t, ws2.Close())
	assert.NoFileExists(t, f1.Name())
	assert.FileExists(t, f2.Name(), "kept files survive Close")
	assert.DirExists(t, dir)
}

func TestOptionNames(t *testing.T) {
	s := NewSettings("solver")
	s.Options["sec"] = "60"
	s.Options["allowableGap"] = "0.1"
	s.Options["threads"] = "2"

	assert.Equal(t, []string{"allowableGap", "sec", "threads"}, s.OptionNames())
	assert.Equal(t, "solver", s.Executable)
}
