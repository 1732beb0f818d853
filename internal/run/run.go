// Package run launches solver executables: path lookup, working files,
// output capture and exit status classification.
package run

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/costela/lpmodel"
)

// tailLines is the number of output lines kept in a *lpmodel.SolveError.
const tailLines = 10

// waitDelay bounds the wait for output pipes after the process was killed,
// e.g. when it left children behind.
const waitDelay = 2 * time.Second

// Workspace holds the files exchanged with one solver run. Files are named
// <prefix>-<run id>.<ext> so concurrent runs sharing a directory do not
// collide.
type Workspace struct {
	id    string
	dir   string
	owned bool
	keep  bool
	files []string
}

// NewWorkspace prepares a workspace in dir, or in a fresh temporary
// directory when dir is empty. With keep, Close leaves the files in place.
func NewWorkspace(dir string, keep bool) (*Workspace, error) {
	ws := &Workspace{id: uuid.NewString(), dir: dir, keep: keep}
	if dir == "" {
		tmp, err := os.MkdirTemp("", "lpmodel-")
		if err != nil {
			return nil, errors.Wrap(err, "creating working directory")
		}
		ws.dir, ws.owned = tmp, true
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating working directory %s", dir)
	}
	return ws, nil
}

// ID returns the run ID.
func (ws *Workspace) ID() string { return ws.id }

func (ws *Workspace) Dir() string { return ws.dir }

// Path returns the name of a workspace file and schedules it for removal.
// The file is not created.
func (ws *Workspace) Path(prefix, ext string) string {
	p := filepath.Join(ws.dir, fmt.Sprintf("%s-%s.%s", prefix, ws.id, ext))
	ws.files = append(ws.files, p)
	return p
}

// Create creates a workspace file for writing.
func (ws *Workspace) Create(prefix, ext string) (*os.File, error) {
	f, err := os.Create(ws.Path(prefix, ext))
	if err != nil {
		return nil, errors.Wrap(err, "creating working file")
	}
	return f, nil
}

// Close removes the workspace files, and the directory if the workspace
// created it, unless asked to keep them.
func (ws *Workspace) Close() error {
	if ws.keep {
		return nil
	}
	if ws.owned {
		return errors.Wrap(os.RemoveAll(ws.dir), "removing working directory")
	}
	for _, f := range ws.files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "removing working file")
		}
	}
	return nil
}

// Command describes a solver invocation.
type Command struct {
	// Solver names the solver in errors and log lines.
	Solver string
	// Executable is a file name looked up in PATH, or a path.
	Executable string
	Args       []string
	Dir        string
	Logger     lpmodel.Logger
}

// Output is what the solver printed on stdout and stderr, line by line.
type Output struct {
	Lines []string
}

// Contains reports whether any line contains s.
func (o *Output) Contains(s string) bool {
	for _, l := range o.Lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

// Tail returns the last n lines joined by newlines.
func (o *Output) Tail(n int) string {
	lines := o.Lines
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Run runs the command to completion, forwarding every output line to the
// logger. A missing executable wraps lpmodel.ErrExecutableNotFound and a
// non-zero exit status is returned as *lpmodel.SolveError. The process is
// killed when ctx is done.
func Run(ctx context.Context, cmd Command) (*Output, error) {
	path, err := exec.LookPath(cmd.Executable)
	if err != nil {
		return nil, errors.Wrapf(lpmodel.ErrExecutableNotFound, "%s: %v", cmd.Executable, err)
	}

	logger := cmd.Logger
	if logger == nil {
		logger = lpmodel.NoopLogger()
	}
	lw := &lineWriter{logger: logger, prefix: cmd.Solver + ": "}

	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = lw
	c.Stderr = lw
	c.WaitDelay = waitDelay

	logger.Print(fmt.Sprintf("running %s %s", path, strings.Join(cmd.Args, " ")))
	err = c.Run()
	lw.flush()
	out := &Output{Lines: lw.lines}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, errors.Wrapf(ctxErr, "running %s", cmd.Solver)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, nil
	case errors.As(err, &exitErr):
		return out, &lpmodel.SolveError{
			Solver:   cmd.Solver,
			ExitCode: exitErr.ExitCode(),
			Output:   out.Tail(tailLines),
		}
	default:
		return out, errors.Wrapf(err, "running %s", cmd.Solver)
	}
}

type lineWriter struct {
	logger lpmodel.Logger
	prefix string
	buf    []byte
	lines  []string
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

func (w *lineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	w.lines = append(w.lines, line)
	w.logger.Print(w.prefix + line)
}
