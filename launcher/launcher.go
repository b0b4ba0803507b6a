//go:build !js

// Package launcher starts companion viewer processes for detail views.
//
// A detail view (single-point waveform browser, spectrum inspector) runs as
// a separate binary resolved on PATH. The current view state crosses the
// process boundary in its query-string form, so a companion receives the
// exact state the main window shows.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"

	"github.com/heliodyne/pulseview/log"
	"github.com/heliodyne/pulseview/types"
	"github.com/heliodyne/pulseview/viewstate"
)

// ErrNotFound indicates the companion binary is not installed on PATH.
var ErrNotFound = errors.New("launcher: companion binary not found")

// Launcher resolves and starts one kind of companion viewer.
type Launcher struct {
	binary string
	path   string
	logger *log.Logger
}

// New resolves binary on PATH. Returns ErrNotFound when it is not
// installed; the caller decides whether that disables the feature or is
// fatal.
func New(binary string, logger *log.Logger) (*Launcher, error) {
	if logger == nil {
		logger = log.Nop()
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, binary)
	}
	return &Launcher{binary: binary, path: path, logger: logger}, nil
}

// Process is a started companion viewer.
type Process struct {
	cmd *exec.Cmd
}

// Open starts the companion with the serialized view state as its single
// argument. The process is not waited on; call Wait or Stop on the result.
func (l *Launcher) Open(ctx context.Context, view types.ViewState) (*Process, error) {
	state := viewstate.Serialize(view)
	cmd := exec.CommandContext(ctx, l.path, "--state", state)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launcher: start %s: %w", l.binary, err)
	}
	l.logger.Info("companion viewer started", map[string]any{
		"binary":  l.binary,
		"pid":     cmd.Process.Pid,
		"dataset": view.Dataset,
	})
	return &Process{cmd: cmd}, nil
}

// Wait blocks until the companion exits.
func (p *Process) Wait() error {
	return p.cmd.Wait()
}

// Stop kills the companion process. The exit error from the kill is
// reported by Wait, not here.
func (p *Process) Stop() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// ViewURL renders the browser form of a view: base joined with the
// serialized state as the query string. Used when the companion target is
// a browser tab rather than a native binary.
func ViewURL(base string, view types.ViewState) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("launcher: invalid base URL %q: %w", base, err)
	}
	u.RawQuery = viewstate.Serialize(view)
	return u.String(), nil
}
