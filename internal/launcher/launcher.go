// Package launcher replaces the wrapper process with the real QEMU binary.
package launcher

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/sys/unix"

	"qemuwrapper/internal/argv"
)

// ErrLaunch is matched by every LaunchError.
var ErrLaunch = errors.New("launch failed")

// LaunchError is returned when the target binary could not be started.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("execve %s failed: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() []error { return []error{ErrLaunch, e.Err} }

// Launcher is the interface for process replacement.
type Launcher interface {
	// Launch replaces the current process with path. It only returns on failure.
	Launch(path string, args argv.Vector, env Environment) error
}

// ExecLauncher launches via execve(2). The new image gets args and env and nothing else.
type ExecLauncher struct {
	logger *log.Logger
	exec   func(path string, argv []string, envv []string) error
}

// NewExecLauncher creates an execve-based launcher.
func NewExecLauncher(logger *log.Logger) *ExecLauncher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ExecLauncher{logger: logger, exec: unix.Exec}
}

// Launch execs path. On success it never returns.
func (l *ExecLauncher) Launch(path string, args argv.Vector, env Environment) error {
	if len(args) == 0 {
		return &LaunchError{Path: path, Err: errors.New("empty argument vector")}
	}

	l.logger.Printf("exec: %s %s", path, strings.Join(args[1:], " "))

	if err := l.exec(path, args, env.Entries()); err != nil {
		return &LaunchError{Path: path, Err: err}
	}
	return nil
}
