// Package wrapper implements qemu-wrapper: it takes the QEMU command line
// syzkaller emits, transplants the per-VM values into a fixed command line,
// and replaces itself with QEMU.
package wrapper

import (
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/sys/unix"

	"qemuwrapper/internal/argv"
	"qemuwrapper/internal/config"
	"qemuwrapper/internal/launcher"
	"qemuwrapper/internal/rewrite"
	"qemuwrapper/internal/tracelog"
)

// Exit codes returned by Run.
const (
	ExitOK              = 0
	ExitLaunchFailure   = 1
	ExitInvalidArgument = int(unix.EINVAL)
)

const versionFlag = "--version"

// Options carries the collaborators of Run.
type Options struct {
	Config   config.Config
	Launcher launcher.Launcher
	Stderr   io.Writer
	Logger   *log.Logger
}

// Main runs the wrapper against the real process: os.Args, the environment
// and execve. It only returns if QEMU was not launched.
func Main() int {
	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qemu-wrapper: %v\n", err)
		return ExitLaunchFailure
	}

	out := io.Discard
	if cfg.Verbose {
		out = os.Stderr
	}
	logger := log.New(out, "[qemu-wrapper] ", log.LstdFlags|log.Lmsgprefix)

	return Run(os.Args, Options{
		Config:   cfg,
		Launcher: launcher.NewExecLauncher(logger),
		Stderr:   os.Stderr,
		Logger:   logger,
	})
}

// Run executes the wrapper for args (args[0] is the program name) and returns
// the exit code. On a successful launch it does not return.
func Run(args []string, opts Options) int {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	cfg := opts.Config

	// syzkaller probes the binary's version on startup and must see QEMU's answer.
	if len(args) == 2 && args[1] == versionFlag {
		err := opts.Launcher.Launch(cfg.Launcher, argv.Vector{cfg.VersionArgv0, versionFlag}, launcher.Environment{})
		if err != nil {
			fmt.Fprintf(opts.Stderr, "qemu-wrapper: %v\n", err)
			return ExitLaunchFailure
		}
		return ExitOK
	}

	cmdline, err := buildCommandLine(argv.Vector(args), cfg, opts.Logger)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "qemu-wrapper: %v\n", err)
		return ExitInvalidArgument
	}

	if err := opts.Launcher.Launch(cfg.Launcher, cmdline, launcher.QEMUEnvironment()); err != nil {
		fmt.Fprintf(opts.Stderr, "qemu-wrapper: %v\n", err)
		return ExitLaunchFailure
	}
	return ExitOK
}

// buildCommandLine rewrites the template from incoming, tracing both vectors
// when a debug log is configured.
func buildCommandLine(incoming argv.Vector, cfg config.Config, logger *log.Logger) (argv.Vector, error) {
	trace, err := tracelog.New(cfg.DebugLog)
	if err != nil {
		logger.Printf("trace log disabled: %v", err)
		trace, _ = tracelog.New("")
	}
	defer trace.Close()

	if err := trace.Record(tracelog.StageIncoming, incoming); err != nil {
		logger.Printf("trace: %v", err)
	}

	rw := rewrite.New(rewrite.DefaultTemplate(cfg.BIOS))
	rw.OnApply = func(slot rewrite.Slot, index int, value string) {
		logger.Printf("%s: argv[%d] = %q", slot.Name, index, value)
	}

	cmdline, err := rw.Rewrite(incoming)
	if err != nil {
		return nil, err
	}

	if err := trace.Record(tracelog.StageRewritten, cmdline); err != nil {
		logger.Printf("trace: %v", err)
	}
	return cmdline, nil
}
