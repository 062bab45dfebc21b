package wrapper

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"qemuwrapper/internal/argv"
	"qemuwrapper/internal/config"
	"qemuwrapper/internal/launcher"
	"qemuwrapper/internal/tracelog"
)

type launchCall struct {
	path string
	args argv.Vector
	env  launcher.Environment
}

// fakeLauncher records launches instead of replacing the test process.
type fakeLauncher struct {
	calls []launchCall
	err   error
}

func (f *fakeLauncher) Launch(path string, args argv.Vector, env launcher.Environment) error {
	f.calls = append(f.calls, launchCall{path: path, args: args.Clone(), env: env})
	return f.err
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Launcher:     "/opt/qemu/bin/qemu-system-x86_64",
		BIOS:         "/opt/qemu/share/bios.bin",
		DebugLog:     filepath.Join(t.TempDir(), "wrapper.log"),
		VersionArgv0: config.DefaultVersionArgv0,
	}
}

func harnessArgs() []string {
	return []string{
		"/usr/bin/qemu-wrapper",
		"-m", "2048",
		"-smp", "2",
		"-chardev", "socket,id=SOCKSYZ,server=on,wait=off,host=localhost,port=7000",
		"-mon", "chardev=SOCKSYZ,mode=control",
		"-name", "VM-5",
		"-netdev", "user,id=net0,restrict=on,hostfwd=tcp:127.0.0.1:2222-:22",
		"-hda", "/tmp/disk.img",
		"-kernel", "/boot/bzImage",
		"-append", "console=ttyS0",
	}
}

func TestRunVersionQuery(t *testing.T) {
	cfg := testConfig(t)
	fl := &fakeLauncher{}
	var stderr bytes.Buffer

	code := Run([]string{"qemu-wrapper", "--version"}, Options{Config: cfg, Launcher: fl, Stderr: &stderr})

	assert.Equal(t, ExitOK, code)
	require.Len(t, fl.calls, 1)
	assert.Equal(t, cfg.Launcher, fl.calls[0].path)
	assert.Equal(t, argv.Vector{"qemu-system-x86_64", "--version"}, fl.calls[0].args)
	assert.Empty(t, fl.calls[0].env)
	assert.Empty(t, stderr.String())

	// The version probe never touches the slot machinery or the trace.
	_, err := os.Stat(cfg.DebugLog)
	assert.True(t, os.IsNotExist(err))
}

func TestRunVersionQueryLaunchFailure(t *testing.T) {
	fl := &fakeLauncher{err: &launcher.LaunchError{Path: "/missing", Err: unix.ENOENT}}
	var stderr bytes.Buffer

	code := Run([]string{"qemu-wrapper", "--version"}, Options{Config: testConfig(t), Launcher: fl, Stderr: &stderr})

	assert.Equal(t, ExitLaunchFailure, code)
	assert.Contains(t, stderr.String(), "qemu-wrapper: execve /missing failed")
}

func TestRunVersionWithExtraArgsIsRewritten(t *testing.T) {
	fl := &fakeLauncher{}
	var stderr bytes.Buffer

	code := Run([]string{"qemu-wrapper", "--version", "-m", "1G"}, Options{Config: testConfig(t), Launcher: fl, Stderr: &stderr})

	assert.Equal(t, ExitInvalidArgument, code)
	assert.Empty(t, fl.calls)
	assert.Contains(t, stderr.String(), "VM name arg not found")
}

func TestRunRewritesAndLaunches(t *testing.T) {
	cfg := testConfig(t)
	fl := &fakeLauncher{}
	var stderr bytes.Buffer

	code := Run(harnessArgs(), Options{Config: cfg, Launcher: fl, Stderr: &stderr})

	require.Equal(t, ExitOK, code, stderr.String())
	require.Len(t, fl.calls, 1)

	call := fl.calls[0]
	assert.Equal(t, cfg.Launcher, call.path)
	assert.Equal(t, launcher.Environment{"QEMU_BIOS_IN_RAM": "1"}, call.env)

	after := func(flag string) string {
		idx := argv.Locate(call.args, flag, argv.Exact)
		require.NotEqual(t, argv.NotFound, idx)
		return call.args[idx+1]
	}
	assert.Equal(t, "2048", after("-m"))
	assert.Equal(t, "2", after("-smp"))
	assert.Equal(t, "VM-5", after("-name"))
	assert.Equal(t, "/boot/bzImage", after("-kernel"))
	assert.Equal(t, "id=drive0,file=/tmp/disk.img,if=virtio", after("-drive"))
	assert.Equal(t, "user,id=net0,restrict=on,hostfwd=tcp:127.0.0.1:2222-:22", after("-netdev"))
	assert.Equal(t, "socket,id=SOCKSYZ,server=on,wait=off,host=localhost,port=7000", after("-chardev"))
	assert.Equal(t, cfg.BIOS, after("-bios"))

	// The harness's own -append is dropped in favour of the template's.
	assert.NotContains(t, call.args, "console=ttyS0")

	entries, err := tracelog.Read(cfg.DebugLog)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, tracelog.StageIncoming, entries[0].Stage)
	assert.Equal(t, harnessArgs(), entries[0].Args)
	assert.Equal(t, tracelog.StageRewritten, entries[1].Stage)
	assert.Equal(t, []string(call.args), entries[1].Args)
}

func TestRunMissingToken(t *testing.T) {
	cfg := testConfig(t)
	fl := &fakeLauncher{}
	var stderr bytes.Buffer

	var args []string
	for _, a := range harnessArgs() {
		if a != "-kernel" {
			args = append(args, a)
		}
	}

	code := Run(args, Options{Config: cfg, Launcher: fl, Stderr: &stderr})

	assert.Equal(t, ExitInvalidArgument, code)
	assert.Equal(t, 22, code)
	assert.Empty(t, fl.calls, "nothing may be launched after a failed rewrite")
	assert.Contains(t, stderr.String(), "-kernel arg not found in incoming arguments")

	entries, err := tracelog.Read(cfg.DebugLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, tracelog.StageIncoming, entries[0].Stage)
}

func TestRunLaunchFailure(t *testing.T) {
	fl := &fakeLauncher{err: &launcher.LaunchError{Path: "/opt/qemu/bin/qemu-system-x86_64", Err: unix.EACCES}}
	var stderr bytes.Buffer

	code := Run(harnessArgs(), Options{Config: testConfig(t), Launcher: fl, Stderr: &stderr})

	assert.Equal(t, ExitLaunchFailure, code)
	assert.Len(t, fl.calls, 1)
	assert.Contains(t, stderr.String(), "execve /opt/qemu/bin/qemu-system-x86_64 failed")
}

func TestRunTraceUnavailable(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	cfg.DebugLog = filepath.Join(blocker, "wrapper.log")

	fl := &fakeLauncher{}
	code := Run(harnessArgs(), Options{Config: cfg, Launcher: fl, Stderr: &bytes.Buffer{}})

	assert.Equal(t, ExitOK, code)
	assert.Len(t, fl.calls, 1)
}
