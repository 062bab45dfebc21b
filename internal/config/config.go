// Package config holds the paths the wrapper is built with. A YAML file
// named by QEMU_WRAPPER_CONFIG may override them at run time.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Build-time defaults, set with
//
//	-ldflags "-X qemuwrapper/internal/config.LauncherPath=/opt/qemu/bin/qemu-system-x86_64"
var (
	LauncherPath = "/usr/bin/qemu-system-x86_64"
	BIOSPath     = "/usr/share/qemu/bios.bin"
	DebugLogPath = ""
)

// Environment variables read by the wrapper itself. Neither is passed to QEMU.
const (
	EnvConfigPath = "QEMU_WRAPPER_CONFIG"
	EnvVerbose    = "QEMU_WRAPPER_VERBOSE"
)

// DefaultVersionArgv0 is argv[0] for the --version probe.
const DefaultVersionArgv0 = "qemu-system-x86_64"

// Config is the resolved wrapper configuration.
type Config struct {
	Launcher     string `yaml:"launcher"`
	BIOS         string `yaml:"bios"`
	DebugLog     string `yaml:"debug_log"`
	VersionArgv0 string `yaml:"version_argv0"`
	Verbose      bool   `yaml:"verbose"`
}

// Default returns the build-time configuration.
func Default() Config {
	return Config{
		Launcher:     LauncherPath,
		BIOS:         BIOSPath,
		DebugLog:     DebugLogPath,
		VersionArgv0: DefaultVersionArgv0,
	}
}

// Load reads a YAML override file. Fields left empty keep their build-time value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var override Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if override.Launcher != "" {
		cfg.Launcher = override.Launcher
	}
	if override.BIOS != "" {
		cfg.BIOS = override.BIOS
	}
	if override.DebugLog != "" {
		cfg.DebugLog = override.DebugLog
	}
	if override.VersionArgv0 != "" {
		cfg.VersionArgv0 = override.VersionArgv0
	}
	cfg.Verbose = override.Verbose

	return cfg, nil
}

// FromEnv resolves the configuration using getenv (normally os.Getenv).
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	if path := getenv(EnvConfigPath); path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}

	if v := getenv(EnvVerbose); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", EnvVerbose, err)
		}
		cfg.Verbose = verbose
	}

	return cfg, nil
}
