// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bvk/krakenscan/config"
	"github.com/visvasity/sglog"
)

// Flags holds the command-line flags shared by all subcommands.
type Flags struct {
	DataDir     string
	ConfigPath  string
	SecretsPath string
	LogDir      string
	LockWait    time.Duration

	backend *sglog.Backend
}

func (f *Flags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.DataDir, "data-dir", "", "path to the data directory (default=$HOME/.krakenscan)")
	fset.StringVar(&f.ConfigPath, "config", "", "path to the yaml tunables file (default=config.yaml in data-dir)")
	fset.StringVar(&f.SecretsPath, "secrets-file", "", "path to the credentials file (default=secrets.json in data-dir)")
	fset.DurationVar(&f.LockWait, "lock-wait", 0, "max time to wait for another command to release the database")
	fset.StringVar(&f.LogDir, "log-dir", "", "when non-empty, log messages are also written to files in this directory")
}

// Resolve creates the data directory if necessary, turns all paths into
// absolute paths and installs the log file backend.
func (f *Flags) Resolve() error {
	if len(f.DataDir) == 0 {
		f.DataDir = filepath.Join(os.Getenv("HOME"), ".krakenscan")
	}
	if _, err := os.Stat(f.DataDir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("could not stat data directory %q: %w", f.DataDir, err)
		}
		if err := os.MkdirAll(f.DataDir, 0700); err != nil {
			return fmt.Errorf("could not create data directory %q: %w", f.DataDir, err)
		}
	}
	dataDir, err := filepath.Abs(f.DataDir)
	if err != nil {
		return fmt.Errorf("could not determine data-dir %q absolute path: %w", f.DataDir, err)
	}
	f.DataDir = dataDir

	if len(f.ConfigPath) == 0 {
		f.ConfigPath = filepath.Join(dataDir, "config.yaml")
	}
	if len(f.SecretsPath) == 0 {
		f.SecretsPath = filepath.Join(dataDir, "secrets.json")
	}

	if len(f.LogDir) != 0 && f.backend == nil {
		f.backend = sglog.NewBackend(&sglog.Options{LogDirs: []string{f.LogDir}})
		slog.SetDefault(slog.New(f.backend.Handler()))
	}
	log.SetFlags(log.Flags() | log.Lmicroseconds)
	return nil
}

// Close flushes the log files, if any.
func (f *Flags) Close() {
	if f.backend != nil {
		f.backend.Close()
		f.backend = nil
	}
}

// Config loads the tunables file.
func (f *Flags) Config() (*config.Config, error) {
	return config.Load(f.ConfigPath)
}

// Secrets loads the secrets file and applies the environment overrides.
func (f *Flags) Secrets() (*config.Secrets, error) {
	secrets, err := config.SecretsFromFile(f.SecretsPath)
	if err != nil {
		return nil, err
	}
	if err := secrets.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := secrets.Check(); err != nil {
		return nil, err
	}
	return secrets, nil
}
