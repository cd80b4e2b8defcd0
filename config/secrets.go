// Copyright (c) 2023 BVK Chaitanya

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bvk/krakenscan/envfile"
	"github.com/bvk/krakenscan/kraken"
	"github.com/bvk/krakenscan/notify"
)

const (
	EnvFileName = ".krakenscan.env"

	KeyEnv    = "KRAKEN_API_KEY"
	SecretEnv = "KRAKEN_API_SECRET"
)

type Secrets struct {
	Kraken *kraken.Credentials `json:"kraken"`

	Pushover *notify.PushoverKeys `json:"pushover,omitempty"`

	Telegram *notify.TelegramKeys `json:"telegram,omitempty"`
}

// SecretsFromFile reads the json secrets file. A missing file yields empty
// secrets so that public-only commands and environment overrides work
// without one.
func SecretsFromFile(fpath string) (*Secrets, error) {
	s := new(Secrets)
	data, err := os.ReadFile(fpath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("could not unmarshal secrets file %q: %w", fpath, err)
	}
	if s.Kraken == nil {
		s.Kraken = new(kraken.Credentials)
	}
	return s, nil
}

// ApplyEnv overrides the kraken credentials with the environment variables,
// after loading them from the env file in the given directories, the working
// directory or the user's home directory.
func (s *Secrets) ApplyEnv(dirs ...string) error {
	opts := []envfile.Option{envfile.SearchWorkDir(false)}
	if len(dirs) != 0 {
		opts = append(opts, envfile.SearchDirs(dirs...))
	}
	if err := envfile.UpdateEnv(EnvFileName, opts...); err != nil {
		return fmt.Errorf("could not load env file: %w", err)
	}
	if s.Kraken == nil {
		s.Kraken = new(kraken.Credentials)
	}
	if v := os.Getenv(KeyEnv); len(v) != 0 {
		s.Kraken.Key = v
	}
	if v := os.Getenv(SecretEnv); len(v) != 0 {
		s.Kraken.Secret = v
	}
	return nil
}

func (s *Secrets) Check() error {
	if s.Kraken != nil && (len(s.Kraken.Key) != 0 || len(s.Kraken.Secret) != 0) {
		if err := s.Kraken.Check(); err != nil {
			return err
		}
	}
	if s.Pushover != nil {
		if err := s.Pushover.Check(); err != nil {
			return err
		}
	}
	if s.Telegram != nil {
		if err := s.Telegram.Check(); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the secrets file with owner-only permissions.
func (s *Secrets) Save(fpath string) (status error) {
	if err := s.Check(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal secrets: %w", err)
	}

	fp, err := os.CreateTemp(filepath.Dir(fpath), ".secrets*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() {
		if status != nil {
			os.Remove(fp.Name())
		}
		fp.Close()
	}()

	if err := fp.Chmod(0600); err != nil {
		return err
	}
	if _, err := fp.Write(data); err != nil {
		return err
	}
	if err := fp.Sync(); err != nil {
		return err
	}
	if err := os.Rename(fp.Name(), fpath); err != nil {
		return fmt.Errorf("could not rename temp file to %q: %w", fpath, err)
	}
	return nil
}
