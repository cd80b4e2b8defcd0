// Copyright (c) 2025 BVK Chaitanya

// Package envfile loads environment variables from a dotenv style file.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Parse reads NAME=VALUE assignments, one per line. Blank lines and lines
// starting with # are ignored, an optional "export " prefix is dropped and
// double or single quoted values are unquoted. No shell expansion is
// performed.
func Parse(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid/unrecognized variable assignment on line %d: %w", i, os.ErrInvalid)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !nameRe.MatchString(key) {
			return nil, fmt.Errorf("invalid environment variable name %q on line %d: %w", key, i, os.ErrInvalid)
		}
		if n := len(value); n >= 2 {
			switch {
			case value[0] == '"' && value[n-1] == '"':
				v, err := strconv.Unquote(value)
				if err != nil {
					return nil, fmt.Errorf("invalid quoted value on line %d: %w", i, os.ErrInvalid)
				}
				value = v
			case value[0] == '\'' && value[n-1] == '\'':
				value = value[1 : n-1]
			}
		}
		vars[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// UpdateEnv loads the first env file found in the search path into the
// process environment. Home directory is always searched last. A missing env
// file is not an error.
func UpdateEnv(filename string, opts ...Option) error {
	if strings.ContainsRune(filename, os.PathSeparator) {
		return fmt.Errorf("file name contains path separator: %w", os.ErrInvalid)
	}
	var fopts options
	for _, opt := range opts {
		if err := opt(&fopts); err != nil {
			return err
		}
	}
	fpaths, err := searchPaths(filename, &fopts)
	if err != nil {
		return err
	}
	for _, fpath := range fpaths {
		fp, err := os.Open(fpath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			continue
		}
		vars, err := Parse(fp)
		fp.Close()
		if err != nil {
			return fmt.Errorf("could not parse env file %q: %w", fpath, err)
		}
		for key, value := range vars {
			if len(os.Getenv(key)) != 0 && !fopts.overwrite {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func searchPaths(filename string, fopts *options) ([]string, error) {
	var fpaths []string
	for _, dir := range fopts.dirs {
		fpaths = append(fpaths, filepath.Join(dir, filename))
	}
	if fopts.workDir {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		for dir := wd; ; dir = filepath.Dir(dir) {
			fpaths = append(fpaths, filepath.Join(dir, filename))
			if !fopts.workParents || dir == filepath.Dir(dir) {
				break
			}
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Home directory is optional when other directories are searched.
		if len(fpaths) == 0 {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		return fpaths, nil
	}
	return append(fpaths, filepath.Join(home, filename)), nil
}
