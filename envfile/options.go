// Copyright (c) 2025 BVK Chaitanya

package envfile

import (
	"fmt"
	"os"
	"regexp"
)

var nameRe = regexp.MustCompile("^[a-zA-Z][0-9a-zA-Z_]*$")

type options struct {
	dirs []string

	workDir     bool
	workParents bool

	overwrite bool
}

type Option func(*options) error

// SearchDirs adds directories that are searched, in order, before the
// working directory and the home directory.
func SearchDirs(dirs ...string) Option {
	return func(opts *options) error {
		for _, dir := range dirs {
			if len(dir) == 0 {
				return fmt.Errorf("search directory cannot be empty: %w", os.ErrInvalid)
			}
		}
		opts.dirs = append(opts.dirs, dirs...)
		return nil
	}
}

// SearchWorkDir includes the working directory, and optionally all of its
// parent directories, in the search before the home directory.
func SearchWorkDir(parents bool) Option {
	return func(opts *options) error {
		opts.workDir = true
		opts.workParents = parents
		return nil
	}
}

// Overwrite replaces variables that already have a non-empty value in the
// process environment. By default such variables are left untouched.
func Overwrite(overwrite bool) Option {
	return func(opts *options) error {
		opts.overwrite = overwrite
		return nil
	}
}
