// Copyright (c) 2025 BVK Chaitanya

package envfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# kraken credentials
KRAKEN_API_KEY=abc
export KRAKEN_API_SECRET="c2VjcmV0PT0="
QUOTED='a # b'
EMPTY=
`
	vars, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"KRAKEN_API_KEY":    "abc",
		"KRAKEN_API_SECRET": "c2VjcmV0PT0=",
		"QUOTED":            "a # b",
		"EMPTY":             "",
	}
	if len(vars) != len(want) {
		t.Fatalf("want %d variables, got %d: %v", len(want), len(vars), vars)
	}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("%s: want %q, got %q", k, v, vars[k])
		}
	}

	for _, bad := range []string{"NOVALUE", "1BAD=x", "A=\"unterminated\\\""} {
		if _, err := Parse(strings.NewReader(bad)); !errors.Is(err, os.ErrInvalid) {
			t.Errorf("%q: want ErrInvalid, got %v", bad, err)
		}
	}
}

func TestUpdateEnv(t *testing.T) {
	dir := t.TempDir()
	data := "ENVFILE_TEST_A=from-file\nENVFILE_TEST_B=from-file\n"
	if err := os.WriteFile(filepath.Join(dir, ".testenv"), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENVFILE_TEST_A", "")
	t.Setenv("ENVFILE_TEST_B", "preset")

	if err := UpdateEnv(".testenv", SearchDirs(dir)); err != nil {
		t.Fatal(err)
	}
	if v := os.Getenv("ENVFILE_TEST_A"); v != "from-file" {
		t.Fatalf("want from-file, got %q", v)
	}
	if v := os.Getenv("ENVFILE_TEST_B"); v != "preset" {
		t.Fatalf("existing value must not be overwritten, got %q", v)
	}

	if err := UpdateEnv(".testenv", SearchDirs(dir), Overwrite(true)); err != nil {
		t.Fatal(err)
	}
	if v := os.Getenv("ENVFILE_TEST_B"); v != "from-file" {
		t.Fatalf("want overwritten value, got %q", v)
	}

	if err := UpdateEnv("a/b"); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want ErrInvalid for a path, got %v", err)
	}
	if err := UpdateEnv(".missing-env-file", SearchDirs(dir)); err != nil {
		t.Fatalf("missing env file must not be an error, got %v", err)
	}
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	var opts options
	for _, opt := range []Option{SearchDirs("/etc/krakenscan"), SearchWorkDir(false)} {
		if err := opt(&opts); err != nil {
			t.Fatal(err)
		}
	}
	fpaths, err := searchPaths(".env", &opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/etc/krakenscan/.env", filepath.Join(wd, ".env"), "/home/tester/.env"}
	if len(fpaths) != len(want) {
		t.Fatalf("want %v, got %v", want, fpaths)
	}
	for i := range want {
		if fpaths[i] != want[i] {
			t.Errorf("path %d: want %q, got %q", i, want[i], fpaths[i])
		}
	}

	if err := SearchDirs("")(&opts); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want ErrInvalid for an empty directory, got %v", err)
	}
}
