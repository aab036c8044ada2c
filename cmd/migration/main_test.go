package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskibarqy/clubsync/internal/platform/logging"
)

func TestParseCount(t *testing.T) {
	if got, err := parseCount(" 3 "); err != nil || got != 3 {
		t.Fatalf("expected 3, got=%d err=%v", got, err)
	}
	for _, bad := range []string{"0", "-2", "x"} {
		if _, err := parseCount(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseVersion(t *testing.T) {
	if got, err := parseVersion("4"); err != nil || got != 4 {
		t.Fatalf("unexpected version: %d err=%v", got, err)
	}
	for _, bad := range []string{"-1", "two", "99999999999999999999"} {
		if _, err := parseVersion(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFindMigrationsDir(t *testing.T) {
	dir := t.TempDir()
	got, err := findMigrationsDir(dir)
	if err != nil || got != dir {
		t.Fatalf("expected explicit dir, got=%q err=%v", got, err)
	}

	file := filepath.Join(dir, "not-a-dir.sql")
	if err := os.WriteFile(file, []byte("--"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := findMigrationsDir(file); err == nil {
		t.Fatalf("expected error for a file path")
	}
}

func TestRun_UnknownCommandIsUsage(t *testing.T) {
	if err := run(logging.NewNop(), "sideways", nil); !errors.Is(err, errUsage) {
		t.Fatalf("expected errUsage, got=%v", err)
	}
}

func TestRun_RequiresDBURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	err := run(logging.NewNop(), "up", nil)
	if err == nil || errors.Is(err, errUsage) || !strings.Contains(err.Error(), "DB_URL") {
		t.Fatalf("expected DB_URL error, got=%v", err)
	}
}

func TestPrintUsage_ListsCommands(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf, "migrate")
	out := buf.String()
	for _, name := range []string{"up", "down [steps]", "force <version>", "seed"} {
		if !strings.Contains(out, name) {
			t.Fatalf("usage missing %q:\n%s", name, out)
		}
	}
}
