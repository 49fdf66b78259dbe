// Package testutil provides shared test helpers for the catalog tools.
package testutil

import (
	"testing"

	"github.com/astrotransients/sne-tools/internal/fsutil"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteFiles stores each path's contents in fs.
func WriteFiles(t *testing.T, fs fsutil.FileSystem, files map[string]string) {
	t.Helper()
	for path, data := range files {
		if err := fs.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// ReadString returns the contents of path, failing the test if it cannot
// be read.
func ReadString(t *testing.T, fs fsutil.FileSystem, path string) string {
	t.Helper()
	b, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
