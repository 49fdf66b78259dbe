package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEventFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SN1987A", "SN1987A"},
		{"SNLS-04D3fq/b", "SNLS-04D3fq_b"},
		{`odd\name`, "odd_name"},
		{"a/b/c", "a_b_c"},
	}

	for _, tc := range tests {
		if got := EventFilename(tc.in); got != tc.want {
			t.Errorf("EventFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	if err := os.MkdirAll(safeDir, 0755); err != nil {
		t.Fatalf("Failed to create safe directory: %v", err)
	}
	if err := os.MkdirAll(unsafeDir, 0755); err != nil {
		t.Fatalf("Failed to create unsafe directory: %v", err)
	}

	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{
			name:      "plot page inside output directory",
			filePath:  filepath.Join(safeDir, "SN2011fe.html"),
			safeDir:   safeDir,
			wantError: false,
		},
		{
			name:      "output directory not created yet",
			filePath:  filepath.Join(tmpDir, "later", "SN2011fe.html"),
			safeDir:   filepath.Join(tmpDir, "later"),
			wantError: false,
		},
		{
			name:      "traversal with ..",
			filePath:  filepath.Join(safeDir, "..", "SN2011fe.html"),
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "write through symlink",
			filePath:  filepath.Join(symlinkPath, "SN2011fe.html"),
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "sibling directory with shared prefix",
			filePath:  filepath.Join(tmpDir, "safe-other", "SN2011fe.html"),
			safeDir:   safeDir,
			wantError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tc.filePath, tc.safeDir)
			if (err != nil) != tc.wantError {
				t.Errorf("ValidatePathWithinDirectory(%q, %q) error = %v, wantError %v",
					tc.filePath, tc.safeDir, err, tc.wantError)
			}
		})
	}
}
