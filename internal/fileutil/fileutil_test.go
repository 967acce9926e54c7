package fileutil_test

// Notes:
// - WriteFileAtomic: the Write, Chmod and Close error branches are not
//   tested because triggering disk failures is platform-specific.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/alnah/go-mdext/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Atomic writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates parents and writes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "a", "b", "out.html")
		if err := fileutil.WriteFileAtomic(path, []byte("<p>x</p>"), 0o644, 0o750); err != nil {
			t.Fatalf("WriteFileAtomic: %v", err)
		}
		got, err := os.ReadFile(path) // #nosec G304 -- test path
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "<p>x</p>" {
			t.Errorf("content = %q", got)
		}
		if runtime.GOOS != "windows" {
			info, _ := os.Stat(path)
			if info.Mode().Perm() != 0o644 {
				t.Errorf("mode = %v, want 0644", info.Mode().Perm())
			}
		}
	})

	t.Run("replaces and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.html")
		for _, body := range []string{"first", "second"} {
			if err := fileutil.WriteFileAtomic(path, []byte(body), 0o644, 0o750); err != nil {
				t.Fatalf("WriteFileAtomic: %v", err)
			}
		}
		got, _ := os.ReadFile(path) // #nosec G304 -- test path
		if string(got) != "second" {
			t.Errorf("content = %q, want second", got)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want only out.html", len(entries))
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := fileutil.WriteFileAtomic("", nil, 0o644, 0o750); !errors.Is(err, fileutil.ErrEmptyPath) {
			t.Errorf("error = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("target is a directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := filepath.Join(dir, "taken")
		if err := os.Mkdir(target, 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(target, "keep"), nil, 0o600); err != nil {
			t.Fatal(err)
		}
		if err := fileutil.WriteFileAtomic(target, []byte("x"), 0o644, 0o750); err == nil {
			t.Error("expected error replacing a non-empty directory")
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("temp file left behind: %d entries", len(entries))
		}
	})
}

// ---------------------------------------------------------------------------
// TestFileExists - File existence checks
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(file, []byte("tab_width: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"regular file", file, true},
		{"directory", dir, false},
		{"missing", filepath.Join(dir, "nope.yaml"), false},
		{"empty path", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - Path vs name detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"site", false},
		{"my-site", false},
		{"site.yaml", false},
		{"./site.yaml", true},
		{"../shared/site.yaml", true},
		{"/etc/mdext/site.yaml", true},
		{`C:\mdext\site.yaml`, true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasExtension / TestReplaceExtension
// ---------------------------------------------------------------------------

func TestHasExtension(t *testing.T) {
	t.Parallel()

	exts := []string{".md", ".markdown"}
	tests := []struct {
		path string
		want bool
	}{
		{"a.md", true},
		{"dir/A.MD", true},
		{"b.Markdown", true},
		{"c.txt", false},
		{"md", false},
		{"dir.md/file", false},
	}

	for _, tt := range tests {
		if got := fileutil.HasExtension(tt.path, exts...); got != tt.want {
			t.Errorf("HasExtension(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReplaceExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, ext, want string
	}{
		{"docs/a.md", ".html", "a.html"},
		{"b.tar.md", ".html", "b.tar.html"},
		{"noext", ".html", "noext.html"},
	}

	for _, tt := range tests {
		if got := fileutil.ReplaceExtension(tt.path, tt.ext); got != tt.want {
			t.Errorf("ReplaceExtension(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}
