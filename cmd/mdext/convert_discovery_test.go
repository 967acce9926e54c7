package main

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// ---------------------------------------------------------------------------
// TestResolveOutputPath - Output path mapping
// ---------------------------------------------------------------------------

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		outputDir string
		baseDir   string
		want      string
	}{
		{"next to input", "docs/a.md", "", "", filepath.Join("docs", "a.html")},
		{"explicit html file", "docs/a.md", "site/index.html", "", "site/index.html"},
		{"stdout", "docs/a.md", "-", "", "-"},
		{"into directory", "docs/a.markdown", "site", "", filepath.Join("site", "a.html")},
		{"mirrors layout", "docs/guide/b.md", "site", "docs", filepath.Join("site", "guide", "b.html")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveOutputPath(tt.input, tt.outputDir, tt.baseDir); got != tt.want {
				t.Errorf("resolveOutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.outputDir, tt.baseDir, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDiscoverFiles - Markdown file discovery
// ---------------------------------------------------------------------------

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.md", "")
	writeFile(t, dir, "B.MARKDOWN", "")
	writeFile(t, dir, "deep/c.mkd", "")
	writeFile(t, dir, "deep/notes.text", "")
	writeFile(t, dir, "image.png", "")

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		files, err := discoverFiles(dir, "out")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got []string
		for _, f := range files {
			rel, _ := filepath.Rel(dir, f.InputPath)
			got = append(got, filepath.ToSlash(rel))
		}
		slices.Sort(got)
		want := []string{"B.MARKDOWN", "a.md", "deep/c.mkd", "deep/notes.text"}
		if !slices.Equal(got, want) {
			t.Errorf("discovered %v, want %v", got, want)
		}
	})

	t.Run("single file", func(t *testing.T) {
		t.Parallel()

		files, err := discoverFiles(filepath.Join(dir, "a.md"), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 || files[0].OutputPath != filepath.Join(dir, "a.html") {
			t.Errorf("files = %+v", files)
		}
	})

	t.Run("wrong extension", func(t *testing.T) {
		t.Parallel()

		_, err := discoverFiles(filepath.Join(dir, "image.png"), "")
		if !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := discoverFiles(filepath.Join(dir, "nope.md"), "")
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestValidateWorkers - Worker bounds
// ---------------------------------------------------------------------------

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 8} {
		if err := validateWorkers(n); err != nil {
			t.Errorf("validateWorkers(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{-1, 9, 100} {
		if err := validateWorkers(n); !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) = %v, want ErrInvalidWorkerCount", n, err)
		}
	}
}
