package main

// Notes:
// - poolAdapter: we test Acquire/Release/Size and panic on wrong type.
// - splitCommand/isCommand: we test command detection and the convert default.
// - runMain: we test exit codes and outputs end to end, with temp dirs and
//   an injected stdin. Signal handling is not exercised.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alnah/go-mdext"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake parser
// ---------------------------------------------------------------------------

// fakeParser is a Parser that is NOT *mdext.Engine.
type fakeParser struct{}

func (fakeParser) ParseString(_ context.Context, source string) (*mdext.Content, error) {
	return mdext.NewContent(source), nil
}

// ---------------------------------------------------------------------------
// TestPoolAdapter - Pool adapter over EnginePool
// ---------------------------------------------------------------------------

func TestPoolAdapter_Release_WrongType(t *testing.T) {
	t.Parallel()

	pool, err := mdext.NewEnginePool(1)
	if err != nil {
		t.Fatalf("NewEnginePool: %v", err)
	}
	defer pool.Close()

	adapter := &poolAdapter{pool: pool}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for wrong type, got none")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected string panic, got %T", r)
		}
		if !strings.Contains(msg, "unexpected parser type") {
			t.Errorf("panic message = %q, want 'unexpected parser type'", msg)
		}
	}()

	adapter.Release(fakeParser{})
}

func TestPoolAdapter_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool, err := mdext.NewEnginePool(3)
	if err != nil {
		t.Fatalf("NewEnginePool: %v", err)
	}
	adapter := &poolAdapter{pool: pool}

	if adapter.Size() != 3 {
		t.Errorf("Size() = %d, want 3", adapter.Size())
	}

	p := adapter.Acquire()
	if p == nil {
		t.Fatal("Acquire() returned nil")
	}
	if _, ok := p.(*mdext.Engine); !ok {
		t.Errorf("Acquire() = %T, want *mdext.Engine", p)
	}
	adapter.Release(p)

	_ = pool.Close()
	if got := adapter.Acquire(); got != nil {
		t.Errorf("Acquire() after Close = %v, want untyped nil", got)
	}
}

// ---------------------------------------------------------------------------
// TestSplitCommand - Command dispatch
// ---------------------------------------------------------------------------

func TestSplitCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCmd  string
		wantRest []string
	}{
		{"no args shows help", nil, "help", nil},
		{"short help flag", []string{"-h"}, "help", nil},
		{"long help flag", []string{"--help"}, "help", nil},
		{"explicit convert", []string{"convert", "a.md"}, "convert", []string{"a.md"}},
		{"file defaults to convert", []string{"a.md", "-o", "out"}, "convert", []string{"a.md", "-o", "out"}},
		{"stdin defaults to convert", []string{"-"}, "convert", []string{"-"}},
		{"config", []string{"config", "--set", "tab_width=2"}, "config", []string{"--set", "tab_width=2"}},
		{"doctor", []string{"doctor", "--json"}, "doctor", []string{"--json"}},
		{"help topic", []string{"help", "convert"}, "help", []string{"convert"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, rest := splitCommand(tt.args)
			if cmd != tt.wantCmd {
				t.Errorf("command = %q, want %q", cmd, tt.wantCmd)
			}
			if !slices.Equal(rest, tt.wantRest) {
				t.Errorf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestIsCommand(t *testing.T) {
	t.Parallel()

	for _, name := range commandNames() {
		if !isCommand(name) {
			t.Errorf("isCommand(%q) = false, want true", name)
		}
	}
	for _, arg := range []string{"", "README.md", "-", "--verbose", "Convert"} {
		if isCommand(arg) {
			t.Errorf("isCommand(%q) = true, want false", arg)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - End to end
// ---------------------------------------------------------------------------

func TestRunMain_Info(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantStdout string
	}{
		{"no args prints usage", []string{"mdext"}, "Usage: mdext <command>"},
		{"version", []string{"mdext", "version"}, "go-mdext dev"},
		{"help convert", []string{"mdext", "help", "convert"}, "Usage: mdext convert"},
		{"help doctor", []string{"mdext", "help", "doctor"}, "Usage: mdext doctor"},
		{"convert help flag", []string{"mdext", "convert", "--help"}, "--metadata-only"},
		{"completion usage", []string{"mdext", "completion"}, "Supported shells"},
		{"completion bash", []string{"mdext", "completion", "bash"}, "complete -o filenames -F _mdext mdext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv("")
			if code := runMain(tt.args, env); code != ExitSuccess {
				t.Fatalf("exit = %d, want 0 (stderr: %s)", code, stderr)
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout, tt.wantStdout)
			}
		})
	}
}

func TestRunMain_Stdin(t *testing.T) {
	t.Parallel()

	t.Run("body goes to stdout", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := newTestEnv("# Hi\n\nSome *text*.\n")
		if code := runMain([]string{"mdext", "-"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0 (stderr: %s)", code, stderr)
		}
		got := stdout.String()
		if !strings.Contains(got, "Hi</h1>") || !strings.Contains(got, "<em>text</em>") {
			t.Errorf("stdout = %q, want converted HTML", got)
		}
		if stderr.Len() != 0 {
			t.Errorf("stderr = %q, want empty", stderr)
		}
	})

	t.Run("metadata only", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv("Title: Notes\n\nBody.\n")
		if code := runMain([]string{"mdext", "convert", "--metadata-only", "-"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0", code)
		}
		want := `<meta name="title" content="Notes" />` + "\n"
		if stdout.String() != want {
			t.Errorf("stdout = %q, want %q", stdout, want)
		}
	})

	t.Run("skip filters", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv("Some *text*.\n")
		if code := runMain([]string{"mdext", "--skip", "Emphasis", "-"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0", code)
		}
		if strings.Contains(stdout.String(), "<em>") {
			t.Errorf("stdout = %q, Emphasis should be skipped", stdout)
		}
	})

	t.Run("output file", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "nested", "out.html")
		env, stdout, _ := newTestEnv("# Hi\n")
		if code := runMain([]string{"mdext", "-", "-o", out}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0", code)
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout)
		}
		if got := readFile(t, out); !strings.Contains(got, "Hi</h1>") {
			t.Errorf("output = %q, want h1", got)
		}
	})
}

func TestRunMain_Files(t *testing.T) {
	t.Parallel()

	t.Run("single file next to input", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeFile(t, dir, "doc.md", "# Doc\n")
		env, _, stderr := newTestEnv("")

		if code := runMain([]string{"mdext", input}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0 (stderr: %s)", code, stderr)
		}
		out := filepath.Join(dir, "doc.html")
		if got := readFile(t, out); !strings.Contains(got, "Doc</h1>") {
			t.Errorf("output = %q, want h1", got)
		}
		if !strings.Contains(stderr.String(), "Created "+out) {
			t.Errorf("stderr = %q, want Created line", stderr)
		}
	})

	t.Run("directory mirrors layout", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		out := t.TempDir()
		writeFile(t, in, "a.md", "# A\n")
		writeFile(t, in, "sub/b.markdown", "# B\n")
		writeFile(t, in, "skip.txt", "not markdown")
		env, _, stderr := newTestEnv("")

		if code := runMain([]string{"mdext", "convert", in, "-o", out, "-w", "2"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0 (stderr: %s)", code, stderr)
		}
		if got := readFile(t, filepath.Join(out, "a.html")); !strings.Contains(got, "A</h1>") {
			t.Errorf("a.html = %q", got)
		}
		if got := readFile(t, filepath.Join(out, "sub", "b.html")); !strings.Contains(got, "B</h1>") {
			t.Errorf("sub/b.html = %q", got)
		}
		if !strings.Contains(stderr.String(), "2 succeeded, 0 failed") {
			t.Errorf("stderr = %q, want summary", stderr)
		}
	})

	t.Run("output dir from environment", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		out := t.TempDir()
		input := writeFile(t, in, "doc.md", "# Doc\n")
		env, _, _ := newTestEnv("", "MDEXT_OUTPUT_DIR="+out)

		if code := runMain([]string{"mdext", "-q", input}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0", code)
		}
		readFile(t, filepath.Join(out, "doc.html"))
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfgPath := writeFile(t, dir, "mdext.yaml", "+skip_filters: [Emphasis]\n")
		env, stdout, stderr := newTestEnv("Some *text*.\n")

		if code := runMain([]string{"mdext", "-c", cfgPath, "-"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0 (stderr: %s)", code, stderr)
		}
		if strings.Contains(stdout.String(), "<em>") {
			t.Errorf("stdout = %q, Emphasis should be skipped", stdout)
		}
	})
}

func TestRunMain_ExitCodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.md", "# Doc\n")
	text := writeFile(t, dir, "doc.txt", "plain")
	empty := t.TempDir()
	pair := t.TempDir()
	writeFile(t, pair, "a.md", "# A\n")
	writeFile(t, pair, "b.md", "# B\n")

	tests := []struct {
		name       string
		args       []string
		stdin      string
		want       int
		wantStderr string
	}{
		{"unknown flag", []string{"mdext", "--bogus", doc}, "", ExitUsage, "unknown flag"},
		{"too many workers", []string{"mdext", "-w", "99", doc}, "", ExitUsage, "invalid worker count"},
		{"negative workers", []string{"mdext", "-w", "-1", doc}, "", ExitUsage, "invalid worker count"},
		{"bad extension", []string{"mdext", text}, "", ExitUsage, "markdown extension"},
		{"malformed set", []string{"mdext", "--set", "tab_width", "-"}, "x", ExitUsage, "invalid --set"},
		{"invalid setting value", []string{"mdext", "--set", "tab_width=0", "-"}, "x", ExitUsage, "invalid"},
		{"missing config", []string{"mdext", "-c", filepath.Join(dir, "none.yaml"), "-"}, "x", ExitUsage, "config"},
		{"unknown stage", []string{"mdext", "--set", `document_gamut=["filter:Missing"]`, "-"}, "x", ExitUsage, "filter:Missing"},
		{"two inputs", []string{"mdext", doc, doc}, "", ExitUsage, "expected one input"},
		{"stdout with directory", []string{"mdext", pair, "-o", "-"}, "", ExitUsage, "single input file"},
		{"missing file", []string{"mdext", filepath.Join(dir, "none.md")}, "", ExitIO, "no such file"},
		{"no input", []string{"mdext", "convert"}, "", ExitIO, "no input"},
		{"empty directory", []string{"mdext", empty}, "", ExitIO, "no markdown files"},
		{"unsupported shell", []string{"mdext", "completion", "tcsh"}, "", ExitUsage, "unsupported shell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := newTestEnv(tt.stdin)
			if code := runMain(tt.args, env); code != tt.want {
				t.Errorf("exit = %d, want %d (stderr: %s)", code, tt.want, stderr)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestRunMain_Config(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := newTestEnv("")
	code := runMain([]string{"mdext", "config", "--set", "tab_width=2", "--set", "+skip_filters=[Emphasis]"}, env)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, want 0 (stderr: %s)", code, stderr)
	}

	got := stdout.String()
	for _, want := range []string{"tab_width: 2", "transform_gamut:", "document_gamut:", "Emphasis"} {
		if !strings.Contains(got, want) {
			t.Errorf("config output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "transform_gamut:") > strings.Index(got, "document_gamut:") {
		t.Error("stacks are not in declaration order")
	}
}

func TestRunMain_Doctor(t *testing.T) {
	t.Parallel()

	t.Run("built-in configuration is ready", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv("")
		if code := runMain([]string{"mdext", "doctor"}, env); code != ExitSuccess {
			t.Fatalf("exit = %d, want 0:\n%s", code, stdout)
		}
		if !strings.Contains(stdout.String(), "Status: Ready to convert") {
			t.Errorf("stdout = %q, want ready status", stdout)
		}
	})

	t.Run("json report with warnings", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv("", "MDEXT_WORKRES=2", "CI=true")
		code := runMain([]string{"mdext", "doctor", "--json", "--set", "highlight_style=nope"}, env)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, want 0", code)
		}

		var result doctorResult
		if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
			t.Fatalf("decoding report: %v\n%s", err, stdout)
		}
		if result.Status != "warnings" {
			t.Errorf("Status = %q, want warnings", result.Status)
		}
		if len(result.Warnings) != 2 {
			t.Errorf("Warnings = %v, want highlight style and env var", result.Warnings)
		}
		if !result.Env.CI {
			t.Error("CI not detected")
		}
		if !slices.Contains(result.Config.Stacks, "block_gamut") {
			t.Errorf("Stacks = %v, want block_gamut", result.Config.Stacks)
		}
	})

	t.Run("broken stage is an error", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv("")
		code := runMain([]string{"mdext", "doctor", "--set", `+span_gamut={"filter:Missing": 99}`}, env)
		if code != ExitGeneral {
			t.Errorf("exit = %d, want %d", code, ExitGeneral)
		}
		if !strings.Contains(stdout.String(), "filter:Missing") {
			t.Errorf("stdout = %q, want the broken stage named", stdout)
		}
	})

	t.Run("bad flag", func(t *testing.T) {
		t.Parallel()

		env, _, _ := newTestEnv("")
		if code := runMain([]string{"mdext", "doctor", "--bogus"}, env); code != ExitUsage {
			t.Errorf("exit = %d, want %d", code, ExitUsage)
		}
	})
}
