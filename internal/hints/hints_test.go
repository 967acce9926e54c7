package hints

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForConfigNotFound - Config location hints
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		want     string
		wantNone string
	}{
		{
			name:     "suggests user config path",
			paths:    []string{"site.yaml", "site.yml", "/home/u/.config/go-mdext/site.yaml"},
			want:     "or create /home/u/.config/go-mdext/site.yaml",
			wantNone: "",
		},
		{
			name:     "flag only without a user path",
			paths:    []string{"site.yaml"},
			want:     "use --config",
			wantNone: "or create",
		},
		{
			name:     "no paths",
			paths:    nil,
			want:     "use --config",
			wantNone: "or create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ForConfigNotFound(tt.paths)
			if !strings.Contains(got, tt.want) {
				t.Errorf("ForConfigNotFound() = %q, want %q", got, tt.want)
			}
			if tt.wantNone != "" && strings.Contains(got, tt.wantNone) {
				t.Errorf("ForConfigNotFound() = %q, should not contain %q", got, tt.wantNone)
			}
		})
	}
}

func TestForWorkers(t *testing.T) {
	t.Parallel()

	if got := ForWorkers(8); !strings.Contains(got, "1 to 8") {
		t.Errorf("ForWorkers(8) = %q", got)
	}
}

func TestForExtension(t *testing.T) {
	t.Parallel()

	if got := ForExtension(nil); got != "" {
		t.Errorf("ForExtension(nil) = %q, want empty", got)
	}
	if got := ForExtension([]string{".md", ".markdown"}); !strings.Contains(got, ".md, .markdown") {
		t.Errorf("ForExtension() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestFormat_Consistency - Every hint shares one layout
// ---------------------------------------------------------------------------

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	all := map[string]string{
		"ForConfigNotFound":  ForConfigNotFound(nil),
		"ForStage":           ForStage(),
		"ForSetting":         ForSetting(),
		"ForWorkers":         ForWorkers(4),
		"ForOutputDirectory": ForOutputDirectory(),
		"ForExtension":       ForExtension([]string{".md"}),
	}
	for name, hint := range all {
		if !strings.HasPrefix(hint, "\n  hint: ") {
			t.Errorf("%s() = %q, want \\n  hint: prefix", name, hint)
		}
		if strings.Count(hint, "\n") != 1 {
			t.Errorf("%s() = %q, want a single line", name, hint)
		}
	}
	if format("") != "" {
		t.Error(`format("") should be empty`)
	}
}
