package main

// Notes:
// - loadEnvConfig/applyEnvConfig: we test reading, invalid values and priority.
// - The Environment is injected, so these tests run in parallel.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars []string
		want envConfig
	}{
		{"empty", nil, envConfig{}},
		{
			"all variables",
			[]string{"MDEXT_CONFIG=site", "MDEXT_OUTPUT_DIR=/out", "MDEXT_WORKERS=3"},
			envConfig{ConfigPath: "site", OutputDir: "/out", Workers: 3},
		},
		{"non-numeric workers ignored", []string{"MDEXT_WORKERS=lots"}, envConfig{}},
		{"negative workers ignored", []string{"MDEXT_WORKERS=-2"}, envConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := newTestEnv("", tt.vars...)
			if got := loadEnvConfig(env); *got != tt.want {
				t.Errorf("loadEnvConfig() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	environ := []string{"HOME=/root", "MDEXT_CONFIG=x", "MDEXT_WORKRES=2", "MDEXT_OUTPUTDIR=/o"}

	if got := unknownEnvVars(environ); !slices.Equal(got, []string{"MDEXT_WORKRES", "MDEXT_OUTPUTDIR"}) {
		t.Errorf("unknownEnvVars() = %v", got)
	}

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, environ)
	out := buf.String()
	if !strings.Contains(out, "MDEXT_WORKRES") || strings.Contains(out, "MDEXT_CONFIG") {
		t.Errorf("warnings = %q", out)
	}
	if strings.Count(out, "warning:") != 2 {
		t.Errorf("warnings = %q, want 2 lines", out)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Priority of flags over environment
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	env := &envConfig{ConfigPath: "env", OutputDir: "/env", Workers: 4}

	t.Run("fills unset values", func(t *testing.T) {
		t.Parallel()

		var common commonFlags
		var output string
		var workers int
		applyEnvConfig(env, &common, &output, &workers)
		if common.config != "env" || output != "/env" || workers != 4 {
			t.Errorf("got %q %q %d", common.config, output, workers)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		t.Parallel()

		common := commonFlags{config: "flag"}
		output := "/flag"
		workers := 2
		applyEnvConfig(env, &common, &output, &workers)
		if common.config != "flag" || output != "/flag" || workers != 2 {
			t.Errorf("got %q %q %d", common.config, output, workers)
		}
	})

	t.Run("nil targets are ignored", func(t *testing.T) {
		t.Parallel()

		var common commonFlags
		applyEnvConfig(env, &common, nil, nil)
		if common.config != "env" {
			t.Errorf("config = %q, want env", common.config)
		}
	})
}
