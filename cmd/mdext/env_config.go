package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const envPrefix = "MDEXT_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // MDEXT_CONFIG: config file name or path
	OutputDir  string // MDEXT_OUTPUT_DIR: default output directory
	Workers    int    // MDEXT_WORKERS: parallel workers
}

// knownEnvVars lists valid MDEXT_* environment variables.
var knownEnvVars = map[string]bool{
	"MDEXT_CONFIG":     true,
	"MDEXT_OUTPUT_DIR": true,
	"MDEXT_WORKERS":    true,
}

// loadEnvConfig reads configuration from environment variables.
// An unparsable MDEXT_WORKERS is ignored.
func loadEnvConfig(env *Environment) *envConfig {
	cfg := &envConfig{
		ConfigPath: env.Getenv("MDEXT_CONFIG"),
		OutputDir:  env.Getenv("MDEXT_OUTPUT_DIR"),
	}
	if workers := env.Getenv("MDEXT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	return cfg
}

// unknownEnvVars returns the unrecognized MDEXT_* variable names, usually typos.
func unknownEnvVars(environ []string) []string {
	var names []string
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			names = append(names, name)
		}
	}
	return names
}

// warnUnknownEnvVars reports unrecognized MDEXT_* variables on w.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, name := range unknownEnvVars(environ) {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig fills flag values the user left unset.
// Priority: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, common *commonFlags, output *string, workers *int) {
	if common.config == "" {
		common.config = env.ConfigPath
	}
	if output != nil && *output == "" {
		*output = env.OutputDir
	}
	if workers != nil && *workers == 0 {
		*workers = env.Workers
	}
}
