package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"slices"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-mdext"
	"github.com/alnah/go-mdext/internal/config"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo `json:"config"`
	Env      envInfo    `json:"environment"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// configInfo describes the configuration a conversion would use.
type configInfo struct {
	Source         string   `json:"source"`
	Loaded         bool     `json:"loaded"`
	Stacks         []string `json:"stacks,omitempty"`
	Stages         int      `json:"stages"`
	Highlight      bool     `json:"highlight_code"`
	HighlightStyle string   `json:"highlight_style,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	GoMaxProcs int    `json:"gomaxprocs"`
	PoolSize   int    `json:"pool_size"`
	CI         bool   `json:"ci"`
}

// runDoctorCmd checks the configuration and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}
	if flags.help {
		printDoctorUsage(env.Stdout)
		return ExitSuccess
	}
	applyEnvConfig(loadEnvConfig(env), &flags.common, nil, nil)

	result := runDoctor(flags.common, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(common commonFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Config: configInfo{Source: "built-in"},
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GoMaxProcs: runtime.GOMAXPROCS(0),
			PoolSize:   mdext.ResolvePoolSize(loadEnvConfig(env).Workers),
		},
	}
	if common.config != "" {
		result.Config.Source = common.config
	}

	checkConfig(result, common)
	checkEnvironment(result, env)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig loads the configuration and resolves every stage in it.
func checkConfig(result *doctorResult, common commonFlags) {
	cfg, err := buildConfig(common)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	engine, err := mdext.NewEngine(mdext.WithConfig(cfg))
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Config.Loaded = true

	cfg = engine.Config()
	result.Config.Stacks = cfg.StackNames()
	slices.Sort(result.Config.Stacks)
	for _, name := range result.Config.Stacks {
		if stack, _, err := cfg.Stack(name); err == nil {
			result.Config.Stages += len(stack)
		}
	}
	for _, problem := range engine.Check() {
		result.Errors = append(result.Errors, problem.Error())
	}

	result.Config.Highlight = cfg.Bool(config.KeyHighlightCode, true)
	if !result.Config.Highlight {
		return
	}
	result.Config.HighlightStyle = cfg.String(config.KeyHighlightStyle, "github")
	if !slices.Contains(styles.Names(), result.Config.HighlightStyle) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Unknown highlight_style %q, the fallback style will be used", result.Config.HighlightStyle))
	}
}

// checkEnvironment detects CI and reports stray MDEXT_* variables.
func checkEnvironment(result *doctorResult, env *Environment) {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	for _, name := range unknownEnvVars(env.Environ()) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown environment variable %s (typo?)", name))
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdext doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	if r.Config.Loaded {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
		fmt.Fprintf(w, "  [OK] Stacks: %d, stages: %d\n", len(r.Config.Stacks), r.Config.Stages)
		if r.Config.Highlight {
			fmt.Fprintf(w, "  [OK] Highlighting: %s\n", r.Config.HighlightStyle)
		} else {
			fmt.Fprintln(w, "  [OK] Highlighting: disabled")
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] Could not load %s\n", r.Config.Source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] Workers: %d (GOMAXPROCS %d)\n", r.Env.PoolSize, r.Env.GoMaxProcs)
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
