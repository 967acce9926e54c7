package mdext

import (
	"log/slog"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/gamut"
)

// Option configures an Engine.
type Option func(*engineSettings)

// engineSettings collects options before NewEngine builds the engine.
type engineSettings struct {
	cfg        *config.Registry
	configPath string
	edits      []func(*config.Registry)
	logger     *slog.Logger
	rules      []customRule
}

type customRule struct {
	qualified string
	factory   gamut.Factory
}

// WithConfig starts the engine from a copy of cfg instead of the built-in
// configuration.
func WithConfig(cfg *Config) Option {
	return func(s *engineSettings) {
		s.cfg = cfg
	}
}

// WithConfigFile merges the YAML file at nameOrPath over the built-in
// configuration. It takes precedence over WithConfig.
func WithConfigFile(nameOrPath string) Option {
	return func(s *engineSettings) {
		s.configPath = nameOrPath
	}
}

// WithSetting sets one configuration key after the configuration is loaded.
func WithSetting(key string, value any) Option {
	return func(s *engineSettings) {
		s.edits = append(s.edits, func(cfg *config.Registry) { cfg.Set(key, value) })
	}
}

// WithLogger sets the logger for stage and parse events.
// Panics if logger is nil (programmer error).
func WithLogger(logger *slog.Logger) Option {
	if logger == nil {
		panic("mdext: WithLogger logger must not be nil")
	}
	return func(s *engineSettings) {
		s.logger = logger
	}
}

// WithSkipFilters adds rules the engine passes over. Names may be short
// ("Emphasis"), qualified ("mdext/filter.Emphasis") or raw stage names.
func WithSkipFilters(names ...string) Option {
	return func(s *engineSettings) {
		s.edits = append(s.edits, func(cfg *config.Registry) {
			cfg.Add(config.KeySkipFilters, names)
		})
	}
}

// WithSpecialGamut configures a special_gamut made of stages, in order.
// Parses then run it instead of document_gamut.
func WithSpecialGamut(stages ...string) Option {
	return func(s *engineSettings) {
		s.edits = append(s.edits, func(cfg *config.Registry) {
			cfg.Set(config.SpecialGamut, stages)
		})
	}
}

// WithStage adds stage to the named stack at priority, or moves it there
// when the stack already has it.
func WithStage(stack, stage string, priority int) Option {
	return func(s *engineSettings) {
		s.edits = append(s.edits, func(cfg *config.Registry) {
			cfg.Add(stack, config.Stack{{Stage: stage, Priority: priority}})
		})
	}
}

// WithFilter registers a filter under the default filter namespace, or
// replaces the built-in filter of the same class.
func WithFilter(class string, f Factory) Option {
	return WithRule(gamut.Qualify(gamut.DefaultFilterNamespace, class), f)
}

// WithTool registers a tool under the default tool namespace, or replaces
// the built-in tool of the same name.
func WithTool(name string, f Factory) Option {
	return WithRule(gamut.Qualify(gamut.DefaultToolNamespace, name), f)
}

// WithRule registers a rule under a qualified name ("namespace.Class"),
// reachable from stacks as a direct stage reference.
func WithRule(qualified string, f Factory) Option {
	return func(s *engineSettings) {
		s.rules = append(s.rules, customRule{qualified: qualified, factory: f})
	}
}
