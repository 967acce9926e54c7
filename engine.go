package mdext

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/document"
	"github.com/alnah/go-mdext/internal/gamut"
	"github.com/alnah/go-mdext/internal/grammar/filter"
	"github.com/alnah/go-mdext/internal/grammar/tool"
	"github.com/alnah/go-mdext/internal/lexer"
	"github.com/alnah/go-mdext/internal/logfields"
)

// Content is one document under transformation.
type Content = document.Content

// NoteEntry is one footnote, glossary entry or citation referenced from the body.
type NoteEntry = document.NoteEntry

// State is a step of the parse state machine.
type State = lexer.State

// Parse states.
const (
	StateCreated     = lexer.Created
	StateConfiguring = lexer.Configuring
	StateSetup       = lexer.Setup
	StateTransform   = lexer.TransformPhase
	StateSpecial     = lexer.SpecialPhase
	StateDocument    = lexer.DocumentPhase
	StateTeardown    = lexer.Teardown
	StateDone        = lexer.Done
	StateFailed      = lexer.Failed
)

// Config is the engine's configuration registry.
type Config = config.Registry

// Factory creates a rule bound to the runtime of one engine.
// The rule must implement Filter or Tool, and may implement MethodSet,
// SetupHook and TeardownHook.
type Factory = gamut.Factory

// Rule contracts, re-exported for custom rules.
type (
	Runtime      = gamut.Runtime
	Filter       = gamut.Filter
	Tool         = gamut.Tool
	MethodSet    = gamut.MethodSet
	StageFunc    = gamut.StageFunc
	SetupHook    = gamut.SetupHook
	TeardownHook = gamut.TeardownHook
)

// NewContent returns a Content for source.
func NewContent(source string) *Content {
	return document.NewContent(source)
}

// NewContentFromFile returns a Content whose source is the file at path.
func NewContentFromFile(path string) (*Content, error) {
	return document.NewContentFromFile(path)
}

// DefaultConfig returns a copy of the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig merges a YAML config file over the built-in configuration.
// nameOrPath is either a path or a name looked up in the usual config
// locations.
func LoadConfig(nameOrPath string) (*Config, error) {
	return config.Load(nameOrPath)
}

// Engine parses Markdown Extended documents through the configured gamut
// stacks. An Engine runs one parse at a time; use an EnginePool for
// parallel work.
type Engine struct {
	cfg    *config.Registry
	rules  *gamut.Registry
	logger *slog.Logger
	d      *gamut.Dispatcher
	lexer  *lexer.Lexer
}

// NewEngine creates an Engine with the built-in rules and configuration.
// Use options to change the configuration or add rules.
// Returns an error if the resulting configuration is invalid.
func NewEngine(opts ...Option) (*Engine, error) {
	s := engineSettings{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&s)
	}

	cfg := s.cfg
	if cfg == nil {
		cfg = config.Default()
	} else {
		cfg = cfg.Clone()
	}
	if s.configPath != "" {
		loaded, err := config.Load(s.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	for _, edit := range s.edits {
		edit(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rules := gamut.NewRegistry()
	tool.Register(rules, "")
	filter.Register(rules, "")
	for _, r := range s.rules {
		rules.Register(r.qualified, r.factory)
	}

	return newEngine(cfg, rules, s.logger), nil
}

func newEngine(cfg *config.Registry, rules *gamut.Registry, logger *slog.Logger) *Engine {
	d := gamut.NewDispatcher(cfg, rules, logger)
	return &Engine{
		cfg:    cfg,
		rules:  rules,
		logger: logger,
		d:      d,
		lexer:  lexer.New(d, logger),
	}
}

// clone returns a fresh Engine with the same rules and an independent copy
// of the configuration. Rule instances are not shared.
func (e *Engine) clone() *Engine {
	return newEngine(e.cfg.Clone(), e.rules, e.logger)
}

// Parse transforms content.Source and sets content's body, title, metadata
// and notes. The context is checked between stages.
// Recovers from rule panics so they surface as errors.
func (e *Engine) Parse(ctx context.Context, content *Content) (result *Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if content == nil {
		return nil, ErrNilContent
	}

	start := time.Now()
	if err := e.lexer.Parse(ctx, content); err != nil {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "parse failed", logfields.Error(err))
		return nil, err
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "parsed",
		slog.String("title", content.Title),
		logfields.Bytes(len(content.Body())),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
	)
	return content, nil
}

// ParseString parses source into a new Content.
func (e *Engine) ParseString(ctx context.Context, source string) (*Content, error) {
	return e.Parse(ctx, document.NewContent(source))
}

// ParseFile parses the file at path into a new Content.
func (e *Engine) ParseFile(ctx context.Context, path string) (*Content, error) {
	content, err := document.NewContentFromFile(path)
	if err != nil {
		return nil, err
	}
	return e.Parse(ctx, content)
}

// RunStage runs one stage outside a full parse, e.g. "span_gamut" or
// "tool:Outdent". Protected fragments are resolved in the result.
func (e *Engine) RunStage(ctx context.Context, name, text string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if err := e.cfg.DeriveFragments(); err != nil {
		return "", err
	}
	e.d.Bind(ctx, document.NewContent(text))
	defer e.d.Unbind()
	defer e.d.Hashes().Reset()
	e.d.ResetReferences()
	if err := e.d.RunHooks(gamut.HookSetup); err != nil {
		return "", err
	}
	defer func() {
		if terr := e.d.RunHooks(gamut.HookTeardown); terr != nil && err == nil {
			err = terr
		}
	}()

	out, err = e.d.RunStage(name, text)
	if err != nil {
		return "", err
	}
	return e.d.Hashes().Unhash(out), nil
}

// Check resolves every stage of every configured stack without parsing,
// returning one error per stage that would fail. Each error wraps one of
// ErrInvalidStageName, ErrUnknownStage or ErrContractViolation.
func (e *Engine) Check() []error {
	cfg := e.cfg.Clone()
	if err := cfg.DeriveFragments(); err != nil {
		return []error{err}
	}
	problems := gamut.NewDispatcher(cfg, e.rules, e.logger).Check()
	errs := make([]error, 0, len(problems))
	for _, p := range problems {
		errs = append(errs, p)
	}
	return errs
}

// Config returns the engine's configuration. Changing it between parses is
// allowed; changing it during a parse is not.
func (e *Engine) Config() *Config {
	return e.cfg
}

// State reports the state the last parse reached.
func (e *Engine) State() State {
	return e.lexer.State()
}
