// Package lexer drives one full parse of a document through the gamut
// stacks: configure, set up rules, transform, run the document (or special)
// stack, tear down and commit the body.
package lexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/document"
	"github.com/alnah/go-mdext/internal/gamut"
	"github.com/alnah/go-mdext/internal/logfields"
)

// OptionSpecialGamut is the Content.ParsingOptions key naming a stack to run
// instead of document_gamut.
const OptionSpecialGamut = "special_gamut"

// ErrBusy indicates a parse started while another one is running on the
// same Lexer.
var ErrBusy = errors.New("parse already in progress")

// State is a step of the parse state machine.
type State int

const (
	Created State = iota
	Configuring
	Setup
	TransformPhase
	SpecialPhase
	DocumentPhase
	Teardown
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Configuring:
		return "configuring"
	case Setup:
		return "setup"
	case TransformPhase:
		return "transform"
	case SpecialPhase:
		return "special"
	case DocumentPhase:
		return "document"
	case Teardown:
		return "teardown"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Lexer runs parses on one Dispatcher, one at a time.
type Lexer struct {
	d      *gamut.Dispatcher
	logger *slog.Logger
	state  atomic.Int32
	busy   atomic.Bool
}

// New returns a Lexer over d. A nil logger discards output.
func New(d *gamut.Dispatcher, logger *slog.Logger) *Lexer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lexer{d: d, logger: logger}
}

// State reports the current state, or the last one once a parse ended.
func (l *Lexer) State() State {
	return State(l.state.Load())
}

// Parse transforms content.Source and commits the result to content.
// On failure the content body is left unset and the state is Failed.
func (l *Lexer) Parse(ctx context.Context, content *document.Content) (err error) {
	if !l.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer l.busy.Store(false)

	if content.HasBody() {
		return document.ErrBodyAlreadySet
	}

	start := time.Now()
	l.d.Bind(ctx, content)
	defer l.d.Unbind()

	defer func() {
		if r := recover(); r != nil {
			l.enter(ctx, Failed)
			panic(r)
		}
		if err != nil {
			l.enter(ctx, Failed)
		}
	}()

	l.enter(ctx, Configuring)
	cfg := l.d.Config()
	if err := configure(cfg); err != nil {
		return err
	}

	l.enter(ctx, Setup)
	l.d.Hashes().Reset()
	l.d.ResetReferences()
	defer func() {
		if terr := l.teardown(ctx); terr != nil {
			if err == nil {
				err = terr
			} else {
				l.logger.LogAttrs(ctx, slog.LevelWarn, "teardown after failure", logfields.Error(terr))
			}
		}
	}()
	if err := l.d.RunHooks(gamut.HookSetup); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	l.enter(ctx, TransformPhase)
	text, err := l.transform(cfg, content.Source)
	if err != nil {
		return err
	}

	stack, special := specialStack(cfg, content)
	if special {
		l.enter(ctx, SpecialPhase)
	} else {
		l.enter(ctx, DocumentPhase)
	}
	body, err := l.d.RunStage(stack, text)
	if err != nil {
		return fmt.Errorf("%s: %w", stack, err)
	}

	// Teardown runs from the deferred call; the body is committed after it
	// succeeds so a failed teardown leaves the content untouched.
	if err := l.teardown(ctx); err != nil {
		return err
	}
	if err := content.SetBody(body + "\n"); err != nil {
		return err
	}
	l.enter(ctx, Done)
	l.logger.LogAttrs(ctx, slog.LevelDebug, "parse done",
		logfields.Bytes(len(body)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
	)
	return nil
}

// configure validates cfg, derives the shared regex fragments and checks
// the stacks a parse needs.
func configure(cfg *config.Registry) error {
	if err := cfg.DeriveFragments(); err != nil {
		return fmt.Errorf("configuring: %w", err)
	}
	for _, name := range []string{config.TransformGamut, config.DocumentGamut} {
		if !cfg.Has(name) {
			return fmt.Errorf("%w: stack %s", gamut.ErrConfigurationMissing, name)
		}
	}
	return nil
}

// transform runs transform_gamut, preceded by initial_gamut when that stack
// is configured but transform_gamut does not include it.
func (l *Lexer) transform(cfg *config.Registry, source string) (string, error) {
	text := source
	if cfg.Has(config.InitialGamut) {
		stack, _, err := cfg.Stack(config.TransformGamut)
		if err != nil {
			return "", fmt.Errorf("%w: %w", gamut.ErrUnknownStage, err)
		}
		if !slices.Contains(stack.Names(), config.InitialGamut) {
			if text, err = l.d.RunStage(config.InitialGamut, text); err != nil {
				return "", fmt.Errorf("%s: %w", config.InitialGamut, err)
			}
		}
	}
	text, err := l.d.RunStage(config.TransformGamut, text)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.TransformGamut, err)
	}
	return text, nil
}

// teardown runs the teardown hooks, then drops the hashes of the parse and
// restores the cross-reference tables. It is safe to call twice.
func (l *Lexer) teardown(ctx context.Context) error {
	if l.State() == Teardown || l.State() == Done {
		return nil
	}
	l.enter(ctx, Teardown)
	err := l.d.RunHooks(gamut.HookTeardown)
	l.d.Hashes().Reset()
	l.d.ResetReferences()
	if err != nil {
		return fmt.Errorf("teardown: %w", err)
	}
	return nil
}

// specialStack picks the stack that replaces document_gamut, if any.
// A stack named in the content's parsing options wins over a configured
// special_gamut.
func specialStack(cfg *config.Registry, content *document.Content) (string, bool) {
	if name, ok := content.Option(OptionSpecialGamut).(string); ok && name != "" {
		return name, true
	}
	if cfg.Has(config.SpecialGamut) {
		return config.SpecialGamut, true
	}
	return config.DocumentGamut, false
}

func (l *Lexer) enter(ctx context.Context, s State) {
	l.state.Store(int32(s))
	l.logger.LogAttrs(ctx, slog.LevelDebug, "parse phase", logfields.Phase(s.String()))
}
