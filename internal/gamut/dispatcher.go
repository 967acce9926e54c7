package gamut

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/document"
	"github.com/alnah/go-mdext/internal/hashing"
	"github.com/alnah/go-mdext/internal/logfields"
)

// MaxDepth bounds how deep stages may call stages.
const MaxDepth = 64

// Compile-time interface implementation check.
var _ Runtime = (*Dispatcher)(nil)

// Dispatcher resolves stage names to rules and runs them.
// It owns the state one parse shares between rules (hash store, cross
// references, current content) and the rule instance cache, so one
// Dispatcher must serve one parse at a time.
type Dispatcher struct {
	cfg    *config.Registry
	rules  *Registry
	cache  map[string]any
	hashes *hashing.Store
	refs   *document.References
	logger *slog.Logger

	ctx     context.Context
	content *document.Content
	depth   int
}

// NewDispatcher returns a Dispatcher over cfg and rules.
// A nil logger discards output.
func NewDispatcher(cfg *config.Registry, rules *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		cfg:    cfg,
		rules:  rules,
		cache:  make(map[string]any),
		hashes: hashing.NewStore(),
		refs:   document.NewReferences(),
		logger: logger,
		ctx:    context.Background(),
	}
}

// Bind attaches the dispatcher to one parse.
func (d *Dispatcher) Bind(ctx context.Context, content *document.Content) {
	if ctx == nil {
		ctx = context.Background()
	}
	d.ctx = ctx
	d.content = content
	d.depth = 0
}

// Unbind detaches the dispatcher from the finished parse.
func (d *Dispatcher) Unbind() {
	d.ctx = context.Background()
	d.content = nil
	d.depth = 0
}

// Hashes returns the hash store shared by every rule.
func (d *Dispatcher) Hashes() *hashing.Store { return d.hashes }

// Config returns the configuration registry.
func (d *Dispatcher) Config() *config.Registry { return d.cfg }

// References returns the cross-reference tables.
func (d *Dispatcher) References() *document.References { return d.refs }

// Logger returns the dispatcher's logger.
func (d *Dispatcher) Logger() *slog.Logger { return d.logger }

// Content returns the document being parsed. Outside a parse it returns a
// scratch Content so rules can run standalone.
func (d *Dispatcher) Content() *document.Content {
	if d.content == nil {
		d.content = document.NewContent("")
	}
	return d.content
}

// ResetReferences reloads the cross-reference tables from configuration.
func (d *Dispatcher) ResetReferences() {
	d.refs.Reset(
		d.cfg.StringMap(config.KeyPredefinedURLs),
		d.cfg.StringMap(config.KeyPredefinedTitles),
		d.cfg.StringMap(config.KeyPredefinedAttributes),
		d.cfg.StringMap(config.KeyPredefinedAbbreviations),
	)
}

// RunStage runs the stage named name on text with its default method.
func (d *Dispatcher) RunStage(name, text string) (string, error) {
	return d.RunStageMethod(name, text, "")
}

// RunStageMethod runs the stage named name on text. A non-empty method
// overrides the one written in the reference.
func (d *Dispatcher) RunStageMethod(name, text, method string) (string, error) {
	return d.runStage(name, text, method)
}

func (d *Dispatcher) runStage(raw any, text, method string) (string, error) {
	ref, err := ParseReference(raw, AliasesFrom(d.cfg))
	if err != nil {
		return "", err
	}

	d.depth++
	defer func() { d.depth-- }()
	if d.depth > MaxDepth {
		return "", fmt.Errorf("%w: at %q", ErrRecursionLimit, ref.Raw)
	}

	if ref.Kind == StackRef {
		stack, err := d.stack(ref.Class)
		if err != nil {
			return "", err
		}
		return d.runStack(ref.Class, stack, text, method)
	}

	qualified := d.qualify(ref)
	if d.skipped(ref, qualified) {
		d.logger.LogAttrs(d.ctx, slog.LevelDebug, "stage skipped", logfields.Stage(ref.Raw))
		return text, nil
	}

	rule, err := d.instance(qualified)
	if err != nil {
		return "", fmt.Errorf("%q: %w", ref.Raw, err)
	}

	if method == "" {
		method = ref.Method
	}
	fn, ok := resolveMethod(rule, method)
	if !ok {
		return "", fmt.Errorf("%w: %s has no method %q", ErrContractViolation, qualified, displayMethod(method))
	}

	start := time.Now()
	out, err := fn(text)
	if err != nil {
		return "", err
	}
	d.logger.LogAttrs(d.ctx, slog.LevelDebug, "stage done",
		logfields.Stage(ref.Raw),
		logfields.Method(displayMethod(method)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
	)
	return out, nil
}

// RunStack folds text through every stage of stack in priority order.
// Errors abort the fold and are returned with the failing stage named.
func (d *Dispatcher) RunStack(stack config.Stack, text string) (string, error) {
	return d.runStack("", stack, text, "")
}

func (d *Dispatcher) runStack(name string, stack config.Stack, text, method string) (string, error) {
	for _, entry := range stack.Sorted() {
		if err := d.ctx.Err(); err != nil {
			return "", err
		}
		out, err := d.runStage(entry.Stage, text, method)
		if err != nil {
			if name != "" {
				return "", fmt.Errorf("%s: stage %q: %w", name, entry.Name(), err)
			}
			return "", fmt.Errorf("stage %q: %w", entry.Name(), err)
		}
		text = out
	}
	return text, nil
}

// RunStackMethod forces method on every stage of stack. Stages that cannot
// be resolved or do not implement method are skipped; an error returned by
// a method that ran is propagated.
func (d *Dispatcher) RunStackMethod(stack config.Stack, method, text string) (string, error) {
	for _, entry := range stack.Sorted() {
		out, err := d.tryStage(entry.Stage, method, text)
		if err != nil {
			return "", fmt.Errorf("stage %q %s: %w", entry.Name(), method, err)
		}
		text = out
	}
	return text, nil
}

func (d *Dispatcher) tryStage(raw any, method, text string) (string, error) {
	ref, err := ParseReference(raw, AliasesFrom(d.cfg))
	if err != nil {
		return text, nil
	}
	if ref.Kind == StackRef {
		stack, err := d.stack(ref.Class)
		if err != nil {
			return text, nil
		}
		d.depth++
		defer func() { d.depth-- }()
		if d.depth > MaxDepth {
			return "", fmt.Errorf("%w: at %q", ErrRecursionLimit, ref.Raw)
		}
		return d.RunStackMethod(stack, method, text)
	}
	qualified := d.qualify(ref)
	if d.skipped(ref, qualified) {
		return text, nil
	}
	rule, err := d.instance(qualified)
	if err != nil {
		return text, nil
	}
	fn, ok := resolveMethod(rule, method)
	if !ok {
		return text, nil
	}
	return fn(text)
}

// RunHooks calls hook (HookSetup or HookTeardown) on every registered rule
// that implements it, instantiating rules as needed. Skipped rules are
// neither instantiated nor called.
func (d *Dispatcher) RunHooks(hook string) error {
	stack := make(config.Stack, 0, d.rules.Len())
	for i, name := range d.rules.Names() {
		stack = append(stack, config.StackEntry{Stage: name, Priority: i})
	}
	_, err := d.RunStackMethod(stack, hook, "")
	return err
}

// Instance returns the cached rule for a qualified name, creating it on first use.
func (d *Dispatcher) Instance(qualified string) (any, error) {
	return d.instance(qualified)
}

// Cached reports whether the rule for a qualified name was created.
func (d *Dispatcher) Cached(qualified string) bool {
	_, ok := d.cache[qualified]
	return ok
}

func (d *Dispatcher) instance(qualified string) (any, error) {
	if rule, ok := d.cache[qualified]; ok {
		return rule, nil
	}
	factory, ok := d.rules.Lookup(qualified)
	if !ok {
		return nil, fmt.Errorf("%w: no rule registered as %q", ErrUnknownStage, qualified)
	}
	rule := factory(d)
	if rule == nil {
		return nil, fmt.Errorf("%w: factory for %q returned nil", ErrContractViolation, qualified)
	}
	d.cache[qualified] = rule
	d.logger.LogAttrs(d.ctx, slog.LevelDebug, "rule created", logfields.Rule(qualified))
	return rule, nil
}

func (d *Dispatcher) stack(name string) (config.Stack, error) {
	stack, ok, err := d.cfg.Stack(name)
	if !ok {
		return nil, fmt.Errorf("%w: stack %q is not configured", ErrUnknownStage, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownStage, err)
	}
	return stack, nil
}

func (d *Dispatcher) qualify(ref Reference) string {
	return ref.Qualified(
		d.cfg.String(config.KeyFilterNamespace, DefaultFilterNamespace),
		d.cfg.String(config.KeyToolNamespace, DefaultToolNamespace),
	)
}

// skipped reports whether skip_filters names the reference, by raw name,
// class, qualified name or short class name.
func (d *Dispatcher) skipped(ref Reference, qualified string) bool {
	skip := d.cfg.Strings(config.KeySkipFilters)
	if len(skip) == 0 {
		return false
	}
	return slices.ContainsFunc(skip, func(s string) bool {
		return s == ref.Raw || s == ref.Class || s == qualified || s == ShortName(qualified)
	})
}

func displayMethod(method string) string {
	if method == "" {
		return "default"
	}
	return method
}
