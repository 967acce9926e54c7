package gamut

import (
	"log/slog"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/document"
	"github.com/alnah/go-mdext/internal/hashing"
)

// Default method names, as written in stage references.
const (
	MethodTransform = "transform"
	MethodRun       = "run"
	HookSetup       = "_setup"
	HookTeardown    = "_teardown"
)

// StageFunc is one text transformation.
type StageFunc func(text string) (string, error)

// Filter transforms block or span text. It may protect fragments through
// the hash store and delegate to other stages through its Runtime.
type Filter interface {
	Transform(text string) (string, error)
}

// Tool is a text utility. Tools may read the hash store but never add to it.
type Tool interface {
	Run(text string) (string, error)
}

// MethodSet is implemented by rules that expose named methods besides their
// default one (e.g. "filter:Note:strip").
type MethodSet interface {
	Method(name string) (StageFunc, bool)
}

// SetupHook is implemented by rules that prepare per-parse state.
type SetupHook interface {
	Setup() error
}

// TeardownHook is implemented by rules that release per-parse state.
type TeardownHook interface {
	Teardown() error
}

// Runtime is what a rule can reach while it runs: the dispatcher for
// sub-stages and the shared state of the current parse.
type Runtime interface {
	RunStage(name, text string) (string, error)
	RunStageMethod(name, text, method string) (string, error)
	Hashes() *hashing.Store
	Config() *config.Registry
	Content() *document.Content
	References() *document.References
	Logger() *slog.Logger
}

// Factory builds a rule bound to rt. The result must implement Filter, Tool
// or MethodSet; anything else fails with ErrContractViolation when called.
type Factory func(rt Runtime) any

// resolveMethod picks the StageFunc to call on rule.
// An empty method selects the contract default.
func resolveMethod(rule any, method string) (StageFunc, bool) {
	switch method {
	case "":
		if f, ok := rule.(Filter); ok {
			return f.Transform, true
		}
		if t, ok := rule.(Tool); ok {
			return t.Run, true
		}
	case MethodTransform:
		if f, ok := rule.(Filter); ok {
			return f.Transform, true
		}
	case MethodRun:
		if t, ok := rule.(Tool); ok {
			return t.Run, true
		}
	case HookSetup:
		if h, ok := rule.(SetupHook); ok {
			return passThrough(h.Setup), true
		}
		return nil, false
	case HookTeardown:
		if h, ok := rule.(TeardownHook); ok {
			return passThrough(h.Teardown), true
		}
		return nil, false
	}
	if ms, ok := rule.(MethodSet); ok {
		return ms.Method(method)
	}
	return nil, false
}

func passThrough(hook func() error) StageFunc {
	return func(text string) (string, error) {
		if err := hook(); err != nil {
			return "", err
		}
		return text, nil
	}
}
