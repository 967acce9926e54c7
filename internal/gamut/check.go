package gamut

import (
	"fmt"
	"slices"
)

// Problem is a stage that would fail when its stack runs.
type Problem struct {
	Stack string
	Stage string
	Err   error
}

func (p Problem) Error() string {
	if p.Stage == "" {
		return fmt.Sprintf("%s: %v", p.Stack, p.Err)
	}
	return fmt.Sprintf("%s: stage %q: %v", p.Stack, p.Stage, p.Err)
}

func (p Problem) Unwrap() error { return p.Err }

// Check resolves every stage of every configured stack without running
// any: references must parse, stacks must exist, rules must be registered
// and implement the method named. Skipped stages are not checked.
// Rules are instantiated but no hooks run.
func (d *Dispatcher) Check() []Problem {
	var problems []Problem
	aliases := AliasesFrom(d.cfg)

	names := d.cfg.StackNames()
	slices.Sort(names)
	for _, name := range names {
		stack, _, err := d.cfg.Stack(name)
		if err != nil {
			problems = append(problems, Problem{Stack: name, Err: fmt.Errorf("%w: %w", ErrUnknownStage, err)})
			continue
		}
		for _, entry := range stack {
			if err := d.checkStage(entry.Stage, aliases); err != nil {
				problems = append(problems, Problem{Stack: name, Stage: entry.Name(), Err: err})
			}
		}
	}
	return problems
}

func (d *Dispatcher) checkStage(raw any, aliases Aliases) error {
	ref, err := ParseReference(raw, aliases)
	if err != nil {
		return err
	}
	if ref.Kind == StackRef {
		_, err := d.stack(ref.Class)
		return err
	}

	qualified := d.qualify(ref)
	if d.skipped(ref, qualified) {
		return nil
	}
	rule, err := d.instance(qualified)
	if err != nil {
		return err
	}
	if _, ok := resolveMethod(rule, ref.Method); !ok {
		return fmt.Errorf("%w: %s has no method %q", ErrContractViolation, qualified, displayMethod(ref.Method))
	}
	return nil
}
