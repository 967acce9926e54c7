package gamut

import (
	"errors"

	"github.com/alnah/go-mdext/internal/config"
)

// Sentinel errors for stage dispatch. The first four are distinct so callers
// can tell "nothing to run" from "configuration is broken".
var (
	// ErrInvalidStageName indicates a stage reference of the wrong type or shape.
	ErrInvalidStageName = errors.New("invalid stage name")
	// ErrUnknownStage indicates a stack, rule or stage that is not configured or registered.
	ErrUnknownStage = errors.New("unknown stage")
	// ErrContractViolation indicates a rule that lacks the contract or method it was called for.
	ErrContractViolation = errors.New("rule contract violation")
	// ErrConfigurationMissing indicates a required tunable or stack is absent.
	ErrConfigurationMissing = config.ErrConfigurationMissing
	// ErrRecursionLimit indicates stages calling stages deeper than MaxDepth,
	// usually a stack that includes itself.
	ErrRecursionLimit = errors.New("stage recursion limit exceeded")
)
