package main

import (
	"errors"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdext"
	"github.com/alnah/go-mdext/internal/hints"
)

// Exit codes for the mdext CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or stage names
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, flag.ErrHelp) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidSetting) ||
		errors.Is(err, mdext.ErrConfigNotFound) ||
		errors.Is(err, mdext.ErrEmptyConfigName) ||
		errors.Is(err, mdext.ErrConfigParse) ||
		errors.Is(err, mdext.ErrInvalidValue) ||
		errors.Is(err, mdext.ErrInvalidStack) ||
		errors.Is(err, mdext.ErrInvalidStageName) ||
		errors.Is(err, mdext.ErrUnknownStage) ||
		errors.Is(err, mdext.ErrContractViolation) ||
		errors.Is(err, mdext.ErrConfigurationMissing) ||
		errors.Is(err, mdext.ErrRecursionLimit) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidSetting), errors.Is(err, mdext.ErrInvalidValue):
		return hints.ForSetting()
	case errors.Is(err, ErrInvalidWorkerCount):
		return hints.ForWorkers(mdext.MaxPoolSize)
	case errors.Is(err, ErrInvalidExtension):
		return hints.ForExtension(markdownExtensions)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, mdext.ErrInvalidStageName),
		errors.Is(err, mdext.ErrUnknownStage),
		errors.Is(err, mdext.ErrContractViolation),
		errors.Is(err, mdext.ErrConfigurationMissing):
		return hints.ForStage()
	}
	return ""
}
