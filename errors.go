package mdext

import (
	"errors"

	"github.com/alnah/go-mdext/internal/config"
	"github.com/alnah/go-mdext/internal/document"
	"github.com/alnah/go-mdext/internal/gamut"
	"github.com/alnah/go-mdext/internal/lexer"
)

// Sentinel errors for library operations.
var (
	ErrNilContent = errors.New("content cannot be nil")
	ErrInternal   = errors.New("internal error")

	// Stage dispatch errors.
	ErrInvalidStageName     = gamut.ErrInvalidStageName
	ErrUnknownStage         = gamut.ErrUnknownStage
	ErrContractViolation    = gamut.ErrContractViolation
	ErrConfigurationMissing = gamut.ErrConfigurationMissing
	ErrRecursionLimit       = gamut.ErrRecursionLimit

	// Parse lifecycle errors.
	ErrBusy           = lexer.ErrBusy
	ErrBodyAlreadySet = document.ErrBodyAlreadySet

	// Configuration errors.
	ErrConfigNotFound  = config.ErrConfigNotFound
	ErrEmptyConfigName = config.ErrEmptyConfigName
	ErrConfigParse     = config.ErrConfigParse
	ErrInvalidValue    = config.ErrInvalidValue
	ErrInvalidStack    = config.ErrInvalidStack
)
