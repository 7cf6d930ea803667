package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidConfig indicates a configuration error.
	ErrInvalidConfig = errors.New("modelbuilder: invalid configuration")
	// ErrGenerationFailed indicates a declaration generation failure.
	ErrGenerationFailed = errors.New("modelbuilder: generation failed")
	// ErrTypeUnavailable indicates a field formatter type that cannot be
	// resolved. It is recoverable per message pair.
	ErrTypeUnavailable = errors.New("modelbuilder: type unavailable")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("modelbuilder: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("modelbuilder: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a failure while building declarations.
type GenerationError struct {
	Phase   string // "optionsets", "entities", "context", "messages", "helper"
	Unit    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("modelbuilder: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.Unit != "" {
		b.WriteString(" (unit: ")
		b.WriteString(e.Unit)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, unit, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		Unit:    unit,
		Message: message,
		Cause:   cause,
	}
}

// TypeUnavailableError reports a request or response field whose formatter
// names a type no declaration source knows.
type TypeUnavailableError struct {
	Message string
	Type    string
}

// Error implements the error interface.
func (e *TypeUnavailableError) Error() string {
	var b strings.Builder
	b.WriteString("modelbuilder: type unavailable")
	if e.Type != "" {
		fmt.Fprintf(&b, " %q", e.Type)
	}
	if e.Message != "" {
		b.WriteString(" for ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for TypeUnavailableError.
func (e *TypeUnavailableError) Is(target error) bool {
	return target == ErrTypeUnavailable
}

// NewTypeUnavailableError creates a new TypeUnavailableError.
func NewTypeUnavailableError(message, typeName string) *TypeUnavailableError {
	return &TypeUnavailableError{Message: message, Type: typeName}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsTypeUnavailable reports whether the error is a TypeUnavailableError.
func IsTypeUnavailable(err error) bool {
	var typeErr *TypeUnavailableError
	return errors.As(err, &typeErr)
}
