// Package errors provides centralized error definitions and error handling utilities
// for samprep. It defines the pipeline's error taxonomy, error constructors with
// context wrapping, and the classification helpers the CLI uses to pick an exit
// status.
//
// # Error Types
//
// Pipeline errors map one-to-one onto the failure classes of the two pipelines:
//   - FileFormatError: a dataset file the loader could not parse
//   - DirectoryNotFoundError: the alignment-maps directory is missing
//   - DeserializationError: a sample artifact is missing, unreadable, or corrupt
//   - AlignmentConstructionError: the alignment engine failed
//   - IOError: an output location could not be created or written
//
// Input errors:
//   - ValidationError: invalid command-line or configuration input
//   - DuplicateSpeciesError: two sample artifacts derive the same species code
//     (only raised when duplicate codes are configured to fail)
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewFileFormatError("dataset could not be loaded", cause).WithPath(path)
//	err := errors.NewIOError("failed to write artifact", cause).WithPath(out).WithOp("write")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrDirectoryNotFound) { ... }
//
//	var de *errors.DeserializationError
//	if errors.As(err, &de) { ... }
//
// # Exit Status
//
// Every error is fatal; nothing is retried. [ExitCode] maps an error to the
// process exit status so that callers can distinguish failure classes.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityWarning is for errors that might indicate a problem but aren't fatal.
	SeverityWarning Severity = iota
	// SeverityError is for errors that abort the current run.
	SeverityError
	// SeverityCritical is for errors that indicate a broken installation or environment.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrFileFormat indicates that a dataset file could not be parsed.
	ErrFileFormat = New("unreadable or malformed dataset")
	// ErrDirectoryNotFound indicates that a required directory does not exist.
	ErrDirectoryNotFound = New("directory not found")
	// ErrDeserialization indicates that a serialized object could not be restored.
	ErrDeserialization = New("deserialization failed")
	// ErrAlignmentConstruction indicates that the alignment engine failed.
	ErrAlignmentConstruction = New("alignment construction failed")
	// ErrIO indicates that an output location could not be created or written.
	ErrIO = New("i/o failure")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrDuplicateSpecies indicates that two samples share one species code.
	ErrDuplicateSpecies = New("duplicate species code")
	// ErrNotAnArtifact indicates that a file is not a samprep artifact, or holds
	// a different kind of object than the one requested.
	ErrNotAnArtifact = New("not a samprep artifact")
)

// Exit statuses returned by ExitCode.
const (
	ExitOK                    = 0
	ExitFailure               = 1
	ExitInvalidInput          = 2
	ExitFileFormat            = 3
	ExitDeserialization       = 4
	ExitDirectoryNotFound     = 5
	ExitAlignmentConstruction = 6
	ExitIO                    = 7
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PipelineError is the base interface for all samprep errors.
type PipelineError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity
}

// baseError provides common functionality for all error types.
type baseError struct {
	message  string
	cause    error
	sentinel error
	severity Severity
}

func newBase(message string, cause, sentinel error) baseError {
	return baseError{
		message:  message,
		cause:    cause,
		sentinel: sentinel,
		severity: SeverityError,
	}
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is matches the class sentinel first, then anything in the cause chain.
func (e *baseError) Is(target error) bool {
	if e.sentinel != nil && target == e.sentinel {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// format renders "<class> [k=v, ...]: message[: cause]".
func (e *baseError) format(class string, parts []string) string {
	prefix := class
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", class, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Pipeline Errors
// -----------------------------------------------------------------------------

// FileFormatError is returned when a dataset file cannot be parsed by the loader.
//
// Example:
//
//	err := errors.NewFileFormatError("dataset could not be loaded", cause).WithPath("hs.h5ad")
//	fmt.Println(err) // "file format error [path=hs.h5ad]: dataset could not be loaded: ..."
type FileFormatError struct {
	baseError
	Path string
}

// NewFileFormatError creates a new FileFormatError.
func NewFileFormatError(message string, cause error) *FileFormatError {
	return &FileFormatError{baseError: newBase(message, cause, ErrFileFormat)}
}

// WithPath adds the offending file path to the error context.
func (e *FileFormatError) WithPath(path string) *FileFormatError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *FileFormatError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("file format error", parts)
}

// Is checks if this error matches the target.
func (e *FileFormatError) Is(target error) bool {
	if _, ok := target.(*FileFormatError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DirectoryNotFoundError is returned when the maps directory does not exist.
//
// Example:
//
//	err := errors.NewDirectoryNotFoundError("maps directory does not exist").WithPath("maps/")
type DirectoryNotFoundError struct {
	baseError
	Path string
}

// NewDirectoryNotFoundError creates a new DirectoryNotFoundError.
func NewDirectoryNotFoundError(message string) *DirectoryNotFoundError {
	return &DirectoryNotFoundError{baseError: newBase(message, nil, ErrDirectoryNotFound)}
}

// WithPath adds the missing directory to the error context.
func (e *DirectoryNotFoundError) WithPath(path string) *DirectoryNotFoundError {
	e.Path = path
	return e
}

// WithCause adds a cause to the error.
func (e *DirectoryNotFoundError) WithCause(cause error) *DirectoryNotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *DirectoryNotFoundError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("directory not found", parts)
}

// Is checks if this error matches the target.
func (e *DirectoryNotFoundError) Is(target error) bool {
	if _, ok := target.(*DirectoryNotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DeserializationError is returned when a sample artifact is missing, unreadable,
// or does not hold a serialized sample.
//
// Example:
//
//	err := errors.NewDeserializationError("failed to load sample", cause).
//		WithPath("out/hs_sam.pkl").WithCode("hs")
type DeserializationError struct {
	baseError
	Path string
	Code string
}

// NewDeserializationError creates a new DeserializationError.
func NewDeserializationError(message string, cause error) *DeserializationError {
	return &DeserializationError{baseError: newBase(message, cause, ErrDeserialization)}
}

// WithPath adds the artifact path to the error context.
func (e *DeserializationError) WithPath(path string) *DeserializationError {
	e.Path = path
	return e
}

// WithCode adds the species code to the error context.
func (e *DeserializationError) WithCode(code string) *DeserializationError {
	e.Code = code
	return e
}

// Error returns the formatted error message.
func (e *DeserializationError) Error() string {
	var parts []string
	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("species=%s", e.Code))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("deserialization error", parts)
}

// Is checks if this error matches the target.
func (e *DeserializationError) Is(target error) bool {
	if _, ok := target.(*DeserializationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AlignmentConstructionError wraps any failure raised by the alignment engine.
type AlignmentConstructionError struct {
	baseError
	Engine  string
	Species []string
}

// NewAlignmentConstructionError creates a new AlignmentConstructionError.
func NewAlignmentConstructionError(message string, cause error) *AlignmentConstructionError {
	return &AlignmentConstructionError{baseError: newBase(message, cause, ErrAlignmentConstruction)}
}

// WithEngine adds the engine name to the error context.
func (e *AlignmentConstructionError) WithEngine(name string) *AlignmentConstructionError {
	e.Engine = name
	return e
}

// WithSpecies adds the species codes that were submitted to the engine.
func (e *AlignmentConstructionError) WithSpecies(codes []string) *AlignmentConstructionError {
	e.Species = codes
	return e
}

// Error returns the formatted error message.
func (e *AlignmentConstructionError) Error() string {
	var parts []string
	if e.Engine != "" {
		parts = append(parts, fmt.Sprintf("engine=%s", e.Engine))
	}
	if len(e.Species) > 0 {
		parts = append(parts, fmt.Sprintf("species=%s", strings.Join(e.Species, "+")))
	}
	return e.format("alignment construction error", parts)
}

// Is checks if this error matches the target.
func (e *AlignmentConstructionError) Is(target error) bool {
	if _, ok := target.(*AlignmentConstructionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// IOError is returned when an output location cannot be created or written.
//
// Example:
//
//	err := errors.NewIOError("failed to create output directory", cause).
//		WithPath("/ro/out").WithOp("mkdir")
type IOError struct {
	baseError
	Path string
	Op   string
}

// NewIOError creates a new IOError.
func NewIOError(message string, cause error) *IOError {
	return &IOError{baseError: newBase(message, cause, ErrIO)}
}

// WithPath adds the target path to the error context.
func (e *IOError) WithPath(path string) *IOError {
	e.Path = path
	return e
}

// WithOp adds the failing operation (mkdir, write, upload, ...) to the error context.
func (e *IOError) WithOp(op string) *IOError {
	e.Op = op
	return e
}

// WithSeverity sets the error severity.
func (e *IOError) WithSeverity(s Severity) *IOError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *IOError) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("io error", parts)
}

// Is checks if this error matches the target.
func (e *IOError) Is(target error) bool {
	if _, ok := target.(*IOError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Input Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input.
//
// Example:
//
//	err := errors.NewValidationError("species id must be exactly 2 characters")
//	err = err.WithField("id2").WithValue("hsa")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError: newBase(message, nil, ErrInvalidInput)}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation error")
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(" [%s]", e.Field))
	}
	sb.WriteString(": ")
	sb.WriteString(e.message)
	if e.Value != nil {
		sb.WriteString(fmt.Sprintf(" (got: %v)", e.Value))
	}
	if e.cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.cause))
	}
	return sb.String()
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DuplicateSpeciesError is returned when two sample paths derive the same
// species code and duplicates are configured to fail.
type DuplicateSpeciesError struct {
	baseError
	Code   string
	First  string
	Second string
}

// NewDuplicateSpeciesError creates a new DuplicateSpeciesError.
func NewDuplicateSpeciesError(code, first, second string) *DuplicateSpeciesError {
	return &DuplicateSpeciesError{
		baseError: newBase("two sample artifacts share a species code", nil, ErrDuplicateSpecies),
		Code:      code,
		First:     first,
		Second:    second,
	}
}

// Error returns the formatted error message.
func (e *DuplicateSpeciesError) Error() string {
	return e.format("duplicate species", []string{
		fmt.Sprintf("code=%s", e.Code),
		fmt.Sprintf("first=%s", e.First),
		fmt.Sprintf("second=%s", e.Second),
	})
}

// Is checks if this error matches the target.
func (e *DuplicateSpeciesError) Is(target error) bool {
	if _, ok := target.(*DuplicateSpeciesError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PipelineError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityWarning
	}

	var pipelineErr PipelineError
	if As(err, &pipelineErr) {
		return pipelineErr.Severity()
	}
	return SeverityError
}

// Class returns a short machine-readable name for the error's class, suitable
// for log attributes and metric labels.
func Class(err error) string {
	switch {
	case err == nil:
		return "none"
	case Is(err, ErrInvalidInput), Is(err, ErrDuplicateSpecies):
		return "invalid_input"
	case Is(err, ErrFileFormat):
		return "file_format"
	case Is(err, ErrDeserialization):
		return "deserialization"
	case Is(err, ErrDirectoryNotFound):
		return "directory_not_found"
	case Is(err, ErrAlignmentConstruction):
		return "alignment_construction"
	case Is(err, ErrIO):
		return "io"
	default:
		return "internal"
	}
}

// ExitCode maps an error onto the process exit status.
func ExitCode(err error) int {
	switch Class(err) {
	case "none":
		return ExitOK
	case "invalid_input":
		return ExitInvalidInput
	case "file_format":
		return ExitFileFormat
	case "deserialization":
		return ExitDeserialization
	case "directory_not_found":
		return ExitDirectoryNotFound
	case "alignment_construction":
		return ExitAlignmentConstruction
	case "io":
		return ExitIO
	default:
		return ExitFailure
	}
}
