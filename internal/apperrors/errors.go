// Package apperrors implements the structured error taxonomy spec.md §7
// names: {kind, stage?, details, retryable}. Adapted from
// internal/errors, replacing IsFatal()'s severity-based stop/continue
// decision with IsRetryable(), since the retry policy here (3 attempts,
// 1s/4s/16s backoff on a batch write) cares about retryability, not
// severity.
package apperrors

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorType is spec.md §7's error kind taxonomy: config, repository,
// store-transient, store-permanent, decoding, derivation, cancellation.
type ErrorType int

const (
	Config ErrorType = iota
	Validation
	Repository
	StoreTransient
	StorePermanent
	FileSystem
	Decoding
	Derivation
	Cancellation
	Internal
)

// Severity represents how critical an error is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Error is a structured error carrying the stage it occurred in and
// whether the caller should retry (§7: "all of these shapes carry
// {kind, stage?, details, retryable}").
type Error struct {
	Type       ErrorType
	Severity   Severity
	Stage      string
	Message    string
	Cause      error
	Context    map[string]any
	StackTrace string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func (e *Error) WithStage(stage string) *Error {
	e.Stage = stage
	return e
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable reports whether the caller's retry policy (§5: "3 attempts,
// 1s/4s/16s backoff") should re-attempt the operation that produced this
// error. Only transient store failures are retryable; everything else (bad
// config, validation, a permanently rejected write, a derivation failure, a
// user-requested cancellation) is not.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case StoreTransient:
		return true
	default:
		return false
	}
}

func (e *Error) DetailedString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] [%s] %s\n", severityString(e.Severity), typeString(e.Type), e.Message))
	if e.Stage != "" {
		sb.WriteString(fmt.Sprintf("Stage: %s\n", e.Stage))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}
	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}
	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}
	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case Config:
		return "CONFIG"
	case Validation:
		return "VALIDATION"
	case Repository:
		return "REPOSITORY"
	case StoreTransient:
		return "STORE_TRANSIENT"
	case StorePermanent:
		return "STORE_PERMANENT"
	case FileSystem:
		return "FILESYSTEM"
	case Decoding:
		return "DECODING"
	case Derivation:
		return "DERIVATION"
	case Cancellation:
		return "CANCELLATION"
	default:
		return "INTERNAL"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given type, severity, and message.
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{Type: errType, Severity: severity, Message: message, Context: make(map[string]any), StackTrace: captureStackTrace(2)}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: errType, Severity: severity, Message: message, Cause: err, Context: make(map[string]any), StackTrace: captureStackTrace(2)}
}

func ConfigError(message string) *Error                        { return New(Config, SeverityCritical, message) }
func ConfigErrorf(format string, args ...any) *Error            { return New(Config, SeverityCritical, fmt.Sprintf(format, args...)) }
func ValidationError(message string) *Error                    { return New(Validation, SeverityHigh, message) }
func ValidationErrorf(format string, args ...any) *Error        { return New(Validation, SeverityHigh, fmt.Sprintf(format, args...)) }
func RepositoryError(err error, message string) *Error          { return Wrap(err, Repository, SeverityHigh, message) }
func StoreTransientError(err error, message string) *Error      { return Wrap(err, StoreTransient, SeverityMedium, message) }
func StorePermanentError(err error, message string) *Error      { return Wrap(err, StorePermanent, SeverityCritical, message) }
func FileSystemError(err error, message string) *Error          { return Wrap(err, FileSystem, SeverityHigh, message) }
func DecodingError(err error, message string) *Error            { return Wrap(err, Decoding, SeverityLow, message) }
func DerivationError(err error, message string) *Error          { return Wrap(err, Derivation, SeverityMedium, message) }
func CancellationError(message string) *Error                   { return New(Cancellation, SeverityLow, message) }
func InternalError(message string) *Error                       { return New(Internal, SeverityCritical, message) }
func InternalErrorf(format string, args ...any) *Error          { return New(Internal, SeverityCritical, fmt.Sprintf(format, args...)) }

// IsRetryable checks whether err's retry policy says to re-attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return e.IsRetryable()
	}
	return false
}

// GetType returns the type of an error, or Internal if err isn't an *Error.
func GetType(err error) ErrorType {
	if e, ok := err.(*Error); ok {
		return e.Type
	}
	return Internal
}
