package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of audit errors
type ErrorCategory string

const (
	CategoryInput         ErrorCategory = "input"
	CategoryExtraction    ErrorCategory = "extraction"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryIntegrity     ErrorCategory = "integrity"
	CategoryExport        ErrorCategory = "export"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Input errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFileUnreadable ErrorCode = "file_unreadable"
	CodeEmptyFile      ErrorCode = "empty_file"

	// Extraction errors
	CodeQuotaExceeded      ErrorCode = "quota_exceeded"
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeMalformedOutput    ErrorCode = "malformed_output"
	CodeSchemaViolation    ErrorCode = "schema_violation"
	CodeServiceUnavailable ErrorCode = "service_unavailable"

	// Configuration errors
	CodeMissingConfig ErrorCode = "missing_config"
	CodeInvalidConfig ErrorCode = "invalid_config"

	// Integrity errors
	CodeUnknownDebtor    ErrorCode = "unknown_debtor"
	CodeNegativeAmount   ErrorCode = "negative_amount"
	CodeInvalidTimestamp ErrorCode = "invalid_timestamp"
	CodeInconsistentData ErrorCode = "inconsistent_data"

	// Export errors
	CodeRenderFailed   ErrorCode = "render_failed"
	CodeWriteFailed    ErrorCode = "write_failed"
	CodeLayoutOverflow ErrorCode = "layout_overflow"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
	CodeAuditInProgress ErrorCode = "audit_in_progress"
)

// AuditError is the base error type for all application errors
type AuditError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *AuditError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *AuditError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *AuditError) GetExitCode() int {
	switch e.Category {
	case CategoryInput:
		return 2
	case CategoryExtraction:
		return 3
	case CategoryIntegrity:
		return 4
	case CategoryConfiguration:
		return 5
	case CategoryExport:
		return 6
	case CategoryInternal:
		return 7
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *AuditError) WithContext(key string, value interface{}) *AuditError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *AuditError) WithSuggestion(suggestion string) *AuditError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AuditError
func New(category ErrorCategory, code ErrorCode, message string) *AuditError {
	return &AuditError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with AuditError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *AuditError {
	if err == nil {
		return nil
	}

	return &AuditError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// InputError creates an error for a missing or unreadable source document
func InputError(code ErrorCode, path string, err error) *AuditError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("source document not found: %s", path)
		suggestion = "check the file path and make sure all three documents are provided"
	case CodeFileUnreadable:
		message = fmt.Sprintf("source document could not be read: %s", path)
		suggestion = "check file permissions and ensure the file is not locked by another process"
	case CodeEmptyFile:
		message = fmt.Sprintf("source document is empty: %s", path)
		suggestion = "verify the export from your banking or registry system produced content"
	default:
		message = fmt.Sprintf("input error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *AuditError
	if err != nil {
		result = Wrap(err, CategoryInput, code, message)
	} else {
		result = New(CategoryInput, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ExtractionError creates an error for a failed document-understanding call
func ExtractionError(code ErrorCode, detail string, err error) *AuditError {
	var message string
	var suggestion string

	switch code {
	case CodeQuotaExceeded:
		message = "extraction quota exceeded"
		suggestion = "wait a moment and re-run the audit; rate limits reset shortly"
	case CodeInvalidCredentials:
		message = "extraction service rejected the credentials"
		suggestion = "verify the configured API key is valid and has access to the model"
	case CodeMalformedOutput:
		message = fmt.Sprintf("extraction service returned malformed output: %s", detail)
		suggestion = "re-run the audit; if the problem persists the documents may be unreadable"
	case CodeSchemaViolation:
		message = fmt.Sprintf("extracted records failed schema validation: %s", detail)
		suggestion = "check that the three documents are a registry, an earnings ledger and a bank statement"
	case CodeServiceUnavailable:
		message = fmt.Sprintf("extraction service unavailable: %s", detail)
		suggestion = "check network connectivity and service status, then try again"
	default:
		message = fmt.Sprintf("extraction failed: %s", detail)
		suggestion = "re-run the audit with the same documents"
	}

	var result *AuditError
	if err != nil {
		result = Wrap(err, CategoryExtraction, code, message)
	} else {
		result = New(CategoryExtraction, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("detail", detail)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *AuditError {
	var message string
	var suggestion string

	switch code {
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting via flag, environment variable or config file"
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *AuditError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// IntegrityError creates an error for semantically inconsistent audit input
func IntegrityError(code ErrorCode, subject string, value interface{}, err error) *AuditError {
	var message string
	var suggestion string

	switch code {
	case CodeUnknownDebtor:
		message = fmt.Sprintf("earnings ledger references a user absent from the registry: %s", subject)
		suggestion = "add the user to the registry or remove the orphaned debit entries"
	case CodeNegativeAmount:
		message = fmt.Sprintf("negative amount for '%s': %v", subject, value)
		suggestion = "amounts in the ledger and statement must be zero or positive"
	case CodeInvalidTimestamp:
		message = fmt.Sprintf("unparsable time for '%s': %v", subject, value)
		suggestion = "payment times must use the 24h HH:mm format"
	case CodeInconsistentData:
		message = fmt.Sprintf("inconsistent data for '%s': %v", subject, value)
		suggestion = "verify the source documents and resubmit"
	default:
		message = fmt.Sprintf("data integrity error for '%s': %v", subject, value)
		suggestion = "verify the source documents and resubmit"
	}

	var result *AuditError
	if err != nil {
		result = Wrap(err, CategoryIntegrity, code, message)
	} else {
		result = New(CategoryIntegrity, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("subject", subject).
		WithContext("value", value)
}

// ExportError creates a report-assembly error
func ExportError(code ErrorCode, stage string, err error) *AuditError {
	var message string
	var suggestion string

	switch code {
	case CodeRenderFailed:
		message = fmt.Sprintf("report rendering failed during %s", stage)
		suggestion = "re-run the export; no partial file was written"
	case CodeWriteFailed:
		message = fmt.Sprintf("report could not be written during %s", stage)
		suggestion = "check disk space and permissions on the output directory"
	case CodeLayoutOverflow:
		message = fmt.Sprintf("report layout overflowed the page during %s", stage)
		suggestion = "this is likely a bug - please report it with the error details"
	default:
		message = fmt.Sprintf("export error during %s", stage)
		suggestion = "re-run the export"
	}

	var result *AuditError
	if err != nil {
		result = Wrap(err, CategoryExport, code, message)
	} else {
		result = New(CategoryExport, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("stage", stage)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *AuditError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	var result *AuditError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// Utility functions

// IsAuditError checks if an error is an AuditError
func IsAuditError(err error) bool {
	_, ok := err.(*AuditError)
	return ok
}

// AsAuditError extracts an AuditError from an error chain
func AsAuditError(err error) (*AuditError, bool) {
	var auditErr *AuditError
	if errors.As(err, &auditErr) {
		return auditErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an AuditError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *AuditError {
	if err == nil {
		return nil
	}

	if auditErr, ok := AsAuditError(err); ok {
		return auditErr
	}

	return Wrap(err, category, code, message)
}

// HasCategory reports whether err is an AuditError of the given category
func HasCategory(err error, category ErrorCategory) bool {
	auditErr, ok := AsAuditError(err)
	return ok && auditErr.Category == category
}

// HasCode reports whether err is an AuditError with the given code
func HasCode(err error, code ErrorCode) bool {
	auditErr, ok := AsAuditError(err)
	return ok && auditErr.Code == code
}
