package redline

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable, machine-readable error identifier.
type Code string

// Validation codes.
const (
	CodeInvalidPath           Code = "INVALID_PATH"
	CodeInvalidExtension      Code = "INVALID_EXTENSION"
	CodeInvalidParagraphIndex Code = "INVALID_PARAGRAPH_INDEX"
	CodeEmptyCommentText      Code = "EMPTY_COMMENT_TEXT"
	CodeMissingTextSelection  Code = "MISSING_TEXT_SELECTION"
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
)

// Document codes.
const (
	CodeFileNotFound      Code = "FILE_NOT_FOUND"
	CodeNotAFile          Code = "NOT_A_FILE"
	CodePermissionDenied  Code = "PERMISSION_DENIED"
	CodeFileNotWritable   Code = "FILE_NOT_WRITABLE"
	CodeCorruptFile       Code = "CORRUPT_FILE"
	CodeMissingPart       Code = "MISSING_PART"
	CodeParseError        Code = "PARSE_ERROR"
	CodeParagraphNotFound Code = "PARAGRAPH_NOT_FOUND"
	CodeTextNotFound      Code = "TEXT_NOT_FOUND"
	CodeRangeNotFound     Code = "RANGE_NOT_FOUND"
	CodeInvalidRange      Code = "INVALID_RANGE"
	CodeCommentNotFound   Code = "COMMENT_NOT_FOUND"
	CodeRevisionConflict  Code = "REVISION_CONFLICT"
)

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Field   string
	Code    Code
	Message string
}

// ValidationError represents bad input detected before any file is touched.
type ValidationError struct {
	Issues []ValidationIssue
}

// Error leads with the code of the first issue, like DocumentError.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return string(CodeInvalidArgument) + ": validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s: validation error: %s - %s", e.Issues[0].Code, e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%s: %d validation issues:", e.Code(), len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s (%s)", issue.Field, issue.Message, issue.Code))
	}
	return strings.Join(parts, "\n")
}

// Code returns the code of the first issue.
func (e *ValidationError) Code() Code {
	if len(e.Issues) == 0 {
		return CodeInvalidArgument
	}
	return e.Issues[0].Code
}

// NewValidationError creates a validation error with a single issue
func NewValidationError(code Code, field, message string) error {
	return &ValidationError{Issues: []ValidationIssue{{Field: field, Code: code, Message: message}}}
}

// DocumentError represents an error during document operations
type DocumentError struct {
	Code      Code
	Operation string
	Path      string
	Message   string
	Cause     error
}

func (e *DocumentError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	} else if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	var sb strings.Builder
	sb.WriteString(string(e.Code))
	if e.Operation != "" {
		fmt.Fprintf(&sb, " during %s", e.Operation)
	}
	if e.Path != "" {
		fmt.Fprintf(&sb, " of '%s'", e.Path)
	}
	if msg != "" {
		sb.WriteString(": ")
		sb.WriteString(msg)
	}
	return sb.String()
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(code Code, operation, path string, cause error) error {
	return &DocumentError{
		Code:      code,
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// documentErrorf creates a document error without an underlying cause.
func documentErrorf(code Code, format string, args ...interface{}) error {
	return &DocumentError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// withLocation fills in the operation and path of a document error that was
// created without them. Other errors are returned unchanged.
func withLocation(err error, operation, path string) error {
	var de *DocumentError
	if errors.As(err, &de) {
		if de.Operation == "" {
			de.Operation = operation
		}
		if de.Path == "" {
			de.Path = path
		}
	}
	return err
}

// ErrorCode extracts the code of a validation or document error anywhere in
// err's chain. It returns "" for other errors.
func ErrorCode(err error) Code {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code()
	}
	var de *DocumentError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return ErrorCode(err) == code
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDocumentError checks if an error is a document error
func IsDocumentError(err error) bool {
	var de *DocumentError
	return errors.As(err, &de)
}
