package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeUnsupported      = "UNSUPPORTED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrEmptyTopicTitle    = NewDomainError(ErrCodeValidation, "topic title cannot be empty")
	ErrTopicTitleTooLong  = NewDomainError(ErrCodeValidation, "topic title exceeds 80 characters")
	ErrInvalidChunkConfig = NewDomainError(ErrCodeValidation, "invalid chunking configuration")
	ErrEmptyQuery         = NewDomainError(ErrCodeValidation, "query text cannot be empty")
)

// Not found errors
var (
	ErrCourseNotFound   = NewDomainError(ErrCodeNotFound, "course not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrTopicNotFound    = NewDomainError(ErrCodeNotFound, "topic not found")
)

// Authorization errors
var (
	ErrNotCourseOwner = NewDomainError(ErrCodeUnauthorized, "caller does not own the course")
)

// Unsupported input errors
var (
	ErrUnsupportedFileType = NewDomainError(ErrCodeUnsupported, "unsupported file type")
)

// Operation errors
var (
	ErrDocumentNotResettable  = NewDomainError(ErrCodeInvalidOperation, "document is not in a resettable state")
	ErrMalformedTopicResponse = NewDomainError(ErrCodeInternalError, "model returned a malformed topic response")
)
