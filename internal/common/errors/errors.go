// Package errors provides standardized error handling for the trip-context
// workers. The engine core itself never errors on malformed text; these
// codes exist at the worker and storage boundary.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePayloadValidationFailed ErrorCode = "PAYLOAD_VALIDATION_FAILED"
	ErrCodeContextDecodeFailed     ErrorCode = "CONTEXT_DECODE_FAILED"

	ErrCodeSessionStoreUnavailable ErrorCode = "SESSION_STORE_UNAVAILABLE"
	ErrCodeContextPersistFailed    ErrorCode = "CONTEXT_PERSIST_FAILED"
	ErrCodeAuditWriteFailed        ErrorCode = "AUDIT_WRITE_FAILED"

	ErrCodeSuggestionTimeout ErrorCode = "SUGGESTION_TIMEOUT"
	ErrCodeSuggestionFailed  ErrorCode = "SUGGESTION_FAILED"

	ErrCodePatternConfigInvalid ErrorCode = "PATTERN_CONFIG_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError represents an error thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// NewPayloadValidationFailedError creates a non-retryable payload error.
func NewPayloadValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadValidationFailed,
		Message:   "Turn payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextDecodeFailedError creates a non-retryable snapshot decode error.
func NewContextDecodeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextDecodeFailed,
		Message:   "Trip context snapshot could not be decoded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreUnavailableError creates a retryable session store error.
func NewSessionStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreUnavailable,
		Message:   "Session store connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextPersistFailedError creates a retryable snapshot persist error.
func NewContextPersistFailedError(sessionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextPersistFailed,
		Message:   "Updated trip context could not be persisted",
		Details:   fmt.Sprintf("sessionId: %s, error: %s", sessionID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable conflict-audit error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Conflict audit record insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSuggestionTimeoutError creates a non-retryable (degrade to table hints)
// suggestion-source timeout error.
func NewSuggestionTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSuggestionTimeout,
		Message:   "Suggestion source timeout",
		Details:   "call exceeded timeout threshold; table hints used",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSuggestionFailedError creates a non-retryable suggestion-source error.
func NewSuggestionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSuggestionFailed,
		Message:   "Suggestion source error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPatternConfigInvalidError creates a non-retryable startup config error.
func NewPatternConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePatternConfigInvalid,
		Message:   "Pattern table configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodePayloadValidationFailed: "PAYLOAD_VALIDATION_FAILED",
	ErrCodeContextDecodeFailed:     "CONTEXT_DECODE_FAILED",
	ErrCodeSessionStoreUnavailable: "SESSION_STORE_UNAVAILABLE",
	ErrCodeContextPersistFailed:    "CONTEXT_PERSIST_FAILED",
	ErrCodeAuditWriteFailed:        "AUDIT_WRITE_FAILED",
	ErrCodeSuggestionTimeout:       "SUGGESTION_TIMEOUT",
	ErrCodeSuggestionFailed:        "SUGGESTION_FAILED",
	ErrCodePatternConfigInvalid:    "PATTERN_CONFIG_INVALID",
}

// GetRetryCount returns the recommended retry count per code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSessionStoreUnavailable,
		ErrCodeContextPersistFailed,
		ErrCodeAuditWriteFailed:
		return 3 // Retryable technical errors

	default:
		return 0 // Business and validation errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "CONTEXT_PERSIST"):
		return "SESSION"
	case strings.Contains(codeStr, "AUDIT"):
		return "STORAGE"
	case strings.Contains(codeStr, "SUGGESTION"):
		return "ENRICHMENT"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "DECODE") || strings.Contains(codeStr, "CONFIG"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
