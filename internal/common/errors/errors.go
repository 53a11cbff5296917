// internal/common/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNotAuthenticated     ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeSessionNotFound      ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeTermsNotAccepted     ErrorCode = "TERMS_NOT_ACCEPTED"
	ErrCodeStepNotReady         ErrorCode = "STEP_NOT_READY"
	ErrCodeStepValidationFailed ErrorCode = "STEP_VALIDATION_FAILED"

	ErrCodeFileTooLarge       ErrorCode = "FILE_TOO_LARGE"
	ErrCodeFileTypeNotAllowed ErrorCode = "FILE_TYPE_NOT_ALLOWED"
	ErrCodeUnknownSlot        ErrorCode = "UNKNOWN_SLOT"

	ErrCodeProfileUpsertFailed ErrorCode = "PROFILE_UPSERT_FAILED"
	ErrCodeProfilePatchFailed  ErrorCode = "PROFILE_PATCH_FAILED"
	ErrCodeWalletInitFailed    ErrorCode = "WALLET_INIT_FAILED"
	ErrCodeMediaUploadFailed   ErrorCode = "MEDIA_UPLOAD_FAILED"
	ErrCodeMetadataInvalid     ErrorCode = "UPLOAD_METADATA_INVALID"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeSearchIndexFailed        ErrorCode = "SEARCH_INDEX_FAILED"
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

// CodeOf extracts the ErrorCode from err if it wraps a StandardError.
func CodeOf(err error) (ErrorCode, bool) {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return "", false
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// NewNotAuthenticatedError creates a non-retryable authentication error.
func NewNotAuthenticatedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotAuthenticated,
		Message:   "Applicant is not authenticated",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable missing-session error.
func NewSessionNotFoundError(applicantID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "No onboarding session for applicant",
		Details:   fmt.Sprintf("applicantId: %s", applicantID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTermsNotAcceptedError creates a non-retryable terms error.
func NewTermsNotAcceptedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTermsNotAccepted,
		Message:   "Terms must be accepted before submission",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepNotReadyError creates a non-retryable wrong-step error.
func NewStepNotReadyError(current int) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepNotReady,
		Message:   "Submission is only allowed from the review step",
		Details:   fmt.Sprintf("currentStep: %d", current),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepValidationFailedError creates a non-retryable step validation error.
func NewStepValidationFailedError(step int, errorCount int) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepValidationFailed,
		Message:   "Step validation failed",
		Details:   fmt.Sprintf("step: %d, errors: %d", step, errorCount),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFileTooLargeError creates a non-retryable file size error.
func NewFileTooLargeError(slot string, size, limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileTooLarge,
		Message:   "Selected file exceeds the size ceiling",
		Details:   fmt.Sprintf("slot: %s, size: %d, limit: %d", slot, size, limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFileTypeNotAllowedError creates a non-retryable content type error.
func NewFileTypeNotAllowedError(slot, contentType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileTypeNotAllowed,
		Message:   "File type is not allowed for this slot",
		Details:   fmt.Sprintf("slot: %s, contentType: %s", slot, contentType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownSlotError creates a non-retryable unknown document/photo slot error.
func NewUnknownSlotError(slot string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSlot,
		Message:   "Unknown document or photo slot",
		Details:   fmt.Sprintf("slot: %s", slot),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileUpsertFailedError creates a retryable profile store error.
func NewProfileUpsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileUpsertFailed,
		Message:   "Profile upsert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfilePatchFailedError creates a retryable profile patch error.
func NewProfilePatchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfilePatchFailed,
		Message:   "Profile patch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWalletInitFailedError creates a retryable wallet initialization error.
func NewWalletInitFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWalletInitFailed,
		Message:   "Wallet initialization failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMediaUploadFailedError creates a retryable upload error.
func NewMediaUploadFailedError(kind string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMediaUploadFailed,
		Message:   "Media upload failed",
		Details:   fmt.Sprintf("kind: %s, error: %s", kind, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMetadataInvalidError creates a non-retryable upload metadata error.
func NewMetadataInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMetadataInvalid,
		Message:   "Upload metadata failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable search index error.
func NewSearchIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Search index write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
