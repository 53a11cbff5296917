// internal/server/respond.go
package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"driver-onboarding/internal/common/errors"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func asStandardError(err error) (*errors.StandardError, bool) {
	var se *errors.StandardError
	ok := stderrors.As(err, &se)
	return se, ok
}

// writeError maps internal error codes onto HTTP statuses. Unknown errors
// surface as 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	var se *errors.StandardError
	if !stderrors.As(err, &se) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "INTERNAL",
			Message: "Internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch se.Code {
	case errors.ErrCodeNotAuthenticated:
		status = http.StatusUnauthorized
	case errors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeTermsNotAccepted,
		errors.ErrCodeStepNotReady,
		errors.ErrCodeStepValidationFailed:
		status = http.StatusConflict
	case errors.ErrCodeFileTooLarge:
		status = http.StatusRequestEntityTooLarge
	case errors.ErrCodeFileTypeNotAllowed:
		status = http.StatusUnsupportedMediaType
	case errors.ErrCodeUnknownSlot, errors.ErrCodeMetadataInvalid:
		status = http.StatusBadRequest
	case errors.ErrCodeProfileUpsertFailed,
		errors.ErrCodeProfilePatchFailed,
		errors.ErrCodeWalletInitFailed,
		errors.ErrCodeMediaUploadFailed,
		errors.ErrCodeDatabaseConnectionFailed:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorResponse{
		Code:    string(se.Code),
		Message: se.Message,
		Details: se.Details,
	})
}
