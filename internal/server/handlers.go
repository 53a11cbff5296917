// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/onboarding/navigator"
	"driver-onboarding/internal/onboarding/progress"
	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/submit"
	"driver-onboarding/internal/onboarding/tier"
)

type contextKey string

const applicantKey contextKey = "applicantID"

// multipartParseLimit bounds the memory used parsing an upload form. The
// per-file size gate lives in the session aggregate.
const multipartParseLimit = 32 << 20

// requireApplicant resolves the applicant identity set by the gateway.
// Requests without it never reach a handler.
func (s *Server) requireApplicant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Applicant-ID"))
		if id == "" {
			writeError(w, errors.NewNotAuthenticatedError("missing X-Applicant-ID header"))
			return
		}
		ctx := context.WithValue(r.Context(), applicantKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func applicantID(r *http.Request) string {
	id, _ := r.Context().Value(applicantKey).(string)
	return id
}

// snapshotResponse is the full view of an in-flight application the UI
// renders from.
type snapshotResponse struct {
	ApplicantID       string                    `json:"applicantId"`
	Tier              string                    `json:"tier"`
	TierLabel         string                    `json:"tierLabel"`
	CurrentStep       int                       `json:"currentStep"`
	MaxVisitedStep    int                       `json:"maxVisitedStep"`
	Completion        int                       `json:"completion"`
	Breakdown         progress.Breakdown        `json:"breakdown"`
	RequiredDocuments []string                  `json:"requiredDocuments"`
	FilledDocuments   []string                  `json:"filledDocuments"`
	MandatoryPhotos   []string                  `json:"mandatoryPhotos"`
	FilledPhotos      []string                  `json:"filledPhotos"`
	Errors            map[string]string         `json:"errors"`
	AgreedToTerms     bool                      `json:"agreedToTerms"`
	Profile           session.Profile           `json:"profile"`
	Vehicle           session.Vehicle           `json:"vehicle"`
	EmergencyContact  *session.EmergencyContact `json:"emergencyContact,omitempty"`
	BankDetails       *session.BankDetails      `json:"bankDetails,omitempty"`
}

func snapshot(sess *session.Session) snapshotResponse {
	app := sess.Application

	required := make([]string, 0, len(tier.RequiredDocuments(app.Tier)))
	for _, d := range tier.RequiredDocuments(app.Tier) {
		required = append(required, string(d))
	}
	filledDocs := make([]string, 0, len(app.Documents))
	for _, d := range tier.RequiredDocuments(app.Tier) {
		if app.Documents[d] != nil {
			filledDocs = append(filledDocs, string(d))
		}
	}
	mandatory := make([]string, 0, 2)
	for _, p := range tier.MandatoryPhotos() {
		mandatory = append(mandatory, string(p))
	}
	filledPhotos := make([]string, 0, len(app.Photos))
	for _, p := range tier.AllPhotoTypes() {
		if app.Photos[p] != nil {
			filledPhotos = append(filledPhotos, string(p))
		}
	}

	return snapshotResponse{
		ApplicantID:       sess.ApplicantID,
		Tier:              string(app.Tier),
		TierLabel:         tier.Label(app.Tier),
		CurrentStep:       app.CurrentStep,
		MaxVisitedStep:    app.MaxVisitedStep,
		Completion:        progress.Completion(app),
		Breakdown:         progress.Domains(app),
		RequiredDocuments: required,
		FilledDocuments:   filledDocs,
		MandatoryPhotos:   mandatory,
		FilledPhotos:      filledPhotos,
		Errors:            app.Errors,
		AgreedToTerms:     app.AgreedToTerms,
		Profile:           app.Profile,
		Vehicle:           app.Vehicle,
		EmergencyContact:  app.EmergencyContact,
		BankDetails:       app.BankDetails,
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.GetOrCreate(applicantID(r))
	writeJSON(w, http.StatusCreated, snapshot(sess))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(applicantID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(applicantID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	var u session.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "MALFORMED_BODY",
			Message: "Request body is not valid JSON",
		})
		return
	}

	sess.Application.Apply(&u)
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	s.sessions.Discard(applicantID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(applicantID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	f, err := fileFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "MALFORMED_UPLOAD",
			Message: err.Error(),
		})
		return
	}

	slot := tier.DocumentType(chi.URLParam(r, "type"))
	if err := sess.Application.AttachDocument(slot, f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleAttachPhoto(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(applicantID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	f, err := fileFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "MALFORMED_UPLOAD",
			Message: err.Error(),
		})
		return
	}
	f.CapturedLive = r.FormValue("capturedLive") == "true"

	slot := tier.PhotoType(chi.URLParam(r, "type"))
	if err := sess.Application.AttachPhoto(slot, f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(applicantID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := navigator.Next(sess.Application); err != nil {
		// The snapshot carries the field errors the UI renders inline.
		writeJSON(w, http.StatusUnprocessableEntity, snapshot(sess))
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(applicantID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	navigator.Back(sess.Application)
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(applicantID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Step int `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "MALFORMED_BODY",
			Message: "Request body is not valid JSON",
		})
		return
	}

	if err := navigator.Jump(sess.Application, body.Step); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// submitResponse pairs the per-resource breakdown with the terminal error of
// a failed attempt.
type submitResponse struct {
	Result *submit.Result `json:"result"`
	Error  *errorResponse `json:"error,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(applicantID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.submit.Submit(r.Context(), sess)
	if err != nil {
		if result == nil {
			// Precondition refusal: nothing was attempted.
			writeError(w, err)
			return
		}
		resp := submitResponse{Result: result}
		if se, ok := asStandardError(err); ok {
			resp.Error = &errorResponse{
				Code:    string(se.Code),
				Message: se.Message,
				Details: se.Details,
			}
		}
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	s.sessions.Discard(sess.ApplicantID)
	writeJSON(w, http.StatusOK, submitResponse{Result: result})
}

// fileFromRequest reads the single uploaded file from a multipart form.
func fileFromRequest(r *http.Request) (*session.FileHandle, error) {
	if err := r.ParseMultipartForm(multipartParseLimit); err != nil {
		return nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	return &session.FileHandle{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
