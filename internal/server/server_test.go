// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driver-onboarding/internal/common/config"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/models"
	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/submit"
	"driver-onboarding/internal/onboarding/tier"
)

// ==========================
// Test Fakes
// ==========================

type fakeProfileStore struct {
	upserts int
	patches int
}

func (f *fakeProfileStore) UpsertProfile(ctx context.Context, p *models.DriverProfile) error {
	f.upserts++
	return nil
}

func (f *fakeProfileStore) PatchLiveVideoURL(ctx context.Context, applicantID, url string) error {
	f.patches++
	return nil
}

type fakeWalletService struct {
	calls int
	err   error
}

func (f *fakeWalletService) InitWallet(ctx context.Context, applicantID, currency string) error {
	f.calls++
	return f.err
}

type fakeMediaStore struct {
	stored int
}

func (f *fakeMediaStore) StoreDocument(ctx context.Context, applicantID, kind string, file *session.FileHandle) (*models.MediaRecord, error) {
	f.stored++
	return &models.MediaRecord{ReferenceID: "ref", Kind: kind, ObjectKey: f.ObjectKey(applicantID, kind, file)}, nil
}

func (f *fakeMediaStore) StorePhoto(ctx context.Context, applicantID, kind string, file *session.FileHandle) (*models.MediaRecord, error) {
	f.stored++
	return &models.MediaRecord{ReferenceID: "ref", Kind: kind, ObjectKey: f.ObjectKey(applicantID, kind, file)}, nil
}

func (f *fakeMediaStore) ObjectKey(applicantID, kind string, file *session.FileHandle) string {
	return applicantID + "/" + kind + "/" + file.Name
}

type memLedger struct {
	entries map[string]bool
}

func (l *memLedger) Done(ctx context.Context, applicantID, resource string) (bool, error) {
	return l.entries[applicantID+"/"+resource], nil
}

func (l *memLedger) Mark(ctx context.Context, applicantID, resource string) error {
	l.entries[applicantID+"/"+resource] = true
	return nil
}

func (l *memLedger) Clear(ctx context.Context, applicantID string) error {
	for k := range l.entries {
		delete(l.entries, k)
	}
	return nil
}

// ==========================
// Test Helper Functions
// ==========================

type env struct {
	ts      *httptest.Server
	wallets *fakeWalletService
}

func newTestServer(t *testing.T) *env {
	t.Helper()

	wallets := &fakeWalletService{}
	orch := submit.NewOrchestrator(
		&fakeProfileStore{}, wallets, &fakeMediaStore{},
		nil, nil, &memLedger{entries: map[string]bool{}},
		nil, logger.NewTestLogger(t), "LKR",
	)
	sessions := session.NewManager(session.DefaultMaxFileBytes, time.Hour)

	srv := New(config.ServerConfig{Address: ":0"}, sessions, orch, logger.NewTestLogger(t))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &env{ts: ts, wallets: wallets}
}

func (e *env) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, e.ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("X-Applicant-ID", "applicant-1")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (e *env) doJSON(t *testing.T, method, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(payload))
	return e.do(t, method, path, &body, "application/json")
}

func multipartFile(t *testing.T, field, name, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name)}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func fillProfile(t *testing.T, e *env) {
	_, _ = e.doJSON(t, http.MethodPatch, "/api/v1/session", map[string]interface{}{
		"fullName":             "Nimal Perera",
		"email":                "nimal@example.com",
		"phone":                "+94771234567",
		"vehicleRegistration":  "WP CAB-1234",
		"vehicleMakeModelYear": "Toyota Prius 2019",
	})
}

// ==========================
// Authentication
// ==========================

func TestMissingApplicantHeader(t *testing.T) {
	e := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, e.ts.URL+"/api/v1/session", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ==========================
// Session Lifecycle
// ==========================

func TestStartAndSnapshot(t *testing.T) {
	e := newTestServer(t)

	resp, body := e.do(t, http.MethodPost, "/api/v1/session", nil, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), body["currentStep"])
	assert.Equal(t, "freelance_driver", body["tier"])
	assert.Equal(t, float64(0), body["completion"])

	resp, _ = e.do(t, http.MethodGet, "/api/v1/session", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSnapshotWithoutSession(t *testing.T) {
	e := newTestServer(t)

	resp, body := e.do(t, http.MethodGet, "/api/v1/session", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "SESSION_NOT_FOUND", body["code"])
}

func TestUpdateReflectsInSnapshot(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")

	resp, body := e.doJSON(t, http.MethodPatch, "/api/v1/session", map[string]interface{}{
		"tier":     "chauffeur_guide",
		"fullName": "Nimal Perera",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "chauffeur_guide", body["tier"])
	assert.Len(t, body["requiredDocuments"], 7)
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, "Nimal Perera", profile["fullName"])
	assert.Greater(t, body["completion"], float64(0))
}

func TestDiscardSession(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")

	resp, _ := e.do(t, http.MethodDelete, "/api/v1/session", nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/v1/session", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ==========================
// Uploads
// ==========================

func TestAttachDocument(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")

	buf, ct := multipartFile(t, "file", "license.pdf", "application/pdf", []byte("pdf"))
	resp, body := e.do(t, http.MethodPost, "/api/v1/session/documents/driving_license", buf, ct)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["filledDocuments"], "driving_license")
}

func TestAttachDocument_UnknownSlot(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")

	// The freelance tier never requires the regulator license.
	buf, ct := multipartFile(t, "file", "sltda.pdf", "application/pdf", []byte("pdf"))
	resp, body := e.do(t, http.MethodPost, "/api/v1/session/documents/slt_da_license", buf, ct)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_SLOT", body["code"])
}

func TestAttachDocument_BadContentType(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")

	buf, ct := multipartFile(t, "file", "virus.exe", "application/octet-stream", []byte("mz"))
	resp, body := e.do(t, http.MethodPost, "/api/v1/session/documents/driving_license", buf, ct)

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	assert.Equal(t, "FILE_TYPE_NOT_ALLOWED", body["code"])
}

func TestAttachPhoto(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")

	buf, ct := multipartFile(t, "file", "selfie.jpg", "image/jpeg", []byte("jpg"))
	resp, body := e.do(t, http.MethodPost, "/api/v1/session/photos/selfie_with_id", buf, ct)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["filledPhotos"], "selfie_with_id")
}

// ==========================
// Navigation
// ==========================

func TestNext_BlockedReturnsFieldErrors(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")

	resp, body := e.do(t, http.MethodPost, "/api/v1/session/next", nil, "")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, float64(1), body["currentStep"])
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "fullName")
	assert.Contains(t, errs, "email")
}

func TestNext_AdvancesAndClearsErrors(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")
	e.do(t, http.MethodPost, "/api/v1/session/next", nil, "")
	fillProfile(t, e)

	resp, body := e.do(t, http.MethodPost, "/api/v1/session/next", nil, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["currentStep"])
	assert.Empty(t, body["errors"])
}

func TestBackAndJump(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")
	fillProfile(t, e)
	e.do(t, http.MethodPost, "/api/v1/session/next", nil, "")

	resp, body := e.do(t, http.MethodPost, "/api/v1/session/back", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["currentStep"])

	resp, body = e.doJSON(t, http.MethodPost, "/api/v1/session/jump", map[string]int{"step": 2})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["currentStep"])

	resp, body = e.doJSON(t, http.MethodPost, "/api/v1/session/jump", map[string]int{"step": 4})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "STEP_NOT_READY", body["code"])
}

// ==========================
// Submission
// ==========================

func advanceToReview(t *testing.T, e *env) {
	t.Helper()
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")
	fillProfile(t, e)

	resp, _ := e.do(t, http.MethodPost, "/api/v1/session/next", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, d := range tier.RequiredDocuments(tier.FreelanceDriver) {
		buf, ct := multipartFile(t, "file", string(d)+".pdf", "application/pdf", []byte("pdf"))
		resp, _ := e.do(t, http.MethodPost, "/api/v1/session/documents/"+string(d), buf, ct)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodPost, "/api/v1/session/next", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, p := range tier.MandatoryPhotos() {
		buf, ct := multipartFile(t, "file", string(p)+".jpg", "image/jpeg", []byte("jpg"))
		resp, _ := e.do(t, http.MethodPost, "/api/v1/session/photos/"+string(p), buf, ct)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodPost, "/api/v1/session/next", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmit_RefusedBeforeReviewStep(t *testing.T) {
	e := newTestServer(t)
	e.do(t, http.MethodPost, "/api/v1/session", nil, "")

	resp, body := e.do(t, http.MethodPost, "/api/v1/session/submit", nil, "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "STEP_NOT_READY", body["code"])
	assert.Zero(t, e.wallets.calls)
}

func TestSubmit_RefusedWithoutTerms(t *testing.T) {
	e := newTestServer(t)
	advanceToReview(t, e)

	resp, body := e.do(t, http.MethodPost, "/api/v1/session/submit", nil, "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "TERMS_NOT_ACCEPTED", body["code"])
	assert.Zero(t, e.wallets.calls)
}

func TestSubmit_SuccessDiscardsSession(t *testing.T) {
	e := newTestServer(t)
	advanceToReview(t, e)
	e.doJSON(t, http.MethodPatch, "/api/v1/session", map[string]interface{}{"agreedToTerms": true})

	resp, body := e.do(t, http.MethodPost, "/api/v1/session/submit", nil, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, true, result["succeeded"])
	assert.Equal(t, 1, e.wallets.calls)

	// The session is gone after a successful submission.
	resp, _ = e.do(t, http.MethodGet, "/api/v1/session", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmit_MidSequenceFailureKeepsSession(t *testing.T) {
	e := newTestServer(t)
	advanceToReview(t, e)
	e.doJSON(t, http.MethodPatch, "/api/v1/session", map[string]interface{}{"agreedToTerms": true})
	e.wallets.err = fmt.Errorf("wallet service down")

	resp, body := e.do(t, http.MethodPost, "/api/v1/session/submit", nil, "")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, false, result["succeeded"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "WALLET_INIT_FAILED", errBody["code"])

	// The session survives for a retry.
	resp, _ = e.do(t, http.MethodGet, "/api/v1/session", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Retry after recovery skips the already-written profile.
	e.wallets.err = nil
	resp, body = e.do(t, http.MethodPost, "/api/v1/session/submit", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result = body["result"].(map[string]interface{})
	assert.Equal(t, true, result["succeeded"])
	outcomes := result["outcomes"].([]interface{})
	first := outcomes[0].(map[string]interface{})
	assert.Equal(t, "profile", first["resource"])
	assert.Equal(t, "skipped", first["status"])
}
