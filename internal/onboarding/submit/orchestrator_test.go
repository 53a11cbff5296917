// internal/onboarding/submit/orchestrator_test.go
package submit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/models"
	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/tier"
)

// ==========================
// Test Fakes
// ==========================

type fakeProfileStore struct {
	calls       []string
	upsertErr   error
	patchErr    error
	lastProfile *models.DriverProfile
	patchedURL  string
}

func (f *fakeProfileStore) UpsertProfile(ctx context.Context, p *models.DriverProfile) error {
	f.calls = append(f.calls, "upsert")
	f.lastProfile = p
	return f.upsertErr
}

func (f *fakeProfileStore) PatchLiveVideoURL(ctx context.Context, applicantID, url string) error {
	f.calls = append(f.calls, "patch")
	f.patchedURL = url
	return f.patchErr
}

type fakeWalletService struct {
	calls    int
	currency string
	err      error
}

func (f *fakeWalletService) InitWallet(ctx context.Context, applicantID, currency string) error {
	f.calls++
	f.currency = currency
	return f.err
}

type fakeMediaStore struct {
	documents []string
	photos    []string
	failKind  string
}

func (f *fakeMediaStore) StoreDocument(ctx context.Context, applicantID, kind string, file *session.FileHandle) (*models.MediaRecord, error) {
	if kind == f.failKind {
		return nil, fmt.Errorf("upload refused")
	}
	f.documents = append(f.documents, kind)
	return f.record(applicantID, kind, file), nil
}

func (f *fakeMediaStore) StorePhoto(ctx context.Context, applicantID, kind string, file *session.FileHandle) (*models.MediaRecord, error) {
	if kind == f.failKind {
		return nil, fmt.Errorf("upload refused")
	}
	f.photos = append(f.photos, kind)
	return f.record(applicantID, kind, file), nil
}

func (f *fakeMediaStore) ObjectKey(applicantID, kind string, file *session.FileHandle) string {
	return applicantID + "/" + kind + "/" + file.Name
}

func (f *fakeMediaStore) record(applicantID, kind string, file *session.FileHandle) *models.MediaRecord {
	return &models.MediaRecord{
		ReferenceID: "ref-" + kind,
		ApplicantID: applicantID,
		Kind:        kind,
		ObjectKey:   f.ObjectKey(applicantID, kind, file),
		ContentType: file.ContentType,
		SizeBytes:   file.Size,
	}
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) SubmissionReceived(ctx context.Context, p *models.DriverProfile) error {
	f.calls++
	return f.err
}

type fakeIndexer struct {
	calls int
}

func (f *fakeIndexer) IndexProfile(ctx context.Context, p *models.DriverProfile) error {
	f.calls++
	return nil
}

// memLedger is an in-process Ledger for orchestration tests.
type memLedger struct {
	entries map[string]bool
	cleared int
}

func newMemLedger() *memLedger {
	return &memLedger{entries: map[string]bool{}}
}

func (l *memLedger) Done(ctx context.Context, applicantID, resource string) (bool, error) {
	return l.entries[applicantID+"/"+resource], nil
}

func (l *memLedger) Mark(ctx context.Context, applicantID, resource string) error {
	l.entries[applicantID+"/"+resource] = true
	return nil
}

func (l *memLedger) Clear(ctx context.Context, applicantID string) error {
	l.cleared++
	for k := range l.entries {
		delete(l.entries, k)
	}
	return nil
}

// ==========================
// Test Helper Functions
// ==========================

type harness struct {
	profiles *fakeProfileStore
	wallets  *fakeWalletService
	media    *fakeMediaStore
	notifier *fakeNotifier
	indexer  *fakeIndexer
	ledger   *memLedger
	orch     *Orchestrator
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		profiles: &fakeProfileStore{},
		wallets:  &fakeWalletService{},
		media:    &fakeMediaStore{},
		notifier: &fakeNotifier{},
		indexer:  &fakeIndexer{},
		ledger:   newMemLedger(),
	}
	h.orch = NewOrchestrator(
		h.profiles, h.wallets, h.media,
		h.notifier, h.indexer, h.ledger,
		nil, logger.NewTestLogger(t), "LKR",
	)
	return h
}

func createSubmittableSession(t *testing.T) *session.Session {
	t.Helper()
	app := session.New()
	app.SetTier(tier.FreelanceDriver)
	app.Profile.FullName = "Nimal Perera"
	app.Profile.Email = "nimal@example.com"
	app.Profile.Phone = "+94771234567"
	app.Vehicle.Registration = "WP CAB-1234"
	app.Vehicle.MakeModelYear = "Toyota Prius 2019"
	for _, d := range tier.RequiredDocuments(app.Tier) {
		require.NoError(t, app.AttachDocument(d, &session.FileHandle{
			Name: string(d) + ".pdf", ContentType: "application/pdf", Size: 1024,
		}))
	}
	for _, p := range tier.MandatoryPhotos() {
		require.NoError(t, app.AttachPhoto(p, &session.FileHandle{
			Name: string(p) + ".jpg", ContentType: "image/jpeg", Size: 1024,
		}))
	}
	app.CurrentStep = 4
	app.MaxVisitedStep = 4
	app.AgreedToTerms = true

	return &session.Session{ApplicantID: "applicant-1", Application: app}
}

func outcomeFor(r *Result, resource string) (ResourceOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Resource == resource {
			return o, true
		}
	}
	return ResourceOutcome{}, false
}

// ==========================
// Precondition Refusals
// ==========================

func TestSubmit_RefusalsMakeNoPersistenceCalls(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*session.Session)
		wantCode errors.ErrorCode
	}{
		{
			name:     "unauthenticated",
			mutate:   func(s *session.Session) { s.ApplicantID = " " },
			wantCode: errors.ErrCodeNotAuthenticated,
		},
		{
			name:     "not on the review step",
			mutate:   func(s *session.Session) { s.Application.CurrentStep = 3 },
			wantCode: errors.ErrCodeStepNotReady,
		},
		{
			name:     "terms not accepted",
			mutate:   func(s *session.Session) { s.Application.AgreedToTerms = false },
			wantCode: errors.ErrCodeTermsNotAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			sess := createSubmittableSession(t)
			tt.mutate(sess)

			result, err := h.orch.Submit(context.Background(), sess)

			require.Error(t, err)
			assert.Nil(t, result)
			code, ok := errors.CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, code)

			assert.Empty(t, h.profiles.calls)
			assert.Zero(t, h.wallets.calls)
			assert.Empty(t, h.media.documents)
			assert.Empty(t, h.media.photos)
			assert.Zero(t, h.notifier.calls)
		})
	}
}

// ==========================
// Successful Submission
// ==========================

func TestSubmit_Success(t *testing.T) {
	h := newHarness(t)
	sess := createSubmittableSession(t)

	result, err := h.orch.Submit(context.Background(), sess)

	require.NoError(t, err)
	require.True(t, result.Succeeded)

	// Profile, wallet, four documents, two photos.
	assert.Len(t, result.Outcomes, 8)
	for _, o := range result.Outcomes {
		assert.Equal(t, OutcomeSucceeded, o.Status, o.Resource)
	}

	assert.Equal(t, []string{"upsert"}, h.profiles.calls)
	assert.Equal(t, "LKR", h.wallets.currency)
	assert.Len(t, h.media.documents, 4)
	assert.Len(t, h.media.photos, 2)
	assert.Len(t, result.Media, 6)

	// Flattened profile carries the onboarding defaults.
	require.NotNil(t, h.profiles.lastProfile)
	assert.Equal(t, models.StatusPendingVerification, h.profiles.lastProfile.Status)
	assert.Equal(t, 1, h.profiles.lastProfile.VerifiedLevel)

	// Post-success integrations fired and the ledger was cleared.
	assert.Equal(t, 1, h.notifier.calls)
	assert.Equal(t, 1, h.indexer.calls)
	assert.Equal(t, 1, h.ledger.cleared)
}

func TestSubmit_VideoIntroPatchesProfile(t *testing.T) {
	h := newHarness(t)
	sess := createSubmittableSession(t)
	require.NoError(t, sess.Application.AttachPhoto(tier.PhotoVideoIntro, &session.FileHandle{
		Name: "intro.mp4", ContentType: "video/mp4", Size: 2048,
	}))

	result, err := h.orch.Submit(context.Background(), sess)

	require.NoError(t, err)
	assert.Equal(t, []string{"upsert", "patch"}, h.profiles.calls)
	assert.Equal(t, "applicant-1/video_intro/intro.mp4", h.profiles.patchedURL)

	patch, ok := outcomeFor(result, "video_patch")
	require.True(t, ok)
	assert.Equal(t, OutcomeSucceeded, patch.Status)
}

func TestSubmit_NoVideoMeansNoPatch(t *testing.T) {
	h := newHarness(t)
	sess := createSubmittableSession(t)

	result, err := h.orch.Submit(context.Background(), sess)

	require.NoError(t, err)
	assert.Equal(t, []string{"upsert"}, h.profiles.calls)
	_, ok := outcomeFor(result, "video_patch")
	assert.False(t, ok)
}

// ==========================
// Failure and Retry
// ==========================

func TestSubmit_StopsAtFirstFailureWithoutRollback(t *testing.T) {
	h := newHarness(t)
	h.wallets.err = fmt.Errorf("wallet service down")
	sess := createSubmittableSession(t)

	result, err := h.orch.Submit(context.Background(), sess)

	require.Error(t, err)
	code, _ := errors.CodeOf(err)
	assert.Equal(t, errors.ErrCodeWalletInitFailed, code)

	require.NotNil(t, result)
	assert.False(t, result.Succeeded)

	profile, _ := outcomeFor(result, "profile")
	assert.Equal(t, OutcomeSucceeded, profile.Status)
	wallet, _ := outcomeFor(result, "wallet")
	assert.Equal(t, OutcomeFailed, wallet.Status)

	// The sequence stopped: no uploads were attempted.
	assert.Empty(t, h.media.documents)
	assert.Empty(t, h.media.photos)
	// The profile row stays in place; nothing is rolled back.
	assert.Equal(t, []string{"upsert"}, h.profiles.calls)
	// No success notifications on failure.
	assert.Zero(t, h.notifier.calls)
	assert.Zero(t, h.indexer.calls)
}

func TestSubmit_RetrySkipsCompletedResources(t *testing.T) {
	h := newHarness(t)
	h.media.failKind = string(tier.DocNationalID)
	sess := createSubmittableSession(t)

	_, err := h.orch.Submit(context.Background(), sess)
	require.Error(t, err)
	upsertsAfterFirst := len(h.profiles.calls)
	walletsAfterFirst := h.wallets.calls

	h.media.failKind = ""
	result, err := h.orch.Submit(context.Background(), sess)

	require.NoError(t, err)
	require.True(t, result.Succeeded)

	// Profile and wallet were not re-persisted.
	assert.Equal(t, upsertsAfterFirst, len(h.profiles.calls))
	assert.Equal(t, walletsAfterFirst, h.wallets.calls)
	profile, _ := outcomeFor(result, "profile")
	assert.Equal(t, OutcomeSkipped, profile.Status)
	wallet, _ := outcomeFor(result, "wallet")
	assert.Equal(t, OutcomeSkipped, wallet.Status)

	// The failed document was retried this time.
	retried, _ := outcomeFor(result, "document:"+string(tier.DocNationalID))
	assert.Equal(t, OutcomeSucceeded, retried.Status)

	// Success clears the ledger for a future re-application.
	assert.Equal(t, 1, h.ledger.cleared)
}

func TestSubmit_NotificationFailureDoesNotFailSubmission(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = fmt.Errorf("ses throttled")
	sess := createSubmittableSession(t)

	result, err := h.orch.Submit(context.Background(), sess)

	require.NoError(t, err)
	assert.True(t, result.Succeeded)
}
