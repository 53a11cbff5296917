// internal/onboarding/submit/collaborators.go
package submit

import (
	"context"

	"driver-onboarding/internal/models"
	"driver-onboarding/internal/onboarding/session"
)

// ProfileStore persists the applicant's profile record.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *models.DriverProfile) error
	PatchLiveVideoURL(ctx context.Context, applicantID, url string) error
}

// WalletService provisions the payout wallet that accompanies every new
// profile.
type WalletService interface {
	InitWallet(ctx context.Context, applicantID, currency string) error
}

// MediaStore uploads file bytes to durable storage and records the upload.
// Keys are deterministic per applicant and slot, so a retried upload
// overwrites instead of duplicating.
type MediaStore interface {
	StoreDocument(ctx context.Context, applicantID, kind string, f *session.FileHandle) (*models.MediaRecord, error)
	StorePhoto(ctx context.Context, applicantID, kind string, f *session.FileHandle) (*models.MediaRecord, error)
	ObjectKey(applicantID, kind string, f *session.FileHandle) string
}

// Notifier delivers the post-submission notifications. Failures are logged
// and never fail the submission.
type Notifier interface {
	SubmissionReceived(ctx context.Context, profile *models.DriverProfile) error
}

// ProfileIndexer writes the profile into the search directory. Failures are
// logged and never fail the submission.
type ProfileIndexer interface {
	IndexProfile(ctx context.Context, profile *models.DriverProfile) error
}

// Ledger remembers which resources a previous submission attempt already
// persisted, so a retry after a mid-sequence failure does not write them
// twice.
type Ledger interface {
	Done(ctx context.Context, applicantID, resource string) (bool, error)
	Mark(ctx context.Context, applicantID, resource string) error
	Clear(ctx context.Context, applicantID string) error
}
