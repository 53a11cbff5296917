// internal/onboarding/submit/orchestrator.go
package submit

import (
	"context"
	"sort"
	"strings"
	"time"

	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/common/metrics"
	"driver-onboarding/internal/common/observability"
	"driver-onboarding/internal/models"
	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/tier"
)

const reviewStep = 4

// Orchestrator runs the multi-resource persistence sequence that turns an
// in-memory application into durable records: profile, wallet, document
// uploads, photo uploads, then the intro-video patch. The sequence stops at
// the first failure and nothing is rolled back; the idempotency ledger lets
// a retry skip resources an earlier attempt already wrote.
type Orchestrator struct {
	profiles ProfileStore
	wallets  WalletService
	media    MediaStore
	notifier Notifier
	indexer  ProfileIndexer
	ledger   Ledger
	obs      *observability.Observability
	logger   logger.Logger

	walletCurrency string
	now            func() time.Time
}

// NewOrchestrator wires the submission collaborators. notifier and indexer
// may be nil when those integrations are disabled.
func NewOrchestrator(
	profiles ProfileStore,
	wallets WalletService,
	media MediaStore,
	notifier Notifier,
	indexer ProfileIndexer,
	ledger Ledger,
	obs *observability.Observability,
	log logger.Logger,
	walletCurrency string,
) *Orchestrator {
	return &Orchestrator{
		profiles:       profiles,
		wallets:        wallets,
		media:          media,
		notifier:       notifier,
		indexer:        indexer,
		ledger:         ledger,
		obs:            obs,
		logger:         log,
		walletCurrency: walletCurrency,
		now:            time.Now,
	}
}

// Submit persists the application. Preconditions are checked before any
// collaborator is touched: a refusal makes zero persistence calls. The
// returned Result always carries the per-resource breakdown, including on
// failure.
func (o *Orchestrator) Submit(ctx context.Context, sess *session.Session) (*Result, error) {
	if strings.TrimSpace(sess.ApplicantID) == "" {
		return nil, errors.NewNotAuthenticatedError("empty applicant id")
	}
	app := sess.Application
	if app.CurrentStep != reviewStep {
		return nil, errors.NewStepNotReadyError(app.CurrentStep)
	}
	if !app.AgreedToTerms {
		return nil, errors.NewTermsNotAcceptedError()
	}

	log := o.logger.WithFields(map[string]interface{}{
		"applicantId": sess.ApplicantID,
		"tier":        string(app.Tier),
	})
	log.Info("Starting submission", nil)

	start := o.now()
	result := &Result{}
	err := o.run(ctx, sess, result, log)

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.SubmissionsTotal.WithLabelValues(status).Inc()
	metrics.SubmissionDuration.WithLabelValues(status).Observe(o.now().Sub(start).Seconds())
	if o.obs != nil {
		o.obs.RecordSubmission(ctx, status)
		o.obs.RecordSubmissionDuration(ctx, o.now().Sub(start), status)
	}

	if err != nil {
		log.WithError(err).Error("Submission failed", map[string]interface{}{
			"outcomes": len(result.Outcomes),
		})
		return result, err
	}

	result.Succeeded = true
	log.Info("Submission complete", map[string]interface{}{
		"resources": len(result.Outcomes),
	})
	return result, nil
}

// run executes the persistence sequence, appending one outcome per resource.
func (o *Orchestrator) run(ctx context.Context, sess *session.Session, result *Result, log logger.Logger) error {
	app := sess.Application
	profile := o.buildProfile(sess)

	if err := o.step(ctx, sess.ApplicantID, "profile", result, func() error {
		if err := o.profiles.UpsertProfile(ctx, profile); err != nil {
			return errors.NewProfileUpsertFailedError(err)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := o.step(ctx, sess.ApplicantID, "wallet", result, func() error {
		if err := o.wallets.InitWallet(ctx, sess.ApplicantID, o.walletCurrency); err != nil {
			return errors.NewWalletInitFailedError(err)
		}
		return nil
	}); err != nil {
		return err
	}

	for _, d := range sortedDocuments(app) {
		d := d
		f := app.Documents[d]
		if err := o.step(ctx, sess.ApplicantID, "document:"+string(d), result, func() error {
			rec, err := o.media.StoreDocument(ctx, sess.ApplicantID, string(d), f)
			if err != nil {
				return errors.NewMediaUploadFailedError(string(d), err)
			}
			metrics.UploadBytes.WithLabelValues("document").Observe(float64(f.Size))
			result.Media = append(result.Media, *rec)
			return nil
		}); err != nil {
			return err
		}
	}

	for _, p := range sortedPhotos(app) {
		p := p
		f := app.Photos[p]
		if err := o.step(ctx, sess.ApplicantID, "photo:"+string(p), result, func() error {
			rec, err := o.media.StorePhoto(ctx, sess.ApplicantID, string(p), f)
			if err != nil {
				return errors.NewMediaUploadFailedError(string(p), err)
			}
			metrics.UploadBytes.WithLabelValues("photo").Observe(float64(f.Size))
			result.Media = append(result.Media, *rec)
			return nil
		}); err != nil {
			return err
		}
	}

	if video := app.Photos[tier.PhotoVideoIntro]; video != nil {
		if err := o.step(ctx, sess.ApplicantID, "video_patch", result, func() error {
			url := o.media.ObjectKey(sess.ApplicantID, string(tier.PhotoVideoIntro), video)
			if err := o.profiles.PatchLiveVideoURL(ctx, sess.ApplicantID, url); err != nil {
				return errors.NewProfilePatchFailedError(err)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	if err := o.ledger.Clear(ctx, sess.ApplicantID); err != nil {
		log.WithError(err).Warn("Failed to clear submission ledger", nil)
	}

	o.afterSuccess(ctx, profile, log)
	return nil
}

// step runs one persistence action behind the idempotency ledger: already
// recorded resources are skipped, successful ones are recorded.
func (o *Orchestrator) step(ctx context.Context, applicantID, resource string, result *Result, fn func() error) error {
	done, err := o.ledger.Done(ctx, applicantID, resource)
	if err != nil {
		o.logger.WithError(err).Warn("Ledger read failed, re-running resource", map[string]interface{}{
			"resource": resource,
		})
	}
	if done {
		result.record(resource, OutcomeSkipped, nil)
		return nil
	}

	if err := fn(); err != nil {
		result.record(resource, OutcomeFailed, err)
		return err
	}

	result.record(resource, OutcomeSucceeded, nil)
	if err := o.ledger.Mark(ctx, applicantID, resource); err != nil {
		o.logger.WithError(err).Warn("Ledger write failed", map[string]interface{}{
			"resource": resource,
		})
	}
	return nil
}

// afterSuccess fires the non-critical integrations. Their failures are
// logged and never surface to the applicant.
func (o *Orchestrator) afterSuccess(ctx context.Context, profile *models.DriverProfile, log logger.Logger) {
	if o.notifier != nil {
		if err := o.notifier.SubmissionReceived(ctx, profile); err != nil {
			log.WithError(err).Warn("Submission notification failed", nil)
		}
	}
	if o.indexer != nil {
		if err := o.indexer.IndexProfile(ctx, profile); err != nil {
			log.WithError(err).Warn("Profile indexing failed", nil)
		}
	}
}

// buildProfile flattens the aggregate into the remote profile schema. New
// profiles start unverified at level 1.
func (o *Orchestrator) buildProfile(sess *session.Session) *models.DriverProfile {
	app := sess.Application
	p := &models.DriverProfile{
		ApplicantID:         sess.ApplicantID,
		Tier:                string(app.Tier),
		FullName:            app.Profile.FullName,
		Email:               app.Profile.Email,
		Phone:               app.Profile.Phone,
		WhatsApp:            app.Profile.WhatsApp,
		Address:             app.Profile.Address,
		City:                app.Profile.City,
		Biography:           app.Profile.Bio,
		Languages:           app.Profile.Languages,
		YearsExperience:     app.Profile.YearsExperience,
		HourlyRate:          app.Profile.HourlyRate,
		DailyRate:           app.Profile.DailyRate,
		LicenseNumber:       app.Profile.LicenseNumber,
		LicenseExpiry:       app.Profile.LicenseExpiry,
		PoliceExpiry:        app.Profile.PoliceExpiry,
		MedicalExpiry:       app.Profile.MedicalExpiry,
		SocialInstagram:     app.Profile.SocialInstagram,
		SocialFacebook:      app.Profile.SocialFacebook,
		VehicleType:         app.Vehicle.Type,
		VehicleRegistration: app.Vehicle.Registration,
		VehicleMakeModel:    app.Vehicle.MakeModelYear,
		VehicleSeats:        app.Vehicle.Seats,
		VehicleColor:        app.Vehicle.Color,
		VehicleAmenities:    app.Vehicle.Amenities,
		Status:              models.StatusPendingVerification,
		VerifiedLevel:       1,
		SubmittedAt:         o.now().UTC().Format(time.RFC3339),
	}
	if app.EmergencyContact != nil {
		p.EmergencyContact = &models.Contact{
			Name:     app.EmergencyContact.Name,
			Phone:    app.EmergencyContact.Phone,
			Relation: app.EmergencyContact.Relation,
		}
	}
	if app.BankDetails != nil {
		p.BankDetails = &models.Bank{
			AccountName:   app.BankDetails.AccountName,
			AccountNumber: app.BankDetails.AccountNumber,
			BankName:      app.BankDetails.BankName,
			BranchCode:    app.BankDetails.BranchCode,
		}
	}
	return p
}

// sortedDocuments returns the filled document slots in a stable order so
// retries replay the sequence deterministically.
func sortedDocuments(app *session.Application) []tier.DocumentType {
	out := make([]tier.DocumentType, 0, len(app.Documents))
	for d, f := range app.Documents {
		if f != nil {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedPhotos(app *session.Application) []tier.PhotoType {
	out := make([]tier.PhotoType, 0, len(app.Photos))
	for p, f := range app.Photos {
		if f != nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
