// internal/onboarding/store/profile.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/models"
)

// ProfileStore persists driver profiles in PostgreSQL. Writes are keyed on
// applicant_id and upsert, so re-running a submission never duplicates a
// profile row.
type ProfileStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewProfileStore creates a profile store on an open database handle.
func NewProfileStore(db *sql.DB, log logger.Logger) *ProfileStore {
	return &ProfileStore{db: db, logger: log}
}

const upsertProfileQuery = `
	INSERT INTO drivers (
		applicant_id, tier, full_name, email, phone, whatsapp_number,
		full_address, city, biography, specialty_languages, years_experience,
		hourly_rate, daily_rate, sltda_license_number, sltda_license_expiry,
		police_clearance_expiry, medical_report_expiry, social_insta,
		social_facebook, vehicle_type, vehicle_registration,
		vehicle_make_model_year, vehicle_seats, vehicle_color,
		vehicle_amenities, emergency_contact, bank_details, current_status,
		verified_level, submitted_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
		$29, $30
	)
	ON CONFLICT (applicant_id) DO UPDATE SET
		tier = EXCLUDED.tier,
		full_name = EXCLUDED.full_name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		whatsapp_number = EXCLUDED.whatsapp_number,
		full_address = EXCLUDED.full_address,
		city = EXCLUDED.city,
		biography = EXCLUDED.biography,
		specialty_languages = EXCLUDED.specialty_languages,
		years_experience = EXCLUDED.years_experience,
		hourly_rate = EXCLUDED.hourly_rate,
		daily_rate = EXCLUDED.daily_rate,
		sltda_license_number = EXCLUDED.sltda_license_number,
		sltda_license_expiry = EXCLUDED.sltda_license_expiry,
		police_clearance_expiry = EXCLUDED.police_clearance_expiry,
		medical_report_expiry = EXCLUDED.medical_report_expiry,
		social_insta = EXCLUDED.social_insta,
		social_facebook = EXCLUDED.social_facebook,
		vehicle_type = EXCLUDED.vehicle_type,
		vehicle_registration = EXCLUDED.vehicle_registration,
		vehicle_make_model_year = EXCLUDED.vehicle_make_model_year,
		vehicle_seats = EXCLUDED.vehicle_seats,
		vehicle_color = EXCLUDED.vehicle_color,
		vehicle_amenities = EXCLUDED.vehicle_amenities,
		emergency_contact = EXCLUDED.emergency_contact,
		bank_details = EXCLUDED.bank_details,
		current_status = EXCLUDED.current_status,
		verified_level = EXCLUDED.verified_level,
		submitted_at = EXCLUDED.submitted_at`

// UpsertProfile inserts or replaces the applicant's profile row.
func (s *ProfileStore) UpsertProfile(ctx context.Context, p *models.DriverProfile) error {
	contact, err := nullableJSON(p.EmergencyContact)
	if err != nil {
		return fmt.Errorf("marshal emergency contact: %w", err)
	}
	bank, err := nullableJSON(p.BankDetails)
	if err != nil {
		return fmt.Errorf("marshal bank details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, upsertProfileQuery,
		p.ApplicantID, p.Tier, p.FullName, p.Email, p.Phone, p.WhatsApp,
		p.Address, p.City, p.Biography, pq.Array(p.Languages),
		p.YearsExperience, p.HourlyRate, p.DailyRate, p.LicenseNumber,
		p.LicenseExpiry, p.PoliceExpiry, p.MedicalExpiry, p.SocialInstagram,
		p.SocialFacebook, p.VehicleType, p.VehicleRegistration,
		p.VehicleMakeModel, p.VehicleSeats, p.VehicleColor,
		pq.Array(p.VehicleAmenities), contact, bank, p.Status,
		p.VerifiedLevel, p.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert driver profile: %w", err)
	}

	s.logger.Info("Driver profile upserted", map[string]interface{}{
		"applicantId": p.ApplicantID,
		"tier":        p.Tier,
	})
	return nil
}

// PatchLiveVideoURL sets the intro video URL on an existing profile row.
func (s *ProfileStore) PatchLiveVideoURL(ctx context.Context, applicantID, url string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE drivers SET live_video_url = $2 WHERE applicant_id = $1`,
		applicantID, url,
	)
	if err != nil {
		return fmt.Errorf("patch live video url: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no profile row for applicant %s", applicantID)
	}
	return nil
}

// nullableJSON marshals v, mapping a nil pointer to SQL NULL.
func nullableJSON(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case *models.Contact:
		if t == nil {
			return nil, nil
		}
	case *models.Bank:
		if t == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
