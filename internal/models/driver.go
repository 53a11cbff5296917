// internal/models/driver.go
package models

// DriverProfile is the flattened record written to the profile store at
// submission time. Field names follow the remote collection's schema.
type DriverProfile struct {
	ApplicantID         string   `json:"applicantId"`
	Tier                string   `json:"tier"`
	FullName            string   `json:"full_name"`
	Email               string   `json:"email"`
	Phone               string   `json:"phone"`
	WhatsApp            string   `json:"whatsapp_number,omitempty"`
	Address             string   `json:"full_address,omitempty"`
	City                string   `json:"city,omitempty"`
	Biography           string   `json:"biography,omitempty"`
	Languages           []string `json:"specialty_languages,omitempty"`
	YearsExperience     int      `json:"years_experience"`
	HourlyRate          float64  `json:"hourly_rate,omitempty"`
	DailyRate           float64  `json:"daily_rate,omitempty"`
	LicenseNumber       string   `json:"sltda_license_number,omitempty"`
	LicenseExpiry       string   `json:"sltda_license_expiry,omitempty"`
	PoliceExpiry        string   `json:"police_clearance_expiry,omitempty"`
	MedicalExpiry       string   `json:"medical_report_expiry,omitempty"`
	SocialInstagram     string   `json:"social_insta,omitempty"`
	SocialFacebook      string   `json:"social_facebook,omitempty"`
	VehicleType         string   `json:"vehicle_type,omitempty"`
	VehicleRegistration string   `json:"vehicle_registration,omitempty"`
	VehicleMakeModel    string   `json:"vehicle_make_model_year,omitempty"`
	VehicleSeats        int      `json:"vehicle_seats,omitempty"`
	VehicleColor        string   `json:"vehicle_color,omitempty"`
	VehicleAmenities    []string `json:"vehicle_amenities,omitempty"`
	EmergencyContact    *Contact `json:"emergency_contact,omitempty"`
	BankDetails         *Bank    `json:"bank_details,omitempty"`
	LiveVideoURL        string   `json:"live_video_url,omitempty"`
	Status              string   `json:"current_status"`
	VerifiedLevel       int      `json:"verified_level"`
	SubmittedAt         string   `json:"submitted_at"` // ISO 8601
}

// Contact is an optional emergency contact sub-record.
type Contact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation,omitempty"`
}

// Bank is an optional payout details sub-record.
type Bank struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BranchCode    string `json:"branch_code,omitempty"`
}

// Wallet is the payout wallet created alongside the profile.
type Wallet struct {
	ApplicantID string  `json:"applicantId"`
	Currency    string  `json:"currency"`
	Balance     float64 `json:"balance"`
	CreatedAt   string  `json:"createdAt"`
}

// MediaRecord describes a stored document or photo upload.
type MediaRecord struct {
	ReferenceID string `json:"referenceId"`
	ApplicantID string `json:"applicantId"`
	Kind        string `json:"kind"` // document type or photo type
	ObjectKey   string `json:"objectKey"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	UploadedAt  string `json:"uploadedAt"`
}

// Profile statuses
const (
	StatusPendingVerification = "pending_verification"
	StatusVerified            = "verified"
	StatusRejected            = "rejected"
)
