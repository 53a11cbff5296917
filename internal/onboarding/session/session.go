// internal/onboarding/session/session.go
package session

import (
	"time"

	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/onboarding/tier"
)

// DefaultMaxFileBytes is the upload size ceiling applied when no
// configuration override is present.
const DefaultMaxFileBytes int64 = 10 << 20 // 10 MB

// FileHandle is an in-memory reference to a user-selected file that has not
// yet been uploaded to the remote store. Bytes live only in this process
// until submission; abandoning the session discards them.
type FileHandle struct {
	Name         string
	ContentType  string
	Size         int64
	Data         []byte
	CapturedLive bool
}

// Profile holds every personal field entered on step 1.
type Profile struct {
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	WhatsApp        string   `json:"whatsapp,omitempty"`
	Address         string   `json:"address,omitempty"`
	City            string   `json:"city,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	YearsExperience int      `json:"yearsExperience"`
	HourlyRate      float64  `json:"hourlyRate,omitempty"`
	DailyRate       float64  `json:"dailyRate,omitempty"`
	LicenseNumber   string   `json:"licenseNumber,omitempty"`
	LicenseExpiry   string   `json:"licenseExpiry,omitempty"`
	PoliceExpiry    string   `json:"policeExpiry,omitempty"`
	MedicalExpiry   string   `json:"medicalExpiry,omitempty"`
	SocialInstagram string   `json:"socialInstagram,omitempty"`
	SocialFacebook  string   `json:"socialFacebook,omitempty"`
}

// Vehicle holds the vehicle fields entered on step 1.
type Vehicle struct {
	Type          string   `json:"type"`
	Registration  string   `json:"registration"`
	MakeModelYear string   `json:"makeModelYear"`
	Seats         int      `json:"seats"`
	Color         string   `json:"color,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
}

// EmergencyContact is an optional step 1 sub-record.
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation,omitempty"`
}

// BankDetails is an optional step 1 sub-record.
type BankDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	BranchCode    string `json:"branchCode,omitempty"`
}

// Application is the single mutable aggregate for one in-flight onboarding
// attempt. It is owned by exactly one session; handlers receive it
// explicitly rather than through shared globals.
type Application struct {
	Tier             tier.PartnerTier
	Profile          Profile
	Vehicle          Vehicle
	EmergencyContact *EmergencyContact
	BankDetails      *BankDetails

	// Documents is keyed by the current tier's requirement set; nil values
	// mean the slot is empty.
	Documents map[tier.DocumentType]*FileHandle
	// Photos covers the fixed universe of six live-capture slots.
	Photos map[tier.PhotoType]*FileHandle

	CurrentStep    int
	MaxVisitedStep int
	// Errors is cleared and recomputed on every validation pass. Never
	// persisted.
	Errors        map[string]string
	AgreedToTerms bool

	maxFileBytes int64
}

// New creates an empty application at step 1 with the least-privileged tier.
func New() *Application {
	return NewWithLimit(DefaultMaxFileBytes)
}

// NewWithLimit creates an empty application with a custom upload ceiling.
func NewWithLimit(maxFileBytes int64) *Application {
	a := &Application{
		Tier:           tier.FreelanceDriver,
		CurrentStep:    1,
		MaxVisitedStep: 1,
		Documents:      make(map[tier.DocumentType]*FileHandle),
		Photos:         make(map[tier.PhotoType]*FileHandle),
		Errors:         make(map[string]string),
		maxFileBytes:   maxFileBytes,
	}
	return a
}

// SetTier switches the partner tier and drops document slots that the new
// tier does not require. Photos are tier-independent and survive the switch.
func (a *Application) SetTier(t tier.PartnerTier) {
	a.Tier = t
	required := make(map[tier.DocumentType]bool, len(tier.RequiredDocuments(t)))
	for _, d := range tier.RequiredDocuments(t) {
		required[d] = true
	}
	for d := range a.Documents {
		if !required[d] {
			delete(a.Documents, d)
		}
	}
}

// AttachDocument validates and stores a selected file against a document
// slot. Rejected files leave the slot untouched.
func (a *Application) AttachDocument(d tier.DocumentType, f *FileHandle) error {
	if !a.isRequiredDocument(d) {
		return errors.NewUnknownSlotError(string(d))
	}
	if err := a.checkFile(string(d), f, documentContentTypes); err != nil {
		return err
	}
	a.Documents[d] = f
	return nil
}

// AttachPhoto validates and stores a selected file against a photo slot.
func (a *Application) AttachPhoto(p tier.PhotoType, f *FileHandle) error {
	if !tier.ValidPhotoType(string(p)) {
		return errors.NewUnknownSlotError(string(p))
	}
	allowed := photoContentTypes
	if p == tier.PhotoVideoIntro {
		allowed = videoContentTypes
	}
	if err := a.checkFile(string(p), f, allowed); err != nil {
		return err
	}
	a.Photos[p] = f
	return nil
}

// FilledDocuments counts non-empty document slots.
func (a *Application) FilledDocuments() int {
	n := 0
	for _, f := range a.Documents {
		if f != nil {
			n++
		}
	}
	return n
}

// FilledPhotos counts non-empty photo slots.
func (a *Application) FilledPhotos() int {
	n := 0
	for _, f := range a.Photos {
		if f != nil {
			n++
		}
	}
	return n
}

func (a *Application) isRequiredDocument(d tier.DocumentType) bool {
	for _, r := range tier.RequiredDocuments(a.Tier) {
		if r == d {
			return true
		}
	}
	return false
}

func (a *Application) checkFile(slot string, f *FileHandle, allowed map[string]bool) error {
	limit := a.maxFileBytes
	if limit == 0 {
		limit = DefaultMaxFileBytes
	}
	if f.Size > limit {
		return errors.NewFileTooLargeError(slot, f.Size, limit)
	}
	if !allowed[f.ContentType] {
		return errors.NewFileTypeNotAllowedError(slot, f.ContentType)
	}
	return nil
}

var documentContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

var photoContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var videoContentTypes = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
}

// Session binds an application aggregate to an authenticated applicant.
type Session struct {
	ApplicantID string
	Application *Application
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
