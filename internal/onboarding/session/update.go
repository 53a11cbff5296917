// internal/onboarding/session/update.go
package session

import "driver-onboarding/internal/onboarding/tier"

// Update carries a partial field update from the UI layer. Nil pointers mean
// "leave unchanged", so a single PATCH can touch any subset of fields.
type Update struct {
	Tier *string `json:"tier,omitempty"`

	FullName        *string   `json:"fullName,omitempty"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	WhatsApp        *string   `json:"whatsapp,omitempty"`
	Address         *string   `json:"address,omitempty"`
	City            *string   `json:"city,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	Languages       *[]string `json:"languages,omitempty"`
	YearsExperience *int      `json:"yearsExperience,omitempty"`
	HourlyRate      *float64  `json:"hourlyRate,omitempty"`
	DailyRate       *float64  `json:"dailyRate,omitempty"`
	LicenseNumber   *string   `json:"licenseNumber,omitempty"`
	LicenseExpiry   *string   `json:"licenseExpiry,omitempty"`
	PoliceExpiry    *string   `json:"policeExpiry,omitempty"`
	MedicalExpiry   *string   `json:"medicalExpiry,omitempty"`
	SocialInstagram *string   `json:"socialInstagram,omitempty"`
	SocialFacebook  *string   `json:"socialFacebook,omitempty"`

	VehicleType          *string   `json:"vehicleType,omitempty"`
	VehicleRegistration  *string   `json:"vehicleRegistration,omitempty"`
	VehicleMakeModelYear *string   `json:"vehicleMakeModelYear,omitempty"`
	VehicleSeats         *int      `json:"vehicleSeats,omitempty"`
	VehicleColor         *string   `json:"vehicleColor,omitempty"`
	VehicleAmenities     *[]string `json:"vehicleAmenities,omitempty"`

	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	BankDetails      *BankDetails      `json:"bankDetails,omitempty"`

	AgreedToTerms *bool `json:"agreedToTerms,omitempty"`
}

// Apply copies the update's set fields onto the aggregate. Tier changes go
// through SetTier so stale document slots are dropped.
func (a *Application) Apply(u *Update) {
	if u.Tier != nil && tier.ValidTier(*u.Tier) {
		a.SetTier(tier.PartnerTier(*u.Tier))
	}

	if u.FullName != nil {
		a.Profile.FullName = *u.FullName
	}
	if u.Email != nil {
		a.Profile.Email = *u.Email
	}
	if u.Phone != nil {
		a.Profile.Phone = *u.Phone
	}
	if u.WhatsApp != nil {
		a.Profile.WhatsApp = *u.WhatsApp
	}
	if u.Address != nil {
		a.Profile.Address = *u.Address
	}
	if u.City != nil {
		a.Profile.City = *u.City
	}
	if u.Bio != nil {
		a.Profile.Bio = *u.Bio
	}
	if u.Languages != nil {
		a.Profile.Languages = *u.Languages
	}
	if u.YearsExperience != nil {
		a.Profile.YearsExperience = *u.YearsExperience
	}
	if u.HourlyRate != nil {
		a.Profile.HourlyRate = *u.HourlyRate
	}
	if u.DailyRate != nil {
		a.Profile.DailyRate = *u.DailyRate
	}
	if u.LicenseNumber != nil {
		a.Profile.LicenseNumber = *u.LicenseNumber
	}
	if u.LicenseExpiry != nil {
		a.Profile.LicenseExpiry = *u.LicenseExpiry
	}
	if u.PoliceExpiry != nil {
		a.Profile.PoliceExpiry = *u.PoliceExpiry
	}
	if u.MedicalExpiry != nil {
		a.Profile.MedicalExpiry = *u.MedicalExpiry
	}
	if u.SocialInstagram != nil {
		a.Profile.SocialInstagram = *u.SocialInstagram
	}
	if u.SocialFacebook != nil {
		a.Profile.SocialFacebook = *u.SocialFacebook
	}

	if u.VehicleType != nil {
		a.Vehicle.Type = *u.VehicleType
	}
	if u.VehicleRegistration != nil {
		a.Vehicle.Registration = *u.VehicleRegistration
	}
	if u.VehicleMakeModelYear != nil {
		a.Vehicle.MakeModelYear = *u.VehicleMakeModelYear
	}
	if u.VehicleSeats != nil {
		a.Vehicle.Seats = *u.VehicleSeats
	}
	if u.VehicleColor != nil {
		a.Vehicle.Color = *u.VehicleColor
	}
	if u.VehicleAmenities != nil {
		a.Vehicle.Amenities = *u.VehicleAmenities
	}

	if u.EmergencyContact != nil {
		c := *u.EmergencyContact
		a.EmergencyContact = &c
	}
	if u.BankDetails != nil {
		b := *u.BankDetails
		a.BankDetails = &b
	}

	if u.AgreedToTerms != nil {
		a.AgreedToTerms = *u.AgreedToTerms
	}
}
