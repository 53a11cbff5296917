// internal/onboarding/validate/validate.go
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/tier"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Step runs the validator for one step and returns field-level errors. An
// empty map means the step passes. Validators never mutate the aggregate;
// the navigator owns error storage.
func Step(step int, app *session.Application) map[string]string {
	switch step {
	case 1:
		return Profile(app)
	case 2:
		return Documents(app)
	case 3:
		return Photos(app)
	default:
		// Step 4 has no field validator; terms are checked at submit time.
		return map[string]string{}
	}
}

// Profile validates the step 1 fields.
func Profile(app *session.Application) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(app.Profile.FullName) == "" {
		errs["fullName"] = "Full name is required"
	}

	email := strings.TrimSpace(app.Profile.Email)
	if !emailRegex.MatchString(email) {
		errs["email"] = "Valid email address is required"
	}

	phone := stripWhitespace(app.Profile.Phone)
	if !phoneRegex.MatchString(phone) {
		errs["phone"] = "Phone must be 10-15 digits, optional leading +"
	}

	if strings.TrimSpace(app.Vehicle.Registration) == "" {
		errs["vehicle.registration"] = "Vehicle registration number is required"
	}
	if strings.TrimSpace(app.Vehicle.MakeModelYear) == "" {
		errs["vehicle.makeModelYear"] = "Vehicle make, model and year are required"
	}

	if app.Profile.YearsExperience < 0 {
		errs["yearsExperience"] = "Years of experience cannot be negative"
	}

	if tier.RequiresLicenseNumber(app.Tier) && strings.TrimSpace(app.Profile.LicenseNumber) == "" {
		errs["licenseNumber"] = "SLTDA license number is required for this tier"
	}

	return errs
}

// Documents validates step 2. The check is count-only: it passes when the
// number of filled slots reaches the tier's required-document count, no
// matter which slots they are. Tightening this to per-type checks would be
// a behavior change, not a fix.
func Documents(app *session.Application) map[string]string {
	errs := map[string]string{}

	required := len(tier.RequiredDocuments(app.Tier))
	if app.FilledDocuments() < required {
		errs["documents"] = fmt.Sprintf("All %d required documents must be attached", required)
	}

	return errs
}

// Photos validates step 3: both mandatory live captures must be present.
// The other four slots are never required.
func Photos(app *session.Application) map[string]string {
	errs := map[string]string{}

	for _, p := range tier.MandatoryPhotos() {
		if app.Photos[p] == nil {
			errs["photos."+string(p)] = "This live capture is required"
		}
	}

	return errs
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}
