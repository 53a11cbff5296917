// internal/onboarding/progress/progress.go
package progress

import (
	"math"
	"strings"

	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/tier"
)

// Completion computes the 0-100 progress score for an application. The
// required-item list concatenates five profile fields, the tier's required
// documents and the two mandatory photos, so each domain weighs in
// proportion to its own item count: a tier with seven required documents
// makes the document domain worth more of the total than one with four.
func Completion(app *session.Application) int {
	filled, total := 0, 0

	for _, ok := range profileItems(app) {
		total++
		if ok {
			filled++
		}
	}

	for _, d := range tier.RequiredDocuments(app.Tier) {
		total++
		if app.Documents[d] != nil {
			filled++
		}
	}

	for _, p := range tier.MandatoryPhotos() {
		total++
		if app.Photos[p] != nil {
			filled++
		}
	}

	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(filled) / float64(total)))
}

// Breakdown reports filled/total per domain for the step indicators.
type Breakdown struct {
	ProfileFilled   int `json:"profileFilled"`
	ProfileTotal    int `json:"profileTotal"`
	DocumentsFilled int `json:"documentsFilled"`
	DocumentsTotal  int `json:"documentsTotal"`
	PhotosFilled    int `json:"photosFilled"`
	PhotosTotal     int `json:"photosTotal"`
}

// Domains returns the per-domain breakdown behind Completion.
func Domains(app *session.Application) Breakdown {
	b := Breakdown{}

	for _, ok := range profileItems(app) {
		b.ProfileTotal++
		if ok {
			b.ProfileFilled++
		}
	}

	for _, d := range tier.RequiredDocuments(app.Tier) {
		b.DocumentsTotal++
		if app.Documents[d] != nil {
			b.DocumentsFilled++
		}
	}

	for _, p := range tier.MandatoryPhotos() {
		b.PhotosTotal++
		if app.Photos[p] != nil {
			b.PhotosFilled++
		}
	}

	return b
}

// profileItems lists the five profile fields that count toward completion,
// in a fixed order.
func profileItems(app *session.Application) []bool {
	return []bool{
		strings.TrimSpace(app.Profile.FullName) != "",
		strings.TrimSpace(app.Profile.Email) != "",
		strings.TrimSpace(app.Profile.Phone) != "",
		strings.TrimSpace(app.Vehicle.Registration) != "",
		strings.TrimSpace(app.Vehicle.MakeModelYear) != "",
	}
}
