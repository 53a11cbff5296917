// internal/onboarding/tier/tier.go
package tier

// PartnerTier is the closed set of driver/guide partner categories. The
// chosen tier drives the required document set and whether a licensing
// authority number is mandatory.
type PartnerTier string

const (
	ChauffeurGuide  PartnerTier = "chauffeur_guide"
	NationalGuide   PartnerTier = "national_guide"
	TouristDriver   PartnerTier = "tourist_driver"
	FreelanceDriver PartnerTier = "freelance_driver"
)

// DocumentType identifies one verifiable document slot.
type DocumentType string

const (
	DocNationalID          DocumentType = "national_id"
	DocDrivingLicense      DocumentType = "driving_license"
	DocSLTDALicense        DocumentType = "slt_da_license"
	DocPoliceClearance     DocumentType = "police_clearance"
	DocMedicalReport       DocumentType = "medical_report"
	DocGramaNiladari       DocumentType = "grama_niladari_certificate"
	DocVehicleRevenue      DocumentType = "vehicle_revenue_license"
	DocVehicleInsurance    DocumentType = "vehicle_insurance"
	DocVehicleRegistration DocumentType = "vehicle_registration"
	DocVehiclePermit       DocumentType = "vehicle_permit"
)

// PhotoType identifies one live-capture slot. Two of the six are mandatory.
type PhotoType string

const (
	PhotoSelfieWithID    PhotoType = "selfie_with_id"
	PhotoVehicleFront    PhotoType = "vehicle_front"
	PhotoVehicleBack     PhotoType = "vehicle_back"
	PhotoVehicleSide     PhotoType = "vehicle_side"
	PhotoVehicleInterior PhotoType = "vehicle_interior"
	PhotoVideoIntro      PhotoType = "video_intro"
)

// AllTiers lists every partner tier in display order.
func AllTiers() []PartnerTier {
	return []PartnerTier{ChauffeurGuide, NationalGuide, TouristDriver, FreelanceDriver}
}

// AllPhotoTypes lists the fixed universe of live-capture slots.
func AllPhotoTypes() []PhotoType {
	return []PhotoType{
		PhotoSelfieWithID,
		PhotoVehicleFront,
		PhotoVehicleBack,
		PhotoVehicleSide,
		PhotoVehicleInterior,
		PhotoVideoIntro,
	}
}

// MandatoryPhotos lists the photo slots required before step 3 passes.
func MandatoryPhotos() []PhotoType {
	return []PhotoType{PhotoSelfieWithID, PhotoVehicleFront}
}

// RequiredDocuments returns the ordered document set for a tier. Every tier
// maps to a non-empty set; sets overlap across tiers.
func RequiredDocuments(t PartnerTier) []DocumentType {
	switch t {
	case ChauffeurGuide:
		return []DocumentType{
			DocSLTDALicense,
			DocDrivingLicense,
			DocNationalID,
			DocPoliceClearance,
			DocMedicalReport,
			DocVehicleRevenue,
			DocVehicleInsurance,
		}
	case NationalGuide:
		return []DocumentType{
			DocSLTDALicense,
			DocDrivingLicense,
			DocNationalID,
			DocPoliceClearance,
			DocMedicalReport,
		}
	case TouristDriver:
		return []DocumentType{
			DocDrivingLicense,
			DocNationalID,
			DocPoliceClearance,
			DocVehicleRevenue,
			DocVehicleInsurance,
		}
	case FreelanceDriver:
		return []DocumentType{
			DocDrivingLicense,
			DocNationalID,
			DocVehicleRevenue,
			DocVehicleInsurance,
		}
	default:
		// Unknown tiers are treated as the least-privileged tier.
		return RequiredDocuments(FreelanceDriver)
	}
}

// RequiresLicenseNumber reports whether the tier must supply a licensing
// authority number on the profile step.
func RequiresLicenseNumber(t PartnerTier) bool {
	switch t {
	case ChauffeurGuide, NationalGuide:
		return true
	case TouristDriver, FreelanceDriver:
		return false
	default:
		return false
	}
}

// Label returns the display name shown in the tier selector.
func Label(t PartnerTier) string {
	switch t {
	case ChauffeurGuide:
		return "Chauffeur Tourist Guide (SLTDA)"
	case NationalGuide:
		return "National Tourist Guide"
	case TouristDriver:
		return "SLITHM Tourist Driver"
	case FreelanceDriver:
		return "Freelance / Standard Driver"
	default:
		return string(t)
	}
}

// Benefits returns the short benefit blurbs shown next to a tier.
func Benefits(t PartnerTier) []string {
	switch t {
	case ChauffeurGuide:
		return []string{"Premium tour assignments", "Top placement in the directory", "Guide commission tier"}
	case NationalGuide:
		return []string{"Multi-day tour assignments", "Guide commission tier"}
	case TouristDriver:
		return []string{"Airport and day-tour assignments", "Standard commission tier"}
	case FreelanceDriver:
		return []string{"Transfer assignments", "Standard commission tier"}
	default:
		return nil
	}
}

// DocumentLabel returns the human-readable name for a document slot.
func DocumentLabel(d DocumentType) string {
	switch d {
	case DocNationalID:
		return "National ID"
	case DocDrivingLicense:
		return "Driving License"
	case DocSLTDALicense:
		return "SLTDA Guide/Driver License"
	case DocPoliceClearance:
		return "Police Clearance"
	case DocMedicalReport:
		return "Medical Report"
	case DocGramaNiladari:
		return "Grama Niladhari Certificate"
	case DocVehicleRevenue:
		return "Vehicle Revenue License"
	case DocVehicleInsurance:
		return "Vehicle Insurance"
	case DocVehicleRegistration:
		return "Vehicle Registration"
	case DocVehiclePermit:
		return "Vehicle Permit"
	default:
		return string(d)
	}
}

// ValidTier reports whether s names a known partner tier.
func ValidTier(s string) bool {
	switch PartnerTier(s) {
	case ChauffeurGuide, NationalGuide, TouristDriver, FreelanceDriver:
		return true
	default:
		return false
	}
}

// ValidPhotoType reports whether s names a known live-capture slot.
func ValidPhotoType(s string) bool {
	for _, p := range AllPhotoTypes() {
		if PhotoType(s) == p {
			return true
		}
	}
	return false
}
