// internal/onboarding/submit/result.go
package submit

import "driver-onboarding/internal/models"

// OutcomeStatus labels what happened to one resource during a submission
// attempt.
type OutcomeStatus string

const (
	OutcomeSucceeded    OutcomeStatus = "succeeded"
	OutcomeFailed       OutcomeStatus = "failed"
	OutcomeSkipped      OutcomeStatus = "skipped"       // already persisted by an earlier attempt
	OutcomeNotAttempted OutcomeStatus = "not_attempted" // sequence stopped before this resource
)

// ResourceOutcome is the per-resource entry in a submission result.
type ResourceOutcome struct {
	Resource string        `json:"resource"`
	Status   OutcomeStatus `json:"status"`
	Error    string        `json:"error,omitempty"`
}

// Result reports the full per-resource breakdown of a submission attempt.
// There is no rollback: a failed attempt leaves every succeeded resource in
// place, and the outcomes tell the caller exactly how far the sequence got.
type Result struct {
	Succeeded bool                 `json:"succeeded"`
	Outcomes  []ResourceOutcome    `json:"outcomes"`
	Media     []models.MediaRecord `json:"media,omitempty"`
}

func (r *Result) record(resource string, status OutcomeStatus, err error) {
	o := ResourceOutcome{Resource: resource, Status: status}
	if err != nil {
		o.Error = err.Error()
	}
	r.Outcomes = append(r.Outcomes, o)
}
