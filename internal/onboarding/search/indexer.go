// internal/onboarding/search/indexer.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/models"
)

// Indexer writes submitted profiles into the driver directory index so
// operations staff can search pending applications. Indexing is best-effort;
// a failed write never fails the submission.
type Indexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewIndexer creates an indexer targeting the given index.
func NewIndexer(es *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{es: es, index: index, logger: log}
}

// indexedProfile is the subset of the profile exposed to directory search.
// Bank details and emergency contacts never reach the index.
type indexedProfile struct {
	ApplicantID     string   `json:"applicant_id"`
	Tier            string   `json:"tier"`
	FullName        string   `json:"full_name"`
	City            string   `json:"city,omitempty"`
	Languages       []string `json:"specialty_languages,omitempty"`
	YearsExperience int      `json:"years_experience"`
	VehicleType     string   `json:"vehicle_type,omitempty"`
	Status          string   `json:"current_status"`
	SubmittedAt     string   `json:"submitted_at"`
}

// IndexProfile writes one profile document, keyed by applicant id so
// re-submission replaces the previous entry.
func (i *Indexer) IndexProfile(ctx context.Context, p *models.DriverProfile) error {
	doc := indexedProfile{
		ApplicantID:     p.ApplicantID,
		Tier:            p.Tier,
		FullName:        p.FullName,
		City:            p.City,
		Languages:       p.Languages,
		YearsExperience: p.YearsExperience,
		VehicleType:     p.VehicleType,
		Status:          p.Status,
		SubmittedAt:     p.SubmittedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: p.ApplicantID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchIndexFailedError(fmt.Errorf("index %s: %s", i.index, res.Status()))
	}

	i.logger.Debug("Profile indexed", map[string]interface{}{
		"applicantId": p.ApplicantID,
		"index":       i.index,
	})
	return nil
}
