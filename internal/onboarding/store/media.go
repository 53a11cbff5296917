// internal/onboarding/store/media.go
package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/models"
	"driver-onboarding/internal/onboarding/session"
)

// S3API is the slice of the S3 client the media store uses.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// uploadMetadataSchema guards the record written alongside each blob.
const uploadMetadataSchema = `{
	"type": "object",
	"required": ["name", "contentType", "sizeBytes"],
	"properties": {
		"name":        {"type": "string", "minLength": 1},
		"contentType": {"type": "string", "pattern": "^[a-z]+/[a-z0-9.+\\-]+$"},
		"sizeBytes":   {"type": "integer", "minimum": 1}
	}
}`

// MediaStore uploads document and photo bytes to S3 and records each upload
// in PostgreSQL. Object keys are deterministic per applicant and slot, so a
// retried upload overwrites the same object and updates the same row.
type MediaStore struct {
	s3             S3API
	db             *sql.DB
	documentBucket string
	photoBucket    string
	logger         logger.Logger
	now            func() time.Time
}

// NewMediaStore creates a media store over an S3 client and a database handle.
func NewMediaStore(s3Client S3API, db *sql.DB, documentBucket, photoBucket string, log logger.Logger) *MediaStore {
	return &MediaStore{
		s3:             s3Client,
		db:             db,
		documentBucket: documentBucket,
		photoBucket:    photoBucket,
		logger:         log,
		now:            time.Now,
	}
}

// StoreDocument uploads a document slot's file and records it.
func (s *MediaStore) StoreDocument(ctx context.Context, applicantID, kind string, f *session.FileHandle) (*models.MediaRecord, error) {
	return s.store(ctx, applicantID, kind, f, s.documentBucket, "driver_documents")
}

// StorePhoto uploads a live-capture slot's file and records it.
func (s *MediaStore) StorePhoto(ctx context.Context, applicantID, kind string, f *session.FileHandle) (*models.MediaRecord, error) {
	return s.store(ctx, applicantID, kind, f, s.photoBucket, "driver_photos")
}

// ObjectKey reports the storage key for a slot's file. The key depends only
// on applicant, slot and file name, never on the attempt.
func (s *MediaStore) ObjectKey(applicantID, kind string, f *session.FileHandle) string {
	return fmt.Sprintf("%s/%s/%s", applicantID, kind, sanitizeFileName(f.Name))
}

func (s *MediaStore) store(ctx context.Context, applicantID, kind string, f *session.FileHandle, bucket, table string) (*models.MediaRecord, error) {
	if err := validateMetadata(f); err != nil {
		return nil, err
	}

	key := s.ObjectKey(applicantID, kind, f)
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(bucket),
		Key:         awssdk.String(key),
		Body:        bytes.NewReader(f.Data),
		ContentType: awssdk.String(f.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	rec := &models.MediaRecord{
		ReferenceID: uuid.New().String(),
		ApplicantID: applicantID,
		Kind:        kind,
		ObjectKey:   key,
		ContentType: f.ContentType,
		SizeBytes:   f.Size,
		UploadedAt:  s.now().UTC().Format(time.RFC3339),
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (reference_id, applicant_id, kind, object_key, content_type, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (applicant_id, kind) DO UPDATE SET
			object_key = EXCLUDED.object_key,
			content_type = EXCLUDED.content_type,
			size_bytes = EXCLUDED.size_bytes,
			uploaded_at = EXCLUDED.uploaded_at
		RETURNING reference_id`, table)

	if err := s.db.QueryRowContext(ctx, query,
		rec.ReferenceID, rec.ApplicantID, rec.Kind, rec.ObjectKey,
		rec.ContentType, rec.SizeBytes, rec.UploadedAt,
	).Scan(&rec.ReferenceID); err != nil {
		return nil, fmt.Errorf("record upload in %s: %w", table, err)
	}

	s.logger.Debug("Media stored", map[string]interface{}{
		"applicantId": applicantID,
		"kind":        kind,
		"objectKey":   key,
		"sizeBytes":   f.Size,
	})
	return rec, nil
}

// validateMetadata checks the upload record against the metadata schema
// before any bytes leave the process.
func validateMetadata(f *session.FileHandle) error {
	doc := map[string]interface{}{
		"name":        f.Name,
		"contentType": f.ContentType,
		"sizeBytes":   f.Size,
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(uploadMetadataSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return errors.NewMetadataInvalidError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return errors.NewMetadataInvalidError(strings.Join(details, "; "))
	}
	return nil
}

// sanitizeFileName normalizes a user-supplied file name into a safe key
// segment.
func sanitizeFileName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "upload"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
