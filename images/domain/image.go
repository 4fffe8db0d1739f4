package domain

import (
	"context"
	"io"
	"time"
)

// ImageRecord is the metadata entity for a stored image.
// The record is written once at upload time and never mutated; the only
// way to change an image is to delete it and upload again.
type ImageRecord struct {
	ImageID     string   `json:"image_id" dynamodbav:"image_id"`
	UserID      string   `json:"user_id" dynamodbav:"user_id"`
	Description string   `json:"description" dynamodbav:"description"`
	Tags        []string `json:"tags" dynamodbav:"tags"`
	ObjectKey   string   `json:"object_key" dynamodbav:"object_key"`
	ObjectURL   string   `json:"object_url" dynamodbav:"object_url"`
	UploadedAt  string   `json:"uploaded_at" dynamodbav:"uploaded_at"`
}

// ImageFilter narrows a metadata scan. Zero-value fields are ignored;
// set fields combine with logical AND.
type ImageFilter struct {
	// UserID matches records with exactly this user_id.
	UserID string

	// Tag matches records whose tag list contains this value.
	Tag string
}

// ObjectStore stores and serves the binary image payloads.
// Implementations wrap a bucket-addressed blob service (S3 or
// compatible) and must be safe for concurrent use.
type ObjectStore interface {
	// Put streams the payload to the store under key. No internal retries.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// URLFor builds the stable, non-expiring reference URL for key.
	// Pure construction from store configuration; no network call.
	URLFor(key string) string

	// PresignedURL returns a time-limited URL granting unauthenticated
	// access to the object at key for the given TTL.
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete removes the object at key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
}

// MetadataStore persists ImageRecords keyed by image ID.
type MetadataStore interface {
	// PutRecord inserts the record, overwriting any existing record with
	// the same image ID.
	PutRecord(ctx context.Context, rec *ImageRecord) error

	// GetRecord returns the record for imageID, or (nil, nil) when no
	// record exists. Absence is not an error.
	GetRecord(ctx context.Context, imageID string) (*ImageRecord, error)

	// Scan returns every record matching the filter. The store paginates
	// internally; implementations follow continuation tokens until
	// exhausted so callers never see a partial page.
	Scan(ctx context.Context, filter ImageFilter) ([]*ImageRecord, error)

	// DeleteRecord removes the record for imageID. Deleting a missing
	// record succeeds.
	DeleteRecord(ctx context.Context, imageID string) error
}
