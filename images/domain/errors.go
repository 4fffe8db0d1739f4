package domain

import "errors"

// Closed set of failure conditions for the image lifecycle. The service
// layer wraps backing-store errors in exactly one of these so callers
// can tell which phase failed (and therefore which orphan direction a
// partial failure left behind) with errors.Is.
var (
	// ErrValidation indicates bad caller input (maps to 400).
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates no record exists for the image ID (maps to 404).
	ErrNotFound = errors.New("image not found")

	// ErrMalformedRecord indicates a stored record is missing its object
	// key; no store operations are attempted against such a record.
	ErrMalformedRecord = errors.New("image record has no object key")

	// ErrUploadFailed indicates the object write failed; no metadata
	// record was created and the whole upload must be retried.
	ErrUploadFailed = errors.New("object upload failed")

	// ErrMetadataPersistFailed indicates the object was written but the
	// metadata write failed, leaving an orphaned object.
	ErrMetadataPersistFailed = errors.New("metadata persist failed")

	// ErrAccessURLFailed indicates presigned URL generation failed.
	ErrAccessURLFailed = errors.New("access URL generation failed")

	// ErrQueryFailed indicates a metadata scan failed.
	ErrQueryFailed = errors.New("image query failed")

	// ErrDeleteFailed indicates the object or metadata delete failed.
	// Both deletes are idempotent, so retrying is safe.
	ErrDeleteFailed = errors.New("image delete failed")
)
