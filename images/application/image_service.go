package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dfryer1193/cloudgram/images/domain"
	"github.com/dfryer1193/cloudgram/shared/ids"
	"github.com/rs/zerolog/log"
)

// PresignTTL is how long generated access URLs stay valid.
const PresignTTL = 3600 * time.Second

// ImageService coordinates the object store and the metadata store
// across the image lifecycle. It is the sole writer and deleter of both
// stores. The two writes are not transactional: a failure between them
// leaves an orphan on one side, which is surfaced as a distinct error
// (and logged with the failing phase) rather than rolled back.
type ImageService struct {
	objects  domain.ObjectStore
	metadata domain.MetadataStore
}

func NewImageService(objects domain.ObjectStore, metadata domain.MetadataStore) *ImageService {
	return &ImageService{
		objects:  objects,
		metadata: metadata,
	}
}

// UploadRequest carries the caller-supplied fields of an upload.
type UploadRequest struct {
	UserID      string
	Filename    string
	ContentType string
	Body        io.Reader
	Description string
	Tags        string // comma-separated, may be empty
}

// Upload writes the image payload to the object store, then persists
// its metadata record. The object write goes first so a record never
// references a missing object under normal operation.
func (s *ImageService) Upload(ctx context.Context, req UploadRequest) (*domain.ImageRecord, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}

	objectKey, imageID := GenerateImageKey(req.UserID, req.Filename)

	if err := s.objects.Put(ctx, objectKey, req.Body, req.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	rec := &domain.ImageRecord{
		ImageID:     imageID,
		UserID:      req.UserID,
		Description: req.Description,
		Tags:        ParseTags(req.Tags),
		ObjectKey:   objectKey,
		ObjectURL:   s.objects.URLFor(objectKey),
		UploadedAt:  ids.Timestamp(),
	}

	if err := s.metadata.PutRecord(ctx, rec); err != nil {
		// The object is now orphaned; reconciliation happens out of band.
		log.Error().Err(err).
			Str("imageID", imageID).
			Str("objectKey", objectKey).
			Msg("Metadata write failed after object upload; object is orphaned")
		return nil, fmt.Errorf("%w: %v", domain.ErrMetadataPersistFailed, err)
	}

	return rec, nil
}

// Retrieve returns the metadata record for imageID along with a
// presigned access URL valid for PresignTTL.
//
// Object existence is not verified before issuing the URL; a record
// whose object was removed out of band yields a URL that fails on use.
func (s *ImageService) Retrieve(ctx context.Context, imageID string) (*domain.ImageRecord, string, error) {
	rec, err := s.metadata.GetRecord(ctx, imageID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if rec == nil {
		return nil, "", domain.ErrNotFound
	}

	url, err := s.objects.PresignedURL(ctx, rec.ObjectKey, PresignTTL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrAccessURLFailed, err)
	}

	return rec, url, nil
}

// List returns all records matching the optional filters. Both filters
// are independent; neither supplied means every record. Result ordering
// follows store scan order and is not guaranteed.
func (s *ImageService) List(ctx context.Context, userID, tag string) ([]*domain.ImageRecord, error) {
	filter := domain.ImageFilter{
		UserID: userID,
		Tag:    tag,
	}

	recs, err := s.metadata.Scan(ctx, filter)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}

	return recs, nil
}

// Delete removes the object first and the metadata record second, so a
// surviving record always points at a deletable (or already absent)
// object. Both store deletes are idempotent, making retries safe after
// a partial failure.
func (s *ImageService) Delete(ctx context.Context, imageID string) error {
	rec, err := s.metadata.GetRecord(ctx, imageID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if rec == nil {
		return domain.ErrNotFound
	}

	if rec.ObjectKey == "" {
		return fmt.Errorf("%w: image %s", domain.ErrMalformedRecord, imageID)
	}

	if err := s.objects.Delete(ctx, rec.ObjectKey); err != nil {
		return fmt.Errorf("%w: object delete: %v", domain.ErrDeleteFailed, err)
	}

	if err := s.metadata.DeleteRecord(ctx, imageID); err != nil {
		// The object is gone but the record survives; idempotent deletes
		// make a retry of the whole operation safe.
		log.Error().Err(err).
			Str("imageID", imageID).
			Str("objectKey", rec.ObjectKey).
			Msg("Metadata delete failed after object delete; record is orphaned")
		return fmt.Errorf("%w: metadata delete: %v", domain.ErrDeleteFailed, err)
	}

	return nil
}
