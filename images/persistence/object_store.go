package persistence

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dfryer1193/cloudgram/images/domain"
)

var _ domain.ObjectStore = (*S3ObjectStore)(nil)

// S3API is the slice of the S3 client this adapter uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Presigner generates presigned requests for S3 objects.
type S3Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3ObjectStore implements domain.ObjectStore against an S3 bucket.
type S3ObjectStore struct {
	client   S3API
	presign  S3Presigner
	bucket   string
	region   string
	endpoint string // non-empty when targeting a local/alternate endpoint
}

// NewS3ObjectStore creates an object store for the given bucket.
// endpoint may be empty; when set it is used for stable URL construction
// in place of the regional AWS hostname.
func NewS3ObjectStore(client S3API, presign S3Presigner, bucket, region, endpoint string) *S3ObjectStore {
	return &S3ObjectStore{
		client:   client,
		presign:  presign,
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
	}
}

// Put streams the payload to the bucket under key.
func (s *S3ObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return nil
}

// URLFor builds the stable reference URL for key. No network call.
func (s *S3ObjectStore) URLFor(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// PresignedURL returns a time-limited GET URL for the object at key.
func (s *S3ObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}

	return req.URL, nil
}

// Delete removes the object at key. S3 reports success for missing
// keys, so the operation is naturally idempotent.
func (s *S3ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}
