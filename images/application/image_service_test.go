package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dfryer1193/cloudgram/images/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectStore is an in-memory domain.ObjectStore with injectable
// failures.
type fakeObjectStore struct {
	objects    map[string][]byte
	putErr     error
	presignErr error
	deleteErr  error
	deleted    []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, body io.Reader, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) URLFor(key string) string {
	return "https://bucket.example.com/" + key
}

func (f *fakeObjectStore) PresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return fmt.Sprintf("https://bucket.example.com/%s?expires=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// fakeMetadataStore is an in-memory domain.MetadataStore with
// injectable failures.
type fakeMetadataStore struct {
	records    map[string]*domain.ImageRecord
	putErr     error
	getErr     error
	scanErr    error
	deleteErr  error
	lastFilter domain.ImageFilter
}

func newFakeMetadataStore() *fakeMetadataStore {
	return &fakeMetadataStore{records: make(map[string]*domain.ImageRecord)}
}

func (f *fakeMetadataStore) PutRecord(_ context.Context, rec *domain.ImageRecord) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.records[rec.ImageID] = rec
	return nil
}

func (f *fakeMetadataStore) GetRecord(_ context.Context, imageID string) (*domain.ImageRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.records[imageID], nil
}

func (f *fakeMetadataStore) Scan(_ context.Context, filter domain.ImageFilter) ([]*domain.ImageRecord, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	f.lastFilter = filter

	recs := []*domain.ImageRecord{}
	for _, rec := range f.records {
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if filter.Tag != "" && !containsTag(rec.Tags, filter.Tag) {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (f *fakeMetadataStore) DeleteRecord(_ context.Context, imageID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.records, imageID)
	return nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func uploadReq() UploadRequest {
	return UploadRequest{
		UserID:      "user_001",
		Filename:    "photo.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("fake image bytes"),
		Description: "Sunset view",
		Tags:        "travel,sunset",
	}
}

func TestImageService_Upload(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	svc := NewImageService(objects, metadata)

	rec, err := svc.Upload(context.Background(), uploadReq())
	require.NoError(t, err)

	assert.Equal(t, "user_001", rec.UserID)
	assert.Equal(t, "Sunset view", rec.Description)
	assert.Equal(t, []string{"travel", "sunset"}, rec.Tags)
	assert.NotEmpty(t, rec.ImageID)
	assert.Equal(t, "https://bucket.example.com/"+rec.ObjectKey, rec.ObjectURL)

	uploadedAt, err := time.Parse(time.RFC3339Nano, rec.UploadedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), uploadedAt, time.Minute)

	// Both stores hold the image under the same key/ID.
	assert.Equal(t, []byte("fake image bytes"), objects.objects[rec.ObjectKey])
	assert.Equal(t, rec, metadata.records[rec.ImageID])
}

func TestImageService_Upload_MissingUserID(t *testing.T) {
	svc := NewImageService(newFakeObjectStore(), newFakeMetadataStore())

	_, err := svc.Upload(context.Background(), UploadRequest{Filename: "a.jpg", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImageService_Upload_ObjectPutFails(t *testing.T) {
	objects := newFakeObjectStore()
	objects.putErr = fmt.Errorf("network unreachable")
	metadata := newFakeMetadataStore()
	svc := NewImageService(objects, metadata)

	_, err := svc.Upload(context.Background(), uploadReq())
	assert.ErrorIs(t, err, domain.ErrUploadFailed)

	// No partial state: the metadata write must never have happened.
	assert.Empty(t, metadata.records)
}

func TestImageService_Upload_MetadataPutFails(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	metadata.putErr = fmt.Errorf("table throttled")
	svc := NewImageService(objects, metadata)

	_, err := svc.Upload(context.Background(), uploadReq())
	assert.ErrorIs(t, err, domain.ErrMetadataPersistFailed)
	assert.NotErrorIs(t, err, domain.ErrUploadFailed, "the two upload failure phases must stay distinguishable")

	// Accepted inconsistency window: the object survives as an orphan.
	assert.Len(t, objects.objects, 1)
}

func TestImageService_Retrieve(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	svc := NewImageService(objects, metadata)

	uploaded, err := svc.Upload(context.Background(), uploadReq())
	require.NoError(t, err)

	rec, url, err := svc.Retrieve(context.Background(), uploaded.ImageID)
	require.NoError(t, err)

	assert.Equal(t, uploaded.UserID, rec.UserID)
	assert.Equal(t, uploaded.Description, rec.Description)
	assert.Equal(t, uploaded.Tags, rec.Tags)
	assert.Contains(t, url, uploaded.ObjectKey)
	assert.Contains(t, url, "expires=3600")
}

func TestImageService_Retrieve_NotFound(t *testing.T) {
	svc := NewImageService(newFakeObjectStore(), newFakeMetadataStore())

	_, _, err := svc.Retrieve(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImageService_Retrieve_PresignFails(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	svc := NewImageService(objects, metadata)

	uploaded, err := svc.Upload(context.Background(), uploadReq())
	require.NoError(t, err)

	objects.presignErr = fmt.Errorf("credentials expired")
	_, _, err = svc.Retrieve(context.Background(), uploaded.ImageID)
	assert.ErrorIs(t, err, domain.ErrAccessURLFailed)
}

func TestImageService_List(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	svc := NewImageService(objects, metadata)

	ctx := context.Background()
	for _, req := range []UploadRequest{
		{UserID: "alice", Filename: "a.jpg", Body: strings.NewReader("a"), Tags: "travel"},
		{UserID: "alice", Filename: "b.jpg", Body: strings.NewReader("b"), Tags: "food"},
		{UserID: "bob", Filename: "c.jpg", Body: strings.NewReader("c"), Tags: "travel,food"},
	} {
		_, err := svc.Upload(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	alice, err := svc.List(ctx, "alice", "")
	require.NoError(t, err)
	assert.Len(t, alice, 2)
	for _, rec := range alice {
		assert.Equal(t, "alice", rec.UserID)
	}

	travel, err := svc.List(ctx, "", "travel")
	require.NoError(t, err)
	assert.Len(t, travel, 2)
	for _, rec := range travel {
		assert.Contains(t, rec.Tags, "travel")
	}

	both, err := svc.List(ctx, "bob", "food")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "bob", both[0].UserID)
}

func TestImageService_List_Failures(t *testing.T) {
	metadata := newFakeMetadataStore()
	svc := NewImageService(newFakeObjectStore(), metadata)

	metadata.scanErr = fmt.Errorf("%w: user_id filter is blank", domain.ErrValidation)
	_, err := svc.List(context.Background(), " ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrQueryFailed)

	metadata.scanErr = fmt.Errorf("connection reset")
	_, err = svc.List(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrQueryFailed)
}

func TestImageService_Delete(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	svc := NewImageService(objects, metadata)

	ctx := context.Background()
	uploaded, err := svc.Upload(ctx, uploadReq())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, uploaded.ImageID))

	assert.Equal(t, []string{uploaded.ObjectKey}, objects.deleted)
	assert.Empty(t, metadata.records)

	// A retrieve after delete reports absence.
	_, _, err = svc.Retrieve(ctx, uploaded.ImageID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again reports absence too, not a store failure.
	err = svc.Delete(ctx, uploaded.ImageID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImageService_Delete_NeverExisted(t *testing.T) {
	svc := NewImageService(newFakeObjectStore(), newFakeMetadataStore())

	err := svc.Delete(context.Background(), "never-existed")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImageService_Delete_MalformedRecord(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	metadata.records["broken"] = &domain.ImageRecord{ImageID: "broken", UserID: "u"}
	svc := NewImageService(objects, metadata)

	err := svc.Delete(context.Background(), "broken")
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)

	// Neither store delete runs against a corrupt record.
	assert.Empty(t, objects.deleted)
	assert.Contains(t, metadata.records, "broken")
}

func TestImageService_Delete_ObjectDeleteFails(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	svc := NewImageService(objects, metadata)

	ctx := context.Background()
	uploaded, err := svc.Upload(ctx, uploadReq())
	require.NoError(t, err)

	objects.deleteErr = fmt.Errorf("access denied")
	err = svc.Delete(ctx, uploaded.ImageID)
	assert.ErrorIs(t, err, domain.ErrDeleteFailed)

	// Metadata stays intact so a retry can find the record again.
	assert.Contains(t, metadata.records, uploaded.ImageID)
}

func TestImageService_Delete_MetadataDeleteFails(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := newFakeMetadataStore()
	svc := NewImageService(objects, metadata)

	ctx := context.Background()
	uploaded, err := svc.Upload(ctx, uploadReq())
	require.NoError(t, err)

	metadata.deleteErr = fmt.Errorf("table unavailable")
	err = svc.Delete(ctx, uploaded.ImageID)
	assert.ErrorIs(t, err, domain.ErrDeleteFailed)

	// Accepted inconsistency window: object gone, record orphaned.
	assert.Empty(t, objects.objects)
	assert.Contains(t, metadata.records, uploaded.ImageID)
}
