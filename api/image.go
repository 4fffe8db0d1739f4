package api

// ImageMetadata is the wire representation of a stored image's record.
type ImageMetadata struct {
	ImageID     string   `json:"image_id"`
	UserID      string   `json:"user_id"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	ObjectKey   string   `json:"object_key"`
	ObjectURL   string   `json:"object_url"`
	UploadedAt  string   `json:"uploaded_at"`
}

// UploadResponse is returned from a successful upload.
type UploadResponse struct {
	Message  string        `json:"message"`
	ImageID  string        `json:"image_id"`
	ImageURL string        `json:"image_url"`
	Metadata ImageMetadata `json:"metadata"`
}

// ListResponse wraps the results of an image listing.
type ListResponse struct {
	Images []ImageMetadata `json:"images"`
}

// DownloadResponse carries a time-limited access URL for one image.
type DownloadResponse struct {
	ImageID     string `json:"image_id"`
	UserID      string `json:"user_id"`
	DownloadURL string `json:"download_url"`
	ExpiresIn   int    `json:"expires_in"`
}

// DeleteResponse confirms removal of an image and its metadata.
type DeleteResponse struct {
	Message string `json:"message"`
	ImageID string `json:"image_id"`
}
