package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/cloudgram/api"
	"github.com/dfryer1193/cloudgram/images/application"
	"github.com/dfryer1193/cloudgram/images/domain"
	"github.com/gin-gonic/gin"
)

// ImagesHandler exposes the image lifecycle over HTTP.
type ImagesHandler struct {
	service *application.ImageService
}

func NewImagesHandler(service *application.ImageService) *ImagesHandler {
	return &ImagesHandler{
		service: service,
	}
}

// UploadImage handles POST /upload: multipart form with user_id, an
// image file, and optional description and comma-separated tags.
func (h *ImagesHandler) UploadImage(c *gin.Context) {
	userID := c.PostForm("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image file"})
		return
	}
	defer file.Close()

	rec, err := h.service.Upload(c.Request.Context(), application.UploadRequest{
		UserID:      userID,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.UploadResponse{
		Message:  "Image uploaded successfully",
		ImageID:  rec.ImageID,
		ImageURL: rec.ObjectURL,
		Metadata: toMetadata(rec),
	})
}

// GetImages handles GET /images with optional user_id and tag filters.
func (h *ImagesHandler) GetImages(c *gin.Context) {
	recs, err := h.service.List(c.Request.Context(), c.Query("user_id"), c.Query("tag"))
	if err != nil {
		writeError(c, err)
		return
	}

	images := make([]api.ImageMetadata, 0, len(recs))
	for _, rec := range recs {
		images = append(images, toMetadata(rec))
	}

	c.JSON(http.StatusOK, api.ListResponse{Images: images})
}

// GetImage handles GET /images/:imageId, returning a presigned
// download URL for the image.
func (h *ImagesHandler) GetImage(c *gin.Context) {
	imageID := c.Param("imageId")

	rec, url, err := h.service.Retrieve(c.Request.Context(), imageID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.DownloadResponse{
		ImageID:     rec.ImageID,
		UserID:      rec.UserID,
		DownloadURL: url,
		ExpiresIn:   int(application.PresignTTL.Seconds()),
	})
}

// DeleteImage handles DELETE /images/:imageId, removing the object and
// its metadata record.
func (h *ImagesHandler) DeleteImage(c *gin.Context) {
	imageID := c.Param("imageId")

	if err := h.service.Delete(c.Request.Context(), imageID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.DeleteResponse{
		Message: "Image deleted successfully",
		ImageID: imageID,
	})
}

// writeError maps the closed error taxonomy to HTTP statuses. Only the
// error description crosses the wire; wrapped store causes stay in logs.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMalformedRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toMetadata(rec *domain.ImageRecord) api.ImageMetadata {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	return api.ImageMetadata{
		ImageID:     rec.ImageID,
		UserID:      rec.UserID,
		Description: rec.Description,
		Tags:        tags,
		ObjectKey:   rec.ObjectKey,
		ObjectURL:   rec.ObjectURL,
		UploadedAt:  rec.UploadedAt,
	}
}
