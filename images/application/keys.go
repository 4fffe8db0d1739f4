package application

import (
	"fmt"
	"strings"

	"github.com/dfryer1193/cloudgram/shared/ids"
)

// GenerateImageKey derives the object storage key and a fresh image ID
// for an upload. Keys have the form uploads/{userID}/{imageID}.{ext},
// where ext is the substring after the last dot in the filename.
//
// A filename without a dot uses the whole filename as the extension
// ("noext" -> uploads/u/{id}.noext). This matches the original service
// behavior and is preserved deliberately; clients exist that depend on
// the resulting key shape.
func GenerateImageKey(userID, filename string) (objectKey, imageID string) {
	ext := filename
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = filename[idx+1:]
	}

	imageID = ids.NewImageID()
	objectKey = fmt.Sprintf("uploads/%s/%s.%s", userID, imageID, ext)
	return objectKey, imageID
}

// ParseTags splits a comma-separated tag string into trimmed, non-empty
// tokens. Empty or absent input yields an empty slice.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
