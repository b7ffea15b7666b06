// Package pictures converts image files into embeddable item attachments.
package pictures

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/threadline-app/threadline/internal/domain/entities"
)

// mediaTypes maps file extensions to media types. Unknown extensions fall
// back to application/octet-stream.
var mediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
}

// Load reads a file and converts it into an embeddable picture attachment
// with base64-encoded contents.
func Load(path string) (entities.Picture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Picture{}, fmt.Errorf("reading picture file: %w", err)
	}

	mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mediaType = "application/octet-stream"
	}

	return entities.Picture{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(data),
		Size:      len(data),
	}, nil
}

// Decode returns the raw file contents of a picture attachment.
func Decode(pic entities.Picture) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(pic.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding picture data: %w", err)
	}
	return data, nil
}
