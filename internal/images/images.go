package images

import (
	"bytes"
	"context"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/modaworks/curator/internal/classify"
	"github.com/modaworks/curator/internal/providers"
	_ "golang.org/x/image/webp"
)

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// MIMEType determines the upload MIME type from the file extension.
func MIMEType(path string) string {
	if mime, ok := imageMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "image/jpeg"
}

// List returns references to every image in a product directory, in file
// name order.
func List(productDir string) ([]classify.ImageRef, error) {
	entries, err := os.ReadDir(productDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read product directory: %w", err)
	}

	var refs []classify.ImageRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := imageMIMETypes[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		refs = append(refs, classify.ImageRef{
			FileName: entry.Name(),
			FilePath: filepath.Join(productDir, entry.Name()),
		})
	}
	return refs, nil
}

const (
	// DefaultMaxSide is the longest edge, in pixels, images are downscaled
	// to before upload. Zero disables downscaling.
	DefaultMaxSide = 1024

	jpegQuality = 85
)

// Loader reads image files from disk and, when MaxSide is set, re-encodes
// anything larger as a fitted JPEG to cut upload size and model tokens.
type Loader struct {
	MaxSide int
}

// NewLoader creates a loader with the given downscale bound.
func NewLoader(maxSide int) *Loader {
	return &Loader{MaxSide: maxSide}
}

// Load implements classify.Loader. Decode failures fall back to the original
// bytes: an undecodable file may still be a format the model accepts.
func (l *Loader) Load(_ context.Context, ref classify.ImageRef) (providers.Image, error) {
	data, err := os.ReadFile(ref.FilePath)
	if err != nil {
		return providers.Image{}, fmt.Errorf("failed to read image: %w", err)
	}

	original := providers.Image{Data: data, MIMEType: MIMEType(ref.FilePath)}
	if l.MaxSide <= 0 {
		return original, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return original, nil
	}

	bounds := img.Bounds()
	if bounds.Dx() <= l.MaxSide && bounds.Dy() <= l.MaxSide {
		return original, nil
	}

	fitted := imaging.Fit(img, l.MaxSide, l.MaxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return original, nil
	}
	return providers.Image{Data: buf.Bytes(), MIMEType: "image/jpeg"}, nil
}
