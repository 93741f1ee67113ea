// Package media stores uploaded post images as content-addressed WebP files.
package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxUploadBytes is the largest accepted upload body.
	MaxUploadBytes = 10 * 1024 * 1024

	// Stored images never exceed this dimension on either axis.
	maxStoredSize = 2048

	webpQuality = 80
)

// Object describes a stored image.
type Object struct {
	Ref    string `json:"ref"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int64  `json:"bytes"`
}

// Store writes normalized images under a single directory, one file per
// content hash. Identical uploads resolve to the same ref.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "/tmp/inkwell/media"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save validates, normalizes, and persists an uploaded image. The returned
// ref is the SHA-256 of the encoded WebP bytes, so re-uploads are idempotent.
func (s *Store) Save(content []byte, declaredType string) (*Object, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if len(content) > MaxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", MaxUploadBytes/(1024*1024)))
	}

	detected := http.DetectContentType(content)
	if !allowedImageMIME(detected) {
		return nil, models.NewValidationError("Invalid image type")
	}
	if provided := normalizeContentType(declaredType); strings.HasPrefix(provided, "image/") && !matchingContentType(provided, detected) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if !supportedFormat(format) {
		return nil, models.NewValidationError("Unsupported image format")
	}

	normalized := resizeToFit(decoded, maxStoredSize, maxStoredSize)
	encoded, err := encodeWebP(normalized, webpQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	sum := sha256.Sum256(encoded)
	ref := hex.EncodeToString(sum[:])

	path := filepath.Join(s.dir, ref+".webp")
	if _, statErr := os.Stat(path); statErr != nil {
		if !os.IsNotExist(statErr) {
			return nil, models.NewInternalError(statErr)
		}
		if writeErr := os.WriteFile(path, encoded, 0o600); writeErr != nil {
			return nil, models.NewInternalError(writeErr)
		}
	}

	b := normalized.Bounds()
	return &Object{
		Ref:    ref,
		URL:    s.URL(ref),
		Width:  b.Dx(),
		Height: b.Dy(),
		Bytes:  int64(len(encoded)),
	}, nil
}

// Resolve maps a ref to the on-disk path of the stored file.
func (s *Store) Resolve(ref string) (string, error) {
	if !validRef(ref) {
		return "", models.NewValidationError("Invalid media ref")
	}
	path := filepath.Join(s.dir, ref+".webp")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Media")
		}
		return "", models.NewInternalError(err)
	}
	return path, nil
}

func (s *Store) URL(ref string) string {
	return "/api/media/" + ref
}

// validRef accepts only lowercase hex, which keeps refs safe to join into
// filesystem paths.
func validRef(ref string) bool {
	if len(ref) == 0 || len(ref) > 128 {
		return false
	}
	for _, c := range ref {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func allowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func matchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func supportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
