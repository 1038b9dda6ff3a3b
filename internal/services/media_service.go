package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"gadgetstore/internal/apperr"

	"github.com/gabriel-vasile/mimetype"
)

// MediaPurpose selects the directory an upload is stored in.
type MediaPurpose string

const (
	MediaProduct MediaPurpose = "products"
	MediaProfile MediaPurpose = "profile"
)

// DefaultMaxImageBytes is the upload limit when none is configured.
const DefaultMaxImageBytes = 2 << 20

// raster formats accepted for upload. SVG is excluded since it can carry script.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// MediaService stores uploaded images below root and returns the public
// path they are served under (/images/<purpose>/<file>).
type MediaService struct {
	root     string
	maxBytes int64
	now      func() time.Time
}

func NewMediaService(root string, maxBytes int64) *MediaService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &MediaService{root: root, maxBytes: maxBytes, now: time.Now}
}

// Upload describes one received file.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// SaveImage validates and stores an image upload. ownerID is embedded in
// profile image names.
func (s *MediaService) SaveImage(_ context.Context, purpose MediaPurpose, ownerID string, up Upload) (string, error) {
	if purpose != MediaProduct && purpose != MediaProfile {
		return "", apperr.Validation("Unknown upload purpose")
	}
	if up.Content == nil {
		return "", apperr.Validation("No image file uploaded")
	}
	if up.Size > s.maxBytes {
		return "", s.tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(up.Content, s.maxBytes+1))
	if err != nil {
		return "", apperr.Internal(err, "read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return "", s.tooLarge()
	}
	if len(data) == 0 {
		return "", apperr.Validation("No image file uploaded")
	}

	// the stored extension decides the served Content-Type, so it comes from
	// the sniffed type and never from the client's filename
	mtype := mimetype.Detect(data)
	if !allowedImageTypes[mtype.String()] {
		return "", apperr.New(http.StatusBadRequest, "INVALID_FILE_TYPE", "Only image files are allowed!")
	}
	name := s.fileName(purpose, ownerID, mtype.Extension())

	dir := filepath.Join(s.root, string(purpose))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Internal(err, "create media directory")
	}
	if err := writeFile(filepath.Join(dir, name), data); err != nil {
		return "", apperr.Internal(err, "store upload")
	}
	return path.Join("/images", string(purpose), name), nil
}

func (s *MediaService) fileName(purpose MediaPurpose, ownerID, ext string) string {
	suffix := fmt.Sprintf("%d-%d", s.now().UnixMilli(), rand.IntN(1e9))
	if purpose == MediaProfile {
		return "profile_" + ownerID + "_" + suffix + ext
	}
	return "product_" + suffix + ext
}

func (s *MediaService) tooLarge() error {
	return apperr.New(http.StatusBadRequest, "FILE_TOO_LARGE", fmt.Sprintf("Image must be less than %dMB", s.maxBytes>>20))
}

func writeFile(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
