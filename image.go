package aware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

const maxUploadBytes = 10 * 1024 * 1024

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// UploadFile is one local image held in memory, ready to be pushed to
// storage. Holding the bytes (rather than a reader) lets the upload path
// retry without re-reading the source.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Validate checks the file against the accepted image types and the size cap
// before any network traffic is spent on it.
func (f UploadFile) Validate() error {
	if !acceptedImageTypes[f.ContentType] {
		return errors.Errorf(
			"unsupported image type %q-- please use JPEG, PNG, WebP, or GIF",
			f.ContentType,
		)
	}
	if len(f.Data) > maxUploadBytes {
		return errors.Errorf(
			"image is %.2fMB-- images must be less than 10MB",
			float64(len(f.Data))/1024/1024,
		)
	}
	if len(f.Data) == 0 {
		return errors.New("image file is empty")
	}
	return nil
}

// Hash returns the hex-encoded SHA-256 digest of the file content, usable as
// a cache identity for repeated scans of the same image.
func (f UploadFile) Hash() string {
	sum := sha256.Sum256(f.Data)
	return hex.EncodeToString(sum[:])
}

// SizeMB renders the file size for log and display purposes.
func (f UploadFile) SizeMB() string {
	return fmt.Sprintf("%.2fMB", float64(len(f.Data))/1024/1024)
}
