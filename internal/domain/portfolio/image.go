package portfolio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes caps embedded images at 5MB of decoded data.
const MaxImageBytes = 5 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var (
	ErrNotDataURI    = errors.New("image is not a data URI")
	ErrImageTooLarge = fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	ErrImageType     = errors.New("image type must be jpeg, png, gif or webp")
)

// IsDataURI reports whether the value looks like an embedded image rather
// than a plain URL or asset path.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ValidateImageDataURI checks an embedded image before it is allowed into
// the document: it must be a base64 data URI, decode to at most
// MaxImageBytes, and sniff as one of the allowed image types. The size and
// type checks run before anything is stored, matching the upload rules.
func ValidateImageDataURI(s string) error {
	if !IsDataURI(s) {
		return ErrNotDataURI
	}
	_, payload, found := strings.Cut(s, ";base64,")
	if !found {
		return ErrNotDataURI
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("image data is not valid base64: %w", err)
	}
	if len(decoded) > MaxImageBytes {
		return ErrImageTooLarge
	}

	detected := mimetype.Detect(decoded)
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return nil
		}
	}
	return ErrImageType
}
