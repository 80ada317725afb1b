package domain

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrAssetNotFound is returned when an asset id does not resolve to stored content.
	ErrAssetNotFound = fmt.Errorf("%w: asset not found", ErrNotFound)
	// ErrAssetTooLarge is returned when an upload exceeds the configured size limit.
	ErrAssetTooLarge = errors.New("asset too large")
	// ErrUnsupportedMediaType is returned when an upload is not a supported image format.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// BlobID identifies stored content. It is the Crockford Base32 encoded
// SHA-256 of the content.
type BlobID string

// String returns the string representation of the BlobID.
func (id BlobID) String() string {
	return string(id)
}

// Blob represents a binary large object with an identifier and content.
type Blob struct {
	ID   BlobID
	Body []byte
}

// NewBlob creates a new Blob with the given ID and content.
func NewBlob(id BlobID, body []byte) *Blob {
	return &Blob{
		ID:   id,
		Body: body,
	}
}

// Size returns the size of the blob's content in bytes.
func (blob *Blob) Size() int64 {
	return int64(len(blob.Body))
}

// Bytes returns the blob's content as a byte slice.
func (blob *Blob) Bytes() []byte {
	return blob.Body
}

// WriteTo writes the blob's content to the given writer.
func (blob *Blob) WriteTo(writer io.Writer) (int64, error) {
	n, err := io.Copy(writer, bytes.NewReader(blob.Body))
	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}

	return n, nil
}

// Asset is an uploaded image, normalized and stored as a blob.
type Asset struct {
	ID       BlobID
	MIMEType string
	Data     []byte
}

// AssetResponse is returned after an upload. URL can be stored as an avatar,
// logo or resume URL on a profile.
type AssetResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
