package blob

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/util/encoding"
)

var ErrUnknownDriver = errors.New("unknown blob driver")

// Repository defines the interface for content-addressed blob storage.
// Storing the same content twice is a no-op.
type Repository interface {
	// Exists checks if a blob with the given ID exists.
	Exists(ctx context.Context, id domain.BlobID) (bool, error)

	// Store persists a blob in the repository.
	Store(ctx context.Context, blob *domain.Blob) error

	// Fetch retrieves a blob by its ID.
	// Returns domain.ErrAssetNotFound if no blob has that ID.
	Fetch(ctx context.Context, id domain.BlobID) (*domain.Blob, error)

	// Delete removes a blob with the given ID.
	// Returns domain.ErrAssetNotFound if no blob has that ID.
	Delete(ctx context.Context, id domain.BlobID) error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Parameters:
// - name: subdirectory name for the repository
// - ext: file extension for stored blobs
type RepositoryFactory func(
	ctx context.Context,
	name string,
	ext string,
) (Repository, error)

// ContentID derives the blob id of body: the lowercase Crockford Base32
// encoding of its SHA-256 digest.
func ContentID(body []byte) domain.BlobID {
	sum := sha256.Sum256(body)

	return domain.BlobID(encoding.EncodeCrockfordB32LC(sum[:]))
}

// ParseID normalizes a user supplied blob id and checks that it has the
// shape of a ContentID.
func ParseID(s string) (domain.BlobID, bool) {
	normalized := encoding.NormalizeCrockfordB32LC(s)
	if len(normalized) != idLength || !encoding.IsCrockfordB32LC(normalized) {
		return "", false
	}

	return domain.BlobID(normalized), true
}

// idLength is the length of an encoded SHA-256 digest: ceil(256/5).
const idLength = 52

const (
	DriverFileSystem = "filesystem"
	DriverMemory     = "memory"
)

// Config selects and configures the blob backend.
type Config struct {
	Driver     string                         `env:"DRIVER" default:"filesystem"`
	FileSystem FileSystemBlobRepositoryConfig `envPrefix:"FS_"`
}

// NewRepositoryFactory returns the factory for the configured driver.
func NewRepositoryFactory(cfg Config) (RepositoryFactory, error) {
	switch cfg.Driver {
	case DriverFileSystem:
		return FileSystemBlobRepositoryFactory(cfg.FileSystem), nil
	case DriverMemory:
		return MemoryBlobRepositoryFactory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
