package blob

import (
	"bytes"
	"context"
	"sync"

	"github.com/mkrupp/jobboard/internal/domain"
)

// MemoryRepository keeps blobs in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	blobs map[domain.BlobID][]byte
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{blobs: make(map[domain.BlobID][]byte)}
}

// MemoryBlobRepositoryFactory returns a factory handing out one fresh
// MemoryRepository per call.
func MemoryBlobRepositoryFactory() RepositoryFactory {
	return func(context.Context, string, string) (Repository, error) {
		return NewMemoryRepository(), nil
	}
}

func (memRepo *MemoryRepository) Exists(_ context.Context, id domain.BlobID) (bool, error) {
	memRepo.mu.RLock()
	defer memRepo.mu.RUnlock()

	_, ok := memRepo.blobs[id]

	return ok, nil
}

func (memRepo *MemoryRepository) Store(_ context.Context, blob *domain.Blob) error {
	memRepo.mu.Lock()
	defer memRepo.mu.Unlock()

	memRepo.blobs[blob.ID] = bytes.Clone(blob.Body)

	return nil
}

func (memRepo *MemoryRepository) Fetch(_ context.Context, id domain.BlobID) (*domain.Blob, error) {
	memRepo.mu.RLock()
	defer memRepo.mu.RUnlock()

	body, ok := memRepo.blobs[id]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}

	return domain.NewBlob(id, bytes.Clone(body)), nil
}

func (memRepo *MemoryRepository) Delete(_ context.Context, id domain.BlobID) error {
	memRepo.mu.Lock()
	defer memRepo.mu.Unlock()

	if _, ok := memRepo.blobs[id]; !ok {
		return domain.ErrAssetNotFound
	}

	delete(memRepo.blobs, id)

	return nil
}
