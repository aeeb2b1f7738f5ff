package media

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/arvue/arvue/pkg/utils"
)

// MemStore keeps uploaded assets in memory. Used in tests and local
// development without a hosted media account.
type MemStore struct {
	mu     sync.Mutex
	assets map[string][]byte

	// FailUploads and FailDeletes force dependency errors.
	FailUploads bool
	FailDeletes bool
}

func NewMemStore() *MemStore {
	return &MemStore{assets: make(map[string][]byte)}
}

func (s *MemStore) Upload(ctx context.Context, r io.Reader, kind Kind, originalName string) (Asset, error) {
	if s.FailUploads {
		return Asset{}, utils.NewError(utils.ErrDependency.Code, "Media upload failed")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Asset{}, utils.WrapError(err, utils.ErrDependency.Code, "Failed to read upload payload")
	}

	id := RemoteName(originalName)
	s.mu.Lock()
	s.assets[id] = data
	s.mu.Unlock()

	return Asset{
		ID:     id,
		URL:    fmt.Sprintf("mem://%s/%s", kind.Folder(), id),
		Format: Format(originalName),
		Bytes:  int64(len(data)),
	}, nil
}

func (s *MemStore) Delete(ctx context.Context, id string, kind Kind) error {
	if s.FailDeletes {
		return utils.NewError(utils.ErrDependency.Code, "Media deletion failed")
	}
	s.mu.Lock()
	delete(s.assets, id)
	s.mu.Unlock()
	return nil
}

// Len reports how many assets are currently stored.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

// Has reports whether an asset with the given remote ID is stored.
func (s *MemStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.assets[id]
	return ok
}
