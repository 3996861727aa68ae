package muralform

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrRevoked = errors.New("preview handle revoked")

const previewScheme = "preview://"

// PreviewRegistry hands out opaque handles for attachment previews.
// A revoked handle never resolves again.
type PreviewRegistry struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{entries: map[string][]byte{}}
}

func (r *PreviewRegistry) Create(data []byte) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle := previewScheme + uuid.NewString()
	r.entries[handle] = data
	return handle
}

func (r *PreviewRegistry) Resolve(handle string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.entries[handle]
	if !ok {
		return nil, ErrRevoked
	}
	return data, nil
}

func (r *PreviewRegistry) Revoke(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, handle)
}

// Len is the number of live handles.
func (r *PreviewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
