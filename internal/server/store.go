package server

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/CK6170/densevec-go/matrix"
)

// VectorRecord is one vector in the workspace. A vector has a single owner,
// so every access goes through the record's lock.
type VectorRecord struct {
	ID   string
	Name string

	mu sync.Mutex
	v  *matrix.Vector
}

// With runs fn with exclusive access to the record's vector.
func (r *VectorRecord) With(fn func(v *matrix.Vector)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.v)
}

// Snapshot returns the record's current state.
func (r *VectorRecord) Snapshot() VectorResponse {
	var out VectorResponse
	r.With(func(v *matrix.Vector) { out = snapshot(r, v) })
	return out
}

// snapshot must be called with r locked.
func snapshot(r *VectorRecord, v *matrix.Vector) VectorResponse {
	return VectorResponse{
		ID:            r.ID,
		Name:          r.Name,
		Dim:           v.Dim(),
		AllocatedSize: v.AllocatedSize(),
		Values:        v.Data(),
	}
}

// withPair locks a and b in id order and runs fn with both vectors. When a and
// b are the same record it is locked once and fn sees the same vector twice.
func withPair(a, b *VectorRecord, fn func(x, y *matrix.Vector)) {
	if a == b {
		a.With(func(v *matrix.Vector) { fn(v, v) })
		return
	}
	first, second := a, b
	if second.ID < first.ID {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()
	fn(a.v, b.v)
}

// VectorStore holds the workspace vectors by id.
type VectorStore struct {
	mu sync.RWMutex
	m  map[string]*VectorRecord
}

func NewVectorStore() *VectorStore {
	return &VectorStore{m: make(map[string]*VectorRecord)}
}

// Put takes ownership of v under a fresh id.
func (s *VectorStore) Put(name string, v *matrix.Vector) *VectorRecord {
	rec := &VectorRecord{ID: uuid.NewString(), Name: name, v: v}
	s.mu.Lock()
	s.m[rec.ID] = rec
	s.mu.Unlock()
	return rec
}

func (s *VectorStore) Get(id string) (*VectorRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.m[id]
	return r, ok
}

// Remove unregisters id and releases its vector.
func (s *VectorStore) Remove(id string) bool {
	s.mu.Lock()
	r, ok := s.m[id]
	delete(s.m, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	r.With(func(v *matrix.Vector) { v.Release() })
	return true
}

// forget unregisters id without touching its vector.
func (s *VectorStore) forget(id string) {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
}

func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// List returns the records ordered by name, then id.
func (s *VectorStore) List() []*VectorRecord {
	s.mu.RLock()
	out := make([]*VectorRecord, 0, len(s.m))
	for _, r := range s.m {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
