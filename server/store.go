package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/livepulse/engine"
	"github.com/spektr-org/livepulse/ingest"
)

// Sentinel errors.
var (
	ErrBatchNotFound = errors.New("batch not found")
	ErrFileNotFound  = errors.New("file not found")
)

// Batch is one upload: its retained file results and the dataset built
// from them. A Batch handed out by the Store is a snapshot; the dataset is
// rebuilt on every change and never mutated in place.
type Batch struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Files     []ingest.FileResult `json:"files"`
	Dataset   engine.Dataset      `json:"-"`
}

func (b *Batch) snapshot() Batch {
	out := *b
	out.Files = append([]ingest.FileResult(nil), b.Files...)
	return out
}

// Store keeps batches in memory, keyed by id.
type Store struct {
	mu      sync.RWMutex
	batches map[string]*Batch
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{batches: make(map[string]*Batch), now: time.Now}
}

// Create stores a new batch built from the given results.
func (s *Store) Create(files []ingest.FileResult) Batch {
	now := s.now()
	b := &Batch{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Files:     append([]ingest.FileResult(nil), files...),
	}
	b.Dataset = ingest.BuildDataset(b.Files)

	s.mu.Lock()
	s.batches[b.ID] = b
	s.mu.Unlock()
	return b.snapshot()
}

// Get returns a snapshot of the batch.
func (s *Store) Get(id string) (Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return Batch{}, ErrBatchNotFound
	}
	return b.snapshot(), nil
}

// List returns snapshots of every batch, newest first.
func (s *Store) List() []Batch {
	s.mu.RLock()
	out := make([]Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b.snapshot())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// RemoveFile drops one file from a batch and rebuilds its dataset.
func (s *Store) RemoveFile(batchID, fileID string) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[batchID]
	if !ok {
		return Batch{}, ErrBatchNotFound
	}

	kept := make([]ingest.FileResult, 0, len(b.Files))
	for _, f := range b.Files {
		if f.ID != fileID {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(b.Files) {
		return Batch{}, ErrFileNotFound
	}

	next := &Batch{
		ID:        b.ID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: s.now(),
		Files:     kept,
		Dataset:   ingest.BuildDataset(kept),
	}
	s.batches[batchID] = next
	return next.snapshot(), nil
}

// Delete removes a batch.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[id]; !ok {
		return ErrBatchNotFound
	}
	delete(s.batches, id)
	return nil
}
