package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"petrecord/internal/domain/documents"
)

// DocumentsRepo implementa documents.Repository y el cascade de pets.
type DocumentsRepo struct {
	mu         sync.RWMutex
	docs       map[string]documents.Document
	recordings map[string]documents.Recording
}

func NewDocumentsRepo() *DocumentsRepo {
	return &DocumentsRepo{
		docs:       make(map[string]documents.Document),
		recordings: make(map[string]documents.Recording),
	}
}

var _ documents.Repository = (*DocumentsRepo)(nil)
var _ PetCascade = (*DocumentsRepo)(nil)

func (r *DocumentsRepo) CreateDocument(ctx context.Context, d documents.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		return errors.New("document id required")
	}
	if _, exists := r.docs[d.ID]; exists {
		return errors.New("document already exists")
	}
	r.docs[d.ID] = d
	return nil
}

func (r *DocumentsRepo) UpdateDocument(ctx context.Context, d documents.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[d.ID]; !exists {
		return ErrNotFound
	}
	r.docs[d.ID] = d
	return nil
}

func (r *DocumentsRepo) GetDocument(ctx context.Context, id string) (documents.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[id]
	if !ok {
		return documents.Document{}, ErrNotFound
	}
	return d, nil
}

func (r *DocumentsRepo) ListDocumentsByPet(ctx context.Context, petID string) ([]documents.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]documents.Document, 0)
	for _, d := range r.docs {
		if d.PetID == petID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadDate.Before(out[j].UploadDate)
	})
	return out, nil
}

func (r *DocumentsRepo) CreateRecording(ctx context.Context, rec documents.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return errors.New("recording id required")
	}
	if _, exists := r.recordings[rec.ID]; exists {
		return errors.New("recording already exists")
	}
	r.recordings[rec.ID] = rec
	return nil
}

func (r *DocumentsRepo) UpdateRecording(ctx context.Context, rec documents.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recordings[rec.ID]; !exists {
		return ErrNotFound
	}
	r.recordings[rec.ID] = rec
	return nil
}

func (r *DocumentsRepo) ListRecordingsByPet(ctx context.Context, petID string) ([]documents.Recording, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]documents.Recording, 0)
	for _, rec := range r.recordings {
		if rec.PetID == petID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *DocumentsRepo) DeleteByPet(ctx context.Context, petID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.docs {
		if d.PetID == petID {
			delete(r.docs, id)
		}
	}
	for id, rec := range r.recordings {
		if rec.PetID == petID {
			delete(r.recordings, id)
		}
	}
	return nil
}
