package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"petrecord/internal/domain/sharing"
)

// SharingRepo implementa sharing.Repository y el cascade de pets.
type SharingRepo struct {
	mu      sync.RWMutex
	byID    map[string]sharing.AccessToken
	byToken map[string]string // secreto -> id
}

func NewSharingRepo() *SharingRepo {
	return &SharingRepo{
		byID:    make(map[string]sharing.AccessToken),
		byToken: make(map[string]string),
	}
}

var _ sharing.Repository = (*SharingRepo)(nil)
var _ PetCascade = (*SharingRepo)(nil)

func (r *SharingRepo) Create(ctx context.Context, t sharing.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" || t.Token == "" {
		return errors.New("share id and token required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return errors.New("share already exists")
	}
	if _, exists := r.byToken[t.Token]; exists {
		return errors.New("token collision")
	}
	r.byID[t.ID] = t
	r.byToken[t.Token] = t.ID
	return nil
}

func (r *SharingRepo) Update(ctx context.Context, t sharing.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; !exists {
		return ErrNotFound
	}
	r.byID[t.ID] = t
	return nil
}

func (r *SharingRepo) GetByID(ctx context.Context, id string) (sharing.AccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return sharing.AccessToken{}, ErrNotFound
	}
	return t, nil
}

func (r *SharingRepo) GetByToken(ctx context.Context, token string) (sharing.AccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return sharing.AccessToken{}, ErrNotFound
	}
	t, ok := r.byID[id]
	if !ok {
		return sharing.AccessToken{}, ErrNotFound
	}
	return t, nil
}

func (r *SharingRepo) ListByUser(ctx context.Context, userID string) ([]sharing.AccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sharing.AccessToken, 0)
	for _, t := range r.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SharingRepo) DeleteByPet(ctx context.Context, petID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.byID {
		if t.PetID == petID {
			delete(r.byToken, t.Token)
			delete(r.byID, id)
		}
	}
	return nil
}
