package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]User
}

// NewMemoryRepository builds an in-memory user store for testing and for
// running without a database.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[uuid.UUID]User)}
}

func (r *memoryRepository) Create(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, u.Username) || existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) FindByIdentifier(_ context.Context, username, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (username != "" && strings.EqualFold(u.Username, username)) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) SetRefreshToken(_ context.Context, id uuid.UUID, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

// RotateRefreshToken compares and swaps under the store lock, mirroring the
// single-UPDATE guarantee of the Postgres implementation.
func (r *memoryRepository) RotateRefreshToken(_ context.Context, id uuid.UUID, presented, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.RefreshToken == nil || *u.RefreshToken != presented {
		return ErrRefreshMismatch
	}
	u.RefreshToken = &next
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id uuid.UUID, hash []byte) error {
	return r.update(id, func(u *User) { u.PasswordHash = hash })
}

func (r *memoryRepository) UpdateAvatar(_ context.Context, id uuid.UUID, url string) error {
	return r.update(id, func(u *User) { u.AvatarURL = url })
}

func (r *memoryRepository) UpdateCoverImage(_ context.Context, id uuid.UUID, url string) error {
	return r.update(id, func(u *User) { u.CoverImageURL = url })
}

func (r *memoryRepository) update(id uuid.UUID, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}
