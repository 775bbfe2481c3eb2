package channel

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type pair struct {
	subscriber uuid.UUID
	channel    uuid.UUID
}

type memoryRepository struct {
	mu   sync.RWMutex
	subs map[pair]struct{}
}

// NewMemoryRepository builds an in-memory subscription store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{subs: make(map[pair]struct{})}
}

func (r *memoryRepository) Subscribe(_ context.Context, subscriberID, channelID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[pair{subscriberID, channelID}] = struct{}{}
	return nil
}

func (r *memoryRepository) Unsubscribe(_ context.Context, subscriberID, channelID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, pair{subscriberID, channelID})
	return nil
}

func (r *memoryRepository) Counts(_ context.Context, channelID uuid.UUID) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats Stats
	for p := range r.subs {
		if p.channel == channelID {
			stats.Subscribers++
		}
		if p.subscriber == channelID {
			stats.SubscribedTo++
		}
	}
	return stats, nil
}

func (r *memoryRepository) IsSubscribed(_ context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subs[pair{subscriberID, channelID}]
	return ok, nil
}
