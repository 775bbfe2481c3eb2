package channel

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/user"
)

// Profile is a channel page: the owner's public profile plus subscription
// aggregates relative to the viewer.
type Profile struct {
	user.Profile
	Stats
	IsSubscribed bool `json:"isSubscribed"`
}

// Service answers channel profile queries and records subscriptions.
type Service struct {
	repo  Repository
	users user.Repository
	cache *StatsCache
}

// NewService creates a channel service. cache may be nil.
func NewService(repo Repository, users user.Repository, cache *StatsCache) *Service {
	return &Service{repo: repo, users: users, cache: cache}
}

// Profile loads the channel page for username as seen by viewerID.
func (s *Service) Profile(ctx context.Context, username string, viewerID uuid.UUID) (Profile, error) {
	owner, err := s.lookup(ctx, username)
	if err != nil {
		return Profile{}, err
	}

	stats, ok := s.cache.Get(ctx, owner.ID)
	if !ok {
		stats, err = s.repo.Counts(ctx, owner.ID)
		if err != nil {
			return Profile{}, apperr.Wrap(apperr.Internal, "could not load channel stats", err)
		}
		s.cache.Set(ctx, owner.ID, stats)
	}

	subscribed, err := s.repo.IsSubscribed(ctx, viewerID, owner.ID)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "could not load subscription state", err)
	}

	return Profile{Profile: owner.Profile(), Stats: stats, IsSubscribed: subscribed}, nil
}

// Subscribe records viewerID subscribing to the named channel.
func (s *Service) Subscribe(ctx context.Context, viewerID uuid.UUID, username string) error {
	return s.setSubscription(ctx, viewerID, username, s.repo.Subscribe)
}

// Unsubscribe removes viewerID's subscription to the named channel.
func (s *Service) Unsubscribe(ctx context.Context, viewerID uuid.UUID, username string) error {
	return s.setSubscription(ctx, viewerID, username, s.repo.Unsubscribe)
}

func (s *Service) setSubscription(ctx context.Context, viewerID uuid.UUID, username string, apply func(context.Context, uuid.UUID, uuid.UUID) error) error {
	owner, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}
	if owner.ID == viewerID {
		return apperr.New(apperr.Validation, "cannot subscribe to your own channel")
	}
	if err := apply(ctx, viewerID, owner.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "could not update subscription", err)
	}
	s.cache.Invalidate(ctx, owner.ID, viewerID)
	return nil
}

func (s *Service) lookup(ctx context.Context, username string) (user.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return user.User{}, apperr.New(apperr.Validation, "channel username is required")
	}
	owner, err := s.users.FindByIdentifier(ctx, username, "")
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, apperr.New(apperr.NotFound, "channel not found")
	}
	if err != nil {
		return user.User{}, apperr.Wrap(apperr.Internal, "could not look up channel", err)
	}
	return owner, nil
}
