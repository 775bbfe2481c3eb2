package channel

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/user"
)

func setupChannelService(t *testing.T) (*Service, user.Repository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	users := user.NewMemoryRepository()
	svc := NewService(NewMemoryRepository(), users, NewStatsCache(client, time.Minute))
	return svc, users, mr
}

func seedChannelUser(t *testing.T, repo user.Repository, username string) user.User {
	t.Helper()
	u := user.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@x.com",
		FullName:  "User " + username,
		AvatarURL: "memory://avatar",
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func TestChannelProfileCounts(t *testing.T) {
	svc, users, _ := setupChannelService(t)
	ctx := context.Background()

	alice := seedChannelUser(t, users, "alice")
	bob := seedChannelUser(t, users, "bob")

	if err := svc.Subscribe(ctx, bob.ID, "alice"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	profile, err := svc.Profile(ctx, "alice", bob.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Subscribers != 1 {
		t.Fatalf("expected 1 subscriber, got %d", profile.Subscribers)
	}
	if !profile.IsSubscribed {
		t.Fatalf("expected viewer to be marked subscribed")
	}

	// Counts are viewer-independent; subscription state is not.
	fromAlice, err := svc.Profile(ctx, "alice", alice.ID)
	if err != nil {
		t.Fatalf("profile as owner: %v", err)
	}
	if fromAlice.IsSubscribed {
		t.Fatalf("owner should not appear subscribed to own channel")
	}
}

func TestChannelProfileUsesCache(t *testing.T) {
	svc, users, mr := setupChannelService(t)
	ctx := context.Background()

	alice := seedChannelUser(t, users, "alice")
	bob := seedChannelUser(t, users, "bob")

	if _, err := svc.Profile(ctx, "alice", bob.ID); err != nil {
		t.Fatalf("first profile: %v", err)
	}
	if !mr.Exists(statsKeyPrefix + alice.ID.String()) {
		t.Fatalf("expected stats cached after first read")
	}

	// Subscribing invalidates the cached aggregate.
	if err := svc.Subscribe(ctx, bob.ID, "alice"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if mr.Exists(statsKeyPrefix + alice.ID.String()) {
		t.Fatalf("expected cache invalidated after subscribe")
	}

	profile, err := svc.Profile(ctx, "alice", bob.ID)
	if err != nil {
		t.Fatalf("second profile: %v", err)
	}
	if profile.Subscribers != 1 {
		t.Fatalf("expected fresh count after invalidation, got %d", profile.Subscribers)
	}
}

func TestSubscribeValidation(t *testing.T) {
	svc, users, _ := setupChannelService(t)
	ctx := context.Background()

	alice := seedChannelUser(t, users, "alice")

	if err := svc.Subscribe(ctx, alice.ID, "alice"); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error on self-subscribe, got %v", err)
	}
	if err := svc.Subscribe(ctx, alice.ID, "ghost"); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found for unknown channel, got %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	svc, users, _ := setupChannelService(t)
	ctx := context.Background()

	seedChannelUser(t, users, "alice")
	bob := seedChannelUser(t, users, "bob")

	if err := svc.Subscribe(ctx, bob.ID, "alice"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := svc.Unsubscribe(ctx, bob.ID, "alice"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}

	profile, err := svc.Profile(ctx, "alice", bob.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Subscribers != 0 || profile.IsSubscribed {
		t.Fatalf("expected no subscription after unsubscribe, got %+v", profile)
	}

	// Unsubscribing twice is a no-op.
	if err := svc.Unsubscribe(ctx, bob.ID, "alice"); err != nil {
		t.Fatalf("second unsubscribe: %v", err)
	}
}

func TestChannelServiceWithoutCache(t *testing.T) {
	users := user.NewMemoryRepository()
	svc := NewService(NewMemoryRepository(), users, nil)
	ctx := context.Background()

	seedChannelUser(t, users, "alice")
	bob := seedChannelUser(t, users, "bob")

	if err := svc.Subscribe(ctx, bob.ID, "alice"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	profile, err := svc.Profile(ctx, "alice", bob.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Subscribers != 1 {
		t.Fatalf("expected 1 subscriber, got %d", profile.Subscribers)
	}
}
