package user

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/storage"
)

func newTestService(t *testing.T) (*Service, Repository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewService(repo, storage.NewMemoryUploader()), repo
}

func registerInput(username, email string) RegisterInput {
	return RegisterInput{
		Username: username,
		Email:    email,
		FullName: "Alice A",
		Password: "p@ss1",
		Avatar:   &Upload{Filename: "avatar.png", ContentType: "image/png", Size: 4, Reader: strings.NewReader("data")},
	}
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, registerInput("Alice", "a@x.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if profile.Username != "alice" {
		t.Fatalf("expected lowercased username, got %q", profile.Username)
	}
	if profile.AvatarURL == "" {
		t.Fatalf("expected avatar URL to be set")
	}

	stored, err := repo.FindByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("p@ss1")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterRejectsBlankFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"username": {Email: "a@x.com", FullName: "Alice A", Password: "p@ss1"},
		"email":    {Username: "alice", FullName: "Alice A", Password: "p@ss1"},
		"fullName": {Username: "alice", Email: "a@x.com", Password: "p@ss1"},
		"password": {Username: "alice", Email: "a@x.com", FullName: "Alice A"},
		"spaces":   {Username: "  ", Email: "a@x.com", FullName: "Alice A", Password: "p@ss1"},
	}
	for name, in := range cases {
		if _, err := svc.Register(ctx, in); apperr.KindOf(err) != apperr.Validation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestRegisterRequiresAvatar(t *testing.T) {
	svc, _ := newTestService(t)

	in := registerInput("alice", "a@x.com")
	in.Avatar = nil
	if _, err := svc.Register(context.Background(), in); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error without avatar, got %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("alice", "a@x.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	// Same email, different username.
	if _, err := svc.Register(ctx, registerInput("bob", "a@x.com")); apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	// Same username with different casing.
	if _, err := svc.Register(ctx, registerInput("ALICE", "b@x.com")); apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected conflict on duplicate username, got %v", err)
	}
}

func TestProfileNeverCarriesSecrets(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, registerInput("alice", "a@x.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token := "some-refresh-token"
	if err := repo.SetRefreshToken(ctx, profile.ID, &token); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}
	reloaded, err := svc.Get(ctx, profile.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}

	payload, err := json.Marshal(reloaded)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	for _, secret := range []string{"passwordHash", "password_hash", "refreshToken", "refresh_token", token} {
		if strings.Contains(string(payload), secret) {
			t.Fatalf("serialized profile leaks %q: %s", secret, payload)
		}
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("p@ss1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := User{PasswordHash: hash}

	if !VerifyPassword(u, "p@ss1") {
		t.Fatalf("expected correct password to verify")
	}
	if VerifyPassword(u, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestUpdateAvatar(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, registerInput("alice", "a@x.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateAvatar(ctx, profile.ID, &Upload{
		Filename: "new.png", ContentType: "image/png", Size: 3, Reader: strings.NewReader("new"),
	})
	if err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	if updated.AvatarURL == profile.AvatarURL {
		t.Fatalf("expected avatar URL to change")
	}

	if _, err := svc.UpdateAvatar(ctx, profile.ID, nil); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error without file, got %v", err)
	}
}
