package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/storage"
)

// Service manages account lifecycle: registration, lookups and profile
// media updates. Session and token concerns live in the session package.
type Service struct {
	repo    Repository
	uploads storage.Uploader
}

// NewService creates a user service.
func NewService(repo Repository, uploads storage.Uploader) *Service {
	return &Service{repo: repo, uploads: uploads}
}

// Upload is a binary attachment supplied with a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// RegisterInput carries the registration form fields and files.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

// Register validates the input, stores the avatar (required) and cover
// image (optional), and creates the account with a bcrypt password hash.
// Usernames are lowercased so uniqueness is case-insensitive.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Profile, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if in.Username == "" || in.Email == "" || in.FullName == "" || strings.TrimSpace(in.Password) == "" {
		return Profile{}, apperr.New(apperr.Validation, "username, email, fullName and password are required")
	}
	if in.Avatar == nil {
		return Profile{}, apperr.New(apperr.Validation, "avatar file is required")
	}

	id := uuid.New()

	avatarURL, err := s.upload(ctx, id, "avatar", in.Avatar)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "could not store avatar", err)
	}

	var coverURL string
	if in.CoverImage != nil {
		coverURL, err = s.upload(ctx, id, "cover", in.CoverImage)
		if err != nil {
			return Profile{}, apperr.Wrap(apperr.Internal, "could not store cover image", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "could not hash password", err)
	}

	now := time.Now().UTC()
	u := User{
		ID:            id,
		Username:      in.Username,
		Email:         in.Email,
		FullName:      in.FullName,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Profile{}, apperr.New(apperr.Conflict, "user with this username or email already exists")
		}
		return Profile{}, apperr.Wrap(apperr.Internal, "could not create user", err)
	}

	return u.Profile(), nil
}

// Get returns the redacted profile for id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Profile, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "could not load user", err)
	}
	return u.Profile(), nil
}

// UpdateAvatar uploads a replacement avatar and persists its URL.
func (s *Service) UpdateAvatar(ctx context.Context, id uuid.UUID, file *Upload) (Profile, error) {
	return s.updateImage(ctx, id, "avatar", file, s.repo.UpdateAvatar)
}

// UpdateCoverImage uploads a replacement cover image and persists its URL.
func (s *Service) UpdateCoverImage(ctx context.Context, id uuid.UUID, file *Upload) (Profile, error) {
	return s.updateImage(ctx, id, "cover", file, s.repo.UpdateCoverImage)
}

func (s *Service) updateImage(ctx context.Context, id uuid.UUID, kind string, file *Upload, persist func(context.Context, uuid.UUID, string) error) (Profile, error) {
	if file == nil {
		return Profile{}, apperr.New(apperr.Validation, kind+" file is required")
	}
	url, err := s.upload(ctx, id, kind, file)
	if err != nil {
		return Profile{}, apperr.Wrap(apperr.Internal, "could not store "+kind, err)
	}
	if err := persist(ctx, id, url); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, apperr.New(apperr.NotFound, "user not found")
		}
		return Profile{}, apperr.Wrap(apperr.Internal, "could not update "+kind, err)
	}
	return s.Get(ctx, id)
}

func (s *Service) upload(ctx context.Context, id uuid.UUID, kind string, file *Upload) (string, error) {
	key := fmt.Sprintf("users/%s/%s-%s%s", id, kind, uuid.NewString(), path.Ext(file.Filename))
	return s.uploads.Upload(ctx, key, file.Reader, file.Size, file.ContentType)
}

// VerifyPassword reports whether plaintext matches the stored hash. The
// bcrypt comparison is constant-time; a mismatch is a false return, never
// an error.
func VerifyPassword(u User, plaintext string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(plaintext)) == nil
}

// HashPassword derives a one-way salted hash for storage.
func HashPassword(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
}
