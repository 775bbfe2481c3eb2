package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vidstream/vidstream/internal/apperr"
	"github.com/vidstream/vidstream/internal/user"
)

// Messages intentionally shared across failure causes so callers cannot
// probe which check failed.
const (
	msgInvalidCredentials = "invalid user credentials"
	msgInvalidRefresh     = "invalid or expired refresh token"
)

// TokenPair is the access/refresh credential pair handed to a client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service coordinates login, logout, refresh rotation and password change.
// It is the only component touching the credential store and the token
// issuer together.
type Service struct {
	repo   user.Repository
	issuer *Issuer
	logger *slog.Logger
}

// NewService creates a session service.
func NewService(repo user.Repository, issuer *Issuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, logger: logger}
}

// LoginInput carries login credentials. At least one of Username and Email
// must be set.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Login verifies credentials, issues a fresh token pair and persists the
// refresh token as the account's single live session. A missing account and
// a wrong password produce the same external error so accounts cannot be
// enumerated.
func (s *Service) Login(ctx context.Context, in LoginInput) (user.Profile, TokenPair, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" && in.Email == "" {
		return user.Profile{}, TokenPair{}, apperr.New(apperr.Validation, "username or email is required")
	}
	if in.Password == "" {
		return user.Profile{}, TokenPair{}, apperr.New(apperr.Validation, "password is required")
	}

	u, err := s.repo.FindByIdentifier(ctx, in.Username, in.Email)
	if errors.Is(err, user.ErrNotFound) {
		return user.Profile{}, TokenPair{}, apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}
	if err != nil {
		return user.Profile{}, TokenPair{}, apperr.Wrap(apperr.Internal, "could not look up user", err)
	}

	if !user.VerifyPassword(u, in.Password) {
		return user.Profile{}, TokenPair{}, apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return user.Profile{}, TokenPair{}, err
	}

	if err := s.repo.SetRefreshToken(ctx, u.ID, &pair.RefreshToken); err != nil {
		return user.Profile{}, TokenPair{}, apperr.Wrap(apperr.Internal, "could not persist session", err)
	}

	s.logger.Info("session started", slog.String("user_id", u.ID.String()))
	return u.Profile(), pair, nil
}

// Refresh exchanges a valid, current refresh token for a fresh pair. The
// rotation is a single atomic check-and-set against the store; a presented
// token that no longer matches the stored value is treated as replayed and
// the stored token is cleared so the account must log in again.
func (s *Service) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	subject, err := s.issuer.Verify(presented, KindRefresh)
	if err != nil {
		return TokenPair{}, apperr.New(apperr.Unauthorized, msgInvalidRefresh)
	}

	u, err := s.repo.FindByID(ctx, subject)
	if errors.Is(err, user.ErrNotFound) {
		return TokenPair{}, apperr.New(apperr.Unauthorized, msgInvalidRefresh)
	}
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.Internal, "could not look up user", err)
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return TokenPair{}, err
	}

	switch err := s.repo.RotateRefreshToken(ctx, u.ID, presented, pair.RefreshToken); {
	case errors.Is(err, user.ErrRefreshMismatch):
		// The token is cryptographically valid but is not the current one:
		// either it was already rotated by its legitimate holder and this is
		// a replay, or a concurrent refresh won the race. Invalidate the
		// session outright.
		if clearErr := s.repo.SetRefreshToken(ctx, u.ID, nil); clearErr != nil {
			s.logger.Warn("could not clear refresh token after reuse",
				slog.String("user_id", u.ID.String()), slog.Any("error", clearErr))
		}
		s.logger.Warn("refresh token reuse detected", slog.String("user_id", u.ID.String()))
		return TokenPair{}, apperr.New(apperr.Unauthorized, msgInvalidRefresh)
	case errors.Is(err, user.ErrNotFound):
		return TokenPair{}, apperr.New(apperr.Unauthorized, msgInvalidRefresh)
	case err != nil:
		return TokenPair{}, apperr.Wrap(apperr.Internal, "could not rotate session", err)
	}

	return pair, nil
}

// Logout clears the stored refresh token. Logging out an account with no
// live session is a no-op, not an error.
func (s *Service) Logout(ctx context.Context, id uuid.UUID) error {
	err := s.repo.SetRefreshToken(ctx, id, nil)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return apperr.Wrap(apperr.Internal, "could not end session", err)
	}
	return nil
}

// ChangePassword verifies the old password and persists a hash of the new
// one. The stored refresh token is left untouched, so an outstanding
// session survives a password change.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.New(apperr.Validation, "new password is required")
	}

	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, user.ErrNotFound) {
		return apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "could not look up user", err)
	}

	if !user.VerifyPassword(u, oldPassword) {
		return apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}

	hash, err := user.HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "could not hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return apperr.Wrap(apperr.Internal, "could not update password", err)
	}
	return nil
}

// issuePair mints both tokens, translating any signing failure into an
// internal error rather than leaking infrastructure details.
func (s *Service) issuePair(id uuid.UUID) (TokenPair, error) {
	access, err := s.issuer.IssueAccess(id)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.Internal, "could not issue session tokens", err)
	}
	refresh, err := s.issuer.IssueRefresh(id)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.Internal, "could not issue session tokens", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
