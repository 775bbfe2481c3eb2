package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream/vidstream/internal/config"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	return NewIssuer(config.Config{
		AccessTokenSecret:  "access-secret",
		AccessTokenTTL:     time.Minute,
		RefreshTokenSecret: "refresh-secret",
		RefreshTokenTTL:    time.Hour,
	})
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	issuer := testIssuer(t)
	subject := uuid.New()

	token, err := issuer.IssueAccess(subject)
	require.NoError(t, err)

	got, err := issuer.Verify(token, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func TestVerifyRejectsKindMismatch(t *testing.T) {
	issuer := testIssuer(t)
	subject := uuid.New()

	refresh, err := issuer.IssueRefresh(subject)
	require.NoError(t, err)
	access, err := issuer.IssueAccess(subject)
	require.NoError(t, err)

	_, err = issuer.Verify(refresh, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = issuer.Verify(access, KindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewIssuer(config.Config{
		AccessTokenSecret:  "access-secret",
		AccessTokenTTL:     -time.Minute,
		RefreshTokenSecret: "refresh-secret",
		RefreshTokenTTL:    time.Hour,
	})

	token, err := issuer.IssueAccess(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Verify(token, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTamperedToken(t *testing.T) {
	issuer := testIssuer(t)

	token, err := issuer.IssueAccess(uuid.New())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Verify(tampered, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = issuer.Verify("not-a-token", KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := testIssuer(t)
	other := NewIssuer(config.Config{
		AccessTokenSecret:  "different-secret",
		AccessTokenTTL:     time.Minute,
		RefreshTokenSecret: "different-refresh",
		RefreshTokenTTL:    time.Hour,
	})

	token, err := issuer.IssueAccess(uuid.New())
	require.NoError(t, err)

	_, err = other.Verify(token, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestConsecutiveRefreshTokensDiffer(t *testing.T) {
	issuer := testIssuer(t)
	subject := uuid.New()

	first, err := issuer.IssueRefresh(subject)
	require.NoError(t, err)
	second, err := issuer.IssueRefresh(subject)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
