package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the persisted account record. It is a plain value type; password
// checks and token issuing live in the services that hold the record.
// RefreshToken holds at most one live refresh token for the account: a
// non-nil value is exactly the last token the session service issued, and
// any presented token that differs is treated as compromised.
type User struct {
	ID            uuid.UUID
	Username      string
	Email         string
	FullName      string
	PasswordHash  []byte
	AvatarURL     string
	CoverImageURL string
	RefreshToken  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile is the redacted projection of a User. It is the only user
// representation handed to clients; PasswordHash and RefreshToken have no
// field here, so no serialization path can leak them.
type Profile struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Profile returns the redacted projection of u.
func (u User) Profile() Profile {
	return Profile{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
