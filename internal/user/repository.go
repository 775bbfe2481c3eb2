package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the referenced user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate signals a username or email uniqueness violation.
	ErrDuplicate = errors.New("username or email already taken")
	// ErrRefreshMismatch signals the stored refresh token no longer matches
	// the value a rotation expected. The caller must treat the presented
	// token as reused.
	ErrRefreshMismatch = errors.New("stored refresh token mismatch")
)

// Repository persists users and the single refresh token slot per account.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	// FindByIdentifier looks a user up by username or email; either argument
	// may be blank.
	FindByIdentifier(ctx context.Context, username, email string) (User, error)
	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// A nil token clears the slot.
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	// RotateRefreshToken replaces the stored token with next only if the
	// stored value still equals presented, as one atomic check-and-set.
	// Returns ErrRefreshMismatch when another rotation won the race.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, url string) error
	UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) error
}

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at`

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, u User) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.AvatarURL, u.CoverImageURL, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// FindByID fetches a user by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByIdentifier fetches a user by username or email.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, username, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)`,
		username, email)
	return scanUser(row)
}

// SetRefreshToken overwrites the stored refresh token, nil clearing it.
func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = $2, updated_at = now() WHERE id = $1`, id, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateRefreshToken performs the compare-and-set rotation in one UPDATE so
// two concurrent rotations cannot both succeed.
func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = $3, updated_at = now() WHERE id = $1 AND refresh_token = $2`,
		id, presented, next)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.FindByID(ctx, id); errors.Is(err, ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return ErrRefreshMismatch
}

// UpdatePassword persists a new password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash []byte) error {
	return r.updateColumn(ctx, id, `password_hash`, hash)
}

// UpdateAvatar persists a new avatar URL.
func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) error {
	return r.updateColumn(ctx, id, `avatar_url`, url)
}

// UpdateCoverImage persists a new cover image URL.
func (r *PostgresRepository) UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) error {
	return r.updateColumn(ctx, id, `cover_image_url`, url)
}

func (r *PostgresRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value any) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET `+column+` = $2, updated_at = now() WHERE id = $1`, id, value)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.CoverImageURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}
