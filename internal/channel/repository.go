package channel

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists channel subscriptions and answers the aggregate
// queries behind a channel profile. This is a separate read/write path that
// never touches token or credential state.
type Repository interface {
	Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error
	Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error
	Counts(ctx context.Context, channelID uuid.UUID) (Stats, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
}

// Stats aggregates subscription counts for a channel.
type Stats struct {
	Subscribers  int64 `json:"subscriberCount"`
	SubscribedTo int64 `json:"subscribedToCount"`
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed subscription repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Subscribe records the subscription; re-subscribing is a no-op.
func (r *PostgresRepository) Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `INSERT INTO subscriptions (subscriber_id, channel_id)
        VALUES ($1, $2) ON CONFLICT DO NOTHING`, subscriberID, channelID)
	return err
}

// Unsubscribe removes the subscription; removing a missing one is a no-op.
func (r *PostgresRepository) Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID)
	return err
}

// Counts returns how many accounts subscribe to the channel and how many
// channels the account itself subscribes to.
func (r *PostgresRepository) Counts(ctx context.Context, channelID uuid.UUID) (Stats, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1)`
	var stats Stats
	if err := r.db.QueryRow(ctx, query, channelID).Scan(&stats.Subscribers, &stats.SubscribedTo); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// IsSubscribed reports whether subscriberID subscribes to channelID.
func (r *PostgresRepository) IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`
	var subscribed bool
	if err := r.db.QueryRow(ctx, query, subscriberID, channelID).Scan(&subscribed); err != nil {
		return false, err
	}
	return subscribed, nil
}
