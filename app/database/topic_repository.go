package database

import (
	"database/sql"
	"fmt"
	"time"
)

// TopicStore keeps per-topic fetch bookkeeping
type TopicStore struct {
	db  *DB
	now func() time.Time
}

func NewTopicStore(db *DB) *TopicStore {
	return &TopicStore{db: db, now: time.Now}
}

// UpsertTopic registers a topic from its configuration file
func (r *TopicStore) UpsertTopic(name, title string, feedCount int) error {
	now := toUnix(r.now())

	_, err := r.db.Exec(`
		INSERT INTO topics (name, title, feed_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			title = excluded.title,
			feed_count = excluded.feed_count,
			updated_at = excluded.updated_at
	`, name, title, feedCount, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert topic: %w", err)
	}

	return nil
}

// GetTopic returns nil when the topic has never been registered
func (r *TopicStore) GetTopic(name string) (*Topic, error) {
	var topic Topic
	var lastFetched, nextFetch sql.NullInt64
	var createdAt, updatedAt int64

	err := r.db.QueryRow(`
		SELECT name, title, feed_count, last_fetched_at, next_fetch_at, created_at, updated_at
		FROM topics
		WHERE name = ?
	`, name).Scan(&topic.Name, &topic.Title, &topic.FeedCount, &lastFetched, &nextFetch, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	topic.LastFetchedAt = fromNullUnix(lastFetched)
	topic.NextFetchAt = fromNullUnix(nextFetch)
	topic.CreatedAt = fromUnix(createdAt)
	topic.UpdatedAt = fromUnix(updatedAt)

	return &topic, nil
}

func (r *TopicStore) UpdateFetchTimes(name string, fetchedAt, nextFetch time.Time) error {
	result, err := r.db.Exec(`
		UPDATE topics
		SET last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, toUnix(fetchedAt), toUnix(nextFetch), toUnix(r.now()), name)
	if err != nil {
		return fmt.Errorf("failed to update fetch times: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("topic %s: %w", name, ErrNotFound)
	}

	return nil
}

func (r *TopicStore) GetTopicCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM topics`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get topic count: %w", err)
	}
	return count, nil
}
