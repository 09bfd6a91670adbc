package database

import (
	"database/sql"
	"fmt"
	"time"
)

type FeedRepo struct {
	db *DB
}

var _ FeedRepository = (*FeedRepo)(nil)

func NewFeedRepository(db *DB) *FeedRepo {
	return &FeedRepo{db: db}
}

const feedColumns = `name, feed_url, title, link, last_fetched_at, last_success_at,
	last_error, item_count, created_at, updated_at`

// UpsertFeed registers a configured feed or refreshes its URL.
func (r *FeedRepo) UpsertFeed(feedName, feedURL string) error {
	_, err := r.db.Exec(`
		INSERT INTO feeds (name, feed_url)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			feed_url = excluded.feed_url,
			updated_at = CURRENT_TIMESTAMP
	`, feedName, feedURL)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}
	return nil
}

// UpdateFeedStatus records the outcome of one fetch. A nil fetchErr marks
// the fetch successful and replaces title, link and item count.
func (r *FeedRepo) UpdateFeedStatus(feedName, title, link string, fetchedAt time.Time, itemCount int, fetchErr error) error {
	var err error
	if fetchErr != nil {
		_, err = r.db.Exec(`
			UPDATE feeds
			SET last_fetched_at = ?, last_error = ?, updated_at = CURRENT_TIMESTAMP
			WHERE name = ?
		`, fetchedAt.UTC(), fetchErr.Error(), feedName)
	} else {
		_, err = r.db.Exec(`
			UPDATE feeds
			SET title = ?, link = ?, last_fetched_at = ?, last_success_at = ?,
			    last_error = '', item_count = ?, updated_at = CURRENT_TIMESTAMP
			WHERE name = ?
		`, title, link, fetchedAt.UTC(), fetchedAt.UTC(), itemCount, feedName)
	}
	if err != nil {
		return fmt.Errorf("failed to update feed status: %w", err)
	}
	return nil
}

func (r *FeedRepo) GetFeed(feedName string) (*Feed, error) {
	row := r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE name = ?`, feedName)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *FeedRepo) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`SELECT ` + feedColumns + ` FROM feeds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func (r *FeedRepo) GetFeedCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

func scanFeed(row rowScanner) (*Feed, error) {
	var f Feed
	var lastFetched, lastSuccess sql.NullTime

	err := row.Scan(
		&f.Name, &f.FeedURL, &f.Title, &f.Link, &lastFetched, &lastSuccess,
		&f.LastError, &f.ItemCount, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastFetched.Valid {
		f.LastFetchedAt = &lastFetched.Time
	}
	if lastSuccess.Valid {
		f.LastSuccessAt = &lastSuccess.Time
	}

	return &f, nil
}
