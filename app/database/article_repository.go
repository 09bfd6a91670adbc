package database

import (
	"database/sql"
	"fmt"
	"time"
)

const defaultArticleLimit = 100

const articleColumns = `id, feed_name, title, summary, content, image_url, source_url, source_name,
	category, publish_date, position, is_saved, read_time_minutes, last_fetch_date,
	content_extraction_status, content_extracted_at, content_extraction_error, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type ArticleRepo struct {
	db *DB
}

var _ ArticleRepository = (*ArticleRepo)(nil)

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

func (r *ArticleRepo) UpsertArticles(articles []Article) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// feed_content keeps the teaser as fetched. Extracted text survives a
	// refresh only while that teaser is unchanged; a new teaser resets the
	// article to pending so extraction runs again on the updated page.
	stmt, err := tx.Prepare(`
		INSERT INTO articles (
			id, feed_name, title, summary, content, feed_content, image_url, source_url, source_name,
			category, publish_date, position, is_saved, read_time_minutes, last_fetch_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			feed_name = excluded.feed_name,
			title = excluded.title,
			summary = excluded.summary,
			content = CASE WHEN articles.content_extraction_status = 'success'
				AND articles.feed_content = excluded.feed_content
				THEN articles.content ELSE excluded.content END,
			read_time_minutes = CASE WHEN articles.content_extraction_status = 'success'
				AND articles.feed_content = excluded.feed_content
				THEN articles.read_time_minutes ELSE excluded.read_time_minutes END,
			content_extraction_status = CASE WHEN articles.feed_content = excluded.feed_content
				THEN articles.content_extraction_status ELSE 'pending' END,
			content_extracted_at = CASE WHEN articles.feed_content = excluded.feed_content
				THEN articles.content_extracted_at ELSE NULL END,
			content_extraction_error = CASE WHEN articles.feed_content = excluded.feed_content
				THEN articles.content_extraction_error ELSE '' END,
			feed_content = excluded.feed_content,
			image_url = excluded.image_url,
			source_url = excluded.source_url,
			source_name = excluded.source_name,
			category = excluded.category,
			publish_date = excluded.publish_date,
			position = excluded.position,
			is_saved = articles.is_saved OR excluded.is_saved,
			last_fetch_date = excluded.last_fetch_date
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, a := range articles {
		_, err := stmt.Exec(
			a.ID, a.FeedName, a.Title, a.Summary, a.Content, a.Content, a.ImageURL, a.SourceURL, a.SourceName,
			a.Category, a.PublishDate.UTC(), i, a.IsSaved, a.ReadTimeMinutes, a.LastFetchDate.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert article %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit articles: %w", err)
	}

	return nil
}

func (r *ArticleRepo) GetArticle(id string) (*Article, error) {
	row := r.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// GetRecentArticles returns articles newest first. An empty category means
// all categories.
func (r *ArticleRepo) GetRecentArticles(limit int, category string) ([]Article, error) {
	if limit <= 0 {
		limit = defaultArticleLimit
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY publish_date DESC, position ASC LIMIT ?`
	args = append(args, limit)

	return r.queryArticles(query, args...)
}

func (r *ArticleRepo) GetSavedArticles() ([]Article, error) {
	return r.queryArticles(`
		SELECT ` + articleColumns + `
		FROM articles
		WHERE is_saved = 1
		ORDER BY publish_date DESC, position ASC
	`)
}

func (r *ArticleRepo) GetArticleCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// UpdateSavedStatus reports whether the article exists.
func (r *ArticleRepo) UpdateSavedStatus(id string, saved bool) (bool, error) {
	result, err := r.db.Exec(`UPDATE articles SET is_saved = ? WHERE id = ?`, saved, id)
	if err != nil {
		return false, fmt.Errorf("failed to update saved status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *ArticleRepo) ClearSaved() (int64, error) {
	result, err := r.db.Exec(`UPDATE articles SET is_saved = 0 WHERE is_saved = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear saved articles: %w", err)
	}
	return result.RowsAffected()
}

// DeleteOldUnsaved removes unsaved articles last fetched before cutoff.
func (r *ArticleRepo) DeleteOldUnsaved(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM articles WHERE is_saved = 0 AND last_fetch_date < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune articles: %w", err)
	}
	return result.RowsAffected()
}

// GetArticlesForExtraction returns pending articles of a feed whose stored
// content is shorter than maxContentLength characters.
func (r *ArticleRepo) GetArticlesForExtraction(feedName string, maxContentLength, limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, source_url, content
		FROM articles
		WHERE feed_name = ?
		  AND content_extraction_status = ?
		  AND length(content) < ?
		  AND source_url LIKE 'http%'
		ORDER BY publish_date DESC
		LIMIT ?
	`, feedName, ExtractionPending, maxContentLength, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForExtraction
	for rows.Next() {
		var a ArticleForExtraction
		if err := rows.Scan(&a.ID, &a.SourceURL, &a.Content); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepo) UpdateExtractionStatus(id string, status string, extractedAt *time.Time, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET content_extraction_status = ?, content_extracted_at = ?, content_extraction_error = ?
		WHERE id = ?
	`, status, utcPtr(extractedAt), errorMsg, id)
	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}
	return nil
}

func (r *ArticleRepo) UpdateExtractedContentAndStatus(id string, content string, readTimeMinutes int, status string, extractedAt *time.Time, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET content = ?, read_time_minutes = ?, content_extraction_status = ?,
		    content_extracted_at = ?, content_extraction_error = ?
		WHERE id = ?
	`, content, readTimeMinutes, status, utcPtr(extractedAt), errorMsg, id)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}
	return nil
}

func (r *ArticleRepo) queryArticles(query string, args ...any) ([]Article, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var extractedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.FeedName, &a.Title, &a.Summary, &a.Content, &a.ImageURL, &a.SourceURL, &a.SourceName,
		&a.Category, &a.PublishDate, &a.Position, &a.IsSaved, &a.ReadTimeMinutes, &a.LastFetchDate,
		&a.ContentExtractionStatus, &extractedAt, &a.ContentExtractionError, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if extractedAt.Valid {
		a.ContentExtractedAt = &extractedAt.Time
	}

	return &a, nil
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
