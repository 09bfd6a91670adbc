package database

import (
	"time"
)

const (
	ExtractionPending = "pending"
	ExtractionSuccess = "success"
	ExtractionFailed  = "failed"
	ExtractionSkipped = "skipped"
)

type FeedRepository interface {
	GetFeed(feedName string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(feedName, feedURL string) error
	UpdateFeedStatus(feedName, title, link string, fetchedAt time.Time, itemCount int, fetchErr error) error
}

type ArticleForExtraction struct {
	ID        string
	SourceURL string
	Content   string
}

type ArticleRepository interface {
	GetArticle(id string) (*Article, error)
	GetRecentArticles(limit int, category string) ([]Article, error)
	GetSavedArticles() ([]Article, error)
	GetArticleCount() (int, error)

	// UpsertArticles writes the merged set in one transaction. Position is
	// taken from the slice index; an existing saved flag is never cleared.
	UpsertArticles(articles []Article) error
	UpdateSavedStatus(id string, saved bool) (bool, error)
	ClearSaved() (int64, error)
	DeleteOldUnsaved(cutoff time.Time) (int64, error)

	GetArticlesForExtraction(feedName string, maxContentLength, limit int) ([]ArticleForExtraction, error)
	UpdateExtractionStatus(id string, status string, extractedAt *time.Time, errorMsg string) error
	UpdateExtractedContentAndStatus(id string, content string, readTimeMinutes int, status string, extractedAt *time.Time, errorMsg string) error
}

type SuggestionRepository interface {
	InsertSuggestion(s Suggestion) error
	GetRecentSuggestions(limit int) ([]Suggestion, error)
}

type MetaRepository interface {
	GetLastRefresh() (*time.Time, error)
	SetLastRefresh(t time.Time) error
	NeedsRefresh(interval time.Duration, now time.Time) (bool, error)
}
