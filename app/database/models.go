package database

import (
	"time"
)

type Feed struct {
	Name          string // Configuration feed identifier derived from filename
	FeedURL       string
	Title         string // Display source name seen on the last successful fetch
	Link          string
	LastFetchedAt *time.Time
	LastSuccessAt *time.Time
	LastError     string
	ItemCount     int // Articles contributed by the last successful fetch
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Article struct {
	ID              string
	FeedName        string
	Title           string
	Summary         string
	Content         string
	ImageURL        string
	SourceURL       string
	SourceName      string
	Category        string
	PublishDate     time.Time
	Position        int // Index in the last merged order, breaks publish date ties
	IsSaved         bool
	ReadTimeMinutes int
	LastFetchDate   time.Time

	ContentExtractionStatus string // pending, success, failed, skipped
	ContentExtractedAt      *time.Time
	ContentExtractionError  string
	CreatedAt               time.Time
}

type Suggestion struct {
	ID        string
	Title     string
	Content   string
	Prompt    string
	Source    string // ai or fallback
	CreatedAt time.Time
}
