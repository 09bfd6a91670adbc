package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title           string
	Link            string
	Description     string
	ImageURL        string
	Language        string
	FeedPublishedAt *time.Time
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	ImageURL    string // Structured image from <image>, an image enclosure or media:content
	PublishedAt *time.Time
	UpdatedAt   *time.Time
	Authors     []string // Multiple authors in format "email (name)" or "name"
	Categories  []string
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
	IsSaved         bool
	ReadTimeMinutes int
	LastFetchDate   time.Time
}

// Configuration types

const DefaultCategory = "Women's Health"

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Title    string         `yaml:"title"`    // Display source name, falls back to the channel title
	Category string         `yaml:"category"` // Category assigned to every article of the feed
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled        bool `yaml:"enabled"`
	MaxItems       int  `yaml:"max_items"`
	Timeout        int  `yaml:"timeout"`         // seconds
	ExtractContent bool `yaml:"extract_content"` // enable full article extraction
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
