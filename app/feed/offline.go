package feed

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const OfflineFeedName = "offline"

//go:embed offline_articles.yml
var offlineArticlesYAML []byte

type offlineArticle struct {
	DaysAgo    int    `yaml:"days_ago"`
	Title      string `yaml:"title"`
	Summary    string `yaml:"summary"`
	Content    string `yaml:"content"`
	SourceURL  string `yaml:"source_url"`
	SourceName string `yaml:"source_name"`
	Category   string `yaml:"category"`
	ReadTime   int    `yaml:"read_time"`
}

var offlineArticles = mustParseOffline(offlineArticlesYAML)

func mustParseOffline(data []byte) []offlineArticle {
	var entries []offlineArticle
	if err := yaml.Unmarshal(data, &entries); err != nil {
		panic(fmt.Sprintf("invalid offline articles: %v", err))
	}
	return entries
}

// OfflineArticles returns the built-in articles shown when nothing has been
// fetched yet, dated relative to now.
func OfflineArticles(now time.Time) []Article {
	images := NewImageResolver()

	articles := make([]Article, 0, len(offlineArticles))
	for _, e := range offlineArticles {
		articles = append(articles, Article{
			ID:              ArticleID("", e.SourceURL, e.SourceName, e.Title),
			FeedName:        OfflineFeedName,
			Title:           e.Title,
			Summary:         e.Summary,
			Content:         strings.TrimSpace(e.Content),
			ImageURL:        images.Fallback(e.SourceURL),
			SourceURL:       e.SourceURL,
			SourceName:      e.SourceName,
			Category:        e.Category,
			PublishDate:     now.AddDate(0, 0, -e.DaysAgo),
			ReadTimeMinutes: max(e.ReadTime, DefaultMinReadTime),
			LastFetchDate:   now,
		})
	}
	return articles
}
