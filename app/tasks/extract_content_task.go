package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/menofeed/app/database"
	"github.com/lysyi3m/menofeed/app/feed"
)

// ShortContentLength is the rune count below which stored content is treated
// as a teaser worth replacing with the full article.
const ShortContentLength = 600

type ExtractContentTask struct {
	Task
	FeedConfig       *feed.Config
	fetcher          *feed.Fetcher
	contentExtractor *feed.ContentExtractor
	normalizer       *feed.Normalizer
	articleRepo      database.ArticleRepository
	minReadTime      int
}

func NewExtractContentTask(feedName string, feedConfig *feed.Config, fetcher *feed.Fetcher, contentExtractor *feed.ContentExtractor,
	normalizer *feed.Normalizer, articleRepo database.ArticleRepository, minReadTime int) *ExtractContentTask {
	return &ExtractContentTask{
		Task:             NewTask(TaskTypeExtractContent, feedName),
		FeedConfig:       feedConfig,
		fetcher:          fetcher,
		contentExtractor: contentExtractor,
		normalizer:       normalizer,
		articleRepo:      articleRepo,
		minReadTime:      minReadTime,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.ExtractContent {
		slog.Debug("Content extraction disabled for feed", "feed", t.FeedName)
		return nil
	}

	articles, err := t.articleRepo.GetArticlesForExtraction(t.FeedName, ShortContentLength, t.FeedConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("No articles need content extraction", "feed", t.FeedName)
		return nil
	}

	successCount := 0
	skippedCount := 0
	errorCount := 0

	for _, article := range articles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		status, err := t.extractArticle(ctx, article)
		now := time.Now().UTC()

		switch {
		case err != nil:
			slog.Warn("Failed to extract content for article", "id", article.ID, "url", article.SourceURL, "error", err)
			errorCount++
			if err := t.articleRepo.UpdateExtractionStatus(article.ID, database.ExtractionFailed, &now, err.Error()); err != nil {
				slog.Error("Failed to update content extraction status", "id", article.ID, "error", err)
			}
		case status == database.ExtractionSkipped:
			skippedCount++
			if err := t.articleRepo.UpdateExtractionStatus(article.ID, database.ExtractionSkipped, &now, ""); err != nil {
				slog.Error("Failed to update content extraction status", "id", article.ID, "error", err)
			}
		default:
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"success", successCount,
		"skipped", skippedCount,
		"errors", errorCount)

	return nil
}

// extractArticle stores the extracted body when it is longer than what the
// feed provided and reports skipped otherwise.
func (t *ExtractContentTask) extractArticle(ctx context.Context, article database.ArticleForExtraction) (string, error) {
	data, err := t.fetcher.Get(ctx, article.SourceURL, time.Duration(t.FeedConfig.Settings.Timeout)*time.Second, "text/html")
	if err != nil {
		return "", fmt.Errorf("failed to fetch article page: %w", err)
	}

	extracted, err := t.contentExtractor.Run(data, article.SourceURL)
	if err != nil {
		return "", err
	}

	content := t.normalizer.Content(extracted, "")
	if utf8.RuneCountInString(content) <= utf8.RuneCountInString(article.Content) {
		return database.ExtractionSkipped, nil
	}

	now := time.Now().UTC()
	readTime := feed.ReadTime(content, t.minReadTime)
	if err := t.articleRepo.UpdateExtractedContentAndStatus(article.ID, content, readTime, database.ExtractionSuccess, &now, ""); err != nil {
		return "", fmt.Errorf("failed to update extracted content and status: %w", err)
	}

	slog.Debug("Content extracted successfully", "id", article.ID, "url", article.SourceURL, "content_length", len(content))
	return database.ExtractionSuccess, nil
}
