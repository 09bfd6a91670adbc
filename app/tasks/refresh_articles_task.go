package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/menofeed/app/database"
	"github.com/lysyi3m/menofeed/app/feed"
)

type RefreshArticlesTask struct {
	Task
	configs     []*feed.Config
	pipeline    *feed.Pipeline
	articleRepo database.ArticleRepository
	feedRepo    database.FeedRepository
	metaRepo    database.MetaRepository
	retention   time.Duration
	lock        *sync.Mutex
	now         func() time.Time
}

// NewRefreshArticlesTask builds a refresh over configs. Tasks sharing lock
// never run concurrently; a refresh that finds the lock taken is skipped.
func NewRefreshArticlesTask(configs []*feed.Config, pipeline *feed.Pipeline, articleRepo database.ArticleRepository,
	feedRepo database.FeedRepository, metaRepo database.MetaRepository, retention time.Duration, lock *sync.Mutex) *RefreshArticlesTask {
	return &RefreshArticlesTask{
		Task:        NewTask(TaskTypeRefreshArticles, ""),
		configs:     configs,
		pipeline:    pipeline,
		articleRepo: articleRepo,
		feedRepo:    feedRepo,
		metaRepo:    metaRepo,
		retention:   retention,
		lock:        lock,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (t *RefreshArticlesTask) Execute(ctx context.Context) (err error) {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.lock.TryLock() {
		slog.Info("Refresh already in progress, skipping", "id", t.GetID())
		return nil
	}
	defer t.lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
		}
	}()

	if len(t.configs) == 0 {
		slog.Debug("No enabled feeds to refresh")
		return nil
	}

	result := t.pipeline.Run(ctx, t.configs)
	now := t.now()

	failed := 0
	for _, report := range result.Reports {
		if report.Err != nil {
			failed++
		}
		if err := t.feedRepo.UpdateFeedStatus(report.Feed, report.Title, report.Link, now, report.Articles, report.Err); err != nil {
			slog.Warn("Failed to record feed status", "feed", report.Feed, "error", err)
		}
	}

	if len(result.Articles) == 0 {
		slog.Warn("Refresh produced no articles, keeping stored set", "feeds", len(t.configs), "failed", failed)
		return nil
	}

	articles := make([]database.Article, 0, len(result.Articles))
	for _, a := range result.Articles {
		articles = append(articles, toDatabaseArticle(a))
	}

	if err := t.articleRepo.UpsertArticles(articles); err != nil {
		return fmt.Errorf("failed to store articles: %w", err)
	}

	pruned, err := t.articleRepo.DeleteOldUnsaved(now.Add(-t.retention))
	if err != nil {
		return fmt.Errorf("failed to prune articles: %w", err)
	}

	if err := t.metaRepo.SetLastRefresh(now); err != nil {
		return fmt.Errorf("failed to record refresh time: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"feeds", len(t.configs),
		"failed", failed,
		"articles", len(articles),
		"fell_back", result.FellBack,
		"pruned", pruned)

	return nil
}

func toDatabaseArticle(a feed.Article) database.Article {
	return database.Article{
		ID:              a.ID,
		FeedName:        a.FeedName,
		Title:           a.Title,
		Summary:         a.Summary,
		Content:         a.Content,
		ImageURL:        a.ImageURL,
		SourceURL:       a.SourceURL,
		SourceName:      a.SourceName,
		Category:        a.Category,
		PublishDate:     a.PublishDate,
		IsSaved:         a.IsSaved,
		ReadTimeMinutes: a.ReadTimeMinutes,
		LastFetchDate:   a.LastFetchDate,
	}
}
