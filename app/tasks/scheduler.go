package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/menofeed/app/cfg"
	"github.com/lysyi3m/menofeed/app/database"
	"github.com/lysyi3m/menofeed/app/feed"
)

const (
	taskQueueSize = 300
	taskTimeout   = 5 * time.Minute
	maxRetryDelay = 30 * time.Second
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache      *feed.ConfigCache
	pipeline         *feed.Pipeline
	fetcher          *feed.Fetcher
	contentExtractor *feed.ContentExtractor
	normalizer       *feed.Normalizer
	feedRepo         database.FeedRepository
	articleRepo      database.ArticleRepository
	metaRepo         database.MetaRepository
	refreshLock      sync.Mutex
	refreshInterval  time.Duration
	retention        time.Duration
	minReadTime      int
	interval         time.Duration
	workerCount      int
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	taskQueue        chan TaskInterface
}

func NewScheduler(configCache *feed.ConfigCache, pipeline *feed.Pipeline, fetcher *feed.Fetcher,
	contentExtractor *feed.ContentExtractor, normalizer *feed.Normalizer, feedRepo database.FeedRepository,
	articleRepo database.ArticleRepository, metaRepo database.MetaRepository) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache:      configCache,
		pipeline:         pipeline,
		fetcher:          fetcher,
		contentExtractor: contentExtractor,
		normalizer:       normalizer,
		feedRepo:         feedRepo,
		articleRepo:      articleRepo,
		metaRepo:         metaRepo,
		refreshInterval:  cfg.RefreshEvery(),
		retention:        cfg.Retention(),
		minReadTime:      cfg.MinReadTime,
		interval:         time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:      cfg.WorkerCount,
		ctx:              ctx,
		cancel:           cancel,
		taskQueue:        make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels running tasks and waits for the workers. The queue is left
// open so late retries never send on a closed channel.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) EnqueueRefresh(force bool) (bool, error) {
	if !force {
		due, err := s.metaRepo.NeedsRefresh(s.refreshInterval, time.Now().UTC())
		if err != nil {
			return false, fmt.Errorf("failed to check last refresh: %w", err)
		}
		if !due {
			return false, nil
		}
	}

	if err := s.EnqueueTask(s.newRefreshTask()); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Scheduler) newRefreshTask() *RefreshArticlesTask {
	return NewRefreshArticlesTask(s.configCache.GetEnabledConfigs(), s.pipeline, s.articleRepo,
		s.feedRepo, s.metaRepo, s.retention, &s.refreshLock)
}

// runStartupTasks registers every configured feed before the first refresh
// so that refresh can record per-feed status.
func (s *Scheduler) runStartupTasks() {
	feedConfigs := s.configCache.GetConfigs()
	slog.Debug("Syncing feed configurations", "count", len(feedConfigs))

	for _, feedConfig := range feedConfigs {
		syncTask := NewSyncFeedConfigTask(feedConfig.Name, feedConfig, s.feedRepo)
		syncTask.Start()
		if err := syncTask.Execute(s.ctx); err != nil {
			slog.Warn("Failed to sync feed config", "feed", feedConfig.Name, "error", err)
		}
	}

	if _, err := s.EnqueueRefresh(false); err != nil {
		slog.Warn("Failed to enqueue startup refresh", "error", err)
	}
}

func (s *Scheduler) enqueueTasks() {
	if queued, err := s.EnqueueRefresh(false); err != nil {
		slog.Warn("Failed to enqueue RefreshArticlesTask", "error", err)
	} else if !queued {
		slog.Debug("Articles not due for refresh yet")
	}

	for _, feedConfig := range s.configCache.GetEnabledConfigs() {
		if !feedConfig.Settings.ExtractContent {
			continue
		}

		extractTask := NewExtractContentTask(feedConfig.Name, feedConfig, s.fetcher, s.contentExtractor,
			s.normalizer, s.articleRepo, s.minReadTime)
		if err := s.EnqueueTask(extractTask); err != nil {
			slog.Warn("Failed to enqueue ExtractContentTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(delay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

// retryDelay doubles from one second per attempt, capped at maxRetryDelay.
func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		return maxRetryDelay
	}
	return min(time.Duration(1<<uint(attempt-1))*time.Second, maxRetryDelay)
}
