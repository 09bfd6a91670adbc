package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/menofeed/app/ai"
	"github.com/lysyi3m/menofeed/app/cfg"
	"github.com/lysyi3m/menofeed/app/database"
	"github.com/lysyi3m/menofeed/app/feed"
	"github.com/lysyi3m/menofeed/app/tasks"
)

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	articleRepo database.ArticleRepository, suggestionRepo database.SuggestionRepository,
	assistant AssistantInterface, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		configCache:    configCache,
		feedRepo:       feedRepo,
		articleRepo:    articleRepo,
		suggestionRepo: suggestionRepo,
		generator:      feed.NewGenerator(),
		assistant:      assistant,
		scheduler:      scheduler,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	if articleCount, err := h.articleRepo.GetArticleCount(); err == nil {
		health["articles"] = articleCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

// GetArticles serves the stored set newest first. An empty store yields the
// built-in offline articles flagged as such.
func (h *Handler) GetArticles(c *gin.Context) {
	limit, ok := parseLimit(c, defaultArticleLimit, maxArticleLimit)
	if !ok {
		return
	}
	category := strings.TrimSpace(c.Query("category"))

	articles, offline, err := h.loadArticles(limit, category)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, newArticlesResponse(articles, offline))
}

func (h *Handler) GetSavedArticles(c *gin.Context) {
	articles, err := h.articleRepo.GetSavedArticles()
	if err != nil {
		slog.Error("Database error", "operation", "get_saved_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, newArticlesResponse(toFeedArticles(articles), false))
}

func (h *Handler) GetArticle(c *gin.Context) {
	id := c.Param("id")

	article, err := h.articleRepo.GetArticle(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if article != nil {
		c.JSON(http.StatusOK, newArticleResponse(toFeedArticle(*article)))
		return
	}

	for _, offline := range feed.OfflineArticles(h.now()) {
		if offline.ID == id {
			c.JSON(http.StatusOK, newArticleResponse(offline))
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
}

func (h *Handler) GetArticlesFeed(c *gin.Context) {
	articles, offline, err := h.loadArticles(defaultArticleLimit, "")
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(articles)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.Header("X-Feed-Offline", strconv.FormatBool(offline))

	c.String(http.StatusOK, rss)
}

func (h *Handler) CreateSuggestion(c *gin.Context) {
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	suggestion := h.assistant.Suggest(c.Request.Context(), ai.Request{
		Prompt:   req.Prompt,
		Symptoms: req.Symptoms,
	})

	record := database.Suggestion{
		ID:        suggestion.ID,
		Title:     suggestion.Title,
		Content:   suggestion.Content,
		Prompt:    suggestion.Prompt,
		Source:    suggestion.Source,
		CreatedAt: suggestion.CreatedAt,
	}

	if err := h.suggestionRepo.InsertSuggestion(record); err != nil {
		slog.Warn("Failed to store suggestion", "id", record.ID, "error", err)
	}

	c.JSON(http.StatusOK, newSuggestionResponse(record))
}

func (h *Handler) GetSuggestions(c *gin.Context) {
	limit, ok := parseLimit(c, defaultSuggestionLimit, maxArticleLimit)
	if !ok {
		return
	}

	suggestions, err := h.suggestionRepo.GetRecentSuggestions(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_suggestions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	resp := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		resp = append(resp, newSuggestionResponse(s))
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": resp,
		"total":       len(resp),
	})
}

func (h *Handler) APISetSaved(c *gin.Context) {
	id := c.Param("id")

	var req SavedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	found, err := h.articleRepo.UpdateSavedStatus(id, *req.Saved)
	if err != nil {
		slog.Error("Database error", "operation", "update_saved", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"is_saved": *req.Saved,
	})
}

func (h *Handler) APIClearSaved(c *gin.Context) {
	cleared, err := h.articleRepo.ClearSaved()
	if err != nil {
		slog.Error("Database error", "operation", "clear_saved", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

func (h *Handler) APIRefresh(c *gin.Context) {
	force := c.Query("force") == "true"

	queued, err := h.scheduler.EnqueueRefresh(force)
	if err != nil {
		slog.Error("Error enqueueing refresh task", "force", force, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	message := "Refresh enqueued"
	if !queued {
		message = "Articles are up to date, use force=true to refresh anyway"
	}

	c.JSON(http.StatusAccepted, gin.H{
		"queued":  queued,
		"message": message,
	})
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	feeds := make([]map[string]interface{}, 0, len(configs))

	for _, feedConfig := range configs {
		feedInfo := map[string]interface{}{
			"name":            feedConfig.Name,
			"url":             feedConfig.URL,
			"title":           feedConfig.Title,
			"category":        feedConfig.Category,
			"enabled":         feedConfig.Settings.Enabled,
			"max_items":       feedConfig.Settings.MaxItems,
			"timeout":         (time.Duration(feedConfig.Settings.Timeout) * time.Second).String(),
			"extract_content": feedConfig.Settings.ExtractContent,
			"filters":         len(feedConfig.Filters),
		}

		if feed, err := h.feedRepo.GetFeed(feedConfig.Name); err == nil && feed != nil {
			if feed.Title != "" {
				feedInfo["title"] = feed.Title
			}
			feedInfo["last_fetched_at"] = feed.LastFetchedAt
			feedInfo["last_success_at"] = feed.LastSuccessAt
			feedInfo["last_error"] = feed.LastError
			feedInfo["item_count"] = feed.ItemCount
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) loadArticles(limit int, category string) ([]feed.Article, bool, error) {
	stored, err := h.articleRepo.GetRecentArticles(limit, category)
	if err != nil {
		return nil, false, err
	}
	if len(stored) > 0 {
		return toFeedArticles(stored), false, nil
	}

	count, err := h.articleRepo.GetArticleCount()
	if err != nil {
		return nil, false, err
	}
	if count > 0 {
		return []feed.Article{}, false, nil
	}

	var articles []feed.Article
	for _, a := range feed.OfflineArticles(h.now()) {
		if category == "" || strings.EqualFold(a.Category, category) {
			articles = append(articles, a)
		}
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, true, nil
}

func parseLimit(c *gin.Context, fallback, upper int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return min(limit, upper), true
}
