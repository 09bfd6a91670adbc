package api

import (
	"context"
	"time"

	"github.com/lysyi3m/menofeed/app/ai"
	"github.com/lysyi3m/menofeed/app/database"
	"github.com/lysyi3m/menofeed/app/feed"
	"github.com/lysyi3m/menofeed/app/tasks"
)

type GeneratorInterface interface {
	Run(articles []feed.Article) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type AssistantInterface interface {
	Suggest(ctx context.Context, req ai.Request) ai.Suggestion
}

var _ AssistantInterface = (*ai.Assistant)(nil)

type Handler struct {
	configCache    *feed.ConfigCache
	feedRepo       database.FeedRepository
	articleRepo    database.ArticleRepository
	suggestionRepo database.SuggestionRepository
	generator      GeneratorInterface
	assistant      AssistantInterface
	scheduler      tasks.TaskSchedulerInterface
	now            func() time.Time
}

const (
	defaultArticleLimit    = 100
	maxArticleLimit        = 500
	defaultSuggestionLimit = 20

	offlineMessage = "No articles available right now. Check your internet connection and refresh to load the latest articles."
)

type ArticleResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	Content         string    `json:"content"`
	ImageURL        string    `json:"image_url"`
	SourceURL       string    `json:"source_url"`
	SourceName      string    `json:"source_name"`
	Category        string    `json:"category"`
	PublishDate     time.Time `json:"publish_date"`
	IsSaved         bool      `json:"is_saved"`
	ReadTimeMinutes int       `json:"read_time_minutes"`
}

type ArticlesResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Total    int               `json:"total"`
	Offline  bool              `json:"offline"`
	Message  string            `json:"message,omitempty"`
}

type SavedRequest struct {
	Saved *bool `json:"saved" binding:"required"`
}

type SuggestionRequest struct {
	Prompt   string       `json:"prompt" binding:"max=2000"`
	Symptoms []ai.Symptom `json:"symptoms"`
}

type SuggestionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Prompt    string    `json:"prompt"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func toFeedArticle(a database.Article) feed.Article {
	return feed.Article{
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

func toFeedArticles(articles []database.Article) []feed.Article {
	out := make([]feed.Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, toFeedArticle(a))
	}
	return out
}

func newArticleResponse(a feed.Article) ArticleResponse {
	return ArticleResponse{
		ID:              a.ID,
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
	}
}

func newArticlesResponse(articles []feed.Article, offline bool) ArticlesResponse {
	resp := ArticlesResponse{
		Articles: make([]ArticleResponse, 0, len(articles)),
		Total:    len(articles),
		Offline:  offline,
	}
	for _, a := range articles {
		resp.Articles = append(resp.Articles, newArticleResponse(a))
	}
	if offline {
		resp.Message = offlineMessage
	}
	return resp
}

func newSuggestionResponse(s database.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:        s.ID,
		Title:     s.Title,
		Content:   s.Content,
		Prompt:    s.Prompt,
		Source:    s.Source,
		CreatedAt: s.CreatedAt,
	}
}
