package feed

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"
)

type SourceReport struct {
	Feed     string
	URL      string
	Title    string
	Link     string
	Fetched  int
	Skipped  int
	Articles int
	Err      error
	Duration time.Duration
}

type Result struct {
	Articles []Article
	Reports  []SourceReport
	FellBack bool
}

// Pipeline turns the configured feeds into a merged, sorted article list.
// It never writes to storage.
type Pipeline struct {
	fetcher     *Fetcher
	filterer    *Filterer
	normalizer  *Normalizer
	relevance   *Relevance
	images      *ImageResolver
	minReadTime int
	now         func() time.Time
}

func NewPipeline(fetcher *Fetcher, filterer *Filterer, normalizer *Normalizer, relevance *Relevance, images *ImageResolver, minReadTime int) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		filterer:    filterer,
		normalizer:  normalizer,
		relevance:   relevance,
		images:      images,
		minReadTime: minReadTime,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (p *Pipeline) Run(ctx context.Context, configs []*Config) Result {
	now := p.now()
	fetched := p.fetcher.Run(ctx, configs)

	var result Result
	seen := make(map[string]bool)
	var merged []Article

	for _, fr := range fetched {
		report := SourceReport{
			Feed:     fr.Config.Name,
			URL:      fr.Config.URL,
			Err:      fr.Err,
			Duration: fr.Duration,
		}

		if fr.Err == nil {
			source := sourceName(fr.Config, fr.Metadata)
			report.Title = source
			if fr.Metadata != nil {
				report.Link = fr.Metadata.Link
			}
			report.Fetched = len(fr.Items)

			items, skipped := p.filterer.Run(fr.Items, fr.Config, source)
			report.Skipped = skipped

			for _, item := range items {
				article, ok := p.BuildArticle(item, fr.Config, fr.Metadata, now)
				if !ok || seen[article.ID] {
					continue
				}
				seen[article.ID] = true
				merged = append(merged, article)
				report.Articles++
			}
		}

		result.Reports = append(result.Reports, report)
	}

	slices.SortStableFunc(merged, func(a, b Article) int {
		return b.PublishDate.Compare(a.PublishDate)
	})

	result.Articles, result.FellBack = p.relevance.Filter(merged)
	if result.FellBack {
		slog.Info("No relevant articles, keeping unfiltered set", "count", len(merged))
	}

	return result
}

// BuildArticle maps a feed item to an article. Items without a title are
// rejected.
func (p *Pipeline) BuildArticle(item Item, feedConfig *Config, metadata *Metadata, now time.Time) (Article, bool) {
	title := p.normalizer.Title(item.Title)
	if title == "" {
		return Article{}, false
	}

	source := sourceName(feedConfig, metadata)
	content := p.normalizer.Content(item.Content, item.Description)

	publishDate := now
	if item.PublishedAt != nil {
		publishDate = item.PublishedAt.UTC()
	} else if item.UpdatedAt != nil {
		publishDate = item.UpdatedAt.UTC()
	}

	sourceURL := item.Link
	if sourceURL == "" && metadata != nil {
		sourceURL = metadata.Link
	}

	return Article{
		ID:              ArticleID(item.GUID, item.Link, source, title),
		FeedName:        feedConfig.Name,
		Title:           title,
		Summary:         p.normalizer.Summary(item.Description, item.Content),
		Content:         content,
		ImageURL:        p.images.Run(item),
		SourceURL:       sourceURL,
		SourceName:      source,
		Category:        cmp.Or(feedConfig.Category, DefaultCategory),
		PublishDate:     publishDate,
		ReadTimeMinutes: ReadTime(content, p.minReadTime),
		LastFetchDate:   now,
	}, true
}

func sourceName(feedConfig *Config, metadata *Metadata) string {
	var channel string
	if metadata != nil {
		channel = metadata.Title
	}
	return cmp.Or(feedConfig.Title, channel, feedConfig.Name)
}
