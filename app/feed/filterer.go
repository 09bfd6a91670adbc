package feed

import (
	"log/slog"
	"strings"
)

// validFilterFields lists the item fields a feed YAML filter may target.
// "source" matches the display source name of the feed.
var validFilterFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"authors":     true,
	"link":        true,
	"categories":  true,
	"source":      true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run drops the items rejected by the feed's include/exclude rules and
// reports how many were skipped.
func (f *Filterer) Run(items []Item, feedConfig *Config, source string) ([]Item, int) {
	if len(feedConfig.Filters) == 0 {
		return items, 0
	}

	kept := make([]Item, 0, len(items))
	skipped := 0
	for _, item := range items {
		if reason, rejected := f.applyFilters(item, source, feedConfig.Filters); rejected {
			slog.Debug("Item skipped by feed filter", "feed", feedConfig.Name, "title", item.Title, "reason", reason)
			skipped++
			continue
		}
		kept = append(kept, item)
	}

	return kept, skipped
}

func (f *Filterer) applyFilters(item Item, source string, filters []ConfigFilter) (string, bool) {
	for _, filter := range filters {
		value := f.getFieldValue(item, source, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return filter.Field + " contains '" + exclude + "'", true
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return filter.Field + " matches no include rule", true
			}
		}
	}

	return "", false
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item Item, source, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "authors":
		return strings.Join(item.Authors, " ")
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	case "source":
		return source
	default:
		return ""
	}
}
