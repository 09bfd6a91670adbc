package feed

import (
	"strings"

	"golang.org/x/text/cases"
)

var DefaultTopicKeywords = []string{
	"menopause", "perimenopause", "postmenopause",
	"hot flash", "hot flush", "night sweat",
	"hormone", "estrogen", "progesterone",
	"women's health", "aging", "midlife",
	"mood swing", "vaginal dryness", "sleep issue",
	"osteoporosis", "weight gain", "libido",
	"sexual health", "heart health", "bone health",
	"cognitive", "memory",
}

var DefaultTopicMarkers = []string{"menopause"}

// Relevance decides topical fit by substring match on case-folded text.
type Relevance struct {
	keywords []string
	markers  []string
}

// NewRelevance uses the default lists for nil or empty arguments.
func NewRelevance(keywords, markers []string) *Relevance {
	if len(keywords) == 0 {
		keywords = DefaultTopicKeywords
	}
	if len(markers) == 0 {
		markers = DefaultTopicMarkers
	}

	return &Relevance{
		keywords: foldAll(keywords),
		markers:  foldAll(markers),
	}
}

func (r *Relevance) IsRelevant(article Article) bool {
	// a Caser carries state, so each call folds with its own
	fold := cases.Fold()

	text := fold.String(article.Title + " " + article.Summary)
	for _, k := range r.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}

	category := fold.String(article.Category)
	for _, m := range r.markers {
		if strings.Contains(category, m) {
			return true
		}
	}

	return false
}

// Filter keeps the relevant articles in order. When none survive out of a
// non-empty input, the input is returned unchanged and fellBack is true.
func (r *Relevance) Filter(articles []Article) ([]Article, bool) {
	kept := make([]Article, 0, len(articles))
	for _, a := range articles {
		if r.IsRelevant(a) {
			kept = append(kept, a)
		}
	}

	if len(kept) == 0 && len(articles) > 0 {
		return articles, true
	}
	return kept, false
}

func foldAll(terms []string) []string {
	fold := cases.Fold()
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, fold.String(t))
	}
	return out
}
