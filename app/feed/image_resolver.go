package feed

import (
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

const fallbackImageParams = "?auto=format&fit=crop&w=1200&q=80"

var FallbackImagePool = []string{
	"https://images.unsplash.com/photo-1518611012118-696072aa579a" + fallbackImageParams,
	"https://images.unsplash.com/photo-1524504388940-b1c1722653e1" + fallbackImageParams,
	"https://images.unsplash.com/photo-1441974231531-c6227db76b6e" + fallbackImageParams,
	"https://images.unsplash.com/photo-1506126613408-eca07ce68773" + fallbackImageParams,
	"https://images.unsplash.com/photo-1487412720507-e7ab37603c6f" + fallbackImageParams,
}

type ImageResolver struct {
	pool []string
}

func NewImageResolver() *ImageResolver {
	return &ImageResolver{pool: FallbackImagePool}
}

// Run picks the display image of an item: the structured image, then the
// first <img> of the content, then of the description, then a pool image
// chosen by hashing the item key.
func (r *ImageResolver) Run(item Item) string {
	if u, ok := normalizeImageURL(item.ImageURL); ok {
		return u
	}
	if u, ok := normalizeImageURL(firstImageSrc(item.Content)); ok {
		return u
	}
	if u, ok := normalizeImageURL(firstImageSrc(item.Description)); ok {
		return u
	}
	return r.Fallback(item.GUID, item.Link, item.Title)
}

// Fallback maps the first non-empty key to a pool image. With no key at all
// a random one is used, so only keyless items vary between runs.
func (r *ImageResolver) Fallback(keys ...string) string {
	if len(r.pool) == 0 {
		return ""
	}

	key := ""
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			key = k
			break
		}
	}
	if key == "" {
		key = uuid.NewString()
	}

	h := fnv.New32a()
	h.Write([]byte(key))
	return r.pool[h.Sum32()%uint32(len(r.pool))]
}

func firstImageSrc(body string) string {
	if !strings.Contains(body, "<img") && !strings.Contains(body, "<IMG") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}

// normalizeImageURL accepts absolute http(s) URLs and rewrites
// protocol-relative ones to https.
func normalizeImageURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw, true
	default:
		return "", false
	}
}
