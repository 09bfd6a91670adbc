package feed

import (
	"cmp"
	"crypto/sha256"
	"fmt"
	"strings"
)

// ArticleID derives a stable id from the guid, else the link. Items with
// neither are keyed by source and title so they still converge on refresh.
func ArticleID(guid, link, source, title string) string {
	key := cmp.Or(strings.TrimSpace(guid), strings.TrimSpace(link))
	if key == "" {
		key = strings.TrimSpace(source) + "|" + strings.TrimSpace(title)
	}
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h[:16])
}
