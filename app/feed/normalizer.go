package feed

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const SummaryLength = 200

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<(?:script|style)\b[^>]*>.*?(?:</(?:script|style)\s*>|$)`)
	anyTagRe      = regexp.MustCompile(`<[^>]*>`)
	decodedTagRe  = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)
	tagNameRe     = regexp.MustCompile(`^<\s*(/?)\s*([a-zA-Z][a-zA-Z0-9]*)`)
	attributionRe = regexp.MustCompile(`(?i)<(?:i|em)>\s*Submitted by[^<]*</(?:i|em)>`)
	brokenLineRe  = regexp.MustCompile(`([a-z])[ \t]*\n[ \t]*([a-z])`)
	spaceRunRe    = regexp.MustCompile(`[ \t\f\v\r]+`)
	spaceAroundNL = regexp.MustCompile(` *\n *`)
	excessNLRe    = regexp.MustCompile(`\n{3,}`)
	sentenceEndRe = regexp.MustCompile(`\.\s+([A-Z])`)
	bulletSpaceRe = regexp.MustCompile(`(?m)^•\s*`)
	emphasisTagRe = regexp.MustCompile(`</?[bi]>`)
	anyWhitespace = regexp.MustCompile(`\s+`)
)

// Normalizer turns feed HTML into the display convention used by the app:
// plain text with <b>/<i> emphasis, blank-line paragraphs and "• " bullets.
// It is text cleanup, not a sanitizer.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Content prefers the full content over the description and cleans it.
// When the cleaned body has no paragraph break, one is inserted after every
// ". " followed by a capital letter. That heuristic is best effort only.
func (n *Normalizer) Content(content, description string) string {
	raw := strings.TrimSpace(content)
	if raw == "" {
		raw = strings.TrimSpace(description)
	}
	if raw == "" {
		return ""
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = attributionRe.ReplaceAllString(raw, "")
	raw = brokenLineRe.ReplaceAllString(raw, "$1 $2")

	body := CleanHTML(raw)

	if !strings.Contains(body, "\n\n") {
		body = sentenceEndRe.ReplaceAllString(body, ".\n\n$1")
	}

	body = bulletSpaceRe.ReplaceAllString(body, "• ")
	body = excessNLRe.ReplaceAllString(body, "\n\n")

	return strings.TrimSpace(body)
}

// Summary is a plain single-line excerpt of the description, or of the
// content when the description is blank.
func (n *Normalizer) Summary(description, content string) string {
	src := description
	if strings.TrimSpace(src) == "" {
		src = content
	}
	return truncate(PlainText(src), SummaryLength)
}

func (n *Normalizer) Title(title string) string {
	return PlainText(title)
}

// CleanHTML strips every tag except <b> and <i>, mapping headings to bold
// blocks, paragraphs to blank lines, list items to bullets and <br> to a
// newline. Any "<...>" sequence counts as a tag, so broken markup degrades
// to text instead of failing. Markup that only appears once entities are
// decoded is stripped as well, and an unclosed <script> or <style> swallows
// the rest of the input.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}

	s = scriptBlockRe.ReplaceAllString(s, "")
	s = anyTagRe.ReplaceAllStringFunc(s, convertTag)

	s = html.UnescapeString(s)
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = decodedTagRe.ReplaceAllStringFunc(s, keepEmphasis)
	s = strings.ReplaceAll(s, "\u00a0", " ")

	s = spaceRunRe.ReplaceAllString(s, " ")
	s = spaceAroundNL.ReplaceAllString(s, "\n")
	s = excessNLRe.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(norm.NFC.String(s))
}

// PlainText is CleanHTML without emphasis tags and with all whitespace
// collapsed to single spaces.
func PlainText(s string) string {
	s = CleanHTML(s)
	s = emphasisTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(anyWhitespace.ReplaceAllString(s, " "))
}

func keepEmphasis(tag string) string {
	if emphasisTagRe.MatchString(tag) && len(tag) <= len("</b>") {
		return tag
	}
	return ""
}

func convertTag(tag string) string {
	m := tagNameRe.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	closing := m[1] == "/"
	name := strings.ToLower(m[2])

	switch name {
	case "b", "strong":
		if closing {
			return "</b>"
		}
		return "<b>"
	case "i", "em":
		if closing {
			return "</i>"
		}
		return "<i>"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		if closing {
			return "</b>\n\n"
		}
		return "\n\n<b>"
	case "p", "div", "blockquote", "section", "article", "figure", "table", "tr":
		return "\n\n"
	case "li":
		if closing {
			return ""
		}
		return "\n• "
	case "ul", "ol":
		return "\n"
	case "br", "hr":
		return "\n"
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}
