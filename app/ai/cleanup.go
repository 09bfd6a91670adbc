package ai

import (
	"regexp"
	"strings"
)

var (
	excessNLRe     = regexp.MustCompile(`\n{3,}`)
	headerRe       = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	listItemRe     = regexp.MustCompile(`(?m)^[ \t]*[*-][ \t]+(.+)$`)
	numberedItemRe = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+(.+)$`)
	boldStarRe     = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	boldUnderRe    = regexp.MustCompile(`__([^_\n]+?)__`)
	italicStarRe   = regexp.MustCompile(`\*([^*\n]+?)\*`)
	italicUnderRe  = regexp.MustCompile(`\b_([^_\n]+?)_\b`)
	codeRe         = regexp.MustCompile("`([^`\n]+?)`")
	linkRe         = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	strayMarkRe    = regexp.MustCompile(`\*+|__+`)
	spaceRunRe     = regexp.MustCompile(`[ \t]{2,}`)
)

// CleanMarkdown reduces a model reply to plain text with "• " bullets and
// blank-line paragraphs. List markers are rewritten before emphasis so a
// leading "* " is never read as italics.
func CleanMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = excessNLRe.ReplaceAllString(s, "\n\n")

	s = headerRe.ReplaceAllString(s, "$1")
	s = listItemRe.ReplaceAllString(s, "• $1")
	s = numberedItemRe.ReplaceAllString(s, "• $1")

	s = boldStarRe.ReplaceAllString(s, "$1")
	s = boldUnderRe.ReplaceAllString(s, "$1")
	s = italicStarRe.ReplaceAllString(s, "$1")
	s = italicUnderRe.ReplaceAllString(s, "$1")
	s = codeRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")
	s = strayMarkRe.ReplaceAllString(s, "")

	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
