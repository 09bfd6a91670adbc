package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/menofeed/app/cfg"
)

const (
	channelTitle       = "Menofeed"
	channelDescription = "Curated menopause and women's health articles"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders articles, newest first, as an RSS 2.0 document.
func (g *Generator) Run(articles []Article) (string, error) {
	var buf bytes.Buffer

	baseURL := cfg.Get().BaseUrl
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
	}

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channelTitle, 4)
	g.writeElement(&buf, "link", baseURL, 4)
	g.writeElement(&buf, "description", channelDescription, 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(baseURL+"/feeds/articles.xml")))

	lastBuildDate := time.Now()
	if len(articles) > 0 {
		lastBuildDate = articles[0].PublishDate
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Menofeed/%s", cfg.Get().Version), 4)
	g.writeElement(&buf, "language", "en", 4)

	for _, article := range articles {
		g.writeItem(&buf, article)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, article Article) {
	buf.WriteString("    <item>\n")

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">%s</guid>\n", article.ID))
	g.writeElement(buf, "title", article.Title, 6)

	if g.isURL(article.SourceURL) {
		g.writeElement(buf, "link", article.SourceURL, 6)
	}

	description := article.Summary
	if description == "" {
		description = "No description available"
	}
	g.writeElement(buf, "description", description, 6)

	if article.Content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(escapeCDATA(article.Content))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", article.PublishDate.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", article.Category, 6)

	if article.SourceName != "" && g.isURL(article.SourceURL) {
		buf.WriteString(fmt.Sprintf("      <source url=\"%s\">", html.EscapeString(article.SourceURL)))
		xml.EscapeText(buf, []byte(article.SourceName))
		buf.WriteString("</source>\n")
	}

	if g.isURL(article.ImageURL) {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"image/jpeg\" />\n",
			html.EscapeString(article.ImageURL)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}

// escapeCDATA splits any "]]>" so the section cannot be closed early.
func escapeCDATA(s string) string {
	return string(bytes.ReplaceAll([]byte(s), []byte("]]>"), []byte("]]]]><![CDATA[>")))
}
