package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/menofeed/app/cfg"
)

func setupTestConfig(baseURL string) {
	cfg.Set(&cfg.Cfg{Port: "8080", BaseUrl: baseURL, Version: "test"})
}

func sampleArticles() []Article {
	published := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	return []Article{
		{
			ID:          "a1",
			Title:       "Hot flashes & sleep",
			Summary:     "Tips for cooler nights",
			Content:     "<b>Cool</b> the room.\n\n• Layers",
			ImageURL:    "https://images.example.com/a.jpg",
			SourceURL:   "https://www.themenopausecharity.org/sleep",
			SourceName:  "The Menopause Charity",
			Category:    "Menopause",
			PublishDate: published,
		},
		{
			ID:          "a2",
			Title:       "Bone health",
			SourceURL:   "not a url",
			Category:    "Women's Health",
			PublishDate: published.Add(-24 * time.Hour),
		},
	}
}

func TestGenerateRSS(t *testing.T) {
	setupTestConfig("https://articles.example.com")

	rss, err := NewGenerator().Run(sampleArticles())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<title>Menofeed</title>`,
		`<link>https://articles.example.com</link>`,
		`<atom:link href="https://articles.example.com/feeds/articles.xml" rel="self" type="application/rss+xml" />`,
		`<generator>Menofeed/test</generator>`,
		`<lastBuildDate>Mon, 03 Jul 2023 10:00:00 +0000</lastBuildDate>`,
		`<guid isPermaLink="false">a1</guid>`,
		`<title>Hot flashes &amp; sleep</title>`,
		`<link>https://www.themenopausecharity.org/sleep</link>`,
		`<description>Tips for cooler nights</description>`,
		`<content:encoded><![CDATA[<b>Cool</b> the room.`,
		`<category>Menopause</category>`,
		`<source url="https://www.themenopausecharity.org/sleep">The Menopause Charity</source>`,
		`<enclosure url="https://images.example.com/a.jpg" length="0" type="image/jpeg" />`,
		`<description>No description available</description>`,
	}
	for _, want := range expected {
		if !strings.Contains(rss, want) {
			t.Errorf("Expected RSS to contain %s", want)
		}
	}

	if strings.Contains(rss, "<link>not a url</link>") {
		t.Error("Expected invalid source URL to be omitted")
	}
	if strings.Count(rss, "<item>") != 2 {
		t.Errorf("Expected 2 items, got %d", strings.Count(rss, "<item>"))
	}

	var doc struct {
		XMLName xml.Name `xml:"rss"`
	}
	if err := xml.Unmarshal([]byte(rss), &doc); err != nil {
		t.Errorf("Expected well-formed XML, got: %v", err)
	}
}

func TestGenerateWithoutBaseURL(t *testing.T) {
	setupTestConfig("")

	rss, err := NewGenerator().Run(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, `href="http://localhost:8080/feeds/articles.xml"`) {
		t.Error("Expected self link to fall back to localhost")
	}
	if strings.Contains(rss, "<item>") {
		t.Error("Expected no items")
	}
	if !strings.Contains(rss, "<lastBuildDate>") {
		t.Error("Expected lastBuildDate for empty feed")
	}
}

func TestGenerateEscapesCDATATerminator(t *testing.T) {
	setupTestConfig("")

	articles := []Article{{ID: "x", Title: "T", Content: "a ]]> b", PublishDate: time.Now()}}
	rss, _ := NewGenerator().Run(articles)

	if strings.Contains(rss, "a ]]> b") {
		t.Error("Expected CDATA terminator in content to be split")
	}

	var doc struct {
		XMLName xml.Name `xml:"rss"`
	}
	if err := xml.Unmarshal([]byte(rss), &doc); err != nil {
		t.Errorf("Expected well-formed XML, got: %v", err)
	}
}

func TestIsURLMethod(t *testing.T) {
	generator := NewGenerator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com", true},
		{"http://example.com", true},
		{"ftp://example.com", false},
		{"example.com", false},
		{"http://", false},
		{"", false},
	}

	for _, test := range tests {
		if result := generator.isURL(test.input); result != test.expected {
			t.Errorf("isURL(%q) = %v, expected %v", test.input, result, test.expected)
		}
	}
}
