package feed

import (
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title> The Menopause Charity </title>
    <link>https://www.themenopausecharity.org</link>
    <description>Educational articles</description>
    <language>en-gb</language>
    <image>
      <url>https://www.themenopausecharity.org/icon.png</url>
      <title>The Menopause Charity</title>
      <link>https://www.themenopausecharity.org</link>
    </image>
    <item>
      <title>Understanding perimenopause</title>
      <link>https://www.themenopausecharity.org/perimenopause</link>
      <description>Short teaser</description>
      <content:encoded><![CDATA[<p>Full body</p>]]></content:encoded>
      <guid>peri-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>editor@example.com (Editor)</author>
      <category>Menopause</category>
      <category>Hormones</category>
    </item>
    <item>
      <title>Sleep and hot flushes</title>
      <link>https://www.themenopausecharity.org/sleep</link>
      <description>Sleep tips</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "The Menopause Charity" {
		t.Errorf("Expected trimmed title 'The Menopause Charity', got: %s", metadata.Title)
	}
	if metadata.Language != "en-gb" {
		t.Errorf("Expected language 'en-gb', got: %s", metadata.Language)
	}
	if metadata.ImageURL != "https://www.themenopausecharity.org/icon.png" {
		t.Errorf("Expected channel image URL, got: %s", metadata.ImageURL)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	item1 := items[0]
	if item1.GUID != "peri-1" {
		t.Errorf("Expected GUID 'peri-1', got: %s", item1.GUID)
	}
	if item1.Content != "<p>Full body</p>" {
		t.Errorf("Expected content:encoded body, got: %s", item1.Content)
	}
	if item1.Description != "Short teaser" {
		t.Errorf("Expected description 'Short teaser', got: %s", item1.Description)
	}
	if item1.PublishedAt == nil {
		t.Error("Expected published date to be parsed")
	}
	if len(item1.Categories) != 2 {
		t.Errorf("Expected 2 categories, got: %d", len(item1.Categories))
	}
	if len(item1.Authors) != 1 {
		t.Errorf("Expected 1 author, got: %d", len(item1.Authors))
	}

	item2 := items[1]
	if item2.GUID != "https://www.themenopausecharity.org/sleep" {
		t.Errorf("Expected GUID to fall back to link, got: %s", item2.GUID)
	}
	if item2.PublishedAt != nil {
		t.Errorf("Expected no published date, got: %v", item2.PublishedAt)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Midi Health</title>
  <link href="https://www.joinmidi.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Estrogen and bone health</title>
    <link href="https://www.joinmidi.com/post/estrogen"/>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <content type="html">&lt;p&gt;Estrogen matters&lt;/p&gt;</content>
  </entry>
</feed>`

	parser := NewParser()
	metadata, items, err := parser.Run([]byte(atomData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Midi Health" {
		t.Errorf("Expected title 'Midi Health', got: %s", metadata.Title)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}

	item := items[0]
	if item.GUID != "urn:uuid:entry-1" {
		t.Errorf("Expected GUID 'urn:uuid:entry-1', got: %s", item.GUID)
	}
	if item.Link != "https://www.joinmidi.com/post/estrogen" {
		t.Errorf("Expected link, got: %s", item.Link)
	}
	if item.UpdatedAt == nil {
		t.Error("Expected updated date to be parsed")
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser()
	_, _, err := parser.Run([]byte("invalid xml"))

	if err == nil {
		t.Error("Expected error for invalid XML")
	}
}

func TestParseItemImageSources(t *testing.T) {
	rssData := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
	<title>Images</title>
	<link>https://example.com</link>
	<description>Image sources</description>
	<item>
		<title>Enclosure image</title>
		<link>https://example.com/1</link>
		<enclosure url="https://example.com/cover.jpg" length="200" type="image/jpeg" />
	</item>
	<item>
		<title>Media content</title>
		<link>https://example.com/2</link>
		<media:content url="https://example.com/media.jpg" medium="image" />
	</item>
	<item>
		<title>Media thumbnail</title>
		<link>https://example.com/3</link>
		<media:thumbnail url="https://example.com/thumb.jpg" />
	</item>
	<item>
		<title>No image</title>
		<link>https://example.com/4</link>
	</item>
</channel>
</rss>`

	parser := NewParser()
	_, items, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 4 {
		t.Fatalf("Expected 4 items, got: %d", len(items))
	}

	expected := []string{
		"https://example.com/cover.jpg",
		"https://example.com/media.jpg",
		"https://example.com/thumb.jpg",
		"",
	}

	for i, want := range expected {
		if items[i].ImageURL != want {
			t.Errorf("Item %d: expected image '%s', got '%s'", i, want, items[i].ImageURL)
		}
	}
}
