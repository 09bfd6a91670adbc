package feed

import (
	"testing"
)

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Hot flashes explained", Description: "Test description"},
		{Title: "Sleep and hormones", Description: "Another description"},
	}

	kept, skipped := filterer.Run(items, &Config{Name: "test"}, "Test Source")

	if len(kept) != 2 {
		t.Errorf("Expected 2 items, got %d", len(kept))
	}
	if skipped != 0 {
		t.Errorf("Expected 0 skipped, got %d", skipped)
	}
}

func TestFilterer_TitleExclude(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Pelvic floor trainers from INTIMINA"},
		{Title: "Perimenopause and mood"},
	}

	feedConfig := &Config{
		Name: "test",
		Filters: []ConfigFilter{
			{Field: "title", Excludes: []string{"intimina"}},
		},
	}

	kept, skipped := filterer.Run(items, feedConfig, "Some Blog")

	if len(kept) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(kept))
	}
	if kept[0].Title != "Perimenopause and mood" {
		t.Errorf("Expected remaining item 'Perimenopause and mood', got '%s'", kept[0].Title)
	}
	if skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", skipped)
	}
}

func TestFilterer_SourceExcludeDropsWholeFeed(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "One"},
		{Title: "Two"},
	}

	feedConfig := &Config{
		Name: "test",
		Filters: []ConfigFilter{
			{Field: "source", Excludes: []string{"intimina"}},
		},
	}

	kept, skipped := filterer.Run(items, feedConfig, "Intimina Blog")
	if len(kept) != 0 {
		t.Errorf("Expected 0 items, got %d", len(kept))
	}
	if skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", skipped)
	}

	kept, _ = filterer.Run(items, feedConfig, "Menopause Charity")
	if len(kept) != 2 {
		t.Errorf("Expected 2 items for other source, got %d", len(kept))
	}
}

func TestFilterer_IncludeRules(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Weekly roundup", Categories: []string{"Menopause", "News"}},
		{Title: "Company party", Categories: []string{"Events"}},
		{Title: "Bone health", Authors: []string{"Dr. Smith"}},
	}

	tests := []struct {
		name   string
		filter ConfigFilter
		want   []string
	}{
		{
			name:   "categories include",
			filter: ConfigFilter{Field: "categories", Includes: []string{"menopause"}},
			want:   []string{"Weekly roundup"},
		},
		{
			name:   "authors include",
			filter: ConfigFilter{Field: "authors", Includes: []string{"smith"}},
			want:   []string{"Bone health"},
		},
		{
			name:   "include and exclude",
			filter: ConfigFilter{Field: "title", Includes: []string{"o"}, Excludes: []string{"party"}},
			want:   []string{"Weekly roundup", "Bone health"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, _ := filterer.Run(items, &Config{Name: "test", Filters: []ConfigFilter{tt.filter}}, "Source")
			if len(kept) != len(tt.want) {
				t.Fatalf("Expected %d items, got %d", len(tt.want), len(kept))
			}
			for i, title := range tt.want {
				if kept[i].Title != title {
					t.Errorf("Expected item %d to be '%s', got '%s'", i, title, kept[i].Title)
				}
			}
		})
	}
}

func TestFilterer_GetFieldValue(t *testing.T) {
	filterer := NewFilterer()

	item := Item{
		Title:       "Title",
		Description: "Description",
		Content:     "Content",
		Link:        "https://example.com/a",
		Authors:     []string{"Ann", "Bea"},
		Categories:  []string{"Health", "Sleep"},
	}

	tests := []struct {
		field string
		want  string
	}{
		{"title", "Title"},
		{"description", "Description"},
		{"content", "Content"},
		{"link", "https://example.com/a"},
		{"authors", "Ann Bea"},
		{"categories", "Health Sleep"},
		{"source", "The Source"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		if got := filterer.getFieldValue(item, "The Source", tt.field); got != tt.want {
			t.Errorf("Field %s: expected '%s', got '%s'", tt.field, tt.want, got)
		}
	}
}
