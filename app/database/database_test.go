package database

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Expected no error opening database, got: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Expected migrations to apply, got: %v", err)
	}

	return db
}

func testArticle(id string, publish time.Time) Article {
	return Article{
		ID:              id,
		FeedName:        "charity",
		Title:           "Article " + id,
		Summary:         "Summary " + id,
		Content:         "Content " + id,
		ImageURL:        "https://example.com/" + id + ".jpg",
		SourceURL:       "https://example.com/" + id,
		SourceName:      "The Menopause Charity",
		Category:        "Menopause",
		PublishDate:     publish,
		ReadTimeMinutes: 3,
		LastFetchDate:   time.Now().UTC(),
	}
}

func TestRunMigrationsTwice(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected no error on second run, got: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected version 2, got %d", version)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
}

func TestUpsertArticlesPreservesSavedFlag(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))
	published := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	if err := repo.UpsertArticles([]Article{testArticle("a", published)}); err != nil {
		t.Fatal(err)
	}

	found, err := repo.UpdateSavedStatus("a", true)
	if err != nil || !found {
		t.Fatalf("Expected article to be saved, got found=%v err=%v", found, err)
	}

	updated := testArticle("a", published)
	updated.Content = "Updated content"
	updated.IsSaved = false
	if err := repo.UpsertArticles([]Article{updated}); err != nil {
		t.Fatal(err)
	}

	article, err := repo.GetArticle("a")
	if err != nil {
		t.Fatal(err)
	}
	if article == nil {
		t.Fatal("Expected article to exist")
	}
	if !article.IsSaved {
		t.Error("Expected saved flag to survive re-ingestion")
	}
	if article.Content != "Updated content" {
		t.Errorf("Expected content to be updated, got '%s'", article.Content)
	}
	if !article.PublishDate.Equal(published) {
		t.Errorf("Expected publish date %v, got %v", published, article.PublishDate)
	}
}

func TestUpsertArticlesIdempotent(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))
	now := time.Now().UTC()

	batch := []Article{testArticle("a", now), testArticle("b", now.Add(-time.Hour))}
	for i := 0; i < 2; i++ {
		if err := repo.UpsertArticles(batch); err != nil {
			t.Fatal(err)
		}
	}

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 articles, got %d", count)
	}

	saved, err := repo.GetSavedArticles()
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 0 {
		t.Errorf("Expected no saved articles, got %d", len(saved))
	}
}

func TestGetRecentArticlesOrdering(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))
	same := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	other := testArticle("older", same.Add(-48*time.Hour))
	other.Category = "Women's Health"

	// z precedes y in merged order although both share a publish date
	if err := repo.UpsertArticles([]Article{
		testArticle("z", same),
		testArticle("y", same),
		other,
		testArticle("newest", same.Add(time.Hour)),
	}); err != nil {
		t.Fatal(err)
	}

	articles, err := repo.GetRecentArticles(0, "")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"newest", "z", "y", "older"}
	if len(articles) != len(want) {
		t.Fatalf("Expected %d articles, got %d", len(want), len(articles))
	}
	for i, id := range want {
		if articles[i].ID != id {
			t.Errorf("Position %d: expected '%s', got '%s'", i, id, articles[i].ID)
		}
	}

	limited, _ := repo.GetRecentArticles(2, "")
	if len(limited) != 2 {
		t.Errorf("Expected 2 articles with limit, got %d", len(limited))
	}

	filtered, _ := repo.GetRecentArticles(10, "Women's Health")
	if len(filtered) != 1 || filtered[0].ID != "older" {
		t.Errorf("Expected only 'older' in category, got %+v", filtered)
	}
}

func TestDeleteOldUnsaved(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))
	now := time.Now().UTC()

	stale := testArticle("stale", now)
	stale.LastFetchDate = now.AddDate(0, 0, -40)
	staleSaved := testArticle("stale-saved", now)
	staleSaved.LastFetchDate = now.AddDate(0, 0, -40)
	staleSaved.IsSaved = true
	fresh := testArticle("fresh", now)

	if err := repo.UpsertArticles([]Article{stale, staleSaved, fresh}); err != nil {
		t.Fatal(err)
	}

	deleted, err := repo.DeleteOldUnsaved(now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted article, got %d", deleted)
	}

	for id, exists := range map[string]bool{"stale": false, "stale-saved": true, "fresh": true} {
		article, err := repo.GetArticle(id)
		if err != nil {
			t.Fatal(err)
		}
		if (article != nil) != exists {
			t.Errorf("Article %s: expected exists=%v", id, exists)
		}
	}
}

func TestSavedStatus(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))
	now := time.Now().UTC()

	if err := repo.UpsertArticles([]Article{testArticle("a", now), testArticle("b", now)}); err != nil {
		t.Fatal(err)
	}

	found, err := repo.UpdateSavedStatus("missing", true)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Expected missing article to report not found")
	}

	repo.UpdateSavedStatus("a", true)
	repo.UpdateSavedStatus("b", true)

	saved, _ := repo.GetSavedArticles()
	if len(saved) != 2 {
		t.Fatalf("Expected 2 saved articles, got %d", len(saved))
	}

	cleared, err := repo.ClearSaved()
	if err != nil {
		t.Fatal(err)
	}
	if cleared != 2 {
		t.Errorf("Expected 2 cleared, got %d", cleared)
	}

	if article, _ := repo.GetArticle("missing"); article != nil {
		t.Error("Expected nil for missing article")
	}
}

func TestContentExtractionLifecycle(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))
	now := time.Now().UTC()

	short := testArticle("short", now)
	long := testArticle("long", now)
	long.Content = strings.Repeat("x", 700)
	other := testArticle("other", now)
	other.FeedName = "centre"

	if err := repo.UpsertArticles([]Article{short, long, other}); err != nil {
		t.Fatal(err)
	}

	pending, err := repo.GetArticlesForExtraction("charity", 600, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != "short" {
		t.Fatalf("Expected only 'short' pending, got %+v", pending)
	}

	if err := repo.UpdateExtractedContentAndStatus("short", "Full text", 6, ExtractionSuccess, &now, ""); err != nil {
		t.Fatal(err)
	}

	// an unchanged teaser must not replace the extracted text
	if err := repo.UpsertArticles([]Article{testArticle("short", now)}); err != nil {
		t.Fatal(err)
	}

	article, _ := repo.GetArticle("short")
	if article.Content != "Full text" || article.ReadTimeMinutes != 6 {
		t.Errorf("Expected extracted content to be kept, got '%s' (%d min)", article.Content, article.ReadTimeMinutes)
	}
	if article.ContentExtractionStatus != ExtractionSuccess || article.ContentExtractedAt == nil {
		t.Errorf("Expected success status with timestamp, got '%s'", article.ContentExtractionStatus)
	}

	if err := repo.UpdateExtractionStatus("other", ExtractionFailed, &now, "boom"); err != nil {
		t.Fatal(err)
	}
	failed, _ := repo.GetArticle("other")
	if failed.ContentExtractionError != "boom" {
		t.Errorf("Expected extraction error 'boom', got '%s'", failed.ContentExtractionError)
	}

	pending, _ = repo.GetArticlesForExtraction("charity", 600, 10)
	if len(pending) != 0 {
		t.Errorf("Expected nothing pending, got %d", len(pending))
	}
}

func TestUpsertChangedTeaserResetsExtraction(t *testing.T) {
	repo := NewArticleRepository(openTestDB(t))
	now := time.Now().UTC()

	first := testArticle("a1", now)
	first.Content = "teaser v1"
	if err := repo.UpsertArticles([]Article{first}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.UpdateSavedStatus("a1", true); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateExtractedContentAndStatus("a1", "extracted v1 full text", 5, ExtractionSuccess, &now, ""); err != nil {
		t.Fatal(err)
	}

	second := testArticle("a1", now)
	second.Content = "teaser v2 CORRECTED"
	second.ReadTimeMinutes = 1
	if err := repo.UpsertArticles([]Article{second}); err != nil {
		t.Fatal(err)
	}

	article, err := repo.GetArticle("a1")
	if err != nil {
		t.Fatal(err)
	}
	if !article.IsSaved {
		t.Error("Expected article to stay saved")
	}
	if article.Content != "teaser v2 CORRECTED" {
		t.Errorf("Expected updated content, got '%s'", article.Content)
	}
	if article.ReadTimeMinutes != 1 {
		t.Errorf("Expected read time 1, got %d", article.ReadTimeMinutes)
	}
	if article.ContentExtractionStatus != ExtractionPending {
		t.Errorf("Expected status '%s', got '%s'", ExtractionPending, article.ContentExtractionStatus)
	}
	if article.ContentExtractedAt != nil {
		t.Error("Expected extraction timestamp to be cleared")
	}

	pending, err := repo.GetArticlesForExtraction("charity", 600, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != "a1" {
		t.Errorf("Expected 'a1' queued for extraction again, got %+v", pending)
	}

	// the same teaser again keeps the newly extracted text
	if err := repo.UpdateExtractedContentAndStatus("a1", "extracted v2 full text", 6, ExtractionSuccess, &now, ""); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertArticles([]Article{second}); err != nil {
		t.Fatal(err)
	}
	article, _ = repo.GetArticle("a1")
	if article.Content != "extracted v2 full text" || article.ContentExtractionStatus != ExtractionSuccess {
		t.Errorf("Expected extracted v2 to be kept, got '%s' (%s)", article.Content, article.ContentExtractionStatus)
	}
}

func TestFeedRepository(t *testing.T) {
	repo := NewFeedRepository(openTestDB(t))

	if feed, err := repo.GetFeed("missing"); err != nil || feed != nil {
		t.Fatalf("Expected nil feed without error, got %v, %v", feed, err)
	}

	if err := repo.UpsertFeed("zeta", "https://example.com/z.xml"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertFeed("alpha", "https://example.com/a.xml"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertFeed("alpha", "https://example.com/a2.xml"); err != nil {
		t.Fatal(err)
	}

	count, _ := repo.GetFeedCount()
	if count != 2 {
		t.Errorf("Expected 2 feeds, got %d", count)
	}

	fetchedAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.UpdateFeedStatus("alpha", "Alpha", "https://example.com", fetchedAt, 7, nil); err != nil {
		t.Fatal(err)
	}

	feed, err := repo.GetFeed("alpha")
	if err != nil {
		t.Fatal(err)
	}
	if feed.FeedURL != "https://example.com/a2.xml" {
		t.Errorf("Expected updated URL, got '%s'", feed.FeedURL)
	}
	if feed.Title != "Alpha" || feed.ItemCount != 7 {
		t.Errorf("Expected title 'Alpha' with 7 items, got '%s' with %d", feed.Title, feed.ItemCount)
	}
	if feed.LastSuccessAt == nil || !feed.LastSuccessAt.Equal(fetchedAt) {
		t.Errorf("Expected last success %v, got %v", fetchedAt, feed.LastSuccessAt)
	}

	later := fetchedAt.Add(time.Hour)
	if err := repo.UpdateFeedStatus("alpha", "", "", later, 0, errors.New("HTTP error: 503")); err != nil {
		t.Fatal(err)
	}

	feed, _ = repo.GetFeed("alpha")
	if feed.LastError != "HTTP error: 503" {
		t.Errorf("Expected last error to be recorded, got '%s'", feed.LastError)
	}
	if feed.Title != "Alpha" || feed.ItemCount != 7 {
		t.Error("Expected failed fetch to keep previous title and count")
	}
	if !feed.LastFetchedAt.Equal(later) || !feed.LastSuccessAt.Equal(fetchedAt) {
		t.Errorf("Expected fetch and success times to diverge, got %v and %v", feed.LastFetchedAt, feed.LastSuccessAt)
	}

	feeds, _ := repo.GetFeeds()
	if len(feeds) != 2 || feeds[0].Name != "alpha" {
		t.Errorf("Expected feeds ordered by name, got %+v", feeds)
	}
}

func TestSuggestionRepository(t *testing.T) {
	repo := NewSuggestionRepository(openTestDB(t))
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		err := repo.InsertSuggestion(Suggestion{
			ID:        id,
			Title:     "Title " + id,
			Content:   "Content",
			Source:    "fallback",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	suggestions, err := repo.GetRecentSuggestions(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].ID != "third" || suggestions[1].ID != "second" {
		t.Errorf("Expected newest first, got %s, %s", suggestions[0].ID, suggestions[1].ID)
	}
}

func TestMetaRepository(t *testing.T) {
	repo := NewMetaRepository(openTestDB(t))
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	needs, err := repo.NeedsRefresh(time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}
	if !needs {
		t.Error("Expected refresh to be needed without history")
	}

	if err := repo.SetLastRefresh(now); err != nil {
		t.Fatal(err)
	}

	if needs, _ := repo.NeedsRefresh(time.Hour, now.Add(30*time.Minute)); needs {
		t.Error("Expected no refresh within interval")
	}
	if needs, _ := repo.NeedsRefresh(time.Hour, now.Add(61*time.Minute)); !needs {
		t.Error("Expected refresh after interval")
	}

	last, _ := repo.GetLastRefresh()
	if last == nil || !last.Equal(now) {
		t.Errorf("Expected last refresh %v, got %v", now, last)
	}
}
