package store

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "articles.json")
}

func TestArticles_GetMissing(t *testing.T) {
	s, err := OpenArticles(tempStorePath(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("never-written"); ok {
		t.Error("expected miss for unknown guid")
	}
}

func TestArticles_PutThenGet(t *testing.T) {
	s, err := OpenArticles(tempStorePath(t))
	if err != nil {
		t.Fatal(err)
	}

	a := Article{GUID: "g1", ImageURL: "http://x/i.png", Title: "T", Description: "d"}
	if err := s.Put(a); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get("g1")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got != a {
		t.Errorf("got %+v, want %+v", got, a)
	}
}

func TestArticles_UpsertKeepsCardinality(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenArticles(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put(Article{GUID: "g1", ImageURL: "http://x/old.png", Title: "old"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Article{GUID: "g2", ImageURL: "http://x/other.png", Title: "other"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Article{GUID: "g1", ImageURL: "http://x/new.png", Title: "new"}); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get("g1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.ImageURL != "http://x/new.png" || got.Title != "new" {
		t.Errorf("update not applied: %+v", got)
	}

	if n := len(s.file.Load()); n != 2 {
		t.Errorf("store holds %d records, want 2 (update must not duplicate)", n)
	}
}

func TestOpen_WipesExistingStore(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenArticles(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Article{GUID: "g1", ImageURL: "u", Title: "t"}); err != nil {
		t.Fatal(err)
	}

	// Reopening simulates a process restart: previous state is discarded.
	s2, err := OpenArticles(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s2.Get("g1"); ok {
		t.Error("expected empty store after reopen")
	}
}

func TestLoad_CorruptFileDegradesToEmpty(t *testing.T) {
	path := tempStorePath(t)
	s, err := OpenArticles(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("anything"); ok {
		t.Error("corrupt store should read as empty")
	}

	// Writing heals the store.
	if err := s.Put(Article{GUID: "g1", ImageURL: "u", Title: "t"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("g1"); !ok {
		t.Error("expected hit after healing write")
	}
}

func TestRecaps_UpsertByFeedAndDay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recaps.json")
	s, err := OpenRecaps(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Put(Recap{Feed: "http://f", Day: "2026-08-20", Summary: "v1", ItemCount: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Recap{Feed: "http://f", Day: "2026-08-21", Summary: "other", ItemCount: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Recap{Feed: "http://f", Day: "2026-08-20", Summary: "v2", ItemCount: 3}); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get("http://f", "2026-08-20")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Summary != "v2" || got.ItemCount != 3 {
		t.Errorf("update not applied: %+v", got)
	}
	if n := len(s.file.Load()); n != 2 {
		t.Errorf("store holds %d records, want 2", n)
	}

	if _, ok := s.Get("http://other", "2026-08-20"); ok {
		t.Error("expected miss for different feed")
	}
}
