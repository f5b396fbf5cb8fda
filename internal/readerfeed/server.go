package readerfeed

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/mmcdole/gofeed"

	"github.com/feedmill/feedmill/internal/feedio"
	"github.com/feedmill/feedmill/internal/fetch"
)

// maxItems bounds how many of the newest source items get extracted.
const maxItems = 10

// Server holds the readerfeed service's collaborators.
type Server struct {
	client *fetch.Client
}

// NewServer wires the service.
func NewServer(client *fetch.Client) *Server {
	return &Server{client: client}
}

// Routes returns the service handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleFeed)
	mux.HandleFunc("/epub", s.handleEpub)
	return allowAllOrigins(mux)
}

func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	feedURL := r.URL.Query().Get("feed")
	if feedURL == "" {
		http.Error(w, "missing required query parameter: feed", http.StatusBadRequest)
		return
	}
	markdown := r.URL.Query().Get("format") == "markdown"

	rss, err := s.Transform(feedURL, markdown)
	if err != nil {
		log.Printf("transforming %s: %v", feedURL, err)
		http.Error(w, "failed to build reader feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	fmt.Fprint(w, rss)
}

func (s *Server) handleEpub(w http.ResponseWriter, r *http.Request) {
	feedURL := r.URL.Query().Get("feed")
	if feedURL == "" {
		http.Error(w, "missing required query parameter: feed", http.StatusBadRequest)
		return
	}

	source, extracted, err := s.extractAll(feedURL)
	if err != nil {
		log.Printf("extracting %s: %v", feedURL, err)
		http.Error(w, "failed to build epub", http.StatusInternalServerError)
		return
	}

	title := source.Title
	if title == "" {
		title = feedURL
	}

	articles := make([]article, len(extracted))
	for i, ex := range extracted {
		articles[i] = ex.article
	}

	// Build into memory first so a failed build can still become a 500.
	var buf bytes.Buffer
	if err := writeEpub(articles, title, &buf); err != nil {
		log.Printf("building epub for %s: %v", feedURL, err)
		http.Error(w, "failed to build epub", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/epub+zip")
	w.Write(buf.Bytes())
}

// Transform fetches the source feed and replaces each retained item's
// description with extracted article content. Items whose extraction fails
// are omitted.
func (s *Server) Transform(feedURL string, markdown bool) (string, error) {
	source, articles, err := s.extractAll(feedURL)
	if err != nil {
		return "", err
	}

	var entries []feedio.Entry
	for _, a := range articles {
		content := a.Content
		if markdown {
			md, err := toMarkdown(content)
			if err != nil {
				log.Printf("skipping %q: %v", a.Title, err)
				continue
			}
			content = md
		}
		entries = append(entries, feedio.Entry{
			Title:       a.Title,
			Link:        a.item.Link,
			GUID:        feedio.ItemGUID(a.item),
			Description: content,
			Date:        feedio.ItemDate(a.item),
		})
	}

	title := source.Title
	if title == "" {
		title = feedURL
	}
	return feedio.BuildRSS(title+" (full text)", feedURL, source.Description, entries)
}

// extractedItem pairs an extraction with its source feed item.
type extractedItem struct {
	article
	item *gofeed.Item
}

// extractAll fetches and parses the source feed, then extracts the newest
// items concurrently. Per-item failures only drop that item.
func (s *Server) extractAll(feedURL string) (*gofeed.Feed, []extractedItem, error) {
	data, err := s.client.Bytes(feedURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching source feed: %w", err)
	}
	source, err := feedio.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	items := feedio.Latest(source.Items, maxItems)

	type result struct {
		ex extractedItem
		ok bool
	}
	results := make([]result, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		if item.Link == "" {
			continue
		}
		wg.Add(1)
		go func(i int, item *gofeed.Item) {
			defer wg.Done()
			a, err := extract(s.client, item.Link)
			if err != nil {
				log.Printf("skipping %q: %v", feedio.ItemTitle(item), err)
				return
			}
			if a.Title == "" {
				a.Title = feedio.ItemTitle(item)
			}
			results[i] = result{ex: extractedItem{article: a, item: item}, ok: true}
		}(i, item)
	}
	wg.Wait()

	var out []extractedItem
	for _, r := range results {
		if r.ok {
			out = append(out, r.ex)
		}
	}
	return source, out, nil
}
