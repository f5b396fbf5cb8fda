package imagefeed

import (
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/mmcdole/gofeed"

	"github.com/feedmill/feedmill/internal/feedio"
	"github.com/feedmill/feedmill/internal/store"
)

// maxItems bounds how many of the newest source items get scanned.
const maxItems = 10

// Transform fetches the source feed, scans its newest items for their
// largest image, and serializes the derived feed. A source fetch or parse
// failure fails the whole call; a failed article scan only omits that item.
func (s *Server) Transform(feedURL string) (string, error) {
	data, err := s.client.Bytes(feedURL)
	if err != nil {
		return "", fmt.Errorf("fetching source feed: %w", err)
	}
	source, err := feedio.Parse(data)
	if err != nil {
		return "", err
	}

	items := feedio.Latest(source.Items, maxItems)

	// All retained items scan concurrently; the results slice keeps feed
	// order. Failed scans leave ok=false and drop out below.
	type result struct {
		entry feedio.Entry
		ok    bool
	}
	results := make([]result, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item *gofeed.Item) {
			defer wg.Done()
			entry, err := s.scanItem(item)
			if err != nil {
				log.Printf("skipping %q: %v", feedio.ItemTitle(item), err)
				return
			}
			results[i] = result{entry: entry, ok: true}
		}(i, item)
	}
	wg.Wait()

	var entries []feedio.Entry
	for _, r := range results {
		if r.ok {
			entries = append(entries, r.entry)
		}
	}

	title := source.Title
	if title == "" {
		title = feedURL
	}
	return feedio.BuildRSS(title+" (images)", "http://"+s.externalHost+"/", source.Description, entries)
}

// scanItem resolves one article to its largest image, caches the selection
// under the item's guid, and builds the derived entry pointing at the
// viewer endpoint.
func (s *Server) scanItem(item *gofeed.Item) (feedio.Entry, error) {
	if item.Link == "" {
		return feedio.Entry{}, fmt.Errorf("item has no link")
	}

	imageURL, err := s.scanner.Scan(item.Link)
	if err != nil {
		return feedio.Entry{}, err
	}

	guid := feedio.ItemGUID(item)
	if err := s.articles.Put(store.Article{
		GUID:        guid,
		ImageURL:    imageURL,
		Title:       feedio.ItemTitle(item),
		Description: item.Description,
	}); err != nil {
		return feedio.Entry{}, fmt.Errorf("caching selection: %w", err)
	}

	return feedio.Entry{
		Title:       feedio.ItemTitle(item),
		Link:        fmt.Sprintf("http://%s/article?guid=%s", s.externalHost, url.QueryEscape(guid)),
		GUID:        guid,
		Description: item.Description,
		Enclosure:   imageURL,
		Date:        feedio.ItemDate(item),
	}, nil
}
