// Package feedio parses upstream RSS/Atom feeds and serializes derived ones.
// Upstream fields that malformed feeds omit (title, guid, dates) get explicit
// fallbacks here so the services never assume presence.
package feedio

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"github.com/gorilla/feeds"
	"github.com/mmcdole/gofeed"
)

// Parse decodes an already-fetched feed document.
func Parse(data []byte) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return feed, nil
}

// ItemGUID returns the item's guid, falling back to its link, then to a
// hash of title and date for feeds that supply neither.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	if item.Link != "" {
		return item.Link
	}
	h := sha256.Sum256([]byte(item.Title + ItemDate(item).Format(time.RFC3339)))
	return fmt.Sprintf("%x", h[:16])
}

// ItemTitle returns the item title, empty when absent.
func ItemTitle(item *gofeed.Item) string {
	return item.Title
}

// ItemDate returns the publication date, falling back to the update date.
// Items with neither report the zero time.
func ItemDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// SortByDateDesc orders items newest first. Items with no parseable date
// carry the zero time and sink to the end; their relative order is
// unspecified.
func SortByDateDesc(items []*gofeed.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return ItemDate(items[i]).After(ItemDate(items[j]))
	})
}

// Latest sorts items newest first and keeps at most n.
func Latest(items []*gofeed.Item, n int) []*gofeed.Item {
	sorted := make([]*gofeed.Item, len(items))
	copy(sorted, items)
	SortByDateDesc(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Entry is one item of a derived feed.
type Entry struct {
	Title       string
	Link        string
	GUID        string
	Description string
	Enclosure   string // image URL; empty means no enclosure
	Date        time.Time
}

// BuildRSS serializes a derived feed.
func BuildRSS(title, link, description string, entries []Entry) (string, error) {
	out := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: description,
		Created:     time.Now(),
	}
	for _, e := range entries {
		item := &feeds.Item{
			Title:       e.Title,
			Link:        &feeds.Link{Href: e.Link},
			Id:          e.GUID,
			Description: e.Description,
			Created:     e.Date,
		}
		if e.Enclosure != "" {
			item.Enclosure = &feeds.Enclosure{
				Url:    e.Enclosure,
				Type:   enclosureType(e.Enclosure),
				Length: "0",
			}
		}
		out.Items = append(out.Items, item)
	}
	rss, err := out.ToRss()
	if err != nil {
		return "", fmt.Errorf("serializing feed: %w", err)
	}
	return rss, nil
}

func enclosureType(url string) string {
	if len(url) >= 4 && url[len(url)-4:] == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}
