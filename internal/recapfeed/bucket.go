package recapfeed

import (
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/feedmill/feedmill/internal/feedio"
)

// Bucket groups the items of a source feed that share a UTC publication day.
type Bucket struct {
	Day   string // YYYY-MM-DD
	End   time.Time
	Items []*gofeed.Item
}

// bucketByDay groups items by UTC publication day, newest day first. Items
// with no parseable date have no day to recap and are dropped.
func bucketByDay(items []*gofeed.Item) []Bucket {
	byDay := map[string]*Bucket{}
	for _, item := range items {
		date := feedio.ItemDate(item)
		if date.IsZero() {
			continue
		}
		day := date.UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			y, m, d := date.UTC().Date()
			b = &Bucket{
				Day: day,
				End: time.Date(y, m, d, 23, 59, 59, 0, time.UTC),
			}
			byDay[day] = b
		}
		b.Items = append(b.Items, item)
	}

	buckets := make([]Bucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day > buckets[j].Day
	})
	return buckets
}
