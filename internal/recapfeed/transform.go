package recapfeed

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/feedmill/feedmill/internal/feedio"
	"github.com/feedmill/feedmill/internal/store"
)

const recapPrompt = `Write a single-paragraph recap of these %d articles published on %s. Be factual and concise; no headlines, no bullet points.

%s`

// Transform fetches the source feed, buckets its items by publication day,
// and emits one recap entry per day. Recaps already stored for a day are
// reused as long as the day's item count is unchanged; days whose
// chat-completion call fails are omitted from the output.
func (s *Server) Transform(ctx context.Context, feedURL string) (string, error) {
	data, err := s.client.Bytes(feedURL)
	if err != nil {
		return "", fmt.Errorf("fetching source feed: %w", err)
	}
	source, err := feedio.Parse(data)
	if err != nil {
		return "", err
	}

	var entries []feedio.Entry
	for _, bucket := range bucketByDay(source.Items) {
		summary, err := s.recapDay(ctx, feedURL, bucket)
		if err != nil {
			log.Printf("skipping day %s: %v", bucket.Day, err)
			continue
		}
		entries = append(entries, feedio.Entry{
			Title:       "Recap for " + bucket.Day,
			Link:        feedURL,
			GUID:        feedURL + "#" + bucket.Day,
			Description: summary,
			Date:        bucket.End,
		})
	}

	title := source.Title
	if title == "" {
		title = feedURL
	}
	return feedio.BuildRSS(title+" (daily recap)", feedURL, source.Description, entries)
}

// recapDay returns the stored recap for (feed, day) when the item count
// still matches, otherwise generates and stores a fresh one.
func (s *Server) recapDay(ctx context.Context, feedURL string, bucket Bucket) (string, error) {
	if cached, ok := s.recaps.Get(feedURL, bucket.Day); ok && cached.ItemCount == len(bucket.Items) {
		return cached.Summary, nil
	}

	var lines []string
	for _, item := range bucket.Items {
		line := "- " + feedio.ItemTitle(item)
		if item.Description != "" {
			line += ": " + item.Description
		}
		lines = append(lines, line)
	}
	prompt := fmt.Sprintf(recapPrompt, len(bucket.Items), bucket.Day, strings.Join(lines, "\n"))

	summary, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)

	if err := s.recaps.Put(store.Recap{
		Feed:      feedURL,
		Day:       bucket.Day,
		Summary:   summary,
		ItemCount: len(bucket.Items),
	}); err != nil {
		return "", fmt.Errorf("caching recap: %w", err)
	}
	return summary, nil
}
