// Package readerfeed serves the full-text derived feed: each item's
// description is replaced by readability-extracted article content, with
// optional CommonMark output and an EPUB bundle endpoint.
package readerfeed

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	readability "codeberg.org/readeck/go-readability"
	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"

	"github.com/feedmill/feedmill/internal/fetch"
)

// article is one extracted source item.
type article struct {
	Title   string
	URL     string
	Content string // extracted HTML
}

// extract fetches an article page and runs readability over it.
func extract(client *fetch.Client, pageURL string) (article, error) {
	body, parsed, err := client.Page(pageURL)
	if err != nil {
		return article{}, err
	}

	result, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return article{}, fmt.Errorf("readability extraction failed: %w", err)
	}
	if result.Content == "" {
		return article{}, fmt.Errorf("readability extracted no content from %s", pageURL)
	}

	return article{Title: result.Title, URL: pageURL, Content: result.Content}, nil
}

var (
	mdConverter     *converter.Converter
	mdConverterOnce sync.Once
)

// markdownConverter returns a shared converter that replaces base64 data URI
// images with alt-text placeholders instead of embedding the raw data URI.
func markdownConverter() *converter.Converter {
	mdConverterOnce.Do(func() {
		mdConverter = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		)
		mdConverter.Register.RendererFor("img", converter.TagTypeInline,
			func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
				src := dom.GetAttributeOr(n, "src", "")
				if !strings.HasPrefix(src, "data:") {
					// Regular URL, let the default commonmark handler take over.
					return converter.RenderTryNext
				}
				alt := strings.TrimSpace(dom.GetAttributeOr(n, "alt", ""))
				if alt != "" {
					w.WriteString("[Image: " + alt + "]")
				}
				return converter.RenderSuccess
			},
			converter.PriorityEarly,
		)
	})
	return mdConverter
}

// toMarkdown converts extracted article HTML to CommonMark.
func toMarkdown(htmlStr string) (string, error) {
	md, err := markdownConverter().ConvertString(htmlStr)
	if err != nil {
		return "", fmt.Errorf("markdown conversion: %w", err)
	}
	return strings.TrimSpace(md), nil
}
