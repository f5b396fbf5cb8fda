package imagepick

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/feedmill/feedmill/internal/fetch"
)

// ErrNoCandidates means the article page contains no <img> tags with a src.
var ErrNoCandidates = errors.New("no image candidates on page")

// imageExts is the download allow-list. Matching is an exact, case-sensitive
// suffix test; anything else becomes a placeholder candidate.
var imageExts = []string{".jpg", ".png"}

// Scanner resolves an article page to its largest image.
type Scanner struct {
	client *fetch.Client
}

// NewScanner builds a Scanner around the given fetch client.
func NewScanner(client *fetch.Client) *Scanner {
	return &Scanner{client: client}
}

// Scan fetches the article page, downloads all allow-listed image candidates
// concurrently, and returns the src of the one with the largest pixel area,
// exactly as it appeared in the page markup. Page fetch failures and any
// individual download failure abort the whole scan.
func (s *Scanner) Scan(pageURL string) (string, error) {
	body, base, err := s.client.Page(pageURL)
	if err != nil {
		return "", err
	}

	srcs, err := imageSources(body)
	if err != nil {
		return "", err
	}
	if len(srcs) == 0 {
		return "", ErrNoCandidates
	}

	// Candidates keep their page order; non-matching srcs stay in the list
	// as placeholders with no data so selection indexes line up.
	candidates := make([]Candidate, len(srcs))
	errs := make([]error, len(srcs))
	var wg sync.WaitGroup
	for i, src := range srcs {
		candidates[i].URL = src
		if !allowedExt(src) {
			continue
		}
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			data, err := s.client.Bytes(resolveRef(base, src))
			if err != nil {
				errs[i] = fmt.Errorf("downloading %s: %w", src, err)
				return
			}
			candidates[i].Data = data
		}(i, src)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return "", err
		}
	}

	winner, err := Largest(candidates)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}

func allowedExt(src string) bool {
	for _, ext := range imageExts {
		if strings.HasSuffix(src, ext) {
			return true
		}
	}
	return false
}

// resolveRef makes a page-relative src fetchable. The unresolved src is what
// gets stored and reported; resolution only happens for the download itself.
func resolveRef(base *url.URL, src string) string {
	if base == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

// imageSources parses the page and collects the src attribute of every
// <img> element, in document order.
func imageSources(body []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page HTML: %w", err)
	}

	var srcs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			if src := dom.GetAttributeOr(n, "src", ""); src != "" {
				srcs = append(srcs, src)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return srcs, nil
}
