// Package imagefeed serves the largest-image derived feed: every article of
// the source feed is resolved to its biggest image, cached, and re-published
// as a feed entry pointing at a viewer page.
package imagefeed

import (
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/feedmill/feedmill/internal/fetch"
	"github.com/feedmill/feedmill/internal/imagepick"
	"github.com/feedmill/feedmill/internal/store"
)

// Server holds the imagefeed service's collaborators.
type Server struct {
	client       *fetch.Client
	scanner      *imagepick.Scanner
	articles     *store.Articles
	externalHost string
}

// NewServer wires the service. externalHost is the public hostname used in
// derived feed links.
func NewServer(client *fetch.Client, articles *store.Articles, externalHost string) *Server {
	return &Server{
		client:       client,
		scanner:      imagepick.NewScanner(client),
		articles:     articles,
		externalHost: externalHost,
	}
}

// Routes returns the service handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleFeed)
	mux.HandleFunc("/article", s.handleArticle)
	return allowAllOrigins(mux)
}

// allowAllOrigins sets a permissive cross-origin header on every response.
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

	rss, err := s.Transform(feedURL)
	if err != nil {
		log.Printf("transforming %s: %v", feedURL, err)
		http.Error(w, "failed to build derived feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	fmt.Fprint(w, rss)
}

var viewerTmpl = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<img src="{{.ImageURL}}" alt="{{.Title}}">
{{if .Description}}<p>{{.Description}}</p>{{end}}
</body>
</html>
`))

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	guid := r.URL.Query().Get("guid")
	if guid == "" {
		http.Error(w, "missing required query parameter: guid", http.StatusBadRequest)
		return
	}

	article, ok := s.articles.Get(guid)
	if !ok {
		http.Error(w, "unknown article", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viewerTmpl.Execute(w, article); err != nil {
		log.Printf("rendering viewer for %s: %v", guid, err)
	}
}
