// Package recapfeed serves the day-recap derived feed: source items are
// bucketed by publication day and each day is summarized once through a
// chat-completions API. It also exposes a streaming proxy to that API.
package recapfeed

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/feedmill/feedmill/internal/fetch"
	"github.com/feedmill/feedmill/internal/llm"
	"github.com/feedmill/feedmill/internal/store"
)

// maxChatBody caps buffered /chat request bodies.
const maxChatBody = 1 << 20

// Server holds the recapfeed service's collaborators.
type Server struct {
	client *fetch.Client
	llm    *llm.Client
	recaps *store.Recaps
}

// NewServer wires the service.
func NewServer(client *fetch.Client, llmClient *llm.Client, recaps *store.Recaps) *Server {
	return &Server{client: client, llm: llmClient, recaps: recaps}
}

// Routes returns the service handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleFeed)
	mux.HandleFunc("/chat", s.handleChat)
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

	rss, err := s.Transform(r.Context(), feedURL)
	if err != nil {
		log.Printf("transforming %s: %v", feedURL, err)
		http.Error(w, "failed to build recap feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	fmt.Fprint(w, rss)
}

// handleChat relays a chat-completions request upstream and streams the
// response back. An upstream 5xx is retried exactly once; whatever comes
// back the second time is relayed as-is. Other statuses are never retried.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxChatBody))
	if err != nil {
		http.Error(w, "reading request body", http.StatusBadRequest)
		return
	}

	resp, err := s.llm.Forward(r.Context(), body)
	if err != nil {
		http.Error(w, "upstream request failed", http.StatusBadGateway)
		return
	}
	if resp.StatusCode >= 500 {
		resp.Body.Close()
		resp, err = s.llm.Forward(r.Context(), body)
		if err != nil {
			http.Error(w, "upstream request failed", http.StatusBadGateway)
			return
		}
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	streamCopy(w, resp.Body)
}

// streamCopy relays src to w, flushing after every read so streamed
// completions reach the client incrementally.
func streamCopy(w http.ResponseWriter, src io.Reader) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}
