package fetch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	t.Setenv("FEEDMILL_ALLOW_PRIVATE", "1")
	return New(Options{Timeout: 5 * time.Second})
}

func TestPage_Success(t *testing.T) {
	expected := "<html><body>Hello</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(expected))
	}))
	defer srv.Close()

	body, u, err := newTestClient(t).Page(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != expected {
		t.Errorf("got %q, want %q", string(body), expected)
	}
	if u.Host == "" {
		t.Error("expected parsed URL with host")
	}
}

func TestPage_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer srv.Close()

	_, _, err := newTestClient(t).Page(srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 in error, got: %v", err)
	}
}

func TestPage_BrowserHeaders(t *testing.T) {
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, _, err := newTestClient(t).Page(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	required := map[string]string{
		"Sec-Fetch-Dest": "document",
		"Sec-Fetch-Mode": "navigate",
		"Sec-Fetch-Site": "none",
		"Accept":         "text/html",
	}
	for header, wantSubstr := range required {
		got := headers.Get(header)
		if got == "" {
			t.Errorf("missing header %s", header)
		} else if !strings.Contains(got, wantSubstr) {
			t.Errorf("%s = %q, want substring %q", header, got, wantSubstr)
		}
	}
}

func TestPage_CustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	t.Setenv("FEEDMILL_ALLOW_PRIVATE", "1")
	client := New(Options{Timeout: 5 * time.Second, UserAgent: "feedmill-test/1.0"})
	if _, _, err := client.Page(srv.URL); err != nil {
		t.Fatal(err)
	}
	if gotUA != "feedmill-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "feedmill-test/1.0")
	}
}

func TestBytes_Success(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	data, err := newTestClient(t).Bytes(srv.URL + "/img.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(payload) {
		t.Errorf("got %v, want %v", data, payload)
	}
}

func TestBytes_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	t.Setenv("FEEDMILL_ALLOW_PRIVATE", "1")
	client := New(Options{Timeout: 5 * time.Second, MaxBodyBytes: 1024})
	_, err := client.Bytes(srv.URL)
	if err == nil {
		t.Fatal("expected error for oversized body")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("expected size error, got: %v", err)
	}
}

func TestBytes_InvalidURL(t *testing.T) {
	_, err := newTestClient(t).Bytes("http://[::bad")
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func TestHasPort(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"example.com:443", true},
		{"example.com:80", true},
		{"[::1]:8080", true},
		{"example.com", false},
		{"[::1]", false},
	}
	for _, tt := range tests {
		if got := hasPort(tt.host); got != tt.want {
			t.Errorf("hasPort(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestReadLimited_NoLimit(t *testing.T) {
	data, err := readLimited(strings.NewReader("abc"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "abc" {
		t.Errorf("got %q", string(data))
	}
}

func TestReadLimited_AtLimit(t *testing.T) {
	data, err := readLimited(strings.NewReader("abc"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "abc" {
		t.Errorf("got %q", string(data))
	}
}
