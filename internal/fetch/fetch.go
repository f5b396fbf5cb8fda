// Package fetch provides the outbound HTTP client used for feed, page, and
// image downloads. HTTPS requests use a browser-like TLS fingerprint (utls)
// so article pages behind bot detection still resolve.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const defaultUA = "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0"

// DefaultMaxBody is the per-response body cap when Options.MaxBodyBytes is
// left zero. Responses exceeding the cap are rejected with an error.
const DefaultMaxBody = 64 * 1024 * 1024

// Options configures a Client. The zero value is usable.
type Options struct {
	Timeout      time.Duration // per-request timeout; 0 means 30s
	UserAgent    string        // empty means a Firefox UA
	MaxBodyBytes int64         // 0 means DefaultMaxBody
}

// Client downloads pages and raw resources. It carries no retry logic;
// a failed request surfaces as an error to the caller.
type Client struct {
	https     *http.Client
	plain     *http.Client
	userAgent string
	maxBody   int64
}

// New builds a Client with a utls-fingerprint transport for HTTPS and a
// plain transport for HTTP. Both refuse connections to private addresses.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUA
	}
	maxBody := opts.MaxBodyBytes
	if maxBody == 0 {
		maxBody = DefaultMaxBody
	}

	dialer := &net.Dialer{Timeout: timeout}
	return &Client{
		https: &http.Client{
			Timeout: timeout,
			Transport: &browserTransport{
				dialer: dialer,
				h1:     &http.Transport{DialContext: guardedDialContext(dialer)},
				h2:     &http2.Transport{},
			},
		},
		plain: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: guardedDialContext(dialer),
			},
		},
		userAgent: ua,
		maxBody:   maxBody,
	}
}

// Page downloads a URL as an HTML document, sending browser-shaped headers.
// Returns the body and the parsed request URL. Non-2xx is an error.
func (c *Client) Page(rawURL string) ([]byte, *url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")

	body, err := c.do(req, parsed)
	if err != nil {
		return nil, nil, err
	}
	return body, parsed, nil
}

// Bytes downloads a URL as a raw resource (feed XML, image data).
func (c *Client) Bytes(rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	return c.do(req, parsed)
}

func (c *Client) do(req *http.Request, parsed *url.URL) ([]byte, error) {
	client := c.plain
	if parsed.Scheme == "https" {
		client = c.https
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, req.URL)
	}

	body, err := readLimited(resp.Body, c.maxBody)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// readLimited reads up to limit bytes from r, rejecting longer responses.
// A non-positive limit reads without bound.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	// Read limit+1 bytes so overflow is detectable without a custom reader.
	lr := io.LimitReader(r, limit+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}

// utlsConn wraps a utls.UConn and satisfies net.Conn plus the
// ConnectionState interface that net/http2 needs.
type utlsConn struct {
	*utls.UConn
}

func (c *utlsConn) ConnectionState() tls.ConnectionState {
	cs := c.UConn.ConnectionState()
	return tls.ConnectionState{
		Version:                    cs.Version,
		HandshakeComplete:          cs.HandshakeComplete,
		CipherSuite:                cs.CipherSuite,
		NegotiatedProtocol:         cs.NegotiatedProtocol,
		NegotiatedProtocolIsMutual: cs.NegotiatedProtocolIsMutual,
		ServerName:                 cs.ServerName,
		PeerCertificates:           cs.PeerCertificates,
		VerifiedChains:             cs.VerifiedChains,
		OCSPResponse:               cs.OCSPResponse,
		TLSUnique:                  cs.TLSUnique,
	}
}

// browserTransport dials HTTPS with a Firefox TLS fingerprint and routes the
// connection to an HTTP/1.1 or HTTP/2 transport based on ALPN negotiation.
type browserTransport struct {
	dialer *net.Dialer
	h1     *http.Transport
	h2     *http2.Transport
}

func (bt *browserTransport) dialUTLS(ctx context.Context, network, addr string) (net.Conn, string, error) {
	conn, err := guardedDialContext(bt.dialer)(ctx, network, addr)
	if err != nil {
		return nil, "", err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
	}, utls.HelloFirefox_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, "", err
	}

	alpn := tlsConn.ConnectionState().NegotiatedProtocol
	return &utlsConn{tlsConn}, alpn, nil
}

func (bt *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return bt.h1.RoundTrip(req)
	}

	addr := req.URL.Host
	if !hasPort(addr) {
		addr = addr + ":443"
	}

	conn, alpn, err := bt.dialUTLS(req.Context(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	if alpn == "h2" {
		h2conn, err := bt.h2.NewClientConn(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return h2conn.RoundTrip(req)
	}

	// HTTP/1.1: hand the established TLS conn to a one-shot transport.
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return conn, nil
		},
	}
	return transport.RoundTrip(req)
}

func hasPort(host string) bool {
	_, _, err := net.SplitHostPort(host)
	return err == nil
}
