package jrecin

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Config defines JRec-IN portal client settings
type Config struct {
	BaseURL        string
	SearchPath     string
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	Transport      http.RoundTripper
}

// Client issues requests against the JRec-IN portal. It holds no per-run
// state; cookies and the anti-forgery token live on a Session.
type Client struct {
	baseURL        *url.URL
	searchURL      *url.URL
	userAgent      string
	acceptLanguage string
	timeout        time.Duration
	transport      http.RoundTripper
}

// Session is the per-run request context: cookie jar, default headers and
// the anti-forgery token established by Bootstrap. A Session must not be
// shared between concurrent runs.
type Session struct {
	http        *http.Client
	header      http.Header
	tokenHeader string
	token       string
}

// Token returns the anti-forgery header name and value, empty before Bootstrap
func (s *Session) Token() (header, value string) {
	return s.tokenHeader, s.token
}

// SearchParams describe one paginated search request
type SearchParams struct {
	Keywords string
	Page     int
}

// StatusError reports a non-2xx response
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jrecin: GET %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}
