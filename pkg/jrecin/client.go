package jrecin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultBaseURL        = "https://jrecin.jst.go.jp"
	defaultSearchPath     = "/seek/SeekJorSearch"
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultAcceptLanguage = "ja,en-US;q=0.9,en;q=0.8"
	defaultTimeout        = 30 * time.Second
	defaultTokenHeader    = "X-CSRF-TOKEN"

	// sortNewestFirst is the portal's "新着順" sort directive
	sortNewestFirst = "0"
)

// NewClient instantiates a portal client
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("jrecin: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("jrecin: base url %q must be absolute", base)
	}

	searchPath := cfg.SearchPath
	if searchPath == "" {
		searchPath = defaultSearchPath
	}
	searchURL, err := baseURL.Parse(searchPath)
	if err != nil {
		return nil, fmt.Errorf("jrecin: parse search path: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	acceptLanguage := cfg.AcceptLanguage
	if acceptLanguage == "" {
		acceptLanguage = defaultAcceptLanguage
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:        baseURL,
		searchURL:      searchURL,
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
		timeout:        timeout,
		transport:      cfg.Transport,
	}, nil
}

// BaseURL returns the origin relative links are resolved against
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// NewSession creates an empty session with its own cookie jar
func (c *Client) NewSession() (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("jrecin: cookie jar: %w", err)
	}

	header := make(http.Header)
	header.Set("User-Agent", c.userAgent)
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	header.Set("Accept-Language", c.acceptLanguage)
	header.Set("Upgrade-Insecure-Requests", "1")

	return &Session{
		http: &http.Client{
			Jar:       jar,
			Timeout:   c.timeout,
			Transport: c.transport,
		},
		header: header,
	}, nil
}

// Bootstrap loads the search landing page, picks up session cookies and the
// anti-forgery token advertised in its meta tags. The landing page body is
// returned so callers may keep it as a diagnostic snapshot.
func (c *Client) Bootstrap(ctx context.Context, s *Session) ([]byte, error) {
	body, err := c.get(ctx, s, c.searchURL.String())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return body, fmt.Errorf("jrecin: parse landing page: %w", err)
	}

	token := strings.TrimSpace(doc.Find(`meta[name="_csrf"]`).First().AttrOr("content", ""))
	if token == "" {
		return body, nil
	}

	header := strings.TrimSpace(doc.Find(`meta[name="_csrf_header"]`).First().AttrOr("content", ""))
	if header == "" {
		header = defaultTokenHeader
	}

	s.tokenHeader = header
	s.token = token
	s.header.Set(header, token)

	return body, nil
}

// Search requests one page of search results, newest first
func (c *Client) Search(ctx context.Context, s *Session, params SearchParams) ([]byte, error) {
	if params.Page < 1 {
		return nil, fmt.Errorf("jrecin: page must be >= 1, got %d", params.Page)
	}

	u := *c.searchURL
	values := url.Values{}
	values.Set("keyword_or", params.Keywords)
	values.Set("sort", sortNewestFirst)
	values.Set("fn", "0")
	values.Set("page", strconv.Itoa(params.Page))
	u.RawQuery = values.Encode()

	return c.get(ctx, s, u.String())
}

// Fetch retrieves a detail page
func (c *Client) Fetch(ctx context.Context, s *Session, rawURL string) ([]byte, error) {
	target, err := c.baseURL.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("jrecin: parse detail url %q: %w", rawURL, err)
	}
	return c.get(ctx, s, target.String())
}

func (c *Client) get(ctx context.Context, s *Session, u string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("jrecin: session is nil")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("jrecin: build request: %w", err)
	}
	for k, v := range s.header {
		req.Header[k] = append([]string(nil), v...)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jrecin: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jrecin: read body: %w", err)
	}

	return body, nil
}
