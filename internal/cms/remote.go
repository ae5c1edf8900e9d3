package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RemoteSource reads content from the CMS REST API.
type RemoteSource struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// RemoteOption customises a RemoteSource.
type RemoteOption func(*RemoteSource)

// WithAPIKey authenticates requests with a bearer API key.
func WithAPIKey(key string) RemoteOption {
	return func(s *RemoteSource) { s.apiKey = strings.TrimSpace(key) }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) RemoteOption {
	return func(s *RemoteSource) {
		if d > 0 {
			s.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(s *RemoteSource) {
		if c != nil {
			s.http = c
		}
	}
}

// WithRemoteLogger sets the logger used for request diagnostics.
func WithRemoteLogger(l *zap.Logger) RemoteOption {
	return func(s *RemoteSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewRemoteSource constructs a RemoteSource for the CMS at baseURL.
func NewRemoteSource(baseURL string, opts ...RemoteOption) *RemoteSource {
	s := &RemoteSource{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find lists documents of a collection.
func (s *RemoteSource) Find(ctx context.Context, q Query) (Result, error) {
	q = q.normalized()
	if strings.TrimSpace(q.Collection) == "" {
		return Result{}, fmt.Errorf("cms: query without collection")
	}
	params := url.Values{}
	for field, value := range q.Where {
		params.Set("where["+field+"][equals]", value)
	}
	for field, values := range q.In {
		params.Set("where["+field+"][in]", strings.Join(values, ","))
	}
	if q.Locale != "" {
		params.Set("locale", q.Locale)
	}
	params.Set("depth", strconv.Itoa(q.Depth))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("page", strconv.Itoa(q.Page))
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}

	var res Result
	found, err := s.get(ctx, []string{"api", q.Collection}, params, &res)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, fmt.Errorf("cms: unknown collection %q", q.Collection)
	}
	if res.Page == 0 {
		res.Page = q.Page
	}
	return res, nil
}

// Global fetches a singleton document. A 404 reports found=false.
func (s *RemoteSource) Global(ctx context.Context, name, locale string, depth int) (Document, bool, error) {
	params := url.Values{}
	if locale != "" {
		params.Set("locale", locale)
	}
	params.Set("depth", strconv.Itoa(depth))

	var doc Document
	found, err := s.get(ctx, []string{"api", "globals", name}, params, &doc)
	if err != nil || !found {
		return nil, false, err
	}
	if len(doc) == 0 || string(doc) == "null" {
		return nil, false, nil
	}
	return doc, true, nil
}

func (s *RemoteSource) get(ctx context.Context, segments []string, params url.Values, out any) (bool, error) {
	if s.baseURL == "" {
		return false, fmt.Errorf("cms: base url not configured")
	}
	endpoint, err := url.JoinPath(s.baseURL, segments...)
	if err != nil {
		return false, fmt.Errorf("cms: join path: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("cms: build request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("cms: request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	s.logger.Debug("cms request",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("cms: %s status %d", req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("cms: decode %s: %w", req.URL.Path, err)
	}
	return true, nil
}
