package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rshade/datatable/internal/logging"
	"github.com/rshade/datatable/internal/query"
)

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/rshade/datatable/internal/fetch"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
	headers http.Header
}

// WithHTTPClient sets the HTTP client (default http.DefaultClient).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(cfg *httpConfig) {
		if c != nil {
			cfg.client = c
		}
	}
}

// WithTimeout bounds every request. Zero means no fetcher-side timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.timeout = d
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l zerolog.Logger) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.logger = l
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(cfg *httpConfig) {
		cfg.headers.Add(key, value)
	}
}

// HTTPFetcher reads and writes items of T on a REST collection endpoint.
//
// The collection lives at the root URL; a single item lives at root/{id}/.
// List requests carry limit and offset only when paging, search only for a
// non-empty keyword, and ordering as "field" or "-field".
type HTTPFetcher[T any] struct {
	root    *url.URL
	client  *http.Client
	timeout time.Duration
	headers http.Header
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewHTTPFetcher creates a fetcher for the collection at rootURL.
func NewHTTPFetcher[T any](rootURL string, opts ...HTTPOption) (*HTTPFetcher[T], error) {
	root, err := url.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRootURL, err)
	}
	if root.Scheme == "" || root.Host == "" {
		return nil, fmt.Errorf("%w: %q needs a scheme and host", ErrInvalidRootURL, rootURL)
	}
	if !strings.HasSuffix(root.Path, "/") {
		root.Path += "/"
	}

	cfg := httpConfig{
		client:  http.DefaultClient,
		logger:  zerolog.Nop(),
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &HTTPFetcher[T]{
		root:    root,
		client:  cfg.client,
		timeout: cfg.timeout,
		headers: cfg.headers,
		logger:  logging.ComponentLogger(cfg.logger, "fetch"),
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// RootURL returns the collection URL.
func (f *HTTPFetcher[T]) RootURL() string {
	return f.root.String()
}

// Fetch lists one page of the collection.
func (f *HTTPFetcher[T]) Fetch(ctx context.Context, params query.Parameters) (query.Page[T], error) {
	if err := params.Validate(); err != nil {
		return query.Page[T]{}, err
	}

	u := *f.root
	u.RawQuery = params.Values().Encode()

	ctx, span := f.tracer.Start(ctx, "datatable.fetch", trace.WithAttributes(
		attribute.Int("datatable.limit", params.Limit),
		attribute.Int("datatable.offset", params.Offset),
		attribute.String("datatable.ordering", params.Ordering()),
		attribute.Bool("datatable.search", params.Keyword != ""),
	))
	defer span.End()

	body, err := f.do(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		recordSpanError(span, err)
		return query.Page[T]{}, err
	}

	page, err := query.DecodePage[T](body, params.Limit)
	if err != nil {
		recordSpanError(span, err)
		return query.Page[T]{}, fmt.Errorf("GET %s: %w", u.String(), err)
	}

	span.SetAttributes(
		attribute.Int("datatable.items", page.Len()),
		attribute.Int("datatable.total", page.Total),
	)
	return page, nil
}

// Get reads the item with the given id into out.
func (f *HTTPFetcher[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	u, err := f.itemURL(id)
	if err != nil {
		return out, err
	}
	err = f.roundTrip(ctx, "datatable.get", http.MethodGet, u, nil, &out)
	return out, err
}

// Create posts item to the collection and returns the stored item.
func (f *HTTPFetcher[T]) Create(ctx context.Context, item T) (T, error) {
	var out T
	err := f.roundTrip(ctx, "datatable.create", http.MethodPost, f.root.String(), item, &out)
	return out, err
}

// Update replaces the item with the given id and returns the stored item.
func (f *HTTPFetcher[T]) Update(ctx context.Context, id string, item T) (T, error) {
	var out T
	u, err := f.itemURL(id)
	if err != nil {
		return out, err
	}
	err = f.roundTrip(ctx, "datatable.update", http.MethodPut, u, item, &out)
	return out, err
}

// Delete removes the item with the given id.
func (f *HTTPFetcher[T]) Delete(ctx context.Context, id string) error {
	u, err := f.itemURL(id)
	if err != nil {
		return err
	}
	return f.roundTrip(ctx, "datatable.delete", http.MethodDelete, u, nil, nil)
}

func (f *HTTPFetcher[T]) roundTrip(ctx context.Context, spanName, method, u string, in, out any) error {
	ctx, span := f.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("http.method", method),
	))
	defer span.End()

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			recordSpanError(span, err)
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	body, err := f.do(ctx, method, u, payload)
	if err != nil {
		recordSpanError(span, err)
		return err
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("%s %s: decoding response: %w", method, u, err)
	}
	return nil
}

func (f *HTTPFetcher[T]) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, values := range f.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading response: %w", method, u, err)
	}

	f.logger.Debug().
		Ctx(ctx).
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Method: method, URL: u, Code: resp.StatusCode, Body: truncateBody(body)}
	}
	return body, nil
}

func (f *HTTPFetcher[T]) itemURL(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", ErrEmptyID
	}
	u := *f.root
	u.Path = f.root.Path + id + "/"
	u.RawPath = f.root.EscapedPath() + url.PathEscape(id) + "/"
	return u.String(), nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
