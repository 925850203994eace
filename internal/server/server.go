// Package server implements a demo list backend speaking the paginated
// REST contract the fetchers expect:
//
//	GET    /api/items/?limit=&offset=&search=&ordering=   list
//	POST   /api/items/                                    create
//	GET    /api/items/{id}/                               read
//	PUT    /api/items/{id}/                               update
//	DELETE /api/items/{id}/                               delete
//
// A paged list (limit > 0) answers with {"count", "results"}; an unpaged
// list answers with a bare array.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rshade/datatable/internal/logging"
	"github.com/rshade/datatable/internal/query"
)

// ItemsPath is the collection route.
const ItemsPath = "/api/items/"

// shutdownTimeout bounds graceful shutdown in Serve.
const shutdownTimeout = 5 * time.Second

// Option configures the handler.
type Option func(*config)

type config struct {
	logger      zerolog.Logger
	latency     time.Duration
	failureRate float64
	metrics     http.Handler
	random      func() float64
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithLatency delays every list response by d.
func WithLatency(d time.Duration) Option {
	return func(c *config) {
		c.latency = d
	}
}

// WithFailureRate makes list requests fail with 503 with probability rate.
func WithFailureRate(rate float64) Option {
	return func(c *config) {
		c.failureRate = rate
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(c *config) {
		c.metrics = h
	}
}

// withRandom replaces the failure dice; used by tests.
func withRandom(f func() float64) Option {
	return func(c *config) {
		c.random = f
	}
}

type handler struct {
	store *Store
	cfg   config
}

// New returns the demo API router for store.
func New(store *Store, opts ...Option) http.Handler {
	cfg := config{
		logger: zerolog.Nop(),
		random: rand.Float64,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = logging.ComponentLogger(cfg.logger, "server")
	h := &handler{store: store, cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}/", h.get)
		r.Put("/{id}/", h.update)
		r.Delete("/{id}/", h.remove)
	})
	if cfg.metrics != nil {
		r.Handle("/metrics", cfg.metrics)
	}
	return r
}

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if h.cfg.latency > 0 {
		select {
		case <-time.After(h.cfg.latency):
		case <-r.Context().Done():
			return
		}
	}
	if h.cfg.failureRate > 0 && h.cfg.random() < h.cfg.failureRate {
		writeError(w, http.StatusServiceUnavailable, errors.New("injected failure"))
		return
	}

	items, total, err := h.store.List(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if params.IsPaged() {
		writeJSON(w, http.StatusOK, query.Envelope[Item]{Count: total, Results: items})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	it, err := h.store.Get(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var in Item
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding item: %w", err))
		return
	}
	it, err := h.store.Create(in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var in Item
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding item: %w", err))
		return
	}
	it, err := h.store.Update(id, in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.cfg.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

// parseListParams reads the list query string. Unknown keys are kept as
// extra parameters.
func parseListParams(r *http.Request) (query.Parameters, error) {
	values := r.URL.Query()

	limit, err := intParam(values.Get(query.KeyLimit), query.KeyLimit)
	if err != nil {
		return query.Parameters{}, err
	}
	offset, err := intParam(values.Get(query.KeyOffset), query.KeyOffset)
	if err != nil {
		return query.Parameters{}, err
	}
	field, order := query.ParseOrdering(values.Get(query.KeyOrdering))

	extra := map[string]string{}
	for k := range values {
		switch k {
		case query.KeyLimit, query.KeyOffset, query.KeySearch, query.KeyOrdering:
		default:
			extra[k] = values.Get(k)
		}
	}

	params := query.NewParameters(limit, offset, field, order, values.Get(query.KeySearch), extra)
	return params, params.Validate()
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return n, nil
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", ErrItemNotFound, chi.URLParam(r, "id")))
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
