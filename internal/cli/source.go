package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/datatable/internal/cache"
	"github.com/rshade/datatable/internal/config"
	"github.com/rshade/datatable/internal/fetch"
	"github.com/rshade/datatable/internal/query"
	"github.com/rshade/datatable/internal/trigger"
	"github.com/rshade/datatable/internal/tui"
)

// source is the configured endpoint: the HTTP fetcher for item reads and
// writes, and the page fetcher used for listings.
type source struct {
	items  *fetch.HTTPFetcher[tui.Row]
	cached *fetch.CachedFetcher[tui.Row]
	logger zerolog.Logger
}

// openSource builds the endpoint described by cfg. Listings go through a
// disk-backed cache when caching is enabled.
func openSource(cfg *config.Config, logger zerolog.Logger) (*source, error) {
	opts := []fetch.HTTPOption{
		fetch.WithTimeout(cfg.Source.Timeout),
		fetch.WithLogger(logger),
	}
	for k, v := range cfg.Source.Headers {
		opts = append(opts, fetch.WithHeader(k, v))
	}

	httpFetcher, err := fetch.NewHTTPFetcher[tui.Row](cfg.Source.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	src := &source{items: httpFetcher, logger: logger}
	if !cfg.Cache.Enabled {
		return src, nil
	}

	store, err := cache.NewFileStore(cfg.CacheDir(), true, cache.Seconds(cfg.Cache.TTLSeconds))
	if err != nil {
		return nil, fmt.Errorf("opening page cache: %w", err)
	}
	if cleanupErr := store.CleanupExpired(); cleanupErr != nil {
		logger.Warn().Err(cleanupErr).Msg("failed to clean expired cache entries")
	}
	src.cached, err = fetch.NewCachedFetcher[tui.Row](httpFetcher, store, httpFetcher.RootURL(), logger)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// newSource returns the page fetcher for cfg.
func newSource(cfg *config.Config, logger zerolog.Logger) (fetch.Fetcher[tui.Row], error) {
	src, err := openSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	return src.pages(), nil
}

func (s *source) pages() fetch.Fetcher[tui.Row] {
	if s.cached != nil {
		return s.cached
	}
	return s.items
}

// written drops cached listings after a successful write. A failure is
// logged; the write itself already happened.
func (s *source) written() {
	if s.cached == nil {
		return
	}
	if err := s.cached.Invalidate(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate page cache")
	}
}

// queryFlags are the view-state flags shared by list, export and browse.
type queryFlags struct {
	sort     string
	search   string
	page     int
	pageSize int
	filters  map[string]string
}

func (f *queryFlags) register(cmd *cobra.Command, paged bool) {
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort as field or field:order (asc, desc, none)")
	cmd.Flags().StringVar(&f.search, "search", "", "search keyword")
	cmd.Flags().StringToStringVar(&f.filters, "filter", nil, "extra query parameter as key=value (repeatable)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "items per page (default table.page_size)")
	if paged {
		cmd.Flags().IntVar(&f.page, "page", 1, "1-based page number")
	}
}

// state resolves the flags against the table defaults in cfg. The keyword is
// normalized and length-checked the way interactive search input is.
func (f *queryFlags) state(cfg *config.Config) (query.State, error) {
	sortSpec := f.sort
	if sortSpec == "" {
		sortSpec = cfg.Table.Sort
	}
	state := query.State{SortOrder: query.SortNone}
	if sortSpec != "" {
		field, order, err := query.ParseSort(sortSpec)
		if err != nil {
			return query.State{}, err
		}
		state.SortField, state.SortOrder = field, order
	}

	state.PageSize = f.pageSize
	if state.PageSize == 0 {
		state.PageSize = cfg.Table.PageSize
	}
	if state.PageSize < 0 {
		return query.State{}, fmt.Errorf("%w: got %d", ErrInvalidPageSize, state.PageSize)
	}
	if f.page < 0 {
		return query.State{}, fmt.Errorf("%w: got %d", ErrInvalidPage, f.page)
	}
	if f.page > 0 {
		state.PageIndex = f.page - 1
	}

	keyword := trigger.Normalize(f.search)
	if !trigger.Admit(keyword, cfg.Table.MinFilter) {
		return query.State{}, fmt.Errorf("%w: %q needs at least %d characters",
			ErrKeywordTooShort, keyword, cfg.Table.MinFilter)
	}
	state.Keyword = keyword
	state.Extra = f.filters
	return state, nil
}

// columnsFor returns the configured columns, or columns inferred from rows.
func columnsFor(cfg *config.Config, rows []tui.Row) []tui.ColumnSpec {
	if len(cfg.Table.Columns) == 0 {
		return tui.InferColumns(rows)
	}
	specs := make([]tui.ColumnSpec, len(cfg.Table.Columns))
	for i, col := range cfg.Table.Columns {
		specs[i] = tui.ColumnSpec{
			Title:    col.Title,
			Field:    col.Field,
			Width:    col.Width,
			Sortable: col.IsSortable(),
		}
	}
	return specs
}

// sampleColumns fetches a single row to infer columns when none are configured.
func sampleColumns(ctx context.Context, cfg *config.Config, src fetch.Fetcher[tui.Row]) []tui.ColumnSpec {
	if len(cfg.Table.Columns) > 0 {
		return columnsFor(cfg, nil)
	}
	page, err := src.Fetch(ctx, query.NewParameters(1, 0, "", query.SortNone, "", nil))
	if err != nil {
		return []tui.ColumnSpec{{Field: "id", Sortable: true}}
	}
	return columnsFor(cfg, page.Items)
}

func parseOutputFormat(raw string, allowed ...string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range allowed {
		if format == a {
			return format, nil
		}
	}
	return "", fmt.Errorf("%w: %q (use %s)", ErrUnknownFormat, raw, strings.Join(allowed, ", "))
}
