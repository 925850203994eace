package coordinator

import (
	"maps"

	"github.com/rs/zerolog"

	"github.com/rshade/datatable/internal/query"
)

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	observer Observer
}

// WithLogger sets the coordinator logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver sets the fetch cycle observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// AttachOption adjusts the starting state seeded by Attach.
type AttachOption func(*query.State)

// WithExtraParams seeds the extra query parameters of the first fetch.
func WithExtraParams(extra map[string]string) AttachOption {
	return func(s *query.State) {
		s.Extra = maps.Clone(extra)
	}
}
