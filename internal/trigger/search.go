package trigger

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rshade/datatable/internal/logging"
)

const (
	// DefaultQuiet is how long input must be quiet before a keyword is forwarded.
	DefaultQuiet = 400 * time.Millisecond

	// DefaultMinFilter is the shortest non-empty keyword that is forwarded.
	DefaultMinFilter = 3
)

// Admit reports whether keyword may be forwarded: it is either empty or at
// least minFilter characters long.
func Admit(keyword string, minFilter int) bool {
	n := utf8.RuneCountInString(keyword)
	return n == 0 || n >= minFilter
}

// Normalize trims raw and folds it to lower case.
func Normalize(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

// SearchOption configures a SearchDebouncer.
type SearchOption func(*SearchDebouncer)

// WithQuiet sets the quiescence period. Zero forwards on the next Flush only.
func WithQuiet(d time.Duration) SearchOption {
	return func(s *SearchDebouncer) {
		s.quiet = d
	}
}

// WithMinFilter sets the minimum keyword length.
func WithMinFilter(n int) SearchOption {
	return func(s *SearchDebouncer) {
		if n > 0 {
			s.minFilter = n
		}
	}
}

// WithSearchLogger sets the debouncer logger.
func WithSearchLogger(l zerolog.Logger) SearchOption {
	return func(s *SearchDebouncer) {
		s.logger = l
	}
}

// SearchDebouncer turns raw filter input into search triggers.
//
// Input is forwarded only after it has been quiet for the configured
// period. The value is trimmed and lower-cased, then dropped when it is
// too short to search on or equal to the last forwarded keyword.
type SearchDebouncer struct {
	sink      func(string) error
	quiet     time.Duration
	minFilter int
	logger    zerolog.Logger

	mu         sync.Mutex
	timer      *time.Timer
	seq        uint64
	pending    string
	hasPending bool
	last       string
	hasLast    bool
	closed     bool
}

// NewSearchDebouncer creates a debouncer forwarding keywords to sink.
func NewSearchDebouncer(sink func(string) error, opts ...SearchOption) *SearchDebouncer {
	s := &SearchDebouncer{
		sink:      sink,
		quiet:     DefaultQuiet,
		minFilter: DefaultMinFilter,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.ComponentLogger(s.logger, "search")
	return s
}

// Push records raw input and restarts the quiet period.
func (s *SearchDebouncer) Push(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.pending = raw
	s.hasPending = true
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.quiet > 0 {
		seq := s.seq
		s.timer = time.AfterFunc(s.quiet, func() { s.fire(seq) })
	}
}

// Flush forwards pending input immediately.
func (s *SearchDebouncer) Flush() {
	s.mu.Lock()
	seq := s.seq
	s.mu.Unlock()
	s.fire(seq)
}

// Close discards pending input and stops the timer. It is idempotent.
func (s *SearchDebouncer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.hasPending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// MinFilter returns the configured minimum keyword length.
func (s *SearchDebouncer) MinFilter() int {
	return s.minFilter
}

func (s *SearchDebouncer) fire(seq uint64) {
	s.mu.Lock()
	if s.closed || !s.hasPending || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.hasPending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	keyword := Normalize(s.pending)
	if !Admit(keyword, s.minFilter) {
		s.mu.Unlock()
		s.logger.Debug().Int("length", utf8.RuneCountInString(keyword)).Msg("keyword too short, not searching")
		return
	}
	if s.hasLast && keyword == s.last {
		s.mu.Unlock()
		return
	}
	s.last = keyword
	s.hasLast = true
	s.mu.Unlock()

	if err := s.sink(keyword); err != nil {
		s.logger.Warn().Err(err).Str("keyword", keyword).Msg("search trigger rejected")
	}
}
