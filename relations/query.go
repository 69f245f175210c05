package relations

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nodeadmin/ontopath/ontology"
)

// ErrInvalidQuery is returned before any search runs when the query is
// unusable. It is the only error class the engine raises.
var ErrInvalidQuery = errors.New("invalid query")

// Mode selects between stopping at the first hit and collecting every hit.
type Mode string

const (
	ModeAny Mode = "any"
	ModeAll Mode = "all"
)

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAny, ModeAll:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalidQuery, ModeAny, ModeAll, s)
}

// Query describes a reachability search.
type Query struct {
	// AllowedRelations are the relation names eligible for traversal.
	AllowedRelations []string `json:"allowed_relations"`

	// Sources are searched independently, in order.
	Sources []string `json:"sources"`

	// Targets holds exact identifiers ("UBERON:0000062") and/or namespace
	// classes ("UBERON"); the kind is decided per target.
	Targets []string `json:"targets"`

	// Excluded terms never appear on a returned path.
	Excluded []string `json:"excluded,omitempty"`

	Mode Mode `json:"mode"`

	// Paired pairs Sources[i] with Targets[i] instead of searching every
	// source for every target.
	Paired bool `json:"paired,omitempty"`
}

// Validate checks the query preconditions.
func (q Query) Validate() error {
	switch {
	case len(q.Sources) == 0:
		return fmt.Errorf("%w: no sources", ErrInvalidQuery)
	case len(q.Targets) == 0:
		return fmt.Errorf("%w: no targets", ErrInvalidQuery)
	case len(q.AllowedRelations) == 0:
		return fmt.Errorf("%w: no allowed relations", ErrInvalidQuery)
	case q.Mode != ModeAny && q.Mode != ModeAll:
		return fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalidQuery, ModeAny, ModeAll, q.Mode)
	case q.Paired && len(q.Sources) != len(q.Targets):
		return fmt.Errorf("%w: paired mode needs one target per source (%d sources, %d targets)",
			ErrInvalidQuery, len(q.Sources), len(q.Targets))
	}
	for _, t := range q.Targets {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: empty target", ErrInvalidQuery)
		}
	}
	return nil
}

// targetsFor returns the target list used for the i-th source.
func (q Query) targetsFor(i int) []string {
	if q.Paired {
		return q.Targets[i : i+1]
	}
	return q.Targets
}

// matcher is the compiled target predicate.
type matcher struct {
	exact      map[string]struct{}
	namespaces map[string]struct{}
}

func newMatcher(targets []string) matcher {
	m := matcher{
		exact:      make(map[string]struct{}, len(targets)),
		namespaces: make(map[string]struct{}, len(targets)),
	}
	for _, t := range targets {
		if strings.Contains(t, ontology.Separator) {
			m.exact[t] = struct{}{}
		} else {
			m.namespaces[t] = struct{}{}
		}
	}
	return m
}

func (m matcher) match(id string) bool {
	if _, ok := m.exact[id]; ok {
		return true
	}
	if len(m.namespaces) == 0 {
		return false
	}
	_, ok := m.namespaces[ontology.Prefix(id)]
	return ok
}

func toSet(list []string) map[string]struct{} {
	s := make(map[string]struct{}, len(list))
	for _, v := range list {
		s[v] = struct{}{}
	}
	return s
}

// Options configures a search.
type Options struct {
	// MaxDepth bounds the number of hops per source; 0 means unbounded.
	MaxDepth int

	Logger *slog.Logger
}

// Option is a functional option for configuring searches.
type Option func(*Options)

// WithMaxDepth bounds path length. n <= 0 means unbounded.
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		if n < 0 {
			n = 0
		}
		o.MaxDepth = n
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func applyOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
