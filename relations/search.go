package relations

import (
	"context"
	"log/slog"
	"time"

	"github.com/nodeadmin/ontopath/ontology"
)

// Result holds the outcome of one source's search.
type Result struct {
	Source string `json:"source"`

	// Paths holds the hits in discovery order. In ModeAny it has at most one
	// element; empty means not found.
	Paths []Path `json:"paths"`

	// Truncated is set when MaxDepth or context cancellation stopped the
	// search while leads remained.
	Truncated bool `json:"truncated,omitempty"`
}

// Found reports whether any path reached a target.
func (r Result) Found() bool { return len(r.Paths) > 0 }

// First returns the first hit, or the absent path.
func (r Result) First() Path {
	if len(r.Paths) == 0 {
		return Path{}
	}
	return r.Paths[0]
}

// Stats counts work done by a search.
type Stats struct {
	Expanded       int `json:"expanded"`
	CyclesPruned   int `json:"cycles_pruned"`
	ExcludedPruned int `json:"excluded_pruned"`
}

func (s *Stats) add(o Stats) {
	s.Expanded += o.Expanded
	s.CyclesPruned += o.CyclesPruned
	s.ExcludedPruned += o.ExcludedPruned
}

// Results holds one Result per source, in source order.
type Results struct {
	Query    Query         `json:"query"`
	Items    []Result      `json:"results"`
	Stats    Stats         `json:"stats"`
	Duration time.Duration `json:"-"`
}

// Search runs q against g, one independent breadth-first search per source.
// Only an invalid query returns an error; dangling references, cycles and
// excluded terms are pruned and reported through the logger.
func Search(ctx context.Context, q Query, g *ontology.Graph, opts ...Option) (*Results, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	s := newSearcher(q, g, applyOptions(opts))

	out := &Results{Query: q, Items: make([]Result, len(q.Sources))}
	for i, source := range q.Sources {
		res, st := s.run(ctx, source, q.targetsFor(i))
		out.Items[i] = res
		out.Stats.add(st)
	}
	out.Duration = time.Since(start)
	return out, nil
}

// searcher holds the read-only state shared by every source of one query.
type searcher struct {
	graph    *ontology.Graph
	mode     Mode
	allowed  map[string]struct{}
	excluded map[string]struct{}
	opts     Options
}

func newSearcher(q Query, g *ontology.Graph, opts Options) *searcher {
	return &searcher{
		graph:    g,
		mode:     q.Mode,
		allowed:  toSet(q.AllowedRelations),
		excluded: toSet(q.Excluded),
		opts:     opts,
	}
}

// run searches from source level by level. A term is expanded at most once;
// every satisfying candidate met while expanding is a hit.
func (s *searcher) run(ctx context.Context, source string, targets []string) (Result, Stats) {
	res := Result{Source: source}
	var st Stats
	log := s.opts.Logger

	if _, ok := s.excluded[source]; ok {
		log.Debug("source is excluded", slog.String("source", source))
		return res, st
	}

	match := newMatcher(targets)
	visited := map[string]struct{}{source: {}}
	frontier := []Path{NewPath(source)}

	for depth := 0; len(frontier) > 0; depth++ {
		if s.opts.MaxDepth > 0 && depth >= s.opts.MaxDepth {
			res.Truncated = true
			break
		}
		if ctx.Err() != nil {
			res.Truncated = true
			break
		}

		var next []Path
		for _, path := range frontier {
			term, ok := s.graph.Term(path.Terminal())
			if !ok {
				// foreign reference: no outgoing relations
				continue
			}
			st.Expanded++

			for _, rel := range term.Relations {
				if _, ok := s.allowed[rel.Type]; !ok {
					continue
				}
				for _, candidate := range rel.Values {
					if _, ok := s.excluded[candidate]; ok {
						st.ExcludedPruned++
						continue
					}
					if path.Contains(candidate) {
						st.CyclesPruned++
						log.Debug("cyclic relationship",
							slog.String("path", path.String()),
							slog.String("relation", rel.Type),
							slog.String("term", candidate))
						continue
					}

					extended := path.Extend(rel.Type, candidate)
					if match.match(candidate) {
						res.Paths = append(res.Paths, extended)
						if s.mode == ModeAny {
							return res, st
						}
					}
					if _, seen := visited[candidate]; seen {
						continue
					}
					visited[candidate] = struct{}{}
					next = append(next, extended)
				}
			}
		}
		frontier = next
	}
	return res, st
}
