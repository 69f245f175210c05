package relations

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nodeadmin/ontopath/ontology"
)

// SearchParallel is Search with per-source searches spread over workers
// goroutines. g must not be modified while it runs. Results keep source
// order, so the output is identical to Search.
func SearchParallel(ctx context.Context, q Query, g *ontology.Graph, workers int, opts ...Option) (*Results, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 || len(q.Sources) < 2 {
		return Search(ctx, q, g, opts...)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	s := newSearcher(q, g, applyOptions(opts))

	items := make([]Result, len(q.Sources))
	stats := make([]Stats, len(q.Sources))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, source := range q.Sources {
		eg.Go(func() error {
			items[i], stats[i] = s.run(egCtx, source, q.targetsFor(i))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &Results{Query: q, Items: items}
	for _, st := range stats {
		out.Stats.add(st)
	}
	out.Duration = time.Since(start)
	return out, nil
}
