package relations

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeadmin/ontopath/ontology"
)

// ladderGraph links N:i to N:i+1 for i < n and gives every fifth rung a
// part_of edge into the T namespace.
func ladderGraph(n int) *ontology.Graph {
	var edges []edge
	for i := 0; i < n; i++ {
		edges = append(edges, edge{fmt.Sprintf("N:%d", i), "is_a", fmt.Sprintf("N:%d", i+1)})
		if i%5 == 0 {
			edges = append(edges, edge{fmt.Sprintf("N:%d", i), "part_of", fmt.Sprintf("T:%d", i)})
		}
	}
	return buildGraph(nil, edges...)
}

func TestSearchParallel_MatchesSequential(t *testing.T) {
	g := ladderGraph(60)
	var sources []string
	for i := 0; i < 60; i += 3 {
		sources = append(sources, fmt.Sprintf("N:%d", i))
	}
	sources = append(sources, "MISSING:1")

	for _, mode := range []Mode{ModeAny, ModeAll} {
		t.Run(string(mode), func(t *testing.T) {
			q := Query{
				AllowedRelations: []string{"is_a", "part_of"},
				Sources:          sources,
				Targets:          []string{"T"},
				Excluded:         []string{"N:31"},
				Mode:             mode,
			}
			seq, err := Search(context.Background(), q, g)
			require.NoError(t, err)

			par, err := SearchParallel(context.Background(), q, g, 4)
			require.NoError(t, err)

			assert.Equal(t, seq.Items, par.Items)
			assert.Equal(t, seq.Stats, par.Stats)
		})
	}
}

func TestSearchParallel_Fallback(t *testing.T) {
	q := Query{AllowedRelations: []string{"is_a"}, Sources: []string{"A"}, Targets: []string{"C"}, Mode: ModeAny}

	res, err := SearchParallel(context.Background(), q, chainGraph(), 0)
	require.NoError(t, err)
	assert.Equal(t, "A.is_a~B.is_a~C", res.Items[0].First().String())
}

func TestSearchParallel_InvalidQuery(t *testing.T) {
	q := Query{AllowedRelations: []string{"is_a"}, Sources: []string{"A", "B"}, Mode: ModeAny}

	_, err := SearchParallel(context.Background(), q, chainGraph(), 2)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
