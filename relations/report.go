package relations

import (
	"encoding/json"
	"io"

	"github.com/nodeadmin/ontopath/ontology"
)

// Record is one row of a search outcome. Path is absent when the source
// reached no target.
type Record struct {
	Source string `json:"from"`
	Path   Path   `json:"relation_path"`
	Text   string `json:"relation_text"`
	Target string `json:"to"`
}

// Found reports whether the record carries a path.
func (r Record) Found() bool { return !r.Path.IsZero() }

// Records flattens the results: one row per hit, or a single absent row for
// a source without hits.
func (rs *Results) Records(g *ontology.Graph) []Record {
	out := make([]Record, 0, len(rs.Items))
	for _, item := range rs.Items {
		if !item.Found() {
			out = append(out, Record{Source: item.Source})
			continue
		}
		for _, p := range item.Paths {
			out = append(out, Record{
				Source: item.Source,
				Path:   p,
				Text:   PathToText(p, g),
				Target: p.Terminal(),
			})
		}
	}
	return out
}

// ReportStats holds size and timing metrics of a search.
type ReportStats struct {
	Sources        int   `json:"sources"`
	Found          int   `json:"found"`
	Paths          int   `json:"paths"`
	Truncated      int   `json:"truncated"`
	Expanded       int   `json:"expanded"`
	CyclesPruned   int   `json:"cycles_pruned"`
	ExcludedPruned int   `json:"excluded_pruned"`
	SearchTimeMs   int64 `json:"search_time_ms"`
}

// Report is the top-level JSON output of a search.
type Report struct {
	Query   Query       `json:"query"`
	Records []Record    `json:"records"`
	Stats   ReportStats `json:"stats"`
}

// Report converts the results for JSON output.
func (rs *Results) Report(g *ontology.Graph) *Report {
	stats := ReportStats{
		Sources:        len(rs.Items),
		Expanded:       rs.Stats.Expanded,
		CyclesPruned:   rs.Stats.CyclesPruned,
		ExcludedPruned: rs.Stats.ExcludedPruned,
		SearchTimeMs:   rs.Duration.Milliseconds(),
	}
	for _, item := range rs.Items {
		if item.Found() {
			stats.Found++
		}
		if item.Truncated {
			stats.Truncated++
		}
		stats.Paths += len(item.Paths)
	}
	return &Report{Query: rs.Query, Records: rs.Records(g), Stats: stats}
}

// WriteReportJSON writes the report as indented JSON.
func WriteReportJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}
