package main

import (
	"io"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nodeadmin/ontopath/relations"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		pf        parseFlags
		graphPath string
		preset    string
		sources   []string
		targets   []string
		rels      []string
		excluded  []string
		mode      string
		paired    bool
		workers   int
		maxDepth  int
	)
	cmd := &cobra.Command{
		Use:   "search [source...]",
		Short: "Find relation paths from source terms to targets",
		Long: `Search the graph for a path of allowed relations from each source term to a
target. Targets are exact identifiers (UBERON:0000062) or namespace
prefixes (UBERON). In "any" mode the first hit per source is reported; in
"all" mode every hit is.

Example:
  ontopath search -g uberon.db --preset uberon-sample FF:0000001
  ontopath search -g uberon.obo -r is_a -r part_of -t UBERON:0000062 UBERON:0002107`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			q := relations.Query{
				Sources: append(append([]string(nil), sources...), args...),
				Paired:  paired,
			}
			modeName := a.cfg.Search.Mode
			if preset != "" {
				p, err := a.cfg.Preset(preset)
				if err != nil {
					return err
				}
				q.AllowedRelations = p.Relations
				q.Targets = p.Targets
				q.Excluded = p.Exclude
				if p.Mode != "" {
					modeName = p.Mode
				}
			}
			if len(rels) > 0 {
				q.AllowedRelations = rels
			}
			if len(targets) > 0 {
				q.Targets = targets
			}
			q.Excluded = append(q.Excluded, excluded...)
			if cmd.Flags().Changed("mode") {
				modeName = mode
			}
			m, err := relations.ParseMode(modeName)
			if err != nil {
				return err
			}
			q.Mode = m
			if err := q.Validate(); err != nil {
				return err
			}

			g, err := a.loadGraph(ctx, graphPath, &pf)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Search.Workers
			}
			if !cmd.Flags().Changed("max-depth") {
				maxDepth = a.cfg.Search.MaxDepth
			}
			res, err := relations.SearchParallel(ctx, q, g, workers,
				relations.WithMaxDepth(maxDepth),
				relations.WithLogger(a.log))
			if err != nil {
				return err
			}

			report := res.Report(g)
			a.log.Info("search finished",
				slog.Int("sources", report.Stats.Sources),
				slog.Int("found", report.Stats.Found),
				slog.Int("expanded", report.Stats.Expanded),
				slog.Int64("elapsed_ms", report.Stats.SearchTimeMs))
			if a.jsonOut {
				return relations.WriteReportJSON(cmd.OutOrStdout(), report)
			}
			return renderRecords(cmd.OutOrStdout(), report.Records)
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "Ontology file or snapshot to search (required)")
	cmd.Flags().StringVar(&preset, "preset", "", "Named query preset from the config file")
	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, "Source term (repeatable; positional args also accepted)")
	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, "Target term or namespace prefix (repeatable)")
	cmd.Flags().StringSliceVarP(&rels, "relation", "r", nil, "Allowed relation (repeatable)")
	cmd.Flags().StringSliceVarP(&excluded, "exclude", "x", nil, "Term that must not appear on a path (repeatable)")
	cmd.Flags().StringVar(&mode, "mode", "any", "Search mode: any or all")
	cmd.Flags().BoolVar(&paired, "paired", false, "Pair the i-th source with the i-th target")
	cmd.Flags().IntVar(&workers, "workers", 1, "Sources searched concurrently (0 = NumCPU)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum hops per path (0 = unbounded)")
	_ = cmd.MarkFlagRequired("graph")
	return cmd
}

// renderRecords writes search records as a table.
func renderRecords(w io.Writer, records []relations.Record) error {
	table := tablewriter.NewWriter(w)
	table.Header("From", "Relation Path", "Relation Text", "To")
	for _, r := range records {
		path, text, to := "-", "-", "-"
		if r.Found() {
			path, text, to = r.Path.String(), r.Text, r.Target
		}
		if err := table.Append(r.Source, path, text, to); err != nil {
			return err
		}
	}
	return table.Render()
}

func newLookupCmd(a *app) *cobra.Command {
	var (
		pf        parseFlags
		graphPath string
	)
	cmd := &cobra.Command{
		Use:   "lookup <name>...",
		Short: "Find terms by name or synonym",
		Long: `Map free-text names (for example sample descriptions) to terms whose name
or synonym matches exactly, ignoring case.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph(cmd.Context(), graphPath, &pf)
			if err != nil {
				return err
			}

			type match struct {
				Name  string   `json:"name"`
				Terms []string `json:"terms"`
			}
			matches := make([]match, 0, len(args))
			for _, name := range args {
				matches = append(matches, match{Name: name, Terms: g.FindByName(name)})
			}

			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), matches)
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Name", "Term", "Term Name")
			for _, m := range matches {
				if len(m.Terms) == 0 {
					if err := table.Append(m.Name, "-", "-"); err != nil {
						return err
					}
					continue
				}
				for _, id := range m.Terms {
					if err := table.Append(m.Name, id, g.DisplayName(id)); err != nil {
						return err
					}
				}
			}
			return table.Render()
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "Ontology file or snapshot (required)")
	_ = cmd.MarkFlagRequired("graph")
	return cmd
}
