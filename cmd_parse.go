package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodeadmin/ontopath/ontology"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		pf     parseFlags
		output string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an ontology and write a JSON or SQLite snapshot",
		Long: `Parse an OBO or OWL ontology into a term graph.

The graph is written as JSON (stdout by default) or, when --output ends in
.db/.sqlite, as a SQLite snapshot that later commands load without reparsing.

Example:
  ontopath parse uberon.obo --namespace UBERON --namespace CL -o uberon.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := a.loadGraph(ctx, args[0], &pf)
			if err != nil {
				return err
			}

			start := time.Now()
			if err := writeGraph(ctx, g, output, pretty, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if output != "" {
				a.log.Info("wrote snapshot",
					slog.String("path", output),
					slog.Duration("elapsed", time.Since(start)))
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.json, .db); default JSON on stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newMergeCmd(a *app) *cobra.Command {
	var (
		pf     parseFlags
		prefer string
		output string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "merge <file> <file> [file...]",
		Short: "Merge ontologies into one graph",
		Long: `Merge two or more ontologies left to right.

Terms present in several inputs are merged field by field: lists are
united, differing names keep the earlier value, differing namespaces are
combined, and any other conflict is settled by --prefer.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := ontology.ParsePrefer(prefer)
			if err != nil {
				return err
			}

			graphs := make([]*ontology.Graph, 0, len(args))
			for _, path := range args {
				g, err := a.loadGraph(ctx, path, &pf)
				if err != nil {
					return err
				}
				graphs = append(graphs, g)
			}

			merged := ontology.MergeAll(p, a.log, graphs...)
			a.log.Info("merged ontologies",
				slog.Int("inputs", len(graphs)),
				slog.Int("terms", merged.Len()))
			return writeGraph(ctx, merged, output, pretty, cmd.OutOrStdout())
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&prefer, "prefer", "a", "Which input wins conflicting attributes: a (earlier) or b (later)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.json, .db); default JSON on stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}
