package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodeadmin/ontopath/config"
	"github.com/nodeadmin/ontopath/logging"
	"github.com/nodeadmin/ontopath/ontology"
	"github.com/nodeadmin/ontopath/store"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries state shared by all subcommands once the root pre-run has
// loaded configuration.
type app struct {
	cfgPath  string
	logLevel string
	jsonOut  bool

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "ontopath",
		Short: "Parse OBO ontologies and find relation paths between terms",
		Long: `ontopath parses OBO (and OWL/RDF-XML) ontologies into a term graph and
searches it for paths of allowed relation types from source terms to
target terms or target namespaces.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default is $HOME/.ontopath/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(a),
		newParseCmd(a),
		newMergeCmd(a),
		newSearchCmd(a),
		newLookupCmd(a),
		newFetchCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(config.DiscoverPath(a.cfgPath))
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := logging.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger
	return nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ontopath version %s\n", version)
			return err
		},
	}
}

// parseFlags are the per-command overrides of the parse config section.
type parseFlags struct {
	format       string
	namespaces   []string
	keepObsolete bool
	relations    []string
}

func (pf *parseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pf.format, "format", "auto", "Input format: auto, obo, owl, json, sqlite")
	cmd.Flags().StringSliceVar(&pf.namespaces, "namespace", nil, "Allowed namespace prefix (repeatable)")
	cmd.Flags().BoolVar(&pf.keepObsolete, "keep-obsolete", false, "Keep terms whose comment marks them obsolete")
	cmd.Flags().StringSliceVar(&pf.relations, "relationship", nil, "Extra relationship name to recognize (repeatable)")
}

func (a *app) parseOptions(pf *parseFlags) ontology.ParseOptions {
	opts := ontology.ParseOptions{
		Namespaces:   a.cfg.Parse.Namespaces,
		KeepObsolete: a.cfg.Parse.KeepObsolete || pf.keepObsolete,
		Relations:    append(append([]string(nil), a.cfg.Parse.Relations...), pf.relations...),
		Logger:       a.log,
	}
	if len(pf.namespaces) > 0 {
		opts.Namespaces = pf.namespaces
	}
	return opts
}

// loadGraph reads an ontology from an OBO/OWL source or a saved snapshot.
func (a *app) loadGraph(ctx context.Context, path string, pf *parseFlags) (*ontology.Graph, error) {
	format := detectFormat(path, pf.format)
	if format == "" {
		return nil, fmt.Errorf("cannot detect format for %q, use --format", path)
	}

	start := time.Now()
	var (
		g    *ontology.Graph
		diag *ontology.Diagnostics
		err  error
	)
	switch format {
	case "sqlite":
		var s *store.Store
		if s, err = store.Open(ctx, path); err != nil {
			return nil, err
		}
		defer s.Close()
		g, err = s.Load(ctx)
	default:
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("opening input: %w", openErr)
		}
		defer f.Close()
		switch format {
		case "obo":
			g, diag, err = ontology.ParseOBO(f, a.parseOptions(pf))
		case "owl":
			g, diag, err = ontology.ParseOWL(f, a.parseOptions(pf))
		case "json":
			g, err = ontology.ReadJSON(f)
		default:
			return nil, fmt.Errorf("unknown format %q", format)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}

	attrs := []any{
		slog.String("file", filepath.Base(path)),
		slog.String("format", format),
		slog.Int("terms", g.Len()),
		slog.Duration("elapsed", time.Since(start)),
	}
	if diag != nil {
		attrs = append(attrs,
			slog.Int("skipped_lines", diag.SkippedLines),
			slog.Int("discarded_obsolete", diag.DiscardedObsolete),
			slog.Int("discarded_namespace", diag.DiscardedNamespace))
	}
	a.log.Info("loaded ontology", attrs...)
	return g, nil
}

// writeGraph saves g as a JSON or SQLite snapshot chosen by extension;
// "" writes JSON to w.
func writeGraph(ctx context.Context, g *ontology.Graph, output string, pretty bool, w io.Writer) error {
	switch {
	case output == "":
		if pretty {
			return ontology.WriteJSONPretty(g, w)
		}
		return ontology.WriteJSON(g, w)
	case detectFormat(output, "auto") == "sqlite":
		s, err := store.Open(ctx, output)
		if err != nil {
			return err
		}
		if err := s.Save(ctx, g); err != nil {
			s.Close()
			return err
		}
		return s.Close()
	case pretty:
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		if err := ontology.WriteJSONPretty(g, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return ontology.WriteJSONFile(g, output)
	}
}

func detectFormat(path, explicit string) string {
	if explicit != "" && explicit != "auto" {
		return explicit
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obo":
		return "obo"
	case ".owl", ".xml", ".rdf":
		return "owl"
	case ".json":
		return "json"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	}
	return ""
}
