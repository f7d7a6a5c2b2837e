package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semgraph/collapse"
	"github.com/c360studio/semgraph/config"
	"github.com/c360studio/semgraph/convert"
	"github.com/c360studio/semgraph/export"
	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/shortid"
)

// ioFlags are the input and output flags of the file commands.
type ioFlags struct {
	format    string
	base      string
	out       string
	outFormat string
	profile   string
	indent    bool
}

func (f *ioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Input RDF format (turtle, ntriples, rdfxml; default from extension)")
	cmd.Flags().StringVar(&f.base, "base", "", "Base namespace used to shorten identifiers")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&f.outFormat, "out-format", "", "Output format (nodelink, turtle, ntriples, jsonld; default from --out extension)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "RDF export profile (minimal, typed)")
	cmd.Flags().BoolVar(&f.indent, "indent", false, "Indent node-link JSON")
}

// apply copies the flags that were set onto the configuration.
func (f *ioFlags) apply(cfg *config.Config) {
	if f.format != "" {
		cfg.Input.Format = f.format
	}
	if f.base != "" {
		if cfg.Namespaces == nil {
			cfg.Namespaces = map[string]string{}
		}
		cfg.Namespaces[rdf.BaseKey] = f.base
	}
	if f.out != "" {
		cfg.Output.Path = f.out
		if f.outFormat == "" {
			cfg.Output.Format = string(export.FormatForPath(f.out))
		}
	}
	if f.outFormat != "" {
		cfg.Output.Format = f.outFormat
	}
	if f.profile != "" {
		cfg.Output.Profile = f.profile
	}
	if f.indent {
		cfg.Output.Indent = true
	}
}

// loadInput reads the documents named by args, or by input.paths when there are none.
func loadInput(ctx context.Context, cfg *config.Config, args []string) (*rdf.Graph, []string, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.Input.Paths
	}
	paths, err := rdf.ExpandPaths(patterns)
	if err != nil {
		return nil, nil, err
	}

	var format rdf.Format
	if cfg.Input.Format != "" {
		format, err = rdf.ParseFormat(cfg.Input.Format)
		if err != nil {
			return nil, nil, err
		}
	}
	g, err := rdf.LoadFiles(ctx, paths, format)
	if err != nil {
		return nil, nil, err
	}
	return g, paths, nil
}

// namespaces overlays the configured table on the document declarations.
func namespaces(cfg *config.Config, src *rdf.Graph) rdf.Namespaces {
	ns := src.Namespaces()
	for prefix, iri := range cfg.Namespaces {
		ns[prefix] = iri
	}
	return ns
}

// writeGraph writes g to the configured output path, or to stdout.
func writeGraph(stdout io.Writer, cfg *config.Config, g *pgraph.Graph, ns rdf.Namespaces) error {
	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	opts := export.Options{
		Namespaces: ns,
		Profile:    export.Profile(cfg.Output.Profile),
		Indent:     cfg.Output.Indent,
	}

	if cfg.Output.Path == "" {
		return export.Write(stdout, g, format, opts)
	}

	f, err := os.Create(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.Write(f, g, format, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func convertCmd(opts *globalOptions) *cobra.Command {
	var (
		flags ioFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "convert [files or globs...]",
		Short: "Convert RDF documents to a property graph",
		Example: `  semgraph convert --base http://example.org/ data/people.ttl
  semgraph convert -o graph.json 'data/**/*.ttl'
  semgraph convert --out-format turtle --watch data/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			run := func() ([]string, error) {
				src, paths, err := loadInput(ctx, cfg, args)
				if err != nil {
					return nil, err
				}
				ns := namespaces(cfg, src)
				res, err := convert.New(convert.WithNamespaces(ns), convert.WithLogger(opts.logger)).Run(src)
				if err != nil {
					return nil, err
				}
				return paths, writeGraph(cmd.OutOrStdout(), cfg, res.Graph, ns)
			}

			paths, err := run()
			if err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchAndRun(ctx, opts.logger, cfg, paths, func() error {
				_, err := run()
				return err
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-convert when input files change")
	return cmd
}

func collapseCmd(opts *globalOptions) *cobra.Command {
	var (
		flags       ioFlags
		predicates  []string
		subjects    []string
		literalOnly bool
		protect     bool
	)

	cmd := &cobra.Command{
		Use:   "collapse [files or globs...]",
		Short: "Build the term graph and fold predicates into node attributes",
		Example: `  semgraph collapse -p foaf:name -p foaf:age data/people.ttl
  semgraph collapse --literal-only --protect-subjects data/people.ttl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			if len(predicates) > 0 {
				cfg.Collapse.Predicates = predicates
			}
			if len(subjects) > 0 {
				cfg.Collapse.Subjects = subjects
			}
			cfg.Collapse.LiteralOnly = cfg.Collapse.LiteralOnly || literalOnly
			cfg.Collapse.ProtectSubjects = cfg.Collapse.ProtectSubjects || protect
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			src, _, err := loadInput(cmd.Context(), cfg, args)
			if err != nil {
				return err
			}
			ns := namespaces(cfg, src)

			g, err := collapseSource(cfg, src, ns, opts)
			if err != nil {
				return err
			}
			return writeGraph(cmd.OutOrStdout(), cfg, g, ns)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVarP(&predicates, "predicate", "p", nil, "Predicate to collapse (IRI or prefix:local; repeatable)")
	cmd.Flags().StringSliceVarP(&subjects, "subject", "s", nil, "Node key that must survive (repeatable)")
	cmd.Flags().BoolVar(&literalOnly, "literal-only", false, "Collapse the suggested literal-only predicates when none are given")
	cmd.Flags().BoolVar(&protect, "protect-subjects", false, "Keep every subject of the input")
	return cmd
}

// collapseSource builds the term graph of src and collapses the configured predicates.
func collapseSource(cfg *config.Config, src *rdf.Graph, ns rdf.Namespaces, opts *globalOptions) (*pgraph.Graph, error) {
	var predicates []string
	for _, p := range cfg.Collapse.Predicates {
		predicates = append(predicates, shortid.Expand(p, ns))
	}
	if len(predicates) == 0 && cfg.Collapse.LiteralOnly {
		predicates = collapse.Suggest(src, ns).IRIs()
	}
	subjects := append([]string(nil), cfg.Collapse.Subjects...)
	if cfg.Collapse.ProtectSubjects {
		subjects = append(subjects, collapse.Subjects(src)...)
	}

	opts.logger.Debug("Collapsing predicates",
		"predicates", predicates,
		"protected", len(subjects))

	return collapse.Collapse(pgraph.TermGraph(src.Triples()), predicates, subjects, collapse.WithLogger(opts.logger))
}

func predicatesCmd(opts *globalOptions) *cobra.Command {
	var (
		format  string
		base    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "predicates [files or globs...]",
		Short: "List predicates split into collapse candidates and the rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			flags := ioFlags{format: format, base: base}
			flags.apply(cfg)

			src, _, err := loadInput(cmd.Context(), cfg, args)
			if err != nil {
				return err
			}
			s := collapse.Suggest(src, namespaces(cfg, src))

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			printPredicates(out, "Selected (literal objects only)", s.Selected)
			printPredicates(out, "Available (resource objects only)", s.Available)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Input RDF format (turtle, ntriples, rdfxml; default from extension)")
	cmd.Flags().StringVar(&base, "base", "", "Base namespace used to display identifiers")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON")
	return cmd
}

func printPredicates(w io.Writer, title string, preds []collapse.Predicate) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(preds) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range preds {
		fmt.Fprintf(w, "  %-30s %s\n", p.Display, p.IRI)
	}
	fmt.Fprintln(w)
}
