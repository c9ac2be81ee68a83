package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/curie/internal/config"
	"github.com/aleksaelezovic/curie/internal/output"
	"github.com/aleksaelezovic/curie/pkg/curie"
	"github.com/aleksaelezovic/curie/pkg/prefix"
	"github.com/aleksaelezovic/curie/pkg/rdf"
)

func prefixesCmd(a *app) *cobra.Command {
	var stored bool

	cmd := &cobra.Command{
		Use:   "prefixes",
		Short: "List the registered prefixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			registry, err := a.registry()
			if err != nil {
				return err
			}

			entries := registry.Entries()
			if stored {
				st, err := a.openStore()
				if err != nil {
					return err
				}
				names, err := st.Prefixes()
				if err != nil {
					return err
				}
				entries = nil
				for _, name := range names {
					if base, ok := registry.BaseIRI(name); ok {
						entries = append(entries, prefix.Entry{Prefix: name, BaseIRI: base})
					}
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\n", e.Prefix, e.BaseIRI)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&stored, "stored", false, "Only list prefixes with a document in the badger store")
	return cmd
}

func compactCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compact <iri>...",
		Short: "Print the prefixed name of each IRI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}

			engine := curie.New(registry, nil, curie.WithLogger(a.logger))
			for _, iri := range args {
				fmt.Fprintln(cmd.OutOrStdout(), engine.Compact(iri))
			}
			return nil
		},
	}
}

func expandCmd(a *app) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "expand <name>...",
		Short: "Print the IRI of each prefixed name",
		Long: `Expand prints the IRI of each prefixed name, one per line. With --type
the IRI is only printed when the vocabulary of the prefix declares it with
one of the given types; otherwise the line is empty.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			engine, _, err := a.engine(cmd.Context(), nil)
			if err != nil {
				return err
			}

			for _, name := range args {
				iri, err := engine.Expand(cmd.Context(), name, types...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), iri)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&types, "type", "t", nil, "Acceptable type IRI, in order of preference (repeatable)")
	return cmd
}

func resolveCmd(a *app) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "resolve <name>...",
		Short: "Explain how each prefixed name expands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			engine, _, err := a.engine(cmd.Context(), nil)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range args {
				res, err := engine.Resolve(cmd.Context(), name, rdf.NamedNodes(types...)...)
				if err != nil {
					return err
				}
				iri := res.IRI
				if iri == "" {
					iri = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, res.Status, iri, res.MatchedType)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringArrayVarP(&types, "type", "t", nil, "Acceptable type IRI, in order of preference (repeatable)")
	return cmd
}

func loadCmd(a *app) *cobra.Command {
	var (
		only   []string
		merge  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load vocabularies and summarize them",
		Long: `Load fetches the vocabularies of the given prefixes (all registered
prefixes by default) in parallel and prints the number of statements per
graph. With --merge and --format nquads the merged dataset is written as
N-Quads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			engine, _, err := a.engine(cmd.Context(), nil)
			if err != nil {
				return err
			}

			result, err := engine.Load(cmd.Context(), curie.LoadOptions{Only: only, Merge: merge})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "auto" {
				format = "tsv"
				if isTerminal(out) {
					format = "tree"
				}
			}

			switch format {
			case "tree":
				tree := output.NewVisualLoadTree("vocabularies")
				tree.InsertResult(result)
				_, err = fmt.Fprint(out, tree.Render())
				return err
			case "tsv":
				return output.WriteLoadSummary(out, result)
			case "nquads":
				if !merge {
					return fmt.Errorf("--format nquads requires --merge")
				}
				return result.Merged.WriteNQuads(out)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Prefixes to load (default: all)")
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge all vocabularies into one dataset")
	cmd.Flags().StringVar(&format, "format", "auto", "Output format (auto, tree, tsv, nquads)")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(a.logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeYAML(cmd.OutOrStdout(), a.cfg)
		},
	})

	return cmd
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
