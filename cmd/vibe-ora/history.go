package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-ora/internal/duckdb"
	"github.com/inodb/vibe-ora/internal/ora"
	"github.com/inodb/vibe-ora/internal/output"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived enrichment runs",
		Long: `List runs stored in the DuckDB archive. The archive is written by
"vibe-ora enrich" when --archive or archive.path is set.`,
		Example: `  vibe-ora history --archive runs.duckdb
  vibe-ora history show 2b1f0c7e-...
  vibe-ora history search GO:0006974`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No runs archived in %s\n", store.Path())
				return nil
			}
			return writeRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.PersistentFlags().String("archive", "", "DuckDB archive of runs (default: archive.path)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistorySearchCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the terms retained by an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			hits, err := store.RunTerms(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				return fmt.Errorf("run %q not found or has no terms", args[0])
			}
			terms := make([]ora.Term, len(hits))
			for i, h := range hits {
				terms[i] = h.Term
			}
			return output.NewSummaryWriter(cmd.OutOrStdout(), 60).WriteTerms(terms)
		},
	}
}

func newHistorySearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term-id>",
		Short: "Find archived runs in which a term was enriched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			hits, err := store.SearchTerm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No archived runs contain %s\n", args[0])
				return nil
			}
			return writeHits(cmd.OutOrStdout(), hits)
		},
	}
}

// openArchive opens the archive named by --archive, falling back to the
// configured archive.path.
func openArchive(cmd *cobra.Command) (*duckdb.Store, error) {
	path, _ := cmd.Flags().GetString("archive")
	if path == "" {
		path = viper.GetString(keyArchive)
	}
	if path == "" {
		return nil, &ora.ConfigError{Field: "archive", Msg: "no archive configured (use --archive or set archive.path)"}
	}
	return duckdb.Open(path)
}

func writeRuns(w io.Writer, runs []duckdb.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Run\tStarted\tOrganism\tSources\tFDR\tGenes\tTerms\tInput")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Organism,
			strings.Join(ora.SourceCodes(r.Sources), ","), r.FDRThreshold,
			r.NGenes, r.NTerms, r.Input.Path)
	}
	return tw.Flush()
}

func writeHits(w io.Writer, hits []duckdb.ArchivedTerm) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Run\tStarted\tOrganism\tRank\tFDR\tHits\tGenes")
	for _, h := range hits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.3g\t%d/%d\t%s\n",
			h.RunID, h.StartedAt.Local().Format(time.DateTime), h.Organism,
			h.Rank, h.Term.AdjustedPValue, h.Term.IntersectionSize, h.Term.TermSize,
			strings.Join(h.Term.Genes, ","))
	}
	return tw.Flush()
}
