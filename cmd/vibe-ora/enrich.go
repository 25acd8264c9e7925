package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-ora/internal/duckdb"
	"github.com/inodb/vibe-ora/internal/gprofiler"
	"github.com/inodb/vibe-ora/internal/ora"
	"github.com/inodb/vibe-ora/internal/output"
	"github.com/inodb/vibe-ora/internal/pipeline"
)

// Config keys shared by flags, the config file and VIBE_ORA_* variables.
const (
	keyInput      = "enrich.input"
	keyOrganism   = "enrich.organism"
	keySources    = "enrich.sources"
	keyFDR        = "enrich.fdr"
	keyTop        = "enrich.top"
	keyOutDir     = "enrich.outdir"
	keyNoPlot     = "enrich.no_plot"
	keyNoIEA      = "enrich.no_iea"
	keyServiceURL = "service.url"
	keyTimeout    = "service.timeout"
	keyRetries    = "service.retries"
	keyArchive    = "archive.path"
)

func newEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich [gene-list]",
		Short: "Run over-representation analysis on a gene list",
		Long: `Submit a gene list (one symbol per line) to g:Profiler and write the
significant terms to <outdir>/enrichment_<timestamp>.tsv, the run metadata
to .json and a bar chart of the top terms to .png.

Sources may be given as service codes (GO:BP, GO:MF, GO:CC, REAC, KEGG, WP,
HP, TF, MIRNA, CORUM) or names (biological-process, molecular-function,
cellular-component, pathway-reactome, pathway-kegg, ...).`,
		Example: `  vibe-ora enrich --input data/genes_input.txt
  vibe-ora enrich genes.txt --organism mmusculus --sources GO:BP,REAC --fdr 0.01
  vibe-ora enrich genes.txt --top 10 --outdir results --no-plot
  vibe-ora enrich genes.txt --archive ~/.vibe-ora/archive.duckdb`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindEnrichFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				viper.Set(keyInput, args[0])
			}
			return runEnrich(cmd.Context(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringP("input", "i", "data/genes_input.txt", "Gene list file (one symbol per line)")
	f.StringP("organism", "g", "hsapiens", "g:Profiler organism code")
	f.StringSliceP("sources", "s", ora.SourceCodes(ora.DefaultSources), "Term sources (codes or names)")
	f.Float64("fdr", 0.05, "FDR threshold for retaining terms")
	f.IntP("top", "n", 20, "Number of terms in the chart")
	f.StringP("outdir", "o", "results", "Output directory")
	f.Bool("no-plot", false, "Do not render the chart")
	f.Bool("no-iea", false, "Exclude electronic (IEA) GO annotations")
	f.String("base-url", gprofiler.DefaultBaseURL, "g:Profiler base URL")
	f.Duration("timeout", 60*time.Second, "Timeout for the enrichment request, including retries")
	f.Int("retries", 0, "Retries for transport failures (exponential backoff)")
	f.String("archive", "", "DuckDB archive of runs (disabled when empty)")

	return cmd
}

// bindEnrichFlags binds the enrich flags to their config keys. Binding
// happens at run time so that other commands sharing a key do not take
// over the binding.
func bindEnrichFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	for key, flag := range map[string]string{
		keyInput:      "input",
		keyOrganism:   "organism",
		keySources:    "sources",
		keyFDR:        "fdr",
		keyTop:        "top",
		keyOutDir:     "outdir",
		keyNoPlot:     "no-plot",
		keyNoIEA:      "no-iea",
		keyServiceURL: "base-url",
		keyTimeout:    "timeout",
		keyRetries:    "retries",
		keyArchive:    "archive",
	} {
		if err := viper.BindPFlag(key, f.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// enrichSettings is the enrich configuration after merging flags, the
// config file and the environment.
type enrichSettings struct {
	pipeline   pipeline.Config
	serviceURL string
	timeout    time.Duration
	retries    int
	archive    string
}

// loadEnrichSettings reads the enrich keys from viper. Values from the
// config file or the environment arrive as strings, so each one is
// converted explicitly and a value that does not parse is a ConfigError.
func loadEnrichSettings() (*enrichSettings, error) {
	sources, err := stringList(viper.Get(keySources))
	if err != nil {
		return nil, &ora.ConfigError{Field: "sources", Msg: "expected a comma-separated list", Err: err}
	}
	fdr, err := cast.ToFloat64E(viper.Get(keyFDR))
	if err != nil {
		return nil, &ora.ConfigError{Field: "fdr", Msg: fmt.Sprintf("not a number: %v", viper.Get(keyFDR))}
	}
	top, err := cast.ToIntE(viper.Get(keyTop))
	if err != nil {
		return nil, &ora.ConfigError{Field: "top", Msg: fmt.Sprintf("not an integer: %v", viper.Get(keyTop))}
	}
	retries, err := cast.ToIntE(viper.Get(keyRetries))
	if err != nil {
		return nil, &ora.ConfigError{Field: "retries", Msg: fmt.Sprintf("not an integer: %v", viper.Get(keyRetries))}
	}
	if retries < 0 {
		return nil, &ora.ConfigError{Field: "retries", Msg: "must not be negative"}
	}
	timeout, err := cast.ToDurationE(viper.Get(keyTimeout))
	if err != nil {
		return nil, &ora.ConfigError{Field: "timeout", Msg: fmt.Sprintf("not a duration: %v", viper.Get(keyTimeout))}
	}
	noPlot, err := cast.ToBoolE(viper.Get(keyNoPlot))
	if err != nil {
		return nil, &ora.ConfigError{Field: "no_plot", Msg: fmt.Sprintf("not a boolean: %v", viper.Get(keyNoPlot))}
	}
	noIEA, err := cast.ToBoolE(viper.Get(keyNoIEA))
	if err != nil {
		return nil, &ora.ConfigError{Field: "no_iea", Msg: fmt.Sprintf("not a boolean: %v", viper.Get(keyNoIEA))}
	}

	return &enrichSettings{
		pipeline: pipeline.Config{
			Input:      viper.GetString(keyInput),
			Organism:   viper.GetString(keyOrganism),
			Sources:    sources,
			FDR:        fdr,
			Top:        top,
			OutDir:     viper.GetString(keyOutDir),
			NoPlot:     noPlot,
			IncludeIEA: !noIEA,
		},
		serviceURL: viper.GetString(keyServiceURL),
		timeout:    timeout,
		retries:    retries,
		archive:    viper.GetString(keyArchive),
	}, nil
}

// stringList accepts a YAML list, a flag value or a comma-separated string.
func stringList(v any) ([]string, error) {
	var items []string
	if s, ok := v.(string); ok {
		items = strings.Split(s, ",")
	} else {
		var err error
		if items, err = cast.ToStringSliceE(v); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func runEnrich(ctx context.Context, w io.Writer) error {
	set, err := loadEnrichSettings()
	if err != nil {
		return err
	}
	cfg := set.pipeline

	serviceURL := set.serviceURL
	client := gprofiler.New(serviceURL, version)
	client.SetLogger(logger.Named("gprofiler"))
	client.SetRetries(set.retries, time.Second)

	p := pipeline.New(client, version, serviceURL)
	p.SetLogger(logger)

	if path := set.archive; path != "" {
		store, err := duckdb.Open(path)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer store.Close()
		p.SetArchive(store)
	}

	if timeout := set.timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rep, err := p.Run(ctx, cfg)
	if err != nil {
		return err
	}

	if len(rep.Top) > 0 {
		if err := output.NewSummaryWriter(w, 60).WriteTerms(rep.Top); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	fmt.Fprintf(w, "\n%d terms with FDR <= %g\n", len(rep.Terms), cfg.FDR)
	fmt.Fprintf(w, "  Table:    %s\n", rep.Paths.TSV)
	fmt.Fprintf(w, "  Metadata: %s\n", rep.Paths.JSON)
	if rep.Charted {
		fmt.Fprintf(w, "  Chart:    %s\n", rep.Paths.PNG)
	}
	return nil
}
