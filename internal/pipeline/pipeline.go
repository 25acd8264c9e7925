// Package pipeline runs one enrichment analysis end to end: read the gene
// list, query the enrichment service, format the results and write the
// table, chart and metadata files.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/vibe-ora/internal/chart"
	"github.com/inodb/vibe-ora/internal/duckdb"
	"github.com/inodb/vibe-ora/internal/genelist"
	"github.com/inodb/vibe-ora/internal/gprofiler"
	"github.com/inodb/vibe-ora/internal/ora"
	"github.com/inodb/vibe-ora/internal/output"
)

// Config holds the parameters of one run.
type Config struct {
	Input      string
	Organism   string
	Sources    []string // codes or descriptive names; empty means ora.DefaultSources
	FDR        float64
	Top        int
	OutDir     string
	NoPlot     bool
	IncludeIEA bool
}

// Profiler queries an enrichment service.
type Profiler interface {
	Profile(ctx context.Context, genes []string, req gprofiler.Request) (*gprofiler.Result, error)
}

// Archive stores completed runs.
type Archive interface {
	WriteRun(ctx context.Context, run duckdb.Run, terms []ora.Term) error
}

// Report describes a completed run.
type Report struct {
	Paths    output.Paths
	Terms    []ora.Term // all retained terms, most significant first
	Top      []ora.Term // the charted subset
	Charted  bool
	Metadata *output.Metadata
}

// Pipeline wires the run steps together.
type Pipeline struct {
	profiler      Profiler
	archive       Archive
	logger        *zap.Logger
	now           func() time.Time
	clientVersion string
	serviceURL    string
	chartOpts     chart.Options
}

// New creates a pipeline that queries p.
func New(p Profiler, clientVersion, serviceURL string) *Pipeline {
	return &Pipeline{
		profiler:      p,
		logger:        zap.NewNop(),
		now:           time.Now,
		clientVersion: clientVersion,
		serviceURL:    serviceURL,
		chartOpts:     chart.DefaultOptions(),
	}
}

// SetLogger sets the logger for progress messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetArchive enables archiving of completed runs.
func (p *Pipeline) SetArchive(a Archive) {
	p.archive = a
}

// SetClock overrides the time source used for file names and metadata.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// validated is a Config after parsing.
type validated struct {
	sources []ora.Source
}

func (p *Pipeline) validate(cfg Config) (*validated, error) {
	known, err := ora.ValidateOrganism(cfg.Organism)
	if err != nil {
		return nil, err
	}
	if !known {
		p.logger.Warn("organism not in the common list; the service may still support it",
			zap.String("organism", cfg.Organism))
	}

	if err := ora.ValidateThreshold(cfg.FDR); err != nil {
		return nil, err
	}
	if cfg.Top < 1 {
		return nil, &ora.ConfigError{Field: "top", Msg: "must be at least 1"}
	}
	if cfg.OutDir == "" {
		return nil, &ora.ConfigError{Field: "outdir", Msg: "output directory is required"}
	}

	sources, err := ora.ParseSources(cfg.Sources)
	if err != nil {
		return nil, err
	}
	return &validated{sources: sources}, nil
}

// Run executes the pipeline. Configuration and service errors are
// returned before any output file is created.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Report, error) {
	v, err := p.validate(cfg)
	if err != nil {
		return nil, err
	}

	genes, err := genelist.Read(cfg.Input)
	if err != nil {
		return nil, err
	}
	started := p.now()

	p.logger.Info("gene list loaded",
		zap.Int("genes", len(genes)),
		zap.String("organism", cfg.Organism),
		zap.Strings("sources", ora.SourceCodes(v.sources)),
		zap.Float64("fdr", cfg.FDR))

	res, err := p.profiler.Profile(ctx, genes, gprofiler.Request{
		Organism:   cfg.Organism,
		Sources:    v.sources,
		IncludeIEA: cfg.IncludeIEA,
	})
	if err != nil {
		return nil, fmt.Errorf("run enrichment: %w", err)
	}
	if len(res.Unmapped) > 0 {
		p.logger.Warn("genes not recognised by the service", zap.Strings("genes", res.Unmapped))
	}

	terms := ora.Retain(res.Terms, cfg.FDR)
	ora.Sort(terms)
	top := ora.Top(terms, cfg.Top)

	p.logger.Info("enrichment complete",
		zap.Int("returned", len(res.Terms)),
		zap.Int("retained", len(terms)))

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	paths := output.NewPaths(cfg.OutDir, started)

	if err := output.WriteFile(paths.TSV, func(w io.Writer) error {
		return output.WriteTerms(w, terms)
	}); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		p.logger.Info("no terms passed the FDR threshold; wrote empty table", zap.String("tsv", paths.TSV))
	} else {
		p.logger.Info("results written", zap.String("tsv", paths.TSV))
	}

	charted := false
	switch {
	case cfg.NoPlot:
	case len(top) == 0:
		p.logger.Info("no significant terms to plot; skipping chart")
	default:
		if err := chart.RenderFile(paths.PNG, top, p.chartOpts); err != nil {
			return nil, fmt.Errorf("render chart: %w", err)
		}
		charted = true
		p.logger.Info("chart written", zap.String("png", paths.PNG), zap.Int("bars", len(top)))
	}

	meta := &output.Metadata{
		RunID:            uuid.NewString(),
		Input:            cfg.Input,
		NGenes:           len(genes),
		Unmapped:         res.Unmapped,
		Organism:         cfg.Organism,
		SourcesRequested: cfg.Sources,
		SourcesUsed:      ora.SourceCodes(v.sources),
		FDRThreshold:     cfg.FDR,
		Top:              cfg.Top,
		IncludeIEA:       cfg.IncludeIEA,
		NTerms:           len(terms),
		Timestamp:        started.Truncate(time.Second),
		TSV:              paths.TSV,
		ClientVersion:    p.clientVersion,
		ServiceURL:       p.serviceURL,
		ServiceVersion:   res.ServiceVersion,
	}
	if meta.SourcesRequested == nil {
		meta.SourcesRequested = meta.SourcesUsed
	}
	if charted {
		png := paths.PNG
		meta.PNG = &png
	}

	if err := output.WriteFile(paths.JSON, func(w io.Writer) error {
		return output.WriteMetadata(w, meta)
	}); err != nil {
		return nil, err
	}
	p.logger.Info("metadata written", zap.String("json", paths.JSON))

	if p.archive != nil {
		fp, err := duckdb.StatFile(cfg.Input)
		if err != nil {
			fp = duckdb.FileFingerprint{Path: cfg.Input}
		}
		if err := p.archive.WriteRun(ctx, duckdb.Run{
			ID:             meta.RunID,
			StartedAt:      started,
			Input:          fp,
			Organism:       cfg.Organism,
			Sources:        v.sources,
			FDRThreshold:   cfg.FDR,
			IncludeIEA:     cfg.IncludeIEA,
			NGenes:         len(genes),
			ServiceVersion: res.ServiceVersion,
			ClientVersion:  p.clientVersion,
		}, terms); err != nil {
			return nil, fmt.Errorf("archive run: %w", err)
		}
		p.logger.Debug("run archived", zap.String("run_id", meta.RunID))
	}

	return &Report{
		Paths:    paths,
		Terms:    terms,
		Top:      top,
		Charted:  charted,
		Metadata: meta,
	}, nil
}
