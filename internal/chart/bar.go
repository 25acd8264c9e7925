// Package chart renders enrichment results as static images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/inodb/vibe-ora/internal/ora"
	"github.com/inodb/vibe-ora/internal/output"
)

// ErrNoTerms is returned when there is nothing to draw.
var ErrNoTerms = errors.New("no terms to plot")

// Options controls chart layout.
type Options struct {
	Title     string
	MaxLabel  int       // maximum term name length in runes
	Width     vg.Length // image width
	RowHeight vg.Length // height per bar
	MinHeight vg.Length
}

// DefaultOptions returns the layout used by the CLI.
func DefaultOptions() Options {
	return Options{
		Title:     "Top enriched terms",
		MaxLabel:  80,
		Width:     12 * vg.Inch,
		RowHeight: 0.5 * vg.Inch,
		MinHeight: 4 * vg.Inch,
	}
}

// Label returns the category-axis label for a term: "name [id]".
func Label(t ora.Term, maxName int) string {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		name = "(unnamed)"
	}
	id := t.ID
	if id == "" {
		id = "(no id)"
	}
	return fmt.Sprintf("%s [%s]", output.Shorten(name, maxName), id)
}

// BarPlot builds a horizontal bar chart of -log10(corrected p) with one bar
// per term. terms must already be sorted; the first term is drawn at the
// top.
func BarPlot(terms []ora.Term, opts Options) (*plot.Plot, error) {
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}

	values, labels := barData(terms, opts.MaxLabel)

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "-log10(FDR)"
	p.Y.Label.Text = "Term"
	p.X.Min = 0

	bars, err := plotter.NewBarChart(values, opts.RowHeight*0.7)
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0
	bars.Color = plotutil.Color(0)

	p.Add(bars)
	p.NominalY(labels...)
	return p, nil
}

// barData returns bar lengths and labels in axis order. Category 0 sits
// at the bottom of the axis, so the first term comes last.
func barData(terms []ora.Term, maxLabel int) (plotter.Values, []string) {
	n := len(terms)
	values := make(plotter.Values, n)
	labels := make([]string, n)
	for i, t := range terms {
		j := n - 1 - i
		values[j] = t.NegLog10()
		labels[j] = Label(t, maxLabel)
	}
	return values, labels
}

// Size returns the image size for n bars.
func Size(n int, opts Options) (width, height vg.Length) {
	height = vg.Length(math.Max(float64(opts.MinHeight), float64(opts.RowHeight)*float64(n)))
	return opts.Width, height
}

// Render draws terms to w in the given image format ("png", "svg", "pdf").
func Render(w io.Writer, terms []ora.Term, format string, opts Options) error {
	p, err := BarPlot(terms, opts)
	if err != nil {
		return err
	}
	width, height := Size(len(terms), opts)
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("create %s canvas: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// RenderFile draws terms to path; the format follows the file extension.
func RenderFile(path string, terms []ora.Term, opts Options) error {
	if len(terms) == 0 {
		return ErrNoTerms
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return output.WriteFile(path, func(w io.Writer) error {
		return Render(w, terms, format, opts)
	})
}
