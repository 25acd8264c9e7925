// Package output provides writers for enrichment results: the term table,
// the run metadata record and console summaries.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-ora/internal/ora"
)

// TermColumns is the header of the term table.
var TermColumns = []string{
	"source",
	"term_id",
	"term_name",
	"p_value",
	"adjusted_p_value",
	"intersection_size",
	"term_size",
	"query_size",
	"effective_domain_size",
	"precision",
	"recall",
	"genes_hits",
}

// TabWriter writes enriched terms in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(TermColumns, "\t") + "\n")
	return err
}

// Write writes a single term.
func (tw *TabWriter) Write(t ora.Term) error {
	values := []string{
		string(t.Source),
		clean(t.ID),
		clean(t.Name),
		formatFloat(t.PValue),
		formatFloat(t.AdjustedPValue),
		strconv.Itoa(t.IntersectionSize),
		strconv.Itoa(t.TermSize),
		strconv.Itoa(t.QuerySize),
		strconv.Itoa(t.EffectiveDomainSize),
		formatFloat(t.Precision),
		formatFloat(t.Recall),
		clean(strings.Join(t.Genes, ",")),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// WriteTerms writes a header and all terms, then flushes. An empty slice
// produces a header-only table.
func WriteTerms(w io.Writer, terms []ora.Term) error {
	tw := NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, t := range terms {
		if err := tw.Write(t); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// clean keeps free text on one table cell.
func clean(s string) string {
	if s == "" {
		return "-"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}
