package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/inodb/vibe-ora/internal/ora"
)

// SummaryWriter prints an aligned, human-readable view of the top terms.
type SummaryWriter struct {
	w       *tabwriter.Writer
	maxName int
}

// NewSummaryWriter creates a summary writer. Term names longer than
// maxName runes are shortened; 0 disables shortening.
func NewSummaryWriter(w io.Writer, maxName int) *SummaryWriter {
	return &SummaryWriter{
		w:       tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		maxName: maxName,
	}
}

// WriteTerms writes a ranked table of terms and flushes.
func (s *SummaryWriter) WriteTerms(terms []ora.Term) error {
	if _, err := fmt.Fprintln(s.w, "Rank\tSource\tTerm\tName\tFDR\tHits"); err != nil {
		return err
	}
	for i, t := range terms {
		if _, err := fmt.Fprintf(s.w, "%d\t%s\t%s\t%s\t%.3g\t%d/%d\n",
			i+1, t.Source, t.ID, Shorten(t.Name, s.maxName), t.AdjustedPValue,
			t.IntersectionSize, t.TermSize); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

// Shorten truncates s to at most n runes, marking the cut with an ellipsis.
func Shorten(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
