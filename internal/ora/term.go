package ora

import (
	"math"
	"regexp"
	"sort"
)

// Term is one enriched term returned by the enrichment service.
type Term struct {
	ID     string // native term identifier, e.g. "GO:0006915"
	Name   string
	Source Source

	PValue         float64 // nominal p-value, recomputed from the counts below
	AdjustedPValue float64 // FDR-corrected p-value as reported by the service

	IntersectionSize    int // input genes annotated to the term
	TermSize            int
	QuerySize           int
	EffectiveDomainSize int
	Precision           float64
	Recall              float64

	// Genes lists the input symbols that hit the term, in input order.
	Genes []string

	// Description is only filled by sources that provide one.
	Description *string
}

// NegLog10 returns -log10(AdjustedPValue), clipping p at 1e-300 so that
// a reported p of zero still yields a finite bar.
func (t Term) NegLog10() float64 {
	p := math.Min(math.Max(t.AdjustedPValue, 1e-300), 1)
	return -math.Log10(p)
}

// Retain returns the terms whose corrected p-value is at most threshold.
// A threshold of zero or below retains nothing.
func Retain(terms []Term, threshold float64) []Term {
	out := make([]Term, 0, len(terms))
	if threshold <= 0 {
		return out
	}
	for _, t := range terms {
		if t.AdjustedPValue <= threshold {
			out = append(out, t)
		}
	}
	return out
}

// Sort orders terms from most to least significant: corrected p-value
// ascending, then nominal p-value, then source and term ID.
func Sort(terms []Term) {
	sort.SliceStable(terms, func(i, j int) bool {
		return Less(terms[i], terms[j])
	})
}

// Less is the ordering used by Sort.
func Less(a, b Term) bool {
	if a.AdjustedPValue != b.AdjustedPValue {
		return a.AdjustedPValue < b.AdjustedPValue
	}
	if a.PValue != b.PValue {
		return a.PValue < b.PValue
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.ID < b.ID
}

// Top returns at most n leading terms. It does not copy.
func Top(terms []Term, n int) []Term {
	if n < 0 {
		n = 0
	}
	if len(terms) <= n {
		return terms
	}
	return terms[:n]
}

var organismPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// KnownOrganisms are the organism codes commonly used with this tool.
// Other well-formed codes are passed to the service as-is.
var KnownOrganisms = []string{
	"athaliana",
	"dmelanogaster",
	"drerio",
	"hsapiens",
	"mmusculus",
	"rnorvegicus",
	"scerevisiae",
}

// ValidateOrganism checks that org is a well-formed g:Profiler organism
// code and reports whether it is one of KnownOrganisms.
func ValidateOrganism(org string) (known bool, err error) {
	if !organismPattern.MatchString(org) {
		return false, &ConfigError{Field: "organism", Msg: "organism code must be lowercase letters, e.g. hsapiens: " + org}
	}
	for _, k := range KnownOrganisms {
		if k == org {
			return true, nil
		}
	}
	return false, nil
}

// ValidateThreshold checks that an FDR threshold lies in [0, 1].
func ValidateThreshold(fdr float64) error {
	if math.IsNaN(fdr) || fdr < 0 || fdr > 1 {
		return &ConfigError{Field: "fdr", Msg: "threshold must be between 0 and 1"}
	}
	return nil
}
