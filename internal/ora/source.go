// Package ora holds the over-representation analysis domain: term sources,
// enriched term records, the error taxonomy and the result formatting steps
// (threshold retention, ordering, top-N selection).
package ora

import (
	"fmt"
	"strings"
)

// Source identifies the knowledge base a term comes from.
// The value is the g:Profiler source code (e.g. "GO:BP").
type Source string

// Known term sources.
const (
	SourceBiologicalProcess   Source = "GO:BP"
	SourceMolecularFunction   Source = "GO:MF"
	SourceCellularComponent   Source = "GO:CC"
	SourceReactome            Source = "REAC"
	SourceKEGG                Source = "KEGG"
	SourceWikiPathways        Source = "WP"
	SourceHumanPhenotype      Source = "HP"
	SourceTranscriptionFactor Source = "TF"
	SourceMiRNA               Source = "MIRNA"
	SourceCORUM               Source = "CORUM"
)

// sourceNames maps the descriptive name of each source to its code.
var sourceNames = map[string]Source{
	"biological-process":   SourceBiologicalProcess,
	"molecular-function":   SourceMolecularFunction,
	"cellular-component":   SourceCellularComponent,
	"pathway-reactome":     SourceReactome,
	"pathway-kegg":         SourceKEGG,
	"pathway-wikipathways": SourceWikiPathways,
	"human-phenotype":      SourceHumanPhenotype,
	"transcription-factor": SourceTranscriptionFactor,
	"mirna":                SourceMiRNA,
	"corum":                SourceCORUM,
}

// DefaultSources are requested when no sources are given.
var DefaultSources = []Source{
	SourceBiologicalProcess,
	SourceMolecularFunction,
	SourceCellularComponent,
	SourceReactome,
}

// Name returns the descriptive name of the source, or the code itself
// for sources outside the known vocabulary.
func (s Source) Name() string {
	for name, code := range sourceNames {
		if code == s {
			return name
		}
	}
	return string(s)
}

// Known reports whether s is in the known vocabulary.
func (s Source) Known() bool {
	for _, code := range sourceNames {
		if code == s {
			return true
		}
	}
	return false
}

// ParseSource resolves a source given either by code ("GO:BP", case
// insensitive) or by descriptive name ("biological-process").
func ParseSource(s string) (Source, error) {
	v := strings.TrimSpace(s)
	if code, ok := sourceNames[strings.ToLower(v)]; ok {
		return code, nil
	}
	code := Source(strings.ToUpper(v))
	if code.Known() {
		return code, nil
	}
	return "", &ConfigError{Field: "sources", Msg: fmt.Sprintf("unknown term source %q", s)}
}

// ParseSources resolves a list of sources, dropping duplicates while
// keeping the first-seen order. An empty list yields DefaultSources.
func ParseSources(values []string) ([]Source, error) {
	if len(values) == 0 {
		return append([]Source(nil), DefaultSources...), nil
	}

	seen := make(map[Source]bool, len(values))
	sources := make([]Source, 0, len(values))
	for _, v := range values {
		src, err := ParseSource(v)
		if err != nil {
			return nil, err
		}
		if seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources, nil
}

// SourceCodes returns the sources as plain strings.
func SourceCodes(sources []Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = string(s)
	}
	return out
}
