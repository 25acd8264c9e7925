package output

import (
	"encoding/json"
	"io"
	"time"
)

// Metadata records the parameters and provenance of one run.
type Metadata struct {
	RunID            string    `json:"run_id"`
	Input            string    `json:"input"`
	NGenes           int       `json:"n_genes"`
	Unmapped         []string  `json:"unmapped_genes"`
	Organism         string    `json:"organism"`
	SourcesRequested []string  `json:"sources_requested"`
	SourcesUsed      []string  `json:"sources_used"`
	FDRThreshold     float64   `json:"fdr_threshold"`
	Top              int       `json:"top"`
	IncludeIEA       bool      `json:"include_iea"`
	NTerms           int       `json:"n_terms"`
	Timestamp        time.Time `json:"timestamp"`
	TSV              string    `json:"tsv"`
	PNG              *string   `json:"png"`
	ClientVersion    string    `json:"client_version"`
	ServiceURL       string    `json:"service_url"`
	ServiceVersion   string    `json:"service_version"`
}

// WriteMetadata writes m as indented JSON.
func WriteMetadata(w io.Writer, m *Metadata) error {
	if m.Unmapped == nil {
		m.Unmapped = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(m)
}
