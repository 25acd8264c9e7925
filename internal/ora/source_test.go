package ora

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in   string
		want Source
	}{
		{"GO:BP", SourceBiologicalProcess},
		{"go:mf", SourceMolecularFunction},
		{"cellular-component", SourceCellularComponent},
		{"pathway-reactome", SourceReactome},
		{"Pathway-KEGG", SourceKEGG},
		{" REAC ", SourceReactome},
		{"WP", SourceWikiPathways},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSource_Unknown(t *testing.T) {
	_, err := ParseSource("GO:XX")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "GO:XX")
}

func TestParseSources(t *testing.T) {
	got, err := ParseSources([]string{"biological-process", "GO:BP", "REAC"})
	require.NoError(t, err)
	assert.Equal(t, []Source{SourceBiologicalProcess, SourceReactome}, got)

	got, err = ParseSources(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSources, got)

	// The default list is not shared.
	got[0] = SourceKEGG
	assert.Equal(t, SourceBiologicalProcess, DefaultSources[0])
}

func TestSource_Name(t *testing.T) {
	assert.Equal(t, "biological-process", SourceBiologicalProcess.Name())
	assert.Equal(t, "pathway-kegg", SourceKEGG.Name())
	assert.Equal(t, "XYZ", Source("XYZ").Name())
}

func TestErrorTaxonomy(t *testing.T) {
	cfg := fmt.Errorf("load: %w", &ConfigError{Field: "input", Msg: "empty"})
	assert.True(t, IsConfigError(cfg))
	assert.False(t, IsRetryable(cfg))

	tr := fmt.Errorf("profile: %w", &TransportError{StatusCode: 503, Err: fmt.Errorf("busy")})
	assert.True(t, IsRetryable(tr))
	assert.Contains(t, tr.Error(), "503")

	svc := &ServiceError{StatusCode: 400, Msg: "unknown organism"}
	assert.False(t, IsRetryable(svc))
	assert.False(t, IsConfigError(svc))
}
