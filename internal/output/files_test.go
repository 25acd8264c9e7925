package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 14, 9, 30, 5, 0, time.UTC)

	p := NewPaths(dir, now)
	assert.Equal(t, "enrichment_20261014-093005", p.Stem)
	assert.Equal(t, filepath.Join(dir, "enrichment_20261014-093005.tsv"), p.TSV)
	assert.Equal(t, filepath.Join(dir, "enrichment_20261014-093005.json"), p.JSON)
	assert.Equal(t, filepath.Join(dir, "enrichment_20261014-093005.png"), p.PNG)

	// A previous run in the same second gets a suffix.
	require.NoError(t, os.WriteFile(p.JSON, []byte("{}"), 0644))
	p2 := NewPaths(dir, now)
	assert.Equal(t, "enrichment_20261014-093005-1", p2.Stem)

	require.NoError(t, os.WriteFile(p2.TSV, nil, 0644))
	assert.Equal(t, "enrichment_20261014-093005-2", NewPaths(dir, now).Stem)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")

	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("hello\n"))
		return err
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
	assert.NoFileExists(t, path+".tmp")
}

func TestWriteFile_ErrorLeavesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")

	err := WriteFile(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+".tmp")
}

func TestWriteMetadata(t *testing.T) {
	png := "/tmp/out.png"
	m := &Metadata{
		RunID:            "5f1c",
		Input:            "genes.txt",
		NGenes:           5,
		Organism:         "hsapiens",
		SourcesRequested: []string{"biological-process", "REAC"},
		SourcesUsed:      []string{"GO:BP", "REAC"},
		FDRThreshold:     0.05,
		Top:              20,
		IncludeIEA:       true,
		NTerms:           12,
		Timestamp:        time.Date(2026, 10, 14, 9, 30, 5, 0, time.UTC),
		TSV:              "/tmp/out.tsv",
		PNG:              &png,
		ClientVersion:    "dev",
		ServiceVersion:   "e111_eg58_p18_30541362",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMetadata(&buf, m))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "hsapiens", got["organism"])
	assert.Equal(t, 0.05, got["fdr_threshold"])
	assert.Equal(t, float64(5), got["n_genes"])
	assert.Equal(t, "2026-10-14T09:30:05Z", got["timestamp"])
	assert.Equal(t, png, got["png"])
	assert.Equal(t, []any{}, got["unmapped_genes"])
	assert.Equal(t, []any{"GO:BP", "REAC"}, got["sources_used"])
}

func TestWriteMetadata_NoPlot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMetadata(&buf, &Metadata{Organism: "mmusculus"}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	v, ok := got["png"]
	assert.True(t, ok)
	assert.Nil(t, v)
}
