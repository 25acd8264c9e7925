package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-ora/internal/duckdb"
	"github.com/inodb/vibe-ora/internal/ora"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config", &ora.ConfigError{Field: "fdr", Msg: "out of range"}, ExitUsage},
		{"wrapped config", fmt.Errorf("run: %w", &ora.ConfigError{Field: "input"}), ExitUsage},
		{"usage", fmt.Errorf("%w: unknown flag --foo", errUsage), ExitUsage},
		{"transport", fmt.Errorf("run enrichment: %w", &ora.TransportError{Err: errors.New("refused")}), ExitService},
		{"service", &ora.ServiceError{StatusCode: 400, Msg: "unknown organism"}, ExitService},
		{"other", errors.New("disk full"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestParseConfigValue(t *testing.T) {
	v, err := parseConfigValue(keyFDR, "0.01")
	require.NoError(t, err)
	assert.Equal(t, 0.01, v)

	v, err = parseConfigValue(keyTop, "10")
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = parseConfigValue(keyNoPlot, "yes")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = parseConfigValue(keySources, "GO:BP, pathway-reactome")
	require.NoError(t, err)
	assert.Equal(t, []string{"GO:BP", "pathway-reactome"}, v)

	v, err = parseConfigValue(keyTimeout, "90s")
	require.NoError(t, err)
	assert.Equal(t, "90s", v)

	for _, bad := range [][2]string{
		{"enrich.colour", "blue"},
		{keyTop, "ten"},
		{keyNoIEA, "maybe"},
		{keySources, "GO:XX"},
		{keyOrganism, "Homo sapiens"},
		{keyTimeout, "soon"},
	} {
		_, err := parseConfigValue(bad[0], bad[1])
		assert.True(t, ora.IsConfigError(err), "%s=%s", bad[0], bad[1])
	}
}

func TestRunConfigSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vibe-ora.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  url: http://localhost:8080\n"), 0644))

	require.NoError(t, runConfigSet(path, keyOrganism, "mmusculus"))
	require.NoError(t, runConfigSet(path, keyFDR, "0.01"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, "http://localhost:8080", doc["service"]["url"])
	assert.Equal(t, "mmusculus", doc["enrich"]["organism"])
	assert.Equal(t, 0.01, doc["enrich"]["fdr"])
}

func TestRunConfigSet_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vibe-ora.yaml")
	require.NoError(t, runConfigSet(path, keyArchive, "runs.duckdb"))
	assert.FileExists(t, path)

	assert.Error(t, runConfigSet(path, "nope", "x"))
}

func TestSetNested(t *testing.T) {
	doc := map[string]any{"enrich": "scalar"}
	setNested(doc, []string{"enrich", "top"}, 5)
	assert.Equal(t, map[string]any{"enrich": map[string]any{"top": 5}}, doc)
}

func TestWriteRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRuns(&buf, []duckdb.Run{{
		ID:           "run-1",
		StartedAt:    time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
		Organism:     "hsapiens",
		Sources:      []ora.Source{ora.SourceBiologicalProcess, ora.SourceReactome},
		FDRThreshold: 0.05,
		NGenes:       5,
		NTerms:       25,
		Input:        duckdb.FileFingerprint{Path: "genes.txt"},
	}}))

	out := buf.String()
	assert.Contains(t, out, "Run")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "GO:BP,REAC")
	assert.Contains(t, out, "genes.txt")
}
