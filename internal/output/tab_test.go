package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-ora/internal/ora"
)

func sampleTerms() []ora.Term {
	desc := "DNA damage"
	return []ora.Term{
		{
			ID: "GO:0006974", Name: "DNA damage response", Source: ora.SourceBiologicalProcess,
			PValue: 1.3e-5, AdjustedPValue: 2.1e-5,
			IntersectionSize: 4, TermSize: 850, QuerySize: 5, EffectiveDomainSize: 21000,
			Precision: 0.8, Recall: 0.0047,
			Genes:       []string{"TP53", "BRCA1", "BRCA2", "PTEN"},
			Description: &desc,
		},
		{
			ID: "REAC:R-HSA-5693532", Name: "DNA Double-Strand\tBreak Repair", Source: ora.SourceReactome,
			PValue: 3e-5, AdjustedPValue: 0.0031,
			IntersectionSize: 3, TermSize: 160, QuerySize: 5, EffectiveDomainSize: 11000,
			Precision: 0.6, Recall: 0.019,
			Genes: []string{"TP53", "BRCA1", "BRCA2"},
		},
	}
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	assert.Equal(t, strings.Join(TermColumns, "\t")+"\n", buf.String())
}

func TestWriteTerms(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerms(&buf, sampleTerms()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	for _, line := range lines {
		assert.Len(t, strings.Split(line, "\t"), len(TermColumns))
	}

	fields := strings.Split(lines[1], "\t")
	assert.Equal(t, "GO:BP", fields[0])
	assert.Equal(t, "GO:0006974", fields[1])
	assert.Equal(t, "DNA damage response", fields[2])
	assert.Equal(t, "1.3e-05", fields[3])
	assert.Equal(t, "2.1e-05", fields[4])
	assert.Equal(t, "4", fields[5])
	assert.Equal(t, "850", fields[6])
	assert.Equal(t, "TP53,BRCA1,BRCA2,PTEN", fields[11])

	// Embedded tabs are flattened.
	fields = strings.Split(lines[2], "\t")
	assert.Equal(t, "DNA Double-Strand Break Repair", fields[2])
}

func TestWriteTerms_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerms(&buf, nil))
	assert.Equal(t, strings.Join(TermColumns, "\t")+"\n", buf.String())
}

func TestWriteTerms_Idempotent(t *testing.T) {
	format := func() []byte {
		terms := sampleTerms()
		terms[0], terms[1] = terms[1], terms[0]
		ora.Sort(terms)
		var buf bytes.Buffer
		require.NoError(t, WriteTerms(&buf, terms))
		return buf.Bytes()
	}

	first := format()
	second := format()
	assert.Equal(t, first, second)
	assert.True(t, bytes.Contains(first, []byte("GO:0006974")))
}

func TestWriteTerms_MissingGenes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTerms(&buf, []ora.Term{{ID: "KEGG:04115", Source: ora.SourceKEGG, AdjustedPValue: 0.01}}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	fields := strings.Split(lines[1], "\t")
	assert.Equal(t, "-", fields[2])
	assert.Equal(t, "-", fields[11])
}

func TestSummaryWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryWriter(&buf, 10).WriteTerms(sampleTerms()))

	out := buf.String()
	assert.Contains(t, out, "Rank")
	assert.Contains(t, out, "GO:0006974")
	assert.Contains(t, out, "DNA damag…")
	assert.Contains(t, out, "4/850")
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short", Shorten("short", 80))
	assert.Equal(t, "abcd…", Shorten("abcdefgh", 5))
	assert.Equal(t, "ünïc…", Shorten("ünïcödé", 5))
	assert.Equal(t, "anything", Shorten("anything", 0))
}
