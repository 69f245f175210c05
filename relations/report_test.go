package relations

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeadmin/ontopath/ontology"
)

func TestPathToText(t *testing.T) {
	g := buildGraph(map[string]string{"UBERON:0000948": "heart", "UBERON:0001009": "circulatory system"},
		edge{"UBERON:0000948", "part_of", "UBERON:0001009"})

	p := ParsePath("UBERON:0000948.part_of~UBERON:0001009")
	assert.Equal(t, "heart part of circulatory system", PathToText(p, g))
	assert.Equal(t, "heart part of circulatory system", EncodedPathToText(p.String(), g))

	dangling := ParsePath("UBERON:0000948.develops_from~EXT:1")
	assert.Equal(t, "heart develops from EXT:1", PathToText(dangling, g))

	assert.Equal(t, "", PathToText(Path{}, g))
	assert.Equal(t, "", EncodedPathToText("", g))
	assert.Equal(t, "heart", EncodedPathToText("UBERON:0000948", g))
}

func TestTerminalTerm(t *testing.T) {
	id, ok := TerminalTerm(ParsePath("A.is_a~B.is_a~C"))
	assert.True(t, ok)
	assert.Equal(t, "C", id)

	_, ok = TerminalTerm(Path{})
	assert.False(t, ok)
}

func reportGraph() *ontology.Graph {
	return buildGraph(map[string]string{"FF:1": "blood sample", "UBERON:1": "blood"},
		edge{"FF:1", "derives_from", "UBERON:1"},
		edge{"FF:1", "is_a", "UBERON:2"},
	)
}

func TestResults_Records(t *testing.T) {
	g := reportGraph()
	q := Query{
		AllowedRelations: []string{"is_a", "derives_from"},
		Sources:          []string{"FF:1", "FF:2"},
		Targets:          []string{"UBERON"},
		Mode:             ModeAll,
	}
	res, err := Search(context.Background(), q, g)
	require.NoError(t, err)

	records := res.Records(g)
	require.Len(t, records, 3)

	assert.Equal(t, "FF:1", records[0].Source)
	assert.Equal(t, "FF:1.derives_from~UBERON:1", records[0].Path.String())
	assert.Equal(t, "blood sample derives from blood", records[0].Text)
	assert.Equal(t, "UBERON:1", records[0].Target)
	assert.True(t, records[0].Found())

	assert.Equal(t, "UBERON:2", records[1].Target)

	assert.Equal(t, Record{Source: "FF:2"}, records[2])
	assert.False(t, records[2].Found())
}

func TestResults_Report(t *testing.T) {
	g := reportGraph()
	q := Query{
		AllowedRelations: []string{"derives_from"},
		Sources:          []string{"FF:1", "FF:2"},
		Targets:          []string{"UBERON:1"},
		Mode:             ModeAny,
	}
	res, err := Search(context.Background(), q, g)
	require.NoError(t, err)

	report := res.Report(g)
	assert.Equal(t, 2, report.Stats.Sources)
	assert.Equal(t, 1, report.Stats.Found)
	assert.Equal(t, 1, report.Stats.Paths)
	assert.Equal(t, 1, report.Stats.Expanded)

	var buf bytes.Buffer
	require.NoError(t, WriteReportJSON(&buf, report))

	var decoded struct {
		Query   Query `json:"query"`
		Records []struct {
			From string `json:"from"`
			Path string `json:"relation_path"`
			Text string `json:"relation_text"`
			To   string `json:"to"`
		} `json:"records"`
		Stats ReportStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, q, decoded.Query)
	require.Len(t, decoded.Records, 2)
	assert.Equal(t, "FF:1.derives_from~UBERON:1", decoded.Records[0].Path)
	assert.Equal(t, "blood sample derives from blood", decoded.Records[0].Text)
	assert.Equal(t, "", decoded.Records[1].Path)
	assert.Equal(t, "", decoded.Records[1].To)
}
