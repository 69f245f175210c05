package ontology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOWL = `<?xml version="1.0"?>
<rdf:RDF xmlns="http://purl.obolibrary.org/obo/uberon.owl#"
     xmlns:obo="http://purl.obolibrary.org/obo/"
     xmlns:owl="http://www.w3.org/2002/07/owl#"
     xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
     xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
     xmlns:oboInOwl="http://www.geneontology.org/formats/oboInOwl#">
    <owl:Ontology rdf:about="http://purl.obolibrary.org/obo/uberon.owl">
        <owl:versionIRI rdf:resource="http://purl.obolibrary.org/obo/uberon/releases/2024-01-01/uberon.owl"/>
    </owl:Ontology>
    <owl:ObjectProperty rdf:about="http://purl.obolibrary.org/obo/BFO_0000050">
        <rdf:type rdf:resource="http://www.w3.org/2002/07/owl#TransitiveProperty"/>
        <rdfs:label>part of</rdfs:label>
    </owl:ObjectProperty>
    <owl:Class rdf:about="http://purl.obolibrary.org/obo/UBERON_0000970">
        <rdfs:subClassOf rdf:resource="http://purl.obolibrary.org/obo/UBERON_0000020"/>
        <rdfs:subClassOf>
            <owl:Restriction>
                <owl:onProperty rdf:resource="http://purl.obolibrary.org/obo/BFO_0000050"/>
                <owl:someValuesFrom rdf:resource="http://purl.obolibrary.org/obo/UBERON_0001456"/>
            </owl:Restriction>
        </rdfs:subClassOf>
        <obo:IAO_0000115>Light-detecting organ.</obo:IAO_0000115>
        <oboInOwl:hasExactSynonym>Eyeball</oboInOwl:hasExactSynonym>
        <oboInOwl:hasDbXref>FMA:54448</oboInOwl:hasDbXref>
        <oboInOwl:hasOBONamespace>uberon</oboInOwl:hasOBONamespace>
        <rdfs:label>eye</rdfs:label>
    </owl:Class>
    <owl:Class rdf:about="http://purl.obolibrary.org/obo/UBERON_0000001">
        <owl:deprecated rdf:datatype="http://www.w3.org/2001/XMLSchema#boolean">true</owl:deprecated>
        <rdfs:label>obsolete thing</rdfs:label>
    </owl:Class>
    <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0005623">
        <rdfs:label>cell</rdfs:label>
    </owl:Class>
</rdf:RDF>
`

func TestParseOWL(t *testing.T) {
	g, diag, err := ParseOWL(strings.NewReader(sampleOWL), ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "http://purl.obolibrary.org/obo/uberon.owl", g.Header.Ontology)
	assert.Equal(t, "http://purl.obolibrary.org/obo/uberon/releases/2024-01-01/uberon.owl", g.Header.DataVersion)
	require.Len(t, g.TypeDefs, 1)
	assert.Equal(t, TypeDef{ID: "BFO:0000050", Name: "part of", IsTransitive: true}, g.TypeDefs[0])

	eye, ok := g.Term("UBERON:0000970")
	require.True(t, ok)
	assert.Equal(t, "eye", eye.Name())
	assert.Equal(t, []string{"UBERON:0000020"}, eye.Values("is_a"))
	assert.Equal(t, []string{"UBERON:0001456"}, eye.Values("part_of"))
	assert.False(t, eye.HasRelation("BFO:0000050"))
	assert.Equal(t, "Light-detecting organ.", eye.Definition())
	assert.Equal(t, []string{"eyeball"}, eye.Values("synonym"))
	assert.Equal(t, []Synonym{{Text: "eyeball", Scope: "EXACT"}}, eye.Synonyms)
	assert.Equal(t, []string{"FMA:54448"}, eye.Values("xref"))
	ns, _ := eye.Attr("namespace")
	assert.Equal(t, "uberon", ns)

	_, ok = g.Term("UBERON:0000001")
	assert.False(t, ok)
	assert.Equal(t, 1, diag.DiscardedObsolete)
	assert.Equal(t, 2, diag.Terms)
}

func TestParseOWL_NamespaceFilter(t *testing.T) {
	g, diag, err := ParseOWL(strings.NewReader(sampleOWL), ParseOptions{Namespaces: []string{"UBERON"}, KeepObsolete: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"UBERON:0000001", "UBERON:0000970"}, g.IDs())
	assert.Equal(t, 1, diag.DiscardedNamespace)

	eye, _ := g.Term("UBERON:0000970")
	assert.False(t, eye.HasRelation("xref"), "FMA xref is outside the namespaces")
}

func TestOBOIDFromURI(t *testing.T) {
	assert.Equal(t, "UBERON:0000172", oboIDFromURI("http://purl.obolibrary.org/obo/UBERON_0000172"))
	assert.Equal(t, "uberon.owl", oboIDFromURI("http://purl.obolibrary.org/obo/uberon.owl"))
	assert.Equal(t, "http://example.org/x", oboIDFromURI("http://example.org/x"))
}
