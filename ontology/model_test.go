package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph() *Graph {
	g := NewGraph()

	eye := NewTerm("UBERON:0000970")
	eye.SetAttr("name", "eye")
	eye.Append("is_a", "UBERON:0000020")
	eye.Append("synonym", "eyeball")
	eye.Append("part_of", "UBERON:0001456")
	eye.Append("is_a", "UBERON:0004121")
	g.Insert(eye)

	face := NewTerm("UBERON:0001456")
	face.SetAttr("name", "face")
	g.Insert(face)

	g.Insert(NewTerm("GO:0005623"))
	return g
}

func TestTerm_Relations(t *testing.T) {
	g := newTestGraph()
	eye, ok := g.Term("UBERON:0000970")
	require.True(t, ok)

	assert.Equal(t, "UBERON:0000970", eye.ID)
	id, _ := eye.Attr("id")
	assert.Equal(t, "UBERON:0000970", id)
	assert.Equal(t, "UBERON", eye.Prefix())

	assert.Equal(t, []string{"is_a", "synonym", "part_of"}, eye.RelationNames())
	assert.Equal(t, []string{"UBERON:0000020", "UBERON:0004121"}, eye.Values("is_a"))
	assert.True(t, eye.HasRelation("part_of"))
	assert.False(t, eye.HasRelation("develops_from"))
	assert.Nil(t, eye.Values("develops_from"))
	assert.Empty(t, eye.Definition())
}

func TestTerm_Clone(t *testing.T) {
	orig := NewTerm("UBERON:1")
	orig.SetAttr("name", "one")
	orig.Append("is_a", "UBERON:2")
	orig.Synonyms = []Synonym{{Text: "uno", Scope: "EXACT", Sources: []string{"X:1"}}}

	c := orig.Clone()
	require.Equal(t, orig, c)

	c.SetAttr("name", "changed")
	c.Append("is_a", "UBERON:3")
	c.Synonyms[0].Sources[0] = "X:2"

	assert.Equal(t, "one", orig.Name())
	assert.Equal(t, []string{"UBERON:2"}, orig.Values("is_a"))
	assert.Equal(t, "X:1", orig.Synonyms[0].Sources[0])
}

func TestGraph_Lookup(t *testing.T) {
	g := newTestGraph()

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"GO:0005623", "UBERON:0000970", "UBERON:0001456"}, g.IDs())

	assert.Equal(t, "eye", g.DisplayName("UBERON:0000970"))
	assert.Equal(t, "GO:0005623", g.DisplayName("GO:0005623"), "unnamed term falls back to id")
	assert.Equal(t, "UBERON:404", g.DisplayName("UBERON:404"), "dangling id falls back to id")

	assert.Equal(t, []string{"UBERON:0001456"}, g.RelationsOf("UBERON:0000970", "part_of"))
	assert.Nil(t, g.RelationsOf("UBERON:404", "part_of"))

	uberon := g.TermsOfNamespace("UBERON")
	require.Len(t, uberon, 2)
	assert.Equal(t, "UBERON:0000970", uberon[0].ID)
	assert.Equal(t, "UBERON:0001456", uberon[1].ID)
}

func TestGraph_FindByName(t *testing.T) {
	g := newTestGraph()

	assert.Equal(t, []string{"UBERON:0000970"}, g.FindByName("Eye"))
	assert.Equal(t, []string{"UBERON:0000970"}, g.FindByName("  EYEBALL "))
	assert.Empty(t, g.FindByName("nose"))
	assert.Nil(t, g.FindByName(""))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "UBERON", Prefix("UBERON:0000970"))
	assert.Equal(t, "C", Prefix("C"))
	assert.Equal(t, "", Prefix(":1"))
}
