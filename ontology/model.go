package ontology

import (
	"sort"
	"strings"
)

// Separator splits a term identifier into namespace prefix and local code.
const Separator = ":"

// Header carries the ontology-level lines that precede the first stanza.
type Header struct {
	FormatVersion string `json:"format_version,omitempty"`
	DataVersion   string `json:"data_version,omitempty"`
	Ontology      string `json:"ontology,omitempty"`
}

// TypeDef represents an OBO Typedef stanza (relation type declaration).
type TypeDef struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	IsTransitive bool   `json:"is_transitive,omitempty"`
}

// Synonym represents a term synonym with its scope qualifier and cited sources.
type Synonym struct {
	Text    string   `json:"text"`
	Scope   string   `json:"scope,omitempty"` // EXACT, BROAD, NARROW, RELATED
	Sources []string `json:"sources,omitempty"`
}

// Relation is one named, ordered list of values on a term. Values are term
// identifiers for graph edges, or annotated text for synonym/def.
type Relation struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// Term is a node of the ontology graph. Relations keep first-seen order so
// traversal is deterministic.
type Term struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Relations  []Relation        `json:"relations,omitempty"`
	Synonyms   []Synonym         `json:"synonyms,omitempty"`
}

// NewTerm returns an empty term addressed by id.
func NewTerm(id string) *Term {
	t := &Term{}
	if id != "" {
		t.SetAttr("id", id)
	}
	return t
}

// Attr returns a scalar attribute.
func (t *Term) Attr(key string) (string, bool) {
	v, ok := t.Attributes[key]
	return v, ok
}

// SetAttr overwrites a scalar attribute. Setting "id" also updates ID.
func (t *Term) SetAttr(key, value string) {
	if t.Attributes == nil {
		t.Attributes = make(map[string]string, 4)
	}
	t.Attributes[key] = value
	if key == "id" {
		t.ID = value
	}
}

// Name returns the name attribute, or "" if unset.
func (t *Term) Name() string {
	return t.Attributes["name"]
}

// Prefix returns the namespace prefix of the term identifier.
func (t *Term) Prefix() string {
	return Prefix(t.ID)
}

// Values returns the values recorded under the named relation.
func (t *Term) Values(relation string) []string {
	if i := t.relationIndex(relation); i >= 0 {
		return t.Relations[i].Values
	}
	return nil
}

// HasRelation reports whether the term carries the named relation.
func (t *Term) HasRelation(relation string) bool {
	return t.relationIndex(relation) >= 0
}

// Append adds value to the named relation, creating the list on first use.
func (t *Term) Append(relation, value string) {
	if i := t.relationIndex(relation); i >= 0 {
		t.Relations[i].Values = append(t.Relations[i].Values, value)
		return
	}
	t.Relations = append(t.Relations, Relation{Type: relation, Values: []string{value}})
}

// RelationNames returns relation names in first-seen order.
func (t *Term) RelationNames() []string {
	names := make([]string, len(t.Relations))
	for i := range t.Relations {
		names[i] = t.Relations[i].Type
	}
	return names
}

// Definition returns the quoted text of the first def entry.
func (t *Term) Definition() string {
	defs := t.Values("def")
	if len(defs) == 0 {
		return ""
	}
	return parseQuoted(defs[0])
}

func (t *Term) relationIndex(relation string) int {
	for i := range t.Relations {
		if t.Relations[i].Type == relation {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the term.
func (t *Term) Clone() *Term {
	c := &Term{ID: t.ID}
	if t.Attributes != nil {
		c.Attributes = make(map[string]string, len(t.Attributes))
		for k, v := range t.Attributes {
			c.Attributes[k] = v
		}
	}
	if t.Relations != nil {
		c.Relations = make([]Relation, len(t.Relations))
		for i, r := range t.Relations {
			c.Relations[i] = Relation{Type: r.Type, Values: append([]string(nil), r.Values...)}
		}
	}
	if t.Synonyms != nil {
		c.Synonyms = make([]Synonym, len(t.Synonyms))
		for i, s := range t.Synonyms {
			c.Synonyms[i] = Synonym{Text: s.Text, Scope: s.Scope, Sources: append([]string(nil), s.Sources...)}
		}
	}
	return c
}

// Graph is an ontology: terms keyed by identifier. A Graph is built once by a
// parser or by Merge and is read-only afterwards, so concurrent readers are safe.
type Graph struct {
	Header   Header
	TypeDefs []TypeDef
	terms    map[string]*Term
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{terms: make(map[string]*Term)}
}

func newGraphSized(n int) *Graph {
	return &Graph{terms: make(map[string]*Term, n)}
}

// Insert stores t under its identifier, replacing any previous term.
func (g *Graph) Insert(t *Term) {
	g.terms[t.ID] = t
}

// Term looks up a term. Dangling references report false.
func (g *Graph) Term(id string) (*Term, bool) {
	t, ok := g.terms[id]
	return t, ok
}

// RelationsOf returns the values of relation on term id, or nil when either
// is absent.
func (g *Graph) RelationsOf(id, relation string) []string {
	t, ok := g.terms[id]
	if !ok {
		return nil
	}
	return t.Values(relation)
}

// DisplayName returns the term's name, falling back to the raw identifier.
func (g *Graph) DisplayName(id string) string {
	if t, ok := g.terms[id]; ok {
		if name := t.Name(); name != "" {
			return name
		}
	}
	return id
}

// Len returns the number of terms.
func (g *Graph) Len() int { return len(g.terms) }

// IDs returns all term identifiers in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.terms))
	for id := range g.terms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Terms returns all terms sorted by identifier.
func (g *Graph) Terms() []*Term {
	ids := g.IDs()
	out := make([]*Term, len(ids))
	for i, id := range ids {
		out[i] = g.terms[id]
	}
	return out
}

// TermsOfNamespace returns the terms whose identifier prefix is prefix,
// sorted by identifier.
func (g *Graph) TermsOfNamespace(prefix string) []*Term {
	var out []*Term
	for id, t := range g.terms {
		if Prefix(id) == prefix {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByName returns identifiers of terms whose name equals text
// (case-insensitive) or whose synonyms include it.
func (g *Graph) FindByName(text string) []string {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}
	var ids []string
	for id, t := range g.terms {
		if strings.ToLower(t.Name()) == needle {
			ids = append(ids, id)
			continue
		}
		for _, s := range t.Values("synonym") {
			if s == needle {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// Prefix returns the namespace part of id (text before the first separator),
// or id itself when it has none.
func Prefix(id string) string {
	p, _, _ := strings.Cut(id, Separator)
	return p
}
