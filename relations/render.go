package relations

import (
	"strings"

	"github.com/nodeadmin/ontopath/ontology"
)

// PathToText renders a path as prose, e.g. "heart part of circulatory
// system". Terms are shown by name when g has one, else by identifier.
// The absent path renders as "".
func PathToText(p Path, g *ontology.Graph) string {
	if p.IsZero() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(g.DisplayName(p.Terms[0]))
	for i, rel := range p.Relations {
		sb.WriteByte(' ')
		sb.WriteString(strings.ReplaceAll(rel, "_", " "))
		sb.WriteByte(' ')
		sb.WriteString(g.DisplayName(p.Terms[i+1]))
	}
	return sb.String()
}

// EncodedPathToText renders the string form of a path. "" passes through.
func EncodedPathToText(s string, g *ontology.Graph) string {
	return PathToText(ParsePath(s), g)
}

// TerminalTerm returns the term a path ends at; ok is false for the absent
// path.
func TerminalTerm(p Path) (id string, ok bool) {
	if p.IsZero() {
		return "", false
	}
	return p.Terminal(), true
}
