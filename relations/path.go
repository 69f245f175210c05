package relations

import (
	"strings"
)

// Separators of the path string form "A.is_a~B.part_of~C".
const (
	TermRelationSep = "." // between a term and the following relation
	RelationTermSep = "~" // between a relation and the following term
)

// Path is an alternating walk Terms[0] Relations[0] Terms[1] ... with
// len(Relations) == len(Terms)-1. The zero Path means "not found".
type Path struct {
	Terms     []string
	Relations []string
}

// NewPath starts a path at source.
func NewPath(source string) Path {
	return Path{Terms: []string{source}}
}

// IsZero reports whether p is the absent path.
func (p Path) IsZero() bool { return len(p.Terms) == 0 }

// Len returns the number of hops.
func (p Path) Len() int { return len(p.Relations) }

// Source returns the first term, or "".
func (p Path) Source() string {
	if p.IsZero() {
		return ""
	}
	return p.Terms[0]
}

// Terminal returns the last term, or "".
func (p Path) Terminal() string {
	if p.IsZero() {
		return ""
	}
	return p.Terms[len(p.Terms)-1]
}

// Contains reports whether id already appears on the path.
func (p Path) Contains(id string) bool {
	for _, t := range p.Terms {
		if t == id {
			return true
		}
	}
	return false
}

// Extend returns a copy of p with one more hop. p is not modified.
func (p Path) Extend(relation, term string) Path {
	terms := make([]string, len(p.Terms), len(p.Terms)+1)
	copy(terms, p.Terms)
	rels := make([]string, len(p.Relations), len(p.Relations)+1)
	copy(rels, p.Relations)
	return Path{Terms: append(terms, term), Relations: append(rels, relation)}
}

// String encodes the path; the absent path encodes as "".
func (p Path) String() string {
	if p.IsZero() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(p.Terms[0])
	for i, rel := range p.Relations {
		sb.WriteString(TermRelationSep)
		sb.WriteString(rel)
		sb.WriteString(RelationTermSep)
		sb.WriteString(p.Terms[i+1])
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(b []byte) error {
	*p = ParsePath(string(b))
	return nil
}

// ParsePath decodes the string form. Each "~"-separated segment but the last
// ends in ".relation"; splitting on the last "." lets term identifiers
// contain dots. "" decodes to the absent path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	segments := strings.Split(s, RelationTermSep)
	p := Path{
		Terms:     make([]string, 0, len(segments)),
		Relations: make([]string, 0, len(segments)-1),
	}
	for i, seg := range segments {
		if i == len(segments)-1 {
			p.Terms = append(p.Terms, seg)
			break
		}
		cut := strings.LastIndex(seg, TermRelationSep)
		if cut < 0 {
			// relation token missing; keep the term and an empty relation
			p.Terms = append(p.Terms, seg)
			p.Relations = append(p.Relations, "")
			continue
		}
		p.Terms = append(p.Terms, seg[:cut])
		p.Relations = append(p.Relations, seg[cut+1:])
	}
	return p
}
