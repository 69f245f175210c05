package ontology

import (
	"errors"
	"fmt"
	"log/slog"
)

// Prefer selects which graph wins a conflicting scalar attribute.
type Prefer string

const (
	PreferA Prefer = "a"
	PreferB Prefer = "b"
)

// ErrInvalidPrefer is returned by ParsePrefer for unknown policies.
var ErrInvalidPrefer = errors.New("prefer must be \"a\" or \"b\"")

// ParsePrefer converts a policy name. "self"/"new" are accepted as aliases.
func ParsePrefer(s string) (Prefer, error) {
	switch s {
	case "a", "self", "":
		return PreferA, nil
	case "b", "new":
		return PreferB, nil
	}
	return "", fmt.Errorf("%w, got %q", ErrInvalidPrefer, s)
}

// Merge returns a new graph holding the union of a and b. Terms present in
// both are merged field by field; conflicts are resolved per prefer and
// reported through logger. Neither input is modified.
func Merge(a, b *Graph, prefer Prefer, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	out := newGraphSized(a.Len() + b.Len())
	out.Header = a.Header
	if out.Header.Ontology == "" {
		out.Header = b.Header
	}
	out.TypeDefs = mergeTypeDefs(a.TypeDefs, b.TypeDefs)

	shared := 0
	for id, t := range a.terms {
		out.terms[id] = t.Clone()
	}
	for id, t := range b.terms {
		if existing, ok := out.terms[id]; ok {
			shared++
			mergeTerm(existing, t, prefer, logger)
			continue
		}
		out.terms[id] = t.Clone()
	}

	if want := a.Len() + b.Len() - shared; out.Len() != want {
		logger.Error("merged graph size mismatch",
			slog.Int("got", out.Len()),
			slog.Int("want", want))
	}
	return out
}

// MergeAll folds graphs left to right under one policy.
func MergeAll(prefer Prefer, logger *slog.Logger, graphs ...*Graph) *Graph {
	if len(graphs) == 0 {
		return NewGraph()
	}
	acc := graphs[0]
	if len(graphs) == 1 {
		return Merge(acc, NewGraph(), prefer, logger)
	}
	for _, g := range graphs[1:] {
		acc = Merge(acc, g, prefer, logger)
	}
	return acc
}

// mergeTerm merges src into dst in place; dst is already a private copy.
func mergeTerm(dst, src *Term, prefer Prefer, logger *slog.Logger) {
	for key, bv := range src.Attributes {
		av, ok := dst.Attributes[key]
		if !ok {
			dst.SetAttr(key, bv)
			continue
		}
		if av == bv {
			continue
		}
		switch key {
		case "namespace":
			dst.SetAttr(key, fmt.Sprintf("Combined %s and %s", av, bv))
			logger.Debug("combined namespaces", slog.String("id", dst.ID), slog.String("namespace", dst.Attributes[key]))
		case "name":
			logger.Info("unmatching names, keeping the former",
				slog.String("id", dst.ID),
				slog.String("kept", av),
				slog.String("dropped", bv))
		default:
			logger.Warn("conflicting attribute",
				slog.String("id", dst.ID),
				slog.String("key", key),
				slog.String("a", av),
				slog.String("b", bv),
				slog.String("prefer", string(prefer)))
			if prefer == PreferB {
				dst.SetAttr(key, bv)
			}
		}
	}

	for _, rel := range src.Relations {
		i := dst.relationIndex(rel.Type)
		if i < 0 {
			dst.Relations = append(dst.Relations, Relation{Type: rel.Type, Values: append([]string(nil), rel.Values...)})
			continue
		}
		dst.Relations[i].Values = union(dst.Relations[i].Values, rel.Values)
	}

	for _, s := range src.Synonyms {
		if !hasSynonym(dst.Synonyms, s) {
			dst.Synonyms = append(dst.Synonyms, Synonym{Text: s.Text, Scope: s.Scope, Sources: append([]string(nil), s.Sources...)})
		}
	}
}

// union keeps first-seen order: a's values, then b's new ones.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func hasSynonym(list []Synonym, s Synonym) bool {
	for _, v := range list {
		if v.Text == s.Text && v.Scope == s.Scope {
			return true
		}
	}
	return false
}

func mergeTypeDefs(a, b []TypeDef) []TypeDef {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]TypeDef, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]TypeDef{a, b} {
		for _, td := range list {
			if _, ok := seen[td.ID]; ok {
				continue
			}
			seen[td.ID] = struct{}{}
			out = append(out, td)
		}
	}
	return out
}
