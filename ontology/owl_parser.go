package ontology

import (
	"encoding/xml"
	"io"
	"log/slog"
	"strings"
)

// OWL/RDF namespace URIs
const (
	nsOWL  = "http://www.w3.org/2002/07/owl#"
	nsRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	nsOBO  = "http://purl.obolibrary.org/obo/"
)

// ParseOWL parses an OWL/RDF-XML ontology into the same graph shape as
// ParseOBO. Object property labels become relation names, so a restriction
// on obo:BFO_0000050 labelled "part of" is stored as part_of.
func ParseOWL(r io.Reader, opts ParseOptions) (*Graph, *Diagnostics, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	decoder := xml.NewDecoder(r)
	pool := newInternPool()
	diag := &Diagnostics{}
	g := newGraphSized(initialTermCapacity)

	var parsed []*Term
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, diag, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case matchElement(se, nsOWL, "Class"):
			t := parseOWLClass(decoder, se, pool, opts.Namespaces)
			if t.ID == "" {
				diag.DiscardedNoID++
				continue
			}
			parsed = append(parsed, t)
		case matchElement(se, nsOWL, "Ontology"):
			parseOWLOntologyHeader(decoder, se, &g.Header)
		case matchElement(se, nsOWL, "ObjectProperty"):
			td := parseOWLObjectProperty(decoder, se, pool)
			if td.ID != "" {
				g.TypeDefs = append(g.TypeDefs, td)
			}
		case matchElement(se, nsRDF, "RDF"):
			// container element, descend into it
		default:
			if err := decoder.Skip(); err != nil {
				return nil, diag, err
			}
		}
	}

	names := relationNames(g.TypeDefs)
	for _, t := range parsed {
		for i := range t.Relations {
			if name, ok := names[t.Relations[i].Type]; ok {
				t.Relations[i].Type = pool.get(name)
			}
		}
		switch {
		case !opts.KeepObsolete && (t.Attributes["is_obsolete"] == "true" || isObsolete(t)):
			diag.DiscardedObsolete++
			log.Debug("discarding obsolete term", slog.String("id", t.ID))
		case len(opts.Namespaces) > 0 && !containsString(opts.Namespaces, t.Prefix()):
			diag.DiscardedNamespace++
		default:
			g.Insert(t)
		}
	}
	diag.Terms = g.Len()
	return g, diag, nil
}

// relationNames maps property ids to underscore-joined labels.
func relationNames(tds []TypeDef) map[string]string {
	m := make(map[string]string, len(tds))
	for _, td := range tds {
		if td.Name != "" {
			m[td.ID] = strings.ReplaceAll(strings.TrimSpace(td.Name), " ", "_")
		}
	}
	return m
}

func matchElement(se xml.StartElement, ns, local string) bool {
	return se.Name.Space == ns && se.Name.Local == local
}

func getAttr(se xml.StartElement, ns, local string) string {
	for _, a := range se.Attr {
		if a.Name.Space == ns && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func oboIDFromURI(uri string) string {
	// Convert http://purl.obolibrary.org/obo/UBERON_0000172 to UBERON:0000172
	if strings.HasPrefix(uri, nsOBO) {
		id := uri[len(nsOBO):]
		if idx := strings.IndexByte(id, '_'); idx >= 0 {
			return id[:idx] + Separator + id[idx+1:]
		}
		return id
	}
	return uri
}

func parseOWLOntologyHeader(decoder *xml.Decoder, se xml.StartElement, h *Header) {
	if about := getAttr(se, nsRDF, "about"); about != "" {
		h.Ontology = about
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			return
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "versionIRI" {
				if v := getAttr(t, nsRDF, "resource"); v != "" {
					h.DataVersion = v
				}
			}
			decoder.Skip()
		case xml.EndElement:
			return
		}
	}
}

var owlSynonymScopes = map[string]string{
	"hasExactSynonym":   "EXACT",
	"hasBroadSynonym":   "BROAD",
	"hasNarrowSynonym":  "NARROW",
	"hasRelatedSynonym": "RELATED",
}

func parseOWLClass(decoder *xml.Decoder, se xml.StartElement, pool *internPool, namespaces []string) *Term {
	t := &Term{}
	if about := getAttr(se, nsRDF, "about"); about != "" {
		t.SetAttr("id", oboIDFromURI(about))
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			return t
		}

		switch el := tok.(type) {
		case xml.StartElement:
			local := el.Name.Local
			switch {
			case matchElement(el, nsRDFS, "label"):
				t.SetAttr("name", readCharData(decoder))
			case matchElement(el, nsRDFS, "subClassOf"):
				if res := getAttr(el, nsRDF, "resource"); res != "" {
					t.Append(pool.get("is_a"), oboIDFromURI(res))
					decoder.Skip()
				} else {
					rel, target := parseOWLRestriction(decoder, pool)
					if rel != "" && target != "" {
						t.Append(rel, target)
					}
				}
			case local == "deprecated":
				if readCharData(decoder) == "true" {
					t.SetAttr("is_obsolete", "true")
				}
			case local == "hasAlternativeId":
				t.Append(pool.get("alt_id"), readCharData(decoder))
			case local == "hasOBONamespace":
				t.SetAttr("namespace", pool.get(readCharData(decoder)))
			case local == "IAO_0000115" || local == "definition":
				t.Append(pool.get("def"), readCharData(decoder))
			case owlSynonymScopes[local] != "":
				text := strings.ToLower(readCharData(decoder))
				t.Append(pool.get("synonym"), text)
				t.Synonyms = append(t.Synonyms, Synonym{Text: text, Scope: owlSynonymScopes[local]})
			case local == "hasDbXref" || local == "hasDbXRef":
				if x := readCharData(decoder); IsWellFormedTerm(x, namespaces) {
					t.Append(pool.get("xref"), x)
				}
			case local == "inSubset":
				if res := getAttr(el, nsRDF, "resource"); res != "" {
					t.Append(pool.get("subset"), pool.get(oboIDFromURI(res)))
				}
				decoder.Skip()
			case local == "comment":
				t.SetAttr("comment", readCharData(decoder))
			case local == "IAO_0100001":
				if res := getAttr(el, nsRDF, "resource"); res != "" {
					t.Append(pool.get("replaced_by"), oboIDFromURI(res))
				}
				decoder.Skip()
			default:
				decoder.Skip()
			}
		case xml.EndElement:
			// End of owl:Class
			return t
		}
	}
}

// parseOWLRestriction parses the content inside a rdfs:subClassOf that
// contains an owl:Restriction with onProperty and someValuesFrom.
func parseOWLRestriction(decoder *xml.Decoder, pool *internPool) (relation, target string) {
	depth := 0
	for {
		tok, err := decoder.Token()
		if err != nil {
			return relation, target
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case matchElement(el, nsOWL, "onProperty"):
				if res := getAttr(el, nsRDF, "resource"); res != "" {
					relation = pool.get(oboIDFromURI(res))
				}
				decoder.Skip()
				depth--
			case matchElement(el, nsOWL, "someValuesFrom"):
				if res := getAttr(el, nsRDF, "resource"); res != "" {
					target = oboIDFromURI(res)
				}
				decoder.Skip()
				depth--
			case matchElement(el, nsOWL, "Restriction"):
				// descend
			default:
				decoder.Skip()
				depth--
			}
		case xml.EndElement:
			depth--
			if depth < 0 {
				return relation, target
			}
		}
	}
}

// parseOWLObjectProperty parses an owl:ObjectProperty element.
func parseOWLObjectProperty(decoder *xml.Decoder, se xml.StartElement, pool *internPool) TypeDef {
	var td TypeDef
	if about := getAttr(se, nsRDF, "about"); about != "" {
		td.ID = pool.get(oboIDFromURI(about))
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			return td
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case matchElement(el, nsRDF, "type"):
				if getAttr(el, nsRDF, "resource") == nsOWL+"TransitiveProperty" {
					td.IsTransitive = true
				}
				decoder.Skip()
			case matchElement(el, nsRDFS, "label"):
				td.Name = readCharData(decoder)
			default:
				decoder.Skip()
			}
		case xml.EndElement:
			return td
		}
	}
}

func readCharData(decoder *xml.Decoder) string {
	var sb strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			return strings.TrimSpace(sb.String())
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			// nested element, still collect its text
			sb.WriteString(readCharData(decoder))
		case xml.EndElement:
			return strings.TrimSpace(sb.String())
		}
	}
}
