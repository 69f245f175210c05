package ontology

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"
)

const (
	initialTermCapacity = 16384
	scannerBufferSize   = 1 << 20 // 1 MB
	maxRecordedIssues   = 200
)

// DefaultRelations is the relation vocabulary recognized inside
// relationship and intersection_of lines.
var DefaultRelations = []string{
	"derives_from",
	"is_model_for",
	"develops_from",
	"part_of",
	"never_in_taxon",
	"present_in_taxon",
	"only_in_taxon",
	"dubious_for_taxon",
}

// Malformed-line reasons.
var (
	errMissingValue    = errors.New("missing value")
	errUnknownRelation = errors.New("unknown relationship")
	errUnquotedSynonym = errors.New("synonym without quoted text")
)

// ParseOptions controls filtering during parsing. The zero value keeps every
// namespace and discards obsolete terms.
type ParseOptions struct {
	// Namespaces restricts kept terms, xrefs and cited sources to these
	// prefixes. Empty means no restriction.
	Namespaces []string

	// KeepObsolete keeps terms whose comment mentions "obsolete".
	KeepObsolete bool

	// Relations extends DefaultRelations.
	Relations []string

	Logger *slog.Logger
}

// LineIssue records a skipped input line.
type LineIssue struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Diagnostics summarizes what the parser kept, dropped and skipped.
type Diagnostics struct {
	Lines              int            `json:"lines"`
	Terms              int            `json:"terms"`
	DiscardedNoID      int            `json:"discarded_no_id"`
	DiscardedObsolete  int            `json:"discarded_obsolete"`
	DiscardedNamespace int            `json:"discarded_namespace"`
	UnknownFields      map[string]int `json:"unknown_fields,omitempty"`
	SkippedLines       int            `json:"skipped_lines"`
	Issues             []LineIssue    `json:"issues,omitempty"` // first maxRecordedIssues only
}

func (d *Diagnostics) skip(line int, text string, err error) {
	d.SkippedLines++
	if len(d.Issues) < maxRecordedIssues {
		d.Issues = append(d.Issues, LineIssue{Line: line, Text: text, Reason: err.Error()})
	}
}

// internPool avoids duplicate string allocations for repeated values.
type internPool struct {
	m map[string]string
}

func newInternPool() *internPool {
	return &internPool{m: make(map[string]string, 64)}
}

func (p *internPool) get(s string) string {
	if v, ok := p.m[s]; ok {
		return v
	}
	p.m[s] = s
	return s
}

type fieldKind uint8

const (
	fieldText    fieldKind = iota + 1 // remainder joined, stored as scalar
	fieldScalar                       // second token, stored as scalar
	fieldList                         // second token, appended
	fieldNested                       // relationship-name conditional
	fieldSynonym
	fieldDef
	fieldXref
)

var fieldKinds = map[string]fieldKind{
	"name":            fieldText,
	"comment":         fieldText,
	"id":              fieldScalar,
	"namespace":       fieldScalar,
	"is_obsolete":     fieldScalar,
	"alt_id":          fieldList,
	"is_a":            fieldList,
	"subset":          fieldList,
	"replaced_by":     fieldList,
	"union_of":        fieldList,
	"consider":        fieldList,
	"relationship":    fieldNested,
	"intersection_of": fieldNested,
	"synonym":         fieldSynonym,
	"def":             fieldDef,
	"xref":            fieldXref,
}

// entry is one value produced from a line.
type entry struct {
	key     string
	value   string
	scalar  bool
	synonym *Synonym
}

// lineReader turns one tokenized field line into entries.
type lineReader struct {
	namespaces []string
	relations  map[string]bool
}

func newLineReader(opts ParseOptions) *lineReader {
	rels := make(map[string]bool, len(DefaultRelations)+len(opts.Relations))
	for _, r := range DefaultRelations {
		rels[r] = true
	}
	for _, r := range opts.Relations {
		rels[r] = true
	}
	return &lineReader{namespaces: opts.Namespaces, relations: rels}
}

// read returns the entries for fields. Unknown field names return ok=false;
// malformed lines return an error.
func (lr *lineReader) read(fields []string) (entries []entry, ok bool, err error) {
	if len(fields) == 0 {
		return nil, true, nil
	}
	field := strings.ReplaceAll(fields[0], ":", "")
	kind, ok := fieldKinds[field]
	if !ok {
		return nil, false, nil
	}

	switch kind {
	case fieldText:
		return []entry{{key: field, value: strings.Join(fields[1:], " "), scalar: true}}, true, nil

	case fieldScalar, fieldList:
		if len(fields) < 2 {
			return nil, true, errMissingValue
		}
		return []entry{{key: field, value: fields[1], scalar: kind == fieldScalar}}, true, nil

	case fieldNested:
		if len(fields) < 2 {
			return nil, true, errMissingValue
		}
		if lr.relations[fields[1]] {
			if len(fields) < 3 {
				return nil, true, errMissingValue
			}
			return []entry{{key: fields[1], value: fields[2]}}, true, nil
		}
		if strings.Contains(fields[1], Separator) {
			return []entry{{key: field, value: fields[1]}}, true, nil
		}
		return nil, true, errUnknownRelation

	case fieldSynonym:
		return lr.readSynonym(fields)

	case fieldDef:
		rest := strings.Join(fields[1:], " ")
		entries = []entry{{key: field, value: rest}}
		_, after := splitQuoted(rest)
		return append(entries, lr.extractSources(after)...), true, nil

	case fieldXref:
		if len(fields) < 2 {
			return nil, true, errMissingValue
		}
		if !IsWellFormedTerm(fields[1], lr.namespaces) {
			return nil, true, nil
		}
		return []entry{{key: field, value: fields[1]}}, true, nil
	}
	return nil, false, nil
}

// readSynonym parses: synonym: "text" SCOPE [SOURCE, ...]
func (lr *lineReader) readSynonym(fields []string) ([]entry, bool, error) {
	rest := strings.Join(fields[1:], " ")
	if strings.Count(rest, `"`) < 2 {
		return nil, true, errUnquotedSynonym
	}
	text, after := splitQuoted(rest)
	syn := &Synonym{Text: strings.ToLower(text)}
	if parts := strings.Fields(after); len(parts) > 0 && !strings.HasPrefix(parts[0], "[") {
		syn.Scope = parts[0]
	}

	sources := lr.extractSources(after)
	for _, s := range sources {
		syn.Sources = append(syn.Sources, s.value)
	}
	entries := make([]entry, 0, len(sources)+1)
	entries = append(entries, entry{key: "synonym", value: syn.Text, synonym: syn})
	return append(entries, sources...), true, nil
}

// extractSources reads the first bracketed, comma-separated list in text.
// Term references become entries keyed by their own prefix; URLs are kept
// under "url"; anything else is dropped.
func (lr *lineReader) extractSources(text string) []entry {
	open := strings.IndexByte(text, '[')
	if open < 0 {
		return nil
	}
	end := strings.IndexByte(text[open+1:], ']')
	if end < 0 {
		return nil
	}
	var out []entry
	for _, part := range strings.Split(text[open+1:open+1+end], ",") {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		if u, ok := looksLikeURL(s); ok {
			out = append(out, entry{key: "url", value: u})
		} else if IsWellFormedTerm(s, lr.namespaces) {
			out = append(out, entry{key: Prefix(s), value: s})
		}
	}
	return out
}

// ParseOBO parses an OBO-format ontology from the given reader. Irregular
// lines are skipped and reported in the returned Diagnostics; only read
// failures are returned as errors.
func ParseOBO(r io.Reader, opts ParseOptions) (*Graph, *Diagnostics, error) {
	p := &oboParser{
		opts:  opts,
		log:   opts.Logger,
		lr:    newLineReader(opts),
		pool:  newInternPool(),
		graph: newGraphSized(initialTermCapacity),
		diag:  &Diagnostics{},
	}
	if p.log == nil {
		p.log = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scannerBufferSize), scannerBufferSize)
	for scanner.Scan() {
		p.diag.Lines++
		p.line(strings.TrimSpace(scanner.Text()))
	}
	p.flush()
	p.diag.Terms = p.graph.Len()

	if err := scanner.Err(); err != nil {
		return p.graph, p.diag, err
	}
	return p.graph, p.diag, nil
}

type stanza uint8

const (
	stanzaHeader stanza = iota
	stanzaTerm
	stanzaTypedef
	stanzaOther
)

type oboParser struct {
	opts  ParseOptions
	log   *slog.Logger
	lr    *lineReader
	pool  *internPool
	graph *Graph
	diag  *Diagnostics

	state   stanza
	term    *Term
	typedef *TypeDef
}

func (p *oboParser) line(line string) {
	if line == "" || line[0] == '!' {
		return
	}
	if line[0] == '[' {
		p.flush()
		switch {
		case strings.HasPrefix(line, "[Term]"):
			p.state = stanzaTerm
			p.term = &Term{}
		case strings.HasPrefix(line, "[Typedef]"):
			p.state = stanzaTypedef
			p.typedef = &TypeDef{}
		default:
			p.state = stanzaOther
		}
		return
	}

	switch p.state {
	case stanzaHeader:
		p.headerLine(line)
	case stanzaTerm:
		p.termLine(line)
	case stanzaTypedef:
		p.typedefLine(line)
	}
}

func (p *oboParser) headerLine(line string) {
	key, val, ok := strings.Cut(line, ": ")
	if !ok {
		return
	}
	switch key {
	case "format-version":
		p.graph.Header.FormatVersion = val
	case "data-version":
		p.graph.Header.DataVersion = val
	case "ontology":
		p.graph.Header.Ontology = val
	}
}

func (p *oboParser) typedefLine(line string) {
	key, val, ok := strings.Cut(line, ": ")
	if !ok {
		return
	}
	switch key {
	case "id":
		p.typedef.ID = p.pool.get(val)
	case "name":
		p.typedef.Name = val
	case "is_transitive":
		p.typedef.IsTransitive = val == "true"
	}
}

func (p *oboParser) termLine(line string) {
	fields := strings.Fields(line)
	entries, known, err := p.lr.read(fields)
	if err != nil {
		p.diag.skip(p.diag.Lines, line, err)
		p.log.Warn("skipping malformed line",
			slog.Int("line", p.diag.Lines),
			slog.String("text", line),
			slog.String("reason", err.Error()))
		return
	}
	if !known {
		if p.diag.UnknownFields == nil {
			p.diag.UnknownFields = make(map[string]int)
		}
		field := strings.TrimSuffix(fields[0], ":")
		p.diag.UnknownFields[field]++
		p.log.Debug("ignoring unrecognized field",
			slog.Int("line", p.diag.Lines),
			slog.String("field", field))
		return
	}

	for _, e := range entries {
		if e.scalar {
			p.term.SetAttr(e.key, e.value)
			continue
		}
		p.term.Append(p.pool.get(e.key), e.value)
		if e.synonym != nil {
			p.term.Synonyms = append(p.term.Synonyms, *e.synonym)
		}
	}
}

// flush completes the pending stanza.
func (p *oboParser) flush() {
	switch p.state {
	case stanzaTypedef:
		if p.typedef != nil && p.typedef.ID != "" {
			p.graph.TypeDefs = append(p.graph.TypeDefs, *p.typedef)
		}
		p.typedef = nil
	case stanzaTerm:
		if p.term != nil {
			p.complete(p.term)
		}
		p.term = nil
	}
}

// complete inserts t unless it lacks an id, is obsolete, or falls outside
// the allowed namespaces.
func (p *oboParser) complete(t *Term) {
	if t.ID == "" {
		p.diag.DiscardedNoID++
		return
	}
	if !p.opts.KeepObsolete && isObsolete(t) {
		p.diag.DiscardedObsolete++
		p.log.Debug("discarding obsolete term",
			slog.String("id", t.ID),
			slog.String("name", t.Name()))
		return
	}
	if len(p.opts.Namespaces) > 0 && !containsString(p.opts.Namespaces, t.Prefix()) {
		p.diag.DiscardedNamespace++
		return
	}
	p.graph.Insert(t)
}

func isObsolete(t *Term) bool {
	comment, _ := t.Attr("comment")
	return strings.Contains(strings.ToLower(comment), "obsolete")
}

// splitQuoted returns the text between the first pair of double quotes and
// whatever follows the closing quote. Without quotes, s is returned as after.
func splitQuoted(s string) (quoted, after string) {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return "", s
	}
	start++
	end := strings.IndexByte(s[start:], '"')
	if end < 0 {
		return s[start:], ""
	}
	return s[start : start+end], s[start+end+1:]
}

// parseQuoted extracts text between the first pair of double quotes.
func parseQuoted(s string) string {
	q, _ := splitQuoted(s)
	if q == "" && !strings.Contains(s, `"`) {
		return s
	}
	return q
}
