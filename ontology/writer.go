package ontology

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const writerBufferSize = 256 * 1024 // 256 KB

// graphJSON is the on-disk snapshot shape. Terms are sorted by id.
type graphJSON struct {
	Header   Header    `json:"header"`
	TypeDefs []TypeDef `json:"typedefs,omitempty"`
	Terms    []*Term   `json:"terms"`
}

// MarshalJSON implements json.Marshaler.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{Header: g.Header, TypeDefs: g.TypeDefs, Terms: g.Terms()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Header = raw.Header
	g.TypeDefs = raw.TypeDefs
	g.terms = make(map[string]*Term, len(raw.Terms))
	for _, t := range raw.Terms {
		if t == nil || t.ID == "" {
			continue
		}
		g.terms[t.ID] = t
	}
	return nil
}

// WriteJSON writes the graph as JSON to the given writer.
func WriteJSON(g *Graph, w io.Writer) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(g); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteJSONFile writes the graph as JSON to the given file path.
func WriteJSONFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJSONPretty writes indented JSON to the given writer.
func WriteJSONPretty(g *Graph, w io.Writer) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadJSON loads a graph previously written by WriteJSON.
func ReadJSON(r io.Reader) (*Graph, error) {
	g := NewGraph()
	if err := json.NewDecoder(bufio.NewReaderSize(r, writerBufferSize)).Decode(g); err != nil {
		return nil, fmt.Errorf("decode graph snapshot: %w", err)
	}
	return g, nil
}
