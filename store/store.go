// Package store keeps parsed ontology graphs in a SQLite file so large
// ontologies are parsed once and reloaded quickly.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nodeadmin/ontopath/ontology"

	_ "modernc.org/sqlite"
)

// ErrEmpty is returned by Load when no snapshot has been saved.
var ErrEmpty = errors.New("store holds no graph")

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS terms (
	id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS attributes (
	term_id TEXT NOT NULL REFERENCES terms(id),
	key     TEXT NOT NULL,
	value   TEXT NOT NULL,
	PRIMARY KEY (term_id, key)
);
CREATE TABLE IF NOT EXISTS relations (
	term_id   TEXT    NOT NULL REFERENCES terms(id),
	rel_pos   INTEGER NOT NULL,
	type      TEXT    NOT NULL,
	value_pos INTEGER NOT NULL,
	value     TEXT    NOT NULL,
	PRIMARY KEY (term_id, rel_pos, value_pos)
);
CREATE TABLE IF NOT EXISTS synonyms (
	term_id TEXT    NOT NULL REFERENCES terms(id),
	pos     INTEGER NOT NULL,
	text    TEXT    NOT NULL,
	scope   TEXT    NOT NULL,
	sources TEXT    NOT NULL,
	PRIMARY KEY (term_id, pos)
);
CREATE INDEX IF NOT EXISTS relations_value ON relations(value);
`

// Store is a SQLite-backed graph snapshot.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the snapshot database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with g in one transaction.
func (s *Store) Save(ctx context.Context, g *ontology.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"synonyms", "relations", "attributes", "terms", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	header, err := json.Marshal(g.Header)
	if err != nil {
		return err
	}
	typedefs, err := json.Marshal(g.TypeDefs)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES ('header', ?), ('typedefs', ?)`,
		string(header), string(typedefs)); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	insTerm, err := tx.PrepareContext(ctx, `INSERT INTO terms(id) VALUES (?)`)
	if err != nil {
		return err
	}
	defer insTerm.Close()
	insAttr, err := tx.PrepareContext(ctx, `INSERT INTO attributes(term_id, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insAttr.Close()
	insRel, err := tx.PrepareContext(ctx, `INSERT INTO relations(term_id, rel_pos, type, value_pos, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insRel.Close()
	insSyn, err := tx.PrepareContext(ctx, `INSERT INTO synonyms(term_id, pos, text, scope, sources) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insSyn.Close()

	for _, t := range g.Terms() {
		if _, err := insTerm.ExecContext(ctx, t.ID); err != nil {
			return fmt.Errorf("write term %s: %w", t.ID, err)
		}
		for k, v := range t.Attributes {
			if _, err := insAttr.ExecContext(ctx, t.ID, k, v); err != nil {
				return fmt.Errorf("write attribute %s.%s: %w", t.ID, k, err)
			}
		}
		for ri, rel := range t.Relations {
			for vi, v := range rel.Values {
				if _, err := insRel.ExecContext(ctx, t.ID, ri, rel.Type, vi, v); err != nil {
					return fmt.Errorf("write relation %s.%s: %w", t.ID, rel.Type, err)
				}
			}
		}
		for si, syn := range t.Synonyms {
			sources, err := json.Marshal(syn.Sources)
			if err != nil {
				return err
			}
			if _, err := insSyn.ExecContext(ctx, t.ID, si, syn.Text, syn.Scope, string(sources)); err != nil {
				return fmt.Errorf("write synonym %s: %w", t.ID, err)
			}
		}
	}
	return tx.Commit()
}

// Load rebuilds the stored graph, preserving relation and value order.
func (s *Store) Load(ctx context.Context) (*ontology.Graph, error) {
	g := ontology.NewGraph()

	var header, typedefs string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'header'`).Scan(&header)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	if err := json.Unmarshal([]byte(header), &g.Header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'typedefs'`).Scan(&typedefs); err == nil {
		if err := json.Unmarshal([]byte(typedefs), &g.TypeDefs); err != nil {
			return nil, fmt.Errorf("decode typedefs: %w", err)
		}
	}

	terms := make(map[string]*ontology.Term)
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM terms`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		terms[id] = &ontology.Term{ID: id}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	if err := s.each(ctx, `SELECT term_id, key, value FROM attributes`, func(rows *sql.Rows) error {
		var id, k, v string
		if err := rows.Scan(&id, &k, &v); err != nil {
			return err
		}
		if t, ok := terms[id]; ok {
			t.SetAttr(k, v)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}

	if err := s.each(ctx, `SELECT term_id, type, value FROM relations ORDER BY term_id, rel_pos, value_pos`, func(rows *sql.Rows) error {
		var id, typ, v string
		if err := rows.Scan(&id, &typ, &v); err != nil {
			return err
		}
		if t, ok := terms[id]; ok {
			t.Append(typ, v)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read relations: %w", err)
	}

	if err := s.each(ctx, `SELECT term_id, text, scope, sources FROM synonyms ORDER BY term_id, pos`, func(rows *sql.Rows) error {
		var id, text, scope, sources string
		if err := rows.Scan(&id, &text, &scope, &sources); err != nil {
			return err
		}
		syn := ontology.Synonym{Text: text, Scope: scope}
		if err := json.Unmarshal([]byte(sources), &syn.Sources); err != nil {
			return err
		}
		if t, ok := terms[id]; ok {
			t.Synonyms = append(t.Synonyms, syn)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}

	for _, t := range terms {
		g.Insert(t)
	}
	return g, nil
}

func (s *Store) each(ctx context.Context, query string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	for rows.Next() {
		if err := fn(rows); err != nil {
			rows.Close()
			return err
		}
	}
	return closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
