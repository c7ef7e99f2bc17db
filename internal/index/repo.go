package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/vaultmeta/internal/parser"
)

// Metadata is the structured per-document record the index serves. Keys
// are the metadata types callers ask for: "title", "checksum",
// "frontmatter", "tags", "links", "headings" and "mtime".
type Metadata map[string]any

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path        string
	Title       string
	Checksum    string
	Frontmatter map[string]any
	Tags        []string
	Links       []string
	Headings    []parser.Heading
	ModTime     time.Time
}

// UpsertDocument inserts or replaces a document row.
func (db *DB) UpsertDocument(row DocumentRow) error {
	var fm sql.NullString
	if row.Frontmatter != nil {
		raw, err := json.Marshal(row.Frontmatter)
		if err != nil {
			return fmt.Errorf("index: encode frontmatter %s: %w", row.Path, err)
		}
		fm = sql.NullString{String: string(raw), Valid: true}
	}
	tags, _ := json.Marshal(nonNil(row.Tags))
	links, _ := json.Marshal(nonNil(row.Links))
	headings, _ := json.Marshal(nonNil(row.Headings))

	_, err := db.conn.Exec(`
		INSERT INTO documents (path, title, checksum, frontmatter, tags, links, headings, mtime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			checksum    = excluded.checksum,
			frontmatter = excluded.frontmatter,
			tags        = excluded.tags,
			links       = excluded.links,
			headings    = excluded.headings,
			mtime       = excluded.mtime
	`, row.Path, row.Title, row.Checksum, fm, string(tags), string(links), string(headings), row.ModTime.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document row. Deleting an unknown path is not an error.
func (db *DB) DeleteDocument(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for a document, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// Lookup returns the structured metadata for path, or nil when the
// document is not indexed.
func (db *DB) Lookup(path string) (Metadata, error) {
	var (
		title, checksum, tags, links, headings string
		fm                                     sql.NullString
		mtime                                  time.Time
	)
	err := db.conn.QueryRow(`
		SELECT title, checksum, frontmatter, tags, links, headings, mtime
		FROM documents WHERE path = ?
	`, path).Scan(&title, &checksum, &fm, &tags, &links, &headings, &mtime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: lookup %s: %w", path, err)
	}

	md := Metadata{
		"title":    title,
		"checksum": checksum,
		"mtime":    mtime,
	}
	if fm.Valid {
		var v map[string]any
		if err := json.Unmarshal([]byte(fm.String), &v); err != nil {
			return nil, fmt.Errorf("index: decode frontmatter %s: %w", path, err)
		}
		md["frontmatter"] = v
	}
	var (
		tagList, linkList []string
		headingList       []parser.Heading
	)
	if err := json.Unmarshal([]byte(tags), &tagList); err != nil {
		return nil, fmt.Errorf("index: decode tags %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(links), &linkList); err != nil {
		return nil, fmt.Errorf("index: decode links %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(headings), &headingList); err != nil {
		return nil, fmt.Errorf("index: decode headings %s: %w", path, err)
	}
	md["tags"] = tagList
	md["links"] = linkList
	md["headings"] = headingList
	return md, nil
}

// AllChecksums returns path → checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
