// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package beardb reads note and attachment rows from Bear's Core Data
// SQLite database.
//
// The database is always opened read-only; a backup must never write to
// Bear's store. Column names follow Core Data's conventions (Z_PK, ZTITLE),
// and the numbered join table Z_7TAGS links notes (entity 7) to tags
// (entity 14).
package beardb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cooperwalter/backup-bear-notes/pkg/types"
)

// bearContainer is Bear's sandbox container under the user home.
const bearContainer = "Library/Group Containers/9K33E3U3T4.net.shinyfrog.bear/Application Data"

// DefaultPath returns the standard location of Bear's database for the
// current user, or "" when the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, bearContainer, "database.sqlite")
}

// DefaultAttachmentsPath returns the standard location of Bear's attachment
// storage (the directory holding "Note Images" and "Note Files"), or ""
// when the home directory cannot be determined.
func DefaultAttachmentsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, bearContainer, "Local Files")
}

// notesQuery returns one row per (note, tag) pair. Untagged notes appear
// once with a NULL tag. Ordering by tag length keeps a note's shorter tag
// names ahead of its longer ones, so with tag grouping the first directory
// a duplicate title lands in is stable across runs.
const notesQuery = `
SELECT n.Z_PK, n.ZTITLE, n.ZTEXT, n.ZTRASHED, n.ZMODIFICATIONDATE, t.ZTITLE
FROM ZSFNOTE n
LEFT JOIN Z_7TAGS nt ON nt.Z_7NOTES = n.Z_PK
LEFT JOIN ZSFNOTETAG t ON t.Z_PK = nt.Z_14TAGS
ORDER BY LENGTH(t.ZTITLE)`

const attachmentsQuery = `
SELECT f.ZNOTE, f.ZUNIQUEIDENTIFIER, f.ZFILENAME, f.ZNORMALIZEDFILEEXTENSION
FROM ZSFNOTEFILE f`

// DB is a read-only handle on a Bear database.
type DB struct {
	db *sql.DB
}

// Open opens the Bear database at path in read-only mode. An empty path is
// a configuration error; a missing or unreadable file fails here rather
// than at the first query.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("bear database path is not configured")
	}

	// The file: form is what makes mode=ro reach SQLite's URI handling.
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening bear database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening bear database %s: %w", path, err)
	}

	return &DB{db: db}, nil
}

// Close releases the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Notes returns every (note, tag) row in the database, trashed notes
// included. NULL titles, bodies, and tags come back as empty strings; a
// NULL modification date comes back nil.
func (d *DB) Notes(ctx context.Context) ([]types.NoteRecord, error) {
	rows, err := d.db.QueryContext(ctx, notesQuery)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []types.NoteRecord
	for rows.Next() {
		var (
			n       types.NoteRecord
			title   sql.NullString
			text    sql.NullString
			trashed sql.NullInt64
			modDate sql.NullFloat64
			tag     sql.NullString
		)
		if err := rows.Scan(&n.ID, &title, &text, &trashed, &modDate, &tag); err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		n.Title = title.String
		n.Text = text.String
		n.Trashed = trashed.Int64 != 0
		n.Tag = tag.String
		if modDate.Valid {
			v := modDate.Float64
			n.ModificationDate = &v
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// Attachments returns every attachment row in the database. NULL columns
// come back as empty strings; rows lacking an identifier or filename are
// the caller's concern.
func (d *DB) Attachments(ctx context.Context) ([]types.AttachmentRecord, error) {
	rows, err := d.db.QueryContext(ctx, attachmentsQuery)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	var attachments []types.AttachmentRecord
	for rows.Next() {
		var (
			a        types.AttachmentRecord
			uuid     sql.NullString
			filename sql.NullString
			ext      sql.NullString
		)
		if err := rows.Scan(&a.NoteID, &uuid, &filename, &ext); err != nil {
			return nil, fmt.Errorf("scanning attachment row: %w", err)
		}
		a.UUID = uuid.String
		a.Filename = filename.String
		a.Extension = ext.String
		attachments = append(attachments, a)
	}

	return attachments, rows.Err()
}
