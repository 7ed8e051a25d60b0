// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CoreDataEpoch is the zero instant of Core Data timestamps. Bear stores
// modification dates as seconds elapsed since this instant, not the Unix
// epoch.
var CoreDataEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// TimeFromCoreData converts a Core Data timestamp (seconds since
// CoreDataEpoch, fractional seconds allowed) to a time.Time in UTC.
func TimeFromCoreData(seconds float64) time.Time {
	return CoreDataEpoch.Add(time.Duration(seconds * float64(time.Second)))
}

// NoteRecord is one row of the notes query: a (note, tag) pair. A note
// carrying several tags appears once per tag with the same ID; a note with
// no tags appears once with an empty Tag.
type NoteRecord struct {
	// ID is the note's primary key in the Bear database.
	ID int64 `json:"id" yaml:"id"`

	// Title is the note title. Empty when the database column is NULL.
	Title string `json:"title" yaml:"title"`

	// Text is the full markdown body. Empty when NULL.
	Text string `json:"-" yaml:"-"`

	// Tag is the tag name this row was joined against, or "" for an
	// untagged note.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	// Trashed reports whether the note sits in Bear's trash. Trashed notes
	// are removed from the backup instead of written.
	Trashed bool `json:"trashed,omitempty" yaml:"trashed,omitempty"`

	// ModificationDate is the Core Data timestamp of the last edit, or nil
	// when the column is NULL. When present it is stamped onto the written
	// file's atime and mtime.
	ModificationDate *float64 `json:"modification_date,omitempty" yaml:"modification_date,omitempty"`
}

// AttachmentRecord is one row of the attachments query.
type AttachmentRecord struct {
	// NoteID is the owning note's primary key.
	NoteID int64 `json:"note_id" yaml:"note_id"`

	// UUID is the attachment's unique identifier, which doubles as the
	// directory name under Bear's attachment storage. Empty when NULL.
	UUID string `json:"uuid" yaml:"uuid"`

	// Filename is the attachment's original filename. Empty when NULL.
	Filename string `json:"filename" yaml:"filename"`

	// Extension is Bear's normalized file extension, lowercase without the
	// dot. Empty when NULL.
	Extension string `json:"extension,omitempty" yaml:"extension,omitempty"`
}

// ProcessedNote is a NoteRecord with its assigned output location. The
// backup run returns one per input row, trashed notes included.
type ProcessedNote struct {
	NoteRecord `yaml:",inline"`

	// Filename is the final collision-free filename, ".md" extension
	// included.
	Filename string `json:"filename" yaml:"filename"`

	// DestinationDirectory is the directory the file was written to (or
	// removed from, for trashed notes).
	DestinationDirectory string `json:"destination_directory" yaml:"destination_directory"`
}
