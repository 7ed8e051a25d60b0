// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup assigns collision-free output filenames to note rows.
//
// Collisions are tracked per destination directory: the first note to claim
// a name keeps it, and each later claimant gets a numeric suffix before the
// extension (Note.md, Note-1.md, Note-2.md). Only the unsuffixed name is
// tracked, so a note literally titled "Note-1" can still collide with a
// suffixed duplicate; this mirrors how Bear exports have always behaved.
package dedup

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cooperwalter/backup-bear-notes/internal/filename"
	"github.com/cooperwalter/backup-bear-notes/pkg/types"
)

const (
	// untaggedDir is the subdirectory for notes without a tag when output
	// is grouped by tag.
	untaggedDir = "untagged"

	// maxNameBytes is the filename byte ceiling a suffixed name must
	// still fit.
	maxNameBytes = 255

	mdExt = ".md"
)

// Assign maps each note row to its destination directory and a filename
// unique within that directory, preserving input order. With groupByTag set,
// each row lands in outputRoot/<tag> ("untagged" when the row has no tag);
// otherwise everything shares outputRoot. Trashed rows participate like any
// other so their removal targets the same name the note was written under.
func Assign(rows []types.NoteRecord, outputRoot string, groupByTag bool) []types.ProcessedNote {
	processed := make([]types.ProcessedNote, 0, len(rows))
	counters := make(map[string]map[string]int)

	for _, row := range rows {
		dir := outputRoot
		if groupByTag {
			tag := row.Tag
			if tag == "" {
				tag = untaggedDir
			}
			dir = filepath.Join(outputRoot, tag)
		}

		name := filename.ForNote(row.Title, strconv.FormatInt(row.ID, 10))

		taken := counters[dir]
		if taken == nil {
			taken = make(map[string]int)
			counters[dir] = taken
		}
		if n := taken[name]; n == 0 {
			taken[name] = 1
		} else {
			taken[name] = n + 1
			name = suffixed(name, n)
		}

		processed = append(processed, types.ProcessedNote{
			NoteRecord:           row,
			Filename:             name,
			DestinationDirectory: dir,
		})
	}

	return processed
}

// suffixed inserts "-<n>" before the ".md" extension, shrinking the base
// portion if the suffix would push the name past maxNameBytes.
func suffixed(name string, n int) string {
	base := strings.TrimSuffix(name, mdExt)
	suffix := "-" + strconv.Itoa(n)
	base = filename.Truncate(base, maxNameBytes-len(suffix)-len(mdExt))
	return base + suffix + mdExt
}
