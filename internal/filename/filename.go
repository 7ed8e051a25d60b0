// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filename builds the output names for exported notes and copied
// attachments.
//
// Names must survive APFS and the common Linux filesystems, which cap a
// single filename at 255 bytes. Truncation always removes whole trailing
// runes so a multi-byte sequence is never split.
package filename

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxNameBytes is the filename byte ceiling on APFS and ext4.
	maxNameBytes = 255

	// noteBaseBudget caps a note name before ".md" is appended. 251 plus
	// the 3-byte extension comes to 254, one byte under maxNameBytes.
	noteBaseBudget = 251

	// mdExt is the extension appended to every exported note.
	mdExt = ".md"

	// assetIDPrefixLen is how many leading characters of an attachment
	// identifier go into the copied asset's name.
	assetIDPrefixLen = 8
)

// ForNote returns the filename for a note title: every "/" replaced by "-",
// an "untitled-<fallback>" stand-in when the title is blank, the base
// truncated to noteBaseBudget bytes, and ".md" appended.
//
// Only "/" is rewritten; everything else in the title is kept verbatim. The
// stand-in applies only when fallback is non-empty, and a blank title is
// otherwise kept untrimmed, so ForNote("", "") is ".md" and
// ForNote("   ", "") is "   .md".
func ForNote(title, fallback string) string {
	base := strings.ReplaceAll(title, "/", "-")
	if strings.TrimSpace(base) == "" && fallback != "" {
		base = "untitled-" + fallback
	}
	return Truncate(base, noteBaseBudget) + mdExt
}

// ForAsset returns the name an attachment is copied to inside the assets
// directory: the first 8 characters of the attachment identifier, a dash,
// and the original filename, truncated from the end until the whole name
// fits maxNameBytes. The extension is whatever survives truncation.
func ForAsset(attachmentID, original string) string {
	prefix := idPrefix(attachmentID) + "-"
	return prefix + Truncate(original, maxNameBytes-len(prefix))
}

// Truncate removes whole trailing runes from s until it fits budget bytes.
func Truncate(s string, budget int) string {
	if budget < 0 {
		budget = 0
	}
	for len(s) > budget {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

// idPrefix returns the first assetIDPrefixLen characters of id, or all of
// id when it is shorter.
func idPrefix(id string) string {
	n := 0
	for i := range id {
		if n == assetIDPrefixLen {
			return id[:i]
		}
		n++
	}
	return id
}
