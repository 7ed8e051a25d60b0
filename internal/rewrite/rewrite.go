// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rewrite redirects markdown attachment references at their copied
// location in the assets directory.
//
// A filename can appear in a document in three spellings: fully
// percent-encoded, with only spaces encoded as %20, or literal. Each
// spelling is swept for two reference shapes, image first so the link
// pattern never matches the bracket tail of an image. The sweep works on
// the raw text with anchored patterns, not a markdown parser, so a
// reference whose text merely looks percent-encoded is rewritten all the
// same. Rewritten references always carry the space-only spelling of the
// new name, whichever spelling they were found under.
package rewrite

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// commentSuffix optionally captures an HTML comment glued to a link
// reference, such as Bear's file metadata. The comment must sit on one
// line; it is carried over verbatim.
const commentSuffix = `(<!--.*?-->)?`

// References rewrites every image and link reference to a key of fileMap
// so it points at prefix plus the mapped name. Alt and label text are kept.
// Text without references, an empty document, and an empty map all pass
// through unchanged.
func References(text string, fileMap map[string]string, prefix string) string {
	if text == "" || len(fileMap) == 0 {
		return text
	}

	originals := make([]string, 0, len(fileMap))
	for orig := range fileMap {
		originals = append(originals, orig)
	}
	sort.Strings(originals)

	for _, orig := range originals {
		target := prefix + spaceEncoded(fileMap[orig])
		for _, candidate := range candidates(orig) {
			text = replaceRefs(text, candidate, target)
		}
	}

	return text
}

// candidates returns the three spellings a document may use for a filename.
func candidates(name string) [3]string {
	return [3]string{url.PathEscape(name), spaceEncoded(name), name}
}

// spaceEncoded encodes only spaces, the way Bear writes attachment paths.
func spaceEncoded(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}

// replaceRefs rewrites all references to one candidate spelling. The image
// shape goes first: once ![alt](old) has become ![alt](new), the link
// pattern cannot match its tail.
func replaceRefs(text, candidate, target string) string {
	quoted := regexp.QuoteMeta(candidate)
	escaped := escapeReplacement(target)

	imageRe := regexp.MustCompile(`!\[([^\]]*)\]\(` + quoted + `\)`)
	text = imageRe.ReplaceAllString(text, `![${1}](`+escaped+`)`)

	linkRe := regexp.MustCompile(`\[([^\]]*)\]\(` + quoted + `\)` + commentSuffix)
	text = linkRe.ReplaceAllString(text, `[${1}](`+escaped+`)${2}`)

	return text
}

// escapeReplacement doubles dollar signs so ReplaceAllString inserts the
// target literally instead of expanding capture references.
func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
