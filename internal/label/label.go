// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package label normalizes category names into path-safe labels.
//
// A label is the canonical, lowercase form of a category name that becomes
// one segment of the category's materialized path. Labels never contain the
// path separator, so prefix matching on paths stays unambiguous.
package label

import (
	"regexp"
	"strings"
)

// maxLen caps a single label. Paths concatenate many labels, so the cap
// keeps worst-case path lengths inside comfortable index key sizes.
const maxLen = 255

var (
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9_]`)
	underscoreRuns = regexp.MustCompile(`_{2,}`)
)

// Sanitize converts an arbitrary category name into a label matching
// ^[a-z0-9_]{0,255}$.
//
// Every character outside [A-Za-z0-9_] becomes an underscore, runs of
// underscores collapse into one, the result is lowercased and truncated to
// 255 bytes. Sanitize is idempotent: feeding its output back in returns the
// same string.
//
// An empty input (or one that is already empty after processing) yields "";
// callers must reject empty labels before persisting a category.
func Sanitize(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.ToLower(s)
	// Replacement already reduced the string to ASCII, so slicing by byte
	// count cannot split a rune.
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}
