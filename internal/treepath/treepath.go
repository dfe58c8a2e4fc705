// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package treepath implements the dot-joined materialized path scheme used
// by the category tree.
//
// A path is the dot-joined sequence of sanitized labels from a root down to
// a node, e.g. "resistors.through_hole". Labels never contain dots, so
// ancestry reduces to segment-aligned prefix matching and no tree walk is
// ever needed to answer containment questions.
package treepath

import "strings"

// Separator joins labels into paths. It must stay outside the label
// alphabet [a-z0-9_].
const Separator = "."

// Join appends a label to a parent path. A root category has no parent
// path, so Join("", label) is just the label.
func Join(parentPath, label string) string {
	if parentPath == "" {
		return label
	}
	return parentPath + Separator + label
}

// ChildPrefix returns the prefix shared by every proper descendant of path.
// Matching on path+"." instead of the bare path keeps "res" from claiming
// "resistors" as a descendant.
func ChildPrefix(path string) string {
	return path + Separator
}

// IsDescendant reports whether path lies strictly below ancestorPath.
// A path is never its own descendant.
func IsDescendant(ancestorPath, path string) bool {
	return strings.HasPrefix(path, ChildPrefix(ancestorPath))
}

// Parent returns the path one level up, or "" when path is a root.
func Parent(path string) string {
	i := strings.LastIndex(path, Separator)
	if i < 0 {
		return ""
	}
	return path[:i]
}

// Ancestors returns every proper ancestor path ordered root-first.
// "resistors.through_hole.axial" yields ["resistors",
// "resistors.through_hole"]; a root path yields nil.
func Ancestors(path string) []string {
	if path == "" {
		return nil
	}
	segs := strings.Split(path, Separator)
	if len(segs) == 1 {
		return nil
	}
	out := make([]string, 0, len(segs)-1)
	for i := 1; i < len(segs); i++ {
		out = append(out, strings.Join(segs[:i], Separator))
	}
	return out
}

// Depth counts path segments: 1 for a root, 0 for the empty path.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, Separator) + 1
}
