package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for catalog fields.
const (
	maxNameLen        = 300
	maxDescriptionLen = 10_000
	maxPartNumberLen  = 100

	// maxFieldsBytes caps the JSON document accepted for a category's
	// custom-field mapping.
	maxFieldsBytes = 64 << 10
)

// validateCategoryInput checks category name and description and returns
// the first error found. The sanitized-label emptiness check lives in the
// tree mutator; this only covers display-level limits.
func validateCategoryInput(name, description string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 10,000 characters)."
	}
	return ""
}

// validatePartInput checks part fields and returns the first error found.
func validatePartInput(name, partNumber, description string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(partNumber) > maxPartNumberLen {
		return "Part number is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 10,000 characters)."
	}
	return ""
}
