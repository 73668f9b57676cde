// Package validation provides the shared slug rules used for exercise,
// template, and plan identifiers. Ids are lowercase alphanumeric slugs so
// they sort deterministically and survive serialization unchanged.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SlugPattern matches valid slugs: lowercase alphanumeric with hyphens.
// Valid examples: "bench-press", "squat", "overhead-press-1".
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Slug validation errors.
var (
	ErrSlugEmpty   = errors.New("slug cannot be empty")
	ErrSlugInvalid = errors.New("slug must contain only lowercase alphanumeric characters and hyphens")
	ErrSlugTooLong = errors.New("slug exceeds maximum length")
)

// ValidateSlug validates a slug against the standard slug rules.
// maxLength specifies the maximum allowed length (e.g. 50 or 100).
func ValidateSlug(slug string, maxLength int) error {
	if slug == "" {
		return ErrSlugEmpty
	}
	if len(slug) > maxLength {
		return fmt.Errorf("%w: %d > %d", ErrSlugTooLong, len(slug), maxLength)
	}
	if !SlugPattern.MatchString(slug) {
		return ErrSlugInvalid
	}
	return nil
}

// GenerateSlug creates a slug from a name: lowercase, spaces and separators
// become hyphens, everything else non-alphanumeric is dropped.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)

	replacer := strings.NewReplacer(
		" ", "-",
		"_", "-",
		".", "-",
		"/", "-",
		"\\", "-",
		"&", "-",
	)
	slug = replacer.Replace(slug)

	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	slug = b.String()

	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
