// Package slug turns post titles into URL-safe, unique slugs.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength bounds the derived part of a slug. Uniqueness suffixes may
// extend past it.
const MaxLength = 50

// Fallback is used when a title has no sluggable characters.
const Fallback = "post"

var (
	disallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
	validSlug  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Slugify folds s to ASCII, lower-cases it, drops punctuation and joins
// words with single dashes.
func Slugify(s string) string {
	ascii := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	folded, _, err := transform.String(ascii, s)
	if err != nil {
		folded = s
	}
	folded = disallowed.ReplaceAllString(strings.ToLower(folded), "")
	folded = separators.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-_")
}

// Make derives the base slug for a title: Slugify, truncated to MaxLength,
// falling back to Fallback when nothing is left.
func Make(title string) string {
	base := Slugify(title)
	if len(base) > MaxLength {
		base = strings.TrimRight(base[:MaxLength], "-_")
	}
	if base == "" {
		return Fallback
	}
	return base
}

// Unique returns base if it is free, otherwise base-1, base-2, ... until
// exists reports a free candidate.
func Unique(base string, exists func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// Valid reports whether s is acceptable as a user-supplied slug.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}
