// Package slug provides URL-friendly slug generation from arbitrary strings,
// plus a deterministic disambiguation strategy for collisions.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Exists reports whether a candidate slug is already taken.
type Exists func(ctx context.Context, slug string) (bool, error)

// Unique returns the base slug if free, otherwise the first free
// "base-N" variant counting up from 1. The suffix sequence makes collision
// resolution deterministic for a given set of existing slugs.
func Unique(ctx context.Context, base string, exists Exists) (string, error) {
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
