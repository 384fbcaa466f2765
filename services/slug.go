package services

import (
	"strconv"

	"github.com/gosimple/slug"
)

const (
	defaultSlug     = "product"
	maxSlugAttempts = 100
)

// baseSlug derives the URL slug of a title.
func baseSlug(title string) string {
	s := slug.Make(title)
	if s == "" {
		return defaultSlug
	}
	return s
}

// slugCandidate returns base for attempt 0, then base-1, base-2, ...
func slugCandidate(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(attempt)
}
