package tenant

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const MinSlugLen = 3

var slugRe = regexp.MustCompile(`^[a-z0-9]+$`)

func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSlug checks the write-side rules for a subdomain: at least
// MinSlugLen lowercase letters or digits and not a reserved word.
func ValidateSlug(slug string, reserved []string) error {
	switch {
	case len(slug) < MinSlugLen:
		return fmt.Errorf("subdomain must be at least %d characters: %w", MinSlugLen, ErrValidation)
	case !slugRe.MatchString(slug):
		return fmt.Errorf("subdomain may contain only lowercase letters and digits: %w", ErrValidation)
	case slices.Contains(reserved, slug):
		return fmt.Errorf("subdomain %q is reserved: %w", slug, ErrValidation)
	}
	return nil
}
