// Package preset owns admin-curated prompt presets: canonicalizing the tag
// text admins type in and the lookup/search surface used at request time.
package preset

import (
	"errors"
	"regexp"
	"strings"

	"nullscape/syntax"
)

var (
	ErrInvalidID = errors.New("preset id must be 1-64 characters of letters, digits, '_' or '-'")
	ErrEmptyName = errors.New("preset name must not be empty")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Preset is a stored bundle of default positive and negative tags. Tag fields
// are always in unified notation and canonical comma-joined form.
type Preset struct {
	ID           string
	Name         string
	Description  string
	QualityTags  string
	NegativeTags string
}

// Summary is the id/name pair used for listings and autocomplete.
type Summary struct {
	ID   string
	Name string
}

// Input is raw admin input for an upsert.
type Input struct {
	ID           string
	Name         string
	Description  string
	QualityTags  string
	NegativeTags string
}

// ValidateID checks the trimmed id against the allowed alphabet and length.
func ValidateID(id string) error {
	if !idPattern.MatchString(strings.TrimSpace(id)) {
		return ErrInvalidID
	}
	return nil
}

// Normalize turns freeform admin tag text into unified notation joined by
// ", ". Newlines count as separators and blank segments are dropped.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	unified := syntax.ToUnified(trimmed)
	unified = strings.NewReplacer("\n", ",", "\r", ",").Replace(unified)

	parts := strings.Split(unified, ",")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
