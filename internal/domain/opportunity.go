package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Opportunity describes a candidate product/market idea. Name is the join key
// across research, score and result records.
type Opportunity struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	ICP         string   `json:"icp" yaml:"icp"`
	Problem     string   `json:"problem" yaml:"problem"`
	Aspiration  *string  `json:"aspiration" yaml:"aspiration,omitempty"`
	Workaround  *string  `json:"workaround" yaml:"workaround,omitempty"`
	Communities []string `json:"communities" yaml:"communities,omitempty"`
}

// Validate checks the fields the pipeline relies on.
func (o Opportunity) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: opportunity name is empty", ErrInvalidInput)
	}
	return nil
}

// Slug returns the name in a form safe to use as a single path segment.
func (o Opportunity) Slug() string {
	return Slugify(o.Name)
}

// Slugify keeps letters and digits of any script plus '.', '-' and '_', and
// replaces whitespace, path separators and everything else with '_'.
func Slugify(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	slug := b.String()
	if slug == "" || strings.Trim(slug, ".") == "" {
		return "_"
	}
	return slug
}

// MatchKey folds a name to the key used to pair agent answers with inputs.
// Two names with the same MatchKey cannot be told apart in one batch and
// may share an artifact directory on case-insensitive filesystems.
func MatchKey(name string) string {
	return strings.ToLower(Slugify(name))
}

// ValidateBatch rejects empty names and names that collide within one batch.
func ValidateBatch(opps []Opportunity) error {
	seen := make(map[string]string, len(opps))
	for _, opp := range opps {
		if err := opp.Validate(); err != nil {
			return err
		}
		key := MatchKey(opp.Name)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: opportunities %q and %q share the storage key %q", ErrInvalidInput, prev, opp.Name, key)
		}
		seen[key] = opp.Name
	}
	return nil
}

// StringPtr is a small helper for the optional text fields.
func StringPtr(v string) *string {
	return &v
}
