package extract

import (
	"regexp"
	"sort"
	"strings"
)

// placeholder stands in for the period of a protected abbreviation
// while fragments are split on ".". NUL cannot occur in catalog text.
const placeholder = "\x00"

// Normalizer shields abbreviation periods from sentence splitting.
// Protect swaps them for a placeholder, Restore puts them back after
// fragment boundaries are fixed.
type Normalizer struct {
	abbrev   *regexp.Regexp
	initials *regexp.Regexp
}

// NewNormalizer compiles protection patterns for the abbreviation
// list. Longer abbreviations win over shorter prefixes of themselves.
func NewNormalizer(abbreviations []string) *Normalizer {
	forms := make([]string, 0, len(abbreviations))
	seen := make(map[string]bool)
	for _, a := range abbreviations {
		a = strings.ToLower(strings.TrimSuffix(a, "."))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		forms = append(forms, regexp.QuoteMeta(a))
	}
	sort.Slice(forms, func(i, j int) bool { return len(forms[i]) > len(forms[j]) })
	n := &Normalizer{initials: regexp.MustCompile(`\b([A-Z])\.`)}
	if len(forms) > 0 {
		n.abbrev = regexp.MustCompile(`(?i)\b(` + strings.Join(forms, "|") + `)\.`)
	}
	return n
}

// Protect replaces the trailing period of every known abbreviation and
// single capital-letter initial with the placeholder.
func (n *Normalizer) Protect(text string) string {
	if n.abbrev != nil {
		text = n.abbrev.ReplaceAllString(text, "${1}"+placeholder)
	}
	return n.initials.ReplaceAllString(text, "${1}"+placeholder)
}

// Restore reverses Protect.
func (n *Normalizer) Restore(text string) string {
	return strings.ReplaceAll(text, placeholder, ".")
}
