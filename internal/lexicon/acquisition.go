package lexicon

import (
	"regexp"
	"sort"
	"strings"
)

// Classifier resolves acquisition-method phrases in record fragments.
// Patterns are compiled once at construction from the injected method
// list, so a shared Classifier is safe for concurrent use.
type Classifier struct {
	methods []compiledMethod
}

type compiledMethod struct {
	method   Acquisition
	patterns []*regexp.Regexp // one per form, same order as method.Forms
}

// NewClassifier compiles a classifier from the given methods. Each
// method's forms are reordered longest-first so that stripping never
// leaves the tail of a longer form behind.
func NewClassifier(methods []Acquisition) *Classifier {
	compiled := make([]compiledMethod, 0, len(methods))
	for _, m := range methods {
		forms := make([]string, len(m.Forms))
		copy(forms, m.Forms)
		sort.SliceStable(forms, func(i, j int) bool {
			return len(forms[i]) > len(forms[j])
		})

		cm := compiledMethod{
			method: Acquisition{Name: m.Name, Forms: forms},
		}
		for _, form := range forms {
			cm.patterns = append(cm.patterns, formPattern(form))
		}
		compiled = append(compiled, cm)
	}
	return &Classifier{methods: compiled}
}

// formPattern builds the match pattern for one surface form: case
// insensitive, bounded on both sides, with an optional leading ", ".
func formPattern(form string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:,\s*)?\b` + regexp.QuoteMeta(form) + `\b`)
}

// Identify returns the acquisition method whose form matches the
// fragment, preferring the longest matching form across all methods.
// The returned Acquisition carries its forms longest-first.
func (c *Classifier) Identify(fragment string) (Acquisition, bool) {
	bestLen := 0
	var best Acquisition
	lower := strings.ToLower(fragment)

	for _, cm := range c.methods {
		for _, form := range cm.method.Forms {
			if len(form) <= bestLen {
				break // forms are longest-first
			}
			if containsWord(lower, strings.ToLower(form)) {
				best = cm.method
				bestLen = len(form)
				break
			}
		}
	}

	if bestLen == 0 {
		return Acquisition{}, false
	}
	return best, true
}

// Strip removes the first matching form of the given method from the
// fragment and reports whether anything was removed.
func (c *Classifier) Strip(fragment string, method Acquisition) (string, bool) {
	for _, cm := range c.methods {
		if cm.method.Name != method.Name {
			continue
		}
		for _, re := range cm.patterns {
			if loc := re.FindStringIndex(fragment); loc != nil {
				return fragment[:loc[0]] + fragment[loc[1]:], true
			}
		}
	}
	return fragment, false
}

// containsWord reports whether needle occurs in haystack on word
// boundaries. Both arguments must already be lowercased.
func containsWord(haystack, needle string) bool {
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(needle)
		beforeOK := i == 0 || !isWordChar(haystack[i-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		from = i + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
