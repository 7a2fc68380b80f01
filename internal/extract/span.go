package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

var (
	rangeSepRe    = regexp.MustCompile(`(?i)\s+(?:to|until|till|through)\s+`)
	hyphenRangeRe = regexp.MustCompile(`(\d{3,4})\s*[-–]\s*(\d{1,4})`)

	trailingConnectorRe = regexp.MustCompile(`(?i)(?:\b(?:from|in|on|by|until|till|through|to|before|after|since|between|and|or|circa|active|early|late|mid)\b|ca\.|c\.|[\s,:;-])+$`)
)

// rangeVocabulary is every word allowed to surround dates inside a
// pure date clause.
var rangeVocabulary = map[string]bool{
	"from": true, "in": true, "on": true, "by": true, "until": true,
	"till": true, "through": true, "to": true, "before": true,
	"after": true, "since": true, "between": true, "and": true,
	"or": true, "early": true, "mid": true, "late": true,
	"circa": true, "ca": true, "c": true, "active": true, "the": true,
}

// resolveSpan splits the trailing date clause off a fragment and
// resolves it into a fuzzy time span. Comma segments are scanned from
// the end as a joined tail, so day dates written with an internal
// comma stay whole; the segment where prose begins keeps its prose in
// rest but still contributes any date phrase it carries. dropped
// counts date matches discarded during resolution. err is set when
// date material resolves to no usable bound.
func resolveSpan(de *DateExtractor, text string) (model.TimeSpan, string, int, error) {
	segments := strings.Split(text, ",")
	cut := len(segments)
	for cut > 0 {
		if !dateDominated(de, strings.Join(segments[cut-1:], ",")) {
			break
		}
		cut--
	}

	clause := strings.Join(segments[cut:], ",")
	head := segments[:cut]
	mixedRest := ""
	if cut > 0 {
		mixed := segments[cut-1]
		if res := de.Extract(unhyphenRanges(mixed)); len(res.Dates) > 0 || res.Dropped > 0 {
			clause = mixed + "," + clause
			head = segments[:cut-1]
			mixedRest = cleanResidual(res.Residual)
		}
	}

	clause = strings.TrimSpace(strings.Trim(clause, ","))
	rest := strings.TrimSpace(strings.Join(head, ","))
	if mixedRest != "" {
		if rest != "" {
			rest += ", " + mixedRest
		} else {
			rest = mixedRest
		}
	}

	if clause == "" {
		return model.TimeSpan{}, strings.TrimSpace(text), 0, nil
	}

	var span model.TimeSpan
	dropped, usable := resolveClause(de, clause, &span)
	if !usable {
		return model.TimeSpan{}, rest, dropped, fmt.Errorf("unresolvable date range %q", clause)
	}
	return span, rest, dropped, nil
}

// dateDominated reports whether text is only date material: after
// blanking every date expression, nothing but range vocabulary is
// left.
func dateDominated(de *DateExtractor, text string) bool {
	res := de.Extract(unhyphenRanges(text))
	if len(res.Dates) == 0 && res.Dropped == 0 {
		return false
	}
	residual := strings.ToLower(res.Residual)
	for _, tok := range strings.FieldsFunc(residual, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if !rangeVocabulary[tok] {
			return false
		}
	}
	return true
}

// cleanResidual trims the connector words a blanked date phrase leaves
// behind at the end of a mixed segment ("New York by " after "New
// York by 1950").
func cleanResidual(residual string) string {
	return strings.TrimSpace(trailingConnectorRe.ReplaceAllString(residual, ""))
}

// resolveClause resolves a comma-joined sequence of range parts
// ("by 1920, until 1935") into span.
func resolveClause(de *DateExtractor, clause string, span *model.TimeSpan) (int, bool) {
	clause = uncommaDayDates(rewriteDayMonth(clause))
	dropped, usable := 0, false
	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, ok := resolvePart(de, part, span)
		dropped += d
		usable = usable || ok
	}
	return dropped, usable
}

// uncommaDayDates removes the comma inside written-out day dates so
// clause splitting cannot tear "July 14, 1950" apart.
func uncommaDayDates(clause string) string {
	return dayFullRe.ReplaceAllStringFunc(clause, func(m string) string {
		return strings.ReplaceAll(m, ",", "")
	})
}

// resolvePart routes one range part to the side of the span it
// constrains. A separator word only splits the part when the left
// side actually holds a date, so prose like "given to the museum in
// 1955" is not torn at its "to".
func resolvePart(de *DateExtractor, part string, span *model.TimeSpan) (int, bool) {
	if loc := rangeSepRe.FindStringIndex(part); loc != nil {
		begin := strings.TrimSpace(part[:loc[0]])
		end := strings.TrimSpace(part[loc[1]:])
		if res := de.Extract(unhyphenRanges(begin)); len(res.Dates) > 0 || res.Dropped > 0 {
			d1, ok1 := applyBegin(de, begin, span)
			d2, ok2 := applyEnd(de, end, span)
			return d1 + d2, ok1 || ok2
		}
	}
	if begin, end, ok := splitHyphenRange(part); ok {
		d1, ok1 := applyBegin(de, begin, span)
		d2, ok2 := applyEnd(de, end, span)
		return d1 + d2, ok1 || ok2
	}
	rest := part
	if cutPrefixFold(&rest, "until ") || cutPrefixFold(&rest, "till ") || cutPrefixFold(&rest, "through ") {
		return applyEnd(de, rest, span)
	}
	if hasPrefixFold(part, "before ") {
		return applyEnd(de, part, span)
	}
	return applyBegin(de, part, span)
}

// applyBegin resolves text as the beginning of the span. "by" bounds
// only the latest possible start, "after"/"since" only the earliest.
func applyBegin(de *DateExtractor, text string, span *model.TimeSpan) (int, bool) {
	if cutPrefixFold(&text, "between ") {
		return applyBetween(de, text, &span.BeginEarliest, &span.BeginLatest)
	}
	if cutPrefixFold(&text, "by ") {
		_, hi, dropped, ok := resolveSide(de, text)
		if ok {
			span.BeginLatest = hi
		}
		return dropped, ok
	}
	if cutPrefixFold(&text, "after ") || cutPrefixFold(&text, "since ") {
		lo, _, dropped, ok := resolveSide(de, text)
		if ok {
			span.BeginEarliest = lo
		}
		return dropped, ok
	}
	if !cutPrefixFold(&text, "from ") && !cutPrefixFold(&text, "in ") {
		cutPrefixFold(&text, "on ")
	}
	lo, hi, dropped, ok := resolveSide(de, text)
	if ok {
		span.BeginEarliest, span.BeginLatest = lo, hi
	}
	return dropped, ok
}

// applyEnd resolves text as the end of the span. "before" bounds only
// the latest possible end, "after" only the earliest.
func applyEnd(de *DateExtractor, text string, span *model.TimeSpan) (int, bool) {
	if cutPrefixFold(&text, "between ") {
		return applyBetween(de, text, &span.EndEarliest, &span.EndLatest)
	}
	if cutPrefixFold(&text, "before ") {
		_, hi, dropped, ok := resolveSide(de, text)
		if ok {
			span.EndLatest = hi
		}
		return dropped, ok
	}
	if cutPrefixFold(&text, "after ") {
		lo, _, dropped, ok := resolveSide(de, text)
		if ok {
			span.EndEarliest = lo
		}
		return dropped, ok
	}
	lo, hi, dropped, ok := resolveSide(de, text)
	if ok {
		span.EndEarliest, span.EndLatest = lo, hi
	}
	return dropped, ok
}

func applyBetween(de *DateExtractor, text string, earliest, latest **model.Date) (int, bool) {
	i := foldIndex(text, " and ")
	if i < 0 {
		return 0, false
	}
	lo, _, d1, ok1 := resolveSide(de, text[:i])
	_, hi, d2, ok2 := resolveSide(de, text[i+len(" and "):])
	if !ok1 || !ok2 {
		return d1 + d2, false
	}
	*earliest, *latest = lo, hi
	return d1 + d2, true
}

// resolveSide resolves one side of a range to its earliest and latest
// bound. Modifiers narrow or soften the base date: early/mid/late take
// thirds of its span, circa marks it uncertain.
func resolveSide(de *DateExtractor, text string) (*model.Date, *model.Date, int, bool) {
	text = strings.TrimSpace(text)
	cutPrefixFold(&text, "the ")
	third := -1
	switch {
	case cutPrefixFold(&text, "early "):
		third = 0
	case cutPrefixFold(&text, "mid-"), cutPrefixFold(&text, "mid "):
		third = 1
	case cutPrefixFold(&text, "late "):
		third = 2
	}
	circa := cutPrefixFold(&text, "circa ") || cutPrefixFold(&text, "ca. ") || cutPrefixFold(&text, "c. ")
	res := de.Extract(text)
	if len(res.Dates) == 0 {
		return nil, nil, res.Dropped, false
	}
	d := res.Dates[0]
	if circa {
		d = d.Uncertain()
	}
	if third >= 0 {
		lo, hi := thirdBounds(d, third)
		return &lo, &hi, res.Dropped, true
	}
	hi := d
	return &d, &hi, res.Dropped, true
}

// thirdBounds cuts a date's year span into thirds and returns the
// bounds of the requested one at year precision.
func thirdBounds(d model.Date, third int) (model.Date, model.Date) {
	lo, hi := d.EarliestYear(), d.LatestYear()
	step := (hi - lo) / 3
	a := lo + step*third
	b := lo + step*(third+1)
	if third == 2 {
		b = hi
	}
	la := model.YearDate(a)
	lb := model.YearDate(b)
	if !d.Certain {
		la = la.Uncertain()
		lb = lb.Uncertain()
	}
	return la, lb
}

// unhyphenRanges rewrites "1920-1935" to "1920 to 1935" so a plain
// scan sees both years; the generic passes skip hyphen-adjacent
// digits. ISO dates keep their hyphens.
func unhyphenRanges(text string) string {
	ms := hyphenRangeRe.FindAllStringSubmatchIndex(text, -1)
	if len(ms) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range ms {
		if m[2] > 0 && isDigit(text[m[2]-1]) {
			continue
		}
		if m[5] < len(text) && (isDigit(text[m[5]]) || text[m[5]] == '-') {
			continue
		}
		b.WriteString(text[last:m[3]])
		b.WriteString(" to ")
		b.WriteString(text[m[4]:m[5]])
		last = m[5]
	}
	b.WriteString(text[last:])
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// splitHyphenRange splits "1920-1935" into its two sides, leaving ISO
// dates alone.
func splitHyphenRange(part string) (string, string, bool) {
	for _, m := range hyphenRangeRe.FindAllStringSubmatchIndex(part, -1) {
		if m[2] > 0 && isDigit(part[m[2]-1]) {
			continue
		}
		if m[5] < len(part) && (isDigit(part[m[5]]) || part[m[5]] == '-') {
			continue
		}
		return strings.TrimSpace(part[:m[3]]), strings.TrimSpace(part[m[4]:]), true
	}
	return "", "", false
}

// cutPrefixFold strips prefix case-insensitively, reporting whether it
// was present.
func cutPrefixFold(s *string, prefix string) bool {
	if len(*s) >= len(prefix) && strings.EqualFold((*s)[:len(prefix)], prefix) {
		*s = (*s)[len(prefix):]
		return true
	}
	return false
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func foldIndex(s, sub string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(sub))
}
