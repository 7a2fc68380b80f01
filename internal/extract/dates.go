package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/codeforkjeff/museum-provenance/internal/model"
)

const monthPattern = `january|february|march|april|may|june|july|august|september|october|november|december|sept|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec`

var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5,
	"june": 6, "july": 7, "august": 8, "september": 9, "october": 10,
	"november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
	"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	dayMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthPattern + `)\b\.?,?\s+(\d{1,4})\b`)
	centuryRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+century(?:\s+(ad|bc|bce|ce)\b)?(\s*\?)?`)
	decadeRe   = regexp.MustCompile(`(?i)\b(\d{1,3})0s\b(?:\s+(ad|bc|bce|ce)\b)?(\s*\?)?`)
	yearRe     = regexp.MustCompile(`(?i)\b(\d{1,4})\b(?:\s+(ad|bc|bce|ce)\b)?(\s*\?)?`)
	monthRe    = regexp.MustCompile(`(?i)\b(` + monthPattern + `)\.?,?\s+(\d{1,4})\b(?:\s+(ad|bc|bce|ce)\b)?(\s*\?)?`)
	dayFullRe  = regexp.MustCompile(`(?i)\b(` + monthPattern + `)\.?,?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{1,4})\b(?:\s+(ad|bc|bce|ce)\b)?(\s*\?)?`)
	daySlashRe = regexp.MustCompile(`\b(\d{1,4})/(\d{1,2})/(\d{1,4})\b(\s*\?)?`)
	dayISORe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b(\s*\?)?`)

	monthBeforeRe = regexp.MustCompile(`(?i)\b(?:` + monthPattern + `)[.,]?\s*$`)
	dayBeforeRe   = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?[.,]?\s*$`)
)

// DateResult is everything one scan produced: the dates in
// coarse-to-fine pass order, the text with every matched span blanked,
// and the count of matches discarded instead of parsed.
type DateResult struct {
	Dates    []model.Date
	Residual string
	Dropped  int
}

// DateExtractor finds calendar expressions at five granularities,
// coarse to fine: century, decade, year, month, day. Each pass scans
// the residual of the one before it, so a coarse match blanks its span
// before the finer passes run and nothing is consumed twice.
type DateExtractor struct{}

// NewDateExtractor returns a date extractor.
func NewDateExtractor() *DateExtractor {
	return &DateExtractor{}
}

// Extract runs the full pass sequence over text.
func (e *DateExtractor) Extract(text string) *DateResult {
	res := &DateResult{Residual: rewriteDayMonth(text)}
	passes := []func(string) ([]model.Date, string, int){
		extractCenturies,
		extractDecades,
		extractYears,
		extractMonths,
		extractDays,
	}
	for _, pass := range passes {
		dates, residual, dropped := pass(res.Residual)
		res.Dates = append(res.Dates, dates...)
		res.Residual = residual
		res.Dropped += dropped
	}
	return res
}

// RemoveDates strips every recognized date expression from text,
// returning the blanked residual. Running it twice changes nothing.
func (e *DateExtractor) RemoveDates(text string) string {
	return e.Extract(text).Residual
}

// rewriteDayMonth reorders "15 June 1940" to "June 15, 1940" so every
// later pass can assume month-first ordering.
func rewriteDayMonth(text string) string {
	return dayMonthRe.ReplaceAllString(text, "${2} ${1}, ${3}")
}

func extractCenturies(text string) ([]model.Date, string, int) {
	var dates []model.Date
	var spans [][2]int
	for _, m := range centuryRe.FindAllStringSubmatchIndex(text, -1) {
		n, _ := strconv.Atoi(group(text, m, 1))
		value := n*100 - 100
		if eraSign(group(text, m, 2)) < 0 {
			value = -(value + 1)
		}
		d := model.CenturyDate(value)
		if group(text, m, 3) != "" {
			d = d.Uncertain()
		}
		dates = append(dates, d)
		spans = append(spans, [2]int{m[0], m[1]})
	}
	return dates, blank(text, spans), 0
}

func extractDecades(text string) ([]model.Date, string, int) {
	var dates []model.Date
	var spans [][2]int
	dropped := 0
	for _, m := range decadeRe.FindAllStringSubmatchIndex(text, -1) {
		n, _ := strconv.Atoi(group(text, m, 1))
		value := n * 10
		spans = append(spans, [2]int{m[0], m[1]})
		if eraSign(group(text, m, 2)) < 0 {
			// BCE decades past 100 are discarded, not negated.
			if value > 100 {
				dropped++
				continue
			}
			value = -value
		}
		d := model.DecadeDate(value)
		if group(text, m, 3) != "" {
			d = d.Uncertain()
		}
		dates = append(dates, d)
	}
	return dates, blank(text, spans), dropped
}

func extractYears(text string) ([]model.Date, string, int) {
	var dates []model.Date
	var spans [][2]int
	for _, m := range yearRe.FindAllStringSubmatchIndex(text, -1) {
		digits := group(text, m, 1)
		era := group(text, m, 2)
		if len(digits) < 4 && era == "" {
			continue
		}
		if excludedYear(text, m[2], m[3]) {
			continue
		}
		year, _ := strconv.Atoi(digits)
		year *= eraSign(era)
		d := model.YearDate(year)
		if group(text, m, 3) != "" {
			d = d.Uncertain()
		}
		dates = append(dates, d)
		spans = append(spans, [2]int{m[0], m[1]})
	}
	return dates, blank(text, spans), 0
}

// excludedYear reports whether the digit run at [lo,hi) is reserved
// for a later pass: preceded by a month name or a day-of-month number,
// or adjacent to a slash or hyphen.
func excludedYear(text string, lo, hi int) bool {
	before := text[:lo]
	if monthBeforeRe.MatchString(before) || dayBeforeRe.MatchString(before) {
		return true
	}
	if lo > 0 && (text[lo-1] == '/' || text[lo-1] == '-') {
		return true
	}
	if hi < len(text) && (text[hi] == '/' || text[hi] == '-') {
		return true
	}
	return false
}

func extractMonths(text string) ([]model.Date, string, int) {
	var dates []model.Date
	var spans [][2]int
	for _, m := range monthRe.FindAllStringSubmatchIndex(text, -1) {
		if followedByNumber(text, m[1]) {
			continue
		}
		month := monthNumber(group(text, m, 1))
		if month == 0 {
			continue
		}
		year, _ := strconv.Atoi(group(text, m, 2))
		year *= eraSign(group(text, m, 3))
		d := model.MonthDate(year, month)
		if group(text, m, 4) != "" {
			d = d.Uncertain()
		}
		dates = append(dates, d)
		spans = append(spans, [2]int{m[0], m[1]})
	}
	return dates, blank(text, spans), 0
}

// followedByNumber reports whether the text right after a month match
// continues with another number, meaning the expression really is a
// day-of-month form that belongs to the day pass.
func followedByNumber(text string, end int) bool {
	rest := text[end:]
	i := 0
	if i < len(rest) && rest[i] == ',' {
		i++
	}
	for i < len(rest) && rest[i] == ' ' {
		i++
	}
	return i < len(rest) && rest[i] >= '0' && rest[i] <= '9'
}

func extractDays(text string) ([]model.Date, string, int) {
	type dayMatch struct {
		span [2]int
		date model.Date
	}
	var found []dayMatch
	for _, m := range dayFullRe.FindAllStringSubmatchIndex(text, -1) {
		month := monthNumber(group(text, m, 1))
		day, _ := strconv.Atoi(group(text, m, 2))
		year, _ := strconv.Atoi(group(text, m, 3))
		year *= eraSign(group(text, m, 4))
		d, ok := dayDate(year, month, day, group(text, m, 5) == "")
		if !ok {
			continue
		}
		found = append(found, dayMatch{span: [2]int{m[0], m[1]}, date: d})
	}
	for _, m := range daySlashRe.FindAllStringSubmatchIndex(text, -1) {
		month, _ := strconv.Atoi(group(text, m, 1))
		day, _ := strconv.Atoi(group(text, m, 2))
		year, _ := strconv.Atoi(group(text, m, 3))
		d, ok := dayDate(year, month, day, group(text, m, 4) == "")
		if !ok {
			continue
		}
		found = append(found, dayMatch{span: [2]int{m[0], m[1]}, date: d})
	}
	for _, m := range dayISORe.FindAllStringSubmatchIndex(text, -1) {
		year, _ := strconv.Atoi(group(text, m, 1))
		month, _ := strconv.Atoi(group(text, m, 2))
		day, _ := strconv.Atoi(group(text, m, 3))
		d, ok := dayDate(year, month, day, group(text, m, 4) == "")
		if !ok {
			continue
		}
		found = append(found, dayMatch{span: [2]int{m[0], m[1]}, date: d})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].span[0] < found[j].span[0] })
	var dates []model.Date
	var spans [][2]int
	lastEnd := -1
	for _, f := range found {
		if f.span[0] < lastEnd {
			continue
		}
		dates = append(dates, f.date)
		spans = append(spans, f.span)
		lastEnd = f.span[1]
	}
	return dates, blank(text, spans), 0
}

// dayDate validates calendar bounds before constructing.
func dayDate(year, month, day int, certain bool) (model.Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > model.DaysIn(year, month) {
		return model.Date{}, false
	}
	d := model.DayDate(year, month, day)
	if !certain {
		d = d.Uncertain()
	}
	return d, true
}

// blank replaces each matched span with a single space, preserving
// token boundaries without collapsing surrounding text. Spans must be
// sorted and non-overlapping.
func blank(text string, spans [][2]int) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s[0]])
		b.WriteString(" ")
		last = s[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func group(text string, m []int, i int) string {
	lo, hi := m[2*i], m[2*i+1]
	if lo < 0 {
		return ""
	}
	return text[lo:hi]
}

func monthNumber(name string) int {
	return monthNumbers[strings.ToLower(strings.TrimRight(name, ".,"))]
}

func eraSign(era string) int {
	switch strings.ToLower(era) {
	case "bc", "bce":
		return -1
	}
	return 1
}
