package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codeforkjeff/museum-provenance/internal/lexicon"
	"github.com/codeforkjeff/museum-provenance/internal/model"
)

var (
	footnoteRefRe = regexp.MustCompile(`(?i)\[(\d+)\]|\[[^\]]*?note\s+(\d+)[^\]]*\]`)

	lifePairRe   = regexp.MustCompile(`(?i)\(\s*(?:b\.\s*)?(\d{1,4})(\s*\?)?\s*[-–]\s*(?:d\.\s*)?(\d{1,4})(\s*\?)?\s*\)`)
	lifeSingleRe = regexp.MustCompile(`(?i)\(\s*(b|d)\.\s*([^)]+?)\s*\)`)

	stockRe = regexp.MustCompile(`(?i)(?:,\s*)?\b(?:stock\s+)?no\.\s+[^,]+`)
	lotRe   = regexp.MustCompile(`(?i)(?:,\s*)?\blot\s+\d[^,]*`)
)

// FieldExtractor turns one fragment into a Period by stripping fields
// in a fixed order: footnote references, certainty qualifier,
// acquisition method, life dates, stock number, then the date clause.
// Whatever is left splits into party name and location.
type FieldExtractor struct {
	classifier *lexicon.Classifier
	dates      *DateExtractor
	certainty  []string
	extenders  []string
}

func NewFieldExtractor(lex *lexicon.Lexicon) *FieldExtractor {
	return &FieldExtractor{
		classifier: lexicon.NewClassifier(lex.Acquisitions),
		dates:      NewDateExtractor(),
		certainty:  lex.CertaintyWords,
		extenders:  lex.NameExtenders,
	}
}

// Extract builds the Period for a fragment. notes supplies footnote
// texts by index; a referenced index with no text still records the
// reference. dropped counts date matches discarded along the way. A
// date clause that cannot be resolved leaves the period marked not
// parsable instead of failing the record.
func (fe *FieldExtractor) Extract(frag Fragment, notes map[int]string) (*model.Period, int) {
	p := &model.Period{
		Certain:      true,
		Parsable:     true,
		OriginalText: frag.Text,
	}

	text := fe.stripFootnotes(frag.Text, notes, p)
	text = fe.stripCertainty(text, p)
	text = fe.stripAcquisition(text, p)

	var birth, death *model.Date
	text, birth, death = fe.stripLifeDates(text)
	text = fe.stripStockNumber(text, p)

	span, rest, dropped, err := resolveSpan(fe.dates, text)
	if err != nil {
		p.Parsable = false
	} else {
		p.Span = span
	}

	name, location := fe.splitPartyLocation(rest)
	p.Party = model.Party{Name: name, Birth: birth, Death: death}
	p.Location = location
	return p, dropped
}

func (fe *FieldExtractor) stripFootnotes(text string, notes map[int]string, p *model.Period) string {
	for _, m := range footnoteRefRe.FindAllStringSubmatch(text, -1) {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if n, err := strconv.Atoi(digits); err == nil && n > 0 {
			p.Notes = append(p.Notes, model.Note{Index: n, Text: notes[n]})
		}
	}
	return footnoteRefRe.ReplaceAllString(text, "")
}

// stripCertainty drops a leading qualifier like "Possibly" and marks
// the period uncertain. Only the first whitespace token is examined.
func (fe *FieldExtractor) stripCertainty(text string, p *model.Period) string {
	token, rest, split := strings.Cut(text, " ")
	lower := strings.ToLower(token)
	for _, w := range fe.certainty {
		i := strings.Index(lower, w)
		if i < 0 {
			continue
		}
		p.Certain = false
		remainder := strings.Trim(token[:i]+token[i+len(w):], ",:;")
		if !split {
			return remainder
		}
		if remainder == "" {
			return strings.TrimSpace(rest)
		}
		return strings.TrimSpace(remainder + " " + rest)
	}
	return text
}

func (fe *FieldExtractor) stripAcquisition(text string, p *model.Period) string {
	method, ok := fe.classifier.Identify(text)
	if !ok {
		return text
	}
	p.AcquisitionMethod = method.Name
	stripped, _ := fe.classifier.Strip(text, method)
	return stripped
}

// stripLifeDates pulls a parenthetical like "(1900-1950)", "(b. 1900)"
// or "(d. March 1844)" out of the text. The paired form only admits
// plain years; single markers take any date the extractor can resolve.
func (fe *FieldExtractor) stripLifeDates(text string) (string, *model.Date, *model.Date) {
	var birth, death *model.Date

	if m := lifePairRe.FindStringSubmatchIndex(text); m != nil {
		b := model.YearDate(atoiDigits(text[m[2]:m[3]]))
		d := model.YearDate(atoiDigits(text[m[6]:m[7]]))
		if m[4] >= 0 {
			b = b.Uncertain()
		}
		if m[8] >= 0 {
			d = d.Uncertain()
		}
		birth, death = &b, &d
		return strings.TrimSpace(text[:m[0]] + text[m[1]:]), birth, death
	}

	text = lifeSingleRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := lifeSingleRe.FindStringSubmatch(m)
		res := fe.dates.Extract(sub[2])
		if len(res.Dates) == 0 {
			return m
		}
		d := res.Dates[0]
		if strings.EqualFold(sub[1], "b") {
			birth = &d
		} else {
			death = &d
		}
		return ""
	})
	return strings.TrimSpace(text), birth, death
}

func (fe *FieldExtractor) stripStockNumber(text string, p *model.Period) string {
	for _, re := range []*regexp.Regexp{stockRe, lotRe} {
		if loc := re.FindStringIndex(text); loc != nil {
			p.StockNumber = strings.TrimLeft(strings.TrimSpace(text[loc[0]:loc[1]]), ", ")
			return text[:loc[0]] + text[loc[1]:]
		}
	}
	return text
}

// splitPartyLocation splits the leftover text on commas. The first
// segment is the party name; segments led by a name extender ("Jr",
// "the Younger", "his son") stay inside the name. The rest is the
// location, dropped when it repeats the name.
func (fe *FieldExtractor) splitPartyLocation(rest string) (string, string) {
	if rest == "" {
		return "", ""
	}
	segments := strings.Split(rest, ",")
	name := tidy(segments[0])
	i := 1
	for ; i < len(segments); i++ {
		seg := tidy(segments[i])
		if seg == "" || !fe.isExtender(seg) {
			break
		}
		name += ", " + seg
	}
	var parts []string
	for ; i < len(segments); i++ {
		if seg := tidy(segments[i]); seg != "" {
			parts = append(parts, seg)
		}
	}
	location := strings.Join(parts, ", ")
	if location == name {
		location = ""
	}
	return name, location
}

func (fe *FieldExtractor) isExtender(segment string) bool {
	lower := strings.ToLower(segment)
	for _, ext := range fe.extenders {
		e := strings.ToLower(ext)
		if lower == e {
			return true
		}
		if strings.HasPrefix(lower, e+" ") {
			return true
		}
	}
	return false
}

// tidy trims a comma segment and collapses interior runs of spaces
// left behind by earlier strips.
func tidy(segment string) string {
	return strings.Join(strings.Fields(segment), " ")
}

func atoiDigits(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
